package tree

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

func (t *Tree) value(path string) (any, error) {
	v, ok := t.lookup(path)
	if !ok || v == nil {
		return nil, &MissingError{Path: t.abs(path), Origin: t.origin}
	}
	return v, nil
}

// String reads a string. Numbers, booleans and durations are rendered as text.
func (t *Tree) String(path string) (string, error) {
	v, err := t.value(path)
	if err != nil {
		return "", err
	}
	if s, ok := scalarText(v); ok {
		return s, nil
	}
	return "", t.wrongType(path, "string", v)
}

// Int reads a 64-bit integer. Whole floats and numeric strings convert.
func (t *Tree) Int(path string) (int64, error) {
	v, err := t.value(path)
	if err != nil {
		return 0, err
	}
	switch val := v.(type) {
	case int64:
		return val, nil
	case float64:
		if n, ok := wholeFloat(val); ok {
			return n, nil
		}
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			if n, ok := wholeFloat(f); ok {
				return n, nil
			}
		}
	}
	return 0, t.wrongType(path, "integer", v)
}

// Float reads a double. Integers and numeric strings convert.
func (t *Tree) Float(path string) (float64, error) {
	v, err := t.value(path)
	if err != nil {
		return 0, err
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case int64:
		return float64(val), nil
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f, nil
		}
	}
	return 0, t.wrongType(path, "number", v)
}

// Bool reads a boolean. The strings true/yes/on and false/no/off convert.
func (t *Tree) Bool(path string) (bool, error) {
	v, err := t.value(path)
	if err != nil {
		return false, err
	}
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "on":
			return true, nil
		case "false", "no", "off":
			return false, nil
		}
	}
	return false, t.wrongType(path, "boolean", v)
}

// Duration reads a duration. Plain numbers are milliseconds; strings accept
// unit suffixes (see ParseDuration).
func (t *Tree) Duration(path string) (time.Duration, error) {
	v, err := t.value(path)
	if err != nil {
		return 0, err
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case int64:
		if val <= math.MaxInt64/int64(time.Millisecond) && val >= math.MinInt64/int64(time.Millisecond) {
			return time.Duration(val) * time.Millisecond, nil
		}
	case float64:
		if d, ok := scaleFloat(val, time.Millisecond); ok {
			return d, nil
		}
	case string:
		if d, err := ParseDuration(val); err == nil {
			return d, nil
		}
	}
	return 0, t.wrongType(path, "duration", v)
}

var durationUnits = map[string]time.Duration{
	"":             time.Millisecond,
	"ns":           time.Nanosecond,
	"nano":         time.Nanosecond,
	"nanos":        time.Nanosecond,
	"nanosecond":   time.Nanosecond,
	"nanoseconds":  time.Nanosecond,
	"us":           time.Microsecond,
	"micro":        time.Microsecond,
	"micros":       time.Microsecond,
	"microsecond":  time.Microsecond,
	"microseconds": time.Microsecond,
	"ms":           time.Millisecond,
	"milli":        time.Millisecond,
	"millis":       time.Millisecond,
	"millisecond":  time.Millisecond,
	"milliseconds": time.Millisecond,
	"s":            time.Second,
	"second":       time.Second,
	"seconds":      time.Second,
	"m":            time.Minute,
	"minute":       time.Minute,
	"minutes":      time.Minute,
	"h":            time.Hour,
	"hour":         time.Hour,
	"hours":        time.Hour,
	"d":            24 * time.Hour,
	"day":          24 * time.Hour,
	"days":         24 * time.Hour,
}

// ParseDuration parses "<number>[ ]<unit>" with the units ns, us, ms, s, m, h
// and d (long forms such as "seconds" are accepted too). A number without a
// unit is milliseconds. Anything else falls back to time.ParseDuration, so
// "1h30m" works as well.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := i
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}

	if i > digits {
		num, unit := s[:i], strings.TrimSpace(s[i:])
		if mult, ok := durationUnits[unit]; ok {
			if n, err := strconv.ParseInt(num, 10, 64); err == nil {
				if n > math.MaxInt64/int64(mult) || n < math.MinInt64/int64(mult) {
					return 0, fmt.Errorf("duration %q out of range", s)
				}
				return time.Duration(n) * mult, nil
			}
			if f, err := strconv.ParseFloat(num, 64); err == nil {
				if d, ok := scaleFloat(f, mult); ok {
					return d, nil
				}
				return 0, fmt.Errorf("duration %q out of range", s)
			}
		}
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

// FormatDuration renders d with the largest unit that divides it exactly.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	units := []struct {
		size time.Duration
		name string
	}{
		{24 * time.Hour, "d"},
		{time.Hour, "h"},
		{time.Minute, "m"},
		{time.Second, "s"},
		{time.Millisecond, "ms"},
		{time.Microsecond, "us"},
	}
	for _, u := range units {
		if d%u.size == 0 {
			return strconv.FormatInt(int64(d/u.size), 10) + u.name
		}
	}
	return strconv.FormatInt(int64(d), 10) + "ns"
}

func scaleFloat(f float64, unit time.Duration) (time.Duration, bool) {
	d := f * float64(unit)
	if math.IsNaN(d) || d > math.MaxInt64 || d < math.MinInt64 {
		return 0, false
	}
	return time.Duration(d), true
}

func wholeFloat(f float64) (int64, bool) {
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func scalarText(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), true
	case time.Duration:
		return FormatDuration(val), true
	}
	return "", false
}
