package config

import (
	"regexp"
	"strings"
)

var wordBoundary = regexp.MustCompile(`([a-z])([A-Z]+)`)

// KeyFor derives the configuration key of a schema field name: a hyphen goes
// between a lower-case letter and the upper-case run after it, then the
// whole name is lower-cased. poolSize is pool-size; upper-case runs are not
// split, so XMLHttpPort is xmlhttp-port.
func KeyFor(name string) string {
	return strings.ToLower(wordBoundary.ReplaceAllString(name, "${1}-${2}"))
}
