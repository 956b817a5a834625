package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godamri/helix-config/schema"
	"github.com/godamri/helix-config/tree"
)

type httpConfig struct {
	Port        int32         `validate:"min=1,max=65535"`
	Host        string        `validate:"notblank"`
	IdleTimeout time.Duration `validate:"notnull"`
}

type dbConfig struct {
	URL      string        `validate:"notblank,pattern=^jdbc:.*"`
	User     string        `validate:"notblank"`
	Password string        `validate:"notblank"`
	PoolSize int32         `validate:"positive"`
	Timeout  time.Duration `validate:"notnull"`
}

type tlsConfig struct {
	CertFile string `validate:"notblank"`
	Enabled  bool
}

type listenerConfig struct {
	Port int32 `validate:"min=1"`
	TLS  tlsConfig
}

type taggedConfig struct {
	Name string
	Tags []string
}

func httpTree(fields map[string]any) *tree.Tree {
	return tree.FromMap(map[string]any{"http": fields}, "test.conf")
}

func validHTTP() map[string]any {
	return map[string]any{"host": "localhost", "port": 8080, "idle-timeout": "60s"}
}

func TestBindHTTP(t *testing.T) {
	b := NewBinder(nil)
	got, err := Bind[httpConfig](b, httpTree(validHTTP()), "http")
	require.NoError(t, err)
	assert.Equal(t, httpConfig{Port: 8080, Host: "localhost", IdleTimeout: 60 * time.Second}, got)
}

func TestBindDB(t *testing.T) {
	tr := tree.FromMap(map[string]any{"db": map[string]any{
		"url":       "jdbc:postgresql://localhost:5432/test",
		"user":      "testuser",
		"password":  "testpassword",
		"pool-size": 10,
		"timeout":   "5s",
	}}, "")

	got, err := Bind[dbConfig](NewBinder(nil), tr, "db")
	require.NoError(t, err)
	assert.Equal(t, int32(10), got.PoolSize)
	assert.Equal(t, 5000*time.Millisecond, got.Timeout)
	assert.Equal(t, "testuser", got.User)
}

func TestBindValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		change map[string]any
		want   string
	}{
		{"port out of range", map[string]any{"port": 99999}, "port must be less than or equal to 65535"},
		{"port below minimum", map[string]any{"port": 0}, "port must be greater than or equal to 1"},
		{"blank host", map[string]any{"host": " "}, "host must not be blank"},
		{"unicode blank host", map[string]any{"host": "\u00a0\t"}, "host must not be blank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validHTTP()
			for k, v := range tt.change {
				fields[k] = v
			}
			got, err := Bind[httpConfig](NewBinder(nil), httpTree(fields), "http")
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, httpConfig{}, got, "no partial value on failure")
		})
	}
}

func TestBindPatternViolation(t *testing.T) {
	tr := tree.FromMap(map[string]any{"db": map[string]any{
		"url":       "http://invalid",
		"user":      "u",
		"password":  "p",
		"pool-size": 1,
		"timeout":   "1s",
	}}, "")

	_, err := Bind[dbConfig](NewBinder(nil), tr, "db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `url must match "^jdbc:.*"`)
}

func TestBindReportsEveryViolationSorted(t *testing.T) {
	tr := tree.FromMap(map[string]any{"db": map[string]any{
		"url":       "",
		"user":      "",
		"password":  "",
		"pool-size": 0,
		"timeout":   "1s",
	}}, "")

	_, err := Bind[dbConfig](NewBinder(nil), tr, "db")
	require.Error(t, err)
	assert.Equal(t, "Config validation failed: "+
		"password must not be blank; "+
		"poolSize must be positive; "+
		`url must match "^jdbc:.*"; `+
		"url must not be blank; "+
		"user must not be blank", err.Error())
}

func TestBindMissingKey(t *testing.T) {
	_, err := Bind[httpConfig](NewBinder(nil), httpTree(map[string]any{"host": "localhost", "port": 8080}), "http")
	var km *KeyMissingError
	require.ErrorAs(t, err, &km)
	assert.Equal(t, "idle-timeout", km.Key)
	assert.Equal(t, "http", km.Path)
	assert.Contains(t, err.Error(), "Missing required config key: idle-timeout")
	assert.Contains(t, err.Error(), "test.conf")
}

func TestBindNullIsMissing(t *testing.T) {
	fields := validHTTP()
	fields["host"] = nil
	_, err := Bind[httpConfig](NewBinder(nil), httpTree(fields), "http")
	var km *KeyMissingError
	require.ErrorAs(t, err, &km)
	assert.Equal(t, "host", km.Key)
}

func TestBindMissingPath(t *testing.T) {
	tr := tree.FromMap(map[string]any{"database": map[string]any{"url": "x"}}, "")
	_, err := Bind[httpConfig](NewBinder(nil), tr, "http")
	var pm *PathMissingError
	require.ErrorAs(t, err, &pm)
	assert.Equal(t, "Configuration path not found: http", err.Error())
}

func TestBindPathIsNotAnObject(t *testing.T) {
	tr := tree.FromMap(map[string]any{"http": "oops"}, "")
	_, err := Bind[httpConfig](NewBinder(nil), tr, "http")
	var wt *WrongTypeError
	require.ErrorAs(t, err, &wt)
	assert.Equal(t, schema.Object, wt.Expected)
}

func TestBindWrongType(t *testing.T) {
	fields := validHTTP()
	fields["port"] = "not-a-port"
	_, err := Bind[httpConfig](NewBinder(nil), httpTree(fields), "http")
	var wt *WrongTypeError
	require.ErrorAs(t, err, &wt)
	assert.Equal(t, "http.port", wt.FullPath())
	assert.Equal(t, schema.Int32, wt.Expected)
	assert.NotContains(t, err.Error(), "not-a-port")
}

func TestBindInt32Overflow(t *testing.T) {
	fields := validHTTP()
	fields["port"] = int64(3_000_000_000)
	_, err := Bind[httpConfig](NewBinder(nil), httpTree(fields), "http")
	var wt *WrongTypeError
	require.ErrorAs(t, err, &wt)
	assert.Contains(t, err.Error(), "out of range")
}

func TestBindUnsupportedType(t *testing.T) {
	tr := tree.FromMap(map[string]any{"app": map[string]any{
		"name": "svc",
		"tags": []any{"a", "b"},
	}}, "")
	_, err := Bind[taggedConfig](NewBinder(nil), tr, "app")
	var ut *UnsupportedTypeError
	require.ErrorAs(t, err, &ut)
	assert.Contains(t, err.Error(), "Unsupported config type: List")
}

func TestBindNested(t *testing.T) {
	tr := tree.FromMap(map[string]any{"listener": map[string]any{
		"port": 443,
		"tls":  map[string]any{"cert-file": "/etc/tls/cert.pem", "enabled": "yes"},
	}}, "")

	got, err := Bind[listenerConfig](NewBinder(nil), tr, "listener")
	require.NoError(t, err)
	assert.Equal(t, listenerConfig{Port: 443, TLS: tlsConfig{CertFile: "/etc/tls/cert.pem", Enabled: true}}, got)
}

func TestBindNestedViolationPath(t *testing.T) {
	tr := tree.FromMap(map[string]any{"listener": map[string]any{
		"port": 0,
		"tls":  map[string]any{"cert-file": "", "enabled": false},
	}}, "")

	_, err := Bind[listenerConfig](NewBinder(nil), tr, "listener")
	require.Error(t, err)
	assert.Equal(t, "Config validation failed: port must be greater than or equal to 1; tls.certFile must not be blank", err.Error())
}

func TestBindNestedMissingKeyNamesFullPath(t *testing.T) {
	tr := tree.FromMap(map[string]any{"listener": map[string]any{
		"port": 1,
		"tls":  map[string]any{"enabled": true},
	}}, "")

	_, err := Bind[listenerConfig](NewBinder(nil), tr, "listener")
	var km *KeyMissingError
	require.ErrorAs(t, err, &km)
	assert.Equal(t, "listener.tls", km.Path)
	assert.Equal(t, "cert-file", km.Key)
}

func TestBindDescriptor(t *testing.T) {
	d, err := schema.NewDescriptor("http",
		schema.Field{Name: "port", Type: schema.Int32, Constraints: []schema.Constraint{schema.Min(1), schema.Max(65535)}},
		schema.Field{Name: "host", Type: schema.String, Constraints: []schema.Constraint{schema.NotBlank()}},
		schema.Field{Name: "idleTimeout", Type: schema.Duration},
	)
	require.NoError(t, err)

	v, err := NewBinder(nil).Bind(httpTree(validHTTP()), "http", d)
	require.NoError(t, err)
	rec := v.(schema.Record)
	idle, _ := rec.Get("idleTimeout")
	assert.Equal(t, time.Minute, idle)

	fields := validHTTP()
	fields["port"] = 70000
	v, err = NewBinder(nil).Bind(httpTree(fields), "http", d)
	require.Error(t, err)
	assert.Nil(t, v)
}

func TestBindIsDeterministic(t *testing.T) {
	tr := tree.FromMap(map[string]any{"db": map[string]any{
		"url": "x", "user": " ", "password": "", "pool-size": -1, "timeout": 1,
	}}, "")

	_, first := Bind[dbConfig](NewBinder(nil), tr, "db")
	require.Error(t, first)
	for i := 0; i < 10; i++ {
		_, err := Bind[dbConfig](NewBinder(nil), tr, "db")
		assert.Equal(t, first.Error(), err.Error())
	}
}

func TestBindAllTypes(t *testing.T) {
	type everything struct {
		Small   int32
		Big     int64
		Count   int
		Ratio   float64
		Name    string
		Enabled bool
		Wait    time.Duration
	}
	tr := tree.FromMap(map[string]any{"all": map[string]any{
		"small":   "12",
		"big":     int64(1) << 40,
		"count":   7,
		"ratio":   2,
		"name":    42,
		"enabled": "off",
		"wait":    250,
	}}, "")

	got, err := Bind[everything](NewBinder(nil), tr, "all")
	require.NoError(t, err)
	assert.Equal(t, everything{
		Small:   12,
		Big:     1 << 40,
		Count:   7,
		Ratio:   2,
		Name:    "42",
		Enabled: false,
		Wait:    250 * time.Millisecond,
	}, got)
}

func TestNewValidatorRegistersNotBlank(t *testing.T) {
	var v *Validator
	require.NotPanics(t, func() { v = NewValidator() })

	blank := schema.NotBlank()
	assert.True(t, v.check(blank, "x"))
	assert.False(t, v.check(blank, " \t"))
}
