package tree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestResolveSubstitutions(t *testing.T) {
	tr := FromMap(map[string]any{
		"DB_PASSWORD": "s3cret",
		"app": map[string]any{
			"root":    "/var/lib/app",
			"data":    "${app.root}/data",
			"timeout": 5 * time.Second,
		},
		"db": map[string]any{
			"password": "${DB_PASSWORD}",
			"timeout":  "${app.timeout}",
			"home":     "${HOME}/db",
			"optional": "${?NOT_SET}",
			"suffix":   "x${?NOT_SET}y",
			"literal":  "$${app.root}",
			"dollar":   "costs $5",
		},
	}, "test")

	out, err := tr.Resolve(envOf(map[string]string{"HOME": "/home/svc"}))
	require.NoError(t, err)

	get := func(path string) string {
		s, err := out.String(path)
		require.NoError(t, err, path)
		return s
	}
	assert.Equal(t, "/var/lib/app/data", get("app.data"))
	assert.Equal(t, "s3cret", get("db.password"))
	assert.Equal(t, "/home/svc/db", get("db.home"))
	assert.Equal(t, "xy", get("db.suffix"))
	assert.Equal(t, "${app.root}", get("db.literal"))
	assert.Equal(t, "costs $5", get("db.dollar"))
	assert.False(t, out.HasPath("db.optional"))

	d, err := out.Duration("db.timeout")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	v, ok := out.Get("db.timeout")
	require.True(t, ok)
	assert.IsType(t, time.Duration(0), v, "a whole-value reference keeps the referenced type")
}

func TestResolveChainsThroughReferences(t *testing.T) {
	tr := FromMap(map[string]any{
		"a": "${b}",
		"b": "${c}-b",
		"c": "c",
	}, "")
	out, err := tr.Resolve(nil)
	require.NoError(t, err)

	a, err := out.String("a")
	require.NoError(t, err)
	assert.Equal(t, "c-b", a)
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		want string
	}{
		{
			name: "missing required reference",
			in:   map[string]any{"a": "${nope}"},
			want: "substitution ${nope} could not be resolved",
		},
		{
			name: "cycle",
			in:   map[string]any{"a": "${b}", "b": "${a}"},
			want: "substitution cycle",
		},
		{
			name: "object inside text",
			in:   map[string]any{"obj": map[string]any{"k": 1}, "a": "x-${obj}"},
			want: "cannot be concatenated",
		},
		{
			name: "unterminated",
			in:   map[string]any{"a": "${oops"},
			want: "unterminated substitution",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.in, "").Resolve(nil)
			var re *ResolveError
			require.ErrorAs(t, err, &re)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResolveDoesNotLeakValues(t *testing.T) {
	_, err := FromMap(map[string]any{"password": "hunter2${"}, "").Resolve(nil)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "hunter2")
}

func TestEscapeSurvivesResolve(t *testing.T) {
	for _, s := range []string{
		"pa${ss}word",
		"${",
		"abc${def",
		"$${already}",
		"a$b",
		"cost ${x} and ${?y}",
		"$",
	} {
		tr := FromMap(map[string]any{
			"k":   Escape(s),
			"ref": "${k}",
			"mix": "<${k}>",
		}, "")
		out, err := tr.Resolve(nil)
		require.NoError(t, err, s)

		got, err := out.String("k")
		require.NoError(t, err, s)
		assert.Equal(t, s, got)

		got, err = out.String("ref")
		require.NoError(t, err, s)
		assert.Equal(t, s, got)

		got, err = out.String("mix")
		require.NoError(t, err, s)
		assert.Equal(t, "<"+s+">", got)
	}
}
