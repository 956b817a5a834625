package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserFor(t *testing.T) {
	for path, want := range map[string]Parser{
		"application.conf":  HOCON,
		"application.HOCON": HOCON,
		"app.yml":           YAML,
		"app.yaml":          YAML,
		"app.toml":          TOML,
	} {
		got, err := ParserFor(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := ParserFor("app.json")
	require.Error(t, err)
}

func TestHOCONParser(t *testing.T) {
	tr, err := HOCON.ParseString(`
http {
  host = "localhost"
  port = 8080
  secure = true
}
db {
  url = "postgres://localhost:5432/app"
  ratio = 0.75
}
`, "inline")
	require.NoError(t, err)

	host, err := tr.String("http.host")
	require.NoError(t, err)
	assert.Equal(t, "localhost", host)

	port, err := tr.Int("http.port")
	require.NoError(t, err)
	assert.EqualValues(t, 8080, port)

	secure, err := tr.Bool("http.secure")
	require.NoError(t, err)
	assert.True(t, secure)

	ratio, err := tr.Float("db.ratio")
	require.NoError(t, err)
	assert.InDelta(t, 0.75, ratio, 1e-9)

	assert.Equal(t, "inline", tr.Origin())
}

func TestHOCONParseFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "application.conf", "name = \"svc\"\nworkers = 4\n")

	tr, err := ParseFile(path)
	require.NoError(t, err)

	name, err := tr.String("name")
	require.NoError(t, err)
	assert.Equal(t, "svc", name)
	assert.Equal(t, "application.conf", tr.Origin())
}

func TestYAMLParser(t *testing.T) {
	tr, err := YAML.ParseString("http:\n  port: 8080\n  timeout: 250ms\n  tags: [a, b]\n", "app.yaml")
	require.NoError(t, err)

	port, err := tr.Int("http.port")
	require.NoError(t, err)
	assert.EqualValues(t, 8080, port)

	d, err := tr.Duration("http.timeout")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	tags, ok := tr.Get("http.tags")
	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, tags)
}

func TestYAMLParserEmptyDocument(t *testing.T) {
	tr, err := YAML.ParseString("", "empty.yaml")
	require.NoError(t, err)
	assert.Empty(t, tr.Keys())
}

func TestTOMLParser(t *testing.T) {
	tr, err := TOML.ParseString("[http]\nport = 8080\nhost = \"0.0.0.0\"\n\n[db]\npool-size = 5\n", "app.toml")
	require.NoError(t, err)

	port, err := tr.Int("http.port")
	require.NoError(t, err)
	assert.EqualValues(t, 8080, port)

	pool, err := tr.Int("db.pool-size")
	require.NoError(t, err)
	assert.EqualValues(t, 5, pool)
}

func TestParserErrors(t *testing.T) {
	_, err := YAML.ParseString("http: [unclosed", "bad.yaml")
	require.Error(t, err)

	_, err = TOML.ParseString("[http\nport = 1", "bad.toml")
	require.Error(t, err)
}

func TestHOCONLeavesSubstitutionsToLoad(t *testing.T) {
	tr, err := HOCON.ParseString(`
db {
  password = ${DB_PASSWORD}
  replica = ${?DB_REPLICA}
}
app {
  banner = "cost ${x}"
}
# ${commented}
`, "application.conf")
	require.NoError(t, err)

	pw, err := tr.String("db.password")
	require.NoError(t, err)
	assert.Equal(t, "${DB_PASSWORD}", pw)

	resolved, err := tr.Resolve(func(k string) (string, bool) {
		if k == "DB_PASSWORD" {
			return "pw", true
		}
		return "", false
	})
	require.NoError(t, err)

	pw, err = resolved.String("db.password")
	require.NoError(t, err)
	assert.Equal(t, "pw", pw)

	banner, err := resolved.String("app.banner")
	require.NoError(t, err)
	assert.Equal(t, "cost ${x}", banner)

	assert.False(t, resolved.HasPath("db.replica"))
}

func TestMaskSubstitutions(t *testing.T) {
	in := "a = ${x}\nb = \"lit ${y}\"\n// ${z}\nc = \"\"\"t ${w}\"\"\"\nd = ${?e.f}\n"

	masked, subs := maskSubstitutions(in)
	assert.Equal(t, "__helix_subst_", subs.marker)
	assert.Equal(t, []string{"${x}", "${?e.f}"}, subs.refs)
	assert.Equal(t,
		"a = \"__helix_subst_0__helix_subst_\"\nb = \"lit ${y}\"\n// ${z}\nc = \"\"\"t ${w}\"\"\"\nd = \"__helix_subst_1__helix_subst_\"\n",
		masked)

	assert.Equal(t, "${x}", subs.restore(subs.placeholder(0)))
	assert.Equal(t, "pre ${?e.f} $${lit}", subs.restore("pre "+subs.placeholder(1)+" ${lit}"))
}

func TestMaskSubstitutionsAvoidsMarkerCollision(t *testing.T) {
	masked, subs := maskSubstitutions("note = \"__helix_subst_0__helix_subst_\"\nv = ${x}\n")
	assert.Equal(t, "__helix_subst__", subs.marker)
	assert.Contains(t, masked, `"__helix_subst__0__helix_subst__"`)
	assert.Equal(t, "__helix_subst_0__helix_subst_", subs.restore("__helix_subst_0__helix_subst_"))
}
