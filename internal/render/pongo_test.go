package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderString(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	out, err := e.RenderString("<h1>{{ title }}</h1>{% for i in items %}[{{ i }}]{% endfor %}", map[string]any{
		"title": "Hello",
		"items": []any{int64(1), int64(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hello</h1>[1][2]", out)
}

func TestRenderString_SelfReferentialValues(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	values := map[string]any{"a": int64(1)}
	values["values"] = values

	out, err := e.RenderString("{{ a }}|{{ values.a }}", values)
	require.NoError(t, err)
	assert.Equal(t, "1|1", out)
}

func TestRenderString_SkipsInvalidIdentifiers(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	out, err := e.RenderString("{{ ok }}", map[string]any{"ok": "yes", "not-ok": "no"})
	require.NoError(t, err)
	assert.Equal(t, "yes", out)
}

func TestRenderString_ParseError(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	_, err = e.RenderString("{% if %}", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse template")
}

func TestRenderString_Globals(t *testing.T) {
	e, err := New(WithGlobals(map[string]any{"site": "Example"}))
	require.NoError(t, err)

	out, err := e.RenderString("{{ site }}/{{ page }}", map[string]any{"page": "home"})
	require.NoError(t, err)
	assert.Equal(t, "Example/home", out)
}

func TestRenderString_IncludeFromBaseDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partial.html"), []byte("<b>{{ name }}</b>"), 0644))

	e, err := New(WithBaseDir(dir))
	require.NoError(t, err)

	out, err := e.RenderString(`<p>{% include "partial.html" %}</p>`, map[string]any{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "<p><b>Ada</b></p>", out)
}

func TestRenderString_FileTagsNeedBaseDir(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	for _, tmpl := range []string{
		`{% include "partial.html" %}`,
		`{% extends "base.html" %}`,
		`{% import "macros.html" m %}`,
		`{% ssi "/etc/hostname" %}`,
	} {
		_, err := e.RenderString(tmpl, nil)
		assert.Error(t, err, tmpl)
	}
}

func TestRenderString_IncludeOutsideBaseDir(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "secret.html")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0644))

	dir := t.TempDir()
	e, err := New(WithBaseDir(dir))
	require.NoError(t, err)

	_, err = e.RenderString(`{% include "`+outside+`" %}`, nil)
	assert.Error(t, err)

	_, err = e.RenderString(`{% include "../`+filepath.Base(filepath.Dir(outside))+`/secret.html" %}`, nil)
	assert.Error(t, err)
}
