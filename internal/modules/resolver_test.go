package modules

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webtemplate-backend/internal/storage"
)

func newResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	root := t.TempDir()
	return NewResolver(NewRegistry(root), storage.NewLocalStorage(), zerolog.Nop()), root
}

func TestModulePath(t *testing.T) {
	r, root := newResolver(t)

	p, err := r.ModulePath("Website")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "website"), p)

	p, err = r.ModulePath("Portal Pages")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "portal_pages"), p)

	_, err = r.ModulePath("  ")
	assert.ErrorIs(t, err, ErrNoModule)
}

func TestModulePath_Registered(t *testing.T) {
	r, _ := newResolver(t)
	custom := filepath.Join(t.TempDir(), "elsewhere")
	r.registry.Load(map[string]string{"website": custom})

	p, err := r.ModulePath("Website")
	require.NoError(t, err)
	assert.Equal(t, custom, p)
}

func TestRegistry_LoadReplaces(t *testing.T) {
	reg := NewRegistry(t.TempDir())
	reg.Load(map[string]string{"Website": "/a", "Portal": "/b"})
	assert.Equal(t, []string{"portal", "website"}, reg.Names())

	reg.Load(map[string]string{"Blog": "/c"})
	assert.Equal(t, []string{"blog"}, reg.Names())
	_, ok := reg.Lookup("website")
	assert.False(t, ok)
}

func TestScrubDtDn(t *testing.T) {
	dt, dn := ScrubDtDn("Web Template", "Hero Section")
	assert.Equal(t, "web_template", dt)
	assert.Equal(t, "hero_section", dn)
}

func TestExportToFiles(t *testing.T) {
	r, root := newResolver(t)

	doc := map[string]any{"name": "Hero Section", "standard": true}
	err := r.ExportToFiles([]Record{{DocType: "Web Template", Name: "Hero Section", Module: "Website", Doc: doc}}, true)
	require.NoError(t, err)

	folder := filepath.Join(root, "website", "web_template", "hero_section")
	b, err := os.ReadFile(filepath.Join(folder, "hero_section.json"))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "Web Template", got["doctype"])
	assert.Equal(t, "Website", got["module"])
	assert.Equal(t, "Hero Section", got["name"])

	for _, dir := range []string{
		filepath.Join(root, "website"),
		filepath.Join(root, "website", "web_template"),
		folder,
	} {
		_, err := os.Stat(filepath.Join(dir, InitFile))
		assert.NoError(t, err, "missing %s in %s", InitFile, dir)
	}
}

func TestExportToFiles_WithoutInit(t *testing.T) {
	r, root := newResolver(t)

	err := r.ExportToFiles([]Record{{DocType: "Web Template", Name: "Footer", Module: "Website", Doc: map[string]any{}}}, false)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "website", InitFile))
	assert.True(t, os.IsNotExist(err))
}

func TestExportToFiles_RejectsNonObject(t *testing.T) {
	r, _ := newResolver(t)
	err := r.ExportToFiles([]Record{{DocType: "Web Template", Name: "x", Module: "Website", Doc: []string{"a"}}}, false)
	require.Error(t, err)
}
