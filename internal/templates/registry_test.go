package templates

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadRegistry_HTMLFiles_RegisteredByStem(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "page.html"), "<title>$$DOC_TITLE$$</title>")
	writeFile(t, filepath.Join(dir, "default.html"), "<body>$$DOC_CONTENT$$</body>")

	reg, err := LoadRegistry(dir)
	require.NoError(t, err)

	tpl, err := reg.Lookup("page")
	require.NoError(t, err)
	require.Equal(t, "page", tpl.Name)
	require.Equal(t, "<title>$$DOC_TITLE$$</title>", tpl.Content)

	_, err = reg.Lookup("default")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"page", "default"}, reg.Names())
}

func TestLoadRegistry_NonHTMLFiles_RecordedAsAssetsWithStructure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "page.html"), "x")
	writeFile(t, filepath.Join(dir, "site.css"), "body{}")
	writeFile(t, filepath.Join(dir, "img", "logo.png"), "png-bytes")

	reg, err := LoadRegistry(dir)
	require.NoError(t, err)

	assets := reg.Assets()
	require.Len(t, assets, 2)

	rels := []string{assets[0].RelPath, assets[1].RelPath}
	require.ElementsMatch(t, []string{"site.css", "img/logo.png"}, rels)
}

func TestLookup_UnknownName_ReturnsSentinel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "page.html"), "x")

	reg, err := LoadRegistry(dir)
	require.NoError(t, err)

	_, err = reg.Lookup("missing")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTemplateNotFound))
}

func TestLoadRegistry_MissingDir_ReturnsSentinel(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTemplatesDirUnreadable))
}
