package templates

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// OutputAssetDir is the folder under the output root that shared template
// assets are copied into. Pages reference assets through this folder.
const OutputAssetDir = "_template"

// Template is one HTML file under the templates folder, keyed by file stem.
// Content holds the raw markup including built-in tokens and asset
// references; it is immutable after registry load.
type Template struct {
	Name    string
	Content string
}

// Asset is a non-template file found inside the templates folder. RelPath is
// the path relative to the templates folder; the same relative path is used
// under OutputAssetDir, so nested folders keep their structure.
type Asset struct {
	SourcePath string
	RelPath    string
}

// Registry holds every template and template asset found in the templates
// folder. It is loaded once per run and passed by reference; it is never
// mutated afterwards, so concurrent readers need no locking.
type Registry struct {
	templates map[string]*Template
	assets    []Asset
}

// LoadRegistry scans dir once. Each .html file registers a Template keyed
// by its file stem; every other file, recursively, is recorded as a shared
// asset.
func LoadRegistry(dir string) (*Registry, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrTemplatesDirUnreadable, dir)
	}

	reg := &Registry{templates: map[string]*Template{}}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if strings.EqualFold(filepath.Ext(path), ".html") {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read template %s: %w", path, err)
			}
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			reg.templates[name] = &Template{Name: name, Content: string(content)}
			slog.Debug("Registered template", logfields.Template(name), logfields.Path(path))
			return nil
		}

		reg.assets = append(reg.assets, Asset{SourcePath: path, RelPath: rel})
		slog.Debug("Registered template asset", logfields.Path(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTemplatesDirUnreadable, dir, err)
	}

	slog.Info("Templates loaded",
		slog.Int("templates", len(reg.templates)),
		slog.Int("assets", len(reg.assets)))
	return reg, nil
}

// Lookup returns the template registered under name. Lookup is by exact
// name match against the frontmatter `template:` value.
func (r *Registry) Lookup(name string) (*Template, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return tpl, nil
}

// Assets returns the (sourcePath, destRelativePath) pairs to copy into the
// shared output asset folder.
func (r *Registry) Assets() []Asset {
	return r.assets
}

// Names returns the registered template names, for diagnostics.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}
