// Package breadcrumbs derives the ancestor-folder link chain for a page
// from its path relative to the site root.
package breadcrumbs

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Entry is one (label, link) pair for a path segment between the site root
// and the current page.
type Entry struct {
	Label string
	Href  string
}

var titleCaser = cases.Title(language.English)

// Build returns one Entry per path segment from root to the page's
// containing folder, inclusive. relPath is the page's path relative to the
// input root, slash-separated (e.g. "foo/bar/index.md").
//
// The site convention is that every addressable page is index.md in its own
// folder; a page named otherwise contributes its own stem as a final
// segment. The root index.md yields no entries.
func Build(relPath string) []Entry {
	p := strings.TrimSuffix(path.Clean(filepathToSlash(relPath)), path.Ext(relPath))
	if path.Base(p) == "index" {
		p = path.Dir(p)
	}
	if p == "." || p == "/" || p == "" {
		return nil
	}

	segments := strings.Split(p, "/")
	entries := make([]Entry, len(segments))
	for i, seg := range segments {
		entries[i] = Entry{
			Label: prettify(seg),
			Href:  strings.Repeat("../", len(segments)-1-i) + "index.html",
		}
	}
	return entries
}

// Render produces the breadcrumb HTML: a root link followed by one link per
// ancestor, joined by " / ", with the final entry left unlinked since it is
// the current location. An empty chain (the root page) renders as "".
func Render(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<nav class="breadcrumbs">`)
	b.WriteString(`<a href="` + strings.Repeat("../", len(entries)) + `index.html">Root</a>`)
	for i, e := range entries {
		b.WriteString(" / ")
		if i == len(entries)-1 {
			b.WriteString(`<span>` + e.Label + `</span>`)
			continue
		}
		b.WriteString(`<a href="` + e.Href + `">` + e.Label + `</a>`)
	}
	b.WriteString(`</nav>`)
	return b.String()
}

// prettify turns a folder name into a readable label.
func prettify(segment string) string {
	label := strings.NewReplacer("-", " ", "_", " ").Replace(segment)
	return titleCaser.String(label)
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
