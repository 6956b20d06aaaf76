package templates

import "strings"

// Built-in substitution tokens. Replacement is literal and non-recursive:
// substituted values are not re-scanned for tokens.
const (
	TokenTitle       = "$$DOC_TITLE$$"
	TokenDate        = "$$DOC_DATE$$"
	TokenContent     = "$$DOC_CONTENT$$"
	TokenBreadcrumbs = "$$BREADCRUMBS$$"
)

// Values holds the computed per-page substitution values. Absent
// frontmatter fields substitute as empty strings.
type Values struct {
	Title       string
	Date        string
	Content     string
	Breadcrumbs string
}

// Substitute replaces every occurrence of the four built-in tokens in
// markup with the corresponding value.
func Substitute(markup string, vals Values) string {
	out := strings.ReplaceAll(markup, TokenTitle, vals.Title)
	out = strings.ReplaceAll(out, TokenDate, vals.Date)
	out = strings.ReplaceAll(out, TokenContent, vals.Content)
	out = strings.ReplaceAll(out, TokenBreadcrumbs, vals.Breadcrumbs)
	return out
}

// Render produces the final page HTML: asset references in the template
// markup are rewritten for the page's location first, then tokens are
// substituted. Rewriting happens before substitution so links generated
// from the markdown body are never touched.
func (t *Template) Render(vals Values, prefixToRoot string) string {
	markup := RewriteAssetRefs(t.Content, prefixToRoot)
	return Substitute(markup, vals)
}
