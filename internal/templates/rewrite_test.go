package templates

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRewriteAssetRefs_RelativeCSS_RewrittenWithPrefix(t *testing.T) {
	in := `<link rel="stylesheet" href="css/site.css">`

	out := RewriteAssetRefs(in, "../../")
	require.Contains(t, out, `href="../../_template/css/site.css"`)
}

func TestRewriteAssetRefs_RootPage_NoPrefix(t *testing.T) {
	in := `<img src="logo.png">`

	out := RewriteAssetRefs(in, "")
	require.Contains(t, out, `src="_template/logo.png"`)
}

func TestRewriteAssetRefs_AbsoluteAndFragmentRefs_Untouched(t *testing.T) {
	in := `<a href="https://example.org/x">a</a>` +
		`<a href="#section">b</a>` +
		`<a href="/root.html">c</a>` +
		`<a href="mailto:me@example.org">d</a>` +
		`<script src="//cdn.example.org/lib.js"></script>`

	out := RewriteAssetRefs(in, "../")
	require.Equal(t, in, out)
}

func TestRewriteAssetRefs_TextNodesAndTokens_PassThroughVerbatim(t *testing.T) {
	in := "<body>\n  $$DOC_CONTENT$$\n  <p>plain &amp; text</p>\n</body>"

	out := RewriteAssetRefs(in, "../")
	require.Equal(t, in, out)
}

func TestRewriteAssetRefs_SelfClosingTag_Rewritten(t *testing.T) {
	in := `<img src="img/logo.svg"/>`

	out := RewriteAssetRefs(in, "../")
	require.Contains(t, out, `src="../_template/img/logo.svg"`)
}

func TestRewriteAssetRefs_TokenValuedAttr_Untouched(t *testing.T) {
	in := `<a href="$$DOC_TITLE$$">x</a>`

	out := RewriteAssetRefs(in, "../")
	require.Equal(t, in, out)
}
