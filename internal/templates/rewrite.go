package templates

import (
	"io"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// RewriteAssetRefs rewrites relative src= and href= attribute values in
// template markup to point into the shared output asset folder.
//
// prefixToRoot is the ../ chain from the page's output directory up to the
// output root ("" for the root page). A template reference like
// href="css/site.css" becomes href="../_template/css/site.css" for a page
// one level deep.
//
// The markup is walked with the x/net/html tokenizer; tokens that are not
// rewritten are emitted from their raw bytes, so untouched markup (including
// the built-in $$...$$ tokens in text nodes) passes through byte-for-byte.
func RewriteAssetRefs(markup string, prefixToRoot string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var out strings.Builder
	out.Grow(len(markup))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				// Tokenizer bailed on malformed markup: emit the remainder untouched.
				out.Write(z.Raw())
			}
			return out.String()
		}

		raw := z.Raw()
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.Write(raw)
			continue
		}

		tok := z.Token()
		changed := false
		for i, attr := range tok.Attr {
			if attr.Key != "src" && attr.Key != "href" {
				continue
			}
			if !isRelativeAssetRef(attr.Val) {
				continue
			}
			tok.Attr[i].Val = path.Join(prefixToRoot, OutputAssetDir, attr.Val)
			changed = true
		}

		if changed {
			out.WriteString(tok.String())
		} else {
			out.Write(raw)
		}
	}
}

// isRelativeAssetRef reports whether an attribute value points at a file
// inside the templates folder. Absolute URLs, root-relative paths,
// fragments, and token placeholders are left alone.
func isRelativeAssetRef(val string) bool {
	if val == "" {
		return false
	}
	if strings.HasPrefix(val, "#") || strings.HasPrefix(val, "/") || strings.HasPrefix(val, "$$") {
		return false
	}
	for _, scheme := range []string{"http:", "https:", "mailto:", "tel:", "data:", "//"} {
		if strings.HasPrefix(val, scheme) {
			return false
		}
	}
	return true
}
