package logfields

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"File", KeyFile, "index.md", File("index.md")},
		{"Input", KeyInput, "in", Input("in")},
		{"Output", KeyOutput, "out", Output("out")},
		{"Template", KeyTemplate, "page", Template("page")},
		{"URL", KeyURL, "https://example.org", URL("https://example.org")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.attrKey, tc.attr.Key)
			require.Equal(t, tc.attrVal, tc.attr.Value.String())
		})
	}
}

func TestError_NilError_EmptyValue(t *testing.T) {
	attr := Error(nil)
	require.Equal(t, KeyError, attr.Key)
	require.Equal(t, "", attr.Value.String())
}

func TestError_WrapsMessage(t *testing.T) {
	attr := Error(errors.New("boom"))
	require.Equal(t, "boom", attr.Value.String())
}
