package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Fields is the typed view of the recognized frontmatter keys.
//
// Unknown keys are preserved in Extra; they take no part in token
// substitution but remain available to callers.
type Fields struct {
	Title    string
	Date     string
	Template string
	Extra    map[string]any
}

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a YAML frontmatter delimiter, had is
// false and body is the full input. Both LF and CRLF documents are handled.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	frontmatterStart := len(open)
	closeLine := []byte("---" + nl)
	if bytes.HasPrefix(content[frontmatterStart:], closeLine) {
		bodyStart := frontmatterStart + len(closeLine)
		return []byte{}, content[bodyStart:], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[frontmatterStart:], closeSeq)
	if idx < 0 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	frontmatterEnd := frontmatterStart + idx + len(nl)
	bodyStart := frontmatterStart + idx + len(closeSeq)
	return content[frontmatterStart:frontmatterEnd], content[bodyStart:], true, nil
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(frontmatter) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Parse splits a Markdown document and returns the typed frontmatter fields
// together with the remaining body.
//
// A document without a frontmatter block yields zero-valued Fields and the
// full input as body. Recognized keys that are absent stay empty strings.
func Parse(content []byte) (Fields, []byte, error) {
	raw, body, had, err := Split(content)
	if err != nil {
		return Fields{}, nil, err
	}
	if !had {
		return Fields{Extra: map[string]any{}}, body, nil
	}

	mapping, err := ParseYAML(raw)
	if err != nil {
		return Fields{}, nil, fmt.Errorf("parse frontmatter yaml: %w", err)
	}

	fields := Fields{Extra: map[string]any{}}
	for key, value := range mapping {
		switch key {
		case "title":
			fields.Title = stringify(value)
		case "date":
			fields.Date = stringify(value)
		case "template":
			fields.Template = strings.TrimSpace(stringify(value))
		default:
			fields.Extra[key] = value
		}
	}
	return fields, body, nil
}

// stringify renders a scalar frontmatter value as a string. YAML parses
// unquoted dates and numbers into typed values; pages only ever need the
// textual form.
func stringify(v any) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case time.Time:
		// yaml.v3 resolves unquoted ISO dates into time.Time.
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func detectNewline(content []byte) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
