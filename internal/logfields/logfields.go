package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyInput      = "input"
	KeyOutput     = "output"
	KeyTemplate   = "template"
	KeyURL        = "url"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Input(p string) slog.Attr         { return slog.String(KeyInput, p) }
func Output(p string) slog.Attr        { return slog.String(KeyOutput, p) }
func Template(name string) slog.Attr   { return slog.String(KeyTemplate, name) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
