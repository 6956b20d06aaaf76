package site

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// FileFailure records one per-file processing failure. The run continues
// past these; they are surfaced together at the end.
type FileFailure struct {
	Path string
	Err  error
}

// Report summarizes a single generator run.
type Report struct {
	BuildID        string
	StartedAt      time.Time
	Duration       time.Duration
	Pages          int
	Assets         int
	TemplateAssets int
	Failures       []FileFailure
}

func newReport() *Report {
	return &Report{
		BuildID:   uuid.NewString()[:8],
		StartedAt: time.Now(),
	}
}

func (r *Report) addFailure(path string, err error) {
	r.Failures = append(r.Failures, FileFailure{Path: path, Err: err})
}

// Failed reports whether any file failed to process.
func (r *Report) Failed() bool { return len(r.Failures) > 0 }

// LogSummary emits the end-of-run summary, one line per failure.
func (r *Report) LogSummary() {
	slog.Info("Build finished",
		logfields.BuildID(r.BuildID),
		slog.Int("pages", r.Pages),
		slog.Int("assets", r.Assets),
		slog.Int("template_assets", r.TemplateAssets),
		slog.Int("failures", len(r.Failures)),
		logfields.DurationMS(float64(r.Duration.Milliseconds())))

	for _, f := range r.Failures {
		slog.Error("File failed", logfields.BuildID(r.BuildID), logfields.File(f.Path), logfields.Error(f.Err))
	}
}
