package site

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/mdsite/internal/breadcrumbs"
	"git.home.luguber.info/inful/mdsite/internal/frontmatter"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/markdown"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/templates"
)

// DefaultTemplateName is used when a page's frontmatter names no template.
const DefaultTemplateName = "default"

// ErrInputDirUnreadable indicates the input root could not be walked. This
// is fatal for the whole run.
var ErrInputDirUnreadable = errors.New("input directory unreadable")

// Generator walks the input tree and drives per-file conversion or copy,
// mirroring the directory structure into the output root. It holds only
// read-only state and may be reused across runs.
type Generator struct {
	inputRoot    string
	outputRoot   string
	templatesDir string
	registry     *templates.Registry
	renderer     *markdown.Renderer
	recorder     metrics.Recorder
}

// NewGenerator builds a Generator. templatesDir is the folder name inside
// the input root that holds templates (it is excluded from the walk).
// A nil recorder falls back to the no-op recorder.
func NewGenerator(inputRoot, outputRoot, templatesDir string, registry *templates.Registry, recorder metrics.Recorder) *Generator {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Generator{
		inputRoot:    inputRoot,
		outputRoot:   outputRoot,
		templatesDir: templatesDir,
		registry:     registry,
		renderer:     markdown.NewRenderer(),
		recorder:     recorder,
	}
}

// Build performs one full synchronous run: every markdown file is converted
// through its template, every other file is copied byte-for-byte, and
// template assets land in the shared output folder. Per-file failures are
// collected in the report; only precondition failures abort the run.
// Stale files from previous runs are not pruned.
func (g *Generator) Build(ctx context.Context) (*Report, error) {
	report := newReport()
	slog.Info("Starting build",
		logfields.BuildID(report.BuildID),
		logfields.Input(g.inputRoot),
		logfields.Output(g.outputRoot))

	if info, err := os.Stat(g.inputRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInputDirUnreadable, g.inputRoot)
	}
	if err := os.MkdirAll(g.outputRoot, 0o750); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}

	if err := g.walkInput(ctx, report); err != nil {
		return nil, err
	}
	g.copyTemplateAssets(ctx, report)

	report.Duration = time.Since(report.StartedAt)
	g.recorder.ObserveBuildDuration(report.Duration)
	if report.Failed() {
		g.recorder.IncBuildOutcome("failed")
	} else {
		g.recorder.IncBuildOutcome("success")
	}
	return report, nil
}

// walkInput visits every entry under the input root except the templates
// folder and dispatches per-file conversion or copy.
func (g *Generator) walkInput(ctx context.Context, report *Report) error {
	start := time.Now()
	defer func() { g.recorder.ObserveStageDuration("walk", time.Since(start)) }()

	err := filepath.WalkDir(g.inputRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == g.templatesDir && p != g.inputRoot {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(g.inputRoot, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if strings.EqualFold(filepath.Ext(p), ".md") {
			if err := g.renderPage(p, rel); err != nil {
				report.addFailure(rel, err)
				g.recorder.IncPageResult(metrics.ResultFailure)
				slog.Error("Page failed", logfields.BuildID(report.BuildID), logfields.File(rel), logfields.Error(err))
				return nil
			}
			report.Pages++
			g.recorder.IncPageResult(metrics.ResultSuccess)
			return nil
		}

		if err := g.copyFile(p, filepath.Join(g.outputRoot, filepath.FromSlash(rel))); err != nil {
			report.addFailure(rel, err)
			g.recorder.IncAssetResult(metrics.ResultFailure)
			slog.Error("Asset copy failed", logfields.BuildID(report.BuildID), logfields.File(rel), logfields.Error(err))
			return nil
		}
		report.Assets++
		g.recorder.IncAssetResult(metrics.ResultSuccess)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInputDirUnreadable, err)
	}
	return nil
}

// renderPage converts one markdown file: frontmatter, body render, template
// resolution, token substitution, write.
func (g *Generator) renderPage(srcPath, rel string) error {
	content, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}

	fields, body, err := frontmatter.Parse(content)
	if err != nil {
		return err
	}

	name := fields.Template
	if name == "" {
		name = DefaultTemplateName
	}
	tpl, err := g.registry.Lookup(name)
	if err != nil {
		return err
	}

	fragment, err := g.renderer.Render(body)
	if err != nil {
		return err
	}

	vals := templates.Values{
		Title:       fields.Title,
		Content:     fragment,
		Breadcrumbs: breadcrumbs.Render(breadcrumbs.Build(rel)),
	}
	if fields.Date != "" {
		vals.Date = "Written " + fields.Date
	}

	final := tpl.Render(vals, prefixToRoot(rel))

	outPath := filepath.Join(g.outputRoot, filepath.FromSlash(strings.TrimSuffix(rel, filepath.Ext(rel))+".html"))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(final), 0o644); err != nil {
		return fmt.Errorf("write page: %w", err)
	}

	slog.Debug("Page written", logfields.File(rel), logfields.Template(name), logfields.Path(outPath))
	return nil
}

// copyTemplateAssets copies every non-template file from the templates
// folder into the shared output asset folder, preserving relative structure.
func (g *Generator) copyTemplateAssets(ctx context.Context, report *Report) {
	start := time.Now()
	defer func() { g.recorder.ObserveStageDuration("template_assets", time.Since(start)) }()

	for _, asset := range g.registry.Assets() {
		if ctx.Err() != nil {
			return
		}
		dst := filepath.Join(g.outputRoot, templates.OutputAssetDir, filepath.FromSlash(asset.RelPath))
		if err := g.copyFile(asset.SourcePath, dst); err != nil {
			report.addFailure(asset.RelPath, err)
			g.recorder.IncAssetResult(metrics.ResultFailure)
			slog.Error("Template asset copy failed", logfields.BuildID(report.BuildID), logfields.File(asset.RelPath), logfields.Error(err))
			continue
		}
		report.TemplateAssets++
	}
}

// copyFile copies src to dst byte-for-byte, creating parent directories.
func (g *Generator) copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy contents: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	return nil
}

// prefixToRoot returns the ../ chain from a page's output directory up to
// the output root.
func prefixToRoot(rel string) string {
	dir := path.Dir(rel)
	if dir == "." {
		return ""
	}
	depth := strings.Count(dir, "/") + 1
	return strings.Repeat("../", depth)
}
