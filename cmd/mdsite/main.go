package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/gitsource"
	"git.home.luguber.info/inful/mdsite/internal/history"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/notify"
	"git.home.luguber.info/inful/mdsite/internal/site"
	"git.home.luguber.info/inful/mdsite/internal/templates"
	"git.home.luguber.info/inful/mdsite/internal/watch"
)

var CLI struct {
	Input   string `short:"i" help:"Input directory containing markdown and a _templates folder"`
	Output  string `short:"o" help:"Output directory for the generated site"`
	Watch   bool   `short:"w" help:"Watch the input directory and rebuild on changes"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`
	Config  string `short:"c" help:"Optional configuration file path" type:"path"`

	Debounce     time.Duration `help:"Quiet window before a watch-mode rebuild" placeholder:"DURATION"`
	RebuildEvery time.Duration `help:"Force a periodic full rebuild in watch mode" placeholder:"DURATION"`
	MetricsAddr  string        `help:"Serve Prometheus metrics on this address in watch mode" placeholder:"ADDR"`
	History      string        `help:"Record build runs in a SQLite database at this path" placeholder:"PATH"`
	NatsURL      string        `name:"nats-url" help:"Publish build-completed events to this NATS server" placeholder:"URL"`
	Repo         string        `help:"Clone this git repository and use it as the input root" placeholder:"URL"`
	Branch       string        `help:"Branch to check out when --repo is set"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("mdsite"),
		kong.Description("mdsite - markdown site generator"))

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	if err := run(); err != nil {
		slog.Error("Run failed", logfields.Error(err))
		os.Exit(1)
	}
}

// errBuildHadFailures marks a run where some files failed; the summary has
// already been logged when this surfaces.
var errBuildHadFailures = errors.New("one or more files failed to process")

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	inputRoot := cfg.Input
	if cfg.Repo != "" {
		ws := gitsource.NewWorkspace("")
		if err := ws.Create(); err != nil {
			return err
		}
		defer func() {
			if err := ws.Cleanup(); err != nil {
				slog.Warn("Failed to cleanup workspace", logfields.Error(err))
			}
		}()

		clonePath, err := ws.Clone(cfg.Repo, cfg.Branch)
		if err != nil {
			return err
		}
		inputRoot = filepath.Join(clonePath, cfg.Input)
	}

	recorder, stopMetrics := setupMetrics(cfg)
	defer stopMetrics()

	var store *history.Store
	if cfg.HistoryPath != "" {
		store, err = history.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	var publisher *notify.Publisher
	if cfg.NATSURL != "" {
		publisher, err = notify.Connect(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer publisher.Close()
	}

	runOnce := func(ctx context.Context) (*site.Report, error) {
		registry, err := templates.LoadRegistry(filepath.Join(inputRoot, cfg.TemplatesDir))
		if err != nil {
			return nil, err
		}

		gen := site.NewGenerator(inputRoot, cfg.Output, cfg.TemplatesDir, registry, recorder)
		report, err := gen.Build(ctx)
		if err != nil {
			return nil, err
		}
		report.LogSummary()

		if store != nil {
			if err := store.Record(ctx, historyRecord(report)); err != nil {
				slog.Warn("Failed to record build history", logfields.Error(err))
			}
		}
		if publisher != nil {
			if err := publisher.PublishBuildCompleted(buildEvent(report, inputRoot, cfg.Output)); err != nil {
				slog.Warn("Failed to publish build event", logfields.Error(err))
			}
		}
		return report, nil
	}

	report, err := runOnce(ctx)
	if err != nil {
		return err
	}

	if !cfg.Watch {
		if report.Failed() {
			return errBuildHadFailures
		}
		return nil
	}

	watcher := watch.New(inputRoot, watch.Options{
		Debounce:     cfg.Debounce.Std(),
		RebuildEvery: cfg.RebuildEvery.Std(),
	}, func(ctx context.Context) error {
		_, err := runOnce(ctx)
		return err
	})
	return watcher.Run(ctx)
}

// loadConfig merges file, environment, and flags; flags win.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}

	if CLI.Input != "" {
		cfg.Input = CLI.Input
	}
	if CLI.Output != "" {
		cfg.Output = CLI.Output
	}
	if CLI.Watch {
		cfg.Watch = true
	}
	if CLI.Debounce > 0 {
		cfg.Debounce = config.Duration(CLI.Debounce)
	}
	if CLI.RebuildEvery > 0 {
		cfg.RebuildEvery = config.Duration(CLI.RebuildEvery)
	}
	if CLI.MetricsAddr != "" {
		cfg.MetricsAddr = CLI.MetricsAddr
	}
	if CLI.History != "" {
		cfg.HistoryPath = CLI.History
	}
	if CLI.NatsURL != "" {
		cfg.NATSURL = CLI.NatsURL
	}
	if CLI.Repo != "" {
		cfg.Repo = CLI.Repo
	}
	if CLI.Branch != "" {
		cfg.Branch = CLI.Branch
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupMetrics wires the Prometheus recorder and endpoint when configured;
// otherwise the no-op recorder is used.
func setupMetrics(cfg *config.Config) (metrics.Recorder, func()) {
	if cfg.MetricsAddr == "" {
		return metrics.NoopRecorder{}, func() {}
	}

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(registry))
	server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		slog.Info("Metrics endpoint listening", slog.String("addr", cfg.MetricsAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", logfields.Error(err))
		}
	}()

	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
	return recorder, stop
}

func historyRecord(report *site.Report) history.BuildRecord {
	rec := history.BuildRecord{
		BuildID:   report.BuildID,
		StartedAt: report.StartedAt,
		Duration:  report.Duration,
		Pages:     report.Pages,
		Assets:    report.Assets + report.TemplateAssets,
	}
	for _, f := range report.Failures {
		rec.Failures = append(rec.Failures, history.FailureRecord{Path: f.Path, Reason: f.Err.Error()})
	}
	return rec
}

func buildEvent(report *site.Report, input, output string) notify.BuildEvent {
	return notify.BuildEvent{
		BuildID:     report.BuildID,
		Input:       input,
		Output:      output,
		Pages:       report.Pages,
		Assets:      report.Assets + report.TemplateAssets,
		Failures:    len(report.Failures),
		DurationMS:  report.Duration.Milliseconds(),
		CompletedAt: report.StartedAt.Add(report.Duration),
	}
}
