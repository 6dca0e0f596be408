package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/newsnexus/pkg/aggregator"
	"github.com/umputun/newsnexus/pkg/config"
	"github.com/umputun/newsnexus/pkg/content"
	"github.com/umputun/newsnexus/pkg/feed"
	"github.com/umputun/newsnexus/pkg/llm"
	"github.com/umputun/newsnexus/pkg/notify"
	"github.com/umputun/newsnexus/pkg/repository"
	"github.com/umputun/newsnexus/pkg/scheduler"
	"github.com/umputun/newsnexus/pkg/source"
	"github.com/umputun/newsnexus/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" description:"configuration file, built-in defaults when empty"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`
	Once   bool   `long:"once" description:"run a single refresh and exit"`

	// common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	SetupLog(opts.Debug, opts.NoColor)
	log.Printf("[INFO] starting newsnexus version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

func run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if cfg.LLM.APIKey != "" {
		SetupLog(opts.Debug, opts.NoColor, cfg.LLM.APIKey)
	}

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			log.Printf("[WARN] failed to close database: %v", err)
		}
	}()

	annotator, err := makeAnnotator(ctx, cfg)
	if err != nil {
		return err
	}

	var notifier scheduler.Notifier
	if cfg.Notify.NatsURL != "" {
		pub, err := notify.Connect(cfg.Notify.NatsURL, cfg.Notify.Subject)
		if err != nil {
			return fmt.Errorf("failed to connect notifier: %w", err)
		}
		defer pub.Close()
		notifier = pub
		log.Printf("[INFO] refresh events go to nats subject %s", cfg.Notify.Subject)
	}

	pipeline := scheduler.NewPipeline(scheduler.PipelineParams{
		Settings:   repos.Setting,
		Items:      repos.Item,
		Aggregator: aggregator.New(makeRegistry(cfg), 0),
		Annotator:  annotator,
		Notifier:   notifier,
		Defaults:   cfg.DefaultSettings(),
	})

	if opts.Once {
		res, err := pipeline.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}
		log.Printf("[INFO] refreshed %d items, %d failed jobs", res.Stats.TotalItems, len(res.Failed()))
		return nil
	}

	sched, err := scheduler.NewScheduler(pipeline, scheduler.Config{
		RefreshCron:        cfg.Schedule.RefreshCron,
		SkipInitialRefresh: cfg.Schedule.SkipInitialRefresh,
	})
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	sched.Start(ctx)
	defer sched.Stop()

	listen, timeout := cfg.GetServerConfig()
	srv := server.New(server.Config{
		Listen:   listen,
		Timeout:  timeout,
		BaseURL:  cfg.Server.BaseURL,
		Version:  revision,
		Debug:    opts.Debug,
		Defaults: cfg.DefaultSettings(),
	}, repos.Setting, repos.Item, pipeline)

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// loadConfig reads the config file or falls back to built-in defaults, cli listen overrides config
func loadConfig(opts Opts) (*config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	return cfg, nil
}

// makeRegistry wires all source adapters sharing one http client
func makeRegistry(cfg *config.Config) *source.Registry {
	client := source.NewClient(cfg.HTTP)
	parser := feed.NewParser()
	return source.NewRegistry(
		source.NewHackerNews(client, cfg.Sources.HackerNews),
		source.NewDevTo(client, cfg.Sources.DevTo),
		source.NewMock(),
		source.NewCuratedRSS(client, parser, cfg.Sources.RSS),
		source.NewManualRSS(client, parser, cfg.Sources.RSS),
		source.NewScraper(client, cfg.Sources.Scraper),
	)
}

// makeAnnotator returns nil when no llm api key is configured
func makeAnnotator(ctx context.Context, cfg *config.Config) (scheduler.Annotator, error) {
	gen, err := llm.NewGenerator(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm generator: %w", err)
	}
	if gen == nil {
		log.Print("[INFO] llm api key is not set, annotation disabled")
		return nil, nil //nolint:nilnil // annotation is optional
	}

	var extractor llm.Extractor
	if cfg.Extraction.Enabled {
		extractor = content.NewHTTPExtractor(cfg.Extraction)
	}
	log.Printf("[INFO] annotation enabled with %s model %s", cfg.LLM.Provider, cfg.LLM.Model)
	return llm.NewAnnotator(gen, extractor, cfg.LLM.MaxItems), nil
}

// SetupLog configures lgr with colors and masks secrets
func SetupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
