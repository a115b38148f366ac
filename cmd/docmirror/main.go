package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/fs"
	dochttp "github.com/fwojciec/docmirror/http"
	"github.com/fwojciec/docmirror/jsonschema"
	"github.com/fwojciec/docmirror/llmstxt"
	"github.com/fwojciec/docmirror/mirror"
	docslog "github.com/fwojciec/docmirror/slog"
	"github.com/fwojciec/docmirror/yaml"
	"golang.org/x/time/rate"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getenv is injected for end-to-end tests. Defaults to os.Getenv.
	Getenv func(string) string
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Getenv: os.Getenv}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docmirror"),
		kong.Description("Mirror Claude documentation sites to local markdown files"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags. No
	// command means sync.
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Resolve configuration: defaults, then file, then environment, then
	// flags.
	cfg := docmirror.DefaultConfig()
	if cli.Config != "" {
		cfg, err = yaml.Load(cli.Config, cfg)
		if err != nil {
			return err
		}
	}
	for _, warning := range cfg.ApplyEnv(m.Getenv) {
		fmt.Fprintf(stderr, "warning: %s\n", warning)
	}
	if cli.Dir != "" {
		cfg.DocsDir = cli.Dir
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	deps.Config = cfg
	deps.Logger = logger

	// Wire command-specific dependencies based on command
	switch kongCtx.Command() {
	case "sync":
		fetcher := dochttp.NewFetcher(
			dochttp.WithTimeout(cfg.RequestTimeout),
			dochttp.WithUserAgent(cfg.UserAgent),
			dochttp.WithRetryPolicy(cfg.Retry),
		)
		defer fetcher.Close()

		syncer, err := buildSyncer(cfg, docslog.NewLoggingFetcher(fetcher, logger), logger)
		if err != nil {
			return err
		}
		deps.Syncer = syncer

	case "verify":
		schema, err := jsonschema.NewManifestValidator()
		if err != nil {
			return err
		}
		deps.Verifier = &mirror.Verifier{Config: cfg, Schema: schema, Logger: logger}

	case "migrate":
		deps.Migrator = &mirror.Migrator{
			Config:    cfg,
			Manifests: fs.NewManifestStore(cfg.DocsDir, ""),
			Logger:    logger,
		}
	}

	return kongCtx.Run(deps)
}

// buildSyncer wires the full sync pipeline from configuration.
func buildSyncer(cfg docmirror.Config, fetcher docmirror.Fetcher, logger *slog.Logger) (*mirror.Syncer, error) {
	docs, err := fs.NewDocDir(cfg.DocsDir)
	if err != nil {
		return nil, err
	}

	sources := make([]mirror.SyncSource, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		var svc docmirror.DiscoveryService = llmstxt.NewDiscoverer(fetcher, src)
		svc = docslog.NewLoggingDiscoveryService(svc, src.Label, logger)
		sources = append(sources, mirror.SyncSource{Config: src, Service: svc})
	}

	var limiter *rate.Limiter
	if cfg.FetchDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.FetchDelay), 1)
	}

	var changelog *docmirror.ChangelogConfig
	if cfg.Changelog.URL != "" {
		cl := cfg.Changelog
		changelog = &cl
	}

	return &mirror.Syncer{
		Sources:     sources,
		Changelog:   changelog,
		Fetcher:     fetcher,
		Validator:   docmirror.NewValidator(),
		Manifests:   fs.NewManifestStore(cfg.DocsDir, ""),
		Docs:        docs,
		Limiter:     limiter,
		Repo:        cfg.Repo,
		Description: cfg.Description,
		Version:     docmirror.Version,
		Logger:      logger,
	}, nil
}
