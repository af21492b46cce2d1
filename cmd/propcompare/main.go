package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/propcompare/internal/application"
	"github.com/eugenenazirov/propcompare/internal/config"
	"github.com/eugenenazirov/propcompare/internal/logging"
)

var signalNotify = signal.Notify

type cli struct {
	app *kingpin.Application

	compare *kingpin.CmdClause
	serve   *kingpin.CmdClause

	configFile *string
	logLevel   *string

	files   *[]string
	format  *string
	output  *string
	missing *string
	noColor *bool
	preview *bool
	workers *int

	port           *string
	rateLimitRPS   *float64
	rateLimitBurst *int
}

func newCLI() *cli {
	c := &cli{}
	c.app = kingpin.New("propcompare", "Compare .properties, YAML and TOML configuration files key by key")
	c.configFile = c.app.Flag("config", "Path to YAML configuration file").String()
	c.logLevel = c.app.Flag("log-level", "Log level (debug, info, warn, error)").String()

	c.compare = c.app.Command("compare", "Compare two or more configuration files").Default()
	c.files = c.compare.Arg("files", "Files to compare (.properties, .yml, .yaml, .toml)").Strings()
	c.format = c.compare.Flag("format", "Report format: console, html or markdown").Short('f').String()
	c.output = c.compare.Flag("output", "Write the html or markdown report to this file").Short('o').String()
	c.missing = c.compare.Flag("missing", "Placeholder shown for keys absent from a file").String()
	c.noColor = c.compare.Flag("no-color", "Disable colored console output").Bool()
	c.preview = c.compare.Flag("preview", "Render markdown reports for the terminal").Bool()
	c.workers = c.compare.Flag("workers", "Number of files parsed concurrently").Default("0").Int()

	c.serve = c.app.Command("serve", "Serve the comparison API over HTTP")
	c.port = c.serve.Flag("port", "HTTP port exposed by the service").String()
	c.rateLimitRPS = c.serve.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	c.rateLimitBurst = c.serve.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()
	return c
}

func (c *cli) overrides() *config.CLIOverrides {
	overrides := &config.CLIOverrides{
		ConfigFile:   *c.configFile,
		Format:       c.format,
		OutputFile:   c.output,
		MissingValue: c.missing,
		NoColor:      c.noColor,
		Preview:      c.preview,
		Workers:      c.workers,
		LogLevel:     c.logLevel,
		Port:         c.port,
	}

	if *c.rateLimitRPS >= 0 {
		overrides.RateLimitRPS = c.rateLimitRPS
	}

	if *c.rateLimitBurst >= 0 {
		overrides.RateLimitBurst = c.rateLimitBurst
	}

	return overrides
}

func main() {
	c := newCLI()
	command := kingpin.MustParse(c.app.Parse(os.Args[1:]))

	cfg, err := config.Load(c.overrides())
	if err != nil {
		c.app.Fatalf("failed to load configuration: %v", err)
	}

	switch command {
	case c.serve.FullCommand():
		serve(c.app, cfg)
	default:
		if err := runCompare(cfg, *c.files, os.Stdout); err != nil {
			c.app.Fatalf("%v", err)
		}
	}
}

// runCompare executes a single comparison. Mismatching files are not an
// error; only configuration and input validation failures are.
func runCompare(cfg config.Config, files []string, stdout io.Writer) error {
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Encoding: "console"})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	result, err := app.Run(files, stdout)
	if err != nil {
		return err
	}
	logger.Debug("compare finished", zap.Int("mismatches", result.MismatchCount))
	return nil
}

func serve(kapp *kingpin.Application, cfg config.Config) {
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Encoding: "json"})
	if err != nil {
		kapp.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
