package application

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/propcompare/internal/api"
	"github.com/eugenenazirov/propcompare/internal/compare"
	"github.com/eugenenazirov/propcompare/internal/config"
	"github.com/eugenenazirov/propcompare/internal/parser"
	"github.com/eugenenazirov/propcompare/internal/report"
)

const minFiles = 2

// App encapsulates the comparison pipeline and the HTTP server.
type App struct {
	cfg        config.Config
	parser     *parser.Dispatcher
	comparator *compare.Comparator
	handler    *api.Handler
	router     http.Handler
	logger     *zap.Logger
	server     *http.Server

	stat      func(name string) (fs.FileInfo, error)
	writeFile func(name string, data []byte, perm fs.FileMode) error
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	opts := compare.Options{
		Missing: cfg.MissingValue,
		Workers: cfg.Workers,
	}

	dispatcher := parser.NewDispatcher(logger.Named("parser"))
	comparator := compare.New(dispatcher, opts)
	handler := api.NewHandler(dispatcher, opts, api.WithMaxRequestBytes(cfg.MaxRequestBytes))
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		cfg:        cfg,
		parser:     dispatcher,
		comparator: comparator,
		handler:    handler,
		router:     apiRouter,
		logger:     logger,
		server:     NewServer(cfg, BuildRootHandler(apiRouter)),
		stat:       os.Stat,
		writeFile:  os.WriteFile,
	}, nil
}

// Run validates paths, compares the files and emits the configured report to
// stdout or the configured output file. Mismatches are reported through the
// returned Result, never as an error.
func (a *App) Run(paths []string, stdout io.Writer) (compare.Result, error) {
	if err := a.validate(paths); err != nil {
		return compare.Result{}, err
	}

	result := a.comparator.Compare(paths)
	a.logger.Debug("comparison finished",
		zap.Int("files", len(paths)),
		zap.Int("keys", len(result.Rows)),
		zap.Int("mismatches", result.MismatchCount),
	)

	format, ok := report.ParseFormat(a.cfg.Format)
	if !ok {
		a.logger.Warn("unsupported format, falling back to console output",
			zap.String("format", a.cfg.Format),
			zap.Strings("supported", report.Names()),
		)
	}

	if err := a.render(format, paths, result, stdout); err != nil {
		return result, err
	}
	return result, nil
}

func (a *App) validate(paths []string) error {
	if len(paths) < minFiles {
		return fmt.Errorf("%w: got %d", ErrNotEnoughFiles, len(paths))
	}
	for _, path := range paths {
		info, err := a.stat(path)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrFileNotFound, path, err)
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("%w: %s is not a regular file", ErrFileNotFound, path)
		}
	}
	return nil
}

func (a *App) render(format report.Format, paths []string, result compare.Result, stdout io.Writer) error {
	var (
		doc string
		err error
	)

	switch format {
	case report.FormatHTML:
		doc, err = report.HTML(paths, result)
	case report.FormatMarkdown:
		doc, err = report.Markdown(paths, result)
	default:
		if a.cfg.OutputFile != "" {
			a.logger.Warn("output file is only used for html and markdown reports",
				zap.String("output", a.cfg.OutputFile))
		}
		return report.Console{Out: stdout, NoColor: a.cfg.NoColor}.Write(paths, result)
	}
	if err != nil {
		return err
	}

	if a.cfg.OutputFile != "" {
		if err := a.writeFile(a.cfg.OutputFile, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("write report %s: %w", a.cfg.OutputFile, err)
		}
		a.logger.Debug("report written", zap.String("output", a.cfg.OutputFile), zap.Stringer("format", format))
		_, err := fmt.Fprintf(stdout, "Report written to %s\n", a.cfg.OutputFile)
		return err
	}

	if format == report.FormatMarkdown && a.cfg.Preview {
		rendered, err := report.Preview(doc, a.cfg.PreviewWidth)
		if err != nil {
			a.logger.Warn("markdown preview failed, printing raw document", zap.Error(err))
		} else {
			doc = rendered
		}
	}

	_, err = io.WriteString(stdout, doc)
	return err
}

// BuildRootHandler mounts the API under /api/ and a plain-text usage note at /.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, usage)
	}))
	return mux
}

const usage = `propcompare API

GET  /api/health    service status
GET  /api/formats   supported input extensions and report formats
POST /api/compare   {"files":[{"name":"a.properties","content":"..."}],"format":"json|html|markdown"}
`

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
