// Package blog is the top level facade for the article publishing module. It
// wires the content store, publish workflow, Markdown preview renderer, and
// optional history recorder from a single runtime configuration.
package blog

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/Allenwdk/OxygenBlog/internal/article"
	"github.com/Allenwdk/OxygenBlog/internal/history"
	blohttp "github.com/Allenwdk/OxygenBlog/internal/http"
	"github.com/Allenwdk/OxygenBlog/internal/logging"
	"github.com/Allenwdk/OxygenBlog/internal/logging/console"
	"github.com/Allenwdk/OxygenBlog/internal/logging/gologger"
	"github.com/Allenwdk/OxygenBlog/internal/markdown"
	"github.com/Allenwdk/OxygenBlog/internal/publisher"
	"github.com/Allenwdk/OxygenBlog/internal/runtimeconfig"
	"github.com/Allenwdk/OxygenBlog/internal/store"
	"github.com/Allenwdk/OxygenBlog/pkg/interfaces"

	_ "github.com/mattn/go-sqlite3"
)

// Module represents the blog publishing runtime.
type Module struct {
	cfg      runtimeconfig.Config
	provider interfaces.LoggerProvider
	store    interfaces.ContentStore
	service  *publisher.Service
	batch    *publisher.BatchPublisher
	renderer *markdown.Renderer
	recorder history.Recorder
	db       *bun.DB
}

// New constructs the module from the provided configuration. The
// configuration is validated up front so missing credentials fail before any
// remote write is attempted.
func New(cfg Config) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{cfg: cfg}

	if cfg.Features.Logger {
		provider, err := buildLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}

	contentStore, err := buildStore(cfg, logging.StoreLogger(m.provider))
	if err != nil {
		return nil, err
	}
	m.store = contentStore

	if cfg.Features.History {
		sqlDB, err := sql.Open("sqlite3", cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("blog: open history database: %w", err)
		}
		m.db = bun.NewDB(sqlDB, sqlitedialect.New())
		recorder := history.NewBunRecorder(m.db, logging.HistoryLogger(m.provider))
		if err := recorder.EnsureSchema(context.Background()); err != nil {
			m.db.Close()
			return nil, fmt.Errorf("blog: prepare history schema: %w", err)
		}
		m.recorder = recorder
	}

	normalizer := article.NewNormalizer(article.NormalizerConfig{
		DefaultCategory: cfg.Content.DefaultCategory,
		WordsPerMinute:  cfg.Content.WordsPerMinute,
	})

	service, err := publisher.NewService(publisher.ServiceConfig{
		Store:      contentStore,
		Normalizer: normalizer,
		History:    m.recorder,
		Logger:     logging.PublisherLogger(m.provider),
		ContentDir: cfg.Content.Dir,
		DraftsDir:  cfg.Content.DraftsDir,
		Backend:    cfg.Backend,
	})
	if err != nil {
		return nil, err
	}
	m.service = service

	batch, err := publisher.NewBatchPublisher(publisher.BatchConfig{
		Store:      contentStore,
		Normalizer: normalizer,
		History:    m.recorder,
		Logger:     logging.BatchLogger(m.provider),
		ContentDir: cfg.Content.Dir,
		WriteDelay: cfg.Batch.WriteDelay,
		WorkflowID: cfg.GitHub.WorkflowID,
		TempDir:    cfg.Batch.TempDir,
	})
	if err != nil {
		return nil, err
	}
	m.batch = batch

	if cfg.Features.Preview {
		m.renderer = markdown.NewRenderer(markdown.Options{})
	}

	return m, nil
}

// Publisher returns the publish workflow service.
func (m *Module) Publisher() *publisher.Service {
	return m.service
}

// Batch returns the bulk upload publisher.
func (m *Module) Batch() *publisher.BatchPublisher {
	return m.batch
}

// Store returns the configured content store.
func (m *Module) Store() interfaces.ContentStore {
	return m.store
}

// Renderer returns the Markdown preview renderer, or nil when preview is disabled.
func (m *Module) Renderer() *markdown.Renderer {
	return m.renderer
}

// History returns the publish event recorder, or nil when history is disabled.
func (m *Module) History() history.Recorder {
	return m.recorder
}

// Handler builds the HTTP API handler for the module's services.
func (m *Module) Handler() http.Handler {
	opts := []blohttp.Option{
		blohttp.WithBasePath(m.cfg.Server.BasePath),
		blohttp.WithPublishService(m.service),
		blohttp.WithLogger(logging.HTTPLogger(m.provider)),
	}
	if m.renderer != nil {
		opts = append(opts, blohttp.WithRenderer(m.renderer))
	}
	if m.recorder != nil {
		opts = append(opts, blohttp.WithHistory(m.recorder))
	}
	api := blohttp.NewBlogAPI(opts...)
	mux := http.NewServeMux()
	api.Register(mux)
	return mux
}

// Close releases resources held by the module.
func (m *Module) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func buildLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch cfg.Provider {
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	default:
		level := consoleLevel(cfg.Level)
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	}
}

func consoleLevel(level string) console.Level {
	switch level {
	case "trace":
		return console.LevelTrace
	case "debug":
		return console.LevelDebug
	case "warn", "warning":
		return console.LevelWarn
	case "error":
		return console.LevelError
	case "fatal":
		return console.LevelFatal
	default:
		return console.LevelInfo
	}
}

func buildStore(cfg runtimeconfig.Config, logger interfaces.Logger) (interfaces.ContentStore, error) {
	switch cfg.Backend {
	case runtimeconfig.BackendLocal:
		return store.NewLocal(cfg.Local.Root, logger)
	default:
		return store.NewGitHub(store.GitHubConfig{
			Owner:  cfg.GitHub.Owner,
			Repo:   cfg.GitHub.Repo,
			Branch: cfg.GitHub.Branch,
			Token:  cfg.GitHub.Token,
		}, logger)
	}
}
