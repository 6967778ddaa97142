package logging

import (
	"context"
	"strings"

	"github.com/Allenwdk/OxygenBlog/pkg/interfaces"
)

const (
	rootModule      = "blog"
	publisherModule = "blog.publisher"
	storeModule     = "blog.store"
	batchModule     = "blog.batch"
	httpModule      = "blog.http"
	historyModule   = "blog.history"
)

const (
	fieldArticlePath  = "article_path"
	fieldArticleSlug  = "slug"
	fieldStoreBackend = "backend"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// PublisherLogger returns the logger namespace reserved for the publish workflow.
func PublisherLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, publisherModule)
}

// StoreLogger returns the logger namespace reserved for content store adapters.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// BatchLogger returns the logger namespace reserved for batch publish runs.
func BatchLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, batchModule)
}

// HTTPLogger returns the logger namespace reserved for the HTTP API.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// HistoryLogger returns the logger namespace reserved for the publish history recorder.
func HistoryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, historyModule)
}

// WithArticleContext enriches the provided logger with common publish fields
// such as target path and slug. Empty values are ignored.
func WithArticleContext(logger interfaces.Logger, path, slug string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldArticlePath] = trimmed
	}
	if trimmed := strings.TrimSpace(slug); trimmed != "" {
		fields[fieldArticleSlug] = trimmed
	}
	return WithFields(logger, fields)
}

// WithStoreContext tags log entries with the backing store identifier.
func WithStoreContext(logger interfaces.Logger, backend string) interfaces.Logger {
	if strings.TrimSpace(backend) == "" {
		return logger
	}
	return WithFields(logger, map[string]any{fieldStoreBackend: backend})
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
