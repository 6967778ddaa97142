// Package runtimeconfig aggregates runtime settings for the blog publishing
// module and maps environment variables onto them.
package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var ErrBackendUnknown = errors.New("blog config: backend is invalid")
var ErrGitHubOwnerRequired = errors.New("blog config: github owner is required when the github backend is enabled")
var ErrGitHubRepoRequired = errors.New("blog config: github repository is required when the github backend is enabled")
var ErrGitHubTokenRequired = errors.New("blog config: github token is required when the github backend is enabled")
var ErrLocalRootRequired = errors.New("blog config: local root directory is required when the local backend is enabled")
var ErrContentDirRequired = errors.New("blog config: content directory is required")
var ErrHistoryPathRequired = errors.New("blog config: history database path is required when history is enabled")
var ErrLoggingProviderRequired = errors.New("blog config: logging provider is required when logging is enabled")
var ErrLoggingProviderUnknown = errors.New("blog config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("blog config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("blog config: logging format is invalid")

// Backend identifiers accepted by Config.Backend.
const (
	BackendGitHub = "github"
	BackendLocal  = "local"
)

// Config aggregates backend bindings and feature flags for the blog module.
type Config struct {
	Backend  string
	GitHub   GitHubConfig
	Local    LocalConfig
	Content  ContentConfig
	Batch    BatchConfig
	Server   ServerConfig
	History  HistoryConfig
	Logging  LoggingConfig
	Features Features
}

// GitHubConfig binds the GitHub contents API backend.
type GitHubConfig struct {
	Owner      string
	Repo       string
	Branch     string
	Token      string
	WorkflowID string
}

// LocalConfig binds the filesystem backend used for local development.
type LocalConfig struct {
	Root string
}

// ContentConfig captures the content layout and normalization defaults.
type ContentConfig struct {
	Dir             string
	DraftsDir       string
	DefaultCategory string
	WordsPerMinute  int
}

// BatchConfig captures bulk upload behaviour.
type BatchConfig struct {
	SourceDir  string
	WriteDelay time.Duration
	TempDir    string
}

// ServerConfig captures the HTTP API binding.
type ServerConfig struct {
	Addr     string
	BasePath string
}

// HistoryConfig captures the publish event audit trail settings.
type HistoryConfig struct {
	Path string
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// Features toggles module functionality.
type Features struct {
	History bool
	Preview bool
	Logger  bool
}

// DefaultConfig returns defaults matching the published site layout.
func DefaultConfig() Config {
	return Config{
		Backend: BackendGitHub,
		GitHub: GitHubConfig{
			Branch:     "main",
			WorkflowID: "deploy.yml",
		},
		Content: ContentConfig{
			Dir:       "src/content/blogs",
			DraftsDir: "src/content/blogs/drafts",
		},
		Batch: BatchConfig{
			SourceDir:  "../temp-publish",
			WriteDelay: time.Second,
		},
		Server: ServerConfig{
			Addr:     ":8080",
			BasePath: "/api/blogs",
		},
		History: HistoryConfig{
			Path: "blog-history.db",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Features: Features{
			Preview: true,
			Logger:  true,
		},
	}
}

// FromEnv layers environment variables over the defaults. Unset variables
// leave the defaults untouched.
func FromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("BLOG_BACKEND"); v != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("BLOG_GITHUB_OWNER"); v != "" {
		cfg.GitHub.Owner = v
	}
	if v := os.Getenv("BLOG_GITHUB_REPO"); v != "" {
		cfg.GitHub.Repo = v
	}
	if v := os.Getenv("BLOG_GITHUB_BRANCH"); v != "" {
		cfg.GitHub.Branch = v
	}
	if v := os.Getenv("BLOG_GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("BLOG_GITHUB_WORKFLOW"); v != "" {
		cfg.GitHub.WorkflowID = v
	}
	if v := os.Getenv("BLOG_LOCAL_ROOT"); v != "" {
		cfg.Local.Root = v
	}
	if v := os.Getenv("BLOG_CONTENT_DIR"); v != "" {
		cfg.Content.Dir = v
	}
	if v := os.Getenv("BLOG_DRAFTS_DIR"); v != "" {
		cfg.Content.DraftsDir = v
	}
	if v := os.Getenv("BLOG_DEFAULT_CATEGORY"); v != "" {
		cfg.Content.DefaultCategory = v
	}
	if v := os.Getenv("BLOG_BATCH_SOURCE_DIR"); v != "" {
		cfg.Batch.SourceDir = v
	}
	if v := os.Getenv("BLOG_BATCH_DELAY"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			cfg.Batch.WriteDelay = parsed
		}
	}
	if v := os.Getenv("BLOG_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("BLOG_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("BLOG_HISTORY_ENABLED"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.Features.History = parsed
		}
	}
	if v := os.Getenv("BLOG_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BLOG_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
		cfg.Logging.Provider = "gologger"
	}

	return cfg
}

// Validate performs high-level consistency checks. Remote credential checks
// fail fast here so a misconfigured deploy never gets as far as a half-run
// batch upload.
func (cfg Config) Validate() error {
	switch cfg.Backend {
	case BackendGitHub:
		if strings.TrimSpace(cfg.GitHub.Owner) == "" {
			return ErrGitHubOwnerRequired
		}
		if strings.TrimSpace(cfg.GitHub.Repo) == "" {
			return ErrGitHubRepoRequired
		}
		if strings.TrimSpace(cfg.GitHub.Token) == "" {
			return ErrGitHubTokenRequired
		}
	case BackendLocal:
		if strings.TrimSpace(cfg.Local.Root) == "" {
			return ErrLocalRootRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrBackendUnknown, cfg.Backend)
	}

	if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if cfg.Features.History && strings.TrimSpace(cfg.History.Path) == "" {
		return ErrHistoryPathRequired
	}
	if cfg.Features.Logger {
		provider := strings.ToLower(strings.TrimSpace(cfg.Logging.Provider))
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
