package runtimeconfig

import (
	"errors"
	"testing"
	"time"
)

func validGitHubConfig() Config {
	cfg := DefaultConfig()
	cfg.GitHub.Owner = "octocat"
	cfg.GitHub.Repo = "blog"
	cfg.GitHub.Token = "token"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Backend != BackendGitHub {
		t.Errorf("backend = %q", cfg.Backend)
	}
	if cfg.Content.Dir != "src/content/blogs" {
		t.Errorf("content dir = %q", cfg.Content.Dir)
	}
	if cfg.Batch.WriteDelay != time.Second {
		t.Errorf("write delay = %v", cfg.Batch.WriteDelay)
	}
	if cfg.GitHub.WorkflowID != "deploy.yml" {
		t.Errorf("workflow = %q", cfg.GitHub.WorkflowID)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid github", func(*Config) {}, nil},
		{"missing owner", func(c *Config) { c.GitHub.Owner = "" }, ErrGitHubOwnerRequired},
		{"missing repo", func(c *Config) { c.GitHub.Repo = "" }, ErrGitHubRepoRequired},
		{"missing token", func(c *Config) { c.GitHub.Token = " " }, ErrGitHubTokenRequired},
		{"unknown backend", func(c *Config) { c.Backend = "s3" }, ErrBackendUnknown},
		{"local without root", func(c *Config) { c.Backend = BackendLocal }, ErrLocalRootRequired},
		{"missing content dir", func(c *Config) { c.Content.Dir = "" }, ErrContentDirRequired},
		{"history without path", func(c *Config) {
			c.Features.History = true
			c.History.Path = ""
		}, ErrHistoryPathRequired},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, ErrLoggingLevelInvalid},
		{"bad log provider", func(c *Config) { c.Logging.Provider = "syslog" }, ErrLoggingProviderUnknown},
		{"bad log format", func(c *Config) {
			c.Logging.Provider = "gologger"
			c.Logging.Format = "xml"
		}, ErrLoggingFormatInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validGitHubConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateLocalBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendLocal
	cfg.Local.Root = "/tmp/blog"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("BLOG_BACKEND", "local")
	t.Setenv("BLOG_LOCAL_ROOT", "/srv/blog")
	t.Setenv("BLOG_CONTENT_DIR", "content/posts")
	t.Setenv("BLOG_BATCH_DELAY", "250ms")
	t.Setenv("BLOG_HISTORY_ENABLED", "true")
	t.Setenv("BLOG_LOG_LEVEL", "debug")

	cfg := FromEnv()
	if cfg.Backend != BackendLocal {
		t.Errorf("backend = %q", cfg.Backend)
	}
	if cfg.Local.Root != "/srv/blog" {
		t.Errorf("local root = %q", cfg.Local.Root)
	}
	if cfg.Content.Dir != "content/posts" {
		t.Errorf("content dir = %q", cfg.Content.Dir)
	}
	if cfg.Batch.WriteDelay != 250*time.Millisecond {
		t.Errorf("write delay = %v", cfg.Batch.WriteDelay)
	}
	if !cfg.Features.History {
		t.Error("history not enabled")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
}
