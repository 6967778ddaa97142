package blog

import "github.com/Allenwdk/OxygenBlog/internal/runtimeconfig"

// Config exports the runtime configuration for consumers of the blog package.
type Config = runtimeconfig.Config

// Features exports the feature flag set.
type Features = runtimeconfig.Features

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// ConfigFromEnv layers environment variables over the default configuration.
func ConfigFromEnv() Config {
	return runtimeconfig.FromEnv()
}
