// Package app provides the application context and dependency management
// for the assetsync CLI. It centralizes configuration, logging and the
// lifecycle of the syncer the commands share.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/assetsync"
	"github.com/agentstation/assetsync/internal/cmd/application"
	"github.com/agentstation/assetsync/internal/config"
	"github.com/agentstation/assetsync/pkg/errors"
)

// App represents the assetsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Syncer instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	syncer assetsync.Syncer
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
// The app is initialized with default configuration that can be
// customized using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	// Load configuration
	cfg, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = cfg

	// Initialize logger
	logger := NewLogger(cfg)
	app.logger = &logger

	// Apply any custom options
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the output format requested with -o/--format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Syncer returns the syncer, creating it lazily from the loaded settings.
// This is thread-safe and ensures only one instance is created.
func (a *App) Syncer() (assetsync.Syncer, error) {
	a.mu.RLock()
	if a.syncer != nil {
		s := a.syncer
		a.mu.RUnlock()
		return s, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.syncer != nil {
		return a.syncer, nil
	}

	settings, err := config.Load(a.config.Viper())
	if err != nil {
		return nil, errors.WrapResource("load", "settings", a.config.ConfigFile, err)
	}
	a.logger.Debug().Fields(settings.Describe()).Msg("Settings loaded")

	s, err := assetsync.New(settings)
	if err != nil {
		return nil, errors.WrapResource("create", "syncer", "", err)
	}

	a.syncer = s
	return s, nil
}

// Shutdown releases the syncer's feed connections.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.RLock()
	s := a.syncer
	a.mu.RUnlock()

	if s == nil {
		return nil
	}
	return s.Close()
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithSyncer sets a custom syncer instance (useful for testing).
func WithSyncer(s assetsync.Syncer) Option {
	return func(a *App) error {
		a.syncer = s
		return nil
	}
}
