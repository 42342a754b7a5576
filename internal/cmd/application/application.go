// Package application defines the dependencies CLI commands receive from
// the app. Commands accept this interface rather than the concrete App
// type, so they can be tested with Mock.
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/assetsync"
)

// Application is what a command needs from the running app.
type Application interface {
	// Syncer returns the inventory syncer, creating it lazily from the
	// loaded configuration.
	Syncer() (assetsync.Syncer, error)

	// Logger returns the configured logger instance.
	// Commands should use this for all logging operations.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
