package internal

import "log/slog"

// Mode selects which long-running surfaces Run starts.
type Mode string

const (
	// ModeServe runs the watcher and the HTTP API.
	ModeServe Mode = "serve"
	// ModeWatch runs only the watcher.
	ModeWatch Mode = "watch"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	mode   Mode
	logger *slog.Logger
	// scan processes every document before the watcher starts.
	scan bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMode sets the run mode. The default is ModeServe.
func WithMode(mode Mode) Option {
	return func(a *application) {
		a.mode = mode
	}
}

// WithLogger replaces the JSON logger Run builds from the config.
func WithLogger(logger *slog.Logger) Option {
	return func(a *application) {
		a.logger = logger
	}
}

// WithInitialScan makes Run process every document once on startup.
func WithInitialScan(scan bool) Option {
	return func(a *application) {
		a.scan = scan
	}
}
