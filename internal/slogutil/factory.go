package slogutil

import (
	"io"
	"log/slog"

	"scardoc/internal/config"
)

// Options are the CLI-side logging inputs.
type Options struct {
	Verbosity int    // count of -v flags
	Quiet     bool   // -q
	LogFile   string // --log-file; overrides logging.file
}

// LoggerFactory builds the process logger: a stderr handler whose level
// comes from the CLI flags, teed with an optional rotating file whose level
// comes from the configuration.
type LoggerFactory struct {
	cfg     config.LoggingConfig
	opts    Options
	closers []io.Closer
}

// NewLoggerFactory creates a factory. A nil cfg uses the defaults.
func NewLoggerFactory(cfg *config.Config, opts Options) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{cfg: cfg.Logging, opts: opts}
}

// Logger returns a logger writing to stderr and, when configured, to the log
// file.
func (f *LoggerFactory) Logger(stderr io.Writer) (*slog.Logger, error) {
	console := NewHandler(stderr, &slog.HandlerOptions{Level: f.ConsoleLevel()})

	path := f.opts.LogFile
	if path == "" {
		path = f.cfg.File
	}
	if path == "" {
		return slog.New(console), nil
	}

	rf, err := OpenRotatingFile(path, ParseSize(f.cfg.MaxSize), f.cfg.MaxBackups)
	if err != nil {
		return nil, err
	}
	f.closers = append(f.closers, rf)

	file := NewHandler(rf, &slog.HandlerOptions{Level: f.FileLevel()})
	return slog.New(NewTeeHandler(console, file)), nil
}

// ConsoleLevel is the stderr level. Without -v or -q it falls back to the
// configured level when that is stricter than warn.
func (f *LoggerFactory) ConsoleLevel() slog.Level {
	level := LevelFromVerbosity(f.opts.Verbosity, f.opts.Quiet)
	if f.opts.Verbosity == 0 && !f.opts.Quiet {
		if cfgLevel := LevelFromString(f.cfg.Level); cfgLevel > level {
			return cfgLevel
		}
	}
	return level
}

// FileLevel is the configured level, lowered to debug by -vv.
func (f *LoggerFactory) FileLevel() slog.Level {
	level := LevelFromString(f.cfg.Level)
	if f.opts.Verbosity >= 2 {
		return slog.LevelDebug
	}
	return level
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
