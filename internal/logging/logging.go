package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation defaults
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 14
	DefaultFileName   = "quickytdl.log"
)

// Config holds logger configuration
type Config struct {
	Level   string    // logrus level name, "info" when empty
	File    string    // rotating log file path, disabled when empty
	Console io.Writer // console output, os.Stderr when nil
	JSON    bool      // JSON formatter for the file output
}

// WriterHook writes entries of the given levels to Out using Formatter
type WriterHook struct {
	Out       io.Writer
	Formatter logrus.Formatter
	LogLevel  logrus.Level
}

// Fire formats the entry and writes it to the hook's writer
func (hook *WriterHook) Fire(entry *logrus.Entry) error {
	serialized, err := hook.Formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to format log entry: %v\n", err)
		return err
	}
	if _, err = hook.Out.Write(serialized); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write log entry: %v\n", err)
	}
	return nil
}

// Levels returns every level up to and including LogLevel
func (hook *WriterHook) Levels() []logrus.Level {
	return logrus.AllLevels[:hook.LogLevel+1]
}

// FuncHook forwards formatted messages to a callback (used by the log view)
type FuncHook struct {
	LogLevel logrus.Level
	Fn       func(line string)
}

// Fire passes the bare message to the callback
func (hook *FuncHook) Fire(entry *logrus.Entry) error {
	if hook.Fn != nil {
		hook.Fn(entry.Message)
	}
	return nil
}

// Levels returns every level up to and including LogLevel
func (hook *FuncHook) Levels() []logrus.Level {
	return logrus.AllLevels[:hook.LogLevel+1]
}

// New builds a logger from config. Console output goes through a hook so
// the file and console can use different formatters.
func New(cfg Config) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(io.Discard)
	logger.AddHook(&WriterHook{
		Out: console,
		Formatter: &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		},
		LogLevel: level,
	})

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		var formatter logrus.Formatter = &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
		if cfg.JSON {
			formatter = &logrus.JSONFormatter{}
		}
		logger.AddHook(&WriterHook{
			Out: &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    DefaultMaxSizeMB,
				MaxBackups: DefaultMaxBackups,
				MaxAge:     DefaultMaxAgeDays,
			},
			Formatter: formatter,
			LogLevel:  level,
		})
	}

	return logger, nil
}

// Mirror attaches a callback receiving every message at level or above
func Mirror(logger *logrus.Logger, level logrus.Level, fn func(line string)) {
	logger.AddHook(&FuncHook{LogLevel: level, Fn: fn})
}

// Component returns a logger tagged with the component name
func Component(logger logrus.FieldLogger, name string) logrus.FieldLogger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return logger.WithField("component", name)
}
