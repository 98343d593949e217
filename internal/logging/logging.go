// Package logging provides the zerolog-based logger shared by the server.
//
// Init is called once at startup; the package-level helpers log through the
// configured global logger. Console format is intended for development, JSON
// for production.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/recipegram/apiserver/config"
	"github.com/rs/zerolog"
)

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

func init() {
	log = newLogger(config.LogConfig{Level: "info", Format: "json"}, os.Stderr)
}

// Init configures the global logger from config.
func Init(cfg config.LogConfig) {
	mu.Lock()
	defer mu.Unlock()
	log = newLogger(cfg, os.Stderr)
}

func newLogger(cfg config.LogConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Logger returns the configured global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug starts a debug-level event on the global logger.
func Debug() *zerolog.Event { l := Logger(); return l.Debug() }

// Info starts an info-level event on the global logger.
func Info() *zerolog.Event { l := Logger(); return l.Info() }

// Warn starts a warn-level event on the global logger.
func Warn() *zerolog.Event { l := Logger(); return l.Warn() }

// Error starts an error-level event on the global logger.
func Error() *zerolog.Event { l := Logger(); return l.Error() }
