package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config controls how the root logger is built.
type Config struct {
	Level   string `env:"LOG_LEVEL"  envDefault:"info"`
	Pretty  bool   `env:"LOG_PRETTY" envDefault:"false"`
	Service string `env:"SERVICE_NAME" envDefault:"auth-service"`
}

// NewLogger creates the root logger for a service. Unknown levels fall back to info.
func NewLogger(cfg Config) *zerolog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg Config, out io.Writer) *zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}

	logger := ctx.Logger()
	return &logger
}

// NewNop returns a logger that discards everything. Useful in tests.
func NewNop() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
