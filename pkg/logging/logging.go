// Package logging builds the slog logger used by the CLI and the server and
// adapts it to the Printf style core.Logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/natefinch/lumberjack"

	"github.com/df07/go-volume-iterators/pkg/config"
)

// ParseLevel converts a config level name to a slog level
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// New creates a text logger writing to stdout, or to a rotating log file
// when cfg.File is set. The returned closer releases the file, if any.
func New(cfg config.LogConfig, stdout io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = stdout
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		l := &lumberjack.Logger{
			Filename: cfg.File,
			MaxSize:  cfg.MaxSize, // megabytes
			MaxAge:   cfg.MaxAge,  // days
		}
		out, closer = l, l
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// PrintfLogger forwards Printf calls to slog at info level
type PrintfLogger struct {
	logger *slog.Logger
}

// NewPrintfLogger adapts logger; nil uses slog.Default()
func NewPrintfLogger(logger *slog.Logger) *PrintfLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &PrintfLogger{logger: logger}
}

func (p *PrintfLogger) Printf(format string, args ...interface{}) {
	p.logger.Info(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}
