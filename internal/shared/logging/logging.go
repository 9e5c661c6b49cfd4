package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/oops"
	slogmulti "github.com/samber/slog-multi"
)

// Setup builds the process logger: human-readable text on stdout, JSON errors
// on stderr and, when logFile is set, a JSON copy of everything in that file.
// The returned closer releases the log file.
func Setup(level string, logFile string) (*slog.Logger, io.Closer, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}),
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}),
	}

	var closer io.Closer = nopCloser{}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, oops.With("log_file", logFile).Wrap(err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: lvl}))
		closer = f
	}

	logger := slog.New(slogmulti.Fanout(handlers...))
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
