// Package logger carries a logrus entry through a context.
package logger

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type contextKey struct{}

var base = logrus.New()

// Setup configures the shared logger. Unknown levels fall back to info.
func Setup(level string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	base.SetOutput(out)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	base.SetLevel(parsed)
	return base
}

func Base() *logrus.Logger {
	return base
}

// For returns the entry stored in ctx, or one on the shared logger.
func For(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if entry, ok := ctx.Value(contextKey{}).(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(base)
}

func NewContextWithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return context.WithValue(ctx, contextKey{}, For(ctx).WithFields(fields))
}

func NewContextWithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, contextKey{}, entry)
}
