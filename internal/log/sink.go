package log

import (
	"context"
	"log/slog"

	"github.com/zephyrtronium/abacus"
)

// Sink adapts a logger to receive computation errors. Each message is
// written at error level along with attrs.
func Sink(ctx context.Context, l Logger, attrs ...slog.Attr) abacus.ErrorSink {
	return abacus.ErrorFunc(func(msg string) {
		a := make([]slog.Attr, 0, len(attrs)+1)
		a = append(a, attrs...)
		a = append(a, slog.String("message", msg))
		l.ErrorContext(ctx, "computation failed", a...)
	})
}
