package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/secmon-lab/duesoon/pkg/utils/logging"
)

// Close closes an io.Closer and logs any error. Nil closers are ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// DrainClose discards the rest of an HTTP response body and closes it, so the
// underlying connection can be reused.
func DrainClose(ctx context.Context, body io.ReadCloser) {
	if body == nil {
		return
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		logging.From(ctx).Warn("Failed to drain body", slog.Any("error", err))
	}
	Close(ctx, body)
}
