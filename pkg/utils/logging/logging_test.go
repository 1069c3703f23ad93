package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
)

func TestFrom(t *testing.T) {
	t.Run("returns default logger when context has none", func(t *testing.T) {
		gt.Value(t, logging.From(context.Background())).Equal(logging.Default())
	})

	t.Run("returns logger stored in context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		ctx := logging.With(context.Background(), logger)

		logging.From(ctx).Info("hello", "work_item_id", "demo-1")
		gt.String(t, buf.String()).Contains("demo-1")
	})
}

func TestSetDefault(t *testing.T) {
	orig := logging.Default()
	defer logging.SetDefault(orig)

	var buf bytes.Buffer
	logging.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	logging.Default().Info("replaced")
	gt.String(t, buf.String()).Contains("replaced")

	logging.SetDefault(nil)
	gt.Value(t, logging.Default()).NotNil()
}
