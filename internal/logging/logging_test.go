package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bramford/steprunner/internal/logging"
)

func TestFromContextReturnsDefaultWhenAbsent(t *testing.T) {
	logger := logging.FromContext(context.Background())
	assert.NotNil(t, logger)
}

func TestWithContextRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewSlog(slog.New(slog.NewTextHandler(&buf, nil)))

	ctx := logging.WithContext(context.Background(), logger)
	got := logging.FromContext(ctx)
	got.Info("hello", "k", "v")

	assert.Contains(t, buf.String(), "hello")
}

func TestNoticeUsesCustomLevelBetweenInfoAndWarn(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: logging.LevelNotice})
	logger := logging.NewSlog(slog.New(handler))

	logger.Debug("should not appear")
	logger.Notice("should appear", "k", "v")

	out := buf.String()
	assert.False(t, strings.Contains(out, "should not appear"))
	assert.True(t, strings.Contains(out, "should appear"))
}

func TestAllFiveLevelsAreCallable(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewSlog(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	logger.Debug("d")
	logger.Info("i")
	logger.Notice("n")
	logger.Warning("w")
	logger.Error("e")

	out := buf.String()
	for _, msg := range []string{"d", "i", "n", "w", "e"} {
		assert.Contains(t, out, msg)
	}
}
