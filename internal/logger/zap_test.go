package logger

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type fakeHub struct {
	mu      sync.Mutex
	events  []*sentry.Event
	flushes int
}

func (h *fakeHub) CaptureEvent(event *sentry.Event) *sentry.EventID {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	id := sentry.EventID("test")
	return &id
}

func (h *fakeHub) Flush(time.Duration) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flushes++
	return true
}

func TestSentryCore_OnlyErrors(t *testing.T) {
	hub := &fakeHub{}
	log := zap.New(newSentryCore(zapcore.DebugLevel, hub))

	log.Info("reservation created")
	log.Warn("cache degraded", zap.String("op", "invalidate"))
	log.Error("create reservation failed",
		zap.String("room_id", "R1"),
		zap.Int("guests", 2),
		zap.Float64("total_amount", 300.5),
		zap.Duration("elapsed", 1500*time.Millisecond),
		zap.Error(errors.New("connection reset")),
	)

	require.Len(t, hub.events, 1)
	event := hub.events[0]
	assert.Equal(t, sentry.LevelError, event.Level)
	assert.Equal(t, "create reservation failed", event.Message)
	assert.Equal(t, "R1", event.Extra["room_id"])
	assert.Equal(t, int64(2), event.Extra["guests"])
	assert.Equal(t, 300.5, event.Extra["total_amount"])
	assert.Equal(t, "connection reset", event.Extra["error"])
	assert.Equal(t, map[string]string{"room_id": "R1"}, event.Tags)
}

func TestSentryCore_WithKeepsFields(t *testing.T) {
	hub := &fakeHub{}
	base := zap.New(newSentryCore(zapcore.InfoLevel, hub))

	child := base.With(zap.String("reservation_id", "res-1"))
	_ = base.With(zap.String("reservation_id", "other"))
	child.Error("confirm failed")

	require.Len(t, hub.events, 1)
	assert.Equal(t, "res-1", hub.events[0].Tags["reservation_id"])

	require.NoError(t, child.Sync())
	assert.Equal(t, 1, hub.flushes)
}

func TestZapLevelToSentry(t *testing.T) {
	tests := []struct {
		level    zapcore.Level
		expected sentry.Level
	}{
		{zapcore.DebugLevel, sentry.LevelDebug},
		{zapcore.InfoLevel, sentry.LevelInfo},
		{zapcore.WarnLevel, sentry.LevelWarning},
		{zapcore.ErrorLevel, sentry.LevelError},
		{zapcore.PanicLevel, sentry.LevelFatal},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, zapLevelToSentry(tt.level))
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l, err := New(Config{Level: "debug", Format: "json", Output: path, Service: "hotel-booking-service"}, SentryConfig{})
	require.NoError(t, err)

	l.With(zap.String("room_id", "R1")).Info("reservation created")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"reservation created"`)
	assert.Contains(t, string(data), `"service":"hotel-booking-service"`)
	assert.Contains(t, string(data), `"room_id":"R1"`)
}

func TestNew_BadOutput(t *testing.T) {
	_, err := New(Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")}, SentryConfig{})
	assert.ErrorContains(t, err, "opening log file")
}
