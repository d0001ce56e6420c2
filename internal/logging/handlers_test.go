package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_ContextProviderAddsTick(t *testing.T) {
	var tick atomic.Uint64
	var buf bytes.Buffer

	m := NewSlogManager()
	m.SetContextProvider(func() []slog.Attr {
		return []slog.Attr{slog.Uint64("tick", tick.Load())}
	})
	m.Setup(&buf, "info", nil)

	tick.Store(42)
	m.Logger().Info("stepped")

	assert.Contains(t, buf.String(), "tick=42")
}

func TestSetup_ExtraHandlers(t *testing.T) {
	var file, extra bytes.Buffer
	m := NewSlogManager()
	m.Setup(&file, "info", nil, slog.NewTextHandler(&extra, nil))

	m.Logger().Warn("to both")

	assert.Contains(t, file.String(), "to both")
	assert.Contains(t, extra.String(), "to both")
}

func TestContextHandler_WithAttrsKeepsProvider(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, nil)
	h := NewContextHandler(inner, func() []slog.Attr {
		return []slog.Attr{slog.String("vehicle", "sedan")}
	})

	logger := slog.New(h).With("component", "loop").WithGroup("g")
	logger.Info("hello", "k", 1)

	out := buf.String()
	assert.Contains(t, out, "component=loop")
	assert.Contains(t, out, "g.k=1")
	assert.Contains(t, out, "vehicle=sedan")
}

func TestContextHandler_NilProvider(t *testing.T) {
	var buf bytes.Buffer
	h := NewContextHandler(slog.NewTextHandler(&buf, nil), nil)
	slog.New(h).Info("plain")
	assert.Contains(t, buf.String(), "plain")
	assert.Same(t, h, h.WithGroup(""))
}

func TestContextHandler_SkipsEmptyKeys(t *testing.T) {
	var buf bytes.Buffer
	h := NewContextHandler(slog.NewTextHandler(&buf, nil), func() []slog.Attr {
		return []slog.Attr{{}, slog.Int("tick", 3)}
	})
	slog.New(h).Info("ticked")

	assert.Contains(t, buf.String(), "tick=3")
	assert.NotContains(t, buf.String(), " =")
}

func TestGraylogHandler_SendsMessage(t *testing.T) {
	r, err := gelf.NewReader("127.0.0.1:0")
	require.NoError(t, err)

	h, err := NewGraylogHandler(r.Addr(), "info")
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	slog.New(h).Warn("wheel footprint is degenerate", "vehicle", "kart")

	msg, err := r.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, msg.Short, "wheel footprint is degenerate")
	assert.Contains(t, msg.Short, "vehicle=kart")
}

func TestGraylogHandler_FiltersLevel(t *testing.T) {
	h, err := NewGraylogHandler("127.0.0.1:12201", "error")
	require.NoError(t, err)
	defer h.Close()

	assert.False(t, h.Enabled(t.Context(), slog.LevelWarn))
	assert.True(t, h.Enabled(t.Context(), slog.LevelError))
}

func TestNewZerolog(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
	}{
		{"debug", true},
		{"DEBUG", true},
		{"info", false},
		{"", false},
		{"bogus", false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewZerolog(&buf, tt.level)

			log.Debug().Msg("debug line")
			log.Info().Str("path", "/tmp/x.db").Msg("Using local SQLite DB")

			out := buf.String()
			assert.Equal(t, tt.debugSeen, bytes.Contains(buf.Bytes(), []byte("debug line")))
			assert.Contains(t, out, "Using local SQLite DB")
		})
	}
}

func TestNewZerolog_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, "info")
	log.Info().Str("bucket", "vehicle-telemetry").Msg("writer created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "vehicle-telemetry", entry["bucket"])
	assert.Equal(t, "writer created", entry["message"])
	assert.Contains(t, entry, "time")
}
