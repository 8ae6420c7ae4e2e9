package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestInitializeWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := InitializeWriter(&buf, "info", "json")
	l.Debug("hidden")
	l.Info("rental opened", "rental_id", "abc")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "rental opened", entry["msg"])
	assert.Equal(t, "abc", entry["rental_id"])
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "r1")
	ctx := WithContext(context.Background(), l)
	FromContext(ctx).Info("hello")
	assert.Contains(t, buf.String(), "request_id=r1")

	assert.NotNil(t, FromContext(context.Background()))
}

func TestGet_ConcurrentFirstUse(t *testing.T) {
	defaultLogger.Store(nil)
	t.Cleanup(func() { defaultLogger.Store(nil) })

	const n = 16
	got := make([]*slog.Logger, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = Get()
		}(i)
	}
	wg.Wait()

	for _, l := range got {
		assert.Same(t, got[0], l)
	}
	assert.Same(t, got[0], Get())
}
