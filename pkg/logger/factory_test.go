package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formkit/pkg/logger"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Run("creates JSON logger", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		require.NotNil(t, log)
		log.Info("hello")
		entry := decode(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("text formatter option", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithTextFormatter())
		log.Info("hello")
		assert.Contains(t, buf.String(), "level=INFO")
	})

	t.Run("level by name", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithLevelName("error"))
		log.Warn("dropped")
		assert.Empty(t, buf.String())
	})

	t.Run("includes default attributes", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithAttr(logger.Component("form")))
		log.Info("msg")
		assert.Equal(t, "form", decode(t, buf)["component"])
	})

	t.Run("extracts from context", func(t *testing.T) {
		buf := &bytes.Buffer{}
		type key string
		ctxKey := key("id")
		log := logger.New(logger.WithOutput(buf), logger.WithContextValue("request_id", ctxKey))
		ctx := context.WithValue(context.Background(), ctxKey, "42")
		log.InfoContext(ctx, "context msg")
		assert.Equal(t, "42", decode(t, buf)["request_id"])
	})

	t.Run("record attributes win over extracted ones", func(t *testing.T) {
		buf := &bytes.Buffer{}
		extract := func(context.Context) (slog.Attr, bool) {
			return logger.RequestID("from-ctx"), true
		}
		log := logger.New(logger.WithOutput(buf), logger.WithTextFormatter(), logger.WithContextExtractors(extract, nil))
		log.InfoContext(context.Background(), "explicit", logger.RequestID("explicit"))
		assert.Equal(t, 1, strings.Count(buf.String(), "request_id="))
		assert.Contains(t, buf.String(), "request_id=explicit")

		buf.Reset()
		log.InfoContext(context.Background(), "implicit")
		assert.Contains(t, buf.String(), "request_id=from-ctx")
	})

	t.Run("bound attributes win over extracted ones", func(t *testing.T) {
		buf := &bytes.Buffer{}
		extract := func(context.Context) (slog.Attr, bool) {
			return logger.RequestID("from-ctx"), true
		}
		log := logger.New(logger.WithOutput(buf), logger.WithTextFormatter(), logger.WithContextExtractors(extract))

		log.With(logger.RequestID("bound")).InfoContext(context.Background(), "with")
		assert.Equal(t, 1, strings.Count(buf.String(), "request_id="))
		assert.Contains(t, buf.String(), "request_id=bound")

		buf.Reset()
		log.With(logger.RequestID("bound")).WithGroup("form").InfoContext(context.Background(), "grouped")
		assert.Contains(t, buf.String(), "request_id=bound")
		assert.Contains(t, buf.String(), "form.request_id=from-ctx")
	})

	t.Run("default attributes count as bound", func(t *testing.T) {
		buf := &bytes.Buffer{}
		extract := func(context.Context) (slog.Attr, bool) {
			return logger.Component("from-ctx"), true
		}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithTextFormatter(),
			logger.WithAttr(logger.Component("web")),
			logger.WithContextExtractors(extract),
		)
		log.InfoContext(context.Background(), "msg")
		assert.Equal(t, 1, strings.Count(buf.String(), "component="))
		assert.Contains(t, buf.String(), "component=web")
	})
}

func TestWithEnvironment(t *testing.T) {
	t.Run("development", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithEnvironment("development", "formdemo"), logger.WithOutput(buf))
		log.Debug("msg")
		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), "service=formdemo")
	})

	t.Run("production alias", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithEnvironment("prod", "formdemo"), logger.WithOutput(buf))
		log.Debug("hidden")
		log.Info("msg")
		entry := decode(t, buf)
		assert.Equal(t, "production", entry["env"])
		assert.Equal(t, "formdemo", entry["service"])
	})
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, ok := logger.ParseLevel(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := logger.ParseLevel("verbose")
	assert.False(t, ok)
}

func TestDiscard(t *testing.T) {
	log := logger.Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}

func TestWithFormatPanics(t *testing.T) {
	assert.Panics(t, func() {
		logger.New(logger.WithFormat(logger.Format("xml")))
	})
}
