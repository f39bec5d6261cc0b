package logger_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/sentenceflash/internal/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.DEBUG, logger.ParseLevel("debug"))
	assert.Equal(t, logger.WARN, logger.ParseLevel("WARNING"))
	assert.Equal(t, logger.ERROR, logger.ParseLevel(" error "))
	assert.Equal(t, logger.INFO, logger.ParseLevel("nonsense"))

	assert.True(t, logger.ValidLevel("info"))
	assert.False(t, logger.ValidLevel(""))
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.WARN))

	log.Info("hidden")
	log.Warn("shown %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 1")
	assert.Contains(t, out, "WARN")
}

func TestLogger_PrefixAndSortedFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf)).
		WithPrefix("repo").
		WithFields(map[string]any{"zeta": 2, "alpha": 1})

	log.Info("hello")

	out := buf.String()
	assert.Contains(t, out, "[repo]")
	assert.Contains(t, out, "hello alpha=1 zeta=2")
}

func TestLogger_ChildDoesNotLeakFields(t *testing.T) {
	var buf bytes.Buffer
	parent := logger.New(logger.WithOutput(&buf))
	_ = parent.WithField("child", true)

	parent.Info("parent")
	assert.NotContains(t, buf.String(), "child=true")
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf))
	ctx := logger.NewContext(context.Background(), log)

	logger.FromContext(ctx).Info("via context")
	assert.Contains(t, buf.String(), "via context")

	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}
