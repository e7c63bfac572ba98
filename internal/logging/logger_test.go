package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter_LevelByEnv(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "live-match-dashboard", "production")
	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "live-match-dashboard")

	buf.Reset()
	NewWithWriter(&buf, "app", "development").Debug().Msg("verbose")
	assert.Contains(t, buf.String(), "verbose")
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(NewWithWriter(&buf, "app", "production"), "simulation_manager")

	ctx := IntoContext(context.Background(), logger)
	FromContext(ctx).Info().Msg("from context")
	assert.Contains(t, buf.String(), "simulation_manager")

	buf.Reset()
	FromContext(context.Background()).Info().Msg("dropped")
	assert.Empty(t, buf.String())
}
