package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyServeEnv(t *testing.T) {
	env := map[string]string{
		"METRICS_ENABLED": "false",
		"METRICS_ADDR":    ":9191",
		"LOG_FORMAT":      "json",
	}
	getenv := func(key string) string { return env[key] }

	t.Run("env fills unset flags", func(t *testing.T) {
		cmd := newServeCmd()
		opts := serveOptions{metrics: MetricsConfig{Enabled: true, Addr: ":9090"}, logFormat: "text"}

		applyServeEnv(cmd, &opts, getenv)

		assert.False(t, opts.metrics.Enabled)
		assert.Equal(t, ":9191", opts.metrics.Addr)
		assert.Equal(t, "json", opts.logFormat)
	})

	t.Run("explicit flags win", func(t *testing.T) {
		cmd := newServeCmd()
		require.NoError(t, cmd.Flags().Set("metrics-enabled", "true"))
		require.NoError(t, cmd.Flags().Set("metrics-addr", ":7000"))
		opts := serveOptions{metrics: MetricsConfig{Enabled: true, Addr: ":7000"}, logFormat: "text"}

		applyServeEnv(cmd, &opts, getenv)

		assert.True(t, opts.metrics.Enabled)
		assert.Equal(t, ":7000", opts.metrics.Addr)
		assert.Equal(t, "json", opts.logFormat)
	})

	t.Run("invalid bool is ignored", func(t *testing.T) {
		cmd := newServeCmd()
		opts := serveOptions{metrics: MetricsConfig{Enabled: true}}

		applyServeEnv(cmd, &opts, func(key string) string {
			if key == "METRICS_ENABLED" {
				return "maybe"
			}
			return ""
		})

		assert.True(t, opts.metrics.Enabled)
	})
}

func TestRunServe_UnsupportedTransport(t *testing.T) {
	err := runServe(serveOptions{transport: "sse"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport type: sse")
}
