package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rent-preview/internal/logging"
)

func TestSetLoggerNil(t *testing.T) {
	old := logging.Logger()
	defer logging.SetLogger(old)

	logging.SetLogger(nil)
	log := logging.Logger()
	require.NotNil(t, log)
	assert.Equal(t, slog.DiscardHandler, log.Handler())
}

func TestInstallLevels(t *testing.T) {
	old := logging.Logger()
	defer logging.SetLogger(old)

	var buf bytes.Buffer
	logging.Install(&buf, false)
	logging.Logger().Debug("hidden")
	logging.Logger().Info("shown", slog.Int("index", 2))
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "index=2")

	buf.Reset()
	logging.Install(&buf, true)
	logging.Logger().Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}
