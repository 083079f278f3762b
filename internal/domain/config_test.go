package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8192, cfg.Download.ChunkSize)
	assert.Equal(t, 30, cfg.Download.TimeoutSeconds)
	assert.Equal(t, 60, cfg.Download.VideoTimeoutSeconds)
	assert.Zero(t, cfg.Download.MaxRetries)

	assert.Equal(t, 3, cfg.Scheduler.DocumentWorkers)
	assert.Equal(t, 2, cfg.Scheduler.VideoWorkers)
	assert.LessOrEqual(t, cfg.Scheduler.DocumentWorkers, MaxDocumentWorkers)
	assert.LessOrEqual(t, cfg.Scheduler.VideoWorkers, MaxVideoWorkers)

	assert.False(t, cfg.Notification.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}
