package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "WORKER_COUNT", "REQUEST_TIMEOUT", "BOARD_COLUMNS", "ROLLBACK_STATUS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3, cfg.WorkerCount)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, model.DefaultColumns(), cfg.Columns)
	assert.False(t, cfg.RollbackStatus)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("BOARD_COLUMNS", "BACKLOG, DOING ,,DONE")
	t.Setenv("ROLLBACK_STATUS", "true")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"BACKLOG", "DOING", "DONE"}, cfg.Columns)
	assert.True(t, cfg.RollbackStatus)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("WORKER_COUNT", "-1")
	t.Setenv("REQUEST_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 3, cfg.WorkerCount)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}
