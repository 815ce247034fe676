package tasks

import (
	"testing"

	"geolens/internal/utils/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCustomTaskValidatesSpec(t *testing.T) {
	s := NewScheduler("localhost:6379", "", "", 0, logger.New("test"))

	err := s.RegisterCustomTask("not a cron spec", TaskTypePurgeExpired, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron spec")
}

func TestRegisterTasksUsesValidSpecs(t *testing.T) {
	s := NewScheduler("localhost:6379", "", "", 0, logger.New("test"))

	// Registration is local; the broker is only contacted once Run starts.
	require.NoError(t, s.registerTasks())
}
