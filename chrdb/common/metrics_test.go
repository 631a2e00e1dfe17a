package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageMetrics(t *testing.T) {
	var m StageMetrics

	start := time.Now().Add(-50 * time.Millisecond)
	m.UpdateMetrics(StageFetch, start, true)
	m.UpdateMetrics(StageParse, time.Now(), false)

	stages := m.Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, StageFetch, stages[0].Stage)
	assert.True(t, stages[0].Success)
	assert.GreaterOrEqual(t, stages[0].Duration, 50*time.Millisecond)
	assert.False(t, stages[1].Success)

	metrics := m.GetMetrics()
	assert.Equal(t, int64(2), metrics["total_operations"])
	assert.Equal(t, int64(1), metrics["successful_ops"])
	assert.Equal(t, int64(1), metrics["failed_ops"])
	assert.GreaterOrEqual(t, metrics["fetch_ms"], int64(50))
	assert.Contains(t, metrics, "parse_ms")

	// Stages hands out a copy.
	stages[0].Stage = "changed"
	assert.Equal(t, StageFetch, m.Stages()[0].Stage)
}
