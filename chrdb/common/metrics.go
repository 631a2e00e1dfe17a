package common

import (
	"sync"
	"time"
)

// StageTiming is the outcome of one pipeline stage.
type StageTiming struct {
	Stage    string
	Duration time.Duration
	Success  bool
}

// StageMetrics tracks the stages of one build in execution order.
type StageMetrics struct {
	TotalOperations int64
	SuccessfulOps   int64
	FailedOps       int64
	LastOperation   time.Time
	Mu              sync.RWMutex

	stages []StageTiming
}

// UpdateMetrics records a stage that started at start.
func (m *StageMetrics) UpdateMetrics(stage string, start time.Time, success bool) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	m.TotalOperations++
	if success {
		m.SuccessfulOps++
	} else {
		m.FailedOps++
	}
	m.LastOperation = time.Now()
	m.stages = append(m.stages, StageTiming{
		Stage:    stage,
		Duration: m.LastOperation.Sub(start),
		Success:  success,
	})
}

// Stages returns a copy of the recorded stages.
func (m *StageMetrics) Stages() []StageTiming {
	m.Mu.RLock()
	defer m.Mu.RUnlock()

	out := make([]StageTiming, len(m.stages))
	copy(out, m.stages)
	return out
}

// GetMetrics returns the counters and per-stage durations (milliseconds) as a map
func (m *StageMetrics) GetMetrics() map[string]any {
	m.Mu.RLock()
	defer m.Mu.RUnlock()

	metrics := map[string]any{
		"total_operations": m.TotalOperations,
		"successful_ops":   m.SuccessfulOps,
		"failed_ops":       m.FailedOps,
		"last_operation":   m.LastOperation,
	}
	for _, s := range m.stages {
		metrics[s.Stage+"_ms"] = s.Duration.Milliseconds()
	}
	return metrics
}
