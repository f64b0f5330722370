package build

import (
	"sync"
	"time"
)

// StepResult records the outcome of one executed step.
type StepResult struct {
	Name      string
	Duration  time.Duration
	Err       error
	Tolerated bool
}

// RunMetrics tracks the steps executed by one Runner.Run call
type RunMetrics struct {
	results []StepResult
	started time.Time
	elapsed time.Duration
	mutex   sync.RWMutex
}

// NewRunMetrics creates a new metrics tracker
func NewRunMetrics() *RunMetrics {
	return &RunMetrics{started: time.Now()}
}

// RecordStep records a step result. Safe for concurrent use.
func (m *RunMetrics) RecordStep(result StepResult) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.results = append(m.results, result)
}

func (m *RunMetrics) finish() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.elapsed = time.Since(m.started)
}

// Results returns a copy of the recorded results in completion order.
func (m *RunMetrics) Results() []StepResult {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	out := make([]StepResult, len(m.results))
	copy(out, m.results)
	return out
}

// Ran reports whether a step with the given name was executed.
func (m *RunMetrics) Ran(name string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for _, r := range m.results {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Summary is a snapshot of aggregate counts.
type Summary struct {
	Steps     int
	Succeeded int
	Failed    int
	Tolerated int
	Elapsed   time.Duration
}

// Summary returns aggregate counts for the run.
func (m *RunMetrics) Summary() Summary {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	s := Summary{Steps: len(m.results), Elapsed: m.elapsed}
	for _, r := range m.results {
		switch {
		case r.Err == nil:
			s.Succeeded++
		case r.Tolerated:
			s.Tolerated++
		default:
			s.Failed++
		}
	}
	return s
}
