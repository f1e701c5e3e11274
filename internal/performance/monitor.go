package performance

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// StageMetrics tracks timing for one named pipeline stage
type StageMetrics struct {
	Count int64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
	Last  time.Duration
}

// Average returns the mean stage duration
func (s StageMetrics) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return time.Duration(int64(s.Total) / s.Count)
}

// StageTimer tracks timing for a single stage execution
type StageTimer struct {
	stage string
	start time.Time
}

// Monitor accumulates per-stage timing metrics across processing calls
type Monitor struct {
	logger *zap.Logger
	mu     sync.RWMutex
	stages map[string]*StageMetrics
}

// NewMonitor creates a new performance monitor
func NewMonitor(logger *zap.Logger) *Monitor {
	return &Monitor{
		logger: logger,
		stages: make(map[string]*StageMetrics),
	}
}

// StartStage begins timing a named stage
func (m *Monitor) StartStage(stage string) *StageTimer {
	return &StageTimer{stage: stage, start: time.Now()}
}

// EndStage completes timing and folds the result into the stage metrics
func (m *Monitor) EndStage(timer *StageTimer) {
	elapsed := time.Since(timer.start)

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stages[timer.stage]
	if !ok {
		s = &StageMetrics{Min: time.Hour} // Initialize to large value
		m.stages[timer.stage] = s
	}

	s.Count++
	s.Total += elapsed
	s.Last = elapsed
	if elapsed < s.Min {
		s.Min = elapsed
	}
	if elapsed > s.Max {
		s.Max = elapsed
	}

	m.logger.Debug("stage completed",
		zap.String("stage", timer.stage),
		zap.Duration("elapsed", elapsed))
}

// Snapshot returns a copy of the current per-stage metrics
func (m *Monitor) Snapshot() map[string]StageMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]StageMetrics, len(m.stages))
	for name, s := range m.stages {
		out[name] = *s
	}
	return out
}

// LogSummary logs the accumulated metrics for every stage
func (m *Monitor) LogSummary() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for name, s := range m.stages {
		m.logger.Info("stage timing summary",
			zap.String("stage", name),
			zap.Int64("count", s.Count),
			zap.Duration("avg", s.Average()),
			zap.Duration("min", s.Min),
			zap.Duration("max", s.Max),
			zap.Duration("last", s.Last),
		)
	}
}

// Reset clears all accumulated metrics
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stages = make(map[string]*StageMetrics)
	m.logger.Info("performance metrics reset")
}
