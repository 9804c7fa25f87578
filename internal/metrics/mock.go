package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	GamesFinalizedCount        int
	FinalizeDurations          []float64
	SettlementsAppliedCount    int
	SettlementsSkippedCount    int
	ConfirmationsCreatedCount  int
	ConfirmationResponsesCount int
	SweepRunsCount             int
	SmsSentCount               int
	SmsFailedCount             int
	StartupTimes               []float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) IncGamesFinalized() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GamesFinalizedCount++
}

func (m *Mock) ObserveFinalizeDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FinalizeDurations = append(m.FinalizeDurations, duration)
}

func (m *Mock) IncSettlementsApplied() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SettlementsAppliedCount++
}

func (m *Mock) IncSettlementsSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SettlementsSkippedCount++
}

func (m *Mock) IncConfirmationsCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfirmationsCreatedCount++
}

func (m *Mock) IncConfirmationResponses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfirmationResponsesCount++
}

func (m *Mock) IncSweepRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SweepRunsCount++
}

func (m *Mock) IncSmsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SmsSentCount++
}

func (m *Mock) IncSmsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SmsFailedCount++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTimes = append(m.StartupTimes, duration)
}
