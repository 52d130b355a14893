// Package clock abstracts "now" so staleness checks, response timestamps and
// dataset load times can be pinned in tests and when replaying an archived
// ridership export.
package clock

import (
	"sync"
	"time"
)

// Clock is the source of the current time. RealClock reads the system
// clock, MockClock is set by tests and ShiftedClock replays a past date.
type Clock interface {
	Now() time.Time
	NowUnixMilli() int64
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time      { return time.Now() }
func (RealClock) NowUnixMilli() int64 { return time.Now().UnixMilli() }

// MockClock only moves when told to. It is safe for concurrent use, so a
// test can advance it while handlers read it.
type MockClock struct {
	mu  sync.RWMutex
	now time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

func (m *MockClock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

func (m *MockClock) NowUnixMilli() int64 {
	return m.Now().UnixMilli()
}

// Set jumps the clock to t.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock by d, which may be negative.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
