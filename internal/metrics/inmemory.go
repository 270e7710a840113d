package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersCreated        uint64
	UsersUpdated        uint64
	UsersDeleted        uint64
	HTTPRequests        uint64
	HTTPServerErrors    uint64
	HTTPDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersCreated        uint64
	usersUpdated        uint64
	usersDeleted        uint64
	httpRequests        uint64
	httpServerErrors    uint64
	httpDurationTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersCreated:        atomic.LoadUint64(&m.usersCreated),
		UsersUpdated:        atomic.LoadUint64(&m.usersUpdated),
		UsersDeleted:        atomic.LoadUint64(&m.usersDeleted),
		HTTPRequests:        atomic.LoadUint64(&m.httpRequests),
		HTTPServerErrors:    atomic.LoadUint64(&m.httpServerErrors),
		HTTPDurationTotalNs: atomic.LoadInt64(&m.httpDurationTotalNs),
	}
}

// IncUserCreated increments user created counter.
func (m *InMemoryRecorder) IncUserCreated() {
	atomic.AddUint64(&m.usersCreated, 1)
}

// IncUserUpdated increments user updated counter.
func (m *InMemoryRecorder) IncUserUpdated() {
	atomic.AddUint64(&m.usersUpdated, 1)
}

// IncUserDeleted increments user deleted counter.
func (m *InMemoryRecorder) IncUserDeleted() {
	atomic.AddUint64(&m.usersDeleted, 1)
}

// ObserveHTTPRequest counts the request and accumulates its duration.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&m.httpServerErrors, 1)
	}
	atomic.AddInt64(&m.httpDurationTotalNs, duration.Nanoseconds())
}
