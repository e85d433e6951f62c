// Package metrics collects counters and timing samples from the
// synthetic peer. The Sink interface keeps the node decoupled from any
// particular backend; tests read back through Memory.
package metrics

import "sync"

// Counter and histogram names the node emits.
const (
	CounterPeersDialed       = "peers_dialed"
	CounterPeersAccepted     = "peers_accepted"
	CounterPeersRefused      = "peers_refused"
	CounterHandshakeFailures = "handshake_failures"
	CounterMessagesIn        = "messages_in"
	CounterMessagesOut       = "messages_out"
	CounterBytesIn           = "bytes_in"
	CounterBytesOut          = "bytes_out"
	CounterDecodeErrors      = "decode_errors"
	CounterSessionsClosed    = "sessions_closed"

	HistogramHandshakeMillis = "handshake_ms"
	HistogramPingRTTMillis   = "ping_rtt_ms"
)

// Sink receives measurements. Implementations must be safe for
// concurrent use.
type Sink interface {
	// IncCounter adds delta to the named counter.
	IncCounter(name string, delta uint64)

	// ObserveHistogram records one sample under the named histogram.
	ObserveHistogram(name string, sample float64)
}

// Memory is an in-process Sink for tests and interactive runs.
type Memory struct {
	mu         sync.RWMutex
	counters   map[string]uint64
	histograms map[string][]float64
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{
		counters:   make(map[string]uint64),
		histograms: make(map[string][]float64),
	}
}

// IncCounter implements Sink.
func (m *Memory) IncCounter(name string, delta uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += delta
}

// ObserveHistogram implements Sink.
func (m *Memory) ObserveHistogram(name string, sample float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms[name] = append(m.histograms[name], sample)
}

// Counter returns the current value of one counter.
func (m *Memory) Counter(name string) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[name]
}

// Samples returns a copy of one histogram's samples.
func (m *Memory) Samples(name string) []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]float64, len(m.histograms[name]))
	copy(out, m.histograms[name])
	return out
}

// Snapshot copies every counter and histogram at once.
func (m *Memory) Snapshot() (map[string]uint64, map[string][]float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counters := make(map[string]uint64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}
	histograms := make(map[string][]float64, len(m.histograms))
	for k, v := range m.histograms {
		samples := make([]float64, len(v))
		copy(samples, v)
		histograms[k] = samples
	}
	return counters, histograms
}

// Nop discards every measurement.
type Nop struct{}

// IncCounter implements Sink.
func (Nop) IncCounter(string, uint64) {}

// ObserveHistogram implements Sink.
func (Nop) ObserveHistogram(string, float64) {}
