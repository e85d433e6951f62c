package metrics

import (
	"sync"
	"testing"
)

func TestMemoryCounters(t *testing.T) {
	m := NewMemory()

	m.IncCounter(CounterMessagesIn, 1)
	m.IncCounter(CounterMessagesIn, 2)
	m.IncCounter(CounterBytesIn, 512)

	if got := m.Counter(CounterMessagesIn); got != 3 {
		t.Errorf("Counter(%q) = %d, want 3", CounterMessagesIn, got)
	}
	if got := m.Counter(CounterBytesIn); got != 512 {
		t.Errorf("Counter(%q) = %d, want 512", CounterBytesIn, got)
	}
	if got := m.Counter(CounterDecodeErrors); got != 0 {
		t.Errorf("Counter(%q) = %d, want 0 for untouched counter", CounterDecodeErrors, got)
	}
}

func TestMemoryHistograms(t *testing.T) {
	m := NewMemory()

	m.ObserveHistogram(HistogramPingRTTMillis, 1.5)
	m.ObserveHistogram(HistogramPingRTTMillis, 2.25)

	got := m.Samples(HistogramPingRTTMillis)
	if len(got) != 2 || got[0] != 1.5 || got[1] != 2.25 {
		t.Errorf("Samples(%q) = %v, want [1.5 2.25]", HistogramPingRTTMillis, got)
	}

	// The returned slice is a copy; mutating it must not affect the sink.
	got[0] = 99
	if again := m.Samples(HistogramPingRTTMillis); again[0] != 1.5 {
		t.Errorf("sample mutated through returned copy: %v", again)
	}
}

func TestMemorySnapshotIsolation(t *testing.T) {
	m := NewMemory()
	m.IncCounter(CounterPeersDialed, 1)
	m.ObserveHistogram(HistogramHandshakeMillis, 12.0)

	counters, histograms := m.Snapshot()
	counters[CounterPeersDialed] = 400
	histograms[HistogramHandshakeMillis][0] = 400

	if got := m.Counter(CounterPeersDialed); got != 1 {
		t.Errorf("counter mutated through snapshot: %d", got)
	}
	if got := m.Samples(HistogramHandshakeMillis); got[0] != 12.0 {
		t.Errorf("histogram mutated through snapshot: %v", got)
	}
}

func TestMemoryConcurrentUse(t *testing.T) {
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.IncCounter(CounterMessagesOut, 1)
				m.ObserveHistogram(HistogramPingRTTMillis, float64(j))
			}
		}()
	}
	wg.Wait()

	if got := m.Counter(CounterMessagesOut); got != 800 {
		t.Errorf("Counter(%q) = %d, want 800", CounterMessagesOut, got)
	}
	if got := len(m.Samples(HistogramPingRTTMillis)); got != 800 {
		t.Errorf("len(Samples) = %d, want 800", got)
	}
}

func TestNopDiscards(t *testing.T) {
	// Nop must satisfy Sink and accept any input without effect.
	var s Sink = Nop{}
	s.IncCounter(CounterPeersRefused, 10)
	s.ObserveHistogram(HistogramHandshakeMillis, 5)
}
