package series

import (
	"sync"

	"github.com/rileyhilliard/watchdog/internal/sensor"
)

// Store holds one Series per metric. The polling loop is the only writer;
// presenters on other goroutines read through Snapshot.
type Store struct {
	mu       sync.RWMutex
	capacity int
	series   map[sensor.Metric]*Series
}

// NewStore creates a store with a series for each of metrics. Metrics not
// listed get a series lazily on first Append.
func NewStore(capacity int, metrics ...sensor.Metric) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	st := &Store{
		capacity: capacity,
		series:   make(map[sensor.Metric]*Series, len(metrics)),
	}
	for _, m := range metrics {
		st.series[m] = New(capacity)
	}
	return st
}

// Capacity returns the per-metric capacity.
func (st *Store) Capacity() int {
	return st.capacity
}

// Append adds v to the series for m. It never fails.
func (st *Store) Append(m sensor.Metric, v float64) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.series[m]
	if !ok {
		s = New(st.capacity)
		st.series[m] = s
	}
	s.Append(v)
}

// Values returns a chronological copy of the series for m.
func (st *Store) Values(m sensor.Metric) []float64 {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.series[m]
	if !ok {
		return nil
	}
	return s.Values()
}

// Latest returns the newest value for m.
func (st *Store) Latest(m sensor.Metric) (float64, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.series[m]
	if !ok {
		return 0, false
	}
	return s.Latest()
}

// Stats returns summary statistics for m.
func (st *Store) Stats(m sensor.Metric) Stats {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.series[m]
	if !ok {
		return Stats{}
	}
	return s.Stats()
}

// Snapshot returns a copy of every series. Callers own the returned slices.
func (st *Store) Snapshot() map[sensor.Metric][]float64 {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make(map[sensor.Metric][]float64, len(st.series))
	for m, s := range st.series {
		out[m] = s.Values()
	}
	return out
}

// Clear empties every series.
func (st *Store) Clear() {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, s := range st.series {
		s.Reset()
	}
}
