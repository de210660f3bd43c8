// Package series keeps a fixed-size rolling window of recent values per metric.
package series

// DefaultCapacity is the default number of values retained per metric.
const DefaultCapacity = 100

// Series is a fixed-capacity circular buffer of float64 values. Once full,
// each Append overwrites the oldest value. Series is not safe for concurrent
// use; Store adds the locking.
type Series struct {
	data  []float64
	head  int
	count int
	size  int
}

// Stats summarizes the values currently retained by a Series.
type Stats struct {
	Min   float64
	Max   float64
	Avg   float64
	Count int
}

// New creates a series holding at most capacity values.
func New(capacity int) *Series {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Series{
		data: make([]float64, capacity),
		size: capacity,
	}
}

// Append adds a value, evicting the oldest one when the series is full.
func (s *Series) Append(v float64) {
	s.data[s.head] = v
	s.head = (s.head + 1) % s.size
	if s.count < s.size {
		s.count++
	}
}

// Len returns the number of values retained.
func (s *Series) Len() int {
	return s.count
}

// Cap returns the maximum number of values retained.
func (s *Series) Cap() int {
	return s.size
}

// Last returns the last n values in chronological order (oldest first).
// Returns fewer values if not enough are retained.
func (s *Series) Last(n int) []float64 {
	if n <= 0 || s.count == 0 {
		return nil
	}
	if n > s.count {
		n = s.count
	}

	out := make([]float64, n)

	// head is the next write position, so the newest value sits at head-1.
	start := (s.head - n + s.size) % s.size
	for i := 0; i < n; i++ {
		out[i] = s.data[(start+i)%s.size]
	}
	return out
}

// Values returns a chronological copy of every retained value.
func (s *Series) Values() []float64 {
	return s.Last(s.count)
}

// Latest returns the most recent value, or false when the series is empty.
func (s *Series) Latest() (float64, bool) {
	if s.count == 0 {
		return 0, false
	}
	return s.data[(s.head-1+s.size)%s.size], true
}

// Stats returns min/max/avg over the retained values. The zero Stats is
// returned for an empty series.
func (s *Series) Stats() Stats {
	if s.count == 0 {
		return Stats{}
	}
	vals := s.Values()
	st := Stats{Min: vals[0], Max: vals[0], Count: len(vals)}
	var sum float64
	for _, v := range vals {
		if v < st.Min {
			st.Min = v
		}
		if v > st.Max {
			st.Max = v
		}
		sum += v
	}
	st.Avg = sum / float64(len(vals))
	return st
}

// Reset drops every retained value, keeping the capacity.
func (s *Series) Reset() {
	s.head = 0
	s.count = 0
}
