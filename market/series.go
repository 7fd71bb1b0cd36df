package market

import "sync"

// DefaultCapacity bounds how many quotes are retained per instrument.
const DefaultCapacity = 500

// Series is a fixed-capacity chronological buffer of price points for one
// instrument. Appending past capacity evicts the oldest entry.
type Series struct {
	points []PricePoint
	cap    int
}

func NewSeries(capacity int) *Series {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Series{points: make([]PricePoint, 0, capacity), cap: capacity}
}

func (s *Series) Append(p PricePoint) {
	if len(s.points) == s.cap {
		copy(s.points, s.points[1:])
		s.points[len(s.points)-1] = p
		return
	}
	s.points = append(s.points, p)
}

func (s *Series) Len() int { return len(s.points) }

// Last returns the most recent point, or a zero value when empty.
func (s *Series) Last() (PricePoint, bool) {
	if len(s.points) == 0 {
		return PricePoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// Points returns a copy of the buffered points in chronological order, so
// callers can never mutate the buffer through the view.
func (s *Series) Points() []PricePoint {
	out := make([]PricePoint, len(s.points))
	copy(out, s.points)
	return out
}

// Mids returns the mid price of every buffered point, oldest first.
func (s *Series) Mids() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Mid
	}
	return out
}

// HistoryStore owns one bounded Series per instrument. Series are created
// lazily on first append and never deleted while the process runs.
type HistoryStore struct {
	mu       sync.RWMutex
	capacity int
	series   map[string]*Series
}

func NewHistoryStore(capacity int) *HistoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &HistoryStore{
		capacity: capacity,
		series:   make(map[string]*Series),
	}
}

func (h *HistoryStore) Append(p PricePoint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.series[p.Instrument]
	if !ok {
		s = NewSeries(h.capacity)
		h.series[p.Instrument] = s
	}
	s.Append(p)
}

// GetSeries returns a read-only snapshot of the instrument's series, or
// ok=false when no quote has been seen for it yet.
func (h *HistoryStore) GetSeries(instrument string) (*Series, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.series[instrument]
	if !ok {
		return nil, false
	}
	snap := NewSeries(h.capacity)
	snap.points = append(snap.points, s.points...)
	return snap, true
}

func (h *HistoryStore) Instruments() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.series))
	for name := range h.series {
		out = append(out, name)
	}
	return out
}
