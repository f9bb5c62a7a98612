package pose

import (
	"sync"
	"time"
)

// Source supplies the engine with the current pose reading.
type Source interface {
	// Ready reports whether fresh pose data is flowing.
	Ready() bool
	// Current returns the latest fresh sample, or nil when no usable pose
	// data is available right now.
	Current() *Sample
}

// Hub is a latest-frame holder fed by the HTTP ingest route. A frame older
// than the freshness window reads as no pose data, so a stalled capture
// client breaks holds instead of freezing them.
type Hub struct {
	mu        sync.Mutex
	latest    *Sample
	freshness time.Duration
	now       func() time.Time
}

// NewHub creates a hub with the given freshness window.
func NewHub(freshness time.Duration) *Hub {
	return &Hub{freshness: freshness, now: time.Now}
}

// Publish replaces the current frame.
func (h *Hub) Publish(s *Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = s
}

// Current implements Source.
func (h *Hub) Current() *Sample {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest == nil {
		return nil
	}
	if h.now().Sub(h.latest.Time) > h.freshness {
		return nil
	}
	return h.latest
}

// Ready implements Source.
func (h *Hub) Ready() bool {
	return h.Current() != nil
}
