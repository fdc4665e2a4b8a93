package service

import (
	"sync"
	"time"

	"currency-converter/internal/metrics"
	"currency-converter/internal/widget"
)

type session struct {
	widget   *widget.Widget
	lastSeen time.Time
}

// sessions keeps one widget per open page.
type sessions struct {
	mu      sync.Mutex
	items   map[string]*session
	ttl     time.Duration
	metrics *metrics.Metrics
	now     func() time.Time
}

func newSessions(ttl time.Duration, m *metrics.Metrics) *sessions {
	return &sessions{
		items:   make(map[string]*session),
		ttl:     ttl,
		metrics: m,
		now:     time.Now,
	}
}

func (r *sessions) get(id string) (*widget.Widget, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, false
	}
	s.lastSeen = r.now()
	return s.widget, true
}

func (r *sessions) add(id string, w *widget.Widget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[id] = &session{widget: w, lastSeen: r.now()}
	r.metrics.SessionsActive.Set(float64(len(r.items)))
}

// sweep removes sessions idle since before now-ttl and returns how many
// were removed.
func (r *sessions) sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.items {
		if now.Sub(s.lastSeen) > r.ttl {
			delete(r.items, id)
			removed++
		}
	}
	r.metrics.SessionsActive.Set(float64(len(r.items)))
	return removed
}

func (r *sessions) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
