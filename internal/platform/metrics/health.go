package metrics

import (
	"sort"
	"sync"
	"time"
)

// FeedStatus is the rolling health of one upstream feed for one league.
type FeedStatus struct {
	Feed                string    `json:"feed"`
	League              string    `json:"league"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastError           string    `json:"lastError,omitempty"`
	LastSuccess         time.Time `json:"lastSuccess"`
	LastFailure         time.Time `json:"lastFailure"`
}

// Failing reports whether the feed has failed at least threshold times in a row.
func (s FeedStatus) Failing(threshold int) bool {
	return s.ConsecutiveFailures >= threshold
}

type FeedHealth struct {
	mu    sync.Mutex
	feeds map[string]*FeedStatus
	now   func() time.Time
}

func NewFeedHealth() *FeedHealth {
	return &FeedHealth{
		feeds: make(map[string]*FeedStatus),
		now:   time.Now,
	}
}

func (h *FeedHealth) entry(feed, league string) *FeedStatus {
	key := feed + ":" + league
	status, ok := h.feeds[key]
	if !ok {
		status = &FeedStatus{Feed: feed, League: league}
		h.feeds[key] = status
	}
	return status
}

func (h *FeedHealth) RecordSuccess(feed, league string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	status := h.entry(feed, league)
	status.ConsecutiveFailures = 0
	status.LastError = ""
	status.LastSuccess = h.now()
}

func (h *FeedHealth) RecordFailure(feed, league string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	status := h.entry(feed, league)
	status.ConsecutiveFailures++
	status.LastFailure = h.now()
	if err != nil {
		status.LastError = err.Error()
	}
}

// Snapshot lists every tracked feed ordered by feed then league.
func (h *FeedHealth) Snapshot() []FeedStatus {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	out := make([]FeedStatus, 0, len(h.feeds))
	for _, status := range h.feeds {
		out = append(out, *status)
	}
	h.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Feed != out[j].Feed {
			return out[i].Feed < out[j].Feed
		}
		return out[i].League < out[j].League
	})
	return out
}
