package llm

import (
	"math"
	"slices"
	"sync"
	"time"
)

// CallKind labels what a model call was made for.
type CallKind string

const (
	CallOutline CallKind = "outline"
	CallDraft   CallKind = "draft"
	CallAssist  CallKind = "assist"
	CallOther   CallKind = "other"
)

type call struct {
	at      time.Time
	kind    CallKind
	latency time.Duration
	failed  bool
}

// Latency summarizes the calls of one kind still inside the window.
// Percentiles cover successful calls only.
type Latency struct {
	Calls  int     `json:"calls"`
	Failed int     `json:"failed"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  int64   `json:"p50_ms"`
	P95Ms  int64   `json:"p95_ms"`
	MaxMs  int64   `json:"max_ms"`
}

// StatsSnapshot is the JSON view served on /api/stats/llm.
type StatsSnapshot struct {
	Window string               `json:"window"`
	Total  Latency              `json:"total"`
	ByKind map[CallKind]Latency `json:"by_kind"`
}

// Stats keeps the model calls of the last window, oldest first.
type Stats struct {
	mu     sync.Mutex
	window time.Duration
	calls  []call
	now    func() time.Time
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window, now: time.Now}
}

// Record adds one finished call. A non-nil err counts the call as failed.
func (s *Stats) Record(kind CallKind, latency time.Duration, err error) {
	if kind == "" {
		kind = CallOther
	}
	latency = max(latency, 0)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.expire(now)
	s.calls = append(s.calls, call{at: now, kind: kind, latency: latency, failed: err != nil})
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	s.expire(s.now())
	calls := slices.Clone(s.calls)
	s.mu.Unlock()

	byKind := make(map[CallKind][]call)
	for _, c := range calls {
		byKind[c.kind] = append(byKind[c.kind], c)
	}
	snap := StatsSnapshot{
		Window: s.window.String(),
		Total:  summarize(calls),
		ByKind: make(map[CallKind]Latency, len(byKind)),
	}
	for kind, cs := range byKind {
		snap.ByKind[kind] = summarize(cs)
	}
	return snap
}

// expire drops calls older than the window. Calls are appended in time order.
func (s *Stats) expire(now time.Time) {
	cutoff := now.Add(-s.window)
	i := slices.IndexFunc(s.calls, func(c call) bool { return !c.at.Before(cutoff) })
	if i < 0 {
		i = len(s.calls)
	}
	s.calls = slices.Delete(s.calls, 0, i)
}

func summarize(calls []call) Latency {
	l := Latency{Calls: len(calls)}
	var ms []int64
	var sum int64
	for _, c := range calls {
		if c.failed {
			l.Failed++
			continue
		}
		v := c.latency.Milliseconds()
		ms = append(ms, v)
		sum += v
	}
	if len(ms) == 0 {
		return l
	}
	slices.Sort(ms)
	l.AvgMs = float64(sum) / float64(len(ms))
	l.P50Ms = nearestRank(ms, 50)
	l.P95Ms = nearestRank(ms, 95)
	l.MaxMs = ms[len(ms)-1]
	return l
}

// nearestRank returns the pct-th percentile of sorted values.
func nearestRank(sorted []int64, pct float64) int64 {
	rank := int(math.Ceil(pct / 100 * float64(len(sorted))))
	return sorted[min(max(rank, 1), len(sorted))-1]
}
