package llm

import (
	"errors"
	"testing"
	"time"
)

// fakeClock lets tests move time without sleeping.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestStats(window time.Duration) (*Stats, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStats(window)
	s.now = clock.now
	return s, clock
}

func TestStats_PercentilesByKind(t *testing.T) {
	s, _ := newTestStats(time.Hour)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		s.Record(CallDraft, time.Duration(ms)*time.Millisecond, nil)
	}
	s.Record(CallOutline, 2*time.Second, nil)

	snap := s.Snapshot()
	draft := snap.ByKind[CallDraft]
	if draft.Calls != 5 || draft.Failed != 0 {
		t.Fatalf("unexpected draft counts %+v", draft)
	}
	if draft.AvgMs != 300 || draft.P50Ms != 300 || draft.P95Ms != 500 || draft.MaxMs != 500 {
		t.Errorf("unexpected draft latency %+v", draft)
	}
	if got := snap.ByKind[CallOutline]; got.Calls != 1 || got.P50Ms != 2000 {
		t.Errorf("unexpected outline latency %+v", got)
	}
	if snap.Total.Calls != 6 || snap.Total.MaxMs != 2000 {
		t.Errorf("unexpected total %+v", snap.Total)
	}
	if _, ok := snap.ByKind[CallAssist]; ok {
		t.Error("kinds without calls should be absent")
	}
	if snap.Window != "1h0m0s" {
		t.Errorf("unexpected window %q", snap.Window)
	}
}

func TestStats_FailuresCountedOutsidePercentiles(t *testing.T) {
	s, _ := newTestStats(time.Hour)
	s.Record(CallAssist, 100*time.Millisecond, nil)
	s.Record(CallAssist, 30*time.Second, errors.New("timeout"))

	got := s.Snapshot().ByKind[CallAssist]
	if got.Calls != 2 || got.Failed != 1 {
		t.Fatalf("unexpected counts %+v", got)
	}
	if got.MaxMs != 100 {
		t.Errorf("failed call leaked into latency: %+v", got)
	}
}

func TestStats_ExpiresOldCalls(t *testing.T) {
	s, clock := newTestStats(10 * time.Minute)
	s.Record(CallDraft, time.Second, nil)
	clock.t = clock.t.Add(5 * time.Minute)
	s.Record(CallDraft, 2*time.Second, nil)

	clock.t = clock.t.Add(6 * time.Minute)
	got := s.Snapshot().ByKind[CallDraft]
	if got.Calls != 1 || got.MaxMs != 2000 {
		t.Errorf("expected only the recent call, got %+v", got)
	}

	clock.t = clock.t.Add(time.Hour)
	if snap := s.Snapshot(); snap.Total.Calls != 0 || len(snap.ByKind) != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestStats_DefaultsKindAndClampsLatency(t *testing.T) {
	s, _ := newTestStats(time.Hour)
	s.Record("", -time.Second, nil)
	got, ok := s.Snapshot().ByKind[CallOther]
	if !ok || got.Calls != 1 || got.MaxMs != 0 {
		t.Errorf("unexpected snapshot %+v", got)
	}
}

func TestNearestRank(t *testing.T) {
	values := []int64{10, 20, 30, 40}
	tests := []struct {
		pct  float64
		want int64
	}{
		{0, 10},
		{25, 10},
		{50, 20},
		{51, 30},
		{100, 40},
	}
	for _, tt := range tests {
		if got := nearestRank(values, tt.pct); got != tt.want {
			t.Errorf("nearestRank(%v) = %d, want %d", tt.pct, got, tt.want)
		}
	}
}
