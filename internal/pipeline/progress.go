// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "sync"

// Progress is one observation of pipeline advancement.
type Progress struct {
	// Percent is in [0,100] and never decreases within one job.
	Percent int

	// Label is a human-readable description of the work in flight.
	Label string
}

// Observer receives progress updates. It is called at least once per
// stage transition, from the goroutine collecting page results, and
// should return quickly.
type Observer func(Progress)

// tracker clamps reported percents so observers never see a regression,
// even when page-level work completes out of order.
type tracker struct {
	mu   sync.Mutex
	obs  Observer
	last int
}

func newTracker(obs Observer) *tracker {
	if obs == nil {
		obs = func(Progress) {}
	}
	return &tracker{obs: obs}
}

func (t *tracker) report(percent int, label string) {
	t.mu.Lock()
	if percent < t.last {
		percent = t.last
	}
	t.last = percent
	t.mu.Unlock()
	t.obs(Progress{Percent: percent, Label: label})
}

// span maps done/total completion onto the [lo,hi] slice of overall
// progress a stage owns.
func span(lo, hi, done, total int) int {
	if total <= 0 {
		return hi
	}
	return lo + (hi-lo)*done/total
}
