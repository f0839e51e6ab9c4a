// Package scheduler maps review ratings onto next-review delays using a
// fixed interval table. It is an SM-2-inspired simplification: the ease
// factor and interval fields are stored and round-tripped but deliberately
// never consulted, so the delay depends only on the most recent rating.
package scheduler

import (
	"time"

	"github.com/emclaughlin/flashdeck/internal/domain"
)

// DefaultEaseFactor seeds new progress entries. The field is reserved for a
// future adaptive scheduler and is currently inert.
const DefaultEaseFactor = 2.5

var intervals = map[domain.Rating]time.Duration{
	domain.Again: 10 * time.Minute,
	domain.Hard:  3 * 24 * time.Hour,
	domain.Good:  7 * 24 * time.Hour,
	domain.Easy:  14 * 24 * time.Hour,
}

// NextInterval returns the delay before a card rated r comes due again.
func NextInterval(r domain.Rating) time.Duration {
	return intervals[r]
}

// CardProgress is the per-card scheduling state, keyed by card ID in the
// progress snapshot. Timestamps are epoch milliseconds to match the
// persisted representation exactly.
type CardProgress struct {
	Reviews    int           `json:"reviews" validate:"min=0"`
	LastReview int64         `json:"lastReview"`
	NextReview int64         `json:"nextReview"`
	EaseFactor float64       `json:"easeFactor"`
	Interval   int64         `json:"interval"`
	LastRating domain.Rating `json:"lastRating"`
}

// Apply folds one rating into a card's progress. A zero-value CardProgress
// is treated as a first review and gets the default ease factor. EaseFactor
// and Interval are otherwise passed through untouched.
func Apply(cp CardProgress, r domain.Rating, now time.Time) CardProgress {
	if cp.Reviews == 0 && cp.EaseFactor == 0 {
		cp.EaseFactor = DefaultEaseFactor
	}
	cp.Reviews++
	cp.LastReview = now.UnixMilli()
	cp.NextReview = now.Add(NextInterval(r)).UnixMilli()
	cp.LastRating = r
	return cp
}
