// Package leitner implements the box transitions of a generalized Leitner system.
//
// A correct answer moves a card up one box, capped at the highest box. A wrong
// answer sends it back to the lowest box no matter where it was. The card is due
// again after the interval of the box it lands in.
package leitner

import (
	"time"

	"inkflow/internal/models"
)

// Day is the length of one interval day
const Day = 24 * time.Hour

// Outcome is the result of reviewing a card
type Outcome int

const (
	Incorrect Outcome = iota
	Correct
)

// OutcomeOf converts a pass/fail flag to an Outcome
func OutcomeOf(isCorrect bool) Outcome {
	if isCorrect {
		return Correct
	}
	return Incorrect
}

func (o Outcome) String() string {
	if o == Correct {
		return "correct"
	}
	return "incorrect"
}

// Result is the scheduling decision for one review
type Result struct {
	NextBox      int
	NextReviewAt time.Time
	// Fallback is set when the current box was not in the configuration and the
	// card was treated as sitting in the lowest box.
	Fallback bool
}

// IsDue reports whether a card scheduled for nextReview is due at now
func IsDue(nextReview, now time.Time) bool {
	return !now.Before(nextReview)
}

// Transition computes the next box and due time for a card in currentBox.
//
// An empty configuration yields {currentBox, now}.
func Transition(currentBox int, outcome Outcome, boxes models.BoxConfiguration, now time.Time) Result {
	if len(boxes) == 0 {
		return Result{NextBox: currentBox, NextReviewAt: now}
	}

	sorted := boxes.Sorted()

	idx := -1
	for i, b := range sorted {
		if b.ID == currentBox {
			idx = i
			break
		}
	}
	fallback := idx < 0
	if fallback {
		idx = 0
	}

	// A stale box behaves exactly like the lowest box: a correct answer promotes
	// to the second box, a wrong one stays in the first.
	next := 0
	if outcome == Correct {
		next = idx + 1
		if next > len(sorted)-1 {
			next = len(sorted) - 1
		}
	}

	box := sorted[next]
	return Result{
		NextBox:      box.ID,
		NextReviewAt: now.Add(time.Duration(intervalDays(box, sorted)) * Day),
		Fallback:     fallback,
	}
}

// intervalDays returns the interval for box, using the first box's interval
// when box has no usable interval.
func intervalDays(box models.Box, sorted models.BoxConfiguration) int {
	if box.IntervalDays >= 0 {
		return box.IntervalDays
	}
	if sorted[0].IntervalDays >= 0 {
		return sorted[0].IntervalDays
	}
	return 0
}
