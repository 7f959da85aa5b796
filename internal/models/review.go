package models

import "time"

// ReviewSession is the persisted summary of one pass through a review queue
type ReviewSession struct {
	ID              int64      `db:"id"`
	UserID          string     `db:"user_id"`
	Mode            string     `db:"mode"`
	StartedAt       time.Time  `db:"started_at"`
	CompletedAt     *time.Time `db:"completed_at"`
	TotalCards      int        `db:"total_cards"`
	CardsReviewed   int        `db:"cards_reviewed"`
	CorrectCount    int        `db:"correct_count"`
	IncorrectCount  int        `db:"incorrect_count"`
	DurationSeconds int        `db:"duration_seconds"`
}

// Accuracy returns the percentage of correct outcomes in the session
func (s ReviewSession) Accuracy() float64 {
	total := s.CorrectCount + s.IncorrectCount
	if total == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(total) * 100
}

// OutcomeEvent is emitted once per submitted review outcome
type OutcomeEvent struct {
	ID           int64     `db:"id"`
	SessionID    int64     `db:"session_id"`
	CardID       string    `db:"card_id"`
	IsCorrect    bool      `db:"is_correct"`
	PreviousBox  int       `db:"previous_box"`
	NextBox      int       `db:"next_box"`
	NextReviewAt time.Time `db:"next_review_at"`
	ReviewedAt   time.Time `db:"reviewed_at"`
}

// DailyActivity aggregates review sessions for one calendar day
type DailyActivity struct {
	Date          time.Time
	CardsReviewed int
	Correct       int
	Incorrect     int
}
