package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"inkflow/internal/database"
	"inkflow/internal/models"
)

// ErrSessionNotFound is returned when no review session has the requested ID
var ErrSessionNotFound = errors.New("review session not found")

const sessionColumns = `id, user_id, mode, started_at, completed_at, total_cards,
	cards_reviewed, correct_count, incorrect_count, duration_seconds`

// ReviewRepository stores review sessions and their per-card outcomes
type ReviewRepository struct {
	db *database.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *database.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// CreateSession creates a new review session
func (r *ReviewRepository) CreateSession(ctx context.Context, userID, mode string, totalCards int, startedAt time.Time) (*models.ReviewSession, error) {
	query := `
		INSERT INTO review_sessions (user_id, mode, started_at, total_cards)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, userID, mode, startedAt.UTC(), totalCards)
	if err != nil {
		return nil, err
	}
	return r.GetSession(ctx, id)
}

// CompleteSession marks a session as complete and stores its totals
func (r *ReviewRepository) CompleteSession(ctx context.Context, id int64, completedAt time.Time, correct, incorrect, durationSeconds int) error {
	query := `
		UPDATE review_sessions
		SET completed_at = ?, cards_reviewed = ?, correct_count = ?, incorrect_count = ?, duration_seconds = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, completedAt.UTC(), correct+incorrect, correct, incorrect, durationSeconds, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// GetSession retrieves a review session by ID
func (r *ReviewRepository) GetSession(ctx context.Context, id int64) (*models.ReviewSession, error) {
	s := &models.ReviewSession{}
	err := r.db.GetContext(ctx, s, `SELECT `+sessionColumns+` FROM review_sessions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListSessions returns the user's most recent sessions, newest first
func (r *ReviewRepository) ListSessions(ctx context.Context, userID string, limit int) ([]models.ReviewSession, error) {
	sessions := []models.ReviewSession{}
	query := `SELECT ` + sessionColumns + ` FROM review_sessions
		WHERE user_id = ? ORDER BY started_at DESC, id DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &sessions, query, userID, limit); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListCompletedSince returns the user's completed sessions started at or after since, oldest first
func (r *ReviewRepository) ListCompletedSince(ctx context.Context, userID string, since time.Time) ([]models.ReviewSession, error) {
	sessions := []models.ReviewSession{}
	query := `SELECT ` + sessionColumns + ` FROM review_sessions
		WHERE user_id = ? AND completed_at IS NOT NULL AND started_at >= ?
		ORDER BY started_at, id`
	if err := r.db.SelectContext(ctx, &sessions, query, userID, since.UTC()); err != nil {
		return nil, err
	}
	return sessions, nil
}

// RecordOutcome stores one review outcome. Events without a persisted session are dropped.
func (r *ReviewRepository) RecordOutcome(ctx context.Context, ev models.OutcomeEvent) error {
	if ev.SessionID == 0 {
		return nil
	}
	query := `
		INSERT INTO review_events (session_id, card_id, is_correct, previous_box, next_box, next_review_at, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		ev.SessionID, ev.CardID, ev.IsCorrect, ev.PreviousBox, ev.NextBox,
		ev.NextReviewAt.UTC(), ev.ReviewedAt.UTC())
	return err
}

// ListEvents returns the outcomes recorded for a session in submission order
func (r *ReviewRepository) ListEvents(ctx context.Context, sessionID int64) ([]models.OutcomeEvent, error) {
	events := []models.OutcomeEvent{}
	query := `
		SELECT id, session_id, card_id, is_correct, previous_box, next_box, next_review_at, reviewed_at
		FROM review_events
		WHERE session_id = ?
		ORDER BY id
	`
	if err := r.db.SelectContext(ctx, &events, query, sessionID); err != nil {
		return nil, err
	}
	return events, nil
}
