package service

import (
	"context"
	"time"

	"inkflow/internal/models"
)

// CardStore is the card persistence used by the services
type CardStore interface {
	CreateBatch(ctx context.Context, cards []models.Card) error
	GetByID(ctx context.Context, id string) (*models.Card, error)
	FetchAll(ctx context.Context, userID string) ([]models.Card, error)
	Update(ctx context.Context, id string, upd models.CardUpdate) (*models.Card, error)
	UpdateDetails(ctx context.Context, card *models.Card) error
	Delete(ctx context.Context, id string) error
}

// BoxStore loads and saves a user's box configuration
type BoxStore interface {
	LoadBoxes(ctx context.Context, userID string) (models.BoxConfiguration, error)
	SaveBoxes(ctx context.Context, userID string, boxes models.BoxConfiguration) error
}

// SessionStore records review sessions and their outcomes
type SessionStore interface {
	CreateSession(ctx context.Context, userID, mode string, totalCards int, startedAt time.Time) (*models.ReviewSession, error)
	CompleteSession(ctx context.Context, id int64, completedAt time.Time, correct, incorrect, durationSeconds int) error
	ListCompletedSince(ctx context.Context, userID string, since time.Time) ([]models.ReviewSession, error)
	RecordOutcome(ctx context.Context, ev models.OutcomeEvent) error
}
