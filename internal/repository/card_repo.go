package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"inkflow/internal/database"
	"inkflow/internal/models"
)

// ErrCardNotFound is returned when no card has the requested ID
var ErrCardNotFound = errors.New("card not found")

const cardColumns = `id, user_id, image_url, correct_char, confused_with, tags, notes,
	box, next_review, last_reviewed, correct_count, incorrect_count, mistake,
	created_at, updated_at`

// CardRepository handles card database operations
type CardRepository struct {
	db *database.DB
}

// NewCardRepository creates a new card repository
func NewCardRepository(db *database.DB) *CardRepository {
	return &CardRepository{db: db}
}

// CreateBatch inserts all cards in one transaction. Either every card is stored or none is.
func (r *CardRepository) CreateBatch(ctx context.Context, cards []models.Card) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		for i := range cards {
			if err := insertCard(ctx, tx, &cards[i]); err != nil {
				return fmt.Errorf("card %d (%s): %w", i, cards[i].CorrectChar, err)
			}
		}
		return nil
	})
}

func insertCard(ctx context.Context, q database.DBTX, card *models.Card) error {
	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		card.ID, card.UserID, card.ImageURL, card.CorrectChar, card.ConfusedWith, card.Tags, card.Notes,
		card.Box, card.NextReview.UTC(), utcPtr(card.LastReviewed), card.CorrectCount, card.IncorrectCount, card.Mistake,
		card.CreatedAt.UTC(), card.UpdatedAt.UTC(),
	)
	return err
}

// GetByID retrieves a card by ID
func (r *CardRepository) GetByID(ctx context.Context, id string) (*models.Card, error) {
	card := &models.Card{}
	err := r.db.GetContext(ctx, card, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, err
	}
	return card, nil
}

// FetchAll returns every card owned by the user, oldest first
func (r *CardRepository) FetchAll(ctx context.Context, userID string) ([]models.Card, error) {
	cards := []models.Card{}
	query := `SELECT ` + cardColumns + ` FROM cards WHERE user_id = ? ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &cards, query, userID); err != nil {
		return nil, err
	}
	return cards, nil
}

// Update writes the result of a review and returns the stored card
func (r *CardRepository) Update(ctx context.Context, id string, upd models.CardUpdate) (*models.Card, error) {
	query := `
		UPDATE cards
		SET box = ?, next_review = ?, last_reviewed = ?, mistake = ?,
		    correct_count = ?, incorrect_count = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		upd.Box, upd.NextReview.UTC(), upd.LastReviewed.UTC(), upd.Mistake,
		upd.CorrectCount, upd.IncorrectCount, upd.LastReviewed.UTC(), id,
	)
	if err != nil {
		return nil, err
	}
	// Some drivers report zero affected rows when nothing changed, so existence
	// is decided by reading the row back.
	return r.GetByID(ctx, id)
}

// UpdateDetails changes the user-editable fields of a card
func (r *CardRepository) UpdateDetails(ctx context.Context, card *models.Card) error {
	query := `
		UPDATE cards
		SET image_url = ?, correct_char = ?, confused_with = ?, tags = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		card.ImageURL, card.CorrectChar, card.ConfusedWith, card.Tags, card.Notes, time.Now().UTC(), card.ID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// Delete removes a card
func (r *CardRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCardNotFound
	}
	return nil
}

func utcPtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
