package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"inkflow/internal/clock"
	"inkflow/internal/logging"
	"inkflow/internal/models"
	"inkflow/internal/queue"
	"inkflow/internal/validation"
)

var (
	// ErrNoCharacters is returned when Add is given nothing to create
	ErrNoCharacters = errors.New("no characters given")
	// ErrNotOwner is returned when a card belongs to another user
	ErrNotOwner = errors.New("card belongs to another user")
)

// CardEdit holds the user-editable fields of a card. Nil fields are left unchanged.
type CardEdit struct {
	Char     *string
	ImageURL *string
	Notes    *string
	Tags     []string
}

// CardService creates and lists a user's cards
type CardService struct {
	cards  CardStore
	boxes  BoxStore
	clock  clock.Clock
	logger *slog.Logger
}

// NewCardService creates a new card service
func NewCardService(cards CardStore, boxes BoxStore, clk clock.Clock, logger *slog.Logger) *CardService {
	if clk == nil {
		clk = clock.System()
	}
	return &CardService{cards: cards, boxes: boxes, clock: clk, logger: logging.OrDiscard(logger)}
}

// Add creates one card per character, each in the lowest configured box and due now.
// Blank entries are skipped. All cards are stored together or not at all.
func (s *CardService) Add(ctx context.Context, userID string, chars []string, imageURL string) ([]models.Card, error) {
	if err := validation.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}
	boxes, err := s.boxes.LoadBoxes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load box configuration: %w", err)
	}

	now := s.clock.Now()
	cards := make([]models.Card, 0, len(chars))
	for _, c := range chars {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if err := validation.ValidateCharacter(c); err != nil {
			return nil, err
		}
		cards = append(cards, models.NewCard(userID, c, imageURL, boxes, now))
	}
	if len(cards) == 0 {
		return nil, ErrNoCharacters
	}

	if err := s.cards.CreateBatch(ctx, cards); err != nil {
		return nil, fmt.Errorf("failed to create cards: %w", err)
	}
	s.logger.Info("cards created", "user_id", userID, "count", len(cards))
	return cards, nil
}

// Due returns the user's cards due now, in stored order
func (s *CardService) Due(ctx context.Context, userID string) ([]models.Card, error) {
	cards, err := s.cards.FetchAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	return queue.Due(cards, s.clock.Now()), nil
}

// Edit changes a card's character, image, notes or tags. Scheduling fields are
// never touched here.
func (s *CardService) Edit(ctx context.Context, userID, cardID string, edit CardEdit) (*models.Card, error) {
	card, err := s.owned(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	if edit.Char != nil {
		c := strings.TrimSpace(*edit.Char)
		if err := validation.ValidateCharacter(c); err != nil {
			return nil, err
		}
		card.CorrectChar = c
	}
	if edit.ImageURL != nil {
		if err := validation.ValidateImageURL(*edit.ImageURL); err != nil {
			return nil, err
		}
		card.ImageURL = *edit.ImageURL
	}
	if edit.Notes != nil {
		card.Notes = *edit.Notes
	}
	if edit.Tags != nil {
		card.Tags = models.Tags(edit.Tags)
	}

	if err := s.cards.UpdateDetails(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}
	s.logger.Info("card updated", "user_id", userID, "card_id", cardID)
	return card, nil
}

// Delete removes one of the user's cards
func (s *CardService) Delete(ctx context.Context, userID, cardID string) error {
	if _, err := s.owned(ctx, userID, cardID); err != nil {
		return err
	}
	if err := s.cards.Delete(ctx, cardID); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	s.logger.Info("card deleted", "user_id", userID, "card_id", cardID)
	return nil
}

func (s *CardService) owned(ctx context.Context, userID, cardID string) (*models.Card, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.UserID != userID {
		return nil, ErrNotOwner
	}
	return card, nil
}
