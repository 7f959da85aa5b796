package service

import (
	"context"
	"errors"
	"fmt"

	"inkflow/internal/models"
)

var (
	// ErrLastBox is returned when removing the only remaining box
	ErrLastBox = errors.New("cannot remove the last box")
	// ErrBoxNotFound is returned when no box has the requested ID
	ErrBoxNotFound = errors.New("box not found")
)

// BoxUpdate changes the fields that are set
type BoxUpdate struct {
	Name         *string
	IntervalDays *int
}

// BoxService edits a user's Leitner box configuration. Sessions already
// running keep the snapshot they started with.
type BoxService struct {
	store BoxStore
}

// NewBoxService creates a new box service
func NewBoxService(store BoxStore) *BoxService {
	return &BoxService{store: store}
}

// Load returns the user's boxes in stored order
func (s *BoxService) Load(ctx context.Context, userID string) (models.BoxConfiguration, error) {
	return s.store.LoadBoxes(ctx, userID)
}

// Save replaces the user's configuration
func (s *BoxService) Save(ctx context.Context, userID string, boxes models.BoxConfiguration) error {
	return s.store.SaveBoxes(ctx, userID, boxes)
}

// AddBox appends a box with the next free ID and twice the interval of the last box
func (s *BoxService) AddBox(ctx context.Context, userID string) (models.Box, error) {
	boxes, err := s.store.LoadBoxes(ctx, userID)
	if err != nil {
		return models.Box{}, err
	}

	nextID := 1
	if highest, ok := boxes.Highest(); ok {
		nextID = highest.ID + 1
	}
	lastInterval := 1
	if len(boxes) > 0 {
		lastInterval = boxes[len(boxes)-1].IntervalDays
	}

	box := models.Box{ID: nextID, Name: fmt.Sprintf("Box %d", nextID), IntervalDays: lastInterval * 2}
	if err := s.store.SaveBoxes(ctx, userID, append(boxes.Clone(), box)); err != nil {
		return models.Box{}, err
	}
	return box, nil
}

// UpdateBox changes the name or interval of one box
func (s *BoxService) UpdateBox(ctx context.Context, userID string, id int, upd BoxUpdate) error {
	boxes, err := s.store.LoadBoxes(ctx, userID)
	if err != nil {
		return err
	}

	boxes = boxes.Clone()
	found := false
	for i := range boxes {
		if boxes[i].ID != id {
			continue
		}
		found = true
		if upd.Name != nil {
			boxes[i].Name = *upd.Name
		}
		if upd.IntervalDays != nil {
			boxes[i].IntervalDays = *upd.IntervalDays
		}
	}
	if !found {
		return fmt.Errorf("%w: %d", ErrBoxNotFound, id)
	}
	return s.store.SaveBoxes(ctx, userID, boxes)
}

// RemoveBox deletes one box. Cards still pointing at it are scheduled as if
// they were in the lowest box on their next review.
func (s *BoxService) RemoveBox(ctx context.Context, userID string, id int) error {
	boxes, err := s.store.LoadBoxes(ctx, userID)
	if err != nil {
		return err
	}
	if len(boxes) <= 1 {
		return ErrLastBox
	}

	kept := make(models.BoxConfiguration, 0, len(boxes)-1)
	for _, b := range boxes {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(boxes) {
		return fmt.Errorf("%w: %d", ErrBoxNotFound, id)
	}
	return s.store.SaveBoxes(ctx, userID, kept)
}
