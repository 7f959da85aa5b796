package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"inkflow/internal/models"
)

type fakeCards struct {
	cards    map[string]models.Card
	order    []string
	failNext int
}

func newFakeCards(cards ...models.Card) *fakeCards {
	f := &fakeCards{cards: make(map[string]models.Card)}
	for _, c := range cards {
		f.cards[c.ID] = c
		f.order = append(f.order, c.ID)
	}
	return f
}

func (f *fakeCards) CreateBatch(ctx context.Context, cards []models.Card) error {
	for _, c := range cards {
		f.cards[c.ID] = c
		f.order = append(f.order, c.ID)
	}
	return nil
}

var errFakeNotFound = errors.New("card not found")

func (f *fakeCards) GetByID(ctx context.Context, id string) (*models.Card, error) {
	c, ok := f.cards[id]
	if !ok {
		return nil, errFakeNotFound
	}
	return &c, nil
}

func (f *fakeCards) UpdateDetails(ctx context.Context, card *models.Card) error {
	if _, ok := f.cards[card.ID]; !ok {
		return errFakeNotFound
	}
	f.cards[card.ID] = *card
	return nil
}

func (f *fakeCards) Delete(ctx context.Context, id string) error {
	if _, ok := f.cards[id]; !ok {
		return errFakeNotFound
	}
	delete(f.cards, id)
	for i, o := range f.order {
		if o == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeCards) FetchAll(ctx context.Context, userID string) ([]models.Card, error) {
	out := []models.Card{}
	for _, id := range f.order {
		if c := f.cards[id]; c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCards) Update(ctx context.Context, id string, upd models.CardUpdate) (*models.Card, error) {
	if f.failNext > 0 {
		f.failNext--
		return nil, errors.New("database is locked")
	}
	c, ok := f.cards[id]
	if !ok {
		return nil, errFakeNotFound
	}
	c = upd.Apply(c)
	f.cards[id] = c
	return &c, nil
}

type fakeBoxes struct {
	boxes map[string]models.BoxConfiguration
	saves int
}

func newFakeBoxes() *fakeBoxes {
	return &fakeBoxes{boxes: make(map[string]models.BoxConfiguration)}
}

func (f *fakeBoxes) LoadBoxes(ctx context.Context, userID string) (models.BoxConfiguration, error) {
	if b, ok := f.boxes[userID]; ok {
		return b.Clone(), nil
	}
	return models.DefaultBoxes(), nil
}

func (f *fakeBoxes) SaveBoxes(ctx context.Context, userID string, boxes models.BoxConfiguration) error {
	if err := boxes.Validate(); err != nil {
		return err
	}
	f.saves++
	f.boxes[userID] = boxes.Clone()
	return nil
}

type fakeSessions struct {
	sessions []models.ReviewSession
	events   []models.OutcomeEvent

	failCreate   int
	failComplete int
}

func (f *fakeSessions) CreateSession(ctx context.Context, userID, mode string, totalCards int, startedAt time.Time) (*models.ReviewSession, error) {
	if f.failCreate > 0 {
		f.failCreate--
		return nil, errors.New("database is locked")
	}
	s := models.ReviewSession{
		ID:         int64(len(f.sessions) + 1),
		UserID:     userID,
		Mode:       mode,
		StartedAt:  startedAt,
		TotalCards: totalCards,
	}
	f.sessions = append(f.sessions, s)
	return &s, nil
}

func (f *fakeSessions) CompleteSession(ctx context.Context, id int64, completedAt time.Time, correct, incorrect, durationSeconds int) error {
	if f.failComplete > 0 {
		f.failComplete--
		return errors.New("database is locked")
	}
	for i := range f.sessions {
		if f.sessions[i].ID == id {
			f.sessions[i].CompletedAt = &completedAt
			f.sessions[i].CardsReviewed = correct + incorrect
			f.sessions[i].CorrectCount = correct
			f.sessions[i].IncorrectCount = incorrect
			f.sessions[i].DurationSeconds = durationSeconds
			return nil
		}
	}
	return errors.New("session not found")
}

func (f *fakeSessions) ListCompletedSince(ctx context.Context, userID string, since time.Time) ([]models.ReviewSession, error) {
	out := []models.ReviewSession{}
	for _, s := range f.sessions {
		if s.UserID == userID && s.CompletedAt != nil && !s.StartedAt.Before(since) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

func (f *fakeSessions) RecordOutcome(ctx context.Context, ev models.OutcomeEvent) error {
	f.events = append(f.events, ev)
	return nil
}
