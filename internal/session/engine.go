// Package session drives a user through a review queue, one card at a time.
package session

import (
	"context"
	"io"
	"log/slog"
	"time"

	"inkflow/internal/clock"
	"inkflow/internal/leitner"
	"inkflow/internal/models"
	"inkflow/internal/queue"
)

// CardWriter persists the result of a review
type CardWriter interface {
	Update(ctx context.Context, cardID string, upd models.CardUpdate) (*models.Card, error)
}

// Sink receives one event per recorded outcome
type Sink interface {
	RecordOutcome(ctx context.Context, ev models.OutcomeEvent) error
}

// State is the lifecycle stage of a session
type State int

const (
	InProgress State = iota
	Completed
	Abandoned
)

func (s State) String() string {
	switch s {
	case Completed:
		return "completed"
	case Abandoned:
		return "abandoned"
	default:
		return "in_progress"
	}
}

// Stats counts the outcomes submitted in a session
type Stats struct {
	Correct   int
	Incorrect int
}

// Total returns the number of submitted outcomes
func (s Stats) Total() int {
	return s.Correct + s.Incorrect
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSink adds an outcome sink
func WithSink(s Sink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sinks = append(e.sinks, s)
		}
	}
}

// WithSessionID tags emitted events with a persisted session ID
func WithSessionID(id int64) Option {
	return func(e *Engine) {
		e.sessionID = id
	}
}

// Engine is the state machine for one review session. It is not safe for
// concurrent use; callers submit outcomes one at a time.
type Engine struct {
	queue []models.Card
	boxes models.BoxConfiguration
	store CardWriter
	clock clock.Clock
	sinks []Sink

	logger    *slog.Logger
	sessionID int64

	index     int
	state     State
	stats     Stats
	missed    []models.Card
	missedIDs map[string]struct{}
	startedAt time.Time
}

// NewEngine starts a session over q. Both q and boxes are copied, so later edits
// by the caller do not affect the running session.
func NewEngine(q []models.Card, boxes models.BoxConfiguration, store CardWriter, clk clock.Clock, opts ...Option) *Engine {
	if clk == nil {
		clk = clock.System()
	}
	e := &Engine{
		boxes:  boxes.Clone(),
		store:  store,
		clock:  clk,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.start(q)
	return e
}

func (e *Engine) start(q []models.Card) {
	e.queue = make([]models.Card, len(q))
	copy(e.queue, q)
	e.index = 0
	e.stats = Stats{}
	e.missed = nil
	e.missedIDs = make(map[string]struct{})
	e.startedAt = e.clock.Now()
	e.state = InProgress
	if len(e.queue) == 0 {
		e.state = Completed
	}
}

// CurrentCard returns the card awaiting an outcome
func (e *Engine) CurrentCard() (models.Card, bool) {
	if e.state != InProgress {
		return models.Card{}, false
	}
	return e.queue[e.index], true
}

// SubmitOutcome records the outcome for the current card and advances.
//
// The card write happens before any session state changes. If it fails the
// returned error wraps ErrPersistence and the session stays on the same card.
func (e *Engine) SubmitOutcome(ctx context.Context, isCorrect bool) error {
	switch e.state {
	case Completed:
		return ErrSessionCompleted
	case Abandoned:
		return ErrSessionAbandoned
	}

	card := e.queue[e.index]
	now := e.clock.Now()

	res := leitner.Transition(card.Box, leitner.OutcomeOf(isCorrect), e.boxes, now)
	if res.Fallback {
		e.logger.Warn("card references unknown box, treated as lowest",
			"card_id", card.ID, "box", card.Box, "next_box", res.NextBox)
	}

	upd := models.CardUpdate{
		Box:            res.NextBox,
		NextReview:     res.NextReviewAt,
		LastReviewed:   now,
		Mistake:        !isCorrect,
		CorrectCount:   card.CorrectCount,
		IncorrectCount: card.IncorrectCount,
	}
	if isCorrect {
		upd.CorrectCount++
	} else {
		upd.IncorrectCount++
	}

	if _, err := e.store.Update(ctx, card.ID, upd); err != nil {
		e.logger.Error("card update failed", "card_id", card.ID, "error", err)
		return &WriteError{CardID: card.ID, Err: err}
	}

	// Refresh every copy of this card so a repeat later in the queue starts
	// from the box just written.
	for i := range e.queue {
		if e.queue[i].ID == card.ID {
			e.queue[i] = upd.Apply(e.queue[i])
		}
	}

	if isCorrect {
		e.stats.Correct++
	} else {
		e.stats.Incorrect++
		if _, seen := e.missedIDs[card.ID]; !seen {
			e.missedIDs[card.ID] = struct{}{}
			e.missed = append(e.missed, e.queue[e.index])
		}
	}

	e.emit(ctx, models.OutcomeEvent{
		SessionID:    e.sessionID,
		CardID:       card.ID,
		IsCorrect:    isCorrect,
		PreviousBox:  card.Box,
		NextBox:      res.NextBox,
		NextReviewAt: res.NextReviewAt,
		ReviewedAt:   now,
	})

	if e.index == len(e.queue)-1 {
		e.index = len(e.queue)
		e.state = Completed
		e.logger.Info("review session completed",
			"session_id", e.sessionID, "correct", e.stats.Correct,
			"incorrect", e.stats.Incorrect, "missed", len(e.missed))
	} else {
		e.index++
	}
	return nil
}

func (e *Engine) emit(ctx context.Context, ev models.OutcomeEvent) {
	for _, s := range e.sinks {
		if err := s.RecordOutcome(ctx, ev); err != nil {
			e.logger.Warn("outcome sink failed", "card_id", ev.CardID, "error", err)
		}
	}
}

// Reset restarts the session over the same queue
func (e *Engine) Reset() {
	e.start(e.queue)
}

// ResetQueue restarts the session over a new queue
func (e *Engine) ResetQueue(q []models.Card) {
	e.start(q)
}

// SetSessionID changes the session ID attached to future events
func (e *Engine) SetSessionID(id int64) {
	e.sessionID = id
}

// Abandon ends the session early. Outcomes already submitted stay persisted.
func (e *Engine) Abandon() {
	if e.state == InProgress {
		e.state = Abandoned
		e.logger.Info("review session abandoned", "session_id", e.sessionID, "position", e.index)
	}
}

// ReplayQueue builds the queue of cards missed in this session, in first-miss order
func (e *Engine) ReplayQueue(b *queue.Builder) []models.Card {
	return b.Build(nil, queue.Request{Mode: queue.ModeReplay, Missed: e.missed}, e.clock.Now())
}

// ProgressPercent returns how far through the queue the session is
func (e *Engine) ProgressPercent() float64 {
	if len(e.queue) == 0 {
		return 0
	}
	return float64(e.index) / float64(len(e.queue)) * 100
}

// Stats returns the outcome counts so far
func (e *Engine) Stats() Stats { return e.stats }

// Missed returns the cards answered incorrectly, once each, in first-miss order
func (e *Engine) Missed() []models.Card {
	out := make([]models.Card, len(e.missed))
	copy(out, e.missed)
	return out
}

func (e *Engine) State() State { return e.state }

func (e *Engine) Completed() bool { return e.state == Completed }

func (e *Engine) Index() int { return e.index }

func (e *Engine) Len() int { return len(e.queue) }

func (e *Engine) SessionID() int64 { return e.sessionID }

func (e *Engine) StartedAt() time.Time { return e.startedAt }

// Boxes returns the configuration snapshot the session schedules with
func (e *Engine) Boxes() models.BoxConfiguration { return e.boxes.Clone() }
