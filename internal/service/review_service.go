package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inkflow/internal/clock"
	"inkflow/internal/logging"
	"inkflow/internal/models"
	"inkflow/internal/queue"
	"inkflow/internal/session"
)

var (
	// ErrEmptyGuess is returned when a typed guess is blank
	ErrEmptyGuess = errors.New("guess is empty")
	// ErrSessionNotCompleted is returned by operations that need a finished pass
	ErrSessionNotCompleted = errors.New("review session is not completed yet")
)

// ReviewService starts review sessions and keeps their persisted summaries up to date
type ReviewService struct {
	cards    CardStore
	boxes    BoxStore
	sessions SessionStore
	clock    clock.Clock
	builder  *queue.Builder
	logger   *slog.Logger
}

// NewReviewService creates a new review service
func NewReviewService(cards CardStore, boxes BoxStore, sessions SessionStore, clk clock.Clock, builder *queue.Builder, logger *slog.Logger) *ReviewService {
	if clk == nil {
		clk = clock.System()
	}
	if builder == nil {
		builder = queue.NewBuilder(nil)
	}
	return &ReviewService{
		cards:    cards,
		boxes:    boxes,
		sessions: sessions,
		clock:    clk,
		builder:  builder,
		logger:   logging.OrDiscard(logger),
	}
}

// Review is one running review session
type Review struct {
	svc    *ReviewService
	userID string
	mode   queue.Mode
	engine *session.Engine
	record *models.ReviewSession
	saved  bool
}

// Start snapshots the user's box configuration, builds the queue for req and
// opens a session over it. An empty queue yields a Review for which Empty is true
// and no session row is written.
func (s *ReviewService) Start(ctx context.Context, userID string, req queue.Request) (*Review, error) {
	boxes, err := s.boxes.LoadBoxes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load box configuration: %w", err)
	}
	cards, err := s.cards.FetchAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cards: %w", err)
	}

	q := s.builder.Build(cards, req, s.clock.Now())
	r := &Review{svc: s, userID: userID, mode: req.Mode}
	r.engine = session.NewEngine(q, boxes, s.cards, s.clock,
		session.WithLogger(s.logger),
		session.WithSink(s.sessions),
		session.WithSink(session.LogSink{Logger: s.logger}),
	)

	if len(q) == 0 {
		s.logger.Info("nothing to review", "user_id", userID, "mode", req.Mode.String())
		return r, nil
	}
	rec, err := r.createRecord(ctx, req.Mode, len(q), r.engine.StartedAt())
	if err != nil {
		return nil, err
	}
	r.attach(rec, req.Mode)
	return r, nil
}

func (r *Review) createRecord(ctx context.Context, mode queue.Mode, total int, startedAt time.Time) (*models.ReviewSession, error) {
	rec, err := r.svc.sessions.CreateSession(ctx, r.userID, mode.String(), total, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create review session: %w", err)
	}
	return rec, nil
}

func (r *Review) attach(rec *models.ReviewSession, mode queue.Mode) {
	r.record = rec
	r.saved = false
	r.mode = mode
	r.engine.SetSessionID(rec.ID)
	r.svc.logger.Info("review session started", "session_id", rec.ID, "user_id", r.userID, "mode", mode.String(), "cards", rec.TotalCards)
}

// Empty reports whether there was nothing to review
func (r *Review) Empty() bool { return r.engine.Len() == 0 }

// Engine exposes the underlying session state machine
func (r *Review) Engine() *session.Engine { return r.engine }

// Record returns the persisted session row, or nil when the queue is empty
func (r *Review) Record() *models.ReviewSession { return r.record }

// Mode returns the mode the current queue was built with
func (r *Review) Mode() queue.Mode { return r.mode }

// CurrentCard returns the card awaiting an outcome
func (r *Review) CurrentCard() (models.Card, bool) { return r.engine.CurrentCard() }

// Submit records the outcome for the current card. When the session completes
// its summary is written. A failed summary write is logged rather than returned
// because every card outcome is already stored; SummarySaved reports it and
// SaveSummary retries it.
func (r *Review) Submit(ctx context.Context, isCorrect bool) error {
	if err := r.engine.SubmitOutcome(ctx, isCorrect); err != nil {
		return err
	}
	if r.engine.Completed() {
		if err := r.SaveSummary(ctx); err != nil {
			r.svc.logger.Error("failed to save session summary", "session_id", r.record.ID, "error", err)
		}
	}
	return nil
}

// SaveSummary writes the completed session's totals. It is a no-op when there
// is no session row or the summary is already stored.
func (r *Review) SaveSummary(ctx context.Context) error {
	if r.saved || r.record == nil {
		return nil
	}
	if !r.engine.Completed() {
		return ErrSessionNotCompleted
	}
	now := r.svc.clock.Now()
	stats := r.engine.Stats()
	duration := int(now.Sub(r.engine.StartedAt()).Seconds())
	if err := r.svc.sessions.CompleteSession(ctx, r.record.ID, now, stats.Correct, stats.Incorrect, duration); err != nil {
		return fmt.Errorf("failed to save session summary: %w", err)
	}
	r.saved = true
	return nil
}

// SummarySaved reports whether the current pass has nothing left to persist
func (r *Review) SummarySaved() bool {
	return r.saved || r.record == nil
}

// ReplayMissed restarts the session over the cards missed in the pass just
// finished, in the order they were first missed. Replayed outcomes are written
// like any other review.
//
// The finished pass's summary and the replay's session row are both stored
// before the engine switches queues, so on error the review is unchanged and
// ReplayMissed can be called again.
func (r *Review) ReplayMissed(ctx context.Context) error {
	if !r.engine.Completed() {
		return ErrSessionNotCompleted
	}
	if err := r.SaveSummary(ctx); err != nil {
		return err
	}

	q := r.engine.ReplayQueue(r.svc.builder)
	if len(q) == 0 {
		r.engine.ResetQueue(q)
		r.record = nil
		r.mode = queue.ModeReplay
		return nil
	}

	rec, err := r.createRecord(ctx, queue.ModeReplay, len(q), r.svc.clock.Now())
	if err != nil {
		return err
	}
	r.engine.ResetQueue(q)
	r.attach(rec, queue.ModeReplay)
	return nil
}

// Abandon ends the session early. The summary row stays incomplete.
func (r *Review) Abandon() {
	r.engine.Abandon()
}

// CheckGuess compares a typed guess to the card's character, ignoring case and
// surrounding whitespace
func CheckGuess(card models.Card, guess string) (bool, error) {
	g := strings.ToLower(strings.TrimSpace(guess))
	if g == "" {
		return false, ErrEmptyGuess
	}
	return g == strings.ToLower(strings.TrimSpace(card.CorrectChar)), nil
}
