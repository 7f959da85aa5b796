package session

import (
	"context"
	"log/slog"

	"inkflow/internal/models"
)

// LogSink writes each outcome to a structured logger
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) RecordOutcome(ctx context.Context, ev models.OutcomeEvent) error {
	if s.Logger == nil {
		return nil
	}
	s.Logger.InfoContext(ctx, "review outcome",
		"session_id", ev.SessionID,
		"card_id", ev.CardID,
		"correct", ev.IsCorrect,
		"previous_box", ev.PreviousBox,
		"next_box", ev.NextBox,
		"next_review_at", ev.NextReviewAt)
	return nil
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(ctx context.Context, ev models.OutcomeEvent) error

func (f SinkFunc) RecordOutcome(ctx context.Context, ev models.OutcomeEvent) error {
	return f(ctx, ev)
}
