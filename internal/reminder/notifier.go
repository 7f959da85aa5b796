// Package reminder tells users when cards are waiting for review.
package reminder

import (
	"context"
	"log/slog"

	"inkflow/internal/logging"
)

// Recipient is a user who receives due-card reminders
type Recipient struct {
	UserID string
	Email  string
}

// Notifier delivers a reminder that dueCount cards are ready
type Notifier interface {
	NotifyDue(ctx context.Context, to Recipient, dueCount int) error
}

// LogNotifier writes reminders to the log. It is used when no mail sender is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logging.OrDiscard(logger)}
}

func (n *LogNotifier) NotifyDue(ctx context.Context, to Recipient, dueCount int) error {
	n.logger.InfoContext(ctx, "cards due for review", "user_id", to.UserID, "email", to.Email, "due", dueCount)
	return nil
}
