package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"inkflow/internal/clock"
	"inkflow/internal/leitner"
	"inkflow/internal/logging"
	"inkflow/internal/models"
)

// CardLister returns a user's cards
type CardLister interface {
	FetchAll(ctx context.Context, userID string) ([]models.Card, error)
}

// Window is the range of hours, inclusive, in which reminders may be sent.
// A window whose start is after its end wraps past midnight.
type Window struct {
	StartHour int
	EndHour   int
}

// Contains reports whether hour falls inside the window
func (w Window) Contains(hour int) bool {
	if w.StartHour <= w.EndHour {
		return hour >= w.StartHour && hour <= w.EndHour
	}
	return hour >= w.StartHour || hour <= w.EndHour
}

// Checker counts due cards and notifies recipients that have any
type Checker struct {
	cards      CardLister
	notifier   Notifier
	recipients []Recipient
	window     Window
	clock      clock.Clock
	loc        *time.Location
	logger     *slog.Logger
}

// NewChecker creates a checker. Hours are read in loc.
func NewChecker(cards CardLister, notifier Notifier, recipients []Recipient, window Window, clk clock.Clock, loc *time.Location, logger *slog.Logger) *Checker {
	if clk == nil {
		clk = clock.System()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Checker{
		cards:      cards,
		notifier:   notifier,
		recipients: recipients,
		window:     window,
		clock:      clk,
		loc:        loc,
		logger:     logging.OrDiscard(logger),
	}
}

// Check notifies every recipient with due cards and returns how many were notified.
// Outside the notification window it does nothing. A failure for one recipient
// does not stop the others; all failures are returned joined.
func (c *Checker) Check(ctx context.Context) (int, error) {
	now := c.clock.Now()
	if hour := now.In(c.loc).Hour(); !c.window.Contains(hour) {
		c.logger.Debug("outside notification hours, skipping reminders",
			"hour", hour, "start", c.window.StartHour, "end", c.window.EndHour)
		return 0, nil
	}

	var errs []error
	sent := 0
	for _, r := range c.recipients {
		due, err := c.DueCount(ctx, r.UserID)
		if err != nil {
			errs = append(errs, fmt.Errorf("count due cards for %s: %w", r.UserID, err))
			continue
		}
		if due == 0 {
			continue
		}
		if err := c.notifier.NotifyDue(ctx, r, due); err != nil {
			errs = append(errs, err)
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

// DueCount returns how many of the user's cards are due now
func (c *Checker) DueCount(ctx context.Context, userID string) (int, error) {
	cards, err := c.cards.FetchAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	now := c.clock.Now()
	n := 0
	for _, card := range cards {
		if leitner.IsDue(card.NextReview, now) {
			n++
		}
	}
	return n, nil
}
