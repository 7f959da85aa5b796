package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"inkflow/internal/models"
	"inkflow/internal/service"
	"inkflow/internal/session"
)

// errQuit ends an interactive review early
var errQuit = errors.New("review abandoned")

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p *prompter) ask(format string, args ...interface{}) (string, error) {
	fmt.Fprintf(p.out, format, args...)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// runReview walks the user through the review and offers a replay of missed
// cards after each pass
func runReview(ctx context.Context, r *service.Review, in io.Reader, out io.Writer) error {
	p := &prompter{in: bufio.NewScanner(in), out: out}

	if r.Empty() {
		fmt.Fprintln(out, "Nothing to review. All caught up!")
		return nil
	}

	for {
		if err := reviewPass(ctx, r, p); err != nil {
			if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
				r.Abandon()
				fmt.Fprintln(out, "\nReview stopped. Your answers so far are saved.")
				return nil
			}
			return err
		}

		e := r.Engine()
		stats := e.Stats()
		fmt.Fprintf(out, "\nSession complete: %d correct, %d incorrect\n", stats.Correct, stats.Incorrect)
		if !r.SummarySaved() {
			if err := withRetry(p, "the session summary", func() error { return r.SaveSummary(ctx) }); err != nil {
				return quitOr(err, out, "Summary not saved. Your answers are stored.")
			}
		}

		missed := e.Missed()
		if len(missed) == 0 {
			return nil
		}
		answer, err := p.ask("Replay %d missed card(s)? [y/N] ", len(missed))
		if err != nil || !strings.EqualFold(answer, "y") {
			return nil
		}
		if err := withRetry(p, "the replay session", func() error { return r.ReplayMissed(ctx) }); err != nil {
			return quitOr(err, out, "Replay skipped.")
		}
	}
}

func reviewPass(ctx context.Context, r *service.Review, p *prompter) error {
	e := r.Engine()
	for !e.Completed() {
		card, _ := r.CurrentCard()
		fmt.Fprintf(p.out, "\n[%d/%d %.0f%%] box %d", e.Index()+1, e.Len(), e.ProgressPercent(), card.Box)
		if card.ImageURL != "" {
			fmt.Fprintf(p.out, "  %s", card.ImageURL)
		}
		if tags := card.DisplayTags(); len(tags) > 0 {
			fmt.Fprintf(p.out, "  (%s)", strings.Join(tags, ", "))
		}
		fmt.Fprintln(p.out)

		isCorrect, err := askOutcome(card, p)
		if err != nil {
			return err
		}
		if err := submitWithRetry(ctx, r, isCorrect, p); err != nil {
			return err
		}
	}
	return nil
}

func askOutcome(card models.Card, p *prompter) (bool, error) {
	guess, err := p.ask("Type the character (Enter to reveal, q to quit): ")
	if err != nil {
		return false, err
	}
	if guess == "q" {
		return false, errQuit
	}
	if guess != "" {
		ok, _ := service.CheckGuess(card, guess)
		if ok {
			fmt.Fprintf(p.out, "Correct! It is %q\n", card.CorrectChar)
		} else {
			fmt.Fprintf(p.out, "Not quite: you wrote %q, it is %q\n", guess, card.CorrectChar)
		}
		return ok, nil
	}

	fmt.Fprintf(p.out, "It is %q\n", card.CorrectChar)
	for {
		answer, err := p.ask("Did you get it right? [y/n/q] ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		case "q":
			return false, errQuit
		}
	}
}

// submitWithRetry submits the outcome and, when the card write fails, lets the
// user retry the same outcome
func submitWithRetry(ctx context.Context, r *service.Review, isCorrect bool, p *prompter) error {
	for {
		err := r.Submit(ctx, isCorrect)
		if err == nil || !errors.Is(err, session.ErrPersistence) {
			return err
		}
		if err := askRetry(p, "this answer", err); err != nil {
			return err
		}
	}
}

// withRetry runs fn until it succeeds or the user declines another attempt
func withRetry(p *prompter, what string, fn func() error) error {
	for {
		err := fn()
		if err == nil {
			return nil
		}
		if err := askRetry(p, what, err); err != nil {
			return err
		}
	}
}

func askRetry(p *prompter, what string, cause error) error {
	fmt.Fprintf(p.out, "Could not save %s: %v\n", what, cause)
	answer, err := p.ask("Retry? [Y/n] ")
	if err != nil {
		return err
	}
	if strings.EqualFold(answer, "n") {
		return errQuit
	}
	return nil
}

// quitOr ends the review quietly when the user gave up, and returns err otherwise
func quitOr(err error, out io.Writer, msg string) error {
	if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
		fmt.Fprintln(out, msg)
		return nil
	}
	return err
}

func printOverview(out io.Writer, ov *service.Overview) {
	fmt.Fprintf(out, "Cards:     %d (%d mastered, %d due)\n", ov.TotalCards, ov.MasteredCards, ov.DueNow)
	fmt.Fprintf(out, "Accuracy:  %d%%\n", ov.Accuracy)
	fmt.Fprintf(out, "Streak:    %d day(s)\n", ov.Streak)
	fmt.Fprintf(out, "Reviewed:  %d card(s) in total\n", ov.TotalReviews)

	fmt.Fprintln(out, "\nBoxes:")
	for _, bc := range ov.BoxDistribution {
		fmt.Fprintf(out, "  %-12s %d\n", bc.Box.Name, bc.Count)
	}

	if len(ov.Confused) > 0 {
		fmt.Fprintln(out, "\nMost confused:")
		for _, c := range ov.Confused {
			fmt.Fprintf(out, "  %q  %d of %d wrong\n", c.Char, c.Errors, c.Total)
		}
	}

	if len(ov.Upcoming) > 0 {
		fmt.Fprintln(out, "\nNext up:")
		for _, c := range ov.Upcoming {
			fmt.Fprintf(out, "  %q  due %s\n", c.CorrectChar, c.NextReview.Local().Format("Jan 2 15:04"))
		}
	}
}

func printSessions(out io.Writer, sessions []models.ReviewSession) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No review sessions yet")
		return
	}
	for _, s := range sessions {
		status := "incomplete"
		if s.CompletedAt != nil {
			status = fmt.Sprintf("%d/%d correct in %ds", s.CorrectCount, s.CardsReviewed, s.DurationSeconds)
		}
		fmt.Fprintf(out, "%5d  %s  %-8s %2d card(s)  %s\n",
			s.ID, s.StartedAt.Local().Format("2006-01-02 15:04"), s.Mode, s.TotalCards, status)
	}
}

func printEvents(out io.Writer, s *models.ReviewSession, events []models.OutcomeEvent) {
	fmt.Fprintf(out, "Session %d (%s), %d answer(s)\n", s.ID, s.Mode, len(events))
	for _, ev := range events {
		mark := "x"
		if ev.IsCorrect {
			mark = "ok"
		}
		fmt.Fprintf(out, "  %-2s  %s  box %d -> %d  next %s\n",
			mark, ev.CardID, ev.PreviousBox, ev.NextBox, ev.NextReviewAt.Local().Format("Jan 2 15:04"))
	}
}
