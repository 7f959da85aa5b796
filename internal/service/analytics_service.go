package service

import (
	"context"
	"math"
	"sort"
	"time"

	"inkflow/internal/clock"
	"inkflow/internal/leitner"
	"inkflow/internal/models"
)

const (
	activityDays  = 30
	confusedLimit = 10
	upcomingLimit = 3
	historyLimit  = 20
	earlyBoxRanks = 3
)

// BoxCount is the number of cards sitting in one box
type BoxCount struct {
	Box   models.Box
	Count int
}

// ConfusedCard is a card the user keeps getting wrong while it is still in an early box
type ConfusedCard struct {
	ID     string
	Char   string
	Errors int
	Total  int
}

// Overview summarises a user's progress
type Overview struct {
	TotalCards      int
	MasteredCards   int
	DueNow          int
	Accuracy        int
	Streak          int
	TotalReviews    int
	BoxDistribution []BoxCount
	Confused        []ConfusedCard
	Upcoming        []models.Card
	RecentSessions  []models.ReviewSession
	DailyActivity   []models.DailyActivity
}

// AnalyticsService computes progress statistics from cards and review history
type AnalyticsService struct {
	cards    CardStore
	boxes    BoxStore
	sessions SessionStore
	clock    clock.Clock
	loc      *time.Location
}

// NewAnalyticsService creates a new analytics service. Calendar days are taken in loc.
func NewAnalyticsService(cards CardStore, boxes BoxStore, sessions SessionStore, clk clock.Clock, loc *time.Location) *AnalyticsService {
	if clk == nil {
		clk = clock.System()
	}
	if loc == nil {
		loc = time.Local
	}
	return &AnalyticsService{cards: cards, boxes: boxes, sessions: sessions, clock: clk, loc: loc}
}

// Overview gathers the user's progress statistics
func (s *AnalyticsService) Overview(ctx context.Context, userID string) (*Overview, error) {
	boxes, err := s.boxes.LoadBoxes(ctx, userID)
	if err != nil {
		return nil, err
	}
	cards, err := s.cards.FetchAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListCompletedSince(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	ov := CardStats(cards, boxes, now)

	// newest first
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})
	dates := make([]time.Time, len(sessions))
	for i, sess := range sessions {
		dates[i] = sess.StartedAt
		ov.TotalReviews += sess.CardsReviewed
	}
	ov.Streak = Streak(dates, now, s.loc)
	ov.DailyActivity = DailyActivity(sessions, now, s.loc, activityDays)
	if len(sessions) > historyLimit {
		sessions = sessions[:historyLimit]
	}
	ov.RecentSessions = sessions
	return ov, nil
}

// CardStats computes the card-derived part of an Overview
func CardStats(cards []models.Card, boxes models.BoxConfiguration, now time.Time) *Overview {
	sorted := boxes.Sorted()
	ov := &Overview{
		TotalCards:      len(cards),
		BoxDistribution: make([]BoxCount, len(sorted)),
		Confused:        []ConfusedCard{},
		Upcoming:        []models.Card{},
	}
	for i, b := range sorted {
		ov.BoxDistribution[i].Box = b
	}

	highest, hasBoxes := boxes.Highest()
	var correct, incorrect int
	var due []models.Card

	for _, c := range cards {
		if hasBoxes && c.Box == highest.ID {
			ov.MasteredCards++
		}
		if leitner.IsDue(c.NextReview, now) {
			ov.DueNow++
			due = append(due, c)
		}
		correct += c.CorrectCount
		incorrect += c.IncorrectCount

		rank := boxes.Rank(c.Box)
		if len(ov.BoxDistribution) > 0 {
			// Cards in a box that no longer exists count toward the first box
			if rank < 0 {
				ov.BoxDistribution[0].Count++
			} else {
				ov.BoxDistribution[rank].Count++
			}
		}

		if c.IncorrectCount > 0 && rank < earlyBoxRanks {
			ov.Confused = append(ov.Confused, ConfusedCard{
				ID:     c.ID,
				Char:   c.CorrectChar,
				Errors: c.IncorrectCount,
				Total:  c.CorrectCount + c.IncorrectCount,
			})
		}
	}

	if correct+incorrect > 0 {
		ov.Accuracy = int(math.Round(float64(correct) / float64(correct+incorrect) * 100))
	}

	sort.SliceStable(ov.Confused, func(i, j int) bool {
		return ov.Confused[i].Errors > ov.Confused[j].Errors
	})
	if len(ov.Confused) > confusedLimit {
		ov.Confused = ov.Confused[:confusedLimit]
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextReview.Before(due[j].NextReview)
	})
	if len(due) > upcomingLimit {
		due = due[:upcomingLimit]
	}
	ov.Upcoming = append(ov.Upcoming, due...)
	return ov
}

// dayNumber counts calendar days in loc, so DST changes do not skew day gaps
func dayNumber(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// Streak counts consecutive calendar days with at least one session, ending
// today or yesterday. dates must be ordered newest first.
func Streak(dates []time.Time, now time.Time, loc *time.Location) int {
	if len(dates) == 0 {
		return 0
	}
	today := dayNumber(now, loc)
	last := dayNumber(dates[0], loc)
	if today-last > 1 {
		return 0
	}

	streak := 1
	for _, d := range dates[1:] {
		cur := dayNumber(d, loc)
		switch gap := last - cur; {
		case gap == 1:
			streak++
			last = cur
		case gap > 1:
			return streak
		}
	}
	return streak
}

// DailyActivity totals sessions per calendar day for the last days days, oldest first
func DailyActivity(sessions []models.ReviewSession, now time.Time, loc *time.Location, days int) []models.DailyActivity {
	out := make([]models.DailyActivity, days)
	index := make(map[int]int, days)
	today := now.In(loc)
	for i := 0; i < days; i++ {
		d := time.Date(today.Year(), today.Month(), today.Day()-(days-1-i), 0, 0, 0, 0, loc)
		out[i].Date = d
		index[dayNumber(d, loc)] = i
	}

	for _, s := range sessions {
		i, ok := index[dayNumber(s.StartedAt, loc)]
		if !ok {
			continue
		}
		out[i].CardsReviewed += s.CardsReviewed
		out[i].Correct += s.CorrectCount
		out[i].Incorrect += s.IncorrectCount
	}
	return out
}
