// Package queue selects and orders the cards for a review session.
package queue

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"inkflow/internal/leitner"
	"inkflow/internal/models"
)

// Mode selects which cards go into a queue
type Mode int

const (
	// ModeDue queues every card whose review time has come, shuffled
	ModeDue Mode = iota
	// ModeSingleCard queues the one card matching Request.CardID
	ModeSingleCard
	// ModeMistakes queues every card marked as a mistake, shuffled
	ModeMistakes
	// ModeReplay queues Request.Missed exactly as given
	ModeReplay
)

func (m Mode) String() string {
	switch m {
	case ModeSingleCard:
		return "card"
	case ModeMistakes:
		return "mistakes"
	case ModeReplay:
		return "replay"
	default:
		return "due"
	}
}

// ParseMode converts a mode name to a Mode. The empty string means ModeDue.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "due":
		return ModeDue, nil
	case "card", "single":
		return ModeSingleCard, nil
	case "mistakes", "mistake":
		return ModeMistakes, nil
	case "replay":
		return ModeReplay, nil
	default:
		return ModeDue, fmt.Errorf("unknown review mode: %q", s)
	}
}

// Request describes the queue to build
type Request struct {
	Mode   Mode
	CardID string
	// Missed is the first-miss ordered card list of a finished session (ModeReplay)
	Missed []models.Card
}

// Builder builds review queues. It is safe for concurrent use.
type Builder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewBuilder creates a builder drawing shuffles from src. A nil src uses a
// randomly seeded source.
func NewBuilder(src rand.Source) *Builder {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Builder{rng: rand.New(src)}
}

// Build returns a new queue for req. It never fails; no matching cards gives an
// empty queue.
func (b *Builder) Build(cards []models.Card, req Request, now time.Time) []models.Card {
	switch req.Mode {
	case ModeSingleCard:
		for _, c := range cards {
			if c.ID == req.CardID {
				return []models.Card{c}
			}
		}
		return []models.Card{}

	case ModeMistakes:
		return b.shuffled(filter(cards, func(c models.Card) bool {
			return c.Mistake
		}))

	case ModeReplay:
		out := make([]models.Card, len(req.Missed))
		copy(out, req.Missed)
		return out

	default:
		return b.shuffled(filter(cards, func(c models.Card) bool {
			return leitner.IsDue(c.NextReview, now)
		}))
	}
}

// Due returns the cards due at now in their original order
func Due(cards []models.Card, now time.Time) []models.Card {
	return filter(cards, func(c models.Card) bool {
		return leitner.IsDue(c.NextReview, now)
	})
}

// shuffled permutes cards in place with a Fisher-Yates shuffle
func (b *Builder) shuffled(cards []models.Card) []models.Card {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards
}

func filter(cards []models.Card, keep func(models.Card) bool) []models.Card {
	out := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
