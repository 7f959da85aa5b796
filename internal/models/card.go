package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MistakeTag is the label the host application shows for cards that need reinforcement
const MistakeTag = "mistake"

// Tags is a list of free-form labels stored as a JSON array
type Tags []string

// Value implements driver.Valuer
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (t *Tags) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into Tags", src)
	}
	if len(raw) == 0 {
		*t = Tags{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}
	*t = out
	return nil
}

// Card is a single handwriting practice item
type Card struct {
	ID             string     `db:"id"`
	UserID         string     `db:"user_id"`
	ImageURL       string     `db:"image_url"`
	CorrectChar    string     `db:"correct_char"`
	ConfusedWith   Tags       `db:"confused_with"`
	Tags           Tags       `db:"tags"`
	Notes          string     `db:"notes"`
	Box            int        `db:"box"`
	NextReview     time.Time  `db:"next_review"`
	LastReviewed   *time.Time `db:"last_reviewed"`
	CorrectCount   int        `db:"correct_count"`
	IncorrectCount int        `db:"incorrect_count"`
	Mistake        bool       `db:"mistake"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// NewCard creates a card in the lowest configured box, due immediately
func NewCard(userID, correctChar, imageURL string, boxes BoxConfiguration, now time.Time) Card {
	box := 1
	if lowest, ok := boxes.Lowest(); ok {
		box = lowest.ID
	}
	return Card{
		ID:           uuid.NewString(),
		UserID:       userID,
		ImageURL:     imageURL,
		CorrectChar:  correctChar,
		ConfusedWith: Tags{},
		Tags:         Tags{},
		Box:          box,
		NextReview:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasTag reports whether the card carries tag. The mistake marker counts as a tag.
func (c Card) HasTag(tag string) bool {
	if tag == MistakeTag {
		return c.Mistake
	}
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// DisplayTags returns the labels shown to the user, including the mistake marker
func (c Card) DisplayTags() []string {
	out := make([]string, 0, len(c.Tags)+1)
	out = append(out, c.Tags...)
	if c.Mistake {
		out = append(out, MistakeTag)
	}
	return out
}

// CardUpdate holds the fields written after every review outcome
type CardUpdate struct {
	Box            int
	NextReview     time.Time
	LastReviewed   time.Time
	Mistake        bool
	CorrectCount   int
	IncorrectCount int
}

// Apply returns a copy of c with the update applied
func (u CardUpdate) Apply(c Card) Card {
	reviewed := u.LastReviewed
	c.Box = u.Box
	c.NextReview = u.NextReview
	c.LastReviewed = &reviewed
	c.Mistake = u.Mistake
	c.CorrectCount = u.CorrectCount
	c.IncorrectCount = u.IncorrectCount
	c.UpdatedAt = reviewed
	return c
}
