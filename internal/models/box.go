package models

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrEmptyConfiguration = errors.New("box configuration has no boxes")
	ErrDuplicateBox       = errors.New("duplicate box id")
	ErrNegativeInterval   = errors.New("box interval must not be negative")
)

// Box is one stage of mastery in the Leitner system
type Box struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	IntervalDays int    `json:"intervalDays"`
}

// BoxConfiguration is the user's set of boxes. Scheduling order is ascending ID,
// regardless of the order the boxes are stored in.
type BoxConfiguration []Box

// DefaultBoxes returns the 5-box schedule used when a user has not configured one
func DefaultBoxes() BoxConfiguration {
	return BoxConfiguration{
		{ID: 1, Name: "Box 1", IntervalDays: 1},
		{ID: 2, Name: "Box 2", IntervalDays: 3},
		{ID: 3, Name: "Box 3", IntervalDays: 7},
		{ID: 4, Name: "Box 4", IntervalDays: 14},
		{ID: 5, Name: "Box 5", IntervalDays: 30},
	}
}

// Clone returns an independent copy, used to snapshot the configuration for a session
func (c BoxConfiguration) Clone() BoxConfiguration {
	if c == nil {
		return nil
	}
	out := make(BoxConfiguration, len(c))
	copy(out, c)
	return out
}

// Sorted returns a copy ordered by ascending box ID
func (c BoxConfiguration) Sorted() BoxConfiguration {
	out := c.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// IDs returns the box IDs in ascending order
func (c BoxConfiguration) IDs() []int {
	sorted := c.Sorted()
	ids := make([]int, len(sorted))
	for i, b := range sorted {
		ids[i] = b.ID
	}
	return ids
}

// Find looks up a box by ID
func (c BoxConfiguration) Find(id int) (Box, bool) {
	for _, b := range c {
		if b.ID == id {
			return b, true
		}
	}
	return Box{}, false
}

// Rank returns the position of id in ascending ID order, or -1 if absent
func (c BoxConfiguration) Rank(id int) int {
	for i, boxID := range c.IDs() {
		if boxID == id {
			return i
		}
	}
	return -1
}

// Lowest returns the box with the smallest ID
func (c BoxConfiguration) Lowest() (Box, bool) {
	if len(c) == 0 {
		return Box{}, false
	}
	return c.Sorted()[0], true
}

// Highest returns the box with the largest ID
func (c BoxConfiguration) Highest() (Box, bool) {
	if len(c) == 0 {
		return Box{}, false
	}
	sorted := c.Sorted()
	return sorted[len(sorted)-1], true
}

// Validate checks the configuration invariants: non-empty, unique IDs and
// non-negative intervals
func (c BoxConfiguration) Validate() error {
	if len(c) == 0 {
		return ErrEmptyConfiguration
	}
	seen := make(map[int]struct{}, len(c))
	for _, b := range c {
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateBox, b.ID)
		}
		seen[b.ID] = struct{}{}
		if b.IntervalDays < 0 {
			return fmt.Errorf("%w: box %d has %d days", ErrNegativeInterval, b.ID, b.IntervalDays)
		}
	}
	return nil
}
