package queue

import (
	"math/rand/v2"
	"sort"
	"strings"
	"testing"
	"time"

	"inkflow/internal/models"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func card(id string, nextReview time.Time, mistake bool) models.Card {
	return models.Card{ID: id, Box: 1, NextReview: nextReview, Mistake: mistake}
}

func sampleCards() []models.Card {
	return []models.Card{
		card("a", now.Add(-48*time.Hour), false),
		card("b", now, true),
		card("c", now.Add(time.Hour), true),
		card("d", now.Add(-time.Minute), false),
		card("e", now.Add(72*time.Hour), false),
	}
}

func ids(cards []models.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func sortedIDs(cards []models.Card) string {
	out := ids(cards)
	sort.Strings(out)
	return strings.Join(out, ",")
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{input: "", want: ModeDue},
		{input: "due", want: ModeDue},
		{input: "Mistakes", want: ModeMistakes},
		{input: "card", want: ModeSingleCard},
		{input: "replay", want: ModeReplay},
		{input: "weekly", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildSelection(t *testing.T) {
	b := NewBuilder(rand.NewPCG(7, 7))
	cards := sampleCards()

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{name: "due", req: Request{Mode: ModeDue}, want: "a,b,d"},
		{name: "mistakes ignore due date", req: Request{Mode: ModeMistakes}, want: "b,c"},
		{name: "single card not yet due", req: Request{Mode: ModeSingleCard, CardID: "e"}, want: "e"},
		{name: "single card missing", req: Request{Mode: ModeSingleCard, CardID: "zzz"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Build(cards, tt.req, now)
			if sortedIDs(got) != tt.want {
				t.Errorf("Build() = %v, want %v", sortedIDs(got), tt.want)
			}
		})
	}
}

func TestBuildReplayKeepsFirstMissOrder(t *testing.T) {
	b := NewBuilder(rand.NewPCG(1, 1))
	missed := []models.Card{card("z", now, true), card("m", now, true), card("a", now, true)}

	for i := 0; i < 20; i++ {
		got := b.Build(sampleCards(), Request{Mode: ModeReplay, Missed: missed}, now)
		if strings.Join(ids(got), ",") != "z,m,a" {
			t.Fatalf("replay order = %v, want z,m,a", ids(got))
		}
	}

	got := b.Build(nil, Request{Mode: ModeReplay, Missed: missed}, now)
	got[0].ID = "changed"
	if missed[0].ID != "z" {
		t.Error("replay queue must not alias the missed slice")
	}
}

func TestBuildEmptyInput(t *testing.T) {
	b := NewBuilder(nil)
	for _, mode := range []Mode{ModeDue, ModeMistakes, ModeSingleCard, ModeReplay} {
		got := b.Build(nil, Request{Mode: mode}, now)
		if got == nil || len(got) != 0 {
			t.Errorf("mode %v: Build(nil) = %v, want empty non-nil queue", mode, got)
		}
	}
}

func TestBuildDoesNotReorderInput(t *testing.T) {
	b := NewBuilder(rand.NewPCG(3, 9))
	cards := sampleCards()
	b.Build(cards, Request{Mode: ModeDue}, now)
	if strings.Join(ids(cards), ",") != "a,b,c,d,e" {
		t.Errorf("input reordered: %v", ids(cards))
	}
}

func TestBuildShuffleIsUniform(t *testing.T) {
	b := NewBuilder(rand.NewPCG(42, 1024))
	cards := []models.Card{card("x", now, false), card("y", now, false), card("z", now, false)}

	const trials = 60000
	counts := make(map[string]int)
	for i := 0; i < trials; i++ {
		counts[strings.Join(ids(b.Build(cards, Request{Mode: ModeDue}, now)), "")]++
	}

	if len(counts) != 6 {
		t.Fatalf("saw %d permutations, want 6: %v", len(counts), counts)
	}
	expected := trials / 6
	for perm, n := range counts {
		if n < expected*95/100 || n > expected*105/100 {
			t.Errorf("permutation %s seen %d times, want about %d", perm, n, expected)
		}
	}
}

func TestDue(t *testing.T) {
	got := Due(sampleCards(), now)
	if strings.Join(ids(got), ",") != "a,b,d" {
		t.Errorf("Due() = %v, want a,b,d in input order", ids(got))
	}
}
