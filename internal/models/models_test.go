package models

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestBoxConfigurationOrdering(t *testing.T) {
	boxes := BoxConfiguration{
		{ID: 7, Name: "Weekly", IntervalDays: 7},
		{ID: 2, Name: "Daily", IntervalDays: 1},
		{ID: 4, Name: "Every few days", IntervalDays: 3},
	}

	if got, want := boxes.IDs(), []int{2, 4, 7}; !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
	if boxes[0].ID != 7 {
		t.Errorf("Sorted() must not reorder the receiver")
	}

	tests := []struct {
		id   int
		want int
	}{
		{id: 2, want: 0},
		{id: 4, want: 1},
		{id: 7, want: 2},
		{id: 5, want: -1},
	}
	for _, tt := range tests {
		if got := boxes.Rank(tt.id); got != tt.want {
			t.Errorf("Rank(%d) = %d, want %d", tt.id, got, tt.want)
		}
	}

	lowest, ok := boxes.Lowest()
	if !ok || lowest.ID != 2 {
		t.Errorf("Lowest() = %v, %v, want box 2", lowest, ok)
	}
	highest, ok := boxes.Highest()
	if !ok || highest.ID != 7 {
		t.Errorf("Highest() = %v, %v, want box 7", highest, ok)
	}

	if _, ok := (BoxConfiguration{}).Lowest(); ok {
		t.Error("Lowest() on an empty configuration should report false")
	}
}

func TestBoxConfigurationClone(t *testing.T) {
	boxes := DefaultBoxes()
	snapshot := boxes.Clone()
	boxes[0].IntervalDays = 99

	if snapshot[0].IntervalDays != 1 {
		t.Errorf("Clone() shares storage with the original")
	}
	if BoxConfiguration(nil).Clone() != nil {
		t.Errorf("Clone() of nil should be nil")
	}
}

func TestBoxConfigurationValidate(t *testing.T) {
	tests := []struct {
		name    string
		boxes   BoxConfiguration
		wantErr error
	}{
		{
			name:  "default boxes",
			boxes: DefaultBoxes(),
		},
		{
			name:  "zero interval",
			boxes: BoxConfiguration{{ID: 1, IntervalDays: 0}},
		},
		{
			name:    "empty",
			boxes:   BoxConfiguration{},
			wantErr: ErrEmptyConfiguration,
		},
		{
			name:    "duplicate id",
			boxes:   BoxConfiguration{{ID: 1, IntervalDays: 1}, {ID: 1, IntervalDays: 3}},
			wantErr: ErrDuplicateBox,
		},
		{
			name:    "negative interval",
			boxes:   BoxConfiguration{{ID: 1, IntervalDays: -1}},
			wantErr: ErrNegativeInterval,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.boxes.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTagsScan(t *testing.T) {
	tests := []struct {
		name    string
		src     interface{}
		want    Tags
		wantErr bool
	}{
		{name: "nil", src: nil, want: Tags{}},
		{name: "empty string", src: "", want: Tags{}},
		{name: "string", src: `["shape","stroke"]`, want: Tags{"shape", "stroke"}},
		{name: "bytes", src: []byte(`["b"]`), want: Tags{"b"}},
		{name: "invalid json", src: "not json", wantErr: true},
		{name: "unsupported type", src: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Tags
			err := got.Scan(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Scan() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Scan() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTagsValueNil(t *testing.T) {
	v, err := Tags(nil).Value()
	if err != nil {
		t.Fatal(err)
	}
	if v != "[]" {
		t.Errorf("Value() = %v, want []", v)
	}
}

func TestNewCard(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	c := NewCard("u1", "a", "/img/a.png", BoxConfiguration{{ID: 5}, {ID: 3}}, now)
	if c.ID == "" {
		t.Error("NewCard() should assign an ID")
	}
	if c.Box != 3 {
		t.Errorf("Box = %d, want the lowest box 3", c.Box)
	}
	if !c.NextReview.Equal(now) {
		t.Errorf("NextReview = %v, want %v", c.NextReview, now)
	}

	if c := NewCard("u1", "a", "", nil, now); c.Box != 1 {
		t.Errorf("Box = %d with no boxes, want 1", c.Box)
	}
}

func TestCardTags(t *testing.T) {
	c := Card{Tags: Tags{"Curve"}}
	if !c.HasTag("curve") {
		t.Error("HasTag() should ignore case")
	}
	if c.HasTag(MistakeTag) {
		t.Error("HasTag(mistake) should follow the Mistake flag")
	}
	if got := c.DisplayTags(); !reflect.DeepEqual(got, []string{"Curve"}) {
		t.Errorf("DisplayTags() = %v", got)
	}

	c.Mistake = true
	if !c.HasTag(MistakeTag) {
		t.Error("HasTag(mistake) should be true for a missed card")
	}
	if got := c.DisplayTags(); !reflect.DeepEqual(got, []string{"Curve", MistakeTag}) {
		t.Errorf("DisplayTags() = %v", got)
	}
}

func TestCardUpdateApply(t *testing.T) {
	reviewed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	orig := Card{ID: "c1", CorrectChar: "a", Box: 1, Mistake: true}
	upd := CardUpdate{
		Box:          2,
		NextReview:   reviewed.Add(72 * time.Hour),
		LastReviewed: reviewed,
		CorrectCount: 1,
	}

	got := upd.Apply(orig)
	if got.Box != 2 || got.Mistake || got.CorrectCount != 1 {
		t.Errorf("Apply() = %+v", got)
	}
	if got.LastReviewed == nil || !got.LastReviewed.Equal(reviewed) {
		t.Errorf("LastReviewed = %v, want %v", got.LastReviewed, reviewed)
	}
	if orig.Box != 1 {
		t.Error("Apply() must not modify its argument")
	}
}

func TestReviewSessionAccuracy(t *testing.T) {
	if got := (ReviewSession{}).Accuracy(); got != 0 {
		t.Errorf("Accuracy() = %v, want 0", got)
	}
	if got := (ReviewSession{CorrectCount: 3, IncorrectCount: 1}).Accuracy(); got != 75 {
		t.Errorf("Accuracy() = %v, want 75", got)
	}
}
