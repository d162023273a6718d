package scoring

import (
	"testing"

	"github.com/a220prep/a220prep/internal/model"
)

func singleQuestion(correct string) model.Question {
	return model.Question{
		Code:    "01GEN01",
		Type:    model.TypeSingle,
		Correct: []string{correct},
	}
}

func multiQuestion(correct ...string) model.Question {
	return model.Question{
		Code:    "02AIR01",
		Type:    model.TypeMultiple,
		Correct: correct,
	}
}

func TestIsCorrectSingle(t *testing.T) {
	q := singleQuestion("b")
	tests := []struct {
		name     string
		selected []string
		want     bool
	}{
		{"matching letter", []string{"b"}, true},
		{"wrong letter", []string{"a"}, false},
		{"no selection", nil, false},
		{"empty selection", []string{}, false},
		{"extra letter", []string{"b", "a"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCorrect(q, tt.selected); got != tt.want {
				t.Errorf("IsCorrect(%v) = %v, want %v", tt.selected, got, tt.want)
			}
		})
	}
}

func TestIsCorrectMultiple(t *testing.T) {
	q := multiQuestion("a", "c")
	tests := []struct {
		name     string
		selected []string
		want     bool
	}{
		{"exact match", []string{"a", "c"}, true},
		{"order independent", []string{"c", "a"}, true},
		{"partial", []string{"a"}, false},
		{"superset", []string{"a", "c", "b"}, false},
		{"disjoint", []string{"b", "d"}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCorrect(q, tt.selected); got != tt.want {
				t.Errorf("IsCorrect(%v) = %v, want %v", tt.selected, got, tt.want)
			}
		})
	}
}

func TestScoreDefaultsChapter(t *testing.T) {
	r := Score(singleQuestion("b"), []string{"b"})
	if !r.IsCorrect {
		t.Error("expected correct result")
	}
	if r.Chapter != "Unknown" {
		t.Errorf("expected chapter Unknown, got %q", r.Chapter)
	}

	q := singleQuestion("b")
	q.Chapter = "Electrical"
	r = Score(q, nil)
	if r.IsCorrect {
		t.Error("expected incorrect result for empty selection")
	}
	if r.Chapter != "Electrical" {
		t.Errorf("expected chapter Electrical, got %q", r.Chapter)
	}
	if r.SelectedAnswers == nil {
		t.Error("expected non-nil selectedAnswers for persisted shape")
	}
}

func TestAggregate(t *testing.T) {
	results := []model.QuestionResult{
		{IsCorrect: true},
		{IsCorrect: true},
		{IsCorrect: false},
	}
	s := Aggregate(results)
	if s.CorrectCount != 2 || s.TotalCount != 3 {
		t.Fatalf("expected 2/3, got %d/%d", s.CorrectCount, s.TotalCount)
	}
	if s.Score != 67 {
		t.Errorf("expected score 67, got %d", s.Score)
	}
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	if s.Score != 0 || s.CorrectCount != 0 || s.TotalCount != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
}

func TestByChapter(t *testing.T) {
	results := []model.QuestionResult{
		{Chapter: "Electrical", IsCorrect: true},
		{Chapter: "Electrical", IsCorrect: false},
		{Chapter: "Hydraulics", IsCorrect: true},
		{IsCorrect: false},
	}
	stats := ByChapter(results)
	if len(stats) != 3 {
		t.Fatalf("expected 3 chapters, got %d", len(stats))
	}
	if s := stats["Electrical"]; s.Correct != 1 || s.Total != 2 || s.Percentage != 50 {
		t.Errorf("Electrical: unexpected stats %+v", s)
	}
	if s := stats["Hydraulics"]; s.Correct != 1 || s.Total != 1 || s.Percentage != 100 {
		t.Errorf("Hydraulics: unexpected stats %+v", s)
	}
	if s := stats["Unknown"]; s.Correct != 0 || s.Total != 1 || s.Percentage != 0 {
		t.Errorf("Unknown: unexpected stats %+v", s)
	}
}
