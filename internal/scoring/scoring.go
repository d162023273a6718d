// Package scoring decides question correctness and aggregates result logs.
package scoring

import (
	"math"

	"github.com/a220prep/a220prep/internal/model"
)

// unknownChapter is the grouping key for results without a chapter.
const unknownChapter = "Unknown"

// IsCorrect reports whether the selected letters exactly match the question's
// correct set: same size, every selection correct, every correct letter
// selected. An empty selection is never correct for a well-formed question.
func IsCorrect(q model.Question, selected []string) bool {
	if len(selected) != len(q.Correct) {
		return false
	}
	correct := make(map[string]bool, len(q.Correct))
	for _, c := range q.Correct {
		correct[c] = true
	}
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		if !correct[s] {
			return false
		}
		chosen[s] = true
	}
	for _, c := range q.Correct {
		if !chosen[c] {
			return false
		}
	}
	return true
}

// Score builds the immutable result record for one question.
func Score(q model.Question, selected []string) model.QuestionResult {
	chapter := q.Chapter
	if chapter == "" {
		chapter = unknownChapter
	}
	if selected == nil {
		selected = []string{}
	}
	return model.QuestionResult{
		Question:        q,
		SelectedAnswers: selected,
		IsCorrect:       IsCorrect(q, selected),
		Chapter:         chapter,
	}
}

// Aggregate reduces a result log to an overall summary. An empty log scores
// zero rather than dividing by zero.
func Aggregate(results []model.QuestionResult) model.Summary {
	s := model.Summary{TotalCount: len(results)}
	for _, r := range results {
		if r.IsCorrect {
			s.CorrectCount++
		}
	}
	if s.TotalCount > 0 {
		s.Score = int(math.Round(100 * float64(s.CorrectCount) / float64(s.TotalCount)))
	}
	return s
}

// ByChapter groups results by chapter and computes per-chapter percentages.
func ByChapter(results []model.QuestionResult) map[string]model.ChapterStats {
	stats := make(map[string]model.ChapterStats)
	for _, r := range results {
		chapter := r.Chapter
		if chapter == "" {
			chapter = unknownChapter
		}
		cs := stats[chapter]
		cs.Total++
		if r.IsCorrect {
			cs.Correct++
		}
		stats[chapter] = cs
	}
	for chapter, cs := range stats {
		cs.Percentage = int(math.Round(100 * float64(cs.Correct) / float64(cs.Total)))
		stats[chapter] = cs
	}
	return stats
}
