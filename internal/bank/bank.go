// Package bank loads the static question bank and its companion resources
// (explanations, PDF page references) and flattens them into addressable
// question records. Loading is best-effort: absent or malformed inputs
// degrade to empty data, never to an error.
package bank

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/a220prep/a220prep/internal/model"
)

// Chapter is one named grouping of questions in the bank resource.
type Chapter struct {
	Name           string           `json:"name"`
	Questions      []model.Question `json:"questions"`
	TotalQuestions int              `json:"totalQuestions,omitempty"`
}

// Bank is the static question bank resource.
type Bank struct {
	Quizzes        []Chapter `json:"quizzes"`
	TimeLimit      int       `json:"timeLimit"` // minutes
	PassingGrade   int       `json:"passingGrade"`
	TotalQuestions int       `json:"totalQuestions"`
}

// Load reads and parses the bank file at path. An unreadable or malformed
// file yields an empty bank.
func Load(path string) *Bank {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("question bank unavailable", "path", path, "error", err)
		return &Bank{}
	}
	return Parse(data)
}

// Parse decodes bank JSON, degrading to an empty bank on malformed input.
func Parse(data []byte) *Bank {
	var b Bank
	if err := json.Unmarshal(data, &b); err != nil {
		slog.Warn("malformed question bank", "error", err)
		return &Bank{}
	}
	return &b
}

// Count returns the number of questions actually present across all chapters.
func (b *Bank) Count() int {
	n := 0
	for _, ch := range b.Quizzes {
		n += len(ch.Questions)
	}
	return n
}

// Chapter returns the named chapter, if present.
func (b *Bank) Chapter(name string) (Chapter, bool) {
	for _, ch := range b.Quizzes {
		if ch.Name == name {
			return ch, true
		}
	}
	return Chapter{}, false
}

// Stamped returns the chapter's questions with their synthetic
// "{chapterName}-{indexWithinChapter}" identifiers and chapter name applied.
func (c Chapter) Stamped() []model.Question {
	out := make([]model.Question, len(c.Questions))
	for i, q := range c.Questions {
		q.ID = fmt.Sprintf("%s-%d", c.Name, i)
		q.Chapter = c.Name
		out[i] = q
	}
	return out
}

// AllQuestions flattens every chapter's question list, stamping each question
// with its synthetic identifier and chapter name.
func (b *Bank) AllQuestions() []model.Question {
	var all []model.Question
	for _, ch := range b.Quizzes {
		all = append(all, ch.Stamped()...)
	}
	return all
}
