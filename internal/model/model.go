package model

// QuestionType distinguishes the two answer-matching rules.
type QuestionType string

const (
	// TypeSingle questions have exactly one correct letter and auto-confirm
	// on selection.
	TypeSingle QuestionType = "single"
	// TypeMultiple questions require an exact set match and an explicit
	// confirm step.
	TypeMultiple QuestionType = "multiple"
)

// Option is one answer choice of a question.
type Option struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// Question is a single bank question. Questions are created once at bank-load
// time and never mutated afterwards. The JSON tags match the persisted
// in-flight session schema and must not change.
type Question struct {
	Code    string       `json:"code"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Options []Option     `json:"options"`
	Correct []string     `json:"correct"`
	Images  []string     `json:"images,omitempty"`
	// ID is the synthetic "{chapter}-{index}" identifier stamped by the
	// bank adapter.
	ID      string `json:"questionId,omitempty"`
	Chapter string `json:"chapter,omitempty"`
}

// QuizSet is a fixed-size, named bundle of questions produced by the
// selection engine and consumed read-only by a session.
type QuizSet struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	// UniqueCount is how many of the set's questions are new coverage
	// rather than padding drawn from earlier sets. Display only.
	UniqueCount  int    `json:"uniqueCount"`
	IsLastQuiz   bool   `json:"isLastQuiz"`
	CoveredRange string `json:"coveredRange,omitempty"`
}

// QuestionResult is the finalized outcome of one question within an attempt.
// Created exactly once per question; immutable.
type QuestionResult struct {
	Question        Question `json:"question"`
	SelectedAnswers []string `json:"selectedAnswers"`
	IsCorrect       bool     `json:"isCorrect"`
	Chapter         string   `json:"chapter"`
}

// Summary aggregates a finished attempt.
type Summary struct {
	Score        int `json:"score"`
	CorrectCount int `json:"correctCount"`
	TotalCount   int `json:"totalCount"`
}

// ChapterStats is the per-chapter breakdown of a result log.
type ChapterStats struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// ChapterProgress is the durable best-score record for one practiced chapter.
// LastAttempt is milliseconds since the Unix epoch, matching the stored schema.
type ChapterProgress struct {
	BestScore   int   `json:"bestScore"`
	LastAttempt int64 `json:"lastAttempt"`
}
