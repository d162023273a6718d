package session

import (
	"time"

	"github.com/a220prep/a220prep/internal/model"
)

// Snapshot is the persisted shape of an in-flight attempt. Field names and
// value shapes must stay compatible with previously saved progress records,
// so timestamps are milliseconds since the Unix epoch and the phase is
// flattened to the showResult flag (the finish-confirmation prompt is
// deliberately not persisted; a resumed attempt reopens in the answering
// phase or on the revealed result).
type Snapshot struct {
	Questions            []model.Question       `json:"questions"`
	CurrentQuestionIndex int                    `json:"currentQuestionIndex"`
	SelectedAnswers      map[int][]string       `json:"selectedAnswers"`
	TimeRemaining        int                    `json:"timeRemaining"`
	StartTime            int64                  `json:"startTime"`
	ShowResult           bool                   `json:"showResult"`
	QuestionResults      []model.QuestionResult `json:"questionResults"`
	CurrentQuizID        *int                   `json:"currentQuizId"`
	CurrentQuizName      string                 `json:"currentQuizName"`
	IsChapterPractice    bool                   `json:"isChapterPractice"`
	CurrentChapterName   string                 `json:"currentChapterName"`
	SavedAt              int64                  `json:"savedAt,omitempty"`
}

// Snapshot captures the attempt's current state for persistence.
func (s *Session) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	selected := make(map[int][]string, len(s.selected))
	for i, sel := range s.selected {
		cp := make([]string, len(sel))
		copy(cp, sel)
		selected[i] = cp
	}
	results := make([]model.QuestionResult, len(s.results))
	copy(results, s.results)

	return &Snapshot{
		Questions:            s.questions,
		CurrentQuestionIndex: s.current,
		SelectedAnswers:      selected,
		TimeRemaining:        s.remaining,
		StartTime:            s.startTime.UnixMilli(),
		ShowResult:           s.phase == PhaseResultShown,
		QuestionResults:      results,
		CurrentQuizID:        s.quizID,
		CurrentQuizName:      s.quizName,
		IsChapterPractice:    s.chapterPractice,
		CurrentChapterName:   s.chapterName,
	}
}

// Restore rebuilds an attempt from a persisted snapshot.
func Restore(snap *Snapshot) *Session {
	phase := PhaseAnswering
	if snap.ShowResult {
		phase = PhaseResultShown
	}
	selected := snap.SelectedAnswers
	if selected == nil {
		selected = make(map[int][]string)
	}
	return &Session{
		questions:       snap.Questions,
		current:         snap.CurrentQuestionIndex,
		selected:        selected,
		remaining:       snap.TimeRemaining,
		startTime:       time.UnixMilli(snap.StartTime),
		phase:           phase,
		results:         snap.QuestionResults,
		quizID:          snap.CurrentQuizID,
		quizName:        snap.CurrentQuizName,
		chapterPractice: snap.IsChapterPractice,
		chapterName:     snap.CurrentChapterName,
		now:             time.Now,
	}
}
