// Package session drives a single quiz attempt through its
// answer/confirm/advance/finish lifecycle.
package session

import (
	"sync"
	"time"

	"github.com/a220prep/a220prep/internal/model"
	"github.com/a220prep/a220prep/internal/scoring"
)

// Phase is the attempt's lifecycle state. Transitions happen only through
// Session methods, so impossible flag combinations are unrepresentable.
type Phase string

const (
	// PhaseAnswering: the current question is open for selection.
	PhaseAnswering Phase = "answering"
	// PhaseResultShown: the current question's correctness is revealed and
	// its selection is locked.
	PhaseResultShown Phase = "result_shown"
	// PhaseConfirmingFinish: the user advanced past the last question with
	// more than one question still unanswered and must confirm finishing.
	PhaseConfirmingFinish Phase = "confirming_finish"
	// PhaseFinished is terminal.
	PhaseFinished Phase = "finished"
)

// Config describes the attempt to start.
type Config struct {
	Questions []model.Question
	// TimeLimit is the countdown budget in seconds.
	TimeLimit int
	// QuizID identifies a numbered quiz set; nil for random and
	// chapter-practice attempts, which are not recorded as completed quizzes.
	QuizID          *int
	QuizName        string
	ChapterPractice bool
	ChapterName     string
}

// Session is one quiz attempt. Methods are safe for concurrent use; the HTTP
// handlers and the countdown ticker share one instance.
type Session struct {
	mu sync.Mutex

	questions []model.Question
	current   int
	selected  map[int][]string
	remaining int
	startTime time.Time
	endTime   time.Time
	phase     Phase
	results   []model.QuestionResult

	quizID          *int
	quizName        string
	chapterPractice bool
	chapterName     string

	now func() time.Time
}

// New starts an attempt in the answering phase on the first question.
func New(cfg Config) *Session {
	s := &Session{
		questions:       cfg.Questions,
		selected:        make(map[int][]string),
		remaining:       cfg.TimeLimit,
		phase:           PhaseAnswering,
		quizID:          cfg.QuizID,
		quizName:        cfg.QuizName,
		chapterPractice: cfg.ChapterPractice,
		chapterName:     cfg.ChapterName,
		now:             time.Now,
	}
	s.startTime = s.now()
	return s
}

// SelectAnswer records a letter for the current question. For multiple-type
// questions the letter toggles in the selection set; for single-type
// questions it replaces the selection and auto-confirms, revealing the
// result. Ignored outside the answering phase; reports whether state changed.
func (s *Session) SelectAnswer(letter string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseAnswering {
		return false
	}
	q := s.questions[s.current]
	if q.Type == model.TypeMultiple {
		s.selected[s.current] = toggle(s.selected[s.current], letter)
		return true
	}
	s.selected[s.current] = []string{letter}
	s.phase = PhaseResultShown
	return true
}

func toggle(letters []string, letter string) []string {
	for i, l := range letters {
		if l == letter {
			return append(letters[:i:i], letters[i+1:]...)
		}
	}
	return append(letters, letter)
}

// ConfirmAnswer reveals the result for a multiple-type question. Valid only
// in the answering phase with a non-empty selection.
func (s *Session) ConfirmAnswer() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseAnswering {
		return false
	}
	if s.questions[s.current].Type != model.TypeMultiple {
		return false
	}
	if len(s.selected[s.current]) == 0 {
		return false
	}
	s.phase = PhaseResultShown
	return true
}

// Advance finalizes the current question's result and moves on. From the last
// question it finishes the attempt, or asks for confirmation first when more
// than one other question is still unanswered.
func (s *Session) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseResultShown {
		return false
	}
	q := s.questions[s.current]
	s.results = append(s.results, scoring.Score(q, s.selected[s.current]))

	if s.current < len(s.questions)-1 {
		s.current++
		s.phase = PhaseAnswering
		return true
	}
	if s.unansweredLocked() > 1 {
		s.phase = PhaseConfirmingFinish
		return true
	}
	s.finishLocked()
	return true
}

// ConfirmFinish completes the attempt from the finish-confirmation prompt.
func (s *Session) ConfirmFinish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseConfirmingFinish {
		return false
	}
	s.finishLocked()
	return true
}

// CancelFinish returns from the finish-confirmation prompt to the revealed
// result on the last question.
func (s *Session) CancelFinish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseConfirmingFinish {
		return false
	}
	s.phase = PhaseResultShown
	return true
}

// SelectQuestion jumps to an arbitrary question index. The target question's
// earlier selection is preserved and shown, but its view always opens in the
// answering phase; a previously revealed result is never re-locked.
func (s *Session) SelectQuestion(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseFinished {
		return false
	}
	if index < 0 || index >= len(s.questions) || index == s.current {
		return false
	}
	s.current = index
	s.phase = PhaseAnswering
	return true
}

// Tick decrements the countdown by one second. At zero the attempt is forced
// to finish regardless of the per-question state, scoring every question not
// yet finalized with whatever selection is stored.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseFinished {
		return false
	}
	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		s.finishLocked()
	}
	return true
}

// unansweredLocked counts questions with an empty or absent selection. The
// current question always has a selection when a result is shown, so it never
// contributes.
func (s *Session) unansweredLocked() int {
	n := 0
	for i := range s.questions {
		if len(s.selected[i]) == 0 {
			n++
		}
	}
	return n
}

// finishLocked synthesizes results for every question index beyond the
// current result-log length, guaranteeing exactly one entry per question.
func (s *Session) finishLocked() {
	s.endTime = s.now()
	s.phase = PhaseFinished
	for i := len(s.results); i < len(s.questions); i++ {
		s.results = append(s.results, scoring.Score(s.questions[i], s.selected[i]))
	}
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// CurrentIndex returns the current question pointer.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// CurrentQuestion returns the question at the current pointer.
func (s *Session) CurrentQuestion() model.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions[s.current]
}

// QuestionCount returns the length of the frozen question list.
func (s *Session) QuestionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

// Selection returns the selected letters for a question index.
func (s *Session) Selection(index int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.selected[index]
	out := make([]string, len(sel))
	copy(out, sel)
	return out
}

// Results returns a copy of the finalized result log.
func (s *Session) Results() []model.QuestionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.QuestionResult, len(s.results))
	copy(out, s.results)
	return out
}

// TimeRemaining returns the countdown seconds left.
func (s *Session) TimeRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Unanswered returns the number of questions with no selection.
func (s *Session) Unanswered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unansweredLocked()
}

// QuizID returns the originating quiz set id, or nil for random and
// chapter-practice attempts.
func (s *Session) QuizID() *int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quizID
}

// QuizName returns the display name of the attempt.
func (s *Session) QuizName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quizName
}

// IsChapterPractice reports whether the attempt practices a single chapter.
func (s *Session) IsChapterPractice() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chapterPractice
}

// ChapterName returns the practiced chapter's name, if any.
func (s *Session) ChapterName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chapterName
}

// TimeTaken returns the attempt duration in seconds, zero until finished.
func (s *Session) TimeTaken() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.endTime.IsZero() {
		return 0
	}
	return int(s.endTime.Sub(s.startTime).Round(time.Second) / time.Second)
}
