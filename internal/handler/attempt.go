package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/a220prep/a220prep/internal/model"
	"github.com/a220prep/a220prep/internal/scoring"
	"github.com/a220prep/a220prep/internal/selection"
	"github.com/a220prep/a220prep/internal/session"
)

// chapterPracticeMinutes is the countdown budget for chapter practice, which
// has no real time limit.
const chapterPracticeMinutes = 180

func (h *Handler) handleStartRandom(w http.ResponseWriter, r *http.Request) {
	questions := selection.SelectProportional(h.bank, h.config.RandomCount)
	if len(questions) == 0 {
		http.Error(w, "question bank is empty", http.StatusBadRequest)
		return
	}
	s := h.startSession(session.Config{
		Questions: selection.Shuffle(questions),
		TimeLimit: h.timeLimitMinutes() * 60,
		QuizName:  "Random Quiz",
	})
	h.writeSessionView(w, s)
}

func (h *Handler) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, err := strconv.Atoi(chi.URLParam(r, "quizID"))
	if err != nil {
		http.Error(w, "invalid quiz ID", http.StatusBadRequest)
		return
	}
	var set *model.QuizSet
	for i := range h.sets {
		if h.sets[i].ID == quizID {
			set = &h.sets[i]
			break
		}
	}
	if set == nil {
		http.Error(w, "quiz not found", http.StatusNotFound)
		return
	}
	s := h.startSession(session.Config{
		Questions: selection.Shuffle(set.Questions),
		TimeLimit: h.timeLimitMinutes() * 60,
		QuizID:    &set.ID,
		QuizName:  set.Name,
	})
	h.writeSessionView(w, s)
}

func (h *Handler) handleStartChapter(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	ch, ok := h.bank.Chapter(name)
	if !ok {
		http.Error(w, "chapter not found", http.StatusNotFound)
		return
	}
	if len(ch.Questions) == 0 {
		http.Error(w, "chapter has no questions", http.StatusBadRequest)
		return
	}
	s := h.startSession(session.Config{
		Questions:       selection.Shuffle(ch.Stamped()),
		TimeLimit:       chapterPracticeMinutes * 60,
		QuizName:        ch.Name + " Practice",
		ChapterPractice: true,
		ChapterName:     ch.Name,
	})
	h.writeSessionView(w, s)
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	snap := h.tracker.LoadSession()
	if snap == nil {
		http.Error(w, "no resumable session", http.StatusNotFound)
		return
	}
	s := session.Restore(snap)

	h.mu.Lock()
	h.stopTimerLocked()
	h.active = s
	h.finished = nil
	h.startTimerLocked(s)
	h.mu.Unlock()

	h.tracker.SaveSession(s.Snapshot())
	slog.Info("resumed attempt", "quiz", s.QuizName(), "question", s.CurrentIndex()+1)
	h.writeSessionView(w, s)
}

// startSession replaces any active attempt with a fresh one and arms its
// countdown. Discarded persisted state is cleared first so a reload cannot
// resume into the replaced attempt.
func (h *Handler) startSession(cfg session.Config) *session.Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopTimerLocked()
	h.tracker.ClearSession()

	s := session.New(cfg)
	h.active = s
	h.finished = nil
	h.tracker.SaveSession(s.Snapshot())
	h.startTimerLocked(s)
	slog.Info("started attempt", "quiz", cfg.QuizName, "questions", len(cfg.Questions), "time_limit_sec", cfg.TimeLimit)
	return s
}

// startTimerLocked arms the one-second countdown for s. At most one timer is
// live per attempt; the previous one must already be stopped.
func (h *Handler) startTimerLocked(s *session.Session) {
	stop := make(chan struct{})
	h.stopTimer = stop
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !s.Tick() {
					return
				}
				if s.Phase() == session.PhaseFinished {
					h.finalize(s)
					return
				}
				h.tracker.SaveSession(s.Snapshot())
			}
		}
	}()
}

func (h *Handler) stopTimerLocked() {
	if h.stopTimer != nil {
		close(h.stopTimer)
		h.stopTimer = nil
	}
}

// finalize runs exactly once per finished attempt: it stops the timer,
// clears the in-flight record, and commits historical scores.
func (h *Handler) finalize(s *session.Session) {
	h.mu.Lock()
	if h.active != s {
		h.mu.Unlock()
		return
	}
	h.stopTimerLocked()
	h.active = nil
	h.finished = s
	h.mu.Unlock()

	h.tracker.ClearSession()
	summary := scoring.Aggregate(s.Results())
	h.tracker.RecordCompletion(s.QuizID(), summary.Score)
	if s.IsChapterPractice() && s.ChapterName() != "" {
		h.tracker.RecordChapterPractice(s.ChapterName(), summary.Score)
	}
	slog.Info("attempt finished", "quiz", s.QuizName(), "score", summary.Score,
		"correct", summary.CorrectCount, "total", summary.TotalCount)
}

// currentSession returns the in-flight attempt, if any.
func (h *Handler) currentSession() *session.Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// mutateSession applies op to the active attempt, then persists or finalizes
// depending on the resulting phase. Persistence runs strictly after the
// mutation and is best-effort.
func (h *Handler) mutateSession(w http.ResponseWriter, op func(*session.Session) bool) {
	s := h.currentSession()
	if s == nil {
		http.Error(w, "no active session", http.StatusNotFound)
		return
	}
	changed := op(s)
	if s.Phase() == session.PhaseFinished {
		h.finalize(s)
	} else if changed {
		h.tracker.SaveSession(s.Snapshot())
	}
	h.writeSessionView(w, s)
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Letter string `json:"letter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Letter == "" {
		http.Error(w, "letter is required", http.StatusBadRequest)
		return
	}
	h.mutateSession(w, func(s *session.Session) bool {
		return s.SelectAnswer(req.Letter)
	})
}

func (h *Handler) handleConfirmAnswer(w http.ResponseWriter, r *http.Request) {
	h.mutateSession(w, (*session.Session).ConfirmAnswer)
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	h.mutateSession(w, (*session.Session).Advance)
}

func (h *Handler) handleConfirmFinish(w http.ResponseWriter, r *http.Request) {
	h.mutateSession(w, (*session.Session).ConfirmFinish)
}

func (h *Handler) handleCancelFinish(w http.ResponseWriter, r *http.Request) {
	h.mutateSession(w, (*session.Session).CancelFinish)
}

func (h *Handler) handleSelectQuestion(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid question index", http.StatusBadRequest)
		return
	}
	h.mutateSession(w, func(s *session.Session) bool {
		return s.SelectQuestion(index)
	})
}

// handleExit abandons the attempt: the timer stops, persisted state is
// cleared, and no further results are recorded.
func (h *Handler) handleExit(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	s := h.active
	if s != nil {
		h.stopTimerLocked()
		h.active = nil
	}
	h.mu.Unlock()
	if s == nil {
		http.Error(w, "no active session", http.StatusNotFound)
		return
	}
	h.tracker.ClearSession()
	slog.Info("attempt abandoned", "quiz", s.QuizName())
	w.WriteHeader(http.StatusNoContent)
}

type sessionView struct {
	Phase             session.Phase  `json:"phase"`
	QuizID            *int           `json:"quizId,omitempty"`
	QuizName          string         `json:"quizName,omitempty"`
	IsChapterPractice bool           `json:"isChapterPractice,omitempty"`
	ChapterName       string         `json:"chapterName,omitempty"`
	QuestionIndex     int            `json:"questionIndex"`
	QuestionCount     int            `json:"questionCount"`
	Question          model.Question `json:"question"`
	SelectedAnswers   []string       `json:"selectedAnswers"`
	TimeRemaining     int            `json:"timeRemaining"`
	Unanswered        int            `json:"unanswered"`
}

func (h *Handler) writeSessionView(w http.ResponseWriter, s *session.Session) {
	idx := s.CurrentIndex()
	writeJSON(w, http.StatusOK, sessionView{
		Phase:             s.Phase(),
		QuizID:            s.QuizID(),
		QuizName:          s.QuizName(),
		IsChapterPractice: s.IsChapterPractice(),
		ChapterName:       s.ChapterName(),
		QuestionIndex:     idx,
		QuestionCount:     s.QuestionCount(),
		Question:          s.CurrentQuestion(),
		SelectedAnswers:   s.Selection(idx),
		TimeRemaining:     s.TimeRemaining(),
		Unanswered:        s.Unanswered(),
	})
}

func (h *Handler) handleSessionView(w http.ResponseWriter, r *http.Request) {
	s := h.currentSession()
	if s == nil {
		http.Error(w, "no active session", http.StatusNotFound)
		return
	}
	h.writeSessionView(w, s)
}

type resultsView struct {
	Summary   model.Summary                 `json:"summary"`
	ByChapter map[string]model.ChapterStats `json:"byChapter"`
	Results   []model.QuestionResult        `json:"results"`
	TimeTaken int                           `json:"timeTaken"`
	Passed    bool                          `json:"passed"`
	QuizName  string                        `json:"quizName,omitempty"`
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	s := h.finished
	h.mu.Unlock()
	if s == nil {
		http.Error(w, "no finished session", http.StatusNotFound)
		return
	}
	results := s.Results()
	summary := scoring.Aggregate(results)
	writeJSON(w, http.StatusOK, resultsView{
		Summary:   summary,
		ByChapter: scoring.ByChapter(results),
		Results:   results,
		TimeTaken: s.TimeTaken(),
		Passed:    summary.Score >= h.bank.PassingGrade,
		QuizName:  s.QuizName(),
	})
}
