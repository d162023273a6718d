// Package handler exposes the quiz engine as a JSON API consumed by the
// browser frontend.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/a220prep/a220prep/internal/bank"
	"github.com/a220prep/a220prep/internal/model"
	"github.com/a220prep/a220prep/internal/progress"
	"github.com/a220prep/a220prep/internal/session"
)

// Config holds runtime quiz parameters set via CLI flags.
type Config struct {
	// RandomCount is the size of a proportional random attempt.
	RandomCount int
	// TimeLimit overrides the bank's time limit in minutes when positive.
	TimeLimit int
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	bank      *bank.Bank
	resources *bank.Resources
	sets      []model.QuizSet
	tracker   *progress.Tracker
	config    Config

	mu        sync.Mutex
	active    *session.Session
	finished  *session.Session
	stopTimer chan struct{}
}

// New creates a new Handler.
func New(b *bank.Bank, res *bank.Resources, sets []model.QuizSet, tracker *progress.Tracker, cfg Config) *Handler {
	return &Handler{bank: b, resources: res, sets: sets, tracker: tracker, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/bank", h.handleBank)
	r.Get("/api/quizzes", h.handleQuizzes)
	r.Get("/api/chapters", h.handleChapters)

	r.Post("/api/session/random", h.handleStartRandom)
	r.Post("/api/session/quiz/{quizID}", h.handleStartQuiz)
	r.Post("/api/session/chapter/{name}", h.handleStartChapter)
	r.Post("/api/session/resume", h.handleResume)
	r.Get("/api/session", h.handleSessionView)
	r.Post("/api/session/answer", h.handleAnswer)
	r.Post("/api/session/confirm", h.handleConfirmAnswer)
	r.Post("/api/session/advance", h.handleAdvance)
	r.Post("/api/session/finish/confirm", h.handleConfirmFinish)
	r.Post("/api/session/finish/cancel", h.handleCancelFinish)
	r.Post("/api/session/goto/{index}", h.handleSelectQuestion)
	r.Post("/api/session/exit", h.handleExit)
	r.Get("/api/session/results", h.handleResults)

	r.Get("/api/questions/{code}/explanation", h.handleExplanation)
	r.Get("/api/questions/{code}/references", h.handleReferences)
	r.Post("/api/progress/reset", h.handleResetProgress)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

type bankSummary struct {
	Chapters       []chapterSummary `json:"chapters"`
	TotalQuestions int              `json:"totalQuestions"`
	TimeLimit      int              `json:"timeLimit"`
	PassingGrade   int              `json:"passingGrade"`
	HasSaved       bool             `json:"hasSavedSession"`
}

type chapterSummary struct {
	Name          string                 `json:"name"`
	Key           string                 `json:"key"`
	QuestionCount int                    `json:"questionCount"`
	Progress      *model.ChapterProgress `json:"progress,omitempty"`
}

func (h *Handler) handleBank(w http.ResponseWriter, r *http.Request) {
	summary := bankSummary{
		Chapters:       h.chapterSummaries(),
		TotalQuestions: h.bank.Count(),
		TimeLimit:      h.timeLimitMinutes(),
		PassingGrade:   h.bank.PassingGrade,
		HasSaved:       h.tracker.LoadSession() != nil,
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) chapterSummaries() []chapterSummary {
	prog := h.tracker.ChapterProgress()
	out := make([]chapterSummary, 0, len(h.bank.Quizzes))
	for _, ch := range h.bank.Quizzes {
		key := progress.ChapterKey(ch.Name)
		cs := chapterSummary{
			Name:          ch.Name,
			Key:           key,
			QuestionCount: len(ch.Questions),
		}
		if p, ok := prog[key]; ok {
			cs.Progress = &p
		}
		out = append(out, cs)
	}
	return out
}

func (h *Handler) handleChapters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.chapterSummaries())
}

type quizSummary struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	QuestionCount int    `json:"questionCount"`
	UniqueCount   int    `json:"uniqueCount"`
	IsLastQuiz    bool   `json:"isLastQuiz"`
	CoveredRange  string `json:"coveredRange,omitempty"`
	Completed     bool   `json:"completed"`
	BestScore     *int   `json:"bestScore,omitempty"`
}

func (h *Handler) handleQuizzes(w http.ResponseWriter, r *http.Request) {
	completed := make(map[int]bool)
	for _, id := range h.tracker.CompletedQuizzes() {
		completed[id] = true
	}
	scores := h.tracker.QuizScores()

	out := make([]quizSummary, 0, len(h.sets))
	for _, set := range h.sets {
		qs := quizSummary{
			ID:            set.ID,
			Name:          set.Name,
			Description:   set.Description,
			QuestionCount: len(set.Questions),
			UniqueCount:   set.UniqueCount,
			IsLastQuiz:    set.IsLastQuiz,
			CoveredRange:  set.CoveredRange,
			Completed:     completed[set.ID],
		}
		if best, ok := scores[set.ID]; ok {
			qs.BestScore = &best
		}
		out = append(out, qs)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleExplanation(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	expl, ok := h.resources.Explanation(code)
	if !ok {
		http.Error(w, "no explanation for question", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, expl)
}

func (h *Handler) handleReferences(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	ref, ok := h.resources.PageReferences(code)
	if !ok {
		http.Error(w, "no page references for question", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

func (h *Handler) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	h.tracker.ResetHistory()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) timeLimitMinutes() int {
	if h.config.TimeLimit > 0 {
		return h.config.TimeLimit
	}
	return h.bank.TimeLimit
}

func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}
