package progress

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/a220prep/a220prep/internal/model"
	"github.com/a220prep/a220prep/internal/session"
)

// staleAfter is how old a saved in-flight session may be before it is
// treated as absent.
const staleAfter = 3 * time.Hour

var whitespaceRun = regexp.MustCompile(`\s+`)

// ChapterKey derives the storage key for a chapter name: lowercased, with
// whitespace runs collapsed to single hyphens.
func ChapterKey(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(name), "-")
}

// Tracker is the persistence adapter over a Storage port.
type Tracker struct {
	storage Storage
	now     func() time.Time
}

// NewTracker returns a Tracker over the given storage.
func NewTracker(storage Storage) *Tracker {
	return &Tracker{storage: storage, now: time.Now}
}

// SaveSession writes the in-flight snapshot, stamped with the current time.
// Failures never surface: the in-memory attempt continues regardless.
func (t *Tracker) SaveSession(snap *session.Snapshot) {
	snap.SavedAt = t.now().UnixMilli()
	data, err := json.Marshal(snap)
	if err != nil {
		slog.Error("failed to save progress", "error", err)
		return
	}
	if err := t.storage.Set(sessionKey, string(data)); err != nil {
		slog.Error("failed to save progress", "error", err)
	}
}

// LoadSession returns the saved in-flight snapshot, or nil when none exists,
// it cannot be parsed, or it is three hours old or more. A stale record is
// not deleted here; the next save simply overwrites it.
func (t *Tracker) LoadSession() *session.Snapshot {
	raw, ok, err := t.storage.Get(sessionKey)
	if err != nil {
		slog.Error("failed to load progress", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var snap session.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		slog.Warn("discarding unparsable saved progress", "error", err)
		return nil
	}
	if snap.SavedAt == 0 || t.now().UnixMilli()-snap.SavedAt >= staleAfter.Milliseconds() {
		return nil
	}
	if len(snap.Questions) == 0 {
		return nil
	}
	return &snap
}

// ClearSession removes the in-flight record.
func (t *Tracker) ClearSession() {
	if err := t.storage.Remove(sessionKey); err != nil {
		slog.Error("failed to clear progress", "error", err)
	}
}

// RecordCompletion marks a numbered quiz completed and keeps its best score.
// A nil quizID (random or chapter-practice attempt) records nothing. A new
// score replaces the stored one only when strictly greater.
func (t *Tracker) RecordCompletion(quizID *int, score int) {
	if quizID == nil {
		return
	}
	completed := t.CompletedQuizzes()
	if !slices.Contains(completed, *quizID) {
		completed = append(completed, *quizID)
		t.writeJSON(completedQuizzesKey, completed)
	}
	scores := t.QuizScores()
	if best, ok := scores[*quizID]; !ok || score > best {
		scores[*quizID] = score
		t.writeJSON(quizScoresKey, scores)
	}
}

// RecordChapterPractice keeps the best score and last-attempt time for a
// practiced chapter, updating only on a strictly greater score.
func (t *Tracker) RecordChapterPractice(chapterName string, score int) {
	key := ChapterKey(chapterName)
	prog := t.ChapterProgress()
	if cur, ok := prog[key]; ok && score <= cur.BestScore {
		return
	}
	prog[key] = model.ChapterProgress{
		BestScore:   score,
		LastAttempt: t.now().UnixMilli(),
	}
	t.writeJSON(chapterProgressKey, prog)
}

// CompletedQuizzes returns the recorded completed quiz ids, in completion
// order.
func (t *Tracker) CompletedQuizzes() []int {
	var completed []int
	t.readJSON(completedQuizzesKey, &completed)
	return completed
}

// QuizScores returns the best score per completed quiz id.
func (t *Tracker) QuizScores() map[int]int {
	scores := make(map[int]int)
	t.readJSON(quizScoresKey, &scores)
	return scores
}

// ChapterProgress returns the best-score record per chapter key.
func (t *Tracker) ChapterProgress() map[string]model.ChapterProgress {
	prog := make(map[string]model.ChapterProgress)
	t.readJSON(chapterProgressKey, &prog)
	return prog
}

// ResetHistory removes all historical records. The in-flight session key is
// untouched.
func (t *Tracker) ResetHistory() {
	for _, key := range []string{completedQuizzesKey, quizScoresKey, chapterProgressKey} {
		if err := t.storage.Remove(key); err != nil {
			slog.Error("failed to reset history", "key", key, "error", err)
		}
	}
}

func (t *Tracker) readJSON(key string, dst any) {
	raw, ok, err := t.storage.Get(key)
	if err != nil {
		slog.Error("failed to read progress record", "key", key, "error", err)
		return
	}
	if !ok {
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		slog.Warn("ignoring corrupted progress record", "key", key, "error", err)
	}
}

func (t *Tracker) writeJSON(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to write progress record", "key", key, "error", err)
		return
	}
	if err := t.storage.Set(key, string(data)); err != nil {
		slog.Error("failed to write progress record", "key", key, "error", err)
	}
}
