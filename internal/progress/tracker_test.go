package progress

import (
	"testing"
	"time"

	"github.com/a220prep/a220prep/internal/model"
	"github.com/a220prep/a220prep/internal/session"
)

func newTestTracker(t *testing.T) (*Tracker, *Memory) {
	t.Helper()
	mem := NewMemory()
	return NewTracker(mem), mem
}

func testSnapshot() *session.Snapshot {
	s := session.New(session.Config{
		Questions: []model.Question{{
			Code:    "01GEN01",
			Type:    model.TypeSingle,
			Correct: []string{"a"},
			Chapter: "General",
		}},
		TimeLimit: 600,
		QuizName:  "Test",
	})
	return s.Snapshot()
}

func TestSaveLoadSession(t *testing.T) {
	tr, _ := newTestTracker(t)

	if got := tr.LoadSession(); got != nil {
		t.Fatalf("expected no saved session, got %+v", got)
	}

	tr.SaveSession(testSnapshot())
	got := tr.LoadSession()
	if got == nil {
		t.Fatal("expected saved session to load")
	}
	if len(got.Questions) != 1 || got.Questions[0].Code != "01GEN01" {
		t.Errorf("unexpected restored questions: %+v", got.Questions)
	}
	if got.CurrentQuizName != "Test" {
		t.Errorf("expected quiz name Test, got %q", got.CurrentQuizName)
	}
	if got.SavedAt == 0 {
		t.Error("expected savedAt stamp")
	}
}

func TestLoadSessionStaleness(t *testing.T) {
	tests := []struct {
		name    string
		age     time.Duration
		restore bool
	}{
		{"one hour old", time.Hour, true},
		{"just under three hours", 3*time.Hour - time.Second, true},
		{"exactly three hours", 3 * time.Hour, false},
		{"four hours old", 4 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, mem := newTestTracker(t)
			saved := time.Now()
			tr.now = func() time.Time { return saved }
			tr.SaveSession(testSnapshot())

			tr.now = func() time.Time { return saved.Add(tt.age) }
			got := tr.LoadSession()
			if tt.restore && got == nil {
				t.Fatal("expected session to be restored")
			}
			if !tt.restore && got != nil {
				t.Fatal("expected stale session to be treated as absent")
			}

			// A stale record is not proactively deleted.
			if _, ok, _ := mem.Get("a220_quiz_progress"); !ok {
				t.Error("stored record should remain on disk")
			}
		})
	}
}

func TestLoadSessionCorrupt(t *testing.T) {
	tr, mem := newTestTracker(t)
	if err := mem.Set("a220_quiz_progress", "{not json"); err != nil {
		t.Fatal(err)
	}
	if got := tr.LoadSession(); got != nil {
		t.Fatalf("expected corrupt record to be treated as absent, got %+v", got)
	}
}

func TestClearSession(t *testing.T) {
	tr, mem := newTestTracker(t)
	tr.SaveSession(testSnapshot())
	tr.ClearSession()
	if _, ok, _ := mem.Get("a220_quiz_progress"); ok {
		t.Error("expected session key removed")
	}
}

func TestRecordCompletionMonotonic(t *testing.T) {
	tr, _ := newTestTracker(t)
	q1 := 1

	tr.RecordCompletion(&q1, 80)
	tr.RecordCompletion(&q1, 70)

	if scores := tr.QuizScores(); scores[1] != 80 {
		t.Errorf("expected best score 80 kept, got %d", scores[1])
	}
	if completed := tr.CompletedQuizzes(); len(completed) != 1 || completed[0] != 1 {
		t.Errorf("expected completed list [1], got %v", completed)
	}

	tr.RecordCompletion(&q1, 90)
	if scores := tr.QuizScores(); scores[1] != 90 {
		t.Errorf("expected improved score 90, got %d", scores[1])
	}
	if completed := tr.CompletedQuizzes(); len(completed) != 1 {
		t.Errorf("expected no duplicate completion, got %v", completed)
	}
}

func TestRecordCompletionNilID(t *testing.T) {
	tr, _ := newTestTracker(t)
	tr.RecordCompletion(nil, 95)
	if completed := tr.CompletedQuizzes(); len(completed) != 0 {
		t.Errorf("random attempts must not be recorded, got %v", completed)
	}
	if scores := tr.QuizScores(); len(scores) != 0 {
		t.Errorf("random attempts must not score, got %v", scores)
	}
}

func TestRecordChapterPractice(t *testing.T) {
	tr, _ := newTestTracker(t)

	tr.RecordChapterPractice("Ice and Rain Protection", 60)
	prog := tr.ChapterProgress()
	p, ok := prog["ice-and-rain-protection"]
	if !ok {
		t.Fatalf("expected derived chapter key, got %v", prog)
	}
	if p.BestScore != 60 {
		t.Errorf("expected best score 60, got %d", p.BestScore)
	}
	if p.LastAttempt == 0 {
		t.Error("expected lastAttempt stamp")
	}

	tr.RecordChapterPractice("Ice and Rain Protection", 50)
	if got := tr.ChapterProgress()["ice-and-rain-protection"].BestScore; got != 60 {
		t.Errorf("expected best score kept at 60, got %d", got)
	}

	tr.RecordChapterPractice("Ice and Rain Protection", 75)
	if got := tr.ChapterProgress()["ice-and-rain-protection"].BestScore; got != 75 {
		t.Errorf("expected best score raised to 75, got %d", got)
	}
}

func TestChapterKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"General", "general"},
		{"Ice and Rain Protection", "ice-and-rain-protection"},
		{"Automatic  Flight", "automatic-flight"},
		{"APU", "apu"},
	}
	for _, tt := range tests {
		if got := ChapterKey(tt.in); got != tt.want {
			t.Errorf("ChapterKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResetHistory(t *testing.T) {
	tr, mem := newTestTracker(t)
	q1 := 1
	tr.RecordCompletion(&q1, 80)
	tr.RecordChapterPractice("General", 70)
	tr.SaveSession(testSnapshot())

	tr.ResetHistory()

	if len(tr.CompletedQuizzes()) != 0 || len(tr.QuizScores()) != 0 || len(tr.ChapterProgress()) != 0 {
		t.Error("expected history cleared")
	}
	// The in-flight session is untouched.
	if _, ok, _ := mem.Get("a220_quiz_progress"); !ok {
		t.Error("expected in-flight session to survive history reset")
	}
}
