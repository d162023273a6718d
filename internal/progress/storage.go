// Package progress persists in-flight session state and durable historical
// scores against a scoped key-value storage capability. Storage failures are
// logged and swallowed: the worst case is silent loss of resumability, never
// corrupted scoring.
package progress

import "sync"

// Storage keys. Pinned: existing saved progress must keep resuming across
// versions.
const (
	sessionKey          = "a220_quiz_progress"
	completedQuizzesKey = "a220_completed_quizzes"
	quizScoresKey       = "a220_quiz_scores"
	chapterProgressKey  = "a220_chapter_progress"
)

// Storage is the injected key-value port behind all persistence. Get reports
// presence separately from errors so a missing key is not an error.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// Memory is an in-process Storage for tests and ephemeral runs.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemory returns an empty in-memory Storage.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
