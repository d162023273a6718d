// Package selection produces the question subsets a user can attempt: a
// proportional random sample across chapters, a deterministic seed-reproducible
// partition of the whole bank into fixed-size quiz sets, and generic uniform
// and seeded shuffles.
package selection

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/a220prep/a220prep/internal/bank"
	"github.com/a220prep/a220prep/internal/model"
)

// Shuffle returns a uniform-random permutation of s. The input is not mutated.
func Shuffle[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// seededRandom is the pinned pseudo-random source: frac(sin(s)·10000).
// Changing it would change which quiz-set partitions existing users have
// already seen and completed, so the algorithm is versioned behavior, not an
// implementation detail.
func seededRandom(s float64) float64 {
	x := math.Sin(s) * 10000
	return x - math.Floor(x)
}

// SeededShuffle returns a deterministic permutation of s: the same (s, seed)
// pair always yields the same ordering, across processes and machines. The
// input is not mutated.
func SeededShuffle[T any](s []T, seed float64) []T {
	out := make([]T, len(s))
	copy(out, s)
	for i := len(out) - 1; i > 0; i-- {
		j := int(seededRandom(seed+float64(i)) * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// SelectProportional samples totalToSelect questions across all chapters,
// each chapter contributing in proportion to its share of the bank. Every
// chapter except the last gets round(share·total) capped at its size; the
// last chapter absorbs the remainder so the total is exact. Returns nil when
// the bank has no chapters.
func SelectProportional(b *bank.Bank, totalToSelect int) []model.Question {
	if len(b.Quizzes) == 0 {
		return nil
	}
	totalAvailable := b.Count()
	if totalAvailable == 0 {
		return nil
	}

	type allocation struct {
		chapter bank.Chapter
		count   int
	}
	remaining := totalToSelect
	allocs := make([]allocation, 0, len(b.Quizzes))
	for i, ch := range b.Quizzes {
		var count int
		if i == len(b.Quizzes)-1 {
			count = remaining
		} else {
			share := float64(len(ch.Questions)) / float64(totalAvailable)
			count = int(math.Round(share * float64(totalToSelect)))
		}
		if count > len(ch.Questions) {
			count = len(ch.Questions)
		}
		allocs = append(allocs, allocation{ch, count})
		remaining -= count
	}

	var selected []model.Question
	for _, a := range allocs {
		if a.count <= 0 {
			continue
		}
		shuffled := Shuffle(a.chapter.Stamped())
		selected = append(selected, shuffled[:a.count]...)
	}
	return Shuffle(selected)
}

// GenerateQuizSets partitions the entire bank into quiz sets of perQuiz
// questions after a uniform-random full-bank shuffle. A short final chunk is
// padded with questions resampled from earlier chunks so every set has
// exactly perQuiz questions, except when the whole bank is smaller than one
// chunk.
func GenerateQuizSets(b *bank.Bank, perQuiz int) []model.QuizSet {
	if perQuiz <= 0 {
		return nil
	}
	all := Shuffle(b.AllQuestions())
	total := len(all)
	numSets := (total + perQuiz - 1) / perQuiz

	sets := make([]model.QuizSet, 0, numSets)
	for i := 0; i < numSets; i++ {
		start := i * perQuiz
		end := min(start+perQuiz, total)
		questions := all[start:end:end]

		if len(questions) < perQuiz && i > 0 {
			needed := perQuiz - len(questions)
			padding := Shuffle(all[:start])[:needed]
			questions = append(questions, padding...)
		}

		sets = append(sets, model.QuizSet{
			ID:          i + 1,
			Name:        fmt.Sprintf("Quiz %d", i+1),
			Description: setDescription(i, numSets, start, end, perQuiz, len(questions), "%d unique questions + %d review"),
			Questions:   Shuffle(questions),
			UniqueCount: min(end-start, perQuiz),
			IsLastQuiz:  i == numSets-1,
		})
	}
	return sets
}

// GenerateSeededQuizSets is GenerateQuizSets with deterministic shuffles: the
// same (bank, perQuiz, seed) arguments always produce the same partition.
// Padding for the short final chunk reseeds with seed+i·1000 and the
// within-set shuffle with seed+i·100; both offsets are pinned.
func GenerateSeededQuizSets(b *bank.Bank, perQuiz int, seed float64) []model.QuizSet {
	if perQuiz <= 0 {
		return nil
	}
	all := SeededShuffle(b.AllQuestions(), seed)
	total := len(all)
	numSets := (total + perQuiz - 1) / perQuiz

	sets := make([]model.QuizSet, 0, numSets)
	for i := 0; i < numSets; i++ {
		start := i * perQuiz
		end := min(start+perQuiz, total)
		questions := all[start:end:end]

		if len(questions) < perQuiz && i > 0 {
			needed := perQuiz - len(questions)
			padding := SeededShuffle(all[:start], seed+float64(i)*1000)[:needed]
			questions = append(questions, padding...)
		}
		questions = SeededShuffle(questions, seed+float64(i)*100)

		sets = append(sets, model.QuizSet{
			ID:           i + 1,
			Name:         fmt.Sprintf("Quiz %d", i+1),
			Description:  setDescription(i, numSets, start, end, perQuiz, len(questions), "%d unique + %d review"),
			Questions:    questions,
			UniqueCount:  min(end-start, perQuiz),
			IsLastQuiz:   i == numSets-1,
			CoveredRange: fmt.Sprintf("Questions %d-%d", start+1, end),
		})
	}
	return sets
}

func setDescription(i, numSets, start, end, perQuiz, count int, shortFormat string) string {
	if i == numSets-1 && end-start < perQuiz {
		return fmt.Sprintf(shortFormat, end-start, perQuiz-(end-start))
	}
	return fmt.Sprintf("%d questions", count)
}
