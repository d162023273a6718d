package bank

import (
	"os"
	"path/filepath"
	"testing"
)

const testBankJSON = `{
	"timeLimit": 120,
	"passingGrade": 75,
	"totalQuestions": 3,
	"quizzes": [
		{
			"name": "General",
			"questions": [
				{"code": "01GEN01", "text": "Q1", "type": "single",
				 "options": [{"letter": "a", "text": "A"}, {"letter": "b", "text": "B"}],
				 "correct": ["a"]},
				{"code": "01GEN02", "text": "Q2", "type": "multiple",
				 "options": [{"letter": "a", "text": "A"}, {"letter": "b", "text": "B"}],
				 "correct": ["a", "b"]}
			]
		},
		{
			"name": "Electrical",
			"questions": [
				{"code": "05ELEC01", "text": "Q3", "type": "single",
				 "options": [{"letter": "a", "text": "A"}, {"letter": "b", "text": "B"}],
				 "correct": ["b"]}
			]
		}
	]
}`

func TestParse(t *testing.T) {
	b := Parse([]byte(testBankJSON))
	if b.TimeLimit != 120 || b.PassingGrade != 75 {
		t.Errorf("unexpected bank metadata: %+v", b)
	}
	if len(b.Quizzes) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(b.Quizzes))
	}
	if b.Count() != 3 {
		t.Errorf("expected 3 questions, got %d", b.Count())
	}
}

func TestParseMalformed(t *testing.T) {
	b := Parse([]byte("{not json"))
	if len(b.Quizzes) != 0 || b.Count() != 0 {
		t.Errorf("expected empty bank from malformed input, got %+v", b)
	}
}

func TestLoadMissingFile(t *testing.T) {
	b := Load(filepath.Join(t.TempDir(), "nope.json"))
	if b.Count() != 0 {
		t.Errorf("expected empty bank for missing file, got %d questions", b.Count())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	if err := os.WriteFile(path, []byte(testBankJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if b := Load(path); b.Count() != 3 {
		t.Errorf("expected 3 questions, got %d", b.Count())
	}
}

func TestAllQuestionsStamping(t *testing.T) {
	b := Parse([]byte(testBankJSON))
	all := b.AllQuestions()
	if len(all) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(all))
	}

	want := []struct{ id, chapter string }{
		{"General-0", "General"},
		{"General-1", "General"},
		{"Electrical-0", "Electrical"},
	}
	for i, w := range want {
		if all[i].ID != w.id {
			t.Errorf("question %d: expected id %q, got %q", i, w.id, all[i].ID)
		}
		if all[i].Chapter != w.chapter {
			t.Errorf("question %d: expected chapter %q, got %q", i, w.chapter, all[i].Chapter)
		}
	}
}

func TestChapterLookup(t *testing.T) {
	b := Parse([]byte(testBankJSON))
	ch, ok := b.Chapter("Electrical")
	if !ok {
		t.Fatal("expected Electrical chapter")
	}
	if len(ch.Questions) != 1 {
		t.Errorf("expected 1 question, got %d", len(ch.Questions))
	}
	if _, ok := b.Chapter("Hydraulics"); ok {
		t.Error("unexpected chapter match")
	}
}

func TestLoadResources(t *testing.T) {
	dir := t.TempDir()
	explPath := filepath.Join(dir, "explanations.json")
	refsPath := filepath.Join(dir, "refs.json")

	explJSON := `{"explanations": {
		"01GEN01": {"explanation": "because", "source": "FCOM1", "page": 42}
	}}`
	refsJSON := `{
		"references": {
			"01GEN01": {"pages": [{"pdf": "FCOM1", "page": 10}]}
		},
		"_meta": {"chapters": {
			"02AIR": {"name": "Air Conditioning", "startPage": 100}
		}}
	}`
	if err := os.WriteFile(explPath, []byte(explJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(refsPath, []byte(refsJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	r := LoadResources(explPath, refsPath)

	expl, ok := r.Explanation("01GEN01")
	if !ok {
		t.Fatal("expected explanation for 01GEN01")
	}
	if expl.Explanation != "because" || expl.Page != 42 {
		t.Errorf("unexpected explanation: %+v", expl)
	}
	if _, ok := r.Explanation("01GEN99"); ok {
		t.Error("unexpected explanation match")
	}

	// Specific reference wins.
	ref, ok := r.PageReferences("01GEN01")
	if !ok || len(ref.Pages) != 1 || ref.Pages[0].Page != 10 {
		t.Fatalf("unexpected specific reference: %+v ok=%v", ref, ok)
	}

	// Chapter-prefix fallback.
	ref, ok = r.PageReferences("02AIR07")
	if !ok {
		t.Fatal("expected chapter fallback reference")
	}
	if len(ref.Pages) != 1 || ref.Pages[0].Page != 100 || ref.Pages[0].PDF != "FCOM1" {
		t.Errorf("unexpected fallback reference: %+v", ref)
	}
	if ref.Pages[0].Note != "Air Conditioning chapter start" {
		t.Errorf("unexpected fallback note: %q", ref.Pages[0].Note)
	}

	// No fallback for unknown prefixes or short codes.
	if _, ok := r.PageReferences("99XYZ01"); ok {
		t.Error("unexpected reference for unknown prefix")
	}
	if _, ok := r.PageReferences("XY"); ok {
		t.Error("unexpected reference for short code")
	}
}

func TestLoadResourcesMissingFiles(t *testing.T) {
	r := LoadResources("", filepath.Join(t.TempDir(), "nope.json"))
	if _, ok := r.Explanation("01GEN01"); ok {
		t.Error("unexpected explanation from empty resources")
	}
	if _, ok := r.PageReferences("01GEN01"); ok {
		t.Error("unexpected reference from empty resources")
	}
}
