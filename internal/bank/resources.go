package bank

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// chapterCodeLen is the length of the chapter-code prefix of a question code
// (e.g. "02AIR" from "02AIR01") used for page-reference fallback.
const chapterCodeLen = 5

// PageRef points into one of the source PDFs.
type PageRef struct {
	PDF  string `json:"pdf"`
	Page int    `json:"page"`
	Note string `json:"note,omitempty"`
}

// Explanation is the study note attached to a question code.
type Explanation struct {
	Explanation string    `json:"explanation"`
	Source      string    `json:"source,omitempty"`
	Page        int       `json:"page,omitempty"`
	Sources     []PageRef `json:"sources,omitempty"`
}

// PageReference is the set of PDF locations backing one question.
type PageReference struct {
	Pages []PageRef `json:"pages"`
}

type chapterMeta struct {
	Name      string `json:"name"`
	StartPage int    `json:"startPage"`
}

type explanationsFile struct {
	Explanations map[string]Explanation `json:"explanations"`
}

type referencesFile struct {
	References map[string]PageReference `json:"references"`
	Meta       struct {
		Chapters map[string]chapterMeta `json:"chapters"`
	} `json:"_meta"`
}

// Resources bundles the explanation and page-reference lookups. The zero
// value is usable and answers every lookup with "not found".
type Resources struct {
	explanations map[string]Explanation
	references   map[string]PageReference
	chapters     map[string]chapterMeta
}

// LoadResources reads the explanations and page-references files. Either
// path may be empty or unreadable; the corresponding lookups are then empty.
func LoadResources(explanationsPath, referencesPath string) *Resources {
	r := &Resources{}
	if data, err := readOptional(explanationsPath); data != nil {
		var f explanationsFile
		if jerr := json.Unmarshal(data, &f); jerr != nil {
			slog.Warn("malformed explanations resource", "path", explanationsPath, "error", jerr)
		} else {
			r.explanations = f.Explanations
		}
	} else if err != nil {
		slog.Warn("explanations resource unavailable", "path", explanationsPath, "error", err)
	}
	if data, err := readOptional(referencesPath); data != nil {
		var f referencesFile
		if jerr := json.Unmarshal(data, &f); jerr != nil {
			slog.Warn("malformed page references resource", "path", referencesPath, "error", jerr)
		} else {
			r.references = f.References
			r.chapters = f.Meta.Chapters
		}
	} else if err != nil {
		slog.Warn("page references resource unavailable", "path", referencesPath, "error", err)
	}
	return r
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

// Explanation returns the study note for a question code.
func (r *Resources) Explanation(code string) (Explanation, bool) {
	e, ok := r.explanations[code]
	return e, ok
}

// PageReferences returns the PDF locations for a question code. When no
// specific reference exists it falls back to the start page of the chapter
// identified by the code's chapter prefix.
func (r *Resources) PageReferences(code string) (PageReference, bool) {
	if ref, ok := r.references[code]; ok {
		return ref, true
	}
	if len(code) < chapterCodeLen {
		return PageReference{}, false
	}
	ch, ok := r.chapters[code[:chapterCodeLen]]
	if !ok {
		return PageReference{}, false
	}
	return PageReference{Pages: []PageRef{{
		PDF:  "FCOM1",
		Page: ch.StartPage,
		Note: fmt.Sprintf("%s chapter start", ch.Name),
	}}}, true
}
