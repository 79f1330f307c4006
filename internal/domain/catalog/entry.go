// Package catalog implements the tariff-nomenclature bounded context: catalog
// entries, legal notes, priority rules, synonym expansion, and the
// chapter-affinity tables the decision pipeline consults. The data is loadable
// from external files with compiled-in defaults so the engine can classify
// without any provisioning step.
package catalog

import (
	"strings"

	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// ─────────────────────────────────────────────────────────────────────────────
// Catalog entry
// ─────────────────────────────────────────────────────────────────────────────

// Entry is one row of the tariff nomenclature: a code at chapter, heading,
// subheading, or national level, with its official title and the search
// keywords attached to it.
type Entry struct {
	ID       int64         `json:"id"`
	Code     ctypes.HSCode `json:"code"`
	Title    string        `json:"title"`
	Keywords []string      `json:"keywords,omitempty"`
	Level    int           `json:"level"`
}

// Validate checks the structural invariants of an entry.
func (e Entry) Validate() error {
	if err := e.Code.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Title) == "" {
		return errors.InvalidParam("catalog entry title must not be empty")
	}
	return nil
}

// Chapter returns the entry's 2-digit chapter.
func (e Entry) Chapter() string { return e.Code.Chapter() }

// SearchText returns the lowercase title+keywords blob lexical and keyword
// matching run against.
func (e Entry) SearchText() string {
	parts := make([]string, 0, 1+len(e.Keywords))
	parts = append(parts, e.Title)
	parts = append(parts, e.Keywords...)
	return strings.ToLower(strings.Join(parts, " "))
}

// KeywordHits counts how many of the given words (each longer than 3 runes)
// occur in the entry's keyword list or title.
func (e Entry) KeywordHits(words []string) int {
	blob := e.SearchText()
	hits := 0
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if len([]rune(w)) <= 3 {
			continue
		}
		if strings.Contains(blob, w) {
			hits++
		}
	}
	return hits
}

// ─────────────────────────────────────────────────────────────────────────────
// National codes
// ─────────────────────────────────────────────────────────────────────────────

// NationalCode is one 10-digit national extension of an HS6 subheading,
// carrying the attribute keywords that select it during refinement.
type NationalCode struct {
	HS6          string        `json:"hs6"`
	Code         ctypes.HSCode `json:"code"`
	Title        string        `json:"title"`
	AttrKeywords []string      `json:"attr_keywords,omitempty"`
}

// Validate checks the structural invariants of a national code row.
func (n NationalCode) Validate() error {
	if len(n.HS6) != 6 {
		return errors.InvalidParam("national code hs6 prefix must be 6 digits")
	}
	if !n.Code.IsNational() {
		return errors.InvalidParam("national code must be 10 digits")
	}
	if n.Code.HS6() != n.HS6 {
		return errors.InvalidParam("national code does not extend its hs6 prefix")
	}
	return nil
}

// AttrHits counts how many attribute keywords occur in the given lowercase
// text.
func (n NationalCode) AttrHits(text string) int {
	text = strings.ToLower(text)
	hits := 0
	for _, kw := range n.AttrKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(text, kw) {
			hits++
		}
	}
	return hits
}

//Personal.AI order the ending
