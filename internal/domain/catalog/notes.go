package catalog

import (
	"strings"

	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// ─────────────────────────────────────────────────────────────────────────────
// Legal notes
// ─────────────────────────────────────────────────────────────────────────────

// NoteScope is the nomenclature level a legal note binds to.
type NoteScope string

const (
	ScopeSection    NoteScope = "SECTION"
	ScopeChapter    NoteScope = "CHAPTER"
	ScopeHeading    NoteScope = "HEADING"
	ScopeSubheading NoteScope = "SUBHEADING"
)

// IsValid checks if the NoteScope is one of the supported values.
func (s NoteScope) IsValid() bool {
	switch s {
	case ScopeSection, ScopeChapter, ScopeHeading, ScopeSubheading:
		return true
	default:
		return false
	}
}

// LegalNote is one section/chapter/heading note of the nomenclature's legal
// text. The textual-interpretation stage matches case words against the note
// text; a matched note restricts candidates to the note's scope.
type LegalNote struct {
	ID            int64     `json:"id"`
	Scope         NoteScope `json:"scope"`
	ScopeCode     string    `json:"scope_code"`
	Number        int       `json:"note_number"`
	Text          string    `json:"text"`
	LegalSourceID int64     `json:"legal_source_id,omitempty"`
}

// minNoteHits is how many distinct case words (each longer than 3 runes) must
// occur in a note's text before the note is considered matched.
const minNoteHits = 3

// Matches counts occurrences of the given words in the note text and reports
// whether the note is considered matched. Words of 3 runes or fewer are
// ignored; counting stops once the threshold is reached.
func (n LegalNote) Matches(words []string) bool {
	text := strings.ToLower(n.Text)
	if text == "" {
		return false
	}
	hits := 0
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if len([]rune(w)) <= 3 {
			continue
		}
		if strings.Contains(text, w) {
			hits++
			if hits >= minNoteHits {
				return true
			}
		}
	}
	return false
}

// ChapterCode returns the zero-padded 2-digit chapter a CHAPTER-scoped note
// binds to, or "" for other scopes.
func (n LegalNote) ChapterCode() string {
	if n.Scope != ScopeChapter || n.ScopeCode == "" {
		return ""
	}
	code := n.ScopeCode
	if len(code) == 1 {
		code = "0" + code
	}
	return code[:2]
}

// HeadingCode returns the 4-digit heading a HEADING-scoped note binds to, or
// "" for other scopes.
func (n LegalNote) HeadingCode() string {
	if n.Scope != ScopeHeading || len(n.ScopeCode) < 4 {
		return ""
	}
	return n.ScopeCode[:4]
}

// AppliesTo reports whether the note's scope covers the given code.
func (n LegalNote) AppliesTo(code ctypes.HSCode) bool {
	switch n.Scope {
	case ScopeChapter:
		return n.ChapterCode() == code.Chapter()
	case ScopeHeading:
		return n.HeadingCode() == code.Heading()
	case ScopeSubheading:
		return len(n.ScopeCode) >= 6 && n.ScopeCode[:6] == code.HS6()
	default:
		// Section scope needs the section->chapter mapping; treated as
		// informational only.
		return false
	}
}

//Personal.AI order the ending
