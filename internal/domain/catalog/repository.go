package catalog

import (
	"context"
)

// SearchQuery parameterizes a catalog search: the expanded word list and an
// optional chapter restriction.
type SearchQuery struct {
	Words    []string
	Chapters []string
	Limit    int
}

// EntryRepository defines the persistence contract for nomenclature entries.
type EntryRepository interface {
	Search(ctx context.Context, q SearchQuery) ([]Entry, error)
	GetByCode(ctx context.Context, code string) (*Entry, error)
	Upsert(ctx context.Context, entries []Entry) (int, error)
	Count(ctx context.Context) (int64, error)
}

// NoteRepository defines the persistence contract for legal notes.
type NoteRepository interface {
	All(ctx context.Context) ([]LegalNote, error)
	ByScope(ctx context.Context, scope NoteScope) ([]LegalNote, error)
}

// NationalCodeRepository resolves 6-digit subheadings to their national
// extensions.
type NationalCodeRepository interface {
	ByHS6(ctx context.Context, hs6 string) ([]NationalCode, error)
	Upsert(ctx context.Context, codes []NationalCode) (int, error)
}

// RuleRepository stores curated and learned priority rules.
type RuleRepository interface {
	All(ctx context.Context) ([]PriorityRule, error)
	SaveLearned(ctx context.Context, rules []PriorityRule) (int, error)
}

//Personal.AI order the ending
