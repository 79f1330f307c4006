// Package assemble implements the candidate assembler: priority-rule
// evaluation, synonym-expanded catalog search with domain chapter filters,
// and de-duplicating merge. The assembler creates candidates; it never
// scores or filters beyond the search itself.
package assemble

import (
	"context"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	"github.com/turtacn/HSCode-Intelligence/internal/domain/classification"
	enginecommon "github.com/turtacn/HSCode-Intelligence/internal/engine/common"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/features"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
)

// DefaultCandidateLimit caps the catalog search result size.
const DefaultCandidateLimit = 50

// Assembler builds the initial candidate list for a case.
type Assembler struct {
	searcher enginecommon.CatalogSearcher
	rules    []catalog.PriorityRule
	synonyms catalog.SynonymTable
	limit    int
	logger   logging.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithRules overrides the priority-rule table.
func WithRules(rules []catalog.PriorityRule) Option {
	return func(a *Assembler) { a.rules = rules }
}

// WithSynonyms overrides the synonym-expansion table.
func WithSynonyms(t catalog.SynonymTable) Option {
	return func(a *Assembler) { a.synonyms = t }
}

// WithLimit overrides the catalog search limit.
func WithLimit(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.limit = n
		}
	}
}

// New creates an Assembler over the given searcher, defaulting to the
// compiled-in rule and synonym tables.
func New(searcher enginecommon.CatalogSearcher, logger logging.Logger, opts ...Option) *Assembler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	a := &Assembler{
		searcher: searcher,
		rules:    catalog.DefaultPriorityRules,
		synonyms: catalog.DefaultSynonyms,
		limit:    DefaultCandidateLimit,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble produces the de-duplicated candidate list for the given text and
// feature set. Empty text yields an empty list; a search failure degrades to
// priority-rule candidates only.
func (a *Assembler) Assemble(ctx context.Context, text string, fs classification.FeatureSet) []*classification.Candidate {
	norm := features.Normalize(text)
	if norm == "" {
		return nil
	}

	seen := make(map[string]*classification.Candidate)
	var out []*classification.Candidate
	add := func(c *classification.Candidate) {
		key := string(c.Code)
		prev, ok := seen[key]
		if !ok {
			seen[key] = c
			out = append(out, c)
			return
		}
		// Duplicate code: keep the first occurrence but fold in the later
		// one's evidence, so a priority candidate that also surfaces in the
		// search keeps its hit counters.
		if c.KeywordHits > prev.KeywordHits {
			prev.KeywordHits = c.KeywordHits
		}
		if c.NoteHits > prev.NoteHits {
			prev.NoteHits = c.NoteHits
		}
		if c.PriorityRule {
			prev.PriorityRule = true
		}
		if len(prev.Keywords) == 0 {
			prev.Keywords = c.Keywords
		}
	}

	// 1. Priority rules: any keyword or category match injects the rule's
	// code with the fixed elevated base score. Matched triggers count as
	// keyword evidence.
	for _, r := range a.rules {
		hits := r.MatchCount(norm, fs.GoodCategory)
		if hits == 0 {
			continue
		}
		add(&classification.Candidate{
			Code:         r.Code,
			Title:        r.Title,
			Source:       classification.SourcePriorityRule,
			TotalScore:   catalog.PriorityRuleBaseScore,
			KeywordHits:  hits,
			PriorityRule: true,
		})
	}

	// 2. Catalog search over the synonym-expanded word union, constrained by
	// the inferred domain chapter filter.
	words := a.synonyms.Expand(fs.Tokens)
	if len(words) == 0 {
		words = a.synonyms.Expand([]string{norm})
	}
	entries, err := a.searcher.Search(ctx, catalog.SearchQuery{
		Words:    words,
		Chapters: catalog.SearchChapterFilter(norm),
		Limit:    a.limit,
	})
	if err != nil {
		a.logger.Warn("catalog search failed, proceeding with priority candidates only",
			logging.Err(err))
		entries = nil
	}

	// 3. Merge per code, folding duplicate evidence into the first entry.
	for _, e := range entries {
		add(&classification.Candidate{
			Code:        e.Code,
			Title:       e.Title,
			Keywords:    e.Keywords,
			Source:      classification.SourceCatalogSearch,
			KeywordHits: e.KeywordHits(words),
		})
	}

	return out
}

// Fallback maps the text through the compiled-in keyword-to-code table; it
// is the deterministic last resort when the pipeline empties the candidate
// set.
func (a *Assembler) Fallback(text string) []*classification.Candidate {
	var out []*classification.Candidate
	for _, f := range catalog.FallbackCandidates(features.Normalize(text)) {
		out = append(out, &classification.Candidate{
			Code:   f.Code,
			Title:  f.Title,
			Source: classification.SourceFallbackTable,
		})
	}
	return out
}

//Personal.AI order the ending
