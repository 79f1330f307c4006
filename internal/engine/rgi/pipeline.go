// Package rgi implements the four-stage rule filter pipeline that narrows
// the assembled candidate list using the nomenclature's general
// interpretation rules: textual/legal-note filtering, incomplete/mixture
// handling, specificity ranking, and same-level comparison. Every stage
// appends a trace step and never grows the candidate set.
package rgi

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	"github.com/turtacn/HSCode-Intelligence/internal/domain/classification"
	enginecommon "github.com/turtacn/HSCode-Intelligence/internal/engine/common"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/features"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// ShortlistSize is how many candidates the specificity stage keeps for
// scoring and audit.
const ShortlistSize = 5

var (
	incompleteKeywords = []string{"incomplet", "desarmad", "sin terminar", "semiarmad"}
	mixtureKeywords    = []string{"mezcla", "mixt", "conjunto", "surtido", "combinad"}
	partsMarkers       = []string{"partes", "accesorios", "repuestos"}
	instantMarkers     = []string{"instantaneo", "soluble", "extracto", "concentrado"}
)

// rawMaterialChapters are the chapters raw-material goods are rewarded for
// landing in during the specificity ranking.
var rawMaterialChapters = map[string]struct{}{
	"25": {}, "26": {}, "27": {}, "28": {}, "39": {}, "40": {},
	"44": {}, "47": {}, "72": {}, "74": {}, "76": {},
}

// Pipeline runs the four interpretation stages over a candidate list.
type Pipeline struct {
	notes  enginecommon.NotesStore
	logger logging.Logger
}

// New creates a Pipeline over the given notes store.
func New(notes enginecommon.NotesStore, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Pipeline{notes: notes, logger: logger}
}

// Run applies the stages in order, appending one trace step per stage, and
// returns the narrowed list, winner first.
func (p *Pipeline) Run(ctx context.Context, text string, fs classification.FeatureSet,
	cands []*classification.Candidate, tr *classification.Trace) []*classification.Candidate {

	norm := features.Normalize(text)
	cands = p.stageTextualNotes(ctx, fs.Tokens, cands, tr)
	cands = p.stageIncompleteMixture(norm, cands, tr)
	cands = p.stageSpecificity(fs, cands, tr)
	cands = p.stageSameLevel(cands, tr)
	return cands
}

// ─────────────────────────────────────────────────────────────────────────────
// Stage 1: textual interpretation / legal notes
// ─────────────────────────────────────────────────────────────────────────────

func (p *Pipeline) stageTextualNotes(ctx context.Context, words []string,
	cands []*classification.Candidate, tr *classification.Trace) []*classification.Candidate {

	notes, err := p.notes.Notes(ctx)
	if err != nil {
		p.logger.Warn("legal notes unavailable, passing candidates through", logging.Err(err))
		tr.Record(ctypes.RuleTextualNotes, "notas legales no disponibles; sin filtrado")
		return cands
	}

	matchedChapters := make(map[string]struct{})
	matchedHeadings := make(map[string]struct{})
	var noteIDs, legalIDs []int64

	for _, n := range notes {
		if !n.Matches(words) {
			continue
		}
		noteIDs = append(noteIDs, n.ID)
		if n.LegalSourceID != 0 {
			legalIDs = append(legalIDs, n.LegalSourceID)
		}
		if ch := n.ChapterCode(); ch != "" {
			matchedChapters[ch] = struct{}{}
		}
		if hd := n.HeadingCode(); hd != "" {
			matchedHeadings[hd] = struct{}{}
		}
	}

	if len(matchedChapters) == 0 && len(matchedHeadings) == 0 {
		tr.Append(classification.TraceStep{
			Rule:     ctypes.RuleTextualNotes,
			Decision: "sin notas aplicables; lista sin cambios",
		})
		return cands
	}

	var filtered []*classification.Candidate
	for _, c := range cands {
		_, chOK := matchedChapters[c.Chapter()]
		_, hdOK := matchedHeadings[c.Heading()]
		if chOK || hdOK {
			c.NoteHits++
			filtered = append(filtered, c)
		}
	}

	tr.Append(classification.TraceStep{
		Rule:          ctypes.RuleTextualNotes,
		Decision:      "filtrado inicial por textos de partida y notas legales",
		AffectedCodes: codesOf(filtered),
		NoteIDs:       noteIDs,
		LegalSourceIDs: legalIDs,
	})
	return filtered
}

// ─────────────────────────────────────────────────────────────────────────────
// Stage 2: incomplete goods and mixtures
// ─────────────────────────────────────────────────────────────────────────────

func (p *Pipeline) stageIncompleteMixture(norm string,
	cands []*classification.Candidate, tr *classification.Trace) []*classification.Candidate {

	var decisions []string
	out := cands

	if preferred := catalog.PreferredChapters(norm); len(preferred) > 0 {
		allowed := make(map[string]struct{}, len(preferred))
		for _, ch := range preferred {
			allowed[ch] = struct{}{}
		}
		var narrowed []*classification.Candidate
		for _, c := range cands {
			if _, ok := allowed[c.Chapter()]; ok {
				narrowed = append(narrowed, c)
			}
		}
		if len(narrowed) > 0 {
			out = narrowed
			decisions = append(decisions,
				fmt.Sprintf("prioriza capitulos semanticamente relevantes: %v", preferred))
		}
	} else if containsAny(norm, mixtureKeywords) && len(cands) > 0 {
		// Mixture without a semantic preference: keep the densest chapter.
		density := make(map[string]int)
		for _, c := range cands {
			density[c.Chapter()]++
		}
		dominant, best := "", -1
		for ch, n := range density {
			if n > best || (n == best && ch > dominant) {
				dominant, best = ch, n
			}
		}
		var narrowed []*classification.Candidate
		for _, c := range cands {
			if c.Chapter() == dominant {
				narrowed = append(narrowed, c)
			}
		}
		out = narrowed
		decisions = append(decisions,
			fmt.Sprintf("prioriza capitulo dominante %s (mezcla/conjunto)", dominant))
	}

	if containsAny(norm, incompleteKeywords) {
		decisions = append(decisions,
			"mercancia incompleta o desarmada se trata como completa si conserva el caracter esencial")
	}

	decision := "sin cambios"
	if len(decisions) > 0 {
		decision = strings.Join(decisions, "; ")
	}
	tr.Append(classification.TraceStep{
		Rule:          ctypes.RuleIncomplete,
		Decision:      decision,
		AffectedCodes: codesOf(out),
	})
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Stage 3: specificity / essential character
// ─────────────────────────────────────────────────────────────────────────────

type rankKey struct {
	hs6Complete int
	chapterTier int
	baseScore   float64
	density     int
	contextual  int
}

func (k rankKey) less(other rankKey) bool {
	if k.hs6Complete != other.hs6Complete {
		return k.hs6Complete < other.hs6Complete
	}
	if k.chapterTier != other.chapterTier {
		return k.chapterTier < other.chapterTier
	}
	if k.baseScore != other.baseScore {
		return k.baseScore < other.baseScore
	}
	if k.density != other.density {
		return k.density < other.density
	}
	return k.contextual < other.contextual
}

func (p *Pipeline) stageSpecificity(fs classification.FeatureSet,
	cands []*classification.Candidate, tr *classification.Trace) []*classification.Candidate {

	if len(cands) == 0 {
		tr.Record(ctypes.RuleSpecificity, "sin candidatos")
		return cands
	}

	density := make(map[string]int)
	for _, c := range cands {
		density[c.Heading()]++
	}

	keys := make(map[*classification.Candidate]rankKey, len(cands))
	for _, c := range cands {
		k := rankKey{
			chapterTier: catalog.ChapterTier(c.Chapter()),
			baseScore:   c.TotalScore,
			density:     density[c.Heading()],
			contextual:  contextualAdjustment(fs, c),
		}
		if len(c.Code.HS6()) == 6 {
			k.hs6Complete = 1
		}
		keys[c] = k
	}

	sorted := make([]*classification.Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return keys[sorted[j]].less(keys[sorted[i]])
	})

	top := sorted
	if len(top) > ShortlistSize {
		top = top[:ShortlistSize]
	}

	// Final tie-break, applied only among candidates whose full rank key
	// equals the leader's: the one last in numbering order leads. Candidates
	// ranked strictly lower never jump ahead here.
	winner := 0
	topKey := keys[top[0]]
	for i := 1; i < len(top); i++ {
		if keys[top[i]] != topKey {
			continue
		}
		if top[i].Code > top[winner].Code {
			winner = i
		}
	}
	top[0], top[winner] = top[winner], top[0]

	tr.Append(classification.TraceStep{
		Rule:          ctypes.RuleSpecificity,
		Decision:      "preferencia por especificidad (HS6), densidad por partida y ultima por numeracion como desempate",
		AffectedCodes: codesOf(top),
	})
	return top
}

// contextualAdjustment scores feature/chapter agreement: -1 for a
// parts/accessories title on a finished good, +1 for raw-material chapters
// on raw materials, +/-1 for instant-preparation agreement, +/-1 for
// principal-use coherence.
func contextualAdjustment(fs classification.FeatureSet, c *classification.Candidate) int {
	adj := 0
	title := features.Normalize(c.Title)
	if fs.GoodCategory == ctypes.GoodFinished && containsAny(title, partsMarkers) {
		adj--
	}
	// An extract/soluble title only fits goods described as instant; roasted
	// beans must not drift into the preparations heading.
	if containsAny(title, instantMarkers) {
		if fs.IsInstant {
			adj++
		} else {
			adj--
		}
	}
	if fs.GoodCategory == ctypes.GoodRawMaterial {
		if _, ok := rawMaterialChapters[c.Chapter()]; ok {
			adj++
		}
	}
	if fs.PrincipalUse != ctypes.UseGeneral {
		if catalog.ChapterCoherent(fs.PrincipalUse, c.Chapter()) {
			adj++
		} else {
			adj--
		}
	}
	return adj
}

// ─────────────────────────────────────────────────────────────────────────────
// Stage 4: same-level comparison
// ─────────────────────────────────────────────────────────────────────────────

func (p *Pipeline) stageSameLevel(cands []*classification.Candidate,
	tr *classification.Trace) []*classification.Candidate {

	if len(cands) == 0 {
		tr.Record(ctypes.RuleSameLevel, "sin candidatos")
		return cands
	}

	heading := cands[0].Heading()
	var same []*classification.Candidate
	for _, c := range cands {
		if c.Heading() == heading {
			same = append(same, c)
		}
	}
	if len(same) == 0 {
		tr.Record(ctypes.RuleSameLevel, "sin cambios (ya en el mismo nivel)")
		return cands
	}

	tr.Append(classification.TraceStep{
		Rule:          ctypes.RuleSameLevel,
		Decision:      fmt.Sprintf("comparacion al mismo nivel de subpartida; restringe a la partida %s", heading),
		AffectedCodes: codesOf(same),
	})
	return same
}

func codesOf(cands []*classification.Candidate) []ctypes.HSCode {
	out := make([]ctypes.HSCode, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Code)
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
