package catalog

import (
	"testing"

	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

func TestEntry_Validate(t *testing.T) {
	good := Entry{Code: "847130", Title: "Máquinas portátiles"}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Entry{Code: "84", Title: "x"}).Validate(); err == nil {
		t.Error("expected error for short code")
	}
	if err := (Entry{Code: "847130", Title: "  "}).Validate(); err == nil {
		t.Error("expected error for blank title")
	}
}

func TestEntry_KeywordHits(t *testing.T) {
	e := Entry{
		Code:     "610910",
		Title:    "Camisetas de punto, de algodón",
		Keywords: []string{"camiseta", "textil", "prenda"},
	}
	words := []string{"camiseta", "algodón", "de", "rojo"}
	// "de" has 3 runes or fewer and must not count; "rojo" too (4 runes but absent).
	if got := e.KeywordHits(words); got != 2 {
		t.Errorf("expected 2 hits, got %d", got)
	}
}

func TestNationalCode_Validate(t *testing.T) {
	n := NationalCode{HS6: "090121", Code: "0901210000", Title: "Café tostado"}
	if err := n.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := NationalCode{HS6: "090121", Code: "8471300000"}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for mismatched prefix")
	}
	short := NationalCode{HS6: "090121", Code: "090121"}
	if err := short.Validate(); err == nil {
		t.Error("expected error for 6-digit national code")
	}
}

func TestNationalCode_AttrHits(t *testing.T) {
	n := NationalCode{
		HS6: "090121", Code: "0901210000",
		AttrKeywords: []string{"tostado", "grano"},
	}
	if got := n.AttrHits("café TOSTADO en grano entero"); got != 2 {
		t.Errorf("expected 2 hits, got %d", got)
	}
	if got := n.AttrHits("café verde"); got != 0 {
		t.Errorf("expected 0 hits, got %d", got)
	}
}

func TestLegalNote_Matches(t *testing.T) {
	n := LegalNote{
		Scope: ScopeChapter, ScopeCode: "09",
		Text: "Este capítulo comprende el café, incluso tostado o descafeinado, en grano o molido",
	}
	// Three distinct words longer than 3 runes must hit.
	if !n.Matches([]string{"café", "tostado", "grano", "rojo"}) {
		t.Error("expected note match with 3 hits")
	}
	if n.Matches([]string{"café", "tostado"}) {
		t.Error("expected no match with only 2 hits")
	}
	// Short words never count.
	if n.Matches([]string{"el", "en", "o", "café", "molido"}) {
		t.Error("short words must not count toward the threshold")
	}
}

func TestLegalNote_ScopeCodes(t *testing.T) {
	ch := LegalNote{Scope: ScopeChapter, ScopeCode: "9"}
	if got := ch.ChapterCode(); got != "09" {
		t.Errorf("expected zero-padded 09, got %q", got)
	}
	hd := LegalNote{Scope: ScopeHeading, ScopeCode: "8471"}
	if got := hd.HeadingCode(); got != "8471" {
		t.Errorf("expected 8471, got %q", got)
	}
	if !ch.AppliesTo(ctypes.HSCode("0901210000")) {
		t.Error("chapter note must apply to codes in its chapter")
	}
	if ch.AppliesTo(ctypes.HSCode("8471300000")) {
		t.Error("chapter note must not apply outside its chapter")
	}
	if !hd.AppliesTo(ctypes.HSCode("8471300000")) {
		t.Error("heading note must apply to codes under its heading")
	}
}

func TestPriorityRule_Matches(t *testing.T) {
	r := PriorityRule{
		Keywords: []string{"laptop", "notebook"},
		Code:     "8471300000",
	}
	if !r.Matches("Laptop gamer 16GB", ctypes.GoodUnknown) {
		t.Error("expected keyword match")
	}
	if r.Matches("bicicleta de montaña", ctypes.GoodUnknown) {
		t.Error("expected no match")
	}

	cat := PriorityRule{Category: ctypes.GoodFertilizer, Code: "3105200000"}
	if !cat.Matches("abono para cultivo", ctypes.GoodFertilizer) {
		t.Error("expected category match")
	}
	if cat.Matches("abono para cultivo", ctypes.GoodUnknown) {
		t.Error("category rule must not fire on mismatched category")
	}
}

func TestSuspectSet_Contains(t *testing.T) {
	s := DefaultSuspectCodes
	if !s.Contains(ctypes.HSCode("1905000000")) {
		t.Error("expected national suspect hit")
	}
	// A 6-digit code matches by prefix of a national suspect.
	if !s.Contains(ctypes.HSCode("190500")) {
		t.Error("expected hs6 prefix suspect hit")
	}
	if s.Contains(ctypes.HSCode("6109100000")) {
		t.Error("unexpected suspect hit")
	}
	// The laptop code lives in the monopoly table only.
	if s.Contains(ctypes.HSCode("8471300000")) {
		t.Error("8471300000 must not be in the review-policy set")
	}
	if !DefaultMonopolyCodes.Contains(ctypes.HSCode("8471300000")) {
		t.Error("8471300000 must stay in the monopoly table")
	}
}

func TestPriorityRule_MatchCount(t *testing.T) {
	r := PriorityRule{
		Keywords: []string{"laptop", "notebook"},
		Code:     "8471300000",
	}
	if got := r.MatchCount("laptop notebook gamer", ctypes.GoodUnknown); got != 2 {
		t.Errorf("expected 2 keyword hits, got %d", got)
	}
	if got := r.MatchCount("bicicleta de montaña", ctypes.GoodUnknown); got != 0 {
		t.Errorf("expected 0 hits, got %d", got)
	}

	cat := PriorityRule{
		Keywords: []string{"abono npk"},
		Category: ctypes.GoodFertilizer,
		Code:     "3105200000",
	}
	if got := cat.MatchCount("abono npk para cultivo", ctypes.GoodFertilizer); got != 2 {
		t.Errorf("category and keyword both count, got %d", got)
	}
}

func TestSynonymTable_Expand(t *testing.T) {
	got := DefaultSynonyms.Expand([]string{"laptop", "Portatil"})
	want := map[string]bool{"laptop": true, "portatil": true, "portátil": true, "notebook": true}
	for w := range want {
		found := false
		for _, g := range got {
			if g == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected expansion to contain %q, got %v", w, got)
		}
	}
	// Input words come first and are not duplicated.
	if got[0] != "laptop" || got[1] != "portatil" {
		t.Errorf("input words must lead the expansion: %v", got)
	}
}

func TestSynonymTable_Expand_OneLevelOnly(t *testing.T) {
	tbl := SynonymTable{
		"a": {"b"},
		"b": {"c"},
	}
	got := tbl.Expand([]string{"a"})
	for _, w := range got {
		if w == "c" {
			t.Error("expansion must not follow synonyms of synonyms")
		}
	}
}

func TestSearchChapterFilter(t *testing.T) {
	if got := SearchChapterFilter("Mouse gaming inalámbrico"); len(got) != 2 || got[0] != "84" {
		t.Errorf("expected computing restriction, got %v", got)
	}
	if got := SearchChapterFilter("Laptop profesional con 16GB RAM"); len(got) != 2 || got[0] != "84" {
		t.Errorf("expected computing restriction for laptops, got %v", got)
	}
	if got := SearchChapterFilter("cerveza de malta"); got != nil {
		t.Errorf("expected no restriction, got %v", got)
	}
}

func TestPreferredChapters_LiveAnimalRestriction(t *testing.T) {
	// "vivo" narrows the livestock group to chapter 01 only.
	got := PreferredChapters("ternero vivo para cría")
	if len(got) != 1 || got[0] != "01" {
		t.Errorf("expected [01], got %v", got)
	}
	// Without "vivo" the meat chapters stay in play.
	got = PreferredChapters("carne de ternero")
	if len(got) < 5 {
		t.Errorf("expected chapters 01-05 plus food, got %v", got)
	}
}

func TestChapterTier(t *testing.T) {
	cases := map[string]int{"61": 3, "01": 3, "84": 2, "18": 2, "72": 1}
	for ch, want := range cases {
		if got := ChapterTier(ch); got != want {
			t.Errorf("chapter %s: expected tier %d, got %d", ch, want, got)
		}
	}
}

func TestChapterCoherent(t *testing.T) {
	if !ChapterCoherent(ctypes.UseComputing, "84") {
		t.Error("computing/84 must be coherent")
	}
	if ChapterCoherent(ctypes.UseComputing, "09") {
		t.Error("computing/09 must be incoherent")
	}
	// Unmapped uses accept anything.
	if !ChapterCoherent(ctypes.UseGeneral, "09") {
		t.Error("general use must accept any chapter")
	}
}

func TestCategoryCoherent(t *testing.T) {
	if !CategoryCoherent(ctypes.GoodLiveAnimal, "01") {
		t.Error("live animal/01 must be coherent")
	}
	if CategoryCoherent(ctypes.GoodLiveAnimal, "84") {
		t.Error("live animal/84 must be incoherent")
	}
	if !CategoryCoherent(ctypes.GoodSeed, "12") {
		t.Error("seed/12 must be coherent")
	}
	if CategoryCoherent(ctypes.GoodFertilizer, "61") {
		t.Error("fertilizer/61 must be incoherent")
	}
	// Finished goods and unknown categories accept anything.
	if !CategoryCoherent(ctypes.GoodFinished, "22") || !CategoryCoherent(ctypes.GoodUnknown, "99") {
		t.Error("unmapped categories must accept any chapter")
	}
}

func TestFallbackCandidates(t *testing.T) {
	got := FallbackCandidates("compré una LAPTOP nueva")
	if len(got) != 1 || got[0].Code != ctypes.HSCode("847130") {
		t.Errorf("expected laptop fallback, got %v", got)
	}
	if got := FallbackCandidates("producto desconocido"); len(got) != 0 {
		t.Errorf("expected no fallback, got %v", got)
	}
}

func TestDefaultPriorityRules_CodesValid(t *testing.T) {
	for _, r := range DefaultPriorityRules {
		if err := r.Code.Validate(); err != nil {
			t.Errorf("rule %q: %v", r.Title, err)
		}
		if !r.Code.IsNational() {
			t.Errorf("rule %q: expected 10-digit code", r.Title)
		}
	}
}

//Personal.AI order the ending
