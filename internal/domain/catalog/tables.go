package catalog

import (
	"strings"

	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// ─────────────────────────────────────────────────────────────────────────────
// Chapter-affinity tables
// ─────────────────────────────────────────────────────────────────────────────

// ChapterGroup binds a vocabulary to the chapters goods matching it belong
// to. Groups power three lookups: the search-time chapter filter, the
// mixture/preference narrowing of the rule pipeline, and the coherence check
// of the calibrator.
type ChapterGroup struct {
	Name     string
	Keywords []string
	Chapters []string

	// RestrictKeyword, when non-empty and present in the text, narrows the
	// group to RestrictedChapters (live animals: "vivo" excludes the meat
	// chapters).
	RestrictKeyword    string
	RestrictedChapters []string

	// Tier is the specificity-stage priority of the group's chapters.
	Tier int
}

// DefaultChapterGroups is the compiled-in affinity table.
var DefaultChapterGroups = []ChapterGroup{
	{
		Name:               "live_animals",
		Keywords:           []string{"ternero", "vivo", "animal", "ganado", "bovino", "vaca", "toro"},
		Chapters:           []string{"01", "02", "03", "04", "05"},
		RestrictKeyword:    "vivo",
		RestrictedChapters: []string{"01"},
		Tier:               3,
	},
	{
		Name:     "textiles",
		Keywords: []string{"camiseta", "camisa", "prenda", "ropa", "vestido", "textil", "algodón", "algodon"},
		Chapters: []string{"61", "62", "63"},
		Tier:     3,
	},
	{
		Name:     "machines",
		Keywords: []string{"computadora", "máquina", "maquina", "equipo", "motor", "herramienta"},
		Chapters: []string{"84", "85"},
		Tier:     2,
	},
	{
		Name:     "food",
		Keywords: []string{"café", "cafe", "alimento", "comida", "bebida", "carne"},
		Chapters: []string{"16", "17", "18", "19", "20"},
		Tier:     2,
	},
}

// computingTerms triggers the search-time restriction to the machinery and
// electrical chapters.
var computingTerms = []string{
	"laptop", "notebook", "portatil", "portátil",
	"computadora", "ordenador",
	"mouse", "ratón", "gaming", "teclado", "keyboard",
	"monitor", "pantalla", "auriculares", "headphones",
}

// SearchChapterFilter returns the chapters a catalog search should be
// constrained to for the given lowercase text, or nil when unconstrained.
func SearchChapterFilter(text string) []string {
	text = strings.ToLower(text)
	for _, term := range computingTerms {
		if strings.Contains(text, term) {
			return []string{"84", "85"}
		}
	}
	return nil
}

// PreferredChapters collects the chapters every matched affinity group points
// at for the given lowercase text. An empty result means no preference.
func PreferredChapters(text string) []string {
	text = strings.ToLower(text)
	seen := make(map[string]struct{})
	var out []string
	for _, g := range DefaultChapterGroups {
		if !g.matches(text) {
			continue
		}
		chapters := g.Chapters
		if g.RestrictKeyword != "" && strings.Contains(text, g.RestrictKeyword) {
			chapters = g.RestrictedChapters
		}
		for _, ch := range chapters {
			if _, ok := seen[ch]; !ok {
				seen[ch] = struct{}{}
				out = append(out, ch)
			}
		}
	}
	return out
}

// ChapterTier returns the specificity-stage priority of a chapter: 3 for
// textiles and live animals, 2 for machinery and prepared food, 1 otherwise.
func ChapterTier(chapter string) int {
	for _, g := range DefaultChapterGroups {
		for _, ch := range g.Chapters {
			if ch == chapter {
				return g.Tier
			}
		}
	}
	return 1
}

func (g ChapterGroup) matches(text string) bool {
	for _, kw := range g.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Principal-use coherence
// ─────────────────────────────────────────────────────────────────────────────

// useChapters maps a principal use to the chapters a coherent classification
// is expected to land in. Uses absent from the map accept any chapter.
var useChapters = map[ctypes.PrincipalUse][]string{
	ctypes.UseComputing:    {"84", "85"},
	ctypes.UseTelecom:      {"85"},
	ctypes.UseApparel:      {"61", "62", "63"},
	ctypes.UseFootwear:     {"64"},
	ctypes.UseFood:         {"02", "03", "04", "07", "08", "09", "10", "11", "15", "16", "17", "18", "19", "20", "21"},
	ctypes.UseBeverage:     {"20", "21", "22"},
	ctypes.UseLivestock:    {"01"},
	ctypes.UseAgriculture:  {"06", "07", "08", "10", "12", "31", "82"},
	ctypes.UseGardening:    {"39", "40", "69", "82"},
	ctypes.UseConstruction: {"25", "32", "38", "39", "44", "68", "69", "70", "72", "73", "82", "84"},
	ctypes.UseAutomotive:   {"40", "85", "87"},
	ctypes.UseMedical:      {"30", "38", "40", "63", "90"},
	ctypes.UseChemical:     {"28", "29", "31", "32", "34", "38"},
	ctypes.UseCosmetics:    {"33", "34"},
	ctypes.UseCleaning:     {"34", "38", "39", "96"},
	ctypes.UseFurniture:    {"94"},
	ctypes.UseLighting:     {"85", "94"},
	ctypes.UseToys:         {"95"},
	ctypes.UseSports:       {"95"},
	ctypes.UseOffice:       {"48", "84", "96"},
	ctypes.UseArt:          {"32", "96", "97"},
	ctypes.UseJewelry:      {"71"},
	ctypes.UseHorology:     {"91"},
	ctypes.UseOptics:       {"90"},
	ctypes.UseMachinery:    {"84", "85"},
	ctypes.UseElectrical:   {"85"},
	ctypes.UseMetallurgy:   {"72", "73", "74", "76"},
	ctypes.UseHomeTextile:  {"57", "63"},
	ctypes.UseKitchen:      {"39", "69", "70", "73", "82", "84", "85"},
	ctypes.UsePackaging:    {"39", "48", "63", "70", "73"},
}

// ChapterCoherent reports whether a chapter is plausible for the given
// principal use. Unknown or general uses are always coherent.
func ChapterCoherent(use ctypes.PrincipalUse, chapter string) bool {
	expected, ok := useChapters[use]
	if !ok || len(expected) == 0 {
		return true
	}
	for _, ch := range expected {
		if ch == chapter {
			return true
		}
	}
	return false
}

// categoryChapters maps a good category to the chapters it is permitted to
// land in. Finished goods and unknown categories accept any chapter; the
// narrow categories pin down the goods whose misclassifications hurt most
// (a live animal classified outside chapter 01 is always wrong).
var categoryChapters = map[ctypes.GoodCategory][]string{
	ctypes.GoodLiveAnimal:    {"01"},
	ctypes.GoodSeed:          {"06", "07", "09", "10", "12"},
	ctypes.GoodFertilizer:    {"28", "31"},
	ctypes.GoodRawMaterial:   {"25", "26", "27", "28", "39", "40", "41", "44", "47", "50", "51", "52", "72", "74", "76"},
	ctypes.GoodPartAccessory: {"39", "40", "73", "82", "83", "84", "85", "87", "90", "94"},
}

// CategoryCoherent reports whether a chapter is permitted for the given good
// category. Categories absent from the table accept any chapter.
func CategoryCoherent(cat ctypes.GoodCategory, chapter string) bool {
	permitted, ok := categoryChapters[cat]
	if !ok || len(permitted) == 0 {
		return true
	}
	for _, ch := range permitted {
		if ch == chapter {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Fallback table
// ─────────────────────────────────────────────────────────────────────────────

// FallbackEntry maps a keyword straight to a heading-level code, used only
// when the catalog search returns nothing.
type FallbackEntry struct {
	Keyword string
	Code    ctypes.HSCode
	Title   string
}

// DefaultFallbacks is the compiled-in last-resort table.
var DefaultFallbacks = []FallbackEntry{
	{Keyword: "laptop", Code: "847130", Title: "Máquinas automáticas para tratamiento de datos, portátiles"},
	{Keyword: "portatil", Code: "847130", Title: "Máquinas automáticas para tratamiento de datos, portátiles"},
	{Keyword: "camiseta", Code: "610910", Title: "Camisetas de punto, de algodón"},
	{Keyword: "cafe", Code: "090121", Title: "Café tostado, sin descafeinar"},
	{Keyword: "cerveza", Code: "220300", Title: "Cerveza de malta"},
	{Keyword: "motocicleta", Code: "871150", Title: "Motocicletas con motor de émbolo alternativo"},
	{Keyword: "fertilizante", Code: "310520", Title: "Abonos minerales o químicos con nitrógeno, fósforo y potasio"},
	{Keyword: "semillas", Code: "120991", Title: "Semillas de hortalizas, para siembra"},
	{Keyword: "ternero", Code: "010229", Title: "Bovinos vivos, los demás"},
	{Keyword: "telefono", Code: "851713", Title: "Teléfonos inteligentes"},
}

// FallbackCandidates returns the fallback codes whose keyword occurs in the
// lowercase text, in table order.
func FallbackCandidates(text string) []FallbackEntry {
	text = strings.ToLower(text)
	var out []FallbackEntry
	for _, f := range DefaultFallbacks {
		if strings.Contains(text, f.Keyword) {
			out = append(out, f)
		}
	}
	return out
}

//Personal.AI order the ending
