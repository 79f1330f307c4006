// Package features implements the feature extractor: a deterministic,
// side-effect-free pass that turns normalized case text into the structured
// Feature Set the assembler, rule pipeline, and calibrator consume. Category
// assignment is first-match-wins over an ordered rule table; later rules
// never overwrite an assigned category.
package features

import (
	"regexp"
	"strings"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/classification"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// ─────────────────────────────────────────────────────────────────────────────
// Normalization
// ─────────────────────────────────────────────────────────────────────────────

// accentFolder maps Spanish accented vowels to their base form; ñ is kept as
// a distinct letter.
var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u",
)

// stopWords is the Spanish stop-word set dropped during tokenization.
var stopWords = map[string]struct{}{
	"el": {}, "la": {}, "de": {}, "del": {}, "y": {}, "o": {}, "a": {},
	"en": {}, "un": {}, "una": {}, "es": {}, "son": {}, "para": {},
	"con": {}, "por": {}, "se": {}, "su": {}, "que": {}, "como": {},
	"mas": {}, "muy": {}, "este": {}, "esta": {}, "estos": {}, "estas": {},
	"pero": {}, "si": {}, "no": {}, "al": {}, "lo": {}, "le": {}, "les": {},
	"me": {}, "mi": {}, "tu": {}, "te": {}, "nos": {}, "nuestro": {}, "nuestra": {},
}

var nonWord = regexp.MustCompile(`[^a-z0-9ñ%]+`)

// Normalize lowercases the text and folds Spanish accents.
func Normalize(text string) string {
	return accentFolder.Replace(strings.ToLower(strings.TrimSpace(text)))
}

// Tokenize normalizes the text and returns its tokens in order, stop words
// and tokens of 2 runes or fewer removed.
func Tokenize(text string) []string {
	var out []string
	for _, tok := range nonWord.Split(Normalize(text), -1) {
		if len([]rune(tok)) <= 2 {
			continue
		}
		if _, ok := stopWords[tok]; ok {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Category rules (ordered — first match wins)
// ─────────────────────────────────────────────────────────────────────────────

type categoryRule struct {
	category ctypes.GoodCategory
	use      ctypes.PrincipalUse
	keywords []string
}

// categoryRules is evaluated top to bottom against the normalized text; the
// first rule with a keyword hit assigns both the category and, when non-empty,
// the principal use. Order matters: the narrow agrarian and state-of-good
// rules must fire before the broad finished-good domains.
var categoryRules = []categoryRule{
	{ctypes.GoodSeed, ctypes.UseAgriculture,
		[]string{"semilla", "semillas", "siembra", "germinar", "para sembrar"}},
	{ctypes.GoodFertilizer, ctypes.UseAgriculture,
		[]string{"fertilizante", "abono", "npk", "nutriente para planta"}},
	{ctypes.GoodLiveAnimal, ctypes.UseLivestock,
		[]string{"ternero", "bovino vivo", "animal vivo", "ganado", "vaca viva", "toro vivo", "animales vivos"}},
	{ctypes.GoodPartAccessory, "",
		[]string{"repuesto", "accesorio", "recambio", "pieza de", "parte de", "partes y accesorios"}},
	{ctypes.GoodRawMaterial, "",
		[]string{"en bruto", "materia prima", "sin procesar", "lingote", "a granel", "mineral de"}},
	{ctypes.GoodFinished, ctypes.UseComputing,
		[]string{"computadora", "laptop", "portatil", "notebook", "tablet", "mouse", "teclado", "monitor", "impresora", "ordenador"}},
	{ctypes.GoodFinished, ctypes.UseTelecom,
		[]string{"telefono", "celular", "smartphone", "modem", "router"}},
	{ctypes.GoodFinished, ctypes.UseApparel,
		[]string{"camiseta", "camisa", "pantalon", "vestido", "ropa", "prenda", "chaqueta", "falda"}},
	{ctypes.GoodFinished, ctypes.UseFootwear,
		[]string{"zapato", "zapatos", "calzado", "botas", "sandalias", "zapatillas"}},
	{ctypes.GoodFinished, ctypes.UseBeverage,
		[]string{"cerveza", "vino", "jugo", "refresco", "gaseosa", "agua mineral", "bebida"}},
	{ctypes.GoodFinished, ctypes.UseFood,
		[]string{"cafe", "chocolate", "alimento", "comida", "fruta", "verdura", "carne", "pescado", "cereal", "miel", "galleta", "pan"}},
	{ctypes.GoodFinished, ctypes.UseMedical,
		[]string{"mascarilla", "vendaje", "termometro", "jeringa", "medicamento", "quirurgico"}},
	{ctypes.GoodFinished, ctypes.UseAutomotive,
		[]string{"automovil", "motocicleta", "bicicleta", "neumatico", "vehiculo"}},
	{ctypes.GoodFinished, ctypes.UseMachinery,
		[]string{"maquina", "equipo industrial", "motor", "bomba", "compresor", "turbina", "taladro", "sierra electrica"}},
	{ctypes.GoodFinished, ctypes.UseChemical,
		[]string{"quimico", "acido", "solvente", "polimero", "resina", "adhesivo"}},
	{ctypes.GoodFinished, ctypes.UseToys,
		[]string{"juguete", "muñeca", "puzzle", "rompecabezas", "bloques de construccion"}},
	{ctypes.GoodFinished, ctypes.UseOffice,
		[]string{"lapiz", "boligrafo", "cuaderno", "papeleria"}},
}

// useFallbacks assigns a principal use when no category rule supplied one.
var useFallbacks = []struct {
	use      ctypes.PrincipalUse
	keywords []string
}{
	{ctypes.UseConstruction, []string{"cemento", "ladrillo", "construccion", "hormigon", "yeso"}},
	{ctypes.UseGardening, []string{"jardin", "maceta", "manguera", "podar", "riego"}},
	{ctypes.UseKitchen, []string{"cocina", "sarten", "olla", "cubiertos", "vajilla"}},
	{ctypes.UseCosmetics, []string{"perfume", "cosmetico", "maquillaje", "crema facial"}},
	{ctypes.UseCleaning, []string{"detergente", "jabon", "limpieza", "desinfectante"}},
	{ctypes.UseFurniture, []string{"mueble", "silla", "mesa", "armario", "sofa"}},
	{ctypes.UseLighting, []string{"lampara", "bombilla", "iluminacion", "foco"}},
	{ctypes.UseSports, []string{"pelota", "balon", "deporte", "raqueta", "futbol"}},
	{ctypes.UseJewelry, []string{"collar", "joya", "anillo", "pulsera de oro"}},
	{ctypes.UseHorology, []string{"reloj", "cronometro"}},
	{ctypes.UseOptics, []string{"gafas", "lentes", "microscopio", "binoculares"}},
	{ctypes.UseMetallurgy, []string{"acero", "aluminio", "lingote", "laminado"}},
	{ctypes.UseAgriculture, []string{"cultivo", "cosecha", "agricola", "tractor"}},
	{ctypes.UseArt, []string{"pincel", "pintura artistica", "lienzo", "escultura"}},
	{ctypes.UsePackaging, []string{"envase", "embalaje", "caja de carton", "botella vacia"}},
}

// ─────────────────────────────────────────────────────────────────────────────
// Flags, material, processing level
// ─────────────────────────────────────────────────────────────────────────────

var (
	instantKeywords   = []string{"instantaneo", "soluble", "instant"}
	rtdKeywords       = []string{"listo para beber", "lista para beber", "gaseosa", "refresco", "embotellad"}
	seedKeywords      = []string{"semilla", "siembra", "germinar"}
	fertKeywords      = []string{"fertilizante", "abono", "npk"}
	rawKeywords       = []string{"en bruto", "sin procesar", "materia prima", "crudo", "sin tostar", "a granel"}
	semiKeywords      = []string{"semielaborado", "semiacabado", "sin terminar", "desarmado", "incompleto", "semiarmado"}
)

var materialKeywords = []struct {
	material ctypes.Material
	keywords []string
}{
	{ctypes.MaterialMetal, []string{"acero", "aluminio", "hierro", "cobre", "metal"}},
	{ctypes.MaterialPlastic, []string{"plastico", "polietileno", "pvc"}},
	{ctypes.MaterialWood, []string{"madera", "bambu"}},
	{ctypes.MaterialGlass, []string{"vidrio", "cristal"}},
	{ctypes.MaterialCeramic, []string{"ceramica", "porcelana", "gres"}},
	{ctypes.MaterialTextile, []string{"textil", "algodon", "lana", "tela", "poliester", "seda"}},
	{ctypes.MaterialPaper, []string{"papel", "carton"}},
	{ctypes.MaterialLeather, []string{"cuero", "piel curtida"}},
	{ctypes.MaterialRubber, []string{"caucho", "goma", "latex"}},
}

// ─────────────────────────────────────────────────────────────────────────────
// Extractor
// ─────────────────────────────────────────────────────────────────────────────

// Extract builds the Feature Set for the given raw text. Empty input yields
// the fully-populated default set; extraction never fails.
func Extract(text string) classification.FeatureSet {
	fs := classification.DefaultFeatureSet()
	norm := Normalize(text)
	fs.Tokens = Tokenize(text)
	if norm == "" {
		return fs
	}

	contains := func(kws []string) bool {
		for _, kw := range kws {
			if strings.Contains(norm, kw) {
				return true
			}
		}
		return false
	}

	// Category: first match wins, later rules cannot overwrite.
	for _, rule := range categoryRules {
		if contains(rule.keywords) {
			fs.GoodCategory = rule.category
			if rule.use != "" {
				fs.PrincipalUse = rule.use
			}
			break
		}
	}

	// Residual principal-use fallback.
	if fs.PrincipalUse == ctypes.UseGeneral {
		for _, fb := range useFallbacks {
			if contains(fb.keywords) {
				fs.PrincipalUse = fb.use
				break
			}
		}
	}

	// Independent boolean flags.
	fs.IsInstant = contains(instantKeywords)
	fs.IsReadyToDrink = contains(rtdKeywords)
	fs.IsSeed = contains(seedKeywords)
	fs.IsFertilizer = contains(fertKeywords)

	// Processing level.
	switch {
	case contains(rawKeywords):
		fs.ProcessingLevel = ctypes.ProcessingRaw
	case contains(semiKeywords):
		fs.ProcessingLevel = ctypes.ProcessingSemi
	}
	if fs.GoodCategory == ctypes.GoodRawMaterial {
		fs.ProcessingLevel = ctypes.ProcessingRaw
	}

	// Dominant material: first match in table order.
	for _, m := range materialKeywords {
		if contains(m.keywords) {
			fs.Material = m.material
			break
		}
	}

	return fs
}

//Personal.AI order the ending
