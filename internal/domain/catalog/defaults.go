package catalog

import (
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// DefaultSuspectCodes is the compiled-in review-policy set: historically
// over-predicted national codes whose confidence is capped and whose results
// need strong evidence to skip manual review. 8471300000 is deliberately
// absent here: laptops are pinned by a priority rule and their decisions are
// trusted, so the code only carries the scoring penalty below.
var DefaultSuspectCodes = NewSuspectSet(
	"1905000000",
	"0901110000",
	"7001000000",
	"7207110000",
	"8711100000",
	"2201100000",
)

// DefaultMonopolyCodes is the compiled-in monopoly table: codes that soak up
// a disproportionate share of predictions and get a flat score penalty so a
// specific alternative can still win. It overlaps the suspect set but is a
// separate policy; the scorer merges it with learned penalties by maximum.
var DefaultMonopolyCodes = NewSuspectSet(
	"8471300000",
	"1905000000",
	"0901110000",
	"7001000000",
	"7207110000",
	"8711100000",
	"2201100000",
)

// DefaultPriorityRules is the compiled-in curated rule set. Each rule pins a
// frequently seen good, whose catalog search is noisy, to its settled code.
var DefaultPriorityRules = []PriorityRule{
	{
		Keywords: []string{"laptop", "notebook", "computadora portátil", "computadora portatil"},
		Code:     ctypes.HSCode("8471300000"),
		Title:    "Máquinas automáticas para tratamiento de datos, portátiles, de peso inferior o igual a 10 kg",
	},
	{
		Keywords: []string{"café instantáneo", "cafe instantaneo", "café soluble", "cafe soluble"},
		Code:     ctypes.HSCode("2101110000"),
		Title:    "Extractos, esencias y concentrados de café",
	},
	{
		Keywords: []string{"camiseta de algodón", "camiseta de algodon", "camiseta 100% algodón"},
		Code:     ctypes.HSCode("6109100000"),
		Title:    "Camisetas de punto, de algodón",
	},
	{
		Keywords: []string{"cerveza de malta", "cerveza artesanal"},
		Code:     ctypes.HSCode("2203000000"),
		Title:    "Cerveza de malta",
	},
	{
		Keywords: []string{"fertilizante npk", "abono npk"},
		Category: ctypes.GoodFertilizer,
		Code:     ctypes.HSCode("3105200000"),
		Title:    "Abonos minerales o químicos con nitrógeno, fósforo y potasio",
	},
	{
		Keywords: []string{"semillas de tomate", "semillas de hortaliza"},
		Category: ctypes.GoodSeed,
		Code:     ctypes.HSCode("1209910000"),
		Title:    "Semillas de hortalizas, para siembra",
	},
	{
		Keywords: []string{"ternero vivo", "bovino vivo"},
		Category: ctypes.GoodLiveAnimal,
		Code:     ctypes.HSCode("0102290000"),
		Title:    "Bovinos vivos, los demás",
	},
	{
		Keywords: []string{"smartphone", "teléfono inteligente", "telefono inteligente"},
		Code:     ctypes.HSCode("8517130000"),
		Title:    "Teléfonos inteligentes",
	},
}

//Personal.AI order the ending
