package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

const seedYAML = `
entries:
  - code: "0901.21"
    title: "Café tostado sin descafeinar"
    keywords: ["cafe", "tostado"]
    level: 3
  - code: "851712"
    title: "Teléfonos inteligentes"
    level: 3
notes:
  - scope: CHAPTER
    scope_code: "09"
    note_number: 1
national_codes:
  - hs6: "090121"
    code: "0901.21.00.00"
    title: "Café tostado"
priority_rules:
  - keywords: ["smartphone"]
    code: "851712"
    title: "Teléfonos"
synonyms:
  Celular: ["telefono", "movil"]
suspect_codes: ["330499"]
`

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSeed_Success(t *testing.T) {
	seed, err := LoadSeed(writeSeedFile(t, seedYAML))
	require.NoError(t, err)

	require.Len(t, seed.Entries, 2)
	assert.Equal(t, ctypes.HSCode("090121"), seed.Entries[0].Code)
	assert.Equal(t, ctypes.HSCode("0901210000"), seed.NationalCodes[0].Code)
	require.Len(t, seed.Rules, 1)
	assert.Equal(t, ctypes.HSCode("851712"), seed.Rules[0].Code)

	// Synonym keys are lowercased on load.
	_, ok := seed.Synonyms["celular"]
	assert.True(t, ok)

	assert.True(t, seed.SuspectSet().Contains("330499"))
}

func TestLoadSeed_EmptyPath(t *testing.T) {
	_, err := LoadSeed("  ")
	assert.Error(t, err)
}

func TestLoadSeed_MissingFile(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadSeed_InvalidScopeRejected(t *testing.T) {
	bad := `
notes:
  - scope: PLANET
    scope_code: "09"
`
	_, err := LoadSeed(writeSeedFile(t, bad))
	assert.Error(t, err)
}

func TestLoadSeed_EntryWithoutTitleRejected(t *testing.T) {
	bad := `
entries:
  - code: "090121"
    title: ""
`
	_, err := LoadSeed(writeSeedFile(t, bad))
	assert.Error(t, err)
}

//Personal.AI order the ending
