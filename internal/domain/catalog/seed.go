package catalog

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// Seed is the externally-provisioned catalog dataset: the nomenclature
// entries, their legal notes, national extensions, priority rules and the
// synonym table.  The worker's reindex task feeds a Seed into OpenSearch,
// Milvus and Neo4j; an empty or missing file leaves the compiled-in defaults
// in force.
type Seed struct {
	Entries       []Entry        `mapstructure:"entries"`
	Notes         []LegalNote    `mapstructure:"notes"`
	NationalCodes []NationalCode `mapstructure:"national_codes"`
	Rules         []PriorityRule `mapstructure:"priority_rules"`
	Synonyms      SynonymTable   `mapstructure:"synonyms"`
	SuspectCodes  []string       `mapstructure:"suspect_codes"`
}

// LoadSeed reads a YAML seed file.  Codes are normalized, invalid entries
// are rejected, and the synonym table keys are lowercased.
func LoadSeed(path string) (*Seed, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.InvalidParam("seed path must not be empty")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeValidation, "read catalog seed %q", path)
	}

	var seed Seed
	if err := v.Unmarshal(&seed); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeSerialization, "decode catalog seed %q", path)
	}

	if err := seed.normalize(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// SuspectSet converts the seed's suspect code list to a lookup set.
func (s *Seed) SuspectSet() SuspectSet {
	return NewSuspectSet(s.SuspectCodes...)
}

func (s *Seed) normalize() error {
	for i := range s.Entries {
		s.Entries[i].Code = ctypes.NormalizeHSCode(string(s.Entries[i].Code))
		if err := s.Entries[i].Validate(); err != nil {
			return errors.Wrapf(err, errors.ErrCodeValidation,
				"seed entry %d (%s)", i, s.Entries[i].Code)
		}
	}
	for i := range s.Notes {
		if !s.Notes[i].Scope.IsValid() {
			return errors.Newf(errors.ErrCodeValidation,
				"seed note %d has invalid scope %q", i, s.Notes[i].Scope)
		}
	}
	for i := range s.NationalCodes {
		s.NationalCodes[i].Code = ctypes.NormalizeHSCode(string(s.NationalCodes[i].Code))
	}
	for i := range s.Rules {
		s.Rules[i].Code = ctypes.NormalizeHSCode(string(s.Rules[i].Code))
	}

	if s.Synonyms != nil {
		normalized := make(SynonymTable, len(s.Synonyms))
		for k, vals := range s.Synonyms {
			normalized[strings.ToLower(strings.TrimSpace(k))] = vals
		}
		s.Synonyms = normalized
	}
	return nil
}

//Personal.AI order the ending
