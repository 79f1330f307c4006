package classification

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHSCode_DottedInput(t *testing.T) {
	assert.Equal(t, HSCode("847130"), NormalizeHSCode("84.71.30"))
	assert.Equal(t, HSCode("8471300000"), NormalizeHSCode("8471.30.00.00"))
	assert.Equal(t, HSCode("090111"), NormalizeHSCode(" 09 01.11 "))
}

func TestNormalizeHSCode_NoDigits(t *testing.T) {
	assert.Equal(t, HSCode(""), NormalizeHSCode("abc"))
	assert.Equal(t, HSCode(""), NormalizeHSCode(""))
}

func TestHSCode_Decomposition(t *testing.T) {
	c := HSCode("8471300000")
	assert.Equal(t, "84", c.Chapter())
	assert.Equal(t, "8471", c.Heading())
	assert.Equal(t, "847130", c.HS6())
	assert.True(t, c.IsNational())
}

func TestHSCode_Decomposition_ShortCode(t *testing.T) {
	c := HSCode("84")
	assert.Equal(t, "84", c.Chapter())
	assert.Equal(t, "", c.Heading())
	assert.Equal(t, "", c.HS6())
	assert.False(t, c.IsNational())

	assert.Equal(t, "", HSCode("9").Chapter())
}

func TestHSCode_Validate(t *testing.T) {
	assert.NoError(t, HSCode("847130").Validate())
	assert.NoError(t, HSCode("8471").Validate())

	err := HSCode("84").Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shorter than a heading")

	err = HSCode("84x130").Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-digit")
}

func TestGoodCategory_IsValid(t *testing.T) {
	assert.True(t, GoodFinished.IsValid())
	assert.True(t, GoodSeed.IsValid())
	assert.True(t, GoodUnknown.IsValid())
	assert.False(t, GoodCategory("gadget").IsValid())
}

func TestClassifyRequest_Text(t *testing.T) {
	r := ClassifyRequest{Title: "  laptop 14 pulgadas ", Description: " 8GB RAM"}
	assert.Equal(t, "laptop 14 pulgadas 8GB RAM", r.Text())

	empty := ClassifyRequest{}
	assert.Equal(t, "", empty.Text())

	titleOnly := ClassifyRequest{Title: "cafe tostado"}
	assert.Equal(t, "cafe tostado", titleOnly.Text())
}

func TestEvaluationSummary_Accuracy(t *testing.T) {
	s := EvaluationSummary{Total: 50, ExactMatches: 41}
	assert.InDelta(t, 0.82, s.Accuracy(), 1e-9)

	assert.Equal(t, 0.0, EvaluationSummary{}.Accuracy())
}

func TestClassificationResultDTO_JSONFields(t *testing.T) {
	dto := ClassificationResultDTO{
		HS6:          "090111",
		NationalCode: HSCode("0901110000"),
		Confidence:   0.82,
		Method:       MethodRulePipeline,
	}
	data, err := json.Marshal(dto)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "090111", m["hs6"])
	assert.Equal(t, "0901110000", m["national_code"])
	assert.Equal(t, "rule_pipeline", m["method"])
	assert.Contains(t, m, "duration_ms")
}

//Personal.AI order the ending
