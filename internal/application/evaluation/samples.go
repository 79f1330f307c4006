package evaluation

import (
	"encoding/json"
	"os"

	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
)

// LoadSamples reads a labeled sample set from a JSON file: an array of
// {title, description, expected} objects.
func LoadSamples(path string) ([]Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "read sample file")
	}
	var samples []Sample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "parse sample file")
	}
	if len(samples) == 0 {
		return nil, errors.InvalidParam("sample file contains no samples")
	}
	return samples, nil
}

// DefaultSamples is the compiled-in labeled set used when no sample file is
// given. It spans the chapters the catalog defaults cover so a bare install
// can exercise an end-to-end evaluation.
func DefaultSamples() []Sample {
	return []Sample{
		{Title: "Laptop profesional ultraliviana",
			Description: "Laptop con procesador i7, 16GB RAM y SSD de 1TB",
			Expected:    "847130"},
		{Title: "Café tostado en grano",
			Description: "Café arábica tostado en grano, bolsa de 1kg",
			Expected:    "090121"},
		{Title: "Café instantáneo soluble",
			Description: "Extracto de café soluble liofilizado en frasco",
			Expected:    "210111"},
		{Title: "Camiseta de algodón",
			Description: "Camiseta de punto de algodón para adultos",
			Expected:    "610910"},
		{Title: "Fertilizante NPK granulado",
			Description: "Abono mineral NPK 15-15-15 en sacos de 50kg",
			Expected:    "310520"},
		{Title: "Semillas de tomate para siembra",
			Description: "Semillas híbridas de tomate para uso agrícola",
			Expected:    "120930"},
		{Title: "Motocicleta de trabajo 125cc",
			Description: "Motocicleta con motor de émbolo de 125cc",
			Expected:    "871150"},
		{Title: "Cerveza artesanal de malta",
			Description: "Cerveza de malta artesanal en botella de 330ml",
			Expected:    "220300"},
	}
}

//Personal.AI order the ending
