package entities

// Nutrient is one food record of the exported databank: the per-100g
// nutritional profile keyed by food name. Field order matches the column
// order of the source table and is preserved in the serialized output.
type Nutrient struct {
	Name         string  `json:"name"`
	Calories     float64 `json:"calories"`
	ProteinG     float64 `json:"proteinG"`
	FatG         float64 `json:"fatG"`
	CarbG        float64 `json:"carbG"`
	SodiumMg     float64 `json:"sodiumMg"`
	PotassiumMg  float64 `json:"potassiumMg"`
	PhosphorusMg float64 `json:"phosphorusMg"`
}
