package models

// DiseaseDetails is the descriptive block attached to a prediction.
type DiseaseDetails struct {
	Description string `json:"description" yaml:"description"`
	Symptoms    string `json:"symptoms,omitempty" yaml:"symptoms,omitempty"`
	Causes      string `json:"causes,omitempty" yaml:"causes,omitempty"`
	Impact      string `json:"impact" yaml:"impact"`
	Control     string `json:"control" yaml:"control"`
}

// PredictionResponse is the JSON body returned by POST /predict.
// Exactly one of Prediction or Error is expected to be populated.
type PredictionResponse struct {
	Prediction       string          `json:"prediction,omitempty" msgpack:"prediction,omitempty"`
	Details          *DiseaseDetails `json:"details,omitempty" msgpack:"details,omitempty"`
	Labels           []string        `json:"labels,omitempty" msgpack:"labels,omitempty"`
	ConfidenceLevels []float64       `json:"confidence_levels,omitempty" msgpack:"confidence_levels,omitempty"`
	Error            string          `json:"error,omitempty" msgpack:"error,omitempty"`
}

// HasPrediction reports whether the response carries a predicted label.
func (r *PredictionResponse) HasPrediction() bool {
	return r != nil && r.Prediction != ""
}

// HasError reports whether the response carries a backend error message.
func (r *PredictionResponse) HasError() bool {
	return r != nil && r.Error != ""
}
