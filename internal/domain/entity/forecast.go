package entity

import "time"

// ForecastHorizon is the number of monthly steps every model predicts
const ForecastHorizon = 12

// Model names as they appear in forecast responses
const (
	ModelSARIMAX       = "sarimax"
	ModelXGBoost       = "xgboost"
	ModelNeuralProphet = "neural_prophet"
)

// Series is a chronologically ordered monthly time series
type Series struct {
	Dates  []time.Time
	Values []float64
}

// Len returns the number of observations
func (s Series) Len() int {
	return len(s.Values)
}

// Last returns the date of the final observation
func (s Series) Last() time.Time {
	if len(s.Dates) == 0 {
		return time.Time{}
	}
	return s.Dates[len(s.Dates)-1]
}

// ModelForecast is the prediction of a single model
type ModelForecast struct {
	Model  string      `json:"model"`
	Dates  []time.Time `json:"dates"`
	Values []float64   `json:"values"`
}

// LaneForecast groups the predictions of every model for one lane
type LaneForecast struct {
	LaneID       string                   `json:"lane_id"`
	Observations int                      `json:"observations"`
	Models       map[string]ModelForecast `json:"models"`
}
