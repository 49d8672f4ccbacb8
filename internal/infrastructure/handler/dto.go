package handler

import "github.com/damon-houk/freight-forecast-service/internal/domain/entity"

// DateFormat is the layout of every date in API responses
const DateFormat = "2006-01-02"

// UploadResponse represents the response for the upload endpoint
type UploadResponse struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

// ModelForecastResponse holds one model's parallel date and value arrays
type ModelForecastResponse struct {
	Dates  []string  `json:"dates"`
	Values []float64 `json:"values"`
}

// ForecastResponse represents the response for the forecast endpoint
type ForecastResponse struct {
	SARIMAX       ModelForecastResponse `json:"sarimax"`
	XGBoost       ModelForecastResponse `json:"xgboost"`
	NeuralProphet ModelForecastResponse `json:"neural_prophet"`
}

// LanesResponse represents the response for the lanes endpoint
type LanesResponse struct {
	Lanes []entity.LaneSummary `json:"lanes"`
}

// UploadsResponse represents the response for the uploads listing endpoint
type UploadsResponse struct {
	Uploads []*entity.Upload `json:"uploads"`
}

// HealthResponse represents the response for the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}

func toModelResponse(f entity.ModelForecast) ModelForecastResponse {
	resp := ModelForecastResponse{
		Dates:  make([]string, len(f.Dates)),
		Values: make([]float64, len(f.Values)),
	}
	for i, d := range f.Dates {
		resp.Dates[i] = d.Format(DateFormat)
	}
	copy(resp.Values, f.Values)
	return resp
}

func toForecastResponse(f *entity.LaneForecast) ForecastResponse {
	return ForecastResponse{
		SARIMAX:       toModelResponse(f.Models[entity.ModelSARIMAX]),
		XGBoost:       toModelResponse(f.Models[entity.ModelXGBoost]),
		NeuralProphet: toModelResponse(f.Models[entity.ModelNeuralProphet]),
	}
}
