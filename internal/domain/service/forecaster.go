package service

import (
	"context"

	"github.com/damon-houk/freight-forecast-service/internal/domain/entity"
)

// Forecaster defines the interface of a time-series forecasting model
type Forecaster interface {
	// Name returns the key the model is reported under
	Name() string

	// Forecast fits the model on the series and predicts horizon monthly steps
	Forecast(ctx context.Context, series entity.Series, horizon int) (*entity.ModelForecast, error)
}
