// Package service internal/application/service/forecast_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/damon-houk/freight-forecast-service/internal/domain/apperror"
	"github.com/damon-houk/freight-forecast-service/internal/domain/entity"
	"github.com/damon-houk/freight-forecast-service/internal/domain/repository"
	domainservice "github.com/damon-houk/freight-forecast-service/internal/domain/service"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/logger"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/metrics"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/middleware"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/worker"
)

// NoLaneDataMessage is returned when the lane filter leaves no rows
const NoLaneDataMessage = "No data found for the specified lane"

// Accepted date layouts, tried in order
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"2006-01",
}

// ForecastService runs every configured model on one lane's history
type ForecastService struct {
	datasets repository.DatasetRepository
	models   []domainservice.Forecaster
	pool     *worker.Pool
	timeout  time.Duration
	metrics  *metrics.Metrics
	logger   logger.Logger
}

// NewForecastService creates a new forecast service. A zero timeout
// leaves the request deadline unchanged; m may be nil.
func NewForecastService(datasets repository.DatasetRepository, models []domainservice.Forecaster, pool *worker.Pool, timeout time.Duration, m *metrics.Metrics, log logger.Logger) *ForecastService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ForecastService{
		datasets: datasets,
		models:   models,
		pool:     pool,
		timeout:  timeout,
		metrics:  m,
		logger:   log,
	}
}

// Forecast predicts the next ForecastHorizon months of the lane with every
// model. Any model failure fails the whole request.
func (s *ForecastService) Forecast(ctx context.Context, laneID string) (*entity.LaneForecast, error) {
	requestID := middleware.GetRequestID(ctx)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Info("Forecasting lane", map[string]interface{}{
		"request_id": requestID,
		"lane_id":    laneID,
		"models":     len(s.models),
	})

	result, err := s.forecast(ctx, laneID)
	if err != nil {
		s.observe(string(apperror.KindOf(err)))
		s.logger.Warn("Forecast failed", map[string]interface{}{
			"request_id": requestID,
			"lane_id":    laneID,
			"kind":       apperror.KindOf(err),
			"error":      err.Error(),
		})
		return nil, err
	}

	s.observe("success")
	s.logger.Info("Forecast completed", map[string]interface{}{
		"request_id":   requestID,
		"lane_id":      laneID,
		"observations": result.Observations,
	})

	return result, nil
}

func (s *ForecastService) forecast(ctx context.Context, laneID string) (*entity.LaneForecast, error) {
	ds, err := s.datasets.Load(ctx, entity.CategoryHistorical)
	if err != nil {
		return nil, err
	}

	series, err := BuildSeries(ds, laneID)
	if err != nil {
		return nil, err
	}

	// the first failure cancels the remaining fits
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]*entity.ModelForecast, len(s.models))
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for i, model := range s.models {
		wg.Add(1)
		go func(i int, model domainservice.Forecaster) {
			defer wg.Done()

			err := s.pool.Do(runCtx, func(jobCtx context.Context) error {
				start := time.Now()
				f, err := model.Forecast(jobCtx, series, entity.ForecastHorizon)
				s.observeFit(model.Name(), time.Since(start))
				if err != nil {
					return err
				}
				if f == nil || len(f.Values) != entity.ForecastHorizon || len(f.Dates) != entity.ForecastHorizon {
					return apperror.New(apperror.ModelFitFailure, model.Name()+" returned an incomplete forecast")
				}
				results[i] = f
				return nil
			})
			if err != nil {
				errOnce.Do(func() {
					firstErr = s.classify(ctx, model.Name(), err)
					cancel()
				})
			}
		}(i, model)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	forecast := &entity.LaneForecast{
		LaneID:       laneID,
		Observations: series.Len(),
		Models:       make(map[string]entity.ModelForecast, len(results)),
	}
	for i, f := range results {
		forecast.Models[s.models[i].Name()] = *f
	}

	return forecast, nil
}

// classify tags a model error. Deadline expiry of the request is a Timeout,
// anything untagged is a model failure.
func (s *ForecastService) classify(ctx context.Context, model string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return apperror.Wrap(apperror.Timeout, "forecast timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Wrap(apperror.ModelFitFailure, fmt.Sprintf("%s model failed", model), err)
}

// BuildSeries filters the dataset to one lane and returns its observations
// sorted by date. Rows with equal dates keep their file order.
func BuildSeries(ds *entity.Dataset, laneID string) (entity.Series, error) {
	if !ds.HasColumn(entity.ColumnLaneID) {
		return entity.Series{}, apperror.New(apperror.NoLaneData, NoLaneDataMessage)
	}

	lane := ds.Filter(func(row int) bool {
		return ds.Value(row, entity.ColumnLaneID) == laneID
	})
	if lane.Len() == 0 {
		return entity.Series{}, apperror.New(apperror.NoLaneData, NoLaneDataMessage)
	}

	for _, column := range []string{entity.ColumnDate, entity.ColumnRate} {
		if !lane.HasColumn(column) {
			return entity.Series{}, apperror.New(apperror.ModelFitFailure,
				fmt.Sprintf("dataset has no %q column", column))
		}
	}

	records := make([]entity.RateRecord, 0, lane.Len())
	for row := 0; row < lane.Len(); row++ {
		date, err := ParseDate(lane.Value(row, entity.ColumnDate))
		if err != nil {
			return entity.Series{}, apperror.Wrap(apperror.ModelFitFailure,
				fmt.Sprintf("row %d has an invalid date", row+1), err)
		}

		rate, ok := parseRate(lane.Value(row, entity.ColumnRate))
		if !ok {
			return entity.Series{}, apperror.New(apperror.ModelFitFailure,
				fmt.Sprintf("row %d has an invalid rate %q", row+1, lane.Value(row, entity.ColumnRate)))
		}

		record := entity.RateRecord{
			LaneID: laneID,
			Date:   date,
			Rate:   rate,
			Month:  lane.Value(row, entity.ColumnMonth),
		}
		if err := record.Validate(); err != nil {
			return entity.Series{}, apperror.Wrap(apperror.ModelFitFailure, "invalid observation", err)
		}
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	series := entity.Series{
		Dates:  make([]time.Time, len(records)),
		Values: make([]float64, len(records)),
	}
	for i, r := range records {
		series.Dates[i] = r.Date
		series.Values[i] = r.Rate
	}

	return series, nil
}

// ParseDate accepts the date layouts commonly found in rate exports
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}

func (s *ForecastService) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.Forecasts.WithLabelValues(outcome).Inc()
	}
}

func (s *ForecastService) observeFit(model string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.ModelFitDuration.WithLabelValues(model).Observe(d.Seconds())
	}
}
