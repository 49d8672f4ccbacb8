// Package service internal/application/service/analysis_service.go
package service

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/damon-houk/freight-forecast-service/internal/domain/entity"
	"github.com/damon-houk/freight-forecast-service/internal/domain/repository"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/logger"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/middleware"
	"gonum.org/v1/gonum/stat"
)

// AnalysisService computes descriptive statistics of the historical dataset
type AnalysisService struct {
	datasets repository.DatasetRepository
	logger   logger.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(datasets repository.DatasetRepository, log logger.Logger) *AnalysisService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &AnalysisService{
		datasets: datasets,
		logger:   log,
	}
}

// Analyze loads the selected historical dataset and summarises it
func (s *AnalysisService) Analyze(ctx context.Context) (*entity.HistoricalAnalysis, error) {
	requestID := middleware.GetRequestID(ctx)

	ds, err := s.datasets.Load(ctx, entity.CategoryHistorical)
	if err != nil {
		return nil, err
	}

	analysis := AnalyzeDataset(ds)

	s.logger.Info("Historical analysis computed", map[string]interface{}{
		"request_id":     requestID,
		"source":         ds.Source,
		"total_lanes":    analysis.TotalLanes,
		"distinct_lanes": analysis.DistinctLanes,
		"months":         len(analysis.MonthlyTrends),
	})

	return &analysis, nil
}

// Lanes lists the distinct lanes of the historical dataset with their row counts
func (s *AnalysisService) Lanes(ctx context.Context) ([]entity.LaneSummary, error) {
	ds, err := s.datasets.Load(ctx, entity.CategoryHistorical)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, id := range ds.Column(entity.ColumnLaneID) {
		if id != "" {
			counts[id]++
		}
	}

	lanes := make([]entity.LaneSummary, 0, len(counts))
	for id, n := range counts {
		lanes = append(lanes, entity.LaneSummary{LaneID: id, Rows: n})
	}
	sort.Slice(lanes, func(i, j int) bool { return lanes[i].LaneID < lanes[j].LaneID })

	s.logger.Debug("Lanes listed", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"lanes":      len(lanes),
	})

	return lanes, nil
}

// AnalyzeDataset never fails: missing columns degrade to zero values.
// Empty or non-numeric rate cells are skipped.
func AnalyzeDataset(ds *entity.Dataset) entity.HistoricalAnalysis {
	analysis := entity.HistoricalAnalysis{
		TotalLanes:    ds.Len(),
		MonthlyTrends: map[string]float64{},
	}

	distinct := make(map[string]struct{})
	for _, id := range ds.Column(entity.ColumnLaneID) {
		if id != "" {
			distinct[id] = struct{}{}
		}
	}
	analysis.DistinctLanes = len(distinct)

	if !ds.HasColumn(entity.ColumnRate) {
		return analysis
	}

	var rates []float64
	byMonth := make(map[string][]float64)
	hasMonth := ds.HasColumn(entity.ColumnMonth)

	for row := 0; row < ds.Len(); row++ {
		rate, ok := parseRate(ds.Value(row, entity.ColumnRate))
		if !ok {
			continue
		}
		rates = append(rates, rate)

		if hasMonth {
			if month := ds.Value(row, entity.ColumnMonth); month != "" {
				byMonth[month] = append(byMonth[month], rate)
			}
		}
	}

	if len(rates) > 0 {
		analysis.AverageRate = stat.Mean(rates, nil)
	}
	for month, values := range byMonth {
		analysis.MonthlyTrends[month] = stat.Mean(values, nil)
	}

	return analysis
}

func parseRate(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
