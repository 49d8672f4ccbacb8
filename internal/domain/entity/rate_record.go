package entity

import (
	"errors"
	"time"
)

// RateRecord represents one observation of a lane's freight rate
type RateRecord struct {
	LaneID string    `json:"lane_id"`
	Date   time.Time `json:"date"`
	Rate   float64   `json:"rate"`
	Month  string    `json:"month,omitempty"`
}

// Validate ensures the record can be used as a forecasting observation
func (r *RateRecord) Validate() error {
	if r.LaneID == "" {
		return errors.New("lane id must not be empty")
	}

	if r.Date.IsZero() {
		return errors.New("date must be set")
	}

	return nil
}

// LaneSummary describes one lane found in a dataset
type LaneSummary struct {
	LaneID string `json:"lane_id"`
	Rows   int    `json:"rows"`
}

// HistoricalAnalysis holds the descriptive statistics of a historical dataset
type HistoricalAnalysis struct {
	TotalLanes    int                `json:"total_lanes"`
	DistinctLanes int                `json:"distinct_lanes"`
	AverageRate   float64            `json:"average_rate"`
	MonthlyTrends map[string]float64 `json:"monthly_trends"`
}
