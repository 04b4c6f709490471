package analytics

import (
	"math"
	"sort"
	"time"
)

// Point status labels relative to the normal hemoglobin range.
const (
	StatusLow    = "low"
	StatusNormal = "normal"
	StatusHigh   = "high"
)

// Trend direction labels.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// trendTolerance is the g/dL delta below which first-to-last movement is
// reported as stable.
const trendTolerance = 0.1

// NormalRange is the clinically defined hemoglobin band.
type NormalRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// TrendPoint is one hemoglobin measurement. Hb is a pointer because trend
// responses can contain months without a measurement.
type TrendPoint struct {
	Date   time.Time `json:"date"`
	Hb     *float64  `json:"hb,omitempty"`
	Status string    `json:"status,omitempty"`
}

// Statistics summarizes a hemoglobin series for display.
type Statistics struct {
	Average     float64     `json:"average"`
	Min         float64     `json:"min"`
	Max         float64     `json:"max"`
	Trend       string      `json:"trend"`
	NormalRange NormalRange `json:"normalRange"`
}

// HemoglobinTrend is the trend category payload: the raw series plus the
// statistics derived from it. Statistics are recomputed locally whenever the
// series changes rather than trusted from upstream.
type HemoglobinTrend struct {
	TrendData  []TrendPoint `json:"trendData"`
	Statistics Statistics   `json:"statistics"`
}

// EmptyStatistics is the designated result for an empty series.
func EmptyStatistics(nr NormalRange) Statistics {
	return Statistics{Trend: TrendStable, NormalRange: nr}
}

// ComputeTrendStatistics derives average/min/max and the trend direction from
// a hemoglobin series. Points without a usable hb value (nil or NaN) are
// excluded from every aggregate, not treated as zero. The direction compares
// the first and last chronologically ordered usable points.
func ComputeTrendStatistics(points []TrendPoint, nr NormalRange) Statistics {
	usable := make([]TrendPoint, 0, len(points))
	for _, p := range points {
		if p.Hb == nil || math.IsNaN(*p.Hb) {
			continue
		}
		usable = append(usable, p)
	}
	if len(usable) == 0 {
		return EmptyStatistics(nr)
	}

	sort.SliceStable(usable, func(i, j int) bool { return usable[i].Date.Before(usable[j].Date) })

	sum := 0.0
	min := *usable[0].Hb
	max := min
	for _, p := range usable {
		hb := *p.Hb
		sum += hb
		if hb < min {
			min = hb
		}
		if hb > max {
			max = hb
		}
	}

	delta := *usable[len(usable)-1].Hb - *usable[0].Hb
	trend := TrendStable
	switch {
	case delta > trendTolerance:
		trend = TrendIncreasing
	case delta < -trendTolerance:
		trend = TrendDecreasing
	}

	return Statistics{
		Average:     sum / float64(len(usable)),
		Min:         min,
		Max:         max,
		Trend:       trend,
		NormalRange: nr,
	}
}

// PointStatus classifies a single measurement against the normal range.
func PointStatus(hb float64, nr NormalRange) string {
	switch {
	case hb < nr.Min:
		return StatusLow
	case hb > nr.Max:
		return StatusHigh
	default:
		return StatusNormal
	}
}

// AnnotateStatus stamps each usable point with its status label in place.
func AnnotateStatus(points []TrendPoint, nr NormalRange) {
	for i := range points {
		if points[i].Hb == nil || math.IsNaN(*points[i].Hb) {
			continue
		}
		points[i].Status = PointStatus(*points[i].Hb, nr)
	}
}

// Recompute refreshes the embedded statistics and point statuses after the
// series has been loaded or replaced.
func (t *HemoglobinTrend) Recompute(nr NormalRange) {
	AnnotateStatus(t.TrendData, nr)
	t.Statistics = ComputeTrendStatistics(t.TrendData, nr)
}
