package report

import (
	"errors"
	"strings"

	"healthjournal/internal/analysis"
	"healthjournal/internal/journal"
	"healthjournal/internal/trend"
)

var ErrUnknownMetric = errors.New("metric must be one of sleep, exercise, mental")

type seriesMetric struct {
	value  func(analysis.Metrics) float64
	target *float64
}

var seriesMetrics = map[string]seriesMetric{
	"sleep": {
		value:  func(m analysis.Metrics) float64 { return m.Sleep.Average },
		target: trend.Target(journal.SleepTargetHours),
	},
	"exercise": {
		value:  func(m analysis.Metrics) float64 { return m.Exercise.Average },
		target: trend.Target(journal.ExerciseTargetMinutes),
	},
	"mental": {
		value: func(m analysis.Metrics) float64 { return m.MentalHealth.AverageScore },
	},
}

// MetricTrend is one metric's recent series and its summary.
type MetricTrend struct {
	Metric string        `json:"metric"`
	Window int           `json:"window"`
	Points []trend.Point `json:"points"`
	Result trend.Result  `json:"result"`
}

// Trend reads metric out of the analysis history and summarizes the newest
// window records, oldest first.
func Trend(history []analysis.Record, metric string, window int) (MetricTrend, error) {
	name := strings.ToLower(strings.TrimSpace(metric))
	m, ok := seriesMetrics[name]
	if !ok {
		return MetricTrend{}, ErrUnknownMetric
	}
	points := make([]trend.Point, 0, len(history))
	for _, rec := range history {
		points = append(points, trend.Point{Date: rec.Timestamp, Value: m.value(rec.Metrics)})
	}
	points = trend.Window(points, window)
	return MetricTrend{
		Metric: name,
		Window: window,
		Points: points,
		Result: trend.Analyze(points, m.target),
	}, nil
}
