package trend

import (
	"math"
	"sort"
	"time"
)

type Direction string

const (
	Improving     Direction = "improving"
	Stable        Direction = "stable"
	Declining     Direction = "declining"
	NotEnoughData Direction = "Not enough data"
)

// Label collapses the sentinel onto stable for places that only accept the
// three numeric directions.
func (d Direction) Label() string {
	if d == NotEnoughData || d == "" {
		return string(Stable)
	}
	return string(d)
}

func Valid(raw string) bool {
	switch Direction(raw) {
	case Improving, Stable, Declining:
		return true
	}
	return false
}

type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type Result struct {
	Average          float64   `json:"average"`
	ConsistencyScore int       `json:"consistencyScore"`
	Direction        Direction `json:"direction"`
}

const (
	movingWindow    = 3
	stableThreshold = 0.5
	deviationWeight = 10
)

func Target(v float64) *float64 {
	return &v
}

// Analyze summarizes an ordered series. Points are used in the order given.
func Analyze(points []Point, target *float64) Result {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return Result{
		Average:          mean(values),
		ConsistencyScore: consistency(values, target),
		Direction:        direction(values),
	}
}

// Window returns the last n points after sorting by date.
func Window(points []Point, n int) []Point {
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	if n <= 0 || n >= len(sorted) {
		return sorted
	}
	return sorted[len(sorted)-n:]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func consistency(values []float64, target *float64) int {
	if len(values) < 2 {
		return 0
	}
	var deviation float64
	if target != nil {
		for _, v := range values {
			deviation += math.Abs(v - *target)
		}
		deviation /= float64(len(values))
	} else {
		for i := 1; i < len(values); i++ {
			deviation += math.Abs(values[i] - values[i-1])
		}
		deviation /= float64(len(values) - 1)
	}
	score := math.Round(100 - deviation*deviationWeight)
	return int(math.Max(0, math.Min(100, score)))
}

func direction(values []float64) Direction {
	if len(values) < movingWindow {
		return NotEnoughData
	}
	averages := make([]float64, 0, len(values)-movingWindow+1)
	for i := movingWindow - 1; i < len(values); i++ {
		averages = append(averages, mean(values[i-movingWindow+1:i+1]))
	}
	delta := averages[len(averages)-1] - averages[0]
	switch {
	case math.Abs(delta) < stableThreshold:
		return Stable
	case delta > 0:
		return Improving
	default:
		return Declining
	}
}
