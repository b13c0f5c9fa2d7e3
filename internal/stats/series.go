package stats

import "math"

// Mean returns the arithmetic mean of values, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SeriesStats returns the mean, population standard deviation, maximum and
// minimum of values. All are 0 for an empty slice.
func SeriesStats(values []float64) (mean, std, maxV, minV float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = Mean(values)
	maxV, minV = values[0], values[0]
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
		maxV = max(maxV, v)
		minV = min(minV, v)
	}
	std = math.Sqrt(variance / float64(len(values)))
	return mean, std, maxV, minV
}

type PlotPoint struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// AverageCurve averages several per-generation series position by position.
// Series may differ in length: later points average only the series that
// reach them.
func AverageCurve(series [][]float64) []PlotPoint {
	longest := 0
	for _, s := range series {
		longest = max(longest, len(s))
	}
	points := make([]PlotPoint, 0, longest)
	values := make([]float64, 0, len(series))
	for i := 0; i < longest; i++ {
		values = values[:0]
		for _, s := range series {
			if i < len(s) {
				values = append(values, s[i])
			}
		}
		points = append(points, PlotPoint{Index: i, Value: Mean(values)})
	}
	return points
}

// MaxCurve keeps the best value of each position across series.
func MaxCurve(series [][]float64) []PlotPoint {
	longest := 0
	for _, s := range series {
		longest = max(longest, len(s))
	}
	points := make([]PlotPoint, 0, longest)
	for i := 0; i < longest; i++ {
		best := math.Inf(-1)
		for _, s := range series {
			if i < len(s) {
				best = max(best, s[i])
			}
		}
		points = append(points, PlotPoint{Index: i, Value: best})
	}
	return points
}
