package aggregate

// MetricContribution pairs one participant's example count with its reported
// metrics, for reporting-only aggregation.
type MetricContribution struct {
	NumExamples int
	Metrics     map[string]float64
}

// WeightedMetrics computes the example-count weighted average of every metric
// key across contributions. Used for round summaries only, never for
// parameter aggregation.
func WeightedMetrics(contribs []MetricContribution) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]float64)

	for _, c := range contribs {
		n := float64(c.NumExamples)
		for k, v := range c.Metrics {
			sums[k] += v * n
			counts[k] += n
		}
	}

	out := make(map[string]float64, len(sums))
	for k, s := range sums {
		if counts[k] > 0 {
			out[k] = s / counts[k]
		}
	}

	return out
}
