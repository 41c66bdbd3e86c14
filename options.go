package mmr

import "github.com/summitlabs/go-mmr/metrics"

type metricsSink = metrics.Metrics

// Option is a function that configures a MerkleMountainRange.
type Option func(*MerkleMountainRange)

// EnableMetrics publishes size, leaf count, peak count and pruning gauges to
// the given sink on every mutation.
func EnableMetrics(m metrics.Metrics) Option {
	return func(mmr *MerkleMountainRange) {
		mmr.metrics = m
	}
}
