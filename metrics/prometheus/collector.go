package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/summitlabs/go-mmr/metrics"
)

var _ metrics.Metrics = (*Collector)(nil)

func NewCollector() *Collector {
	size := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mmr_size",
		Help: "The total node count of the mmr",
	})
	leafCount := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mmr_leaf_count",
		Help: "The number of leaves pushed",
	})
	peakCount := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mmr_peak_count",
		Help: "The number of current peaks",
	})
	baseOffset := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mmr_pruned_base_offset",
		Help: "The pruning horizon of the backend",
	})
	checkpointCount := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mmr_checkpoint_count",
		Help: "The number of durable checkpoints",
	})
	changeSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mmr_change_size",
		Help: "The number of node hashes in the last committed checkpoint",
	})
	prometheus.MustRegister(
		size,
		leafCount,
		peakCount,
		baseOffset,
		checkpointCount,
		changeSize)

	return &Collector{
		size:            size,
		leafCount:       leafCount,
		peakCount:       peakCount,
		baseOffset:      baseOffset,
		checkpointCount: checkpointCount,
		changeSize:      changeSize,
	}
}

type Collector struct {
	size            prometheus.Gauge
	leafCount       prometheus.Gauge
	peakCount       prometheus.Gauge
	baseOffset      prometheus.Gauge
	checkpointCount prometheus.Gauge
	changeSize      prometheus.Gauge
}

func (c *Collector) Size(size uint64) {
	c.size.Set(float64(size))
}

func (c *Collector) LeafCount(count uint64) {
	c.leafCount.Set(float64(count))
}

func (c *Collector) PeakCount(count int) {
	c.peakCount.Set(float64(count))
}

func (c *Collector) BaseOffset(offset uint64) {
	c.baseOffset.Set(float64(offset))
}

func (c *Collector) CheckpointCount(count int) {
	c.checkpointCount.Set(float64(count))
}

func (c *Collector) ChangeSize(size int) {
	c.changeSize.Set(float64(size))
}
