package analysis

import (
	"sort"

	"solana-pump-monitor/internal/models"
)

// VolumeAnomalyDetector scans the hour-bucketed volume series for the first
// abrupt spike relative to the trailing window.
type VolumeAnomalyDetector struct {
	multiplier float64
	window     int
}

func NewVolumeAnomalyDetector(multiplier float64) *VolumeAnomalyDetector {
	if multiplier <= 1 {
		multiplier = 3.0
	}
	return &VolumeAnomalyDetector{multiplier: multiplier, window: 2}
}

// Detect sorts the buckets by hour and reports the first bucket whose volume
// exceeds multiplier times the mean of the two preceding buckets. Buckets
// need not be contiguous hours; gaps are treated as adjacent entries in the
// sorted series. A zero trailing mean never triggers, so a series that
// starts from silence cannot spike on its first active hour alone.
func (d *VolumeAnomalyDetector) Detect(hourly map[int64]float64) models.VolumeAnalysis {
	series := make([]models.HourlyVolume, 0, len(hourly))
	for hour, vol := range hourly {
		series = append(series, models.HourlyVolume{Hour: hour, Volume: vol})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Hour < series[j].Hour })

	analysis := models.VolumeAnalysis{Hourly: series}
	for i := d.window; i < len(series); i++ {
		var sum float64
		for j := i - d.window; j < i; j++ {
			sum += series[j].Volume
		}
		mean := sum / float64(d.window)
		if mean > 0 && series[i].Volume > d.multiplier*mean {
			analysis.HasSpike = true
			analysis.SpikeFactor = series[i].Volume / mean
			analysis.SpikeHour = series[i].Hour
			break
		}
	}
	return analysis
}
