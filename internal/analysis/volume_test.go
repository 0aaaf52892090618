package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hr = int64(3600)

func TestVolumeDetector_SpikeOverTrailingMean(t *testing.T) {
	detector := NewVolumeAnomalyDetector(3.0)

	hourly := map[int64]float64{
		0 * hr: 100,
		1 * hr: 100,
		2 * hr: 1200, // 12x the trailing mean of 100
	}

	analysis := detector.Detect(hourly)

	require.True(t, analysis.HasSpike)
	assert.Equal(t, 12.0, analysis.SpikeFactor)
	assert.Equal(t, 2*hr, analysis.SpikeHour)
	assert.Len(t, analysis.Hourly, 3)
}

func TestVolumeDetector_NoSpikeOnGradualGrowth(t *testing.T) {
	detector := NewVolumeAnomalyDetector(3.0)

	hourly := map[int64]float64{
		0 * hr: 100,
		1 * hr: 150,
		2 * hr: 200,
		3 * hr: 300,
	}

	analysis := detector.Detect(hourly)
	assert.False(t, analysis.HasSpike)
	assert.Zero(t, analysis.SpikeFactor)
}

func TestVolumeDetector_FirstSpikeWins(t *testing.T) {
	detector := NewVolumeAnomalyDetector(3.0)

	hourly := map[int64]float64{
		0 * hr: 10,
		1 * hr: 10,
		2 * hr: 40,  // 4x, first spike
		3 * hr: 25,  // trailing mean back down
		4 * hr: 900, // later, larger spike is ignored
	}

	analysis := detector.Detect(hourly)

	require.True(t, analysis.HasSpike)
	assert.Equal(t, 2*hr, analysis.SpikeHour)
	assert.Equal(t, 4.0, analysis.SpikeFactor)
}

func TestVolumeDetector_ZeroTrailingMeanNeverTriggers(t *testing.T) {
	detector := NewVolumeAnomalyDetector(3.0)

	// The series starts from silence. The first active hour has no basis
	// for comparison and must not register as a spike.
	hourly := map[int64]float64{
		0 * hr: 0,
		1 * hr: 0,
		2 * hr: 5000,
	}

	analysis := detector.Detect(hourly)
	assert.False(t, analysis.HasSpike)
}

func TestVolumeDetector_TooFewBuckets(t *testing.T) {
	detector := NewVolumeAnomalyDetector(3.0)

	assert.False(t, detector.Detect(nil).HasSpike)
	assert.False(t, detector.Detect(map[int64]float64{0: 100}).HasSpike)
	assert.False(t, detector.Detect(map[int64]float64{0: 100, hr: 5000}).HasSpike)
}

func TestVolumeDetector_SeriesSortedByHour(t *testing.T) {
	detector := NewVolumeAnomalyDetector(3.0)

	hourly := map[int64]float64{
		3 * hr: 40,
		0 * hr: 10,
		2 * hr: 30,
		1 * hr: 20,
	}

	analysis := detector.Detect(hourly)

	require.Len(t, analysis.Hourly, 4)
	for i := 1; i < len(analysis.Hourly); i++ {
		assert.Greater(t, analysis.Hourly[i].Hour, analysis.Hourly[i-1].Hour)
	}
}
