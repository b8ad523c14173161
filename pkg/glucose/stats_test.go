package glucose

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slickwilli/neoview/models"
)

func readingsOf(values ...float64) []models.Reading {
	out := make([]models.Reading, 0, len(values))
	for _, v := range values {
		category, color := Classify(v)
		out = append(out, models.Reading{GlucoseValue: v, Category: category, Color: color})
	}
	return out
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil)

	assert.Equal(t, 0, stats.TotalReadings)
	assert.Equal(t, 0.0, stats.AverageGlucose)
	assert.NotNil(t, stats.CategoryDistribution)
	assert.Empty(t, stats.CategoryDistribution)
}

func TestAggregateAverage(t *testing.T) {
	stats := Aggregate(readingsOf(80, 120))

	assert.Equal(t, 2, stats.TotalReadings)
	assert.Equal(t, 100.0, stats.AverageGlucose)
	assert.Equal(t, models.Distribution{models.CategoryNormal: 2}, stats.CategoryDistribution)
}

func TestAggregateRoundsToOneDecimal(t *testing.T) {
	stats := Aggregate(readingsOf(100, 100, 101))
	assert.Equal(t, 100.3, stats.AverageGlucose)

	stats = Aggregate(readingsOf(65, 95, 180, 220, 120, 75, 160, 45, 250, 90, 185))
	assert.Equal(t, 135.0, stats.AverageGlucose)
}

func TestAggregateDistribution(t *testing.T) {
	values := []float64{65, 95, 180, 220, 120, 75, 160, 45, 250, 90, 185}
	stats := Aggregate(readingsOf(values...))

	assert.Equal(t, len(values), stats.TotalReadings)
	assert.Equal(t, stats.TotalReadings, stats.CategoryDistribution.Total())
	assert.Equal(t, models.Distribution{
		models.CategoryHypoglycemia: 2,
		models.CategoryNormal:       4,
		models.CategoryAttention:    3,
		models.CategoryAlert:        2,
	}, stats.CategoryDistribution)
}

func TestAggregateOmitsAbsentCategories(t *testing.T) {
	stats := Aggregate(readingsOf(250, 300))

	assert.Len(t, stats.CategoryDistribution, 1)
	_, ok := stats.CategoryDistribution[models.CategoryNormal]
	assert.False(t, ok)
}

func TestAggregateCountMatchesInput(t *testing.T) {
	for n := 0; n < 20; n++ {
		values := make([]float64, n)
		for i := range values {
			values[i] = float64(50 + i*13)
		}
		stats := Aggregate(readingsOf(values...))
		assert.Equal(t, n, stats.TotalReadings)
		assert.Equal(t, n, stats.CategoryDistribution.Total())
	}
}
