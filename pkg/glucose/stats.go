package glucose

import (
	"math"

	"github.com/slickwilli/neoview/models"
)

// RoundAverage rounds a mean to one decimal place.
func RoundAverage(avg float64) float64 {
	return math.Round(avg*10) / 10
}

// Aggregate reduces readings into count, rounded mean and per-category counts.
// Categories with no readings are left out of the distribution.
func Aggregate(readings []models.Reading) models.Stats {
	stats := models.Stats{
		CategoryDistribution: models.Distribution{},
	}
	if len(readings) == 0 {
		return stats
	}

	var sum float64
	for _, r := range readings {
		sum += r.GlucoseValue
		stats.CategoryDistribution[r.Category]++
	}
	stats.TotalReadings = len(readings)
	stats.AverageGlucose = RoundAverage(sum / float64(len(readings)))
	return stats
}
