// Package glucose classifies glucose values and summarizes sets of readings.
package glucose

import "github.com/slickwilli/neoview/models"

// Band limits in mg/dL. Normal is closed on both ends; a value just above
// NormalMax is already Attention, and AlertMin starts the Alert band.
const (
	HypoglycemiaBelow = 70.0
	NormalMax         = 140.0
	AlertMin          = 200.0
)

const (
	ColorHypoglycemia = "#ef4444"
	ColorNormal       = "#22c55e"
	ColorAttention    = "#f59e0b"
	ColorAlert        = "#dc2626"
)

// Classify maps a glucose value to its category and display color.
func Classify(value float64) (models.Category, string) {
	switch {
	case value < HypoglycemiaBelow:
		return models.CategoryHypoglycemia, ColorHypoglycemia
	case value <= NormalMax:
		return models.CategoryNormal, ColorNormal
	case value < AlertMin:
		return models.CategoryAttention, ColorAttention
	default:
		return models.CategoryAlert, ColorAlert
	}
}

// ColorOf returns the display color of a category, or "" for an unknown one.
func ColorOf(c models.Category) string {
	switch c {
	case models.CategoryHypoglycemia:
		return ColorHypoglycemia
	case models.CategoryNormal:
		return ColorNormal
	case models.CategoryAttention:
		return ColorAttention
	case models.CategoryAlert:
		return ColorAlert
	}
	return ""
}
