package glucose

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slickwilli/neoview/models"
)

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		value    float64
		category models.Category
		color    string
	}{
		{0, models.CategoryHypoglycemia, "#ef4444"},
		{45, models.CategoryHypoglycemia, "#ef4444"},
		{69, models.CategoryHypoglycemia, "#ef4444"},
		{69.99, models.CategoryHypoglycemia, "#ef4444"},
		{70, models.CategoryNormal, "#22c55e"},
		{95, models.CategoryNormal, "#22c55e"},
		{140, models.CategoryNormal, "#22c55e"},
		{140.5, models.CategoryAttention, "#f59e0b"},
		{141, models.CategoryAttention, "#f59e0b"},
		{180, models.CategoryAttention, "#f59e0b"},
		{199, models.CategoryAttention, "#f59e0b"},
		{199.9, models.CategoryAttention, "#f59e0b"},
		{200, models.CategoryAlert, "#dc2626"},
		{220, models.CategoryAlert, "#dc2626"},
		{600, models.CategoryAlert, "#dc2626"},
	}

	for _, tc := range tests {
		category, color := Classify(tc.value)
		assert.Equal(t, tc.category, category, "value %v", tc.value)
		assert.Equal(t, tc.color, color, "value %v", tc.value)
		assert.Equal(t, color, ColorOf(category))
	}
}

func TestClassifyIsExhaustive(t *testing.T) {
	for v := -10.0; v <= 400; v += 0.25 {
		category, _ := Classify(v)
		assert.Contains(t, models.Categories, category, "value %v", v)
	}
	category, _ := Classify(math.Inf(-1))
	assert.Equal(t, models.CategoryHypoglycemia, category)
	category, _ = Classify(math.Inf(1))
	assert.Equal(t, models.CategoryAlert, category)
}

func TestColorOfUnknown(t *testing.T) {
	assert.Empty(t, ColorOf("Hipoglicemia"))
}
