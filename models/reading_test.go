package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingInputValidate(t *testing.T) {
	zero := 0.0
	assert.NoError(t, (&ReadingInput{GlucoseValue: &zero}).Validate())
	assert.Error(t, (&ReadingInput{DeviceID: "ESP32_001"}).Validate())

	long := &ReadingInput{
		GlucoseValue: &zero,
		Timestamp:    "2025-06-01T08:00:00.123456789+00:00" + strings.Repeat("0", 100),
		DeviceID:     strings.Repeat("ESP32_", 50),
	}
	assert.NoError(t, long.Validate())
}

func TestCategoryKnown(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Known())
	}
	assert.False(t, Category("Hipoglicemia").Known())
}

func TestDistributionOrdered(t *testing.T) {
	d := Distribution{
		CategoryAlert:        2,
		CategoryHypoglycemia: 1,
		CategoryNormal:       4,
	}

	assert.Equal(t, []CategoryCount{
		{Category: CategoryHypoglycemia, Count: 1},
		{Category: CategoryNormal, Count: 4},
		{Category: CategoryAlert, Count: 2},
	}, d.Ordered())
	assert.Equal(t, 7, d.Total())
	assert.Empty(t, Distribution{}.Ordered())
}

func TestDistributionMarshalsInBandOrder(t *testing.T) {
	raw, err := json.Marshal(Distribution{
		CategoryAlert:        1,
		CategoryAttention:    3,
		CategoryHypoglycemia: 2,
		CategoryNormal:       4,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"Hypoglycemia":2,"Normal":4,"Attention":3,"Alert":1}`, string(raw))

	raw, err = json.Marshal(Distribution{CategoryAlert: 1, "Zeta": 5, "Beta": 2})
	require.NoError(t, err)
	assert.Equal(t, `{"Alert":1,"Beta":2,"Zeta":5}`, string(raw))

	raw, err = json.Marshal(Distribution{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(raw))

	var back Distribution
	require.NoError(t, json.Unmarshal([]byte(`{"Normal":4,"Alert":1}`), &back))
	assert.Equal(t, Distribution{CategoryNormal: 4, CategoryAlert: 1}, back)
}

func TestStatsMarshal(t *testing.T) {
	raw, err := json.Marshal(Stats{
		TotalReadings:        3,
		AverageGlucose:       150,
		CategoryDistribution: Distribution{CategoryAlert: 1, CategoryNormal: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"total_readings":3,"average_glucose":150,"category_distribution":{"Normal":2,"Alert":1}}`, string(raw))
}
