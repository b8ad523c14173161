package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Category string

const (
	CategoryHypoglycemia Category = "Hypoglycemia"
	CategoryNormal       Category = "Normal"
	CategoryAttention    Category = "Attention"
	CategoryAlert        Category = "Alert"
)

// Categories lists every category from lowest to highest glucose band.
var Categories = []Category{
	CategoryHypoglycemia,
	CategoryNormal,
	CategoryAttention,
	CategoryAlert,
}

// Known reports whether c is one of the four glucose bands.
func (c Category) Known() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

const DefaultDeviceID = "ESP32_001"

// Reading is one stored glucose measurement. Timestamp is kept as the ISO-8601
// string the device or backend assigned; CreatedAt is when the backend received it.
type Reading struct {
	ID           string    `json:"id"`
	GlucoseValue float64   `json:"glucose_value"`
	Category     Category  `json:"category"`
	Timestamp    string    `json:"timestamp"`
	DeviceID     string    `json:"device_id"`
	Color        string    `json:"color"`
	CreatedAt    time.Time `json:"-"`
}

// ReadingInput is the body accepted by POST /api/glucose.
type ReadingInput struct {
	GlucoseValue *float64 `json:"glucose_value" validate:"required"`
	Timestamp    string   `json:"timestamp,omitempty"`
	DeviceID     string   `json:"device_id,omitempty"`
}

func (in *ReadingInput) Validate() error {
	v := validator.New()

	return v.Struct(in)
}
