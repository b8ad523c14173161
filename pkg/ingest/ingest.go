// Package ingest turns raw sensor payloads into readings and forwards them to the backend.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/slickwilli/neoview/models"
)

var ErrMalformedPayload = errors.New("malformed sensor payload")

// Payload is what a device notify channel delivers. glucose_value is
// accepted as an alias so backend-shaped bodies pass through as well.
type Payload struct {
	Glucose      *float64 `json:"glucose"`
	GlucoseValue *float64 `json:"glucose_value"`
	Timestamp    string   `json:"timestamp"`
	DeviceID     string   `json:"device_id"`
}

// Sink receives normalized readings; the backend client implements it.
type Sink interface {
	PostReading(ctx context.Context, in models.ReadingInput) (*models.Reading, error)
}

type Adapter struct {
	sink     Sink
	logger   *zap.Logger
	deviceID string
	timeout  time.Duration
	now      func() time.Time
}

type Option func(*Adapter)

// WithDeviceID sets the id used when a payload carries none.
func WithDeviceID(id string) Option {
	return func(a *Adapter) {
		if id != "" {
			a.deviceID = id
		}
	}
}

// WithTimeout bounds each forward to the sink.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

func NewAdapter(sink Sink, logger *zap.Logger, opts ...Option) *Adapter {
	a := &Adapter{
		sink:     sink,
		logger:   logger.Named("ingest"),
		deviceID: models.DefaultDeviceID,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Normalize decodes a payload and fills in the timestamp and device id.
func (a *Adapter) Normalize(raw []byte) (models.ReadingInput, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.ReadingInput{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	value := p.Glucose
	if value == nil {
		value = p.GlucoseValue
	}
	if value == nil {
		return models.ReadingInput{}, fmt.Errorf("%w: missing glucose", ErrMalformedPayload)
	}
	if math.IsNaN(*value) || math.IsInf(*value, 0) {
		return models.ReadingInput{}, fmt.Errorf("%w: glucose is not finite", ErrMalformedPayload)
	}

	in := models.ReadingInput{
		GlucoseValue: value,
		Timestamp:    strings.TrimSpace(p.Timestamp),
		DeviceID:     strings.TrimSpace(p.DeviceID),
	}
	if in.Timestamp == "" {
		in.Timestamp = a.now().UTC().Format(time.RFC3339Nano)
	}
	if in.DeviceID == "" {
		in.DeviceID = a.deviceID
	}
	return in, nil
}

// Handle normalizes and forwards one payload. Failures are logged and the
// payload is dropped; nothing is retried.
func (a *Adapter) Handle(ctx context.Context, raw []byte) {
	in, err := a.Normalize(raw)
	if err != nil {
		a.logger.Warn("dropping sensor payload", zap.ByteString("payload", raw), zap.Error(err))
		return
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	reading, err := a.sink.PostReading(ctx, in)
	if err != nil {
		a.logger.Error(
			"error forwarding glucose reading",
			zap.Float64("glucose_value", *in.GlucoseValue),
			zap.String("device_id", in.DeviceID),
			zap.Error(err),
		)
		return
	}
	a.logger.Info(
		"forwarded glucose reading",
		zap.String("id", reading.ID),
		zap.Float64("glucose_value", reading.GlucoseValue),
		zap.String("category", string(reading.Category)),
		zap.String("device_id", reading.DeviceID),
	)
}
