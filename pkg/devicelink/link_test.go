package devicelink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type scriptedLink struct {
	openErr  error
	payloads [][]byte
	endErr   error
}

func (l *scriptedLink) Name() string { return "scripted" }

func (l *scriptedLink) Open(context.Context) (Channel, error) {
	if l.openErr != nil {
		return nil, l.openErr
	}
	return &scriptedChannel{link: l}, nil
}

type scriptedChannel struct {
	link   *scriptedLink
	pos    int
	closed bool
}

func (c *scriptedChannel) Next(context.Context) ([]byte, error) {
	if c.pos >= len(c.link.payloads) {
		return nil, c.link.endErr
	}
	p := c.link.payloads[c.pos]
	c.pos++
	return p, nil
}

func (c *scriptedChannel) Close() error {
	c.closed = true
	return nil
}

func TestSessionDeliversPayloads(t *testing.T) {
	link := &scriptedLink{
		payloads: [][]byte{[]byte(`{"glucose":90}`), []byte(`{"glucose":150}`)},
		endErr:   ErrClosed,
	}
	m := NewMachine()
	ctx := WithMachine(context.Background(), m)

	var got []string
	var states []State
	err := NewSession(link, zaptest.NewLogger(t)).Run(ctx, func(ctx context.Context, payload []byte) {
		got = append(got, string(payload))
		states = append(states, MachineFrom(ctx).State())
	})

	require.NoError(t, err)
	assert.Equal(t, []string{`{"glucose":90}`, `{"glucose":150}`}, got)
	assert.Equal(t, []State{StateConnected, StateConnected}, states)
	assert.Equal(t, StateDisconnected, m.State())
}

func TestSessionOpenFailure(t *testing.T) {
	cause := errors.New("device not found")
	m := NewMachine()
	ctx := WithMachine(context.Background(), m)

	err := NewSession(&scriptedLink{openErr: cause}, zaptest.NewLogger(t)).Run(ctx, func(context.Context, []byte) {
		t.Fatal("handler must not run")
	})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, StateError, m.State())
	assert.Same(t, cause, m.Err())
}

func TestSessionReadFailure(t *testing.T) {
	cause := errors.New("notify channel reset")
	m := NewMachine()
	ctx := WithMachine(context.Background(), m)

	n := 0
	err := NewSession(&scriptedLink{payloads: [][]byte{[]byte(`{}`)}, endErr: cause}, zaptest.NewLogger(t)).
		Run(ctx, func(context.Context, []byte) { n++ })

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, n)
	assert.Equal(t, StateError, m.State())

	// a new attempt is allowed from the error state
	err = NewSession(&scriptedLink{endErr: ErrClosed}, zaptest.NewLogger(t)).Run(ctx, func(context.Context, []byte) {})
	require.NoError(t, err)
	assert.Equal(t, StateDisconnected, m.State())
}

func TestSessionWithSimulator(t *testing.T) {
	sim := NewSimulator(SimulatorOptions{Interval: time.Millisecond, Min: 60, Max: 250, Count: 5, Seed: 42})

	var values []float64
	err := NewSession(sim, zaptest.NewLogger(t)).Run(context.Background(), func(_ context.Context, payload []byte) {
		var p struct {
			Glucose   float64 `json:"glucose"`
			Timestamp string  `json:"timestamp"`
		}
		require.NoError(t, json.Unmarshal(payload, &p))
		_, err := time.Parse(time.RFC3339Nano, p.Timestamp)
		require.NoError(t, err)
		values = append(values, p.Glucose)
	})

	require.NoError(t, err)
	require.Len(t, values, 5)
	for _, v := range values {
		assert.GreaterOrEqual(t, v, 60.0)
		assert.LessOrEqual(t, v, 250.0)
		assert.Equal(t, float64(int(v)), v)
	}
}

func TestSimulatorStopsOnContext(t *testing.T) {
	sim := NewSimulator(SimulatorOptions{Interval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	m := NewMachine()
	ctx = WithMachine(ctx, m)

	done := make(chan error, 1)
	go func() {
		done <- NewSession(sim, zaptest.NewLogger(t)).Run(ctx, func(context.Context, []byte) {})
	}()
	require.Eventually(t, func() bool { return m.State() == StateConnected }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("session did not stop")
	}
	assert.Equal(t, StateDisconnected, m.State())
}

func TestSimulatorClose(t *testing.T) {
	ch, err := NewSimulator(SimulatorOptions{Interval: time.Hour}).Open(context.Background())
	require.NoError(t, err)
	require.NoError(t, ch.Close())
	require.NoError(t, ch.Close())

	_, err = ch.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
