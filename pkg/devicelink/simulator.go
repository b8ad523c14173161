package devicelink

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"sync"
	"time"
)

type SimulatorOptions struct {
	Interval time.Duration
	Min, Max float64
	// Count stops the channel after that many payloads; zero never stops.
	Count int
	Seed  int64
}

// Simulator stands in for a sensor, emitting whole mg/dL values drawn
// uniformly from [Min, Max] once per Interval.
type Simulator struct {
	opts SimulatorOptions
	now  func() time.Time
}

type simulatedPayload struct {
	Glucose   float64 `json:"glucose"`
	Timestamp string  `json:"timestamp"`
}

func NewSimulator(opts SimulatorOptions) *Simulator {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.Max < opts.Min {
		opts.Min, opts.Max = opts.Max, opts.Min
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	return &Simulator{opts: opts, now: time.Now}
}

func (s *Simulator) Name() string { return "simulator" }

func (s *Simulator) Open(ctx context.Context) (Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &simulatorChannel{
		sim:    s,
		rng:    rand.New(rand.NewSource(s.opts.Seed)),
		ticker: time.NewTicker(s.opts.Interval),
		done:   make(chan struct{}),
	}, nil
}

type simulatorChannel struct {
	sim     *Simulator
	rng     *rand.Rand
	ticker  *time.Ticker
	sent    int
	done    chan struct{}
	closing sync.Once
}

func (c *simulatorChannel) Next(ctx context.Context) ([]byte, error) {
	if c.sim.opts.Count > 0 && c.sent >= c.sim.opts.Count {
		return nil, ErrClosed
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	case <-c.ticker.C:
	}

	lo, hi := c.sim.opts.Min, c.sim.opts.Max
	value := math.Round(lo + c.rng.Float64()*(hi-lo))
	c.sent++
	return json.Marshal(simulatedPayload{
		Glucose:   value,
		Timestamp: c.sim.now().UTC().Format(time.RFC3339Nano),
	})
}

func (c *simulatorChannel) Close() error {
	c.closing.Do(func() {
		c.ticker.Stop()
		close(c.done)
	})
	return nil
}
