// Package devicelink connects to a glucose sensor's notify channel and
// tracks the connection through an explicit state machine.
package devicelink

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrClosed is returned by Channel.Next once the channel has ended.
var ErrClosed = errors.New("device link closed")

// Link opens the single read/notify channel of a device.
type Link interface {
	Name() string
	Open(ctx context.Context) (Channel, error)
}

// Channel delivers one raw JSON payload per call.
type Channel interface {
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

type Handler func(ctx context.Context, payload []byte)

// Session runs a single connection attempt over a link, moving the machine
// found in ctx (or a fresh one) through connecting, connected and back.
type Session struct {
	link   Link
	logger *zap.Logger
}

func NewSession(link Link, logger *zap.Logger) *Session {
	return &Session{
		link:   link,
		logger: logger.Named("devicelink").With(zap.String("link", link.Name())),
	}
}

// Run blocks until ctx is done or the channel ends. A failure to connect or a
// broken channel leaves the machine in StateError and is returned; ending
// through ctx or a clean close leaves it disconnected.
func (s *Session) Run(ctx context.Context, handle Handler) error {
	m := MachineFrom(ctx)
	if m == nil {
		m = NewMachine()
		ctx = WithMachine(ctx, m)
	}

	if err := m.Transition(StateConnecting); err != nil {
		return err
	}
	s.logger.Info("connecting to device")
	ch, err := s.link.Open(ctx)
	if err != nil {
		_ = m.Fail(err)
		s.logger.Error("error connecting to device", zap.Error(err))
		return fmt.Errorf("open %s: %w", s.link.Name(), err)
	}
	defer ch.Close()
	if err := m.Transition(StateConnected); err != nil {
		return err
	}
	s.logger.Info("device connected")

	for {
		payload, err := ch.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrClosed) {
				s.logger.Info("device disconnected")
				return m.Transition(StateDisconnected)
			}
			_ = m.Fail(err)
			s.logger.Error("error reading from device", zap.Error(err))
			return fmt.Errorf("read %s: %w", s.link.Name(), err)
		}
		handle(ctx, payload)
	}
}
