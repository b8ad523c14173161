package devicelink

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var ErrInvalidTransition = errors.New("invalid link state transition")

var transitions = map[State][]State{
	StateDisconnected: {StateConnecting},
	StateConnecting:   {StateConnected, StateError, StateDisconnected},
	StateConnected:    {StateDisconnected, StateError},
	StateError:        {StateDisconnected, StateConnecting},
}

// CanTransition reports whether from -> to is an allowed edge.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Listener is called after every state change with the previous and new
// state. cause is set when the machine entered StateError.
type Listener func(from, to State, cause error)

// Machine tracks the connection state of one device link. It starts
// disconnected and only moves along the edges CanTransition allows.
type Machine struct {
	mu        sync.Mutex
	state     State
	lastErr   error
	listeners []Listener
}

func NewMachine() *Machine {
	return &Machine{state: StateDisconnected}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the cause of the most recent move into StateError.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Machine) OnChange(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

func (m *Machine) Transition(to State) error {
	return m.transition(to, nil)
}

// Fail moves the machine into StateError and records cause.
func (m *Machine) Fail(cause error) error {
	return m.transition(StateError, cause)
}

func (m *Machine) transition(to State, cause error) error {
	m.mu.Lock()
	from := m.state
	if !CanTransition(from, to) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	m.state = to
	if to == StateError {
		m.lastErr = cause
	}
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l(from, to, cause)
	}
	return nil
}

type machineKey struct{}

func WithMachine(ctx context.Context, m *Machine) context.Context {
	return context.WithValue(ctx, machineKey{}, m)
}

// MachineFrom returns the machine stored by WithMachine, or nil.
func MachineFrom(ctx context.Context) *Machine {
	m, _ := ctx.Value(machineKey{}).(*Machine)
	return m
}
