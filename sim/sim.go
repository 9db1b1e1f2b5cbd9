// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package sim provides simulated peripherals, for running recipes without
// hardware attached and for testing.
package sim

import (
	"errors"
	"math/rand"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// ErrClosed indicates the simulated device has been closed.
var ErrClosed = errors.New("closed")

// Direction indicates how a simulated pin has been used.
type Direction int

const (
	// Undefined pins have been neither read nor written.
	Undefined Direction = iota
	// Input pins have been read.
	Input
	// Output pins have been written.
	Output
)

// Pin is a simulated digital pin.
//
// Values returned by Value may be scripted, else the pin returns its last
// value, whether Set externally or written with SetValue.
type Pin struct {
	mu      sync.Mutex
	name    string
	v       int
	dir     Direction
	script  []int
	history []int
	closed  bool
}

// NewPin creates a simulated pin.
func NewPin(name string) *Pin {
	return &Pin{name: name}
}

// Name returns the name of the pin.
func (p *Pin) Name() string {
	return p.name
}

// Value returns the next scripted value, or the current value if the script
// is exhausted.
func (p *Pin) Value() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, ErrClosed
	}
	if p.dir == Undefined {
		p.dir = Input
	}
	if len(p.script) > 0 {
		p.v = p.script[0]
		p.script = p.script[1:]
	}
	return p.v, nil
}

// SetValue drives the pin.
func (p *Pin) SetValue(v int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.dir = Output
	p.v = v
	p.history = append(p.history, v)
	return nil
}

// Set changes the value seen by readers, as if driven by external hardware.
func (p *Pin) Set(v int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.v = v
}

// Script queues values to be returned by subsequent calls to Value.
func (p *Pin) Script(vv ...int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.script = append(p.script, vv...)
}

// History returns the values written to the pin.
func (p *Pin) History() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.history...)
}

// ClearHistory discards the recorded writes.
func (p *Pin) ClearHistory() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = nil
}

// Level returns the current value and direction of the pin.
func (p *Pin) Level() (int, Direction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.v, p.dir
}

// Close marks the pin closed.
func (p *Pin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.closed = true
	return nil
}

// Analog is a simulated ADC channel.
//
// When wander is enabled, each Read moves the value by a small random step,
// so recipes see a plausible, slowly changing signal.
type Analog struct {
	mu     sync.Mutex
	name   string
	bits   uint
	v      int
	script []int
	wander int
	rnd    *rand.Rand
}

// AnalogOption specifies a construction option for Analog.
type AnalogOption func(*Analog)

// WithWander makes the value drift by up to step counts per read.
func WithWander(step int, seed int64) AnalogOption {
	return func(a *Analog) {
		a.wander = step
		a.rnd = rand.New(rand.NewSource(seed))
	}
}

// WithInitial sets the initial value.
func WithInitial(v int) AnalogOption {
	return func(a *Analog) {
		a.v = v
	}
}

// NewAnalog creates a simulated ADC channel with the given resolution.
//
// The initial value is mid range.
func NewAnalog(name string, bits uint, options ...AnalogOption) *Analog {
	a := &Analog{name: name, bits: bits, v: 1 << (bits - 1)}
	for _, option := range options {
		option(a)
	}
	return a
}

// Name returns the name of the channel.
func (a *Analog) Name() string {
	return a.name
}

// Read returns the next scripted value, or the current value.
func (a *Analog) Read() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.script) > 0 {
		a.v = a.script[0]
		a.script = a.script[1:]
		return a.v, nil
	}
	if a.wander > 0 {
		a.v += a.rnd.Intn(2*a.wander+1) - a.wander
		max := 1<<a.bits - 1
		if a.v < 0 {
			a.v = 0
		}
		if a.v > max {
			a.v = max
		}
	}
	return a.v, nil
}

// Bits returns the resolution of the channel.
func (a *Analog) Bits() uint {
	return a.bits
}

// Set sets the value returned by Read.
func (a *Analog) Set(v int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.v = v
}

// Script queues values to be returned by subsequent calls to Read.
func (a *Analog) Script(vv ...int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.script = append(a.script, vv...)
}

// Value returns the current value without advancing the script.
func (a *Analog) Value() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.v
}

// PWM is a simulated PWM output.
type PWM struct {
	mu   sync.Mutex
	name string
	d    gpio.Duty
	f    physic.Frequency
	n    int
}

// NewPWM creates a simulated PWM output.
func NewPWM(name string) *PWM {
	return &PWM{name: name}
}

// Name returns the name of the output.
func (p *PWM) Name() string {
	return p.name
}

// PWM records the duty and frequency.
func (p *PWM) PWM(duty gpio.Duty, f physic.Frequency) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.d = duty
	p.f = f
	p.n++
	return nil
}

// Setting returns the last duty and frequency set, and the number of times
// PWM has been called.
func (p *PWM) Setting() (gpio.Duty, physic.Frequency, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.d, p.f, p.n
}

// Counter is a simulated edge counter.
type Counter struct {
	mu    sync.Mutex
	name  string
	count uint64
}

// NewCounter creates a simulated edge counter.
func NewCounter(name string) *Counter {
	return &Counter{name: name}
}

// Name returns the name of the counter.
func (c *Counter) Name() string {
	return c.name
}

// Add adds n edges to the count, as if detected on the line.
func (c *Counter) Add(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count += n
}

// Count returns the number of edges since the counter was last reset.
func (c *Counter) Count() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Reset zeroes the count and returns the count prior to the reset.
func (c *Counter) Reset() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.count
	c.count = 0
	return n
}
