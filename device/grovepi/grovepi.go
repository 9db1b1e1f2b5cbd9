// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package grovepi provides a driver for the GrovePi+ add-on board, which
// exposes Grove digital, analog and PWM ports via a microcontroller on the
// I2C bus.
package grovepi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/warthog618/go-iotkit"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// DefaultAddr is the I2C address of the GrovePi+.
const DefaultAddr = 0x04

const (
	cmdDigitalRead  = 1
	cmdDigitalWrite = 2
	cmdAnalogRead   = 3
	cmdAnalogWrite  = 4
	cmdPinMode      = 5

	// first byte of every command packet
	cmdPrefix = 1

	// resolution of the analog inputs
	analogBits = 10
)

// Mode is the direction of a digital port.
type Mode byte

const (
	// Input configures a port as an input.
	Input Mode = 0
	// Output configures a port as an output.
	Output Mode = 1
)

var (
	// ErrInvalidPort indicates a port spec could not be parsed.
	ErrInvalidPort = errors.New("invalid port")
)

// Board is a GrovePi+.
//
// Each command is a write followed, after a delay for the microcontroller to
// respond, by an optional read, and transactions are serialised.
type Board struct {
	mu    sync.Mutex
	d     i2c.Dev
	delay time.Duration
}

// Option modifies the construction of a Board.
type Option func(*Board)

// WithAddr sets the I2C address of the board.
func WithAddr(addr uint16) Option {
	return func(b *Board) {
		b.d.Addr = addr
	}
}

// WithDelay sets the delay between a command and reading its response.
func WithDelay(d time.Duration) Option {
	return func(b *Board) {
		b.delay = d
	}
}

// New creates a Board on the bus.
func New(bus i2c.Bus, options ...Option) *Board {
	b := &Board{
		d:     i2c.Dev{Bus: bus, Addr: DefaultAddr},
		delay: 100 * time.Millisecond,
	}
	for _, option := range options {
		option(b)
	}
	return b
}

func (b *Board) tx(cmd, port, v1, v2 byte, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.d.Write([]byte{cmdPrefix, cmd, port, v1, v2}); err != nil {
		return err
	}
	if len(r) == 0 {
		return nil
	}
	time.Sleep(b.delay)
	return b.d.Tx(nil, r)
}

// PinMode sets the direction of a digital port.
func (b *Board) PinMode(port int, mode Mode) error {
	return b.tx(cmdPinMode, byte(port), byte(mode), 0, nil)
}

// DigitalRead returns the value of a digital port.
func (b *Board) DigitalRead(port int) (int, error) {
	var buf [1]byte
	if err := b.tx(cmdDigitalRead, byte(port), 0, 0, buf[:]); err != nil {
		return 0, err
	}
	return int(buf[0]), nil
}

// DigitalWrite sets the value of a digital port.
func (b *Board) DigitalWrite(port int, v int) error {
	var bv byte
	if v != 0 {
		bv = 1
	}
	return b.tx(cmdDigitalWrite, byte(port), bv, 0, nil)
}

// AnalogRead returns the 10-bit value of an analog port.
func (b *Board) AnalogRead(port int) (int, error) {
	var buf [3]byte
	if err := b.tx(cmdAnalogRead, byte(port), 0, 0, buf[:]); err != nil {
		return 0, err
	}
	return int(buf[1])<<8 | int(buf[2]), nil
}

// AnalogWrite sets the PWM duty of a digital port, in the range 0..255.
func (b *Board) AnalogWrite(port int, v uint8) error {
	return b.tx(cmdAnalogWrite, byte(port), v, 0, nil)
}

// Digital returns the digital port as a line.
func (b *Board) Digital(port int) *Digital {
	return &Digital{b: b, port: port}
}

// Analog returns the analog port as an iotkit.AnalogIn.
func (b *Board) Analog(port int) *Analog {
	return &Analog{b: b, port: port}
}

// PWM returns the digital port as an iotkit.PWMOut.
//
// Only ports 3, 5 and 6 support PWM.
func (b *Board) PWM(port int) *PWM {
	return &PWM{b: b, port: port}
}

// Digital is a digital port on a Board.
type Digital struct {
	b    *Board
	port int
}

// Value returns the current value of the port.
func (d *Digital) Value() (int, error) {
	return d.b.DigitalRead(d.port)
}

// SetValue sets the value of the port.
func (d *Digital) SetValue(v int) error {
	return d.b.DigitalWrite(d.port, v)
}

// Analog is an analog port on a Board.
type Analog struct {
	b    *Board
	port int
}

// Read returns the raw value of the port.
func (a *Analog) Read() (int, error) {
	return a.b.AnalogRead(a.port)
}

// Bits returns the resolution of the port.
func (a *Analog) Bits() uint {
	return analogBits
}

// PWM is a PWM capable port on a Board.
type PWM struct {
	b    *Board
	port int
}

// PWM sets the duty cycle of the port.
//
// The frequency is fixed by the board and f is ignored.
func (p *PWM) PWM(duty gpio.Duty, f physic.Frequency) error {
	return p.b.AnalogWrite(p.port, uint8(iotkit.Fraction(duty)*255+0.5))
}

// Port identifies a port on the board.
type Port struct {
	Analog bool
	Num    int
}

func (p Port) String() string {
	if p.Analog {
		return fmt.Sprintf("A%d", p.Num)
	}
	return fmt.Sprintf("D%d", p.Num)
}

// ParsePort parses a port label, such as "D4" or "A0".
func ParsePort(s string) (Port, error) {
	if len(s) < 2 {
		return Port{}, fmt.Errorf("%w: '%s'", ErrInvalidPort, s)
	}
	var p Port
	switch strings.ToUpper(s[:1]) {
	case "A":
		p.Analog = true
	case "D":
	default:
		return Port{}, fmt.Errorf("%w: '%s'", ErrInvalidPort, s)
	}
	n, err := strconv.ParseUint(s[1:], 10, 8)
	if err != nil {
		return Port{}, fmt.Errorf("%w: '%s'", ErrInvalidPort, s)
	}
	p.Num = int(n)
	return p, nil
}
