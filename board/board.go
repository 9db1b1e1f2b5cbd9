// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

// Package board resolves pin specs to the devices that provide them.
//
// A Board owns the devices it opens, and closes them all when it is
// closed.  In simulation mode every pin resolves to an in-memory device.
package board

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/warthog618/go-iotkit"
	"github.com/warthog618/go-iotkit/device/grovepi"
	"github.com/warthog618/go-iotkit/sim"
	"github.com/warthog618/go-iotkit/spi"
	"github.com/warthog618/go-iotkit/spi/adc0832"
	"github.com/warthog618/go-iotkit/spi/mcp3w0c"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/sysfs"
)

// SPIConfig identifies the lines used by SPI ADCs.
type SPIConfig struct {
	Chip string
	Sclk int
	Ssz  int
	Mosi int
	Miso int
	Tclk time.Duration
}

// Config controls how a Board resolves pins.
type Config struct {
	// Simulate resolves all pins to simulated devices.
	Simulate bool
	// Bus is the name of the I2C bus, or empty for the first available.
	Bus string
	// SPI identifies the lines used by SPI ADCs.
	SPI SPIConfig
	// Consumer labels requested GPIO lines.
	Consumer string
	Logger   *slog.Logger
}

// Board resolves pin specs to devices.
type Board struct {
	cfg     Config
	logger  *slog.Logger
	mu      sync.Mutex
	sim     *sim.Board
	bus     i2c.BusCloser
	grovepi *grovepi.Board
	adc     adc
	adcKind Kind
	closers []io.Closer
}

type adc interface {
	Channel(ch int) iotkit.AnalogIn
	Close() error
}

// New creates a Board.
func New(cfg Config) *Board {
	b := &Board{cfg: cfg, logger: cfg.Logger}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.cfg.Consumer == "" {
		b.cfg.Consumer = "iotkit"
	}
	if cfg.Simulate {
		b.sim = sim.NewBoard()
	}
	return b
}

// Simulated returns the simulated board, or nil if not simulating.
func (b *Board) Simulated() *sim.Board {
	return b.sim
}

func (b *Board) addCloser(c io.Closer) {
	b.closers = append(b.closers, c)
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

// Close releases all the devices opened by the board, in reverse order.
func (b *Board) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	b.bus = nil
	b.grovepi = nil
	b.adc = nil
	return errors.Join(errs...)
}

// Bus returns the I2C bus, opening it on first use.
func (b *Board) Bus() (i2c.Bus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openBus()
}

func (b *Board) openBus() (i2c.Bus, error) {
	if b.sim != nil {
		return b.sim.Bus(), nil
	}
	if b.bus != nil {
		return b.bus, nil
	}
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	bus, err := i2creg.Open(b.cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("error opening I2C bus '%s': %w", b.cfg.Bus, err)
	}
	b.logger.Debug("opened I2C bus", "bus", bus.String())
	b.bus = bus
	b.addCloser(bus)
	return bus, nil
}

func (b *Board) openGrovePi() (*grovepi.Board, error) {
	if b.grovepi != nil {
		return b.grovepi, nil
	}
	bus, err := b.openBus()
	if err != nil {
		return nil, err
	}
	b.grovepi = grovepi.New(bus)
	return b.grovepi, nil
}

// openADC opens the ADC on the SPI lines.
//
// The lines support a single ADC, so subsequent calls must be for the same
// kind.
func (b *Board) openADC(k Kind) (adc, error) {
	if b.adc != nil {
		if k != b.adcKind {
			return nil, fmt.Errorf("%w: %s conflicts with the %s already on the SPI lines", ErrInvalidSpec, k, b.adcKind)
		}
		return b.adc, nil
	}
	c := b.cfg.SPI
	s, err := spi.New(c.Chip, c.Sclk, c.Ssz, c.Mosi, c.Miso, spi.WithTclk(c.Tclk))
	if err != nil {
		return nil, err
	}
	var a adc
	switch k {
	case MCP3008:
		a = mcp3w0c.NewMCP3008(s)
	case MCP3208:
		a = mcp3w0c.NewMCP3208(s)
	default:
		a = adc0832.New(s)
	}
	b.adc = a
	b.adcKind = k
	b.addCloser(a)
	return a, nil
}

func (b *Board) lineOptions(opts []iotkit.LineOption) []iotkit.LineOption {
	return append([]iotkit.LineOption{iotkit.WithConsumer(b.cfg.Consumer)}, opts...)
}

// DigitalIn returns the input identified by spec.
func (b *Board) DigitalIn(spec string, opts ...iotkit.LineOption) (iotkit.DigitalIn, error) {
	s, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sim != nil {
		return b.sim.Pin(s.String()), nil
	}
	switch s.Kind {
	case Line:
		chip, offset, err := iotkit.ParseLine(s.ID)
		if err != nil {
			return nil, err
		}
		l, err := iotkit.RequestInput(chip, offset, b.lineOptions(opts)...)
		if err != nil {
			return nil, err
		}
		b.addCloser(l)
		return l, nil
	case GrovePi:
		p, err := b.grovePort(s, false)
		if err != nil {
			return nil, err
		}
		gp, err := b.openGrovePi()
		if err != nil {
			return nil, err
		}
		if err := gp.PinMode(p.Num, grovepi.Input); err != nil {
			return nil, err
		}
		return gp.Digital(p.Num), nil
	default:
		return nil, fmt.Errorf("%w: %s is not a digital input", ErrInvalidSpec, s)
	}
}

// DigitalOut returns the output identified by spec, initially set to value.
func (b *Board) DigitalOut(spec string, value int, opts ...iotkit.LineOption) (iotkit.DigitalOut, error) {
	s, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sim != nil {
		p := b.sim.Pin(s.String())
		p.SetValue(value)
		return p, nil
	}
	switch s.Kind {
	case Line:
		chip, offset, err := iotkit.ParseLine(s.ID)
		if err != nil {
			return nil, err
		}
		l, err := iotkit.RequestOutput(chip, offset, value, b.lineOptions(opts)...)
		if err != nil {
			return nil, err
		}
		b.addCloser(l)
		return l, nil
	case GrovePi:
		p, err := b.grovePort(s, false)
		if err != nil {
			return nil, err
		}
		gp, err := b.openGrovePi()
		if err != nil {
			return nil, err
		}
		if err := gp.PinMode(p.Num, grovepi.Output); err != nil {
			return nil, err
		}
		d := gp.Digital(p.Num)
		return d, d.SetValue(value)
	case LED:
		l, err := b.openLED(s.ID)
		if err != nil {
			return nil, err
		}
		o := iotkit.PinOut{PinOut: l}
		return o, o.SetValue(value)
	default:
		return nil, fmt.Errorf("%w: %s is not a digital output", ErrInvalidSpec, s)
	}
}

// AnalogIn returns the ADC channel identified by spec.
func (b *Board) AnalogIn(spec string) (iotkit.AnalogIn, error) {
	s, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sim != nil {
		return b.sim.Analog(s.String(), 10), nil
	}
	switch s.Kind {
	case GrovePi:
		p, err := b.grovePort(s, true)
		if err != nil {
			return nil, err
		}
		gp, err := b.openGrovePi()
		if err != nil {
			return nil, err
		}
		return gp.Analog(p.Num), nil
	case MCP3008, MCP3208, ADC0832:
		a, err := b.openADC(s.Kind)
		if err != nil {
			return nil, err
		}
		return a.Channel(s.Channel), nil
	default:
		return nil, fmt.Errorf("%w: %s is not an analog input", ErrInvalidSpec, s)
	}
}

// PWMOut returns the PWM output identified by spec.
//
// GPIO lines are driven by a SoftPWM.
func (b *Board) PWMOut(spec string) (iotkit.PWMOut, error) {
	s, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sim != nil {
		return b.sim.PWM(s.String()), nil
	}
	switch s.Kind {
	case Line:
		chip, offset, err := iotkit.ParseLine(s.ID)
		if err != nil {
			return nil, err
		}
		l, err := iotkit.RequestOutput(chip, offset, 0, b.lineOptions(nil)...)
		if err != nil {
			return nil, err
		}
		b.addCloser(l)
		p := iotkit.NewSoftPWM(l)
		b.addCloser(p)
		return p, nil
	case GrovePi:
		p, err := b.grovePort(s, false)
		if err != nil {
			return nil, err
		}
		gp, err := b.openGrovePi()
		if err != nil {
			return nil, err
		}
		if err := gp.PinMode(p.Num, grovepi.Output); err != nil {
			return nil, err
		}
		return gp.PWM(p.Num), nil
	case LED:
		l, err := b.openLED(s.ID)
		if err != nil {
			return nil, err
		}
		return iotkit.PinOut{PinOut: l}, nil
	default:
		return nil, fmt.Errorf("%w: %s is not a PWM output", ErrInvalidSpec, s)
	}
}

// Counter returns an edge counter on the input identified by spec.
func (b *Board) Counter(spec string, opts ...iotkit.LineOption) (iotkit.Counter, error) {
	s, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sim != nil {
		return b.sim.Counter(s.String()), nil
	}
	if s.Kind != Line {
		return nil, fmt.Errorf("%w: %s does not support edge detection", ErrInvalidSpec, s)
	}
	chip, offset, err := iotkit.ParseLine(s.ID)
	if err != nil {
		return nil, err
	}
	ec, err := iotkit.NewEdgeCounter(chip, offset, b.lineOptions(opts)...)
	if err != nil {
		return nil, err
	}
	b.addCloser(ec)
	return ec, nil
}

func (b *Board) grovePort(s Spec, analog bool) (grovepi.Port, error) {
	p, err := grovepi.ParsePort(s.ID)
	if err != nil {
		return p, err
	}
	if p.Analog != analog {
		return p, fmt.Errorf("%w: %s is the wrong kind of port", ErrInvalidSpec, s)
	}
	return p, nil
}

func (b *Board) openLED(name string) (*sysfs.LED, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	l, err := sysfs.LEDByName(name)
	if err != nil {
		return nil, err
	}
	b.addCloser(closerFunc(func() error { return l.Out(false) }))
	return l, nil
}
