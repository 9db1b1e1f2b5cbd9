// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package mcp3w0c provides bit bashed device drivers for MCP3004/3008/3204/3208
// SPI ADCs.
package mcp3w0c

import (
	"errors"
	"sync"
	"time"

	"github.com/warthog618/go-iotkit"
	"github.com/warthog618/go-iotkit/spi"
)

// MCP3w0c reads ADC values from a connected Microchip MCP3xxx family device.
//
// Supported variants are MCP3004/3008/3204/3208.
// The w indicates the width of the device (0 => 10, 2 => 12)
// and the c the number of channels.
type MCP3w0c struct {
	mu    sync.Mutex
	s     *spi.SPI
	width uint
}

// New creates a MCP3w0c on the provided SPI bus.
//
// The ADC takes ownership of the bus.
func New(s *spi.SPI, width uint) *MCP3w0c {
	return &MCP3w0c{s: s, width: width}
}

// NewMCP3008 creates a MCP3008.
func NewMCP3008(s *spi.SPI) *MCP3w0c {
	return New(s, 10)
}

// NewMCP3208 creates a MCP3208.
func NewMCP3208(s *spi.SPI) *MCP3w0c {
	return New(s, 12)
}

// Close releases all resources allocated to the ADC.
func (adc *MCP3w0c) Close() error {
	adc.mu.Lock()
	defer adc.mu.Unlock()
	if adc.s == nil {
		return ErrClosed
	}
	adc.s.Close()
	adc.s = nil
	return nil
}

// Read returns the value of a single channel read from the ADC.
func (adc *MCP3w0c) Read(ch int) (uint16, error) {
	return adc.read(ch, 1)
}

// ReadDifferential returns the value of a differential pair read from the ADC.
func (adc *MCP3w0c) ReadDifferential(ch int) (uint16, error) {
	return adc.read(ch, 0)
}

// Width returns the number of bits in a conversion.
func (adc *MCP3w0c) Width() uint {
	return adc.width
}

// Channel returns a single channel of the ADC as an AnalogIn.
func (adc *MCP3w0c) Channel(ch int) iotkit.AnalogIn {
	return channel{adc: adc, ch: ch}
}

type channel struct {
	adc *MCP3w0c
	ch  int
}

func (c channel) Read() (int, error) {
	v, err := c.adc.Read(c.ch)
	return int(v), err
}

func (c channel) Bits() uint {
	return c.adc.width
}

// ErrClosed indicates the ADC is closed.
var ErrClosed = errors.New("closed")

func (adc *MCP3w0c) read(ch int, sgl int) (uint16, error) {
	adc.mu.Lock()
	defer adc.mu.Unlock()
	if adc.s == nil {
		return 0, ErrClosed
	}
	s := adc.s
	err := s.Ssz.SetValue(1)
	if err != nil {
		return 0, err
	}
	err = s.Sclk.SetValue(0)
	if err != nil {
		return 0, err
	}
	err = s.Mosi.SetValue(1)
	if err != nil {
		return 0, err
	}
	time.Sleep(s.Tclk)
	err = s.Ssz.SetValue(0)
	if err != nil {
		return 0, err
	}

	err = s.ClockOut(1) // Start
	if err != nil {
		return 0, err
	}
	err = s.ClockOut(sgl) // SGL/DIFFZ
	if err != nil {
		return 0, err
	}
	for i := 2; i >= 0; i-- {
		err = s.ClockOut((ch >> uint(i)) & 0x01)
		if err != nil {
			return 0, err
		}
	}
	// mux settling
	time.Sleep(s.Tclk)
	_, err = s.ClockIn() // null bit
	if err != nil {
		return 0, err
	}

	var d uint16
	for i := uint(0); i < adc.width; i++ {
		v, err := s.ClockIn()
		if err != nil {
			return 0, err
		}
		d = d << 1
		if v != 0 {
			d = d | 0x01
		}
	}
	err = s.Ssz.SetValue(1)
	if err != nil {
		return 0, err
	}
	return d, nil
}
