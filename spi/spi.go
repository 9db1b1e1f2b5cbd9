// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package spi provides bit bashed SPI using four digital pins.
//
// This is the basis for bit bashed SPI interfaces using GPIO pins. It is not
// related to the SPI device drivers provided by Linux.
package spi

import (
	"io"
	"time"

	"github.com/warthog618/go-iotkit"
)

// SPI represents a device connected an SPI bus using 4 digital pins.
type SPI struct {
	// time between clock edges (i.e. half the cycle time)
	Tclk    time.Duration
	Sclk    iotkit.DigitalOut
	Ssz     iotkit.DigitalOut
	Mosi    iotkit.DigitalOut
	Miso    iotkit.DigitalIn
	closers []io.Closer
	cpol    int
	cpha    int
}

// NewFromPins creates a SPI from pins that have already been requested.
//
// The SPI takes ownership of any pins that implement io.Closer.
func NewFromPins(sclk, ssz, mosi iotkit.DigitalOut, miso iotkit.DigitalIn, options ...Option) (*SPI, error) {
	s := SPI{Sclk: sclk, Ssz: ssz, Mosi: mosi, Miso: miso}
	for _, p := range []interface{}{sclk, ssz, mosi, miso} {
		if c, ok := p.(io.Closer); ok {
			s.closers = append(s.closers, c)
		}
	}
	s.applyOptions(options)
	// hold SPI reset until needed...
	if err := s.Ssz.SetValue(1); err != nil {
		return nil, err
	}
	if err := s.Sclk.SetValue(s.cpol); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *SPI) applyOptions(options []Option) {
	for _, option := range options {
		option(s)
	}
	if s.Tclk == 0 {
		// default to 1MHz full cycle.
		s.Tclk = 500 * time.Nanosecond
	}
}

// Close releases allocated resources.
func (s *SPI) Close() {
	for _, c := range s.closers {
		c.Close()
	}
	s.closers = nil
}

// ClockIn clocks in a data bit from the SPI device on Miso.
//
// Starts and ends just after the falling edge of the clock.
func (s *SPI) ClockIn() (int, error) {
	time.Sleep(s.Tclk)
	err := s.setClock(1)
	if err != nil {
		return 0, err
	}
	if s.cpha == 1 {
		time.Sleep(s.Tclk)
	}
	v, err := s.Miso.Value()
	if err != nil {
		return 0, err
	}
	if s.cpha == 0 {
		time.Sleep(s.Tclk)
	}
	err = s.setClock(0)
	if err != nil {
		return 0, err
	}
	return v, err
}

// ClockOut clocks out a data bit to the SPI device on Mosi.
//
// Starts and ends just after the falling edge of the clock.
func (s *SPI) ClockOut(v int) error {
	if s.cpha == 1 {
		time.Sleep(s.Tclk)
	}
	err := s.Mosi.SetValue(v)
	if err != nil {
		return err
	}
	if s.cpha == 0 {
		time.Sleep(s.Tclk)
	}
	err = s.setClock(1)
	if err != nil {
		return err
	}
	time.Sleep(s.Tclk)
	return s.setClock(0)
}

// setClock sets the logical clock level, accounting for cpol.
func (s *SPI) setClock(v int) error {
	return s.Sclk.SetValue(v ^ s.cpol)
}

// Option specifies a construction option for the SPI.
type Option func(*SPI)

// WithCPOL sets the cpol for the SPI.
func WithCPOL(cpol int) Option {
	return func(s *SPI) {
		s.cpol = cpol
	}
}

// WithCPHA sets the cpha for the SPI.
func WithCPHA(cpha int) Option {
	return func(s *SPI) {
		s.cpha = cpha
	}
}

// WithTclk sets the clock period for the SPI.
//
// Note that this is the half-cycle period.
func WithTclk(tclk time.Duration) Option {
	return func(s *SPI) {
		s.Tclk = tclk
	}
}
