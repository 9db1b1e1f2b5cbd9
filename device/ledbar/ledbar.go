// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package ledbar provides a driver for the Grove LED bar, a 10 segment bar
// graph driven by an MY9221 LED driver over a two wire clock and data
// interface.
package ledbar

import (
	"sync"
	"time"

	"github.com/warthog618/go-iotkit"
)

// MaxLevel is the number of segments in the bar.
const MaxLevel = 10

const (
	// channels on the MY9221, two of which are unconnected
	channels = 12

	cmdMode = 0x0000
	ledOn   = 0x00ff
	ledOff  = 0x0000

	latchPulses = 4
	latchDelay  = 10 * time.Microsecond
)

// Bar is a Grove LED bar.
type Bar struct {
	mu         sync.Mutex
	clk        iotkit.DigitalOut
	data       iotkit.DigitalOut
	clkState   int
	greenToRed bool
}

// Option modifies the construction of a Bar.
type Option func(*Bar)

// WithRedToGreen fills the bar from the red end.
func WithRedToGreen() Option {
	return func(b *Bar) {
		b.greenToRed = false
	}
}

// New creates a Bar driven by the clk and data lines.
//
// By default the bar fills from the green end.
func New(clk, data iotkit.DigitalOut, options ...Option) *Bar {
	b := &Bar{clk: clk, data: data, greenToRed: true}
	for _, option := range options {
		option(b)
	}
	return b
}

// SetLevel lights the first level segments of the bar.
//
// Levels outside 0..MaxLevel are clamped.
func (b *Bar) SetLevel(level int) error {
	if level < 0 {
		level = 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.send16(cmdMode); err != nil {
		return err
	}
	if b.greenToRed {
		// the unconnected channels are at the red end
		level += 2
		for i := channels; i > 0; i-- {
			if err := b.send16(segment(i <= level)); err != nil {
				return err
			}
		}
	} else {
		for i := 0; i < channels; i++ {
			if err := b.send16(segment(i < level)); err != nil {
				return err
			}
		}
	}
	return b.latch()
}

func segment(on bool) uint16 {
	if on {
		return ledOn
	}
	return ledOff
}

// send16 shifts a word out MSB first, with data clocked on each clock edge.
func (b *Bar) send16(v uint16) error {
	for i := 0; i < 16; i++ {
		if err := b.data.SetValue(int(v>>15) & 1); err != nil {
			return err
		}
		b.clkState = iotkit.Toggle(b.clkState)
		if err := b.clk.SetValue(b.clkState); err != nil {
			return err
		}
		v <<= 1
	}
	return nil
}

// latch transfers the shifted data to the outputs.
func (b *Bar) latch() error {
	if err := b.data.SetValue(0); err != nil {
		return err
	}
	time.Sleep(latchDelay)
	for i := 0; i < latchPulses; i++ {
		if err := b.data.SetValue(1); err != nil {
			return err
		}
		if err := b.data.SetValue(0); err != nil {
			return err
		}
	}
	return nil
}
