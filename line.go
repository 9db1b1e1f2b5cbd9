// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package iotkit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"
)

// DefaultChip is the chip used for pin specs that only provide an offset.
const DefaultChip = "gpiochip0"

// RequestInput requests a line as an input.
func RequestInput(chip string, offset int, options ...LineOption) (*gpiocdev.Line, error) {
	lo := newLineOptions(options)
	opts := append(lo.requestOptions(), gpiocdev.AsInput)
	l, err := gpiocdev.RequestLine(chip, offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("error requesting input %s:%d: %w", chip, offset, err)
	}
	return l, nil
}

// RequestOutput requests a line as an output, initially set to value.
func RequestOutput(chip string, offset int, value int, options ...LineOption) (*gpiocdev.Line, error) {
	lo := newLineOptions(options)
	opts := append(lo.requestOptions(), gpiocdev.AsOutput(value))
	l, err := gpiocdev.RequestLine(chip, offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("error requesting output %s:%d: %w", chip, offset, err)
	}
	return l, nil
}

// EdgeCounter counts the edges detected on an input line.
type EdgeCounter struct {
	l       *gpiocdev.Line
	count   atomic.Uint64
	rising  atomic.Uint64
	falling atomic.Uint64
}

// NewEdgeCounter requests a line as an input and counts both rising and
// falling edges on it.
func NewEdgeCounter(chip string, offset int, options ...LineOption) (*EdgeCounter, error) {
	ec := &EdgeCounter{}
	lo := newLineOptions(options)
	opts := append(lo.requestOptions(),
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(ec.handleEvent))
	l, err := gpiocdev.RequestLine(chip, offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("error requesting edge counter %s:%d: %w", chip, offset, err)
	}
	ec.l = l
	return ec, nil
}

func (ec *EdgeCounter) handleEvent(evt gpiocdev.LineEvent) {
	ec.count.Add(1)
	if evt.Type == gpiocdev.LineEventRisingEdge {
		ec.rising.Add(1)
	} else {
		ec.falling.Add(1)
	}
}

// Count returns the number of edges seen since the counter was created or
// last reset.
func (ec *EdgeCounter) Count() uint64 {
	return ec.count.Load()
}

// Edges returns the rising and falling edge counts.
func (ec *EdgeCounter) Edges() (rising, falling uint64) {
	return ec.rising.Load(), ec.falling.Load()
}

// Reset zeroes the counts and returns the total count prior to the reset.
func (ec *EdgeCounter) Reset() uint64 {
	ec.rising.Store(0)
	ec.falling.Store(0)
	return ec.count.Swap(0)
}

// Value returns the current value of the line.
func (ec *EdgeCounter) Value() (int, error) {
	return ec.l.Value()
}

// Close releases the line.
func (ec *EdgeCounter) Close() error {
	return ec.l.Close()
}

// ErrInvalidPin indicates a pin spec could not be parsed.
var ErrInvalidPin = errors.New("invalid pin")

// ParseLine parses a GPIO line spec into a chip name and offset.
//
// Accepted forms are "chip:offset", "offset" (on DefaultChip), and a line
// name, which is resolved by searching the available chips.
func ParseLine(spec string) (string, int, error) {
	if spec == "" {
		return "", 0, ErrInvalidPin
	}
	if chip, offs, found := strings.Cut(spec, ":"); found {
		o, err := strconv.ParseUint(offs, 10, 32)
		if err != nil || chip == "" {
			return "", 0, fmt.Errorf("%w: can't parse offset in '%s'", ErrInvalidPin, spec)
		}
		return chip, int(o), nil
	}
	if o, err := strconv.ParseUint(spec, 10, 32); err == nil {
		return DefaultChip, int(o), nil
	}
	return FindLine(spec)
}

// FindLine finds the chip and offset of the named line.
func FindLine(name string) (string, int, error) {
	chip, o, err := gpiocdev.FindLine(name)
	if err != nil {
		return "", 0, fmt.Errorf("%w: can't find line '%s'", ErrInvalidPin, name)
	}
	return chip, o, nil
}

// LineSummary describes a single line on a chip.
type LineSummary struct {
	Offset    int
	Name      string
	Consumer  string
	Used      bool
	Output    bool
	ActiveLow bool
}

// ChipSummary describes a chip and its lines.
type ChipSummary struct {
	Name  string
	Label string
	Lines []LineSummary
}

// Chips returns the names of the available GPIO chips.
func Chips() []string {
	return gpiocdev.Chips()
}

// ChipInfo returns the summary of the named chip.
//
// Line details are only filled when withLines is set.
func ChipInfo(name string, withLines bool) (ChipSummary, error) {
	c, err := gpiocdev.NewChip(name)
	if err != nil {
		return ChipSummary{}, err
	}
	defer c.Close()
	cs := ChipSummary{Name: c.Name, Label: c.Label}
	if !withLines {
		cs.Lines = make([]LineSummary, c.Lines())
		for i := range cs.Lines {
			cs.Lines[i].Offset = i
		}
		return cs, nil
	}
	for o := 0; o < c.Lines(); o++ {
		li, err := c.LineInfo(o)
		if err != nil {
			return cs, fmt.Errorf("error reading line info %s:%d: %w", name, o, err)
		}
		cs.Lines = append(cs.Lines, LineSummary{
			Offset:    o,
			Name:      li.Name,
			Consumer:  li.Consumer,
			Used:      li.Used,
			Output:    li.Config.Direction == gpiocdev.LineDirectionOutput,
			ActiveLow: li.Config.ActiveLow,
		})
	}
	return cs, nil
}
