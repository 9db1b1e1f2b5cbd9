// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the device providing a pin.
type Kind int

const (
	// Line is a GPIO line on a gpiochip.
	Line Kind = iota
	// GrovePi is a port on a GrovePi+ board.
	GrovePi
	// MCP3008 is a channel of an MCP3008 ADC on the SPI lines.
	MCP3008
	// MCP3208 is a channel of an MCP3208 ADC on the SPI lines.
	MCP3208
	// ADC0832 is a channel of an ADC0832 ADC on the SPI lines.
	ADC0832
	// LED is a sysfs LED.
	LED
)

var kindNames = map[string]Kind{
	"grovepi": GrovePi,
	"mcp3008": MCP3008,
	"mcp3208": MCP3208,
	"adc0832": ADC0832,
	"led":     LED,
}

// adcChannels is the number of channels on each ADC.
var adcChannels = map[Kind]int{
	MCP3008: 8,
	MCP3208: 8,
	ADC0832: 2,
}

func (k Kind) String() string {
	for n, kk := range kindNames {
		if kk == k {
			return n
		}
	}
	return "line"
}

// ErrInvalidSpec indicates a pin spec could not be parsed.
var ErrInvalidSpec = errors.New("invalid pin spec")

// Spec identifies a pin.
//
// Specs take the form "kind:id", where kind is one of grovepi, mcp3008,
// mcp3208, adc0832 or led.  Any other spec is a GPIO line, as accepted by
// iotkit.ParseLine.
type Spec struct {
	Kind Kind
	// ID is the line, port or LED name.
	ID string
	// Channel is the ADC channel.
	Channel int
}

func (s Spec) String() string {
	if s.Kind == Line {
		return s.ID
	}
	return s.Kind.String() + ":" + s.ID
}

// ParseSpec parses a pin spec.
func ParseSpec(spec string) (Spec, error) {
	if spec == "" {
		return Spec{}, ErrInvalidSpec
	}
	prefix, id, found := strings.Cut(spec, ":")
	k, ok := kindNames[strings.ToLower(prefix)]
	if !found || !ok {
		return Spec{Kind: Line, ID: spec}, nil
	}
	if id == "" {
		return Spec{}, fmt.Errorf("%w: '%s'", ErrInvalidSpec, spec)
	}
	s := Spec{Kind: k, ID: id}
	switch k {
	case MCP3008, MCP3208, ADC0832:
		ch, err := strconv.ParseUint(id, 10, 8)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: can't parse channel in '%s'", ErrInvalidSpec, spec)
		}
		if int(ch) >= adcChannels[k] {
			return Spec{}, fmt.Errorf("%w: %s has %d channels, not '%s'", ErrInvalidSpec, k, adcChannels[k], id)
		}
		s.Channel = int(ch)
	}
	return s, nil
}
