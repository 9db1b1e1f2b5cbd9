// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package iotkit

import (
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// LineOption defines the interface required to provide an option for a
// requested line.
type LineOption interface {
	applyLineOption(*LineOptions)
}

// LineOptions contains the options for a requested line.
type LineOptions struct {
	consumer  string
	activeLow bool
	bias      Bias
	debounce  time.Duration
}

// Bias is the pull applied to an input line.
type Bias int

const (
	// BiasAsIs leaves the bias unchanged.
	BiasAsIs Bias = iota
	// BiasDisabled disables any bias.
	BiasDisabled
	// BiasPullUp enables the internal pull-up.
	BiasPullUp
	// BiasPullDown enables the internal pull-down.
	BiasPullDown
)

// ParseBias converts a bias name, as used in configuration, to a Bias.
//
// Unrecognised names map to BiasAsIs.
func ParseBias(s string) Bias {
	switch s {
	case "pull-up":
		return BiasPullUp
	case "pull-down":
		return BiasPullDown
	case "disable", "disabled":
		return BiasDisabled
	default:
		return BiasAsIs
	}
}

// ConsumerOption defines the consumer label for a line.
type ConsumerOption string

// WithConsumer provides the consumer label for the line.
func WithConsumer(consumer string) ConsumerOption {
	return ConsumerOption(consumer)
}

func (o ConsumerOption) applyLineOption(l *LineOptions) {
	l.consumer = string(o)
}

// ActiveLowOption indicates a line is active low.
type ActiveLowOption struct{}

// AsActiveLow indicates that a line be considered active when the line level
// is low.
var AsActiveLow = ActiveLowOption{}

func (o ActiveLowOption) applyLineOption(l *LineOptions) {
	l.activeLow = true
}

// BiasOption sets the bias of an input line.
type BiasOption Bias

// WithBias sets the bias of an input line.
func WithBias(b Bias) BiasOption {
	return BiasOption(b)
}

var (
	// WithPullUp enables the internal pull-up.
	WithPullUp = BiasOption(BiasPullUp)
	// WithPullDown enables the internal pull-down.
	WithPullDown = BiasOption(BiasPullDown)
	// WithBiasDisabled disables the internal bias.
	WithBiasDisabled = BiasOption(BiasDisabled)
)

func (o BiasOption) applyLineOption(l *LineOptions) {
	l.bias = Bias(o)
}

// DebounceOption sets the debounce period for an input line.
type DebounceOption time.Duration

// WithDebounce debounces an input line by the given period.
//
// A zero period disables debouncing.
func WithDebounce(period time.Duration) DebounceOption {
	return DebounceOption(period)
}

func (o DebounceOption) applyLineOption(l *LineOptions) {
	l.debounce = time.Duration(o)
}

func newLineOptions(options []LineOption) LineOptions {
	lo := LineOptions{consumer: "iotkit"}
	for _, option := range options {
		option.applyLineOption(&lo)
	}
	return lo
}

// requestOptions converts the options to the gpiocdev equivalent.
func (lo LineOptions) requestOptions() []gpiocdev.LineReqOption {
	opts := []gpiocdev.LineReqOption{gpiocdev.WithConsumer(lo.consumer)}
	if lo.activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	switch lo.bias {
	case BiasPullUp:
		opts = append(opts, gpiocdev.WithPullUp)
	case BiasPullDown:
		opts = append(opts, gpiocdev.WithPullDown)
	case BiasDisabled:
		opts = append(opts, gpiocdev.WithBiasDisabled)
	}
	if lo.debounce > 0 {
		opts = append(opts, gpiocdev.WithDebounce(lo.debounce))
	}
	return opts
}
