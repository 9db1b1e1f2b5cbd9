// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package iotkit provides the peripheral abstractions shared by the iotkit
// recipes, and their implementations on Linux GPIO character devices.
//
// The recipes only see the interfaces, so a pin may be a GPIO line, a pin on
// a GrovePi+ board, a channel on a bit bashed SPI ADC, or a simulated device.
//
// Example of use:
//
//	l, err := iotkit.RequestOutput("gpiochip0", 17, 0, iotkit.WithConsumer("blink"))
//	if err != nil {
//		panic(err)
//	}
//	defer l.Close()
//	v := 0
//	for {
//		<-time.After(time.Second)
//		v ^= 1
//		l.SetValue(v)
//	}
package iotkit

import (
	"context"
	"errors"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// DigitalIn is a pin that can be read as active (1) or inactive (0).
type DigitalIn interface {
	Value() (int, error)
}

// DigitalOut is a pin that can be driven active (1) or inactive (0).
type DigitalOut interface {
	SetValue(v int) error
}

// AnalogIn is an ADC channel.
//
// Read returns the raw conversion, in the range [0, 1<<Bits()).
type AnalogIn interface {
	Read() (int, error)
	Bits() uint
}

// PWMOut is a pin that can generate a PWM signal.
//
// The signature matches periph gpio.PinOut.PWM so periph pins can be used
// directly.
type PWMOut interface {
	PWM(duty gpio.Duty, f physic.Frequency) error
}

// Counter counts edges detected on an input.
type Counter interface {
	Count() uint64
	Reset() uint64
}

// ErrClosed indicates the pin has been closed.
var ErrClosed = errors.New("closed")

// Average returns the mean of n samples read from a, taken interval apart.
//
// Returns early with the context error if ctx is cancelled between samples.
func Average(ctx context.Context, a AnalogIn, n int, interval time.Duration) (float64, error) {
	if n <= 0 {
		n = 1
	}
	sum := 0
	for i := 0; i < n; i++ {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(interval):
			}
		}
		v, err := a.Read()
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return float64(sum) / float64(n), nil
}

// Max returns the largest raw value an AnalogIn can return.
func Max(a AnalogIn) int {
	return 1<<a.Bits() - 1
}

// Toggle inverts the value of v, which must be 0 or 1.
func Toggle(v int) int {
	return v ^ 1
}

// Duty converts a fraction in the range [0,1] to a gpio.Duty.
//
// Values outside the range are clamped.
func Duty(f float64) gpio.Duty {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return gpio.DutyMax
	}
	return gpio.Duty(f * float64(gpio.DutyMax))
}

// Fraction converts a gpio.Duty to a fraction in the range [0,1].
func Fraction(d gpio.Duty) float64 {
	if d <= 0 {
		return 0
	}
	if d >= gpio.DutyMax {
		return 1
	}
	return float64(d) / float64(gpio.DutyMax)
}
