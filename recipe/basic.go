// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package recipe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/warthog618/go-iotkit"
	"periph.io/x/conn/v3/physic"
)

// Blink toggles an output.
type Blink struct {
	Out iotkit.DigitalOut
	// Period is the time between toggles, default 1s.
	Period time.Duration
	Logger *slog.Logger
}

// Run toggles the output until ctx is done, then leaves it inactive.
func (b Blink) Run(ctx context.Context) error {
	log := loggerOrDefault(b.Logger)
	v := 0
	err := every(ctx, durationOr(b.Period, time.Second), func() error {
		v = iotkit.Toggle(v)
		log.Debug("blink", "value", v)
		return b.Out.SetValue(v)
	})
	if serr := b.Out.SetValue(0); err == nil {
		err = serr
	}
	return err
}

// DigitalIn reports the value of an input.
type DigitalIn struct {
	In iotkit.DigitalIn
	// Period is the time between reads, default 1s.
	Period time.Duration
	Out    io.Writer
}

// Run reports the input value until ctx is done.
func (d DigitalIn) Run(ctx context.Context) error {
	w := writerOrDiscard(d.Out)
	return every(ctx, durationOr(d.Period, time.Second), func() error {
		v, err := d.In.Value()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "value %d\n", v)
		return nil
	})
}

// AnalogIn reports the raw value of an ADC channel.
type AnalogIn struct {
	In iotkit.AnalogIn
	// Period is the time between reads, default 1s.
	Period time.Duration
	Out    io.Writer
}

// Run reports the channel value until ctx is done.
func (a AnalogIn) Run(ctx context.Context) error {
	w := writerOrDiscard(a.Out)
	return every(ctx, durationOr(a.Period, time.Second), func() error {
		v, err := a.In.Read()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "analog input value %d\n", v)
		return nil
	})
}

// PWM sweeps the duty cycle of an output from 0 to 1 and back to 0.
type PWM struct {
	Out iotkit.PWMOut
	// Period is the PWM period, default 1ms.
	Period time.Duration
	// Step is the duty increment, default 0.01.
	Step float64
	// Interval is the time between increments, default 50ms.
	Interval time.Duration
	Logger   *slog.Logger
}

// NextDuty returns the duty following d, wrapping to 0 once past 1.
func (p PWM) NextDuty(d float64) float64 {
	step := p.Step
	if step <= 0 {
		step = 0.01
	}
	d += step
	if d > 1 {
		return 0
	}
	return d
}

// Run sweeps the output until ctx is done, then stops it.
func (p PWM) Run(ctx context.Context) error {
	f := physic.PeriodToFrequency(durationOr(p.Period, time.Millisecond))
	duty := 0.0
	err := every(ctx, durationOr(p.Interval, 50*time.Millisecond), func() error {
		if err := p.Out.PWM(iotkit.Duty(duty), f); err != nil {
			return fmt.Errorf("can't write duty cycle: %w", err)
		}
		duty = p.NextDuty(duty)
		return nil
	})
	if serr := p.Out.PWM(0, f); err == nil {
		err = serr
	}
	return err
}

// Interrupt reports the number of edges detected on an input.
type Interrupt struct {
	Counter iotkit.Counter
	// Period is the time between reports, default 1s.
	Period time.Duration
	Out    io.Writer
}

// Run reports the count until ctx is done.
func (i Interrupt) Run(ctx context.Context) error {
	w := writerOrDiscard(i.Out)
	return every(ctx, durationOr(i.Period, time.Second), func() error {
		fmt.Fprintf(w, "counter value %d\n", i.Counter.Count())
		return nil
	})
}

// LEDs lights each of a set of LEDs in turn.
type LEDs struct {
	LEDs []iotkit.DigitalOut
	// Dwell is the time each LED is lit, and the pause after each cycle,
	// default 200ms.
	Dwell  time.Duration
	Logger *slog.Logger
}

// Run cycles the LEDs until ctx is done, then turns them all off.
func (l LEDs) Run(ctx context.Context) error {
	dwell := durationOr(l.Dwell, 200*time.Millisecond)
	defer l.off()
	for {
		for _, led := range l.LEDs {
			if err := led.SetValue(1); err != nil {
				return err
			}
			if sleep(ctx, dwell) != nil {
				return nil
			}
			if err := led.SetValue(0); err != nil {
				return err
			}
		}
		if sleep(ctx, dwell) != nil {
			return nil
		}
	}
}

func (l LEDs) off() {
	for _, led := range l.LEDs {
		led.SetValue(0)
	}
}
