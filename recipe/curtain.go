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

	"github.com/warthog618/go-iotkit/device/stepper"
	"github.com/warthog618/go-iotkit/sensor"
)

// Stepper is a stepper motor that can be moved a number of steps.
type Stepper interface {
	SetDirection(d stepper.Direction)
	Steps(ctx context.Context, n int) error
	Release() error
}

// Mode is the state of a two state control loop.
type Mode int

const (
	// Config is the mode where the target is being set.
	Config Mode = iota
	// Normal is the mode where the target is being tracked.
	Normal
)

func (m Mode) String() string {
	if m == Normal {
		return "NORMAL"
	}
	return "CONFIG"
}

// Move is the action a control loop takes to approach its target.
type Move int

const (
	// Hold leaves the motor where it is.
	Hold Move = iota
	// Draw closes the curtain.
	Draw
	// Open opens the curtain.
	Open
)

// LuxMove returns the move required to bring the current light level
// within threshold of the target.
func LuxMove(current, target, threshold int) Move {
	switch {
	case current > target+threshold:
		return Draw
	case current < target-threshold:
		return Open
	default:
		return Hold
	}
}

// Curtain keeps the light level near a target by drawing or opening a
// curtain with a stepper motor.
//
// In Config mode the target is set with the rotary knob, one lux per 5
// degrees, and confirmed with the button.  In Normal mode the curtain is
// moved an activation at a time, between fully open and fully closed.
// Pressing the button in Normal mode returns to Config mode.
type Curtain struct {
	Light   sensor.Light
	Rotary  sensor.Rotary
	Button  sensor.Button
	Motor   Stepper
	Display Display
	// Threshold is the hysteresis around the target, default 5 lux.
	Threshold int
	// Travel is the number of steps from open to closed, default 8192.
	Travel int
	// Activation is the number of steps per move, default 1024.
	Activation int
	Out        io.Writer
	Logger     *slog.Logger

	mode     Mode
	armed    bool
	target   int
	position int
}

func (c *Curtain) defaults() {
	if c.Threshold <= 0 {
		c.Threshold = 5
	}
	if c.Travel <= 0 {
		c.Travel = 2 * stepper.DefaultStepsPerRev
	}
	if c.Activation <= 0 {
		c.Activation = 1024
	}
}

// Mode returns the current mode.
func (c *Curtain) Mode() Mode {
	return c.mode
}

// Target returns the target light level.
func (c *Curtain) Target() int {
	return c.target
}

// Position returns the number of steps the curtain is closed.
func (c *Curtain) Position() int {
	return c.position
}

// Step performs one iteration of the control loop.
func (c *Curtain) Step(ctx context.Context) error {
	c.defaults()
	pressed, err := c.Button.Pressed()
	if err != nil {
		return err
	}
	if c.mode == Config {
		return c.configure(pressed)
	}
	if pressed {
		c.mode = Config
		c.armed = false
		return c.configure(pressed)
	}
	return c.track(ctx)
}

func (c *Curtain) configure(pressed bool) error {
	deg, err := c.Rotary.Degrees()
	if err != nil {
		return err
	}
	c.target = int(deg) / 5
	if err := c.Display.Show("Btn to confirm", fmt.Sprintf("Lux Target: %d", c.target)); err != nil {
		return fmt.Errorf("can't display target: %w", err)
	}
	if !pressed {
		// the press that entered config must be released before confirming
		c.armed = true
		return c.Display.CursorBlink(true)
	}
	if !c.armed {
		return nil
	}
	c.mode = Normal
	loggerOrDefault(c.Logger).Info("lux target set", "target", c.target)
	return c.Display.CursorBlink(false)
}

func (c *Curtain) track(ctx context.Context) error {
	current, err := luxLevel(c.Light)
	if err != nil {
		return err
	}
	log := loggerOrDefault(c.Logger)
	err = c.Display.Show(
		fmt.Sprintf("Lux Current: %d", current),
		fmt.Sprintf("Lux Target:  %d", c.target))
	if err != nil {
		log.Error("can't display lux", "error", err)
	}
	w := writerOrDiscard(c.Out)
	switch LuxMove(current, c.target, c.Threshold) {
	case Draw:
		fmt.Fprintln(w, "Too much light, so draw the curtain.")
		if c.position >= c.Travel {
			fmt.Fprintln(w, "Curtain already completely closed")
			return nil
		}
		return c.move(ctx, stepper.CW, c.Activation)
	case Open:
		fmt.Fprintln(w, "Too few light, so open the curtain")
		if c.position <= 0 {
			fmt.Fprintln(w, "Curtain already completely open")
			return nil
		}
		return c.move(ctx, stepper.CCW, -c.Activation)
	}
	return nil
}

func (c *Curtain) move(ctx context.Context, d stepper.Direction, delta int) error {
	c.Motor.SetDirection(d)
	err := c.Motor.Steps(ctx, c.Activation)
	if err == nil {
		c.position += delta
	}
	if rerr := c.Motor.Release(); err == nil {
		err = rerr
	}
	return err
}

// Run runs the control loop until ctx is done.
//
// The loop polls every 250ms in Config mode and every 500ms in Normal mode.
func (c *Curtain) Run(ctx context.Context) error {
	for {
		if err := c.Step(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		period := 500 * time.Millisecond
		if c.mode == Config {
			period = 250 * time.Millisecond
		}
		if sleep(ctx, period) != nil {
			return nil
		}
	}
}
