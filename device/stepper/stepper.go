// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package stepper provides a driver for a unipolar stepper motor, such as the
// 28BYJ-48, driven in half steps through a ULN2003A Darlington array.
package stepper

import (
	"context"
	"time"

	"github.com/warthog618/go-iotkit"
)

// DefaultStepsPerRev is the number of half steps per revolution of the
// 28BYJ-48 output shaft.
const DefaultStepsPerRev = 4096

// Direction is the direction of rotation.
type Direction int

const (
	// CW rotates the motor clockwise.
	CW Direction = iota
	// CCW rotates the motor counter-clockwise.
	CCW
)

func (d Direction) String() string {
	if d == CCW {
		return "CCW"
	}
	return "CW"
}

// phases are the coil energisations, I1 to I4, for each half step.
var phases = [8][4]int{
	{0, 0, 0, 1},
	{0, 0, 1, 1},
	{0, 0, 1, 0},
	{0, 1, 1, 0},
	{0, 1, 0, 0},
	{1, 1, 0, 0},
	{1, 0, 0, 0},
	{1, 0, 0, 1},
}

// Motor is a stepper motor.
//
// Position is the number of steps taken clockwise, less those taken
// counter-clockwise, since the Motor was created.  It may be adjusted by the
// caller, e.g. to zero it at a known position.
type Motor struct {
	coils       [4]iotkit.DigitalOut
	stepsPerRev int
	delay       time.Duration
	dir         Direction
	Position    int
}

// New creates a Motor driven by the i1..i4 lines.
//
// The motor initially turns clockwise at 1 rpm.
func New(i1, i2, i3, i4 iotkit.DigitalOut, stepsPerRev int) *Motor {
	if stepsPerRev <= 0 {
		stepsPerRev = DefaultStepsPerRev
	}
	m := &Motor{
		coils:       [4]iotkit.DigitalOut{i1, i2, i3, i4},
		stepsPerRev: stepsPerRev,
	}
	m.SetSpeed(1)
	return m
}

// StepsPerRev returns the number of steps per revolution.
func (m *Motor) StepsPerRev() int {
	return m.stepsPerRev
}

// SetSpeed sets the speed of the motor in revolutions per minute.
func (m *Motor) SetSpeed(rpm int) {
	if rpm <= 0 {
		rpm = 1
	}
	m.delay = time.Minute / time.Duration(m.stepsPerRev*rpm)
}

// StepDelay returns the delay between steps at the current speed.
func (m *Motor) StepDelay() time.Duration {
	return m.delay
}

// SetDirection sets the direction of subsequent steps.
func (m *Motor) SetDirection(d Direction) {
	m.dir = d
}

// Direction returns the current direction.
func (m *Motor) Direction() Direction {
	return m.dir
}

// Steps moves the motor n steps in the current direction.
//
// The move is abandoned if the ctx is cancelled.
func (m *Motor) Steps(ctx context.Context, n int) error {
	t := time.NewTicker(m.delay)
	defer t.Stop()
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		if m.dir == CW {
			m.Position++
		} else {
			m.Position--
		}
		if err := m.energise(phase(m.Position)); err != nil {
			return err
		}
	}
	return nil
}

func phase(pos int) int {
	p := pos % len(phases)
	if p < 0 {
		p += len(phases)
	}
	return p
}

func (m *Motor) energise(p int) error {
	for i, c := range m.coils {
		if err := c.SetValue(phases[p][i]); err != nil {
			return err
		}
	}
	return nil
}

// Release de-energises all the coils.
func (m *Motor) Release() error {
	for _, c := range m.coils {
		if err := c.SetValue(0); err != nil {
			return err
		}
	}
	return nil
}
