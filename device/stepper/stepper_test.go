// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package stepper_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-iotkit/device/stepper"
	"github.com/warthog618/go-iotkit/sim"
)

func newMotor() (*stepper.Motor, [4]*sim.Pin) {
	var pins [4]*sim.Pin
	for i := range pins {
		pins[i] = sim.NewPin("I")
	}
	m := stepper.New(pins[0], pins[1], pins[2], pins[3], 0)
	m.SetSpeed(1000)
	return m, pins
}

func coils(pins [4]*sim.Pin) [4]int {
	var cc [4]int
	for i, p := range pins {
		cc[i], _ = p.Level()
	}
	return cc
}

func TestNew(t *testing.T) {
	m, _ := newMotor()
	assert.Equal(t, stepper.DefaultStepsPerRev, m.StepsPerRev())
	assert.Equal(t, stepper.CW, m.Direction())
	assert.Equal(t, 0, m.Position)
	assert.Equal(t, time.Minute/4096000, m.StepDelay())
	m.SetSpeed(5)
	assert.Equal(t, time.Minute/20480, m.StepDelay())
	m.SetSpeed(0)
	assert.Equal(t, time.Minute/4096, m.StepDelay())
}

func TestSteps(t *testing.T) {
	m, pins := newMotor()
	err := m.Steps(context.Background(), 1)
	require.Nil(t, err)
	assert.Equal(t, 1, m.Position)
	assert.Equal(t, [4]int{0, 0, 1, 1}, coils(pins))

	err = m.Steps(context.Background(), 4)
	require.Nil(t, err)
	assert.Equal(t, 5, m.Position)
	assert.Equal(t, [4]int{1, 1, 0, 0}, coils(pins))

	m.SetDirection(stepper.CCW)
	assert.Equal(t, "CCW", m.Direction().String())
	err = m.Steps(context.Background(), 6)
	require.Nil(t, err)
	assert.Equal(t, -1, m.Position)
	assert.Equal(t, [4]int{1, 0, 0, 1}, coils(pins))

	err = m.Release()
	require.Nil(t, err)
	assert.Equal(t, [4]int{0, 0, 0, 0}, coils(pins))
}

func TestStepsCancelled(t *testing.T) {
	m, _ := newMotor()
	m.SetSpeed(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Steps(ctx, 100)
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 0, m.Position)
}

func TestStepsError(t *testing.T) {
	m, pins := newMotor()
	pins[2].Close()
	err := m.Steps(context.Background(), 1)
	assert.Equal(t, sim.ErrClosed, err)
	err = m.Release()
	assert.Equal(t, sim.ErrClosed, err)
}
