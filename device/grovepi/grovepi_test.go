// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package grovepi_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-iotkit"
	"github.com/warthog618/go-iotkit/device/grovepi"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func newBoard(ops []i2ctest.IO) (*grovepi.Board, *i2ctest.Playback) {
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	return grovepi.New(bus, grovepi.WithDelay(0)), bus
}

func TestDigital(t *testing.T) {
	b, bus := newBoard([]i2ctest.IO{
		{Addr: 0x04, W: []byte{1, 5, 4, 1, 0}},
		{Addr: 0x04, W: []byte{1, 2, 4, 1, 0}},
		{Addr: 0x04, W: []byte{1, 2, 4, 0, 0}},
		{Addr: 0x04, W: []byte{1, 5, 3, 0, 0}},
		{Addr: 0x04, W: []byte{1, 1, 3, 0, 0}},
		{Addr: 0x04, R: []byte{1}},
	})
	require.Nil(t, b.PinMode(4, grovepi.Output))
	var out iotkit.DigitalOut = b.Digital(4)
	require.Nil(t, out.SetValue(5))
	require.Nil(t, out.SetValue(0))
	require.Nil(t, b.PinMode(3, grovepi.Input))
	var in iotkit.DigitalIn = b.Digital(3)
	v, err := in.Value()
	require.Nil(t, err)
	assert.Equal(t, 1, v)
	assert.Nil(t, bus.Close())
}

func TestAnalog(t *testing.T) {
	b, bus := newBoard([]i2ctest.IO{
		{Addr: 0x04, W: []byte{1, 3, 0, 0, 0}},
		{Addr: 0x04, R: []byte{3, 0x02, 0x9a}},
	})
	var a iotkit.AnalogIn = b.Analog(0)
	v, err := a.Read()
	require.Nil(t, err)
	assert.Equal(t, 666, v)
	assert.Equal(t, uint(10), a.Bits())
	assert.Nil(t, bus.Close())
}

func TestPWM(t *testing.T) {
	b, bus := newBoard([]i2ctest.IO{
		{Addr: 0x04, W: []byte{1, 4, 5, 255, 0}},
		{Addr: 0x04, W: []byte{1, 4, 5, 128, 0}},
		{Addr: 0x04, W: []byte{1, 4, 5, 0, 0}},
	})
	var p iotkit.PWMOut = b.PWM(5)
	require.Nil(t, p.PWM(gpio.DutyMax, 0))
	require.Nil(t, p.PWM(gpio.DutyHalf, 0))
	require.Nil(t, p.PWM(0, 0))
	assert.Nil(t, bus.Close())
}

func TestWithAddr(t *testing.T) {
	bus := &i2ctest.Record{}
	b := grovepi.New(bus, grovepi.WithAddr(0x05))
	require.Nil(t, b.DigitalWrite(2, 1))
	require.Len(t, bus.Ops, 1)
	assert.Equal(t, uint16(0x05), bus.Ops[0].Addr)
}

func TestParsePort(t *testing.T) {
	patterns := []struct {
		spec string
		port grovepi.Port
		err  bool
	}{
		{"D4", grovepi.Port{Num: 4}, false},
		{"a0", grovepi.Port{Analog: true, Num: 0}, false},
		{"A2", grovepi.Port{Analog: true, Num: 2}, false},
		{"D", grovepi.Port{}, true},
		{"X3", grovepi.Port{}, true},
		{"Dx", grovepi.Port{}, true},
		{"", grovepi.Port{}, true},
	}
	for _, p := range patterns {
		tf := func(t *testing.T) {
			port, err := grovepi.ParsePort(p.spec)
			if p.err {
				assert.True(t, errors.Is(err, grovepi.ErrInvalidPort))
				return
			}
			require.Nil(t, err)
			assert.Equal(t, p.port, port)
		}
		t.Run(p.spec, tf)
	}
	assert.Equal(t, "A2", grovepi.Port{Analog: true, Num: 2}.String())
	assert.Equal(t, "D7", grovepi.Port{Num: 7}.String())
}
