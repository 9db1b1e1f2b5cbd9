// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package spi_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-iotkit/sim"
	"github.com/warthog618/go-iotkit/spi"
)

func newPins() (sclk, ssz, mosi, miso *sim.Pin) {
	return sim.NewPin("sclk"), sim.NewPin("ssz"), sim.NewPin("mosi"), sim.NewPin("miso")
}

func TestNewFromPins(t *testing.T) {
	sclk, ssz, mosi, miso := newPins()
	s, err := spi.NewFromPins(sclk, ssz, mosi, miso)
	require.Nil(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 500*time.Nanosecond, s.Tclk)
	assert.Equal(t, []int{1}, ssz.History())
	assert.Equal(t, []int{0}, sclk.History())

	s.Close()
	assert.Equal(t, sim.ErrClosed, sclk.Close())
	assert.Equal(t, sim.ErrClosed, miso.Close())
}

func TestNewFromPinsCPOL(t *testing.T) {
	sclk, ssz, mosi, miso := newPins()
	s, err := spi.NewFromPins(sclk, ssz, mosi, miso, spi.WithCPOL(1), spi.WithTclk(time.Nanosecond))
	require.Nil(t, err)
	assert.Equal(t, time.Nanosecond, s.Tclk)
	assert.Equal(t, []int{1}, sclk.History())

	sclk.ClearHistory()
	err = s.ClockOut(1)
	require.Nil(t, err)
	assert.Equal(t, []int{0, 1}, sclk.History())
}

func TestClockOut(t *testing.T) {
	sclk, ssz, mosi, miso := newPins()
	s, err := spi.NewFromPins(sclk, ssz, mosi, miso, spi.WithTclk(time.Nanosecond))
	require.Nil(t, err)
	sclk.ClearHistory()

	for _, v := range []int{1, 0, 1} {
		err = s.ClockOut(v)
		require.Nil(t, err)
	}
	assert.Equal(t, []int{1, 0, 1}, mosi.History())
	assert.Equal(t, []int{1, 0, 1, 0, 1, 0}, sclk.History())
}

func TestClockIn(t *testing.T) {
	sclk, ssz, mosi, miso := newPins()
	s, err := spi.NewFromPins(sclk, ssz, mosi, miso, spi.WithTclk(time.Nanosecond), spi.WithCPHA(1))
	require.Nil(t, err)
	miso.Script(1, 0, 1, 1)
	var vv []int
	for i := 0; i < 4; i++ {
		v, err := s.ClockIn()
		require.Nil(t, err)
		vv = append(vv, v)
	}
	assert.Equal(t, []int{1, 0, 1, 1}, vv)
}
