// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package mcp3w0c_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-iotkit/sim"
	"github.com/warthog618/go-iotkit/spi"
	"github.com/warthog618/go-iotkit/spi/mcp3w0c"
)

func newADC(t *testing.T, width uint) (*mcp3w0c.MCP3w0c, *sim.Pin, *sim.Pin) {
	t.Helper()
	mosi := sim.NewPin("mosi")
	miso := sim.NewPin("miso")
	s, err := spi.NewFromPins(sim.NewPin("sclk"), sim.NewPin("ssz"), mosi, miso, spi.WithTclk(time.Nanosecond))
	require.Nil(t, err)
	return mcp3w0c.New(s, width), mosi, miso
}

func bits(v uint16, width uint) []int {
	vv := []int{0} // null bit
	for i := int(width) - 1; i >= 0; i-- {
		vv = append(vv, int(v>>uint(i))&1)
	}
	return vv
}

func TestRead(t *testing.T) {
	patterns := []struct {
		name  string
		width uint
		ch    int
		v     uint16
		mosi  []int
	}{
		{"mcp3008 ch0", 10, 0, 0x2a5, []int{1, 1, 1, 0, 0, 0}},
		{"mcp3008 ch5", 10, 5, 0x3ff, []int{1, 1, 1, 1, 0, 1}},
		{"mcp3208 ch3", 12, 3, 0x801, []int{1, 1, 1, 0, 1, 1}},
	}
	for _, p := range patterns {
		tf := func(t *testing.T) {
			adc, mosi, miso := newADC(t, p.width)
			defer adc.Close()
			miso.Script(bits(p.v, p.width)...)
			v, err := adc.Read(p.ch)
			require.Nil(t, err)
			assert.Equal(t, p.v, v)
			assert.Equal(t, p.mosi, mosi.History())
		}
		t.Run(p.name, tf)
	}
}

func TestReadDifferential(t *testing.T) {
	adc, mosi, miso := newADC(t, 10)
	defer adc.Close()
	miso.Script(bits(0x155, 10)...)
	v, err := adc.ReadDifferential(2)
	require.Nil(t, err)
	assert.Equal(t, uint16(0x155), v)
	assert.Equal(t, []int{1, 1, 0, 0, 1, 0}, mosi.History())
}

func TestChannel(t *testing.T) {
	adc, _, miso := newADC(t, 10)
	defer adc.Close()
	c := adc.Channel(1)
	assert.Equal(t, uint(10), c.Bits())
	miso.Set(1)
	v, err := c.Read()
	require.Nil(t, err)
	assert.Equal(t, 1023, v)
}

func TestClose(t *testing.T) {
	adc, _, _ := newADC(t, 12)
	assert.Equal(t, uint(12), adc.Width())
	require.Nil(t, adc.Close())
	assert.Equal(t, mcp3w0c.ErrClosed, adc.Close())
	_, err := adc.Read(0)
	assert.Equal(t, mcp3w0c.ErrClosed, err)
}
