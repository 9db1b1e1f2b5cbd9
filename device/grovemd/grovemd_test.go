// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package grovemd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-iotkit/device/grovemd"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestDriver(t *testing.T) {
	bus := &i2ctest.Record{}
	m := grovemd.New(bus, grovemd.DefaultAddr)
	require.Nil(t, m.SetDirections(grovemd.CCW, grovemd.CW))
	require.Nil(t, m.SetSpeeds(200, 100))
	require.Nil(t, m.Stop())
	xops := []i2ctest.IO{
		{Addr: 0x0f, W: []byte{0xaa, 0x06, 0x01}},
		{Addr: 0x0f, W: []byte{0x82, 200, 100}},
		{Addr: 0x0f, W: []byte{0x82, 0, 0}},
	}
	assert.Equal(t, xops, bus.Ops)
}

func TestDirection(t *testing.T) {
	patterns := []struct {
		a, b grovemd.Direction
		dir  byte
	}{
		{grovemd.CW, grovemd.CW, 0x05},
		{grovemd.CW, grovemd.CCW, 0x09},
		{grovemd.CCW, grovemd.CCW, 0x0a},
	}
	for _, p := range patterns {
		bus := &i2ctest.Record{}
		m := grovemd.New(bus, 0x0e)
		require.Nil(t, m.SetDirections(p.a, p.b))
		require.Len(t, bus.Ops, 1)
		assert.Equal(t, []byte{0xaa, p.dir, 0x01}, bus.Ops[0].W)
		assert.Equal(t, uint16(0x0e), bus.Ops[0].Addr)
	}
	assert.Equal(t, "CW", grovemd.CW.String())
	assert.Equal(t, "CCW", grovemd.CCW.String())
	assert.Equal(t, "unknown", grovemd.Direction(0).String())
}
