// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package jhd1313m1_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-iotkit/device/jhd1313m1"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func newLCD(t *testing.T) (*jhd1313m1.LCD, *i2ctest.Record) {
	t.Helper()
	bus := &i2ctest.Record{}
	l, err := jhd1313m1.New(bus)
	require.Nil(t, err)
	require.NotNil(t, l)
	bus.Ops = nil
	return l, bus
}

func cmd(c byte) i2ctest.IO {
	return i2ctest.IO{Addr: jhd1313m1.DefaultLCDAddr, W: []byte{0x80, c}}
}

func data(s string) []i2ctest.IO {
	var ops []i2ctest.IO
	for i := 0; i < len(s); i++ {
		ops = append(ops, i2ctest.IO{Addr: jhd1313m1.DefaultLCDAddr, W: []byte{0x40, s[i]}})
	}
	return ops
}

func rgb(reg, v byte) i2ctest.IO {
	return i2ctest.IO{Addr: jhd1313m1.DefaultRGBAddr, W: []byte{reg, v}}
}

func TestNew(t *testing.T) {
	bus := &i2ctest.Record{}
	_, err := jhd1313m1.New(bus)
	require.Nil(t, err)
	xops := []i2ctest.IO{
		cmd(0x28),
		cmd(0x0c),
		cmd(0x01),
		cmd(0x06),
		rgb(0x00, 0x00),
		rgb(0x01, 0x00),
		rgb(0x08, 0xaa),
		rgb(0x04, 0xff),
		rgb(0x03, 0xff),
		rgb(0x02, 0xff),
	}
	assert.Equal(t, xops, bus.Ops)
}

func TestNewWithAddrs(t *testing.T) {
	bus := &i2ctest.Record{}
	_, err := jhd1313m1.New(bus, jhd1313m1.WithAddrs(0x3f, 0x63))
	require.Nil(t, err)
	require.NotEmpty(t, bus.Ops)
	assert.Equal(t, uint16(0x3f), bus.Ops[0].Addr)
	assert.Equal(t, uint16(0x63), bus.Ops[len(bus.Ops)-1].Addr)
}

func TestWriteAt(t *testing.T) {
	l, bus := newLCD(t)
	err := l.WriteAt(1, 3, "Hi")
	require.Nil(t, err)
	xops := append([]i2ctest.IO{cmd(0x80 | 0x43)}, data("Hi")...)
	assert.Equal(t, xops, bus.Ops)

	err = l.WriteAt(2, 0, "x")
	assert.Equal(t, jhd1313m1.ErrInvalidPosition, err)
	err = l.SetCursor(0, 16)
	assert.Equal(t, jhd1313m1.ErrInvalidPosition, err)
}

func TestShow(t *testing.T) {
	l, bus := newLCD(t)
	err := l.Show("Temp 23", "Min 18 Max 25 and more", "dropped")
	require.Nil(t, err)
	xops := []i2ctest.IO{cmd(0x01), cmd(0x80)}
	xops = append(xops, data("Temp 23")...)
	xops = append(xops, cmd(0xc0))
	xops = append(xops, data("Min 18 Max 25 an")...)
	assert.Equal(t, xops, bus.Ops)
}

func TestControl(t *testing.T) {
	l, bus := newLCD(t)
	require.Nil(t, l.CursorBlink(true))
	require.Nil(t, l.Cursor(true))
	require.Nil(t, l.CursorBlink(false))
	require.Nil(t, l.Display(false))
	require.Nil(t, l.Clear())
	require.Nil(t, l.Home())
	require.Nil(t, l.SetCursor(0, 0))
	require.Nil(t, l.Write("a"))
	xops := []i2ctest.IO{
		cmd(0x0d),
		cmd(0x0f),
		cmd(0x0e),
		cmd(0x0a),
		cmd(0x01),
		cmd(0x02),
		cmd(0x80),
	}
	xops = append(xops, data("a")...)
	assert.Equal(t, xops, bus.Ops)
}

func TestSetColor(t *testing.T) {
	l, bus := newLCD(t)
	err := l.SetColor(1, 2, 3)
	require.Nil(t, err)
	assert.Equal(t, []i2ctest.IO{rgb(0x04, 1), rgb(0x03, 2), rgb(0x02, 3)}, bus.Ops)
}

func TestConcurrentWriters(t *testing.T) {
	l, bus := newLCD(t)
	var wg sync.WaitGroup
	for row := 0; row < 2; row++ {
		wg.Add(1)
		go func(row int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				l.WriteAt(row, 0, "abcd")
			}
		}(row)
	}
	wg.Wait()
	// each WriteAt is a cursor command followed by its data, uninterrupted
	require.Len(t, bus.Ops, 100)
	for i := 0; i < len(bus.Ops); i += 5 {
		assert.Equal(t, byte(0x80), bus.Ops[i].W[0])
		for j := 1; j < 5; j++ {
			assert.Equal(t, byte(0x40), bus.Ops[i+j].W[0])
		}
	}
}
