// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package ledbar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-iotkit/device/ledbar"
	"github.com/warthog618/go-iotkit/sim"
)

// words decodes the data line history into the words shifted out, and
// returns the trailing latch writes separately.
func words(t *testing.T, data []int) ([]uint16, []int) {
	t.Helper()
	// 13 words followed by the latch
	require.Len(t, data, 13*16+1+8)
	ww := make([]uint16, 13)
	for i := range ww {
		for _, b := range data[i*16 : (i+1)*16] {
			ww[i] = ww[i]<<1 | uint16(b)
		}
	}
	return ww, data[13*16:]
}

func segments(ww []uint16) []bool {
	ss := make([]bool, len(ww)-1)
	for i, w := range ww[1:] {
		ss[i] = w == 0x00ff
	}
	return ss
}

func TestSetLevel(t *testing.T) {
	clk := sim.NewPin("clk")
	data := sim.NewPin("data")
	b := ledbar.New(clk, data)

	err := b.SetLevel(3)
	require.Nil(t, err)
	ww, latch := words(t, data.History())
	assert.Equal(t, uint16(0), ww[0])
	// filled from the far end of the chain
	assert.Equal(t, []bool{
		false, false, false, false, false, false, false,
		true, true, true, true, true,
	}, segments(ww))
	assert.Equal(t, []int{0, 1, 0, 1, 0, 1, 0, 1, 0}, latch)

	// clock toggles on every bit
	ch := clk.History()
	require.Len(t, ch, 13*16)
	for i, v := range ch {
		assert.Equal(t, (i+1)%2, v)
	}
}

func TestSetLevelRedToGreen(t *testing.T) {
	clk := sim.NewPin("clk")
	data := sim.NewPin("data")
	b := ledbar.New(clk, data, ledbar.WithRedToGreen())

	err := b.SetLevel(4)
	require.Nil(t, err)
	ww, _ := words(t, data.History())
	assert.Equal(t, []bool{
		true, true, true, true, false, false,
		false, false, false, false, false, false,
	}, segments(ww))
}

func TestSetLevelClamped(t *testing.T) {
	clk := sim.NewPin("clk")
	data := sim.NewPin("data")
	b := ledbar.New(clk, data, ledbar.WithRedToGreen())

	err := b.SetLevel(15)
	require.Nil(t, err)
	ww, _ := words(t, data.History())
	ss := segments(ww)
	for i := 0; i < ledbar.MaxLevel; i++ {
		assert.True(t, ss[i])
	}
	assert.False(t, ss[10])

	data.ClearHistory()
	err = b.SetLevel(-1)
	require.Nil(t, err)
	ww, _ = words(t, data.History())
	for _, s := range segments(ww) {
		assert.False(t, s)
	}
}

func TestSetLevelError(t *testing.T) {
	clk := sim.NewPin("clk")
	data := sim.NewPin("data")
	b := ledbar.New(clk, data)
	clk.Close()
	err := b.SetLevel(1)
	assert.Equal(t, sim.ErrClosed, err)
}
