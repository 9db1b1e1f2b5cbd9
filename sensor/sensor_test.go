// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package sensor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-iotkit/sensor"
	"github.com/warthog618/go-iotkit/sim"
)

func TestCelsius(t *testing.T) {
	patterns := []struct {
		raw int
		c   float64
	}{
		{300, 6.546},
		{512, 25.044},
		{800, 56.595},
	}
	for _, p := range patterns {
		c, err := sensor.Celsius(p.raw)
		require.Nil(t, err)
		assert.InDelta(t, p.c, c, 0.001, p.raw)
	}
	_, err := sensor.Celsius(0)
	assert.Equal(t, sensor.ErrOutOfRange, err)
	_, err = sensor.Celsius(1023)
	assert.Equal(t, sensor.ErrOutOfRange, err)
}

func TestLux(t *testing.T) {
	l, err := sensor.Lux(512)
	require.Nil(t, err)
	assert.InDelta(t, 12.580, l, 0.001)
	l, err = sensor.Lux(900)
	require.Nil(t, err)
	assert.InDelta(t, 178.236, l, 0.001)
	_, err = sensor.Lux(0)
	assert.Equal(t, sensor.ErrOutOfRange, err)
}

func TestDegrees(t *testing.T) {
	assert.Equal(t, 0.0, sensor.Degrees(0))
	assert.Equal(t, 300.0, sensor.Degrees(1023))
	assert.InDelta(t, 150.0, sensor.Degrees(511), 0.2)
}

func TestScale10(t *testing.T) {
	assert.Equal(t, 1023, sensor.Scale10(sim.NewAnalog("a", 10), 1023))
	assert.Equal(t, 1023, sensor.Scale10(sim.NewAnalog("a", 12), 4095))
	assert.Equal(t, 1020, sensor.Scale10(sim.NewAnalog("a", 8), 255))
}

func TestAnalogSensors(t *testing.T) {
	a := sim.NewAnalog("a", 10)
	a.Set(512)

	c, err := sensor.Temperature{In: a}.Celsius()
	require.Nil(t, err)
	assert.InDelta(t, 25.044, c, 0.001)

	raw, err := sensor.Light{In: a}.Raw()
	require.Nil(t, err)
	assert.Equal(t, 512, raw)
	lux, err := sensor.Light{In: a}.Lux()
	require.Nil(t, err)
	assert.InDelta(t, 12.580, lux, 0.001)

	a.Set(1023)
	deg, err := sensor.Rotary{In: a}.Degrees()
	require.Nil(t, err)
	assert.Equal(t, 300.0, deg)

	a.Set(250)
	m, err := sensor.Moisture{In: a}.Value()
	require.Nil(t, err)
	assert.Equal(t, 250, m)
}

func TestVoltageDivider(t *testing.T) {
	a := sim.NewAnalog("batt", 10)
	a.Set(512)
	vd := sensor.NewVoltageDivider(a, 3)
	vd.Interval = 0
	v, err := vd.Volts(context.Background())
	require.Nil(t, err)
	assert.InDelta(t, 7.5, v, 0.0001)
}

func TestUV(t *testing.T) {
	a := sim.NewAnalog("uv", 10)
	a.Set(700)
	u := sensor.NewUV(a)
	assert.Equal(t, 100, u.Samples)
	u.Samples = 4
	v, err := u.Volts(context.Background())
	require.Nil(t, err)
	assert.InDelta(t, 3.418, v, 0.001)
	i, err := u.Intensity(context.Background())
	require.Nil(t, err)
	assert.InDelta(t, 1049.316, i, 0.001)
	assert.InDelta(t, 5.2466, sensor.UVIndex(i), 0.0001)
}

func TestDigitalSensors(t *testing.T) {
	p := sim.NewPin("d")
	patterns := []struct {
		name string
		fn   func() (bool, error)
		low  bool
		high bool
	}{
		{"button", sensor.Button{In: p}.Pressed, false, true},
		{"flame", sensor.Flame{In: p}.Detected, true, false},
		{"ir", sensor.IRDistance{In: p}.ObjectDetected, true, false},
		{"reflective", sensor.Reflective{In: p}.BlackDetected, false, true},
	}
	for _, x := range patterns {
		tf := func(t *testing.T) {
			p.Set(0)
			v, err := x.fn()
			require.Nil(t, err)
			assert.Equal(t, x.low, v)
			p.Set(1)
			v, err = x.fn()
			require.Nil(t, err)
			assert.Equal(t, x.high, v)
		}
		t.Run(x.name, tf)
	}
}

func TestSoundLevel(t *testing.T) {
	s := sensor.NewSoundLevel()
	assert.Equal(t, 0.0, s.Update(nil))
	assert.Equal(t, 10.0, s.Update([]int{100, 100}))
	assert.False(t, s.Loud())
	assert.Equal(t, 29.0, s.Update([]int{200, 200}))
	for i := 0; i < 100; i++ {
		s.Update([]int{200})
	}
	assert.InDelta(t, 200.0, s.Running(), 0.01)
	assert.True(t, s.Loud())
}

func TestBarLevel(t *testing.T) {
	assert.Equal(t, 0, sensor.BarLevel(0))
	assert.Equal(t, 0, sensor.BarLevel(50))
	assert.Equal(t, 5, sensor.BarLevel(125))
	assert.Equal(t, 10, sensor.BarLevel(200))
	assert.Equal(t, 10, sensor.BarLevel(1000))
}

func TestWindow(t *testing.T) {
	a := sim.NewAnalog("mic", 10)
	a.Script(1, 2, 3)
	vv, err := sensor.Window(context.Background(), a, 3, 0)
	require.Nil(t, err)
	assert.Equal(t, []int{1, 2, 3}, vv)
}

func TestMinMax(t *testing.T) {
	var m sensor.MinMax
	assert.False(t, m.Valid())
	m.Add(20)
	assert.True(t, m.Valid())
	assert.Equal(t, 20.0, m.Min())
	assert.Equal(t, 20.0, m.Max())
	m.Add(25)
	m.Add(18)
	assert.Equal(t, 18.0, m.Min())
	assert.Equal(t, 25.0, m.Max())
	m.Reset()
	assert.False(t, m.Valid())
	m.Add(30)
	assert.Equal(t, 30.0, m.Min())
}
