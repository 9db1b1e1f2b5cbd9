// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package sensor converts raw readings from Grove and similar sensors into
// physical values.
//
// The conversions assume the 10-bit, 5V ADC the Grove sensors were
// characterised with. Readings from ADCs of other widths are rescaled to 10
// bits first.
package sensor

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/warthog618/go-iotkit"
)

// ErrOutOfRange indicates a reading at the limits of the ADC range, for which
// the conversion is undefined.
var ErrOutOfRange = errors.New("reading out of range")

// full scale of the 10-bit reference ADC
const fullScale = 1023

// Scale10 rescales a raw reading from a to the 10-bit range.
func Scale10(a iotkit.AnalogIn, raw int) int {
	bits := a.Bits()
	switch {
	case bits == 10:
		return raw
	case bits > 10:
		return raw >> (bits - 10)
	default:
		return raw << (10 - bits)
	}
}

func read10(a iotkit.AnalogIn) (int, error) {
	raw, err := a.Read()
	if err != nil {
		return 0, err
	}
	return Scale10(a, raw), nil
}

// Celsius converts a Grove temperature sensor reading to degrees Celsius.
//
// The sensor is a thermistor with B=3975 and R0=10k in a divider.
func Celsius(raw int) (float64, error) {
	if raw <= 0 || raw >= fullScale {
		return 0, ErrOutOfRange
	}
	r := float64(fullScale-raw) * 10000 / float64(raw)
	return 1/(math.Log(r/10000)/3975+1/298.15) - 273.15, nil
}

// Lux converts a Grove light sensor reading to an approximate illuminance.
func Lux(raw int) (float64, error) {
	if raw <= 0 || raw >= fullScale {
		return 0, ErrOutOfRange
	}
	r := float64(fullScale-raw) * 10 / float64(raw)
	return 10000 / math.Pow(r*15, 4.0/3.0), nil
}

// Degrees converts a Grove rotary angle sensor reading to an absolute angle
// in the range [0,300].
func Degrees(raw int) float64 {
	return float64(raw) * 300 / fullScale
}

// Temperature is a Grove temperature sensor.
type Temperature struct {
	In iotkit.AnalogIn
}

// Celsius returns the current temperature.
func (t Temperature) Celsius() (float64, error) {
	raw, err := read10(t.In)
	if err != nil {
		return 0, err
	}
	return Celsius(raw)
}

// Light is a Grove light sensor.
type Light struct {
	In iotkit.AnalogIn
}

// Raw returns the current reading, scaled to 10 bits.
func (l Light) Raw() (int, error) {
	return read10(l.In)
}

// Lux returns the current illuminance.
func (l Light) Lux() (float64, error) {
	raw, err := read10(l.In)
	if err != nil {
		return 0, err
	}
	return Lux(raw)
}

// Rotary is a Grove rotary angle sensor.
type Rotary struct {
	In iotkit.AnalogIn
}

// Degrees returns the current angle of the knob.
func (r Rotary) Degrees() (float64, error) {
	raw, err := read10(r.In)
	if err != nil {
		return 0, err
	}
	return Degrees(raw), nil
}

// Moisture is a Grove moisture sensor.
//
// Dry soil reads below 300, humid soil 300-700, and water above 700.
type Moisture struct {
	In iotkit.AnalogIn
}

// Value returns the current reading, scaled to 10 bits.
func (m Moisture) Value() (int, error) {
	return read10(m.In)
}

// VoltageDivider is a Grove voltage divider.
type VoltageDivider struct {
	In iotkit.AnalogIn
	// Gain is the divider ratio, 3 or 10 on the Grove board.
	Gain float64
	// Samples is the number of readings averaged.
	Samples int
	// Interval is the time between readings.
	Interval time.Duration
	// Vref is the ADC reference voltage.
	Vref float64
}

// NewVoltageDivider creates a VoltageDivider with the default sampling of 50
// readings 2ms apart, against a 5V reference.
func NewVoltageDivider(a iotkit.AnalogIn, gain float64) VoltageDivider {
	return VoltageDivider{In: a, Gain: gain, Samples: 50, Interval: 2 * time.Millisecond, Vref: 5}
}

// Volts returns the measured input voltage.
func (v VoltageDivider) Volts(ctx context.Context) (float64, error) {
	avg, err := iotkit.Average(ctx, v.In, v.Samples, v.Interval)
	if err != nil {
		return 0, err
	}
	return avg * v.Vref / float64(int(1)<<v.In.Bits()) * v.Gain, nil
}

// UV is a GUVA-S12D UV sensor.
type UV struct {
	In iotkit.AnalogIn
	// Aref is the ADC reference voltage.
	Aref float64
	// Samples is the number of readings averaged.
	Samples int
}

// UVSamples is the default number of readings averaged by a UV sensor.
const UVSamples = 100

// NewUV creates a UV sensor with a 5V reference and averaging UVSamples
// readings.
func NewUV(a iotkit.AnalogIn) UV {
	return UV{In: a, Aref: 5, Samples: UVSamples}
}

// Volts returns the sensor output voltage.
func (u UV) Volts(ctx context.Context) (float64, error) {
	avg, err := iotkit.Average(ctx, u.In, u.Samples, 0)
	if err != nil {
		return 0, err
	}
	return avg * u.Aref / float64(int(1)<<u.In.Bits()), nil
}

// Intensity returns the UV intensity in mW/m^2.
func (u UV) Intensity(ctx context.Context) (float64, error) {
	v, err := u.Volts(ctx)
	if err != nil {
		return 0, err
	}
	return UVIntensity(v), nil
}

// UVIntensity converts a GUVA-S12D output voltage to UV intensity in
// mW/m^2.
func UVIntensity(volts float64) float64 {
	return volts * 307
}

// UVIndex converts a UV intensity in mW/m^2 to a UV index.
func UVIndex(intensity float64) float64 {
	return intensity / 200
}
