// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package sensor

import "github.com/warthog618/go-iotkit"

// Button is a Grove button, or TTP223 touch sensor, which reads 1 when
// pressed.
type Button struct {
	In iotkit.DigitalIn
}

// Pressed returns true while the button is pressed.
func (b Button) Pressed() (bool, error) {
	v, err := b.In.Value()
	return v != 0, err
}

// Flame is a YG1006 flame sensor, which pulls its output low when a flame
// is detected.
type Flame struct {
	In iotkit.DigitalIn
}

// Detected returns true if a flame is detected.
func (f Flame) Detected() (bool, error) {
	v, err := f.In.Value()
	return v == 0, err
}

// IRDistance is an RFR359F IR distance interrupter, which pulls its output
// low when an object is within range.
type IRDistance struct {
	In iotkit.DigitalIn
}

// ObjectDetected returns true if an object is within range.
func (d IRDistance) ObjectDetected() (bool, error) {
	v, err := d.In.Value()
	return v == 0, err
}

// Reflective is an RPR220 reflective sensor, which reads 1 over a black,
// or absent, surface.
type Reflective struct {
	In iotkit.DigitalIn
}

// BlackDetected returns true if the sensor sees a black surface, or
// nothing at all.
func (r Reflective) BlackDetected() (bool, error) {
	v, err := r.In.Value()
	return v != 0, err
}
