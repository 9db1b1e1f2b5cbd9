// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package hmc5883l provides a driver for the HMC5883L 3-axis digital
// compass.
package hmc5883l

import (
	"encoding/binary"
	"math"
	"sync"

	"periph.io/x/conn/v3/i2c"
)

// DefaultAddr is the I2C address of the HMC5883L.
const DefaultAddr = 0x1e

const (
	regConfigA = 0x00
	regConfigB = 0x01
	regMode    = 0x02
	regData    = 0x03

	// 8 samples averaged, 15Hz, normal measurement
	configA = 0x70
	// gain 4.7Ga
	configB = 0xa0
	// continuous measurement
	modeContinuous = 0x00
)

// Compass is an HMC5883L.
type Compass struct {
	mu          sync.Mutex
	d           i2c.Dev
	coords      [3]int16
	declination float64
}

// New configures the compass for continuous measurement.
func New(bus i2c.Bus) (*Compass, error) {
	c := &Compass{d: i2c.Dev{Bus: bus, Addr: DefaultAddr}}
	for _, rv := range [][2]byte{
		{regConfigA, configA},
		{regConfigB, configB},
		{regMode, modeContinuous},
	} {
		if _, err := c.d.Write(rv[:]); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Update reads the latest measurement from the compass.
func (c *Compass) Update() error {
	var buf [6]byte
	if err := c.d.Tx([]byte{regData}, buf[:]); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// registers are ordered X, Z, Y
	c.coords[0] = int16(binary.BigEndian.Uint16(buf[0:]))
	c.coords[2] = int16(binary.BigEndian.Uint16(buf[2:]))
	c.coords[1] = int16(binary.BigEndian.Uint16(buf[4:]))
	return nil
}

// Coordinates returns the X, Y and Z field strengths from the last Update.
func (c *Compass) Coordinates() (x, y, z int16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coords[0], c.coords[1], c.coords[2]
}

// SetDeclination sets the magnetic declination, in radians, applied to the
// heading.
func (c *Compass) SetDeclination(d float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.declination = d
}

// Heading returns the heading from the last Update, in degrees in the range
// [0,360).
func (c *Compass) Heading() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Heading(c.coords[0], c.coords[1], c.declination)
}

// Heading converts X and Y field strengths to a heading in degrees in the
// range [0,360), corrected by declination radians.
func Heading(x, y int16, declination float64) float64 {
	h := math.Atan2(float64(y), float64(x)) + declination
	h = math.Mod(h, 2*math.Pi)
	if h < 0 {
		h += 2 * math.Pi
	}
	return h * 180 / math.Pi
}
