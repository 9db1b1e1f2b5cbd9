// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package mma7660 provides a driver for the MMA7660 3-axis accelerometer.
package mma7660

import (
	"errors"

	"periph.io/x/conn/v3/i2c"
)

// DefaultAddr is the I2C address of the MMA7660.
const DefaultAddr = 0x4c

const (
	regX    = 0x00
	regY    = 0x01
	regZ    = 0x02
	regMode = 0x07
	regSR   = 0x08

	modeStandby = 0x00
	modeActive  = 0x01

	// set while the device is updating the register
	alert = 0x40

	// counts per g
	countsPerG = 21.33

	maxRetries = 10
)

// SampleRate is the auto-sleep sample rate.
type SampleRate byte

// Supported sample rates, in samples per second.
const (
	Rate120 SampleRate = iota
	Rate64
	Rate32
	Rate16
	Rate8
	Rate4
	Rate2
	Rate1
)

// ErrBusy indicates the device was updating the axis register for every
// read attempt.
var ErrBusy = errors.New("register busy")

// Accelerometer is an MMA7660.
type Accelerometer struct {
	d i2c.Dev
}

// New creates an Accelerometer on the bus.
//
// The device is left in standby.
func New(bus i2c.Bus) *Accelerometer {
	return &Accelerometer{d: i2c.Dev{Bus: bus, Addr: DefaultAddr}}
}

// Init places the device in standby, sets the sample rate, then activates
// it.
//
// The device must be in standby to change the rate.
func (a *Accelerometer) Init(rate SampleRate) error {
	if err := a.SetActive(false); err != nil {
		return err
	}
	if err := a.SetSampleRate(rate); err != nil {
		return err
	}
	return a.SetActive(true)
}

// SetActive switches the device between active and standby modes.
func (a *Accelerometer) SetActive(active bool) error {
	mode := byte(modeStandby)
	if active {
		mode = modeActive
	}
	_, err := a.d.Write([]byte{regMode, mode})
	return err
}

// SetSampleRate sets the sample rate.
func (a *Accelerometer) SetSampleRate(rate SampleRate) error {
	_, err := a.d.Write([]byte{regSR, byte(rate)})
	return err
}

func (a *Accelerometer) readAxis(reg byte) (int8, error) {
	var buf [1]byte
	for i := 0; i < maxRetries; i++ {
		if err := a.d.Tx([]byte{reg}, buf[:]); err != nil {
			return 0, err
		}
		if buf[0]&alert == 0 {
			return signExtend(buf[0]), nil
		}
	}
	return 0, ErrBusy
}

// signExtend converts a 6-bit two's complement value.
func signExtend(v byte) int8 {
	v &= 0x3f
	if v&0x20 != 0 {
		v |= 0xc0
	}
	return int8(v)
}

// RawValues returns the raw counts for each axis.
func (a *Accelerometer) RawValues() (x, y, z int8, err error) {
	if x, err = a.readAxis(regX); err != nil {
		return
	}
	if y, err = a.readAxis(regY); err != nil {
		return
	}
	z, err = a.readAxis(regZ)
	return
}

// Acceleration returns the acceleration on each axis, in g.
func (a *Accelerometer) Acceleration() (x, y, z float64, err error) {
	rx, ry, rz, err := a.RawValues()
	if err != nil {
		return 0, 0, 0, err
	}
	return float64(rx) / countsPerG, float64(ry) / countsPerG, float64(rz) / countsPerG, nil
}
