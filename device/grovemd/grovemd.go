// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package grovemd provides a driver for the Grove I2C motor driver, a dual
// H-bridge controlled by an onboard microcontroller.
package grovemd

import (
	"time"

	"periph.io/x/conn/v3/i2c"
)

// DefaultAddr is the I2C address of the motor driver with all address
// switches on.
const DefaultAddr = 0x0f

const (
	cmdSetSpeed     = 0x82
	cmdSetDirection = 0xaa
	noop            = 0x01

	// the controller needs time to process each packet
	packetDelay = 100 * time.Microsecond
)

// Direction is the direction of rotation of a motor.
type Direction byte

const (
	// CW rotates the motor clockwise.
	CW Direction = 0x01
	// CCW rotates the motor counter-clockwise.
	CCW Direction = 0x02
)

func (d Direction) String() string {
	switch d {
	case CW:
		return "CW"
	case CCW:
		return "CCW"
	default:
		return "unknown"
	}
}

// Driver is a Grove I2C motor driver controlling two DC motors, A and B.
type Driver struct {
	d i2c.Dev
}

// New creates a Driver at addr on the bus.
func New(bus i2c.Bus, addr uint16) *Driver {
	return &Driver{d: i2c.Dev{Bus: bus, Addr: addr}}
}

func (m *Driver) writePacket(cmd, a, b byte) error {
	_, err := m.d.Write([]byte{cmd, a, b})
	time.Sleep(packetDelay)
	return err
}

// SetSpeeds sets the speed of each motor.
func (m *Driver) SetSpeeds(a, b uint8) error {
	return m.writePacket(cmdSetSpeed, a, b)
}

// SetDirections sets the direction of each motor.
func (m *Driver) SetDirections(a, b Direction) error {
	dir := byte(b&0x03)<<2 | byte(a&0x03)
	return m.writePacket(cmdSetDirection, dir, noop)
}

// Stop sets both motor speeds to zero.
func (m *Driver) Stop() error {
	return m.SetSpeeds(0, 0)
}
