// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

// Package ublox6 provides access to a u-blox 6 GPS receiver connected to a
// serial port, which streams NMEA sentences.
package ublox6

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// DefaultBaud is the factory default baud rate of the receiver.
const DefaultBaud = 9600

// BaudRates maps the supported baud rates to their termios speed.
var BaudRates = map[int]uint32{
	4800:   unix.B4800,
	9600:   unix.B9600,
	19200:  unix.B19200,
	38400:  unix.B38400,
	57600:  unix.B57600,
	115200: unix.B115200,
}

// ErrInvalidBaud indicates the requested baud rate is not supported.
var ErrInvalidBaud = errors.New("invalid baud rate")

// Open opens the serial port at path and configures it for raw 8N1 at the
// given baud rate.
func Open(path string, baud int) (*os.File, error) {
	speed, ok := BaudRates[baud]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBaud, baud)
	}
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, err
	}
	if err = configure(int(f.Fd()), speed); err != nil {
		f.Close()
		return nil, fmt.Errorf("error configuring %s: %w", path, err)
	}
	return f, nil
}

func configure(fd int, speed uint32) error {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB | unix.CRTSCTS | unix.CBAUD
	t.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL | speed
	t.Ispeed = speed
	t.Ospeed = speed
	// block until at least one byte is available
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}
