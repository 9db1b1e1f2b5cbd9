// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package ublox6_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warthog618/go-iotkit/device/ublox6"
	"golang.org/x/sys/unix"
)

func TestBaudRates(t *testing.T) {
	assert.Equal(t, uint32(unix.B9600), ublox6.BaudRates[ublox6.DefaultBaud])
	assert.Equal(t, uint32(unix.B115200), ublox6.BaudRates[115200])
	_, ok := ublox6.BaudRates[1234]
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	f, err := ublox6.Open("/dev/ttyGPS0", 1234)
	assert.True(t, errors.Is(err, ublox6.ErrInvalidBaud))
	assert.Nil(t, f)

	f, err = ublox6.Open(filepath.Join(t.TempDir(), "missing"), ublox6.DefaultBaud)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Nil(t, f)

	// a regular file is not a tty
	path := filepath.Join(t.TempDir(), "notatty")
	err = os.WriteFile(path, nil, 0o644)
	assert.Nil(t, err)
	f, err = ublox6.Open(path, ublox6.DefaultBaud)
	assert.NotNil(t, err)
	assert.Nil(t, f)
}
