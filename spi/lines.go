// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package spi

import (
	"github.com/warthog618/go-iotkit"
)

// New creates a SPI using lines on a GPIO chip.
func New(chip string, sclk, ssz, mosi, miso int, options ...Option) (*SPI, error) {
	var err error
	var closers []interface{ Close() error }
	defer func() {
		if err != nil {
			for _, c := range closers {
				c.Close()
			}
		}
	}()
	c := iotkit.WithConsumer("iotkit-spi")
	ssl, err := iotkit.RequestOutput(chip, ssz, 1, c)
	if err != nil {
		return nil, err
	}
	closers = append(closers, ssl)
	sl, err := iotkit.RequestOutput(chip, sclk, 0, c)
	if err != nil {
		return nil, err
	}
	closers = append(closers, sl)
	mil, err := iotkit.RequestInput(chip, miso, c)
	if err != nil {
		return nil, err
	}
	closers = append(closers, mil)
	mol, err := iotkit.RequestOutput(chip, mosi, 0, c)
	if err != nil {
		return nil, err
	}
	closers = append(closers, mol)
	s, err := NewFromPins(sl, ssl, mol, mil, options...)
	return s, err
}
