// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package jhd1313m1 provides a driver for the JHD1313M1 16x2 character LCD
// with RGB backlight, as used on the Grove RGB LCD.
//
// The LCD controller and the backlight controller are separate devices on
// the I2C bus.
package jhd1313m1

import (
	"errors"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
)

const (
	// DefaultLCDAddr is the I2C address of the LCD controller.
	DefaultLCDAddr = 0x3e
	// DefaultRGBAddr is the I2C address of the backlight controller.
	DefaultRGBAddr = 0x62

	// Rows is the number of rows on the display.
	Rows = 2
	// Cols is the number of columns on the display.
	Cols = 16
)

// controller commands
const (
	cmdClear          = 0x01
	cmdHome           = 0x02
	cmdEntryModeSet   = 0x04
	cmdDisplayControl = 0x08
	cmdFunctionSet    = 0x20
	cmdSetDDRAMAddr   = 0x80

	entryLeft = 0x02

	displayOn = 0x04
	cursorOn  = 0x02
	blinkOn   = 0x01

	twoLine = 0x08

	// control bytes preceding commands and data
	ctrlCommand = 0x80
	ctrlData    = 0x40
)

// backlight registers
const (
	regMode1  = 0x00
	regMode2  = 0x01
	regBlue   = 0x02
	regGreen  = 0x03
	regRed    = 0x04
	regOutput = 0x08
)

// ErrInvalidPosition indicates a cursor position outside the display.
var ErrInvalidPosition = errors.New("invalid position")

// LCD is a JHD1313M1 display.
//
// It is safe to use an LCD from multiple goroutines. Each method is atomic
// with respect to the others.
type LCD struct {
	mu      sync.Mutex
	lcd     i2c.Dev
	rgb     i2c.Dev
	control byte
}

// Option specifies a construction option for the LCD.
type Option func(*LCD)

// WithAddrs sets the I2C addresses of the LCD and backlight controllers.
func WithAddrs(lcd, rgb uint16) Option {
	return func(l *LCD) {
		l.lcd.Addr = lcd
		l.rgb.Addr = rgb
	}
}

// New initialises the display on the bus, and returns it cleared with a
// white backlight.
func New(bus i2c.Bus, options ...Option) (*LCD, error) {
	l := &LCD{
		lcd:     i2c.Dev{Bus: bus, Addr: DefaultLCDAddr},
		rgb:     i2c.Dev{Bus: bus, Addr: DefaultRGBAddr},
		control: displayOn,
	}
	for _, option := range options {
		option(l)
	}
	time.Sleep(50 * time.Millisecond)
	for _, c := range []byte{
		cmdFunctionSet | twoLine,
		cmdDisplayControl | l.control,
	} {
		if err := l.command(c); err != nil {
			return nil, err
		}
	}
	if err := l.clear(); err != nil {
		return nil, err
	}
	if err := l.command(cmdEntryModeSet | entryLeft); err != nil {
		return nil, err
	}
	for _, rv := range [][2]byte{
		{regMode1, 0},
		{regMode2, 0},
		{regOutput, 0xaa},
	} {
		if _, err := l.rgb.Write(rv[:]); err != nil {
			return nil, err
		}
	}
	if err := l.SetColor(0xff, 0xff, 0xff); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *LCD) command(c byte) error {
	_, err := l.lcd.Write([]byte{ctrlCommand, c})
	return err
}

func (l *LCD) data(b byte) error {
	_, err := l.lcd.Write([]byte{ctrlData, b})
	return err
}

func (l *LCD) clear() error {
	err := l.command(cmdClear)
	time.Sleep(2 * time.Millisecond)
	return err
}

func (l *LCD) setCursor(row, col int) error {
	if row < 0 || row >= Rows || col < 0 || col >= Cols {
		return ErrInvalidPosition
	}
	return l.command(cmdSetDDRAMAddr | byte(col+0x40*row))
}

func (l *LCD) write(s string) error {
	for i := 0; i < len(s); i++ {
		if err := l.data(s[i]); err != nil {
			return err
		}
	}
	return nil
}

// Clear blanks the display and homes the cursor.
func (l *LCD) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clear()
}

// Home returns the cursor to the top left.
func (l *LCD) Home() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.command(cmdHome)
	time.Sleep(2 * time.Millisecond)
	return err
}

// SetCursor moves the cursor to the given position.
func (l *LCD) SetCursor(row, col int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setCursor(row, col)
}

// Write writes s at the cursor.
//
// Text past the end of the row is written to the controller's off screen
// memory.
func (l *LCD) Write(s string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write(s)
}

// WriteAt writes s at the given position.
func (l *LCD) WriteAt(row, col int, s string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.setCursor(row, col); err != nil {
		return err
	}
	return l.write(s)
}

// Show clears the display and writes one line to each row.
//
// Lines are truncated to the width of the display.
func (l *LCD) Show(lines ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.clear(); err != nil {
		return err
	}
	for row, s := range lines {
		if row >= Rows {
			break
		}
		if len(s) > Cols {
			s = s[:Cols]
		}
		if err := l.setCursor(row, 0); err != nil {
			return err
		}
		if err := l.write(s); err != nil {
			return err
		}
	}
	return nil
}

// SetColor sets the backlight colour.
func (l *LCD) SetColor(r, g, b uint8) error {
	for _, rv := range [][2]byte{
		{regRed, r},
		{regGreen, g},
		{regBlue, b},
	} {
		if _, err := l.rgb.Write(rv[:]); err != nil {
			return err
		}
	}
	return nil
}

func (l *LCD) setControl(bit byte, on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if on {
		l.control |= bit
	} else {
		l.control &^= bit
	}
	return l.command(cmdDisplayControl | l.control)
}

// Display turns the display on or off, without changing its content.
func (l *LCD) Display(on bool) error {
	return l.setControl(displayOn, on)
}

// Cursor shows or hides the underline cursor.
func (l *LCD) Cursor(on bool) error {
	return l.setControl(cursorOn, on)
}

// CursorBlink enables or disables the blinking block cursor.
func (l *LCD) CursorBlink(on bool) error {
	return l.setControl(blinkOn, on)
}
