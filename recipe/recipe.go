// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package recipe contains the iotkit example programs.
//
// Each recipe is a struct holding the peripherals it drives and its tuning,
// with a Run method that loops until the context is cancelled.  Peripherals
// are provided as iotkit interfaces, so recipes run equally well on real or
// simulated hardware.
package recipe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/warthog618/go-iotkit/sensor"
)

// Display is a character display with an RGB backlight, such as the
// JHD1313M1.
type Display interface {
	Clear() error
	WriteAt(row, col int, s string) error
	Show(lines ...string) error
	SetColor(r, g, b uint8) error
	CursorBlink(on bool) error
}

// Color is an RGB backlight colour.
type Color struct {
	R, G, B uint8
}

// Backlight colours used by the recipes.
var (
	Black          = Color{}
	Red            = Color{255, 0, 0}
	Green          = Color{0, 0xcf, 0}
	LimeGreen      = Color{50, 205, 50}
	Yellow         = Color{255, 255, 0}
	Orange         = Color{255, 165, 0}
	Violet         = Color{238, 130, 238}
	LightSteelBlue = Color{176, 196, 222}
)

func setColor(d Display, c Color) error {
	return d.SetColor(c.R, c.G, c.B)
}

// every calls fn immediately and then every period until ctx is done or fn
// returns an error.
//
// Cancellation of ctx is a normal exit and returns nil.
func every(ctx context.Context, period time.Duration, fn func() error) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		if err := fn(); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// sleep blocks for d, returning the context error if ctx is done first.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

func durationOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// saturated is the light level reported when the sensor is at full scale.
const saturated = 10000

// luxLevel returns the light level in whole lux, mapping readings at either
// end of the scale to dark and saturated.
func luxLevel(l sensor.Light) (int, error) {
	lux, err := l.Lux()
	if err == nil {
		return int(lux), nil
	}
	if !errors.Is(err, sensor.ErrOutOfRange) {
		return 0, err
	}
	raw, err := l.Raw()
	if err != nil {
		return 0, err
	}
	if raw <= 0 {
		return 0, nil
	}
	return saturated, nil
}
