// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package recipe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/warthog618/go-iotkit"
	"github.com/warthog618/go-iotkit/sensor"
)

// temperature range mapped onto the backlight fade
const (
	fadeMin = 18
	fadeMax = 31
)

// Temperature displays the current, minimum and maximum temperature, with
// the backlight fading from blue to red as the temperature rises.
//
// Pressing the button resets the minimum and maximum.
type Temperature struct {
	Sensor  sensor.Temperature
	Button  sensor.Button
	LED     iotkit.DigitalOut
	Display Display
	// Period is the time between updates, default 1s.
	Period time.Duration
	Logger *slog.Logger

	mm sensor.MinMax
}

// FadeColor returns the backlight colour for a temperature.
func FadeColor(celsius int) Color {
	var fade float64
	switch {
	case celsius <= fadeMin:
		fade = 0
	case celsius >= fadeMax:
		fade = 1
	default:
		fade = float64(celsius-fadeMin) / (fadeMax - fadeMin)
	}
	return Color{
		R: uint8(255 * fade),
		G: uint8(64 * fade),
		B: uint8(255 * (1 - fade)),
	}
}

// Update reads the sensors and refreshes the display.
func (t *Temperature) Update(ctx context.Context) error {
	c, err := t.Sensor.Celsius()
	if err != nil {
		return err
	}
	celsius := int(c)
	pressed, err := t.Button.Pressed()
	if err != nil {
		return err
	}
	if pressed {
		t.mm.Reset()
	}
	t.mm.Add(float64(celsius))
	log := loggerOrDefault(t.Logger)
	if err := t.Display.WriteAt(0, 0, fmt.Sprintf("Temp %d    ", celsius)); err != nil {
		log.Error("can't display temperature", "error", err)
	}
	row := fmt.Sprintf("Min %d Max %d    ", int(t.mm.Min()), int(t.mm.Max()))
	if err := t.Display.WriteAt(1, 0, row); err != nil {
		log.Error("can't display min/max temperature", "error", err)
	}
	if t.LED != nil {
		if err := t.LED.SetValue(1); err != nil {
			return err
		}
		sleep(ctx, 50*time.Millisecond)
		if err := t.LED.SetValue(0); err != nil {
			return err
		}
	}
	return setColor(t.Display, FadeColor(celsius))
}

// MinMax returns the extremes seen since the last reset.
func (t *Temperature) MinMax() (min, max int) {
	return int(t.mm.Min()), int(t.mm.Max())
}

// Run updates the display until ctx is done.
func (t *Temperature) Run(ctx context.Context) error {
	return every(ctx, durationOr(t.Period, time.Second), func() error {
		return t.Update(ctx)
	})
}
