// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package recipe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/warthog618/go-iotkit/device/buzzer"
	"github.com/warthog618/go-iotkit/sensor"
)

// Sun exposure warning thresholds.
const (
	// UVIndexAlarm is the UV index at which the alarm sounds.
	UVIndexAlarm = 8
	// TanTempAlarm is the temperature above which the alarm sounds.
	TanTempAlarm = 30
)

// UVMessage returns the display message for a UV index.
func UVMessage(intensity float64, index int) string {
	switch {
	case index <= 4:
		return fmt.Sprintf("UV: %.0f(%d)    ", intensity, index)
	case index <= 7:
		return "Sunburn in 30 m"
	case index <= 9:
		return "Sunburn in 20 m"
	default:
		return "Sunburn in 10 m"
	}
}

// UVColor returns the backlight colour for a UV index.
func UVColor(index int) Color {
	switch {
	case index <= 2:
		return LimeGreen
	case index <= 5:
		return Yellow
	case index <= 7:
		return Orange
	case index <= 10:
		return Red
	default:
		return Violet
	}
}

// TanAlarm returns true if the sun exposure warrants the alarm.
func TanAlarm(index, celsius int) bool {
	return index >= UVIndexAlarm || celsius > TanTempAlarm
}

// Tan warns of excessive sun exposure.
type Tan struct {
	UV          sensor.UV
	Temperature sensor.Temperature
	Buzzer      *buzzer.Buzzer
	Display     Display
	// Alarm is the duration of the alarm tone, default 1s.
	Alarm time.Duration
	// Period is the time between checks, default 1s.
	Period time.Duration
	Logger *slog.Logger
}

// Check reads the sensors, updates the display and sounds the alarm if
// necessary.
func (t *Tan) Check(ctx context.Context) error {
	intensity, err := t.UV.Intensity(ctx)
	if err != nil {
		return err
	}
	c, err := t.Temperature.Celsius()
	if err != nil {
		return err
	}
	celsius := int(c)
	index := int(sensor.UVIndex(intensity))
	if err := t.Display.WriteAt(0, 0, fmt.Sprintf("Temp: %d    ", celsius)); err != nil {
		return err
	}
	if err := t.Display.WriteAt(1, 0, UVMessage(intensity, index)); err != nil {
		return err
	}
	if err := setColor(t.Display, UVColor(index)); err != nil {
		return err
	}
	if !TanAlarm(index, celsius) {
		return nil
	}
	loggerOrDefault(t.Logger).Warn("sun exposure", "uvindex", index, "temperature", celsius)
	return t.Buzzer.Play(ctx, buzzer.DO, durationOr(t.Alarm, time.Second))
}

// Run checks the exposure until ctx is done.
func (t *Tan) Run(ctx context.Context) error {
	if err := t.Buzzer.Stop(); err != nil {
		return err
	}
	return every(ctx, durationOr(t.Period, time.Second), func() error {
		return t.Check(ctx)
	})
}
