// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package recipe

import (
	"context"
	"log/slog"
	"time"

	"github.com/warthog618/go-iotkit"
	"github.com/warthog618/go-iotkit/sensor"
)

// BarSetter is a bar graph display, such as the Grove LED bar.
type BarSetter interface {
	SetLevel(level int) error
}

// SoundBar displays the sound level on an LED bar.
type SoundBar struct {
	Mic   iotkit.AnalogIn
	Bar   BarSetter
	Level *sensor.SoundLevel
	// Window is the number of samples averaged per update, default 50.
	Window int
	// Interval is the time between samples, default 1us.
	Interval time.Duration
	Logger   *slog.Logger

	level int
}

// Update samples a window from the microphone and updates the bar.
func (s *SoundBar) Update(ctx context.Context) error {
	if s.Level == nil {
		s.Level = sensor.NewSoundLevel()
	}
	n := s.Window
	if n <= 0 {
		n = 50
	}
	vv, err := sensor.Window(ctx, s.Mic, n, durationOr(s.Interval, time.Microsecond))
	if err != nil {
		return err
	}
	level := sensor.BarLevel(s.Level.Update(vv))
	if level != s.level {
		loggerOrDefault(s.Logger).Debug("sound", "running", s.Level.Running(), "level", level)
	}
	s.level = level
	return s.Bar.SetLevel(level)
}

// BarLevel returns the level last written to the bar.
func (s *SoundBar) BarLevel() int {
	return s.level
}

// Run updates the bar until ctx is done, then clears it.
func (s *SoundBar) Run(ctx context.Context) error {
	defer s.Bar.SetLevel(0)
	for {
		if err := s.Update(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}
