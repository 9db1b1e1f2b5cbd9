// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package recipe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/warthog618/go-iotkit/device/stepper"
	"github.com/warthog618/go-iotkit/sensor"
)

// Track is the action taken by the solar tracker.
type Track int

const (
	// TrackHold leaves the panel where it is.
	TrackHold Track = iota
	// TrackDark indicates there is too little light to track.
	TrackDark
	// TrackCW turns the panel clockwise.
	TrackCW
	// TrackCCW turns the panel counter-clockwise.
	TrackCCW
	// TrackAhead turns the panel in the direction it last moved.
	TrackAhead
)

var trackNames = map[Track]string{
	TrackHold:  "hold",
	TrackDark:  "dark",
	TrackCW:    "cw",
	TrackCCW:   "ccw",
	TrackAhead: "ahead",
}

func (t Track) String() string {
	return trackNames[t]
}

// SolarTrack decides how to turn the panel given the left and right light
// levels, and their calibrated averages.
func SolarTrack(left, right, leftAvg, rightAvg, threshold int) Track {
	switch {
	case left < threshold && right < threshold:
		return TrackDark
	case left < leftAvg:
		switch {
		case left < right:
			return TrackCW
		case left > right:
			return TrackCCW
		}
		return TrackAhead
	case right < rightAvg:
		switch {
		case right < left:
			return TrackCCW
		case right > left:
			return TrackCW
		}
		return TrackAhead
	}
	return TrackHold
}

// Solar turns a solar panel towards the brighter of two light sensors.
type Solar struct {
	Left    sensor.Light
	Right   sensor.Light
	Motor   Stepper
	Display Display
	// StepsPerRev is the number of motor steps per revolution, default 4096.
	StepsPerRev int
	// Threshold is the light level below which it is dark, default 2.
	Threshold int
	// Steps is the number of steps per move, default 128.
	Steps int
	// Period is the time between moves, default 1s.
	Period time.Duration
	Logger *slog.Logger

	leftAvg  int
	rightAvg int
}

func (s *Solar) defaults() {
	if s.StepsPerRev <= 0 {
		s.StepsPerRev = stepper.DefaultStepsPerRev
	}
	if s.Threshold <= 0 {
		s.Threshold = 2
	}
	if s.Steps <= 0 {
		s.Steps = 128
	}
}

func (s *Solar) levels() (int, int, error) {
	l, err := luxLevel(s.Left)
	if err != nil {
		return 0, 0, err
	}
	r, err := luxLevel(s.Right)
	return l, r, err
}

// Calibrate sweeps the panel an eighth of a turn clockwise and then a
// quarter turn back, and averages the light levels at either end.
func (s *Solar) Calibrate(ctx context.Context) error {
	s.defaults()
	if err := s.Display.Show("Smart PV", "calibrating"); err != nil {
		return err
	}
	s.Motor.SetDirection(stepper.CW)
	if err := s.Motor.Steps(ctx, s.StepsPerRev/8); err != nil {
		return err
	}
	l1, r1, err := s.levels()
	if err != nil {
		return err
	}
	s.Motor.SetDirection(stepper.CCW)
	if err := s.Motor.Steps(ctx, s.StepsPerRev/4); err != nil {
		return err
	}
	l2, r2, err := s.levels()
	if err != nil {
		return err
	}
	s.leftAvg = (l1 + l2) / 2
	s.rightAvg = (r1 + r2) / 2
	loggerOrDefault(s.Logger).Info("calibrated", "left", s.leftAvg, "right", s.rightAvg)
	return nil
}

// Averages returns the calibrated light levels.
func (s *Solar) Averages() (left, right int) {
	return s.leftAvg, s.rightAvg
}

// Step reads the sensors, updates the display and turns the panel.
func (s *Solar) Step(ctx context.Context) (Track, error) {
	s.defaults()
	l, r, err := s.levels()
	if err != nil {
		return TrackHold, err
	}
	t := SolarTrack(l, r, s.leftAvg, s.rightAvg, s.Threshold)
	if t == TrackDark {
		return t, s.Display.Show("No sun")
	}
	if err := s.Display.Show(fmt.Sprintf("Left:  %d", l), fmt.Sprintf("Right: %d", r)); err != nil {
		return t, err
	}
	switch t {
	case TrackCW:
		s.Motor.SetDirection(stepper.CW)
	case TrackCCW:
		s.Motor.SetDirection(stepper.CCW)
	case TrackHold:
		return t, nil
	}
	return t, s.Motor.Steps(ctx, s.Steps)
}

// Run calibrates the tracker and then tracks until ctx is done.
func (s *Solar) Run(ctx context.Context) error {
	if err := s.Calibrate(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer s.Motor.Release()
	log := loggerOrDefault(s.Logger)
	return every(ctx, durationOr(s.Period, time.Second), func() error {
		t, err := s.Step(ctx)
		log.Debug("track", "action", t)
		return err
	})
}
