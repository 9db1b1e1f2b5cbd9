// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package recipe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/warthog618/go-iotkit/sensor"
)

// Accelerometer is a three axis accelerometer, such as the MMA7660.
type Accelerometer interface {
	Acceleration() (x, y, z float64, err error)
}

// StarterMode identifies the sensor displayed by the starter kit.
type StarterMode int

// Sensors displayed, in the order they are cycled.
const (
	ShowTemperature StarterMode = iota
	ShowRotary
	ShowLight
	ShowTouch
	ShowAcceleration
	numStarterModes
)

var starterModeNames = [numStarterModes]string{
	"temperature",
	"rotary",
	"light",
	"touch",
	"acceleration",
}

func (m StarterMode) String() string {
	if m < 0 || m >= numStarterModes {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return starterModeNames[m]
}

// Next returns the mode following m.
func (m StarterMode) Next() StarterMode {
	return (m + 1) % numStarterModes
}

// Screen is the two rows of text shown on the display.
type Screen [2]string

const pressButton = "Press Button"

// Starter shows the readings of the starter kit sensors, one sensor for
// each press of the button.
type Starter struct {
	Temperature sensor.Temperature
	Rotary      sensor.Rotary
	Light       sensor.Light
	Touch       sensor.Button
	Accel       Accelerometer
	Button      sensor.Button
	Display     Display
	// Hold is the time each screen is shown, default 3s.
	Hold time.Duration
	// Poll is the time between button reads, default 100ms.
	Poll   time.Duration
	Logger *slog.Logger

	mode StarterMode
}

// Mode returns the sensor that will be shown on the next press.
func (s *Starter) Mode() StarterMode {
	return s.mode
}

// Screens returns the screens showing the reading for the mode.
func (s *Starter) Screens(mode StarterMode) ([]Screen, error) {
	switch mode {
	case ShowTemperature:
		c, err := s.Temperature.Celsius()
		if err != nil {
			return nil, err
		}
		return []Screen{{"Temperature in ", fmt.Sprintf("  celsius: %d", int(c))}}, nil
	case ShowRotary:
		deg, err := s.Rotary.Degrees()
		if err != nil {
			return nil, err
		}
		return []Screen{{"Rotary Angle ", fmt.Sprintf("  in degree: %.0f", deg)}}, nil
	case ShowLight:
		lux, err := luxLevel(s.Light)
		if err != nil {
			return nil, err
		}
		return []Screen{{"light value ", fmt.Sprintf("  in lux: %d", lux)}}, nil
	case ShowTouch:
		pressed, err := s.Touch.Pressed()
		if err != nil {
			return nil, err
		}
		return []Screen{{"Touch Sensor ", fmt.Sprintf("  is pressed: %t", pressed)}}, nil
	case ShowAcceleration:
		x, y, z, err := s.Accel.Acceleration()
		if err != nil {
			return nil, err
		}
		return []Screen{
			{"Acceleration x: ", fmt.Sprintf("  %.2f", x)},
			{"Acceleration y: ", fmt.Sprintf("  %.2f", y)},
			{"Acceleration z: ", fmt.Sprintf("  %.2f", z)},
		}, nil
	}
	return nil, fmt.Errorf("unknown mode %d", int(mode))
}

// Press shows the reading for the current mode and advances to the next.
func (s *Starter) Press(ctx context.Context) error {
	ss, err := s.Screens(s.mode)
	if err != nil {
		return err
	}
	loggerOrDefault(s.Logger).Debug("show", "mode", s.mode)
	hold := durationOr(s.Hold, 3*time.Second)
	for _, sc := range ss {
		if err := s.Display.Show(sc[0], sc[1]); err != nil {
			return err
		}
		if err := sleep(ctx, hold); err != nil {
			return err
		}
	}
	s.mode = s.mode.Next()
	return s.Display.Show(pressButton)
}

// Run shows the welcome screen and then waits for button presses until ctx
// is done.
func (s *Starter) Run(ctx context.Context) error {
	if err := s.Display.Show("welcome to ", "Starter Kit!"); err != nil {
		return err
	}
	if sleep(ctx, durationOr(s.Hold, 3*time.Second)) != nil {
		return nil
	}
	if err := s.Display.Show(pressButton); err != nil {
		return err
	}
	return every(ctx, durationOr(s.Poll, 100*time.Millisecond), func() error {
		pressed, err := s.Button.Pressed()
		if err != nil || !pressed {
			return err
		}
		return s.Press(ctx)
	})
}
