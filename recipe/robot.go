// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package recipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
	"github.com/warthog618/go-iotkit/device/grovemd"
	"github.com/warthog618/go-iotkit/sensor"
	"golang.org/x/sync/errgroup"
)

// Drive is a pair of DC motors, such as the Grove I2C motor driver.
type Drive interface {
	SetSpeeds(a, b uint8) error
	SetDirections(a, b grovemd.Direction) error
	Stop() error
}

// Compass is a magnetometer providing a heading in degrees.
type Compass interface {
	Update() error
	Heading() float64
}

// LineReader reads lines of input, such as a readline.Instance.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// HeadingScale is the compass scale scrolled across the display, with one
// character per 10 degrees.
const HeadingScale = "--|--N--|--|--E--|--|--S--|--|--W--|--|--N--|--"

const headingWindow = 11

// HeadingText returns the display text for a heading, in degrees.
//
// Returns false if the heading is outside [0,360].
func HeadingText(heading float64) (string, bool) {
	idx := int(heading+0.5) / 10
	if heading < 0 || idx > len(HeadingScale)-headingWindow {
		return "", false
	}
	return "HDG: " + HeadingScale[idx:idx+headingWindow], true
}

// BatteryLow is the voltage below which the battery needs charging.
const BatteryLow = 7.2

// BatteryText returns the display text for a battery voltage.
func BatteryText(volts float64) string {
	s := strconv.FormatFloat(volts, 'f', 6, 64)
	if len(s) > 4 {
		s = s[:4]
	}
	return "Batt: " + s + " V    "
}

// Blocked indicates which of the IR sensors around the rover detect an
// obstacle.
type Blocked struct {
	FrontLeft  bool
	FrontRight bool
	RearLeft   bool
	RearRight  bool
}

// Any returns true if any sensor detects an obstacle.
func (b Blocked) Any() bool {
	return b.FrontLeft || b.FrontRight || b.RearLeft || b.RearRight
}

// Errors returned by ParseCommand.
var (
	ErrBadInput   = errors.New("bad input")
	ErrSpeedRange = errors.New("speed out of range")
)

// ParseCommand splits a console line into a command and speed.
//
// The stop command, or an empty line, does not require a speed.
func ParseCommand(line string) (string, int, error) {
	ff := strings.Fields(line)
	if len(ff) == 0 || ff[0] == "stop" {
		return "stop", 0, nil
	}
	if len(ff) != 2 {
		return ff[0], 0, ErrBadInput
	}
	speed, err := strconv.Atoi(ff[1])
	if err != nil {
		return ff[0], 0, ErrBadInput
	}
	if speed < 0 || speed > 255 {
		return ff[0], speed, ErrSpeedRange
	}
	return ff[0], speed, nil
}

type manoeuvre struct {
	a, b    grovemd.Direction
	blocked func(Blocked) bool
	msg     string
}

var manoeuvres = map[string]manoeuvre{
	"fwd": {grovemd.CCW, grovemd.CW,
		func(b Blocked) bool { return b.FrontLeft || b.FrontRight },
		"Rover going forward at speed %d"},
	"left": {grovemd.CCW, grovemd.CCW,
		func(b Blocked) bool { return b.FrontLeft || b.RearLeft },
		"Rover turning left at speed %d"},
	"right": {grovemd.CW, grovemd.CW,
		func(b Blocked) bool { return b.FrontRight || b.RearRight },
		"Rover turning right at speed %d"},
	"rev": {grovemd.CW, grovemd.CCW,
		func(b Blocked) bool { return b.RearLeft || b.RearRight },
		"Rover in reverse at speed %d"},
}

// Rover drives the motors of a rover, refusing to move towards obstacles.
//
// It is safe to use a Rover from multiple goroutines.
type Rover struct {
	mu      sync.Mutex
	motors  Drive
	blocked Blocked
}

// NewRover creates a Rover driving the motors.
func NewRover(motors Drive) *Rover {
	return &Rover{motors: motors}
}

// SetBlocked updates the obstacle state, and stops the rover if any
// obstacle is detected.
func (r *Rover) SetBlocked(b Blocked) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocked = b
	if b.Any() {
		return r.motors.SetSpeeds(0, 0)
	}
	return nil
}

// Blocked returns the current obstacle state.
func (r *Rover) Blocked() Blocked {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blocked
}

// Exec executes a console command and returns the response.
func (r *Rover) Exec(line string) (string, error) {
	cmd, speed, err := ParseCommand(line)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cmd == "stop" {
		return "Rover stopping!", r.motors.SetSpeeds(0, 0)
	}
	m, ok := manoeuvres[cmd]
	if !ok || m.blocked(r.blocked) {
		return "Command not supported or direction blocked!", r.motors.SetSpeeds(0, 0)
	}
	if err := r.motors.SetDirections(m.a, m.b); err != nil {
		return "", err
	}
	if err := r.motors.SetSpeeds(uint8(speed), uint8(speed)); err != nil {
		return "", err
	}
	return fmt.Sprintf(m.msg, speed), nil
}

// Stop stops the rover.
func (r *Rover) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.motors.Stop()
}

// Robot is a rover driven from a console, displaying its heading and
// battery voltage.
type Robot struct {
	Rover   *Rover
	Compass Compass
	Battery sensor.VoltageDivider
	// IR sensors, ordered front left, front right, rear left, rear right.
	IR      [4]sensor.IRDistance
	Display Display
	Console LineReader
	Out     io.Writer
	Err     io.Writer
	Logger  *slog.Logger

	batteryLow bool
	red        uint8
}

// ShowHeading updates the compass and displays the heading.
func (r *Robot) ShowHeading() error {
	if err := r.Compass.Update(); err != nil {
		return err
	}
	if s, ok := HeadingText(r.Compass.Heading()); ok {
		if err := r.Display.WriteAt(0, 0, s); err != nil {
			loggerOrDefault(r.Logger).Error("can't display heading", "error", err)
		}
	}
	return nil
}

// ShowBattery displays the battery voltage, flashing the backlight red
// while it is low.
//
// Returns the time until the battery should next be checked.
func (r *Robot) ShowBattery(ctx context.Context) (time.Duration, error) {
	v, err := r.Battery.Volts(ctx)
	if err != nil {
		return 0, err
	}
	if err := r.Display.WriteAt(1, 0, BatteryText(v)); err != nil {
		loggerOrDefault(r.Logger).Error("can't display battery", "error", err)
	}
	if v < BatteryLow {
		r.batteryLow = true
		err := r.Display.SetColor(r.red, 0, 0)
		r.red = ^r.red
		return 2 * time.Second, err
	}
	if r.batteryLow {
		err = setColor(r.Display, Green)
	}
	r.batteryLow = false
	return 5 * time.Second, err
}

// CheckObstacles reads the IR sensors and updates the rover.
func (r *Robot) CheckObstacles() error {
	var vv [4]bool
	for i, ir := range r.IR {
		v, err := ir.ObjectDetected()
		if err != nil {
			return err
		}
		vv[i] = v
	}
	return r.Rover.SetBlocked(Blocked{vv[0], vv[1], vv[2], vv[3]})
}

func (r *Robot) console(ctx context.Context) error {
	out := writerOrDiscard(r.Out)
	errw := writerOrDiscard(r.Err)
	for {
		line, err := r.Console.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt || ctx.Err() != nil {
				return nil
			}
			return err
		}
		resp, err := r.Rover.Exec(line)
		if err != nil {
			switch {
			case errors.Is(err, ErrBadInput):
				fmt.Fprintln(errw, "Error: Bad input! Please check your command and try again.")
			case errors.Is(err, ErrSpeedRange):
				fmt.Fprintln(errw, "Error: Speed needs to be between 0 to 255.")
			default:
				return err
			}
			continue
		}
		fmt.Fprintln(out, resp)
	}
}

// Run runs the pollers and the console until ctx is done or the console is
// closed.
func (r *Robot) Run(ctx context.Context) error {
	if r.red == 0 {
		r.red = 0x3f
	}
	r.batteryLow = true
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return every(gctx, 250*time.Millisecond, r.ShowHeading)
	})
	g.Go(func() error {
		for {
			d, err := r.ShowBattery(gctx)
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return err
			}
			if sleep(gctx, d) != nil {
				return nil
			}
		}
	})
	g.Go(func() error {
		return every(gctx, 10*time.Millisecond, r.CheckObstacles)
	})
	g.Go(func() error {
		defer cancel()
		return r.console(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		return r.Console.Close()
	})
	err := g.Wait()
	if serr := r.Rover.Stop(); err == nil {
		err = serr
	}
	fmt.Fprintln(writerOrDiscard(r.Out), "Exiting...")
	return err
}
