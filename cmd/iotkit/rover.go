// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"github.com/warthog618/go-iotkit/device/grovemd"
	"github.com/warthog618/go-iotkit/device/hmc5883l"
	"github.com/warthog618/go-iotkit/device/ublox6"
	"github.com/warthog618/go-iotkit/recipe"
	"github.com/warthog618/go-iotkit/sensor"
)

func init() {
	rootCmd.AddCommand(robotCmd)
	rootCmd.AddCommand(fleetCmd)
	robotCmd.SetHelpTemplate(robotCmd.HelpTemplate() + extendedRobotHelp)
}

var extendedRobotHelp = `
Commands:
  fwd <speed>:    drive forward
  rev <speed>:    drive in reverse
  left <speed>:   turn left on the spot
  right <speed>:  turn right on the spot
  stop:           stop the motors

  Speeds are 0 to 255.  Movement towards an obstacle detected by the ir
  pins, ordered front left, front right, rear left, rear right, is refused.
`

var (
	robotCmd = &cobra.Command{
		Use:   "robot",
		Short: "Drive a rover from the console",
		Long: `Drive a rover with the Grove I2C motor driver from console commands, while
displaying its heading and battery voltage on the LCD and stopping at
obstacles.`,
		RunE: runRecipe(robot),
	}
	fleetCmd = &cobra.Command{
		Use:   "fleet",
		Short: "Track a vehicle",
		Long: `Publish the position from the GPS and tailgating events, and warn of
obstacles while reversing.  The time is displayed on the LCD.`,
		RunE: runRecipe(fleet),
	}
)

func robot(ctx context.Context, k *kit) error {
	d := devices{k: k}
	r := recipe.Robot{
		Battery: sensor.NewVoltageDivider(d.analogIn("battery"), k.cfg.MustGet("battery.gain").Float()),
		Display: d.lcd(),
		Out:     os.Stdout,
		Err:     os.Stderr,
		Logger:  k.logger,
	}
	irs := k.specs("ir")
	if len(irs) != len(r.IR) {
		return fmt.Errorf("ir needs %d pins, have %d", len(r.IR), len(irs))
	}
	for i, spec := range irs {
		in, err := k.board.DigitalIn(spec)
		if err != nil {
			return fmt.Errorf("can't open ir: %w", err)
		}
		r.IR[i] = sensor.IRDistance{In: in}
	}
	bus := d.bus()
	if d.err != nil {
		return d.err
	}
	compass, err := hmc5883l.New(bus)
	if err != nil {
		return fmt.Errorf("can't initialise compass: %w", err)
	}
	compass.SetDeclination(k.cfg.MustGet("gps.declination").Float())
	r.Compass = compass
	motors := grovemd.New(bus, grovemd.DefaultAddr)
	r.Rover = recipe.NewRover(motors)
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "rover> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	r.Console = rl
	r.Out = rl.Stdout()
	r.Err = rl.Stderr()
	return r.Run(ctx)
}

func fleet(ctx context.Context, k *kit) error {
	d := devices{k: k}
	f := recipe.Fleet{
		Backup:   sensor.IRDistance{In: d.digitalIn("backup")},
		Tailgate: sensor.Reflective{In: d.digitalIn("tailgate")},
		LED:      d.digitalOut("led"),
		Display:  d.lcd(),
		Logger:   k.logger,
	}
	if d.err != nil {
		return d.err
	}
	if k.board.Simulated() == nil {
		port := k.cfg.MustGet("gps.port").String()
		gps, err := ublox6.Open(port, k.cfg.MustGet("gps.baud").Int())
		if err != nil {
			return fmt.Errorf("can't open GPS on %s: %w", port, err)
		}
		f.GPS = gps
	} else {
		k.logger.Info("GPS disabled while simulating")
	}
	pub, err := k.publisher(ctx)
	if err != nil {
		if c, ok := f.GPS.(io.Closer); ok {
			c.Close()
		}
		return err
	}
	defer pub.Close()
	f.Publisher = pub
	return f.Run(ctx)
}
