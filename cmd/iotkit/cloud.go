// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warthog618/go-iotkit"
	"github.com/warthog618/go-iotkit/device/buzzer"
	"github.com/warthog618/go-iotkit/recipe"
	"github.com/warthog618/go-iotkit/sensor"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/aht20"
)

func init() {
	flameCmd.Flags().BoolVar(&flameOpts.Alarm, "alarm", false, "sound the buzzer while a flame is detected")
	cloudCmd.Flags().IntVarP(&cloudOpts.Count, "count", "n", 5, "the number of messages to send, or 0 for no limit")
	rootCmd.AddCommand(flameCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(cloudCmd)
}

var (
	flameCmd = &cobra.Command{
		Use:   "flame",
		Short: "Publish flame detection",
		Long:  `Check the flame sensor every 3 seconds and publish the result.`,
		RunE:  runRecipe(flame),
	}
	flameOpts = struct {
		Alarm bool
	}{}
	envCmd = &cobra.Command{
		Use:   "env",
		Short: "Publish temperature and humidity",
		Long:  `Read the temperature and humidity from an AHT20 on the I2C bus every 5 seconds and publish them.`,
		RunE:  runRecipe(env),
	}
	cloudCmd = &cobra.Command{
		Use:   "cloud",
		Short: "Send the temperature to a cloud hub",
		Long:  `Read the temperature once a second and send it to the hub, or other configured telemetry endpoints.`,
		RunE:  runRecipe(cloud),
	}
	cloudOpts = struct {
		Count int
	}{}
)

func flame(ctx context.Context, k *kit) error {
	d := devices{k: k}
	f := recipe.Flame{
		Sensor: sensor.Flame{In: d.digitalIn("flame")},
		Out:    os.Stdout,
		Logger: k.logger,
	}
	if flameOpts.Alarm {
		if bz := d.pwmOut("buzzer"); d.err == nil {
			f.Buzzer = buzzer.New(bz)
		}
	}
	if d.err != nil {
		return d.err
	}
	pub, err := k.publisher(ctx)
	if err != nil {
		return err
	}
	defer pub.Close()
	f.Publisher = pub
	return f.Run(ctx)
}

// simEnv is an environment sensor built from simulated analog inputs.
type simEnv struct {
	temperature sensor.Temperature
	humidity    iotkit.AnalogIn
}

func (s simEnv) Sense(e *physic.Env) error {
	c, err := s.temperature.Celsius()
	if err != nil {
		return err
	}
	raw, err := s.humidity.Read()
	if err != nil {
		return err
	}
	e.Temperature = physic.ZeroCelsius + physic.Temperature(c*float64(physic.Celsius))
	e.Humidity = physic.RelativeHumidity(raw * 100 * int(physic.PercentRH) / iotkit.Max(s.humidity))
	return nil
}

func env(ctx context.Context, k *kit) error {
	d := devices{k: k}
	e := recipe.Env{Logger: k.logger}
	if k.board.Simulated() != nil {
		e.Sensor = simEnv{
			temperature: sensor.Temperature{In: d.analogIn("temperature")},
			humidity:    d.analogIn("humidity"),
		}
	} else {
		bus := d.bus()
		if d.err != nil {
			return d.err
		}
		dev, err := aht20.NewI2C(bus, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize AHT20: %w", err)
		}
		e.Sensor = dev
	}
	if d.err != nil {
		return d.err
	}
	pub, err := k.publisher(ctx)
	if err != nil {
		return err
	}
	defer pub.Close()
	e.Publisher = pub
	return e.Run(ctx)
}

func cloud(ctx context.Context, k *kit) error {
	d := devices{k: k}
	c := recipe.Cloud{
		Temperature: sensor.Temperature{In: d.analogIn("temperature")},
		Count:       cloudOpts.Count,
		Logger:      k.logger,
	}
	if d.err != nil {
		return d.err
	}
	pub, err := k.publisher(ctx)
	if err != nil {
		return err
	}
	defer pub.Close()
	c.Publisher = pub
	if err := c.Run(ctx); err != nil {
		return err
	}
	fmt.Printf("sent %d messages\n", c.Sent())
	return nil
}
