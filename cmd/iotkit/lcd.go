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
	"github.com/warthog618/go-iotkit/device/buzzer"
	"github.com/warthog618/go-iotkit/device/ledbar"
	"github.com/warthog618/go-iotkit/device/mma7660"
	"github.com/warthog618/go-iotkit/recipe"
	"github.com/warthog618/go-iotkit/sensor"
)

func init() {
	for _, c := range []*cobra.Command{temperatureCmd, curtainCmd, solarCmd, plantCmd, tanCmd, soundbarCmd, starterCmd} {
		rootCmd.AddCommand(c)
	}
}

var (
	temperatureCmd = &cobra.Command{
		Use:   "temperature",
		Short: "Display the temperature on the LCD",
		Long: `Display the temperature, with the minimum and maximum seen, on the LCD,
fading the backlight from blue to red as it warms.  The button resets the
minimum and maximum.`,
		RunE: runRecipe(temperature),
	}
	curtainCmd = &cobra.Command{
		Use:   "curtain",
		Short: "Open and close a curtain to hold the light level",
		Long: `Set a target light level with the rotary sensor and confirm it with the
button, then drive the stepper to draw or open the curtain to keep the
light near the target.  The button returns to setting the target.`,
		RunE: runRecipe(curtain),
	}
	solarCmd = &cobra.Command{
		Use:   "solar",
		Short: "Track the sun with a panel",
		Long: `Calibrate the left and right light sensors by sweeping the stepper, then
turn the panel towards the brighter side.`,
		RunE: runRecipe(solar),
	}
	plantCmd = &cobra.Command{
		Use:   "plant",
		Short: "Monitor the health of a plant",
		Long: `Water the plant when the soil is dry, and warn on the LCD when the
temperature or UV light is outside the healthy range.`,
		RunE: runRecipe(plant),
	}
	tanCmd = &cobra.Command{
		Use:   "tan",
		Short: "Warn of sunburn",
		Long: `Display the UV index on the LCD, colour coded by risk, and sound the buzzer
when the index or temperature is dangerous.`,
		RunE: runRecipe(tan),
	}
	soundbarCmd = &cobra.Command{
		Use:   "soundbar",
		Short: "Display the sound level on an LED bar",
		Long:  `Display the running average level of the mic on the ledbar pins, clock then data.`,
		RunE:  runRecipe(soundbar),
	}
	starterCmd = &cobra.Command{
		Use:   "starter",
		Short: "Cycle through the starter kit sensors",
		Long: `Each press of the button shows the next sensor on the LCD: temperature,
rotary angle, light, touch, then each axis of the accelerometer.`,
		RunE: runRecipe(starter),
	}
)

func temperature(ctx context.Context, k *kit) error {
	d := devices{k: k}
	t := recipe.Temperature{
		Sensor:  sensor.Temperature{In: d.analogIn("temperature")},
		Button:  sensor.Button{In: d.digitalIn("button")},
		LED:     d.digitalOut("led"),
		Display: d.lcd(),
		Logger:  k.logger,
	}
	if d.err != nil {
		return d.err
	}
	return t.Run(ctx)
}

func curtain(ctx context.Context, k *kit) error {
	d := devices{k: k}
	c := recipe.Curtain{
		Light:   sensor.Light{In: d.analogIn("light")},
		Rotary:  sensor.Rotary{In: d.analogIn("rotary")},
		Button:  sensor.Button{In: d.digitalIn("button")},
		Motor:   d.stepper("curtain.rpm"),
		Display: d.lcd(),
		Out:     os.Stdout,
		Logger:  k.logger,
	}
	if d.err != nil {
		return d.err
	}
	return c.Run(ctx)
}

func solar(ctx context.Context, k *kit) error {
	d := devices{k: k}
	s := recipe.Solar{
		Left:    sensor.Light{In: d.analogIn("left")},
		Right:   sensor.Light{In: d.analogIn("right")},
		Motor:   d.stepper("solar.rpm"),
		Display: d.lcd(),
		Logger:  k.logger,
	}
	if d.err != nil {
		return d.err
	}
	return s.Run(ctx)
}

func plant(ctx context.Context, k *kit) error {
	d := devices{k: k}
	p := recipe.Plant{
		Moisture:    sensor.Moisture{In: d.analogIn("moisture")},
		Temperature: sensor.Temperature{In: d.analogIn("temperature")},
		UV:          sensor.NewUV(d.analogIn("uv")),
		Pump:        d.digitalOut("pump"),
		Display:     d.lcd(),
		Logger:      k.logger,
	}
	if d.err != nil {
		return d.err
	}
	return p.Run(ctx)
}

func tan(ctx context.Context, k *kit) error {
	d := devices{k: k}
	t := recipe.Tan{
		UV:          sensor.NewUV(d.analogIn("uv")),
		Temperature: sensor.Temperature{In: d.analogIn("temperature")},
		Display:     d.lcd(),
		Logger:      k.logger,
	}
	if bz := d.pwmOut("buzzer"); d.err == nil {
		t.Buzzer = buzzer.New(bz)
	}
	if d.err != nil {
		return d.err
	}
	return t.Run(ctx)
}

func soundbar(ctx context.Context, k *kit) error {
	d := devices{k: k}
	mic := d.analogIn("mic")
	oo := d.digitalOuts("ledbar")
	if d.err != nil {
		return d.err
	}
	if len(oo) != 2 {
		return fmt.Errorf("ledbar needs 2 pins, have %d", len(oo))
	}
	s := recipe.SoundBar{
		Mic:    mic,
		Bar:    ledbar.New(oo[0], oo[1]),
		Logger: k.logger,
	}
	return s.Run(ctx)
}

func starter(ctx context.Context, k *kit) error {
	d := devices{k: k}
	s := recipe.Starter{
		Temperature: sensor.Temperature{In: d.analogIn("temperature")},
		Rotary:      sensor.Rotary{In: d.analogIn("rotary")},
		Light:       sensor.Light{In: d.analogIn("light")},
		Touch:       sensor.Button{In: d.digitalIn("touch")},
		Button:      sensor.Button{In: d.digitalIn("button")},
		Display:     d.lcd(),
		Logger:      k.logger,
	}
	bus := d.bus()
	if d.err != nil {
		return d.err
	}
	accel := mma7660.New(bus)
	if err := accel.Init(mma7660.Rate64); err != nil {
		return fmt.Errorf("can't initialise accelerometer: %w", err)
	}
	defer accel.SetActive(false)
	s.Accel = accel
	return s.Run(ctx)
}
