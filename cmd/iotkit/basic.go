// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/warthog618/go-iotkit/recipe"
)

func init() {
	for _, c := range []*cobra.Command{blinkCmd, dinCmd, ainCmd, pwmCmd, interruptCmd, ledsCmd} {
		rootCmd.AddCommand(c)
	}
}

var (
	blinkCmd = &cobra.Command{
		Use:   "blink",
		Short: "Blink an LED",
		Long:  `Toggle the led pin once a second.`,
		RunE:  runRecipe(blink),
	}
	dinCmd = &cobra.Command{
		Use:   "din",
		Short: "Read a digital input",
		Long:  `Print the value of the input pin once a second.`,
		RunE:  runRecipe(din),
	}
	ainCmd = &cobra.Command{
		Use:   "ain",
		Short: "Read an analog input",
		Long:  `Print the raw value of the analog pin once a second.`,
		RunE:  runRecipe(ain),
	}
	pwmCmd = &cobra.Command{
		Use:   "pwm",
		Short: "Sweep a PWM output",
		Long:  `Ramp the duty cycle of the pwm pin from 0 to 100% in 1% steps every 50ms, with a 1ms period.`,
		RunE:  runRecipe(pwm),
	}
	interruptCmd = &cobra.Command{
		Use:   "interrupt",
		Short: "Count edges on an input",
		Long:  `Count both edges on the counter pin and print the count once a second.`,
		RunE:  runRecipe(interrupt),
	}
	ledsCmd = &cobra.Command{
		Use:   "leds",
		Short: "Cycle a set of LEDs",
		Long:  `Light each of the leds pins in turn for 200ms.`,
		RunE:  runRecipe(leds),
	}
)

func blink(ctx context.Context, k *kit) error {
	d := devices{k: k}
	b := recipe.Blink{Out: d.digitalOut("led"), Logger: k.logger}
	if d.err != nil {
		return d.err
	}
	return b.Run(ctx)
}

func din(ctx context.Context, k *kit) error {
	d := devices{k: k}
	r := recipe.DigitalIn{In: d.digitalIn("input"), Out: os.Stdout}
	if d.err != nil {
		return d.err
	}
	return r.Run(ctx)
}

func ain(ctx context.Context, k *kit) error {
	d := devices{k: k}
	r := recipe.AnalogIn{In: d.analogIn("analog"), Out: os.Stdout}
	if d.err != nil {
		return d.err
	}
	return r.Run(ctx)
}

func pwm(ctx context.Context, k *kit) error {
	d := devices{k: k}
	p := recipe.PWM{Out: d.pwmOut("pwm"), Logger: k.logger}
	if d.err != nil {
		return d.err
	}
	return p.Run(ctx)
}

func interrupt(ctx context.Context, k *kit) error {
	d := devices{k: k}
	i := recipe.Interrupt{Counter: d.counter("counter"), Out: os.Stdout}
	if d.err != nil {
		return d.err
	}
	return i.Run(ctx)
}

func leds(ctx context.Context, k *kit) error {
	d := devices{k: k}
	l := recipe.LEDs{LEDs: d.digitalOuts("leds"), Logger: k.logger}
	if d.err != nil {
		return d.err
	}
	return l.Run(ctx)
}
