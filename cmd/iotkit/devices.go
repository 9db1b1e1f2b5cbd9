// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/warthog618/go-iotkit"
	"github.com/warthog618/go-iotkit/device/jhd1313m1"
	"github.com/warthog618/go-iotkit/device/stepper"
	"github.com/warthog618/go-iotkit/telemetry"
	"periph.io/x/conn/v3/i2c"
)

// defaults are the recipe settings layered over the settings package
// defaults.
var defaults = map[string]interface{}{
	"sim.watch":        "0s",
	"pins.led":         "grovepi:D4",
	"pins.button":      "grovepi:D3",
	"pins.touch":       "grovepi:D2",
	"pins.input":       "grovepi:D3",
	"pins.analog":      "grovepi:A0",
	"pins.pwm":         "grovepi:D6",
	"pins.counter":     "17",
	"pins.leds":        "led:upboard:red:,led:upboard:green:,led:upboard:yellow:,led:upboard:blue:",
	"pins.temperature": "grovepi:A0",
	"pins.light":       "grovepi:A1",
	"pins.humidity":    "grovepi:A1",
	"pins.rotary":      "grovepi:A2",
	"pins.moisture":    "grovepi:A1",
	"pins.uv":          "grovepi:A2",
	"pins.mic":         "grovepi:A0",
	"pins.battery":     "grovepi:A0",
	"pins.left":        "grovepi:A1",
	"pins.right":       "grovepi:A2",
	"pins.pump":        "grovepi:D8",
	"pins.buzzer":      "grovepi:D5",
	"pins.flame":       "grovepi:D2",
	"pins.backup":      "grovepi:D7",
	"pins.tailgate":    "grovepi:D8",
	"pins.ir":          "grovepi:D2,grovepi:D3,grovepi:D7,grovepi:D8",
	"pins.ledbar":      "5,6",
	"pins.stepper":     "22,23,24,25",
	"curtain.rpm":      5,
	"solar.rpm":        7,
	"battery.gain":     3.0,
}

// devices opens the devices used by a recipe from the kit board.
//
// The first error encountered is retained and subsequent calls return nil
// devices, so a recipe can open all its devices and check err once.
type devices struct {
	k   *kit
	err error
}

func (d *devices) setErr(name string, err error) {
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("can't open %s: %w", name, err)
	}
}

func (d *devices) digitalIn(name string) iotkit.DigitalIn {
	if d.err != nil {
		return nil
	}
	in, err := d.k.board.DigitalIn(d.k.spec(name))
	d.setErr(name, err)
	return in
}

func (d *devices) digitalOut(name string) iotkit.DigitalOut {
	if d.err != nil {
		return nil
	}
	out, err := d.k.board.DigitalOut(d.k.spec(name), 0)
	d.setErr(name, err)
	return out
}

func (d *devices) digitalOuts(name string) []iotkit.DigitalOut {
	var oo []iotkit.DigitalOut
	for _, spec := range d.k.specs(name) {
		if d.err != nil {
			return nil
		}
		out, err := d.k.board.DigitalOut(spec, 0)
		d.setErr(name, err)
		oo = append(oo, out)
	}
	return oo
}

func (d *devices) analogIn(name string) iotkit.AnalogIn {
	if d.err != nil {
		return nil
	}
	in, err := d.k.board.AnalogIn(d.k.spec(name))
	d.setErr(name, err)
	return in
}

func (d *devices) pwmOut(name string) iotkit.PWMOut {
	if d.err != nil {
		return nil
	}
	out, err := d.k.board.PWMOut(d.k.spec(name))
	d.setErr(name, err)
	return out
}

func (d *devices) counter(name string) iotkit.Counter {
	if d.err != nil {
		return nil
	}
	c, err := d.k.board.Counter(d.k.spec(name), iotkit.WithPullUp)
	d.setErr(name, err)
	return c
}

func (d *devices) bus() i2c.Bus {
	if d.err != nil {
		return nil
	}
	b, err := d.k.board.Bus()
	d.setErr("I2C bus", err)
	return b
}

func (d *devices) lcd() *jhd1313m1.LCD {
	bus := d.bus()
	if d.err != nil {
		return nil
	}
	l, err := jhd1313m1.New(bus)
	d.setErr("LCD", err)
	return l
}

// stepper opens the stepper running at the speed set by the rpm key.
func (d *devices) stepper(rpm string) *stepper.Motor {
	oo := d.digitalOuts("stepper")
	if d.err != nil {
		return nil
	}
	if len(oo) != 4 {
		d.setErr("stepper", fmt.Errorf("need 4 pins, have %d", len(oo)))
		return nil
	}
	m := stepper.New(oo[0], oo[1], oo[2], oo[3], stepper.DefaultStepsPerRev)
	m.SetSpeed(d.k.cfg.MustGet(rpm).Int())
	return m
}

// publisher creates the publisher for the configured telemetry endpoints.
//
// Samples are always logged.
func (k *kit) publisher(ctx context.Context) (telemetry.Publisher, error) {
	pp := telemetry.Multi{telemetry.Log{Logger: k.logger}}
	addr := k.cfg.MustGet("telemetry.udp").String()
	if k.cfg.MustGet("telemetry.discover").Bool() {
		dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		a, err := telemetry.Discover(dctx)
		cancel()
		if err != nil {
			k.logger.Warn("agent not found", "error", err)
		} else {
			k.logger.Info("found agent", "addr", a)
			addr = a
		}
	}
	if addr != "" {
		u, err := telemetry.NewUDP(addr)
		if err != nil {
			return nil, err
		}
		pp = append(pp, u)
	}
	if url := k.cfg.MustGet("telemetry.http").String(); url != "" {
		h := telemetry.NewHTTP(url)
		h.DeviceID = k.cfg.MustGet("telemetry.device").String()
		pp = append(pp, h)
	}
	if path := k.cfg.MustGet("telemetry.record").String(); path != "" {
		r, err := telemetry.CreateRecorder(path)
		if err != nil {
			pp.Close()
			return nil, err
		}
		k.logger.Info("recording", "path", path, "session", r.Session())
		pp = append(pp, r)
	}
	return pp, nil
}
