// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package recipe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/warthog618/go-iotkit/device/buzzer"
	"github.com/warthog618/go-iotkit/sensor"
	"github.com/warthog618/go-iotkit/telemetry"
	"periph.io/x/conn/v3/physic"
)

// Flame reports flame detection to a telemetry publisher, and sounds an
// optional alarm while a flame is detected.
type Flame struct {
	Sensor    sensor.Flame
	Buzzer    *buzzer.Buzzer
	Publisher telemetry.Publisher
	// Name is the telemetry name of the detection, default "fire".
	Name string
	// Period is the time between checks, default 3s.
	Period time.Duration
	Out    io.Writer
	Logger *slog.Logger
}

// Check reads the sensor and publishes the result.
func (f *Flame) Check(ctx context.Context) error {
	detected, err := f.Sensor.Detected()
	if err != nil {
		return err
	}
	w := writerOrDiscard(f.Out)
	if detected {
		fmt.Fprintln(w, "Flame or similar light source detected!")
	} else {
		fmt.Fprintln(w, "No flame detected.")
	}
	name := f.Name
	if name == "" {
		name = "fire"
	}
	if err := f.Publisher.Publish(ctx, telemetry.NewSample(name, detected)); err != nil {
		loggerOrDefault(f.Logger).Error("can't publish", "name", name, "error", err)
	}
	if detected && f.Buzzer != nil {
		return f.Buzzer.Play(ctx, buzzer.DO, time.Second)
	}
	return nil
}

// Run checks for flames until ctx is done.
func (f *Flame) Run(ctx context.Context) error {
	return every(ctx, durationOr(f.Period, 3*time.Second), func() error {
		return f.Check(ctx)
	})
}

// EnvSensor is a temperature and humidity sensor, such as the AHT20.
type EnvSensor interface {
	Sense(e *physic.Env) error
}

// Celsius converts a physic.Temperature to degrees Celsius.
func Celsius(t physic.Temperature) float64 {
	return float64(t-physic.ZeroCelsius) / float64(physic.Celsius)
}

// Humidity converts a physic.RelativeHumidity to percent.
func Humidity(h physic.RelativeHumidity) float64 {
	return float64(h) / float64(physic.PercentRH)
}

// Env publishes the temperature and humidity from an environment sensor.
type Env struct {
	Sensor    EnvSensor
	Publisher telemetry.Publisher
	Display   Display
	// Period is the time between readings, default 5s.
	Period time.Duration
	Logger *slog.Logger
}

// Sense reads the sensor and publishes the readings.
func (e *Env) Sense(ctx context.Context) error {
	var env physic.Env
	if err := e.Sensor.Sense(&env); err != nil {
		return err
	}
	celsius := Celsius(env.Temperature)
	rh := Humidity(env.Humidity)
	if e.Display != nil {
		err := e.Display.Show(fmt.Sprintf("Temp: %.1f C", celsius), fmt.Sprintf("RH:   %.1f %%", rh))
		if err != nil {
			return err
		}
	}
	log := loggerOrDefault(e.Logger)
	for _, s := range []telemetry.Sample{
		telemetry.NewSample("temperature", celsius),
		telemetry.NewSample("humidity", rh),
	} {
		if err := e.Publisher.Publish(ctx, s); err != nil {
			log.Error("can't publish", "name", s.Name, "error", err)
		}
	}
	return nil
}

// Run publishes readings until ctx is done.
func (e *Env) Run(ctx context.Context) error {
	return every(ctx, durationOr(e.Period, 5*time.Second), func() error {
		return e.Sense(ctx)
	})
}

// Cloud publishes the temperature to a cloud hub.
type Cloud struct {
	Temperature sensor.Temperature
	Publisher   telemetry.Publisher
	// Count is the number of messages sent, or 0 to send until cancelled.
	Count int
	// Period is the time between messages, default 1s.
	Period time.Duration
	Logger *slog.Logger

	sent int
}

// Sent returns the number of messages successfully published.
func (c *Cloud) Sent() int {
	return c.sent
}

// Send reads the temperature and publishes it.
func (c *Cloud) Send(ctx context.Context) error {
	celsius, err := c.Temperature.Celsius()
	if err != nil {
		return err
	}
	if err := c.Publisher.Publish(ctx, telemetry.NewSample("temperature", celsius)); err != nil {
		return fmt.Errorf("can't send message %d: %w", c.sent+1, err)
	}
	c.sent++
	loggerOrDefault(c.Logger).Info("sent", "message", c.sent, "temperature", celsius)
	return nil
}

// Run publishes messages until the Count is reached or ctx is done.
func (c *Cloud) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	return every(ctx, durationOr(c.Period, time.Second), func() error {
		if err := c.Send(ctx); err != nil {
			return err
		}
		if c.Count > 0 && c.sent >= c.Count {
			cancel()
		}
		return nil
	})
}
