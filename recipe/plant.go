// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package recipe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/warthog618/go-iotkit"
	"github.com/warthog618/go-iotkit/sensor"
)

// Plant monitoring thresholds.
const (
	// MoistureMin is the reading below which the soil is dry.
	MoistureMin = 300
	// PlantTempMin is the lowest healthy temperature, in Celsius.
	PlantTempMin = 18
	// PlantTempMax is the highest healthy temperature, in Celsius.
	PlantTempMax = 30
	// UVMin is the lowest healthy UV intensity, in mW/m^2.
	UVMin = 50
)

// PlantHealthy returns true if the temperature and UV intensity are within
// the healthy range for the plant.
func PlantHealthy(celsius int, intensity float64) bool {
	return celsius >= PlantTempMin && celsius <= PlantTempMax && intensity >= UVMin
}

// Plant monitors the soil moisture, temperature and light for a plant,
// and waters it when the soil is dry.
type Plant struct {
	Moisture    sensor.Moisture
	Temperature sensor.Temperature
	UV          sensor.UV
	Pump        iotkit.DigitalOut
	Display     Display
	// Watering is the time the pump runs, default 10s.
	Watering time.Duration
	// Period is the time between checks, default 15s.
	Period time.Duration
	Logger *slog.Logger
}

// Check reads the sensors, waters the plant if necessary, and updates the
// display.
func (p *Plant) Check(ctx context.Context) error {
	log := loggerOrDefault(p.Logger)
	moisture, err := p.Moisture.Value()
	if err != nil {
		return err
	}
	c, err := p.Temperature.Celsius()
	if err != nil {
		return err
	}
	celsius := int(c)
	intensity, err := p.UV.Intensity(ctx)
	if err != nil {
		return err
	}
	if moisture < MoistureMin {
		log.Info("dry soil", "moisture", moisture)
		if err := p.water(ctx); err != nil {
			return err
		}
	}
	color := LimeGreen
	if !PlantHealthy(celsius, intensity) {
		color = Red
	}
	if err := setColor(p.Display, color); err != nil {
		return err
	}
	if err := p.Display.WriteAt(0, 0, fmt.Sprintf("Temperature: %d  ", celsius)); err != nil {
		return err
	}
	return p.Display.WriteAt(1, 0, fmt.Sprintf("Light: %.1f   ", intensity))
}

func (p *Plant) water(ctx context.Context) error {
	if err := setColor(p.Display, LightSteelBlue); err != nil {
		return err
	}
	if err := p.Display.WriteAt(0, 0, "Dry soil!       "); err != nil {
		return err
	}
	if err := p.Display.WriteAt(1, 0, "Watering...     "); err != nil {
		return err
	}
	if err := p.Pump.SetValue(1); err != nil {
		return err
	}
	// the pump is always turned off, even if cancelled mid watering
	sleep(ctx, durationOr(p.Watering, 10*time.Second))
	return p.Pump.SetValue(0)
}

// Run checks the plant until ctx is done.
func (p *Plant) Run(ctx context.Context) error {
	defer p.Pump.SetValue(0)
	return every(ctx, durationOr(p.Period, 15*time.Second), func() error {
		return p.Check(ctx)
	})
}
