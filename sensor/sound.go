// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package sensor

import (
	"context"
	"time"

	"github.com/warthog618/go-iotkit"
)

// SoundLevel tracks a running average of sound amplitude from a Grove sound
// sensor.
type SoundLevel struct {
	// AveragedOver is the number of windows averaged.
	AveragedOver int
	// Threshold is the running average below which the level is quiet.
	Threshold float64
	running   float64
}

// NewSoundLevel creates a SoundLevel averaging over 10 windows, with a
// threshold of 80.
func NewSoundLevel() *SoundLevel {
	return &SoundLevel{AveragedOver: 10, Threshold: 80}
}

// Update folds a window of samples into the running average and returns the
// updated average.
func (s *SoundLevel) Update(samples []int) float64 {
	if len(samples) == 0 {
		return s.running
	}
	sum := 0
	for _, v := range samples {
		sum += v
	}
	avg := float64(sum) / float64(len(samples))
	n := float64(s.AveragedOver)
	if n < 1 {
		n = 1
	}
	s.running = ((n-1)*s.running + avg) / n
	return s.running
}

// Running returns the current running average.
func (s *SoundLevel) Running() float64 {
	return s.running
}

// Loud returns true if the running average exceeds the threshold.
func (s *SoundLevel) Loud() bool {
	return s.running > s.Threshold
}

const (
	soundMin = 50
	soundMax = 200
	// BarMax is the highest level of a 10 segment LED bar.
	BarMax = 10
)

// BarLevel maps a running average to a 10 segment bar level.
func BarLevel(running float64) int {
	l := int((running - soundMin) * BarMax / (soundMax - soundMin))
	if l < 0 {
		return 0
	}
	if l > BarMax {
		return BarMax
	}
	return l
}

// Window reads n samples from a, interval apart.
func Window(ctx context.Context, a iotkit.AnalogIn, n int, interval time.Duration) ([]int, error) {
	vv := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
				return vv, ctx.Err()
			case <-time.After(interval):
			}
		}
		v, err := a.Read()
		if err != nil {
			return vv, err
		}
		vv = append(vv, v)
	}
	return vv, nil
}
