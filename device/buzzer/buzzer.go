// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package buzzer provides a driver for a piezo buzzer driven by a PWM output.
package buzzer

import (
	"context"
	"time"

	"github.com/warthog618/go-iotkit"
	"periph.io/x/conn/v3/physic"
)

// Note is the period of a tone.
type Note time.Duration

// The notes of the C major scale.
const (
	DO  = Note(3800 * time.Microsecond)
	RE  = Note(3400 * time.Microsecond)
	MI  = Note(3000 * time.Microsecond)
	FA  = Note(2900 * time.Microsecond)
	SOL = Note(2550 * time.Microsecond)
	LA  = Note(2270 * time.Microsecond)
	SI  = Note(2000 * time.Microsecond)
)

var noteNames = map[Note]string{
	DO:  "DO",
	RE:  "RE",
	MI:  "MI",
	FA:  "FA",
	SOL: "SOL",
	LA:  "LA",
	SI:  "SI",
}

func (n Note) String() string {
	if s, ok := noteNames[n]; ok {
		return s
	}
	return time.Duration(n).String()
}

// Frequency returns the frequency of the note.
func (n Note) Frequency() physic.Frequency {
	return physic.PeriodToFrequency(time.Duration(n))
}

// Buzzer is a piezo buzzer.
type Buzzer struct {
	out    iotkit.PWMOut
	volume float64
}

// New creates a Buzzer driven by out, at full volume.
func New(out iotkit.PWMOut) *Buzzer {
	return &Buzzer{out: out, volume: 1}
}

// SetVolume sets the volume, in the range 0..1.
func (b *Buzzer) SetVolume(v float64) {
	switch {
	case v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	b.volume = v
}

// Volume returns the current volume.
func (b *Buzzer) Volume() float64 {
	return b.volume
}

// Play sounds the note for the duration d, or until the ctx is cancelled.
func (b *Buzzer) Play(ctx context.Context, n Note, d time.Duration) error {
	if err := b.out.PWM(iotkit.Duty(b.volume*0.5), n.Frequency()); err != nil {
		return err
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
	return b.Stop()
}

// Stop silences the buzzer.
func (b *Buzzer) Stop() error {
	return b.out.PWM(0, 0)
}
