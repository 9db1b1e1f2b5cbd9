// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package iotkit

import (
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// SoftPWM generates a PWM signal by toggling a DigitalOut.
//
// The timing is only as good as the Go scheduler allows, so it is suitable
// for dimming LEDs but not for driving servos.
type SoftPWM struct {
	out    DigitalOut
	mu     sync.Mutex
	duty   gpio.Duty
	period time.Duration
	update chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// NewSoftPWM creates a SoftPWM driving out.
//
// The output is held inactive until the first call to PWM.
func NewSoftPWM(out DigitalOut) *SoftPWM {
	p := &SoftPWM{
		out:    out,
		period: time.Millisecond,
		update: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// PWM sets the duty cycle and frequency of the output.
//
// A zero frequency retains the current period.
func (p *SoftPWM) PWM(duty gpio.Duty, f physic.Frequency) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.duty = duty
	if f > 0 {
		p.period = f.Period()
	}
	select {
	case p.update <- struct{}{}:
	default:
	}
	return nil
}

// Close stops the PWM and leaves the output inactive.
func (p *SoftPWM) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.closed = true
	p.mu.Unlock()
	close(p.done)
	p.wg.Wait()
	return p.out.SetValue(0)
}

func (p *SoftPWM) settings() (time.Duration, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	high := time.Duration(Fraction(p.duty) * float64(p.period))
	return high, p.period - high
}

func (p *SoftPWM) run() {
	defer p.wg.Done()
	p.out.SetValue(0)
	for {
		high, low := p.settings()
		switch {
		case high <= 0:
			p.out.SetValue(0)
			if !p.wait(0) {
				return
			}
		case low <= 0:
			p.out.SetValue(1)
			if !p.wait(0) {
				return
			}
		default:
			p.out.SetValue(1)
			if !p.wait(high) {
				return
			}
			p.out.SetValue(0)
			if !p.wait(low) {
				return
			}
		}
	}
}

// wait blocks for d, or until the settings are updated if d is zero.
//
// Returns false once the PWM is closed.
func (p *SoftPWM) wait(d time.Duration) bool {
	if d == 0 {
		select {
		case <-p.done:
			return false
		case <-p.update:
			return true
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-p.done:
		return false
	case <-t.C:
		return true
	}
}

// PinOut adapts a periph gpio.PinOut, such as a sysfs LED, to a DigitalOut.
//
// The embedded PinOut also provides PWM, so a PinOut is a PWMOut.
type PinOut struct {
	gpio.PinOut
}

// SetValue drives the pin high for 1 and low for 0.
func (p PinOut) SetValue(v int) error {
	return p.Out(gpio.Level(v != 0))
}
