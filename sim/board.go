// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package sim

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/mgutz/ansi"
	"github.com/olekukonko/tablewriter"
)

// Board is a collection of simulated devices, created on first use and
// identified by name.
type Board struct {
	mu      sync.Mutex
	pins    map[string]*Pin
	analogs map[string]*Analog
	pwms    map[string]*PWM
	counts  map[string]*Counter
	bus     *Bus
	seed    int64
}

// NewBoard creates an empty simulated board.
func NewBoard() *Board {
	return &Board{
		pins:    map[string]*Pin{},
		analogs: map[string]*Analog{},
		pwms:    map[string]*PWM{},
		counts:  map[string]*Counter{},
		bus:     NewBus(),
		seed:    time.Now().UnixNano(),
	}
}

// Pin returns the named digital pin.
func (b *Board) Pin(name string) *Pin {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pins[name]
	if !ok {
		p = NewPin(name)
		b.pins[name] = p
	}
	return p
}

// Analog returns the named ADC channel.
//
// Channels created by the board wander, so readings change over time.
func (b *Board) Analog(name string, bits uint) *Analog {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.analogs[name]
	if !ok {
		b.seed++
		a = NewAnalog(name, bits, WithWander(int(bits), b.seed))
		b.analogs[name] = a
	}
	return a
}

// PWM returns the named PWM output.
func (b *Board) PWM(name string) *PWM {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pwms[name]
	if !ok {
		p = NewPWM(name)
		b.pwms[name] = p
	}
	return p
}

// Counter returns the named edge counter.
func (b *Board) Counter(name string) *Counter {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.counts[name]
	if !ok {
		c = NewCounter(name)
		b.counts[name] = c
	}
	return c
}

// Bus returns the simulated I2C bus.
func (b *Board) Bus() *Bus {
	return b.bus
}

// Render writes a table of the current device states to w.
func (b *Board) Render(w io.Writer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"NAME", "KIND", "DIR", "STATE"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
	})
	for _, name := range sortedKeys(b.pins) {
		v, dir := b.pins[name].Level()
		table.Append([]string{name, "digital", directionString(dir), stateString(v)})
	}
	for _, name := range sortedKeys(b.analogs) {
		a := b.analogs[name]
		table.Append([]string{name, "analog", "INPUT", fmt.Sprintf("%d/%d", a.Value(), 1<<a.Bits()-1)})
	}
	for _, name := range sortedKeys(b.pwms) {
		d, f, _ := b.pwms[name].Setting()
		table.Append([]string{name, "pwm", "OUTPUT", fmt.Sprintf("%s %s", d, f)})
	}
	for _, name := range sortedKeys(b.counts) {
		table.Append([]string{name, "counter", "INPUT", fmt.Sprintf("%d", b.counts[name].Count())})
	}
	table.Append([]string{b.bus.String(), "i2c", "-", "-"})
	table.Render()
}

// Watch renders the board to w every period until ctx is done.
func (b *Board) Watch(ctx context.Context, w io.Writer, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, "\033[H\033[2J")
			b.Render(w)
		}
	}
}

func sortedKeys[T any](m map[string]T) []string {
	kk := make([]string, 0, len(m))
	for k := range m {
		kk = append(kk, k)
	}
	sort.Strings(kk)
	return kk
}

func stateString(v int) string {
	if v == 0 {
		return ansi.Color("LOW", "green")
	}
	return ansi.Color("HIGH", "red")
}

func directionString(dir Direction) string {
	switch dir {
	case Input:
		return "INPUT"
	case Output:
		return "OUTPUT"
	default:
		return "UNDEF"
	}
}
