// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package sim

import (
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Responder fills r in response to a transaction addressed to addr.
type Responder func(addr uint16, w, r []byte) error

// Bus is a simulated I2C bus.
//
// Writes are accepted and counted. Reads are zero filled unless a Responder
// is registered for the address.
type Bus struct {
	mu         sync.Mutex
	responders map[uint16]Responder
	txs        map[uint16]int
	last       map[uint16][]byte
	closed     bool
}

var _ i2c.BusCloser = (*Bus)(nil)

// NewBus creates a simulated I2C bus.
func NewBus() *Bus {
	return &Bus{
		responders: map[uint16]Responder{},
		txs:        map[uint16]int{},
		last:       map[uint16][]byte{},
	}
}

// Respond registers a Responder for addr.
func (b *Bus) Respond(addr uint16, r Responder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responders[addr] = r
}

func (b *Bus) String() string {
	return "sim-i2c"
}

// Tx implements i2c.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.txs[addr]++
	if len(w) > 0 {
		b.last[addr] = append([]byte(nil), w...)
	}
	if resp, ok := b.responders[addr]; ok {
		return resp(addr, w, r)
	}
	for i := range r {
		r[i] = 0
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	return nil
}

// Close implements i2c.BusCloser.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.closed = true
	return nil
}

// Count returns the number of transactions addressed to addr.
func (b *Bus) Count(addr uint16) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.txs[addr]
}

// LastWrite returns the most recent data written to addr.
func (b *Bus) LastWrite(addr uint16) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.last[addr]...)
}
