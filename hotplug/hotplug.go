// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

// Package hotplug reports GPIO chips being added to and removed from the
// system, such as when an add-on board or USB GPIO adapter is connected.
package hotplug

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pilebones/go-udev/netlink"
)

// Action is the change to the chip.
type Action string

const (
	// Added indicates a chip has been added.
	Added Action = "add"
	// Removed indicates a chip has been removed.
	Removed Action = "remove"
)

// Event describes a chip being added or removed.
type Event struct {
	Action  Action
	Chip    string
	DevPath string
}

// FromUEvent converts a udev event for a gpiochip into an Event.
//
// Returns false if the event is not a chip being added or removed.
func FromUEvent(evt netlink.UEvent) (Event, bool) {
	var a Action
	switch evt.Action {
	case netlink.ADD:
		a = Added
	case netlink.REMOVE:
		a = Removed
	default:
		return Event{}, false
	}
	devname := evt.Env["DEVNAME"]
	if devname == "" {
		return Event{}, false
	}
	if !filepath.IsAbs(devname) {
		devname = "/dev/" + devname
	}
	chip := filepath.Base(devname)
	if !strings.HasPrefix(chip, "gpiochip") {
		return Event{}, false
	}
	return Event{Action: a, Chip: chip, DevPath: devname}, true
}

// Watcher monitors udev for gpiochip events.
type Watcher struct {
	conn   *netlink.UEventConn
	quit   chan struct{}
	queue  chan netlink.UEvent
	merrs  chan error
	events chan Event
	errs   chan error
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewWatcher starts monitoring udev.
func NewWatcher() (*Watcher, error) {
	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		return nil, fmt.Errorf("unable to connect to Netlink Kobject UEvent socket: %w", err)
	}
	action := "add|remove"
	matcher := &netlink.RuleDefinition{Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "gpio",
			"DEVNAME":   "gpiochip\\d+",
		}}
	// the monitor makes at most one send after quit, which the buffers absorb
	queue := make(chan netlink.UEvent, 1)
	errs := make(chan error, 1)
	w := &Watcher{
		conn:   conn,
		queue:  queue,
		merrs:  errs,
		events: make(chan Event),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	w.quit = conn.Monitor(queue, errs, matcher)
	w.wg.Add(1)
	go w.run(queue, errs)
	return w, nil
}

func (w *Watcher) run(queue <-chan netlink.UEvent, errs <-chan error) {
	defer w.wg.Done()
	for {
		select {
		case uevt := <-queue:
			evt, ok := FromUEvent(uevt)
			if !ok {
				continue
			}
			select {
			case w.events <- evt:
			case <-w.done:
				return
			}
		case err := <-errs:
			select {
			case w.errs <- err:
			default:
			}
		case <-w.done:
			return
		}
	}
}

// Events returns the channel of chip events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of monitoring errors.
//
// Errors are dropped if not read.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	w.wg.Wait()
	w.quit <- struct{}{}
	err := w.conn.Close()
	w.drain()
	return err
}

// drain discards anything left queued by the monitor, freeing it to see
// quit.
func (w *Watcher) drain() {
	for {
		select {
		case <-w.queue:
		case <-w.merrs:
		default:
			return
		}
	}
}
