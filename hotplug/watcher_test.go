// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package hotplug

import (
	"errors"
	"testing"
	"time"

	"github.com/pilebones/go-udev/netlink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrain(t *testing.T) {
	w := &Watcher{
		queue: make(chan netlink.UEvent, 1),
		merrs: make(chan error, 1),
	}
	w.queue <- netlink.UEvent{Action: netlink.ADD}
	w.merrs <- errors.New("closed")
	w.drain()
	assert.Len(t, w.queue, 0)
	assert.Len(t, w.merrs, 0)

	// a blocked monitor send completes after the drain
	w.queue <- netlink.UEvent{Action: netlink.ADD}
	sent := make(chan struct{})
	go func() {
		w.queue <- netlink.UEvent{Action: netlink.REMOVE}
		close(sent)
	}()
	w.drain()
	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("monitor send still blocked")
	}
}

func TestWatcherClose(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Skipf("udev unavailable: %s", err)
	}
	done := make(chan error)
	go func() {
		done <- w.Close()
	}()
	select {
	case err := <-done:
		require.Nil(t, err)
	case <-time.After(time.Second):
		t.Fatal("close blocked")
	}
}
