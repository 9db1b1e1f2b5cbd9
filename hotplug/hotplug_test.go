// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package hotplug_test

import (
	"testing"

	"github.com/pilebones/go-udev/netlink"
	"github.com/stretchr/testify/assert"
	"github.com/warthog618/go-iotkit/hotplug"
)

func TestFromUEvent(t *testing.T) {
	patterns := []struct {
		name string
		evt  netlink.UEvent
		xevt hotplug.Event
		ok   bool
	}{
		{
			"add",
			netlink.UEvent{
				Action: netlink.ADD,
				Env:    map[string]string{"SUBSYSTEM": "gpio", "DEVNAME": "/dev/gpiochip2"},
			},
			hotplug.Event{Action: hotplug.Added, Chip: "gpiochip2", DevPath: "/dev/gpiochip2"},
			true,
		},
		{
			"remove relative",
			netlink.UEvent{
				Action: netlink.REMOVE,
				Env:    map[string]string{"SUBSYSTEM": "gpio", "DEVNAME": "gpiochip3"},
			},
			hotplug.Event{Action: hotplug.Removed, Chip: "gpiochip3", DevPath: "/dev/gpiochip3"},
			true,
		},
		{
			"change",
			netlink.UEvent{
				Action: netlink.CHANGE,
				Env:    map[string]string{"DEVNAME": "/dev/gpiochip2"},
			},
			hotplug.Event{},
			false,
		},
		{
			"no devname",
			netlink.UEvent{
				Action: netlink.ADD,
				Env:    map[string]string{"SUBSYSTEM": "gpio"},
			},
			hotplug.Event{},
			false,
		},
		{
			"not a chip",
			netlink.UEvent{
				Action: netlink.ADD,
				Env:    map[string]string{"DEVNAME": "/dev/ttyUSB0"},
			},
			hotplug.Event{},
			false,
		},
	}
	for _, p := range patterns {
		tf := func(t *testing.T) {
			evt, ok := hotplug.FromUEvent(p.evt)
			assert.Equal(t, p.ok, ok)
			assert.Equal(t, p.xevt, evt)
		}
		t.Run(p.name, tf)
	}
}
