// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package telemetry

import (
	"context"
	"net"
	"strconv"

	"github.com/enbility/zeroconf/v3"
)

const (
	// ServiceType is the DNS-SD service type of the agent.
	ServiceType = "_iotkit-agent._udp"
	// Domain is the DNS-SD domain the agent is advertised in.
	Domain = "local."
)

// Advertisement is a registered agent service.
type Advertisement struct {
	server *zeroconf.Server
}

// Advertise registers the agent listening on port with mDNS.
func Advertise(instance string, port int, txt []string) (*Advertisement, error) {
	server, err := zeroconf.Register(instance, ServiceType, Domain, port, txt, nil)
	if err != nil {
		return nil, err
	}
	return &Advertisement{server: server}, nil
}

// Close withdraws the advertisement.
func (a *Advertisement) Close() {
	a.server.Shutdown()
}

// Discover browses for an agent and returns the address of the first found.
//
// Discover blocks until an agent is found or the ctx is done.
func Discover(ctx context.Context) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)
	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed)
	}()
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return "", ctx.Err()
			}
			if addr, ok := AgentAddr(entry); ok {
				return addr, nil
			}
		case <-removed:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// AgentAddr returns the UDP address of the agent described by the entry,
// preferring IPv4.
func AgentAddr(entry *zeroconf.ServiceEntry) (string, bool) {
	if entry == nil || entry.Port == 0 {
		return "", false
	}
	var ip net.IP
	switch {
	case len(entry.AddrIPv4) > 0:
		ip = entry.AddrIPv4[0]
	case len(entry.AddrIPv6) > 0:
		ip = entry.AddrIPv6[0]
	default:
		return "", false
	}
	return net.JoinHostPort(ip.String(), strconv.Itoa(entry.Port)), true
}
