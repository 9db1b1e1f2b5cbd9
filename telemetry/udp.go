// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"syscall"
	"time"
)

// DefaultAgentAddr is the address the agent listens on.
const DefaultAgentAddr = "localhost:41234"

// UDP publishes samples to an agent as JSON datagrams.
type UDP struct {
	conn net.Conn
}

// NewUDP creates a publisher sending to the agent at addr.
func NewUDP(addr string) (*UDP, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}
	return &UDP{conn: conn}, nil
}

// Publish sends the sample to the agent.
//
// Samples are dropped if no agent is listening.
func (u *UDP) Publish(ctx context.Context, s Sample) error {
	b, err := json.Marshal(AgentMessage{Name: s.Name, Value: s.Value})
	if err != nil {
		return err
	}
	if dl, ok := ctx.Deadline(); ok {
		u.conn.SetWriteDeadline(dl)
	}
	_, err = u.conn.Write(b)
	if errors.Is(err, syscall.ECONNREFUSED) {
		return nil
	}
	return err
}

// Close closes the connection to the agent.
func (u *UDP) Close() error {
	return u.conn.Close()
}

// Agent receives samples from publishers over UDP and forwards them.
type Agent struct {
	conn   net.PacketConn
	pub    Publisher
	logger *slog.Logger
}

// ListenAgent creates an Agent listening on addr and forwarding to pub.
func ListenAgent(addr string, pub Publisher, logger *slog.Logger) (*Agent, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{conn: conn, pub: pub, logger: logger}, nil
}

// Addr returns the address the agent is listening on.
func (a *Agent) Addr() net.Addr {
	return a.conn.LocalAddr()
}

// Serve receives and forwards messages until the ctx is cancelled.
//
// Malformed messages are logged and dropped.
func (a *Agent) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		a.conn.SetReadDeadline(time.Now())
	}()
	buf := make([]byte, 1500)
	for {
		n, from, err := a.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}
		var msg AgentMessage
		if err := json.Unmarshal(buf[:n], &msg); err != nil || msg.Name == "" {
			a.logger.Warn("dropped malformed message", "from", from, "len", n)
			continue
		}
		s := NewSample(msg.Name, msg.Value)
		if err := a.pub.Publish(ctx, s); err != nil {
			a.logger.Error("publish failed", "name", s.Name, "err", err)
		}
	}
}

// Close stops the agent listening.
func (a *Agent) Close() error {
	return a.conn.Close()
}

var _ Publisher = (*UDP)(nil)
