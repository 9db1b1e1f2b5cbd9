// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package telemetry forwards sensor samples to local and cloud endpoints.
//
// Samples are published to a Publisher, which may forward them to an agent
// over UDP, to a cloud hub over HTTP, to a log, or record them to a file.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// Sample is a single named reading.
type Sample struct {
	Name  string    `cbor:"1,keyasint"`
	Value any       `cbor:"2,keyasint"`
	Time  time.Time `cbor:"3,keyasint"`
}

// NewSample creates a sample of the value, timestamped now.
func NewSample(name string, value any) Sample {
	return Sample{Name: name, Value: value, Time: time.Now()}
}

// AgentMessage is the JSON form of a sample sent to the agent.
type AgentMessage struct {
	Name  string `json:"n"`
	Value any    `json:"v"`
}

// HubMessage is the JSON form of a temperature reading sent to a cloud hub.
type HubMessage struct {
	DeviceID    string
	Temperature float64
}

// MarshalJSON encodes the temperature with two decimal places.
func (m HubMessage) MarshalJSON() ([]byte, error) {
	id, err := json.Marshal(m.DeviceID)
	if err != nil {
		return nil, err
	}
	b := append([]byte(`{"deviceId":`), id...)
	b = append(b, `,"temperature":`...)
	b = append(b, []byte(formatFloat2(m.Temperature))...)
	return append(b, '}'), nil
}

// UnmarshalJSON decodes the message.
func (m *HubMessage) UnmarshalJSON(data []byte) error {
	var v struct {
		DeviceID    string  `json:"deviceId"`
		Temperature float64 `json:"temperature"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	m.DeviceID = v.DeviceID
	m.Temperature = v.Temperature
	return nil
}

// ErrUnsupportedValue indicates a sample value cannot be carried by the
// publisher.
var ErrUnsupportedValue = errors.New("unsupported value")

// Publisher forwards samples to an endpoint.
type Publisher interface {
	Publish(ctx context.Context, s Sample) error
	Close() error
}

// Multi publishes samples to several publishers.
type Multi []Publisher

// Publish publishes the sample to each publisher in turn.
//
// A failure of one publisher does not prevent publishing to the others.
func (m Multi) Publish(ctx context.Context, s Sample) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes all the publishers.
func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log publishes samples to a structured logger.
type Log struct {
	Logger *slog.Logger
}

// Publish logs the sample.
func (l Log) Publish(ctx context.Context, s Sample) error {
	l.Logger.InfoContext(ctx, "sample", "name", s.Name, "value", s.Value)
	return nil
}

// Close is a nop.
func (l Log) Close() error {
	return nil
}

var (
	_ Publisher = Multi(nil)
	_ Publisher = Log{}
)
