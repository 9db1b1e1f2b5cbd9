// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-iotkit"
	"github.com/warthog618/go-iotkit/telemetry"
)

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

func TestRenderRecords(t *testing.T) {
	var buf bytes.Buffer
	r := telemetry.NewRecorder(nopCloser{&buf})
	ctx := context.Background()
	ts := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	err := r.Publish(ctx, telemetry.Sample{Name: "temperature", Value: 21.5, Time: ts})
	require.Nil(t, err)
	err = r.Publish(ctx, telemetry.Sample{Name: "fire", Value: true, Time: ts})
	require.Nil(t, err)

	var out bytes.Buffer
	err = renderRecords(&out, bytes.NewReader(buf.Bytes()), "", "")
	require.Nil(t, err)
	assert.Contains(t, out.String(), r.Session())
	assert.Contains(t, out.String(), "21.5")
	assert.Contains(t, out.String(), "fire")
	assert.Contains(t, out.String(), "2024-03-05T14:07:09Z")

	out.Reset()
	err = renderRecords(&out, bytes.NewReader(buf.Bytes()), "", "fire")
	require.Nil(t, err)
	assert.NotContains(t, out.String(), "21.5")
	assert.Contains(t, out.String(), "true")

	out.Reset()
	err = renderRecords(&out, bytes.NewReader(buf.Bytes()), "other", "")
	require.Nil(t, err)
	assert.NotContains(t, out.String(), "fire")
}

func TestLineRow(t *testing.T) {
	patterns := []struct {
		name string
		l    iotkit.LineSummary
		row  []string
	}{
		{"unused", iotkit.LineSummary{Offset: 3}, []string{"3", "unnamed", "unused", "input"}},
		{"kernel", iotkit.LineSummary{Offset: 4, Name: "LED", Used: true, Output: true},
			[]string{"4", "LED", "kernel", "output used"}},
		{"consumer", iotkit.LineSummary{Offset: 5, Name: "BTN", Consumer: "iotkit din", Used: true, ActiveLow: true},
			[]string{"5", "BTN", "\"iotkit din\"", "input active-low used"}},
	}
	for _, p := range patterns {
		tf := func(t *testing.T) {
			assert.Equal(t, p.row, lineRow(p.l, false))
		}
		t.Run(p.name, tf)
	}
}

func TestLoadConfig(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().AddFlagSet(rootCmd.PersistentFlags())
	err := cmd.Flags().Parse([]string{"--log-level", "debug", "--udp", "10.0.0.1:41234"})
	require.Nil(t, err)
	rootOpts.Pins = map[string]string{"button": "grovepi:D2"}
	defer func() { rootOpts.Pins = nil }()

	cfg, err := loadConfig(cmd)
	require.Nil(t, err)
	assert.Equal(t, "debug", cfg.MustGet("log.level").String())
	assert.Equal(t, "10.0.0.1:41234", cfg.MustGet("telemetry.udp").String())
	assert.Equal(t, "grovepi:D2", cfg.MustGet("pins.button").String())
	assert.Equal(t, "grovepi:A0", cfg.MustGet("pins.temperature").String())
	assert.Equal(t, 3.0, cfg.MustGet("battery.gain").Float())
}

func TestKitSpecs(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().AddFlagSet(rootCmd.PersistentFlags())
	err := cmd.Flags().Parse([]string{"--simulate"})
	require.Nil(t, err)
	rootOpts.Pins = map[string]string{"ir": " D2, D3 ,,D4"}
	defer func() { rootOpts.Pins = nil }()

	k, err := newKit(cmd)
	require.Nil(t, err)
	defer k.Close()
	assert.Equal(t, []string{"D2", "D3", "D4"}, k.specs("ir"))
	assert.NotNil(t, k.board.Simulated())
	assert.True(t, strings.HasPrefix(k.spec("stepper"), "22"))

	d := devices{k: k}
	l := d.lcd()
	require.Nil(t, d.err)
	assert.NotNil(t, l)
	m := d.stepper("solar.rpm")
	require.Nil(t, d.err)
	assert.Equal(t, 4096, m.StepsPerRev())
	assert.Equal(t, time.Minute/(4096*7), m.StepDelay())
	assert.Equal(t, 5, k.cfg.MustGet("curtain.rpm").Int())
}
