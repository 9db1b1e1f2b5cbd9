// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package board_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-iotkit/board"
)

func TestParseSpec(t *testing.T) {
	patterns := []struct {
		spec string
		xs   board.Spec
		err  bool
	}{
		{"gpiochip0:17", board.Spec{Kind: board.Line, ID: "gpiochip0:17"}, false},
		{"17", board.Spec{Kind: board.Line, ID: "17"}, false},
		{"GPIO17", board.Spec{Kind: board.Line, ID: "GPIO17"}, false},
		{"grovepi:D4", board.Spec{Kind: board.GrovePi, ID: "D4"}, false},
		{"GrovePi:A0", board.Spec{Kind: board.GrovePi, ID: "A0"}, false},
		{"mcp3008:3", board.Spec{Kind: board.MCP3008, ID: "3", Channel: 3}, false},
		{"mcp3208:7", board.Spec{Kind: board.MCP3208, ID: "7", Channel: 7}, false},
		{"adc0832:1", board.Spec{Kind: board.ADC0832, ID: "1", Channel: 1}, false},
		{"led:led0", board.Spec{Kind: board.LED, ID: "led0"}, false},
		{"mcp3008:x", board.Spec{}, true},
		{"mcp3008:8", board.Spec{}, true},
		{"mcp3208:9", board.Spec{}, true},
		{"adc0832:2", board.Spec{}, true},
		{"adc0832:5", board.Spec{}, true},
		{"grovepi:", board.Spec{}, true},
		{"", board.Spec{}, true},
	}
	for _, p := range patterns {
		tf := func(t *testing.T) {
			s, err := board.ParseSpec(p.spec)
			if p.err {
				assert.True(t, errors.Is(err, board.ErrInvalidSpec))
				return
			}
			require.Nil(t, err)
			assert.Equal(t, p.xs, s)
		}
		t.Run(p.spec, tf)
	}
}

func TestSpecString(t *testing.T) {
	assert.Equal(t, "gpiochip0:17", board.Spec{Kind: board.Line, ID: "gpiochip0:17"}.String())
	assert.Equal(t, "grovepi:D4", board.Spec{Kind: board.GrovePi, ID: "D4"}.String())
	assert.Equal(t, "mcp3008:3", board.Spec{Kind: board.MCP3008, ID: "3", Channel: 3}.String())
	assert.Equal(t, "led:led0", board.Spec{Kind: board.LED, ID: "led0"}.String())
	assert.Equal(t, "adc0832", board.ADC0832.String())
	assert.Equal(t, "line", board.Line.String())
}
