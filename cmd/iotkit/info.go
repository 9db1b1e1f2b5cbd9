// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mgutz/ansi"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/warthog618/go-iotkit"
)

func init() {
	infoCmd.Flags().BoolVar(&infoOpts.NoColor, "no-color", false, "don't colour the line state")
	rootCmd.AddCommand(infoCmd)
}

var (
	infoCmd = &cobra.Command{
		Use:                   "info [flags] [chip]...",
		Short:                 "Info about chip lines",
		Long:                  `Print information about all lines of the specified GPIO chip(s) (or all gpiochips if none are specified).`,
		RunE:                  info,
		DisableFlagsInUseLine: true,
	}
	infoOpts = struct {
		NoColor bool
	}{}
)

func info(cmd *cobra.Command, args []string) error {
	cc := append([]string(nil), args...)
	if len(cc) == 0 {
		cc = iotkit.Chips()
	}
	var rerr error
	for _, name := range cc {
		cs, err := iotkit.ChipInfo(name, true)
		if err != nil {
			logErr(cmd, err)
			rerr = err
			continue
		}
		fmt.Printf("%s - %d lines:\n", cs.Name, len(cs.Lines))
		renderLines(os.Stdout, cs.Lines, !infoOpts.NoColor)
	}
	return rerr
}

func renderLines(w io.Writer, ll []iotkit.LineSummary, color bool) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"LINE", "NAME", "CONSUMER", "ATTRS"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, l := range ll {
		table.Append(lineRow(l, color))
	}
	table.Render()
}

func lineRow(l iotkit.LineSummary, color bool) []string {
	name := l.Name
	if len(name) == 0 {
		name = "unnamed"
	}
	consumer := "unused"
	if l.Used {
		consumer = l.Consumer
		if len(consumer) == 0 {
			consumer = "kernel"
		}
		if strings.Contains(consumer, " ") {
			consumer = "\"" + consumer + "\""
		}
		if color {
			consumer = ansi.Color(consumer, "yellow")
		}
	}
	attrs := []string(nil)
	if l.Output {
		attrs = append(attrs, "output")
	} else {
		attrs = append(attrs, "input")
	}
	if l.ActiveLow {
		attrs = append(attrs, "active-low")
	}
	if l.Used {
		attrs = append(attrs, "used")
	}
	return []string{strconv.Itoa(l.Offset), name, consumer, strings.Join(attrs, " ")}
}
