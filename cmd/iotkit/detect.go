// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/warthog618/go-iotkit"
	"github.com/warthog618/go-iotkit/hotplug"
)

func init() {
	detectCmd.Flags().BoolVarP(&detectOpts.Watch, "watch", "w", false, "watch for chips being added or removed")
	rootCmd.AddCommand(detectCmd)
}

var (
	detectCmd = &cobra.Command{
		Use:   "detect",
		Short: "Detect available GPIO chips",
		Long:  `List all GPIO chips, print their labels and number of GPIO lines.`,
		RunE:  detect,
	}
	detectOpts = struct {
		Watch bool
	}{}
)

func detect(cmd *cobra.Command, args []string) error {
	var rerr error
	for _, name := range iotkit.Chips() {
		cs, err := iotkit.ChipInfo(name, false)
		if err != nil {
			logErr(cmd, err)
			rerr = err
			continue
		}
		fmt.Printf("%s [%s] (%d lines)\n", cs.Name, cs.Label, len(cs.Lines))
	}
	if !detectOpts.Watch {
		return rerr
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchChips(ctx, cmd)
}

func watchChips(ctx context.Context, cmd *cobra.Command) error {
	w, err := hotplug.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	for {
		select {
		case evt := <-w.Events():
			if evt.Action == hotplug.Removed {
				fmt.Printf("%s removed\n", evt.Chip)
				continue
			}
			cs, err := iotkit.ChipInfo(evt.Chip, false)
			if err != nil {
				logErr(cmd, err)
				continue
			}
			fmt.Printf("%s [%s] (%d lines) added\n", cs.Name, cs.Label, len(cs.Lines))
		case err := <-w.Errors():
			logErr(cmd, err)
		case <-ctx.Done():
			return nil
		}
	}
}
