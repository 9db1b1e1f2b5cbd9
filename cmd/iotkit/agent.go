// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/warthog618/go-iotkit/telemetry"
)

func init() {
	agentCmd.Flags().StringVarP(&agentOpts.Listen, "listen", "l", telemetry.DefaultAgentAddr, "the UDP address to listen on")
	agentCmd.Flags().StringVarP(&agentOpts.Advertise, "advertise", "a", "", "advertise the agent with mDNS under this instance name")
	logCmd.Flags().StringVarP(&logOpts.Session, "session", "s", "", "only show records from this session")
	logCmd.Flags().StringVarP(&logOpts.Name, "name", "n", "", "only show samples with this name")
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(logCmd)
}

var (
	agentCmd = &cobra.Command{
		Use:   "agent",
		Short: "Run a telemetry agent",
		Long: `Receive samples from the recipes over UDP and forward them to the hub or
recording configured for the agent.  Samples are always logged.`,
		RunE: runRecipe(agent),
	}
	agentOpts = struct {
		Listen    string
		Advertise string
	}{}
	logCmd = &cobra.Command{
		Use:   "log [flags] <file>",
		Short: "Display recorded samples",
		Long:  `Display the samples recorded in a CBOR telemetry file.`,
		Args:  cobra.ExactArgs(1),
		RunE:  showLog,
	}
	logOpts = struct {
		Session string
		Name    string
	}{}
)

func agent(ctx context.Context, k *kit) error {
	pp := telemetry.Multi{telemetry.Log{Logger: k.logger}}
	if url := k.cfg.MustGet("telemetry.http").String(); url != "" {
		h := telemetry.NewHTTP(url)
		h.DeviceID = k.cfg.MustGet("telemetry.device").String()
		pp = append(pp, h)
	}
	if path := k.cfg.MustGet("telemetry.record").String(); path != "" {
		r, err := telemetry.CreateRecorder(path)
		if err != nil {
			return err
		}
		k.logger.Info("recording", "path", path, "session", r.Session())
		pp = append(pp, r)
	}
	defer pp.Close()
	a, err := telemetry.ListenAgent(agentOpts.Listen, pp, k.logger)
	if err != nil {
		return err
	}
	defer a.Close()
	k.logger.Info("agent listening", "addr", a.Addr())
	if agentOpts.Advertise != "" {
		ua, ok := a.Addr().(*net.UDPAddr)
		if !ok {
			return fmt.Errorf("can't advertise %s", a.Addr())
		}
		adv, err := telemetry.Advertise(agentOpts.Advertise, ua.Port, []string{"version=" + version})
		if err != nil {
			return err
		}
		defer adv.Close()
		k.logger.Info("agent advertised", "instance", agentOpts.Advertise, "service", telemetry.ServiceType)
	}
	return a.Serve(ctx)
}

func showLog(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	return renderRecords(os.Stdout, f, logOpts.Session, logOpts.Name)
}

func renderRecords(w io.Writer, r io.Reader, session, name string) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"SESSION", "TIME", "NAME", "VALUE"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	err := telemetry.ReadRecords(r, func(rec telemetry.Record) bool {
		if session != "" && rec.Session != session {
			return true
		}
		if name != "" && rec.Sample.Name != name {
			return true
		}
		table.Append([]string{
			rec.Session,
			rec.Sample.Time.Format(time.RFC3339),
			rec.Sample.Name,
			fmt.Sprint(rec.Sample.Value),
		})
		return true
	})
	table.Render()
	return err
}
