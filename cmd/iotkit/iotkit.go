// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

// A utility to run sensor and actuator recipes on IoT boards.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/warthog618/config"
	"github.com/warthog618/go-iotkit/board"
	"github.com/warthog618/go-iotkit/settings"
)

var version = "undefined"

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rootOpts.Config, "config", "c", "", "read settings from the YAML file")
	pf.StringToStringVarP(&rootOpts.Pins, "pin", "p", nil, "override a pin spec, e.g. button=grovepi:D4")
	pf.Bool("simulate", false, "simulate all devices")
	pf.Duration("sim-watch", 0, "render the simulated devices to stderr with this period")
	pf.String("log-level", "info", "log level (debug|info|warn|error)")
	pf.String("log-format", "text", "log format (text|json)")
	pf.String("gpiochip", "gpiochip0", "the chip hosting the SPI lines")
	pf.String("bus", "", "the I2C bus, or the first available if empty")
	pf.String("udp", "", "the address of the telemetry agent")
	pf.String("hub", "", "the URL of the cloud hub")
	pf.String("record", "", "record samples to the CBOR file")
	pf.Bool("discover", false, "discover the telemetry agent with mDNS")
	pf.String("device-id", "", "the device ID reported to the cloud hub")
	rootCmd.SetHelpTemplate(rootCmd.HelpTemplate() + extendedRootHelp)
}

var extendedRootHelp = `
Pins:
  Pins are named by spec, which may be a GPIO line, as "chip:offset", an
  offset on gpiochip0, or a line name, or one of:
    grovepi:<port>    a GrovePi+ port, e.g. grovepi:D4 or grovepi:A0
    mcp3008:<ch>      a channel of an MCP3008 on the SPI lines
    mcp3208:<ch>      a channel of an MCP3208 on the SPI lines
    adc0832:<ch>      a channel of an ADC0832 on the SPI lines
    led:<name>        a sysfs LED

  Settings are read from flags, then IOTKIT_ environment variables, then
  the config file, e.g. IOTKIT_PINS_BUTTON=grovepi:D2.
`

var (
	rootCmd = &cobra.Command{
		Use:           "iotkit",
		Short:         "iotkit runs sensor and actuator recipes",
		Long:          "iotkit runs sensor and actuator recipes on GPIO, ADC, PWM and I2C peripherals",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	rootOpts = struct {
		Config string
		Pins   map[string]string
	}{}
)

// flagKeys maps the persistent flags to their setting keys.
var flagKeys = map[string]string{
	"config":     "config.file",
	"sim-watch":  "sim.watch",
	"log-level":  "log.level",
	"log-format": "log.format",
	"bus":        "i2c.bus",
	"udp":        "telemetry.udp",
	"hub":        "telemetry.http",
	"record":     "telemetry.record",
	"discover":   "telemetry.discover",
	"device-id":  "telemetry.device",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		cmd, _, ferr := rootCmd.Find(os.Args[1:])
		if ferr != nil {
			cmd = rootCmd
		}
		logErr(cmd, err)
		os.Exit(1)
	}
}

func logErr(cmd *cobra.Command, err error) {
	fmt.Fprintf(os.Stderr, "iotkit %s: %s\n", cmd.Name(), err)
}

// kit is the configuration and devices shared by a recipe run.
type kit struct {
	cfg    *config.Config
	logger *slog.Logger
	board  *board.Board
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	overrides := map[string]interface{}{}
	for k, v := range rootOpts.Pins {
		overrides["pins."+k] = v
	}
	return settings.Load(settings.Options{
		Flags:     cmd.Flags(),
		FlagKeys:  flagKeys,
		File:      rootOpts.Config,
		Defaults:  defaults,
		Overrides: overrides,
	})
}

func newKit(cmd *cobra.Command) (*kit, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := settings.NewLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	spi := board.SPIConfig{
		Chip: cfg.MustGet("gpiochip").String(),
		Sclk: cfg.MustGet("spi.sclk").Int(),
		Ssz:  cfg.MustGet("spi.ssz").Int(),
		Mosi: cfg.MustGet("spi.mosi").Int(),
		Miso: cfg.MustGet("spi.miso").Int(),
		Tclk: cfg.MustGet("spi.tclk").Duration(),
	}
	b := board.New(board.Config{
		Simulate: cfg.MustGet("simulate").Bool(),
		Bus:      cfg.MustGet("i2c.bus").String(),
		SPI:      spi,
		Consumer: "iotkit-" + cmd.Name(),
		Logger:   logger,
	})
	return &kit{cfg: cfg, logger: logger, board: b}, nil
}

func (k *kit) Close() error {
	return k.board.Close()
}

// spec returns the pin spec for the named pin.
func (k *kit) spec(name string) string {
	return k.cfg.MustGet("pins." + name).String()
}

// specs returns the comma separated list of pin specs for the named pins.
func (k *kit) specs(name string) []string {
	var ss []string
	for _, s := range strings.Split(k.spec(name), ",") {
		if s = strings.TrimSpace(s); s != "" {
			ss = append(ss, s)
		}
	}
	return ss
}

type recipeFunc func(ctx context.Context, k *kit) error

// runRecipe wraps a recipe as a cobra command, running it until it
// completes or the process is signalled.
func runRecipe(fn recipeFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		k, err := newKit(cmd)
		if err != nil {
			return err
		}
		defer k.Close()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if sb := k.board.Simulated(); sb != nil {
			if period := k.cfg.MustGet("sim.watch").Duration(); period > 0 {
				go sb.Watch(ctx, os.Stderr, period)
			}
		}
		k.logger.Debug("starting", "recipe", cmd.Name())
		err = fn(ctx, k)
		k.logger.Debug("stopped", "recipe", cmd.Name(), "error", err)
		return err
	}
}
