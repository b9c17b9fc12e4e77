// Package main provides the penny command: offline penny challenge totals.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/penny-challenge/internal/config"
	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/comitanigiacomo/penny-challenge/internal/core/services"
)

func main() {
	if err := newRootCmd(time.Now).Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	start      string
	length     int
	base       int
	configPath string
	breakdown  bool

	now func() time.Time
}

func newRootCmd(now func() time.Time) *cobra.Command {
	opts := &options{now: now}

	rootCmd := &cobra.Command{
		Use:          "penny",
		Short:        "Penny challenge savings calculator",
		Long:         "Day k of the challenge saves k pennies. penny totals any window of the challenge.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.applyFile(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.start, "start", "", "challenge start date YYYY-MM-DD (default: 1 January this year)")
	flags.IntVar(&opts.length, "length", 0, "challenge length in days, 364 or 365 (default: 364)")
	flags.IntVar(&opts.base, "base", 0, "pence saved on day 1 (default: 1)")
	flags.StringVar(&opts.configPath, "config", "", "defaults file (default: $XDG_CONFIG_HOME/penny/config.toml)")
	flags.BoolVar(&opts.breakdown, "breakdown", false, "list every day of the window")

	rootCmd.AddCommand(newNextCmd(opts))
	rootCmd.AddCommand(newMonthCmd(opts))
	rootCmd.AddCommand(newCustomCmd(opts))
	rootCmd.AddCommand(newUptoCmd(opts))
	rootCmd.AddCommand(newDayCmd(opts))

	return rootCmd
}

// applyFile fills every challenge flag the user did not pass from the
// defaults file.
func (o *options) applyFile(cmd *cobra.Command) error {
	path := o.configPath
	if path == "" {
		path = config.DefaultFilePath()
	}

	fileCfg, err := config.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	applyStringConfig(cmd, "start", &o.start, fileCfg.Challenge.Start)
	applyIntConfig(cmd, "length", &o.length, fileCfg.Challenge.Length)
	applyIntConfig(cmd, "base", &o.base, fileCfg.Challenge.Base)
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// params carries the challenge settings into ShareParams, leaving unset
// values to the calculator defaults.
func (o *options) params(mode domain.Mode) domain.ShareParams {
	p := domain.ShareParams{Mode: mode}
	if o.start != "" {
		p.ChallengeStart = domain.StringPtr(o.start)
	}
	if o.length != 0 {
		p.ChallengeLength = domain.IntPtr(o.length)
	}
	if o.base != 0 {
		p.BasePence = domain.IntPtr(o.base)
	}
	return p
}

func (o *options) calculator() *services.CalculatorService {
	return services.NewCalculatorService(o.now)
}
