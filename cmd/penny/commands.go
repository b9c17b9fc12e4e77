package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/penny-challenge/internal/core/challenge"
	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/comitanigiacomo/penny-challenge/internal/core/services"
)

func parseIntArg(name, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

func (o *options) runCalculation(cmd *cobra.Command, title string, p domain.ShareParams) error {
	calc, err := o.calculator().Calculate(p, services.CalculateOptions{Breakdown: o.breakdown})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderCalculation(title, calc))
	return err
}

func newNextCmd(opts *options) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "next [days]",
		Short: "Total for the next N days (default 30) starting today",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := opts.params(domain.ModeNextN)
			if len(args) == 1 {
				n, err := parseIntArg("days", args[0])
				if err != nil {
					return err
				}
				p.N = domain.IntPtr(n)
			}
			if from != "" {
				p.Start = domain.StringPtr(from)
			}

			n := services.DefaultNextNDays
			if p.N != nil {
				n = *p.N
			}
			return opts.runCalculation(cmd, fmt.Sprintf("Next %d days", n), p)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date YYYY-MM-DD (default: today)")
	return cmd
}

func newMonthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "month [month] [year]",
		Short: "Total for a calendar month (default: this month)",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := opts.params(domain.ModeMonth)
			if len(args) >= 1 {
				m, err := parseIntArg("month", args[0])
				if err != nil {
					return err
				}
				p.Month = domain.IntPtr(m)
			}
			if len(args) == 2 {
				y, err := parseIntArg("year", args[1])
				if err != nil {
					return err
				}
				p.Year = domain.IntPtr(y)
			}
			return opts.runCalculation(cmd, "Month", p)
		},
	}
}

func newCustomCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "custom <start> <end>",
		Short: "Total for an inclusive date range inside the challenge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := opts.params(domain.ModeCustom)
			p.Start = domain.StringPtr(args[0])
			p.End = domain.StringPtr(args[1])
			return opts.runCalculation(cmd, "Custom range", p)
		},
	}
}

func newUptoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "upto [date]",
		Short: "Amount saved from day 1 through a date (default: today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var date *string
			if len(args) == 1 {
				date = &args[0]
			}

			progress, err := opts.calculator().Progress(opts.params(""), date)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderProgress(progress))
			return err
		},
	}
}

func newDayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "day [date]",
		Short: "Challenge day number and amount for a date (default: today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := opts.params("")
			if err := p.Validate(); err != nil {
				return err
			}
			cfg, err := opts.calculator().ChallengeConfig(p)
			if err != nil {
				return err
			}

			date := challenge.DateOf(opts.now())
			if len(args) == 1 {
				date, err = domain.ParseDate(args[0])
				if err != nil {
					return err
				}
			}

			day, ok := challenge.DateToDayNumber(date, cfg)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderDay(date, day, ok, cfg))
			return err
		},
	}
}
