package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/comitanigiacomo/penny-challenge/internal/core/challenge"
	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/comitanigiacomo/penny-challenge/internal/core/services"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Width(14)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	totalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#52C41A"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Padding(0, 1)
)

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}

func challengeLine(c services.ChallengeSummary) string {
	return mutedStyle.Render(fmt.Sprintf("challenge %s to %s, %d days, total %s",
		c.StartDate, c.EndDate, c.LengthDays, c.Total))
}

func renderCalculation(title string, calc *services.Calculation) string {
	lines := []string{titleStyle.Render(title)}

	if !calc.InChallenge {
		lines = append(lines, valueStyle.Render("Outside the challenge window."))
	} else {
		r := calc.Result
		lines = append(lines,
			row("Dates", fmt.Sprintf("%s to %s", calc.FirstDate, calc.LastDate)),
			row("Days", fmt.Sprintf("%d to %d (%d days)", r.FirstDay, r.LastDay, r.DayCount)),
			row("First day", calc.FirstDayAmount),
			row("Last day", calc.LastDayAmount),
			lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Total"), totalStyle.Render(calc.Total)),
		)
		if len(calc.Breakdown) > 0 {
			lines = append(lines, "", renderBreakdown(calc.Breakdown))
		}
	}

	lines = append(lines, "", challengeLine(calc.Challenge))
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderBreakdown(days []challenge.DailyAmount) string {
	var b strings.Builder
	for i, d := range days {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "day %3d  %s", d.Day, challenge.FormatPenceAsGBP(d.Pence))
	}
	return mutedStyle.Render(b.String())
}

func renderProgress(p *services.Progress) string {
	lines := []string{titleStyle.Render("Saved up to " + p.Date)}

	if !p.InChallenge {
		lines = append(lines, valueStyle.Render("Outside the challenge window."))
	} else {
		lines = append(lines,
			row("Days done", fmt.Sprintf("%d of %d", p.Saved.LastDay, p.Challenge.LengthDays)),
			lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Saved"), totalStyle.Render(p.SavedTotal)),
		)
		remaining := challenge.FormatPenceAsGBP(0)
		if p.Remaining != nil {
			remaining = p.RemainingTotal
		}
		lines = append(lines, row("Remaining", remaining))
	}

	lines = append(lines, "", challengeLine(p.Challenge))
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderDay(date time.Time, day int, ok bool, cfg challenge.Config) string {
	lines := []string{titleStyle.Render(domain.FormatDate(date))}
	if !ok {
		lines = append(lines, valueStyle.Render("Outside the challenge window."))
	} else {
		base := cfg.BasePence
		lines = append(lines,
			row("Day", fmt.Sprintf("%d of %d", day, cfg.LengthDays)),
			lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Save today"),
				totalStyle.Render(challenge.FormatPenceAsGBP(challenge.AmountForDay(day, base)))),
		)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
