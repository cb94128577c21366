package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/racepilot/internal/config"
	"github.com/san-kum/racepilot/internal/race"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
)

func printSummary(cfg *config.Config, result *race.Result, metrics []map[string]float64, elapsed time.Duration) {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s · %s · %d lap(s)", cfg.Track.Name, cfg.Controller, cfg.Laps)))
	b.WriteString("\n")
	status := okStyle.Render("finished")
	if !result.Finished {
		status = warnStyle.Render("tick limit")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d ticks in %v, ", result.Ticks, elapsed.Round(time.Millisecond))) + status)
	b.WriteString("\n\n")

	for i, cr := range result.Cars {
		finish := warnStyle.Render("dnf")
		if cr.FinishTick >= 0 {
			finish = okStyle.Render(fmt.Sprintf("%.2fs", float64(cr.FinishTick+1)*cfg.Dt))
		}
		b.WriteString(fmt.Sprintf("%-6s laps %d  %s  %s\n", cr.Name, cr.Laps, finish, dimStyle.Render(fmt.Sprintf("%.0f units", cr.Distance))))

		if i < len(metrics) {
			names := make([]string, 0, len(metrics[i]))
			for name := range metrics[i] {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				b.WriteString(dimStyle.Render(fmt.Sprintf("       %s: %.4f", name, metrics[i][name])))
				b.WriteString("\n")
			}
		}
	}

	fmt.Println(boxStyle.Render(strings.TrimRight(b.String(), "\n")))
}
