package main

import (
	"fmt"
	"strconv"
	"strings"

	"CommodityPulse/internal/domain/models"
	"CommodityPulse/pkg/config"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	disabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	blockStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func renderReport(r *models.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(r.Source))
	b.WriteString(" ")
	b.WriteString(metaStyle.Render(fmt.Sprintf("date %s, fetched %s", orDash(r.Date), r.FetchedAt.Format("2006-01-02 15:04:05"))))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render(orDefault(r.Price.Title, "Price")))
	if r.PriceKey != "" {
		b.WriteString(" ")
		b.WriteString(metaStyle.Render("from " + r.PriceKey))
	}
	b.WriteString("\n")
	if len(r.Price.Rows) == 0 {
		b.WriteString(metaStyle.Render("  no price rows"))
		b.WriteString("\n")
	}
	for _, row := range r.Price.Rows {
		line := fmt.Sprintf("  %-16s %10s %8s  ->  %10s %8s %s",
			row.Title,
			formatNumber(row.LastAvgPrice), formatNumber(row.LastWoW),
			formatNumber(row.ForecastPrice), formatNumber(row.ForecastWoW),
			row.Unit,
		)
		if row.Disabled {
			line = disabledStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if keys := r.BlockKeys(); len(keys) > 0 {
		b.WriteString("\n")
		b.WriteString(metaStyle.Render("blocks: " + strings.Join(keys, ", ")))
		b.WriteString("\n")
	}
	for _, nb := range r.Blocks {
		b.WriteString("\n")
		b.WriteString(blockStyle.Render(blockSummary(nb)))
		b.WriteString("\n")
	}
	return b.String()
}

func blockSummary(nb models.NamedBlock) string {
	m := nb.Model
	lines := []string{
		headerStyle.Render(orDefault(m.Title, nb.Key)),
		metaStyle.Render(fmt.Sprintf("key %s, unit %s, source %s", nb.Key, orDash(m.Unit), orDash(m.Source))),
		fmt.Sprintf("series: %s", strings.Join(m.LegendOrder, ", ")),
		fmt.Sprintf("periods: %d", len(m.Dates)),
	}
	for _, row := range m.TableRows {
		cells := make([]string, 0, len(row.Series))
		for _, s := range row.Series {
			cells = append(cells, fmt.Sprintf("%s=%s", s.Name, formatNumber(s.Value)))
		}
		lines = append(lines, fmt.Sprintf("%s  %s", row.Date, strings.Join(cells, " ")))
	}
	return strings.Join(lines, "\n")
}

func renderSources(sources []config.Source) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Sources"))
	b.WriteString("\n")
	for _, s := range sources {
		target := s.URL
		switch s.Type {
		case config.SourceRedis:
			target = s.Key
		case config.SourceSQL:
			target = s.Table
		}
		b.WriteString(fmt.Sprintf("  %-16s %-6s %s\n", s.Name, s.Type, metaStyle.Render(target)))
	}
	return b.String()
}

func formatNumber(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func orDash(s string) string {
	return orDefault(s, "-")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
