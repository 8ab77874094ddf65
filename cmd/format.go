package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rubiojr/amosearch/pkg/filters"
	"github.com/rubiojr/amosearch/pkg/state"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	filterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

var titleCaser = cases.Title(language.English)

// formatNumber formats a number with K/M suffixes for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	} else if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// label turns filter values like "statictheme" or "privacy-security" into
// display labels.
func label(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "-", " "))
}

// formatFilters renders filters in key map order, skipping unset keys.
func formatFilters(f filters.Filters) string {
	var parts []string
	for _, k := range filters.Keys() {
		if v, ok := f[k.Filter]; filters.Present(v, ok) {
			parts = append(parts, fmt.Sprintf("%s: %s", k.Filter, label(v)))
		}
	}
	return filterStyle.Render(strings.Join(parts, "  "))
}

// formatSearch renders a search state as a result listing.
func formatSearch(s state.SearchState) string {
	var b strings.Builder

	header := fmt.Sprintf("Page %d", s.Page)
	if s.Results != nil {
		header = fmt.Sprintf("%s of %s results", header, formatNumber(s.Results.Count))
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(formatFilters(s.Filters))
	b.WriteString("\n\n")

	switch {
	case s.Loading:
		b.WriteString(noDataStyle.Render("Still loading"))
	case s.Results == nil:
		b.WriteString(noDataStyle.Render("Search failed, no results available"))
	case len(s.Results.Addons) == 0:
		b.WriteString(noDataStyle.Render("No add-ons found"))
	default:
		for i, a := range s.Results.Addons {
			b.WriteString(fmt.Sprintf("%2d. %s\n", i+1, nameStyle.Render(a.Name)))
			meta := fmt.Sprintf("    %s · %s users · %.1f★", label(a.Type), formatNumber(a.Users), a.AverageRating)
			b.WriteString(metaStyle.Render(meta))
			b.WriteString("\n")
			if a.Summary != "" {
				b.WriteString("    " + a.Summary + "\n")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
