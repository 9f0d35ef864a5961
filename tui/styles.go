package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/yohayonyon/blc/report"
	"github.com/yohayonyon/blc/task"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true)
	successStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	categoryStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle         = lipgloss.NewStyle().Faint(true)
	urlStyle         = lipgloss.NewStyle()
	statusErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// categoryOrder defines the display order for broken-link statuses
// (most to least actionable).
var categoryOrder = []task.Status{
	task.NoSuchPage,
	task.NoSuchDomain,
	task.HTTPInsteadOfHTTPS,
}

// RenderSummary produces a Lip Gloss styled summary of crawl results.
func RenderSummary(res *report.Result) string {
	if res == nil {
		return errorStyle.Render("No results available.")
	}

	var builder strings.Builder

	if len(res.Broken) == 0 && len(res.FetchErrors) == 0 {
		builder.WriteString(successStyle.Render("No broken links found!"))
		builder.WriteString("\n")
		builder.WriteString(dimStyle.Render(fmt.Sprintf(
			"Processed %d of %d discovered URLs in %s",
			res.ProcessedCount, res.DiscoveredCount, report.FormatElapsed(res.Elapsed),
		)))
		builder.WriteString("\n")
		return builder.String()
	}

	// Group broken links by status
	grouped := make(map[task.Status][]task.Task)
	for _, link := range res.Broken {
		grouped[link.Status] = append(grouped[link.Status], link)
	}

	// Display each status in order
	for _, status := range categoryOrder {
		links, exists := grouped[status]
		if !exists || len(links) == 0 {
			continue
		}

		builder.WriteString(categoryStyle.Render(fmt.Sprintf("## %s (%d)", status, len(links))))
		builder.WriteString("\n")
		builder.WriteString(renderLinkTable(links))
		builder.WriteString("\n\n")
	}

	if len(res.FetchErrors) > 0 {
		builder.WriteString(categoryStyle.Render(fmt.Sprintf("## fetch errors (%d)", len(res.FetchErrors))))
		builder.WriteString("\n")
		builder.WriteString(renderLinkTable(res.FetchErrors))
		builder.WriteString("\n\n")
	}

	// Summary stats
	builder.WriteString(titleStyle.Render(fmt.Sprintf(
		"Found %d broken links and %d fetch errors out of %d URLs processed (%s)",
		len(res.Broken), len(res.FetchErrors), res.ProcessedCount, report.FormatElapsed(res.Elapsed),
	)))
	builder.WriteString("\n")

	return builder.String()
}

func renderLinkTable(links []task.Task) string {
	rows := make([][]string, 0, len(links))
	for _, link := range links {
		status := link.Status.String()
		if link.Err != "" {
			status = link.Err
		}
		rows = append(rows, []string{link.URL, status, link.FirstFoundOn})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("URL", "Status", "Found On").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 {
				return statusErrorStyle
			}
			return urlStyle
		}).
		Rows(rows...)

	return t.Render()
}
