package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	fraudStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#dc3545"))
	normalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#198754"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d"))
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0d6efd"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	riskStyles = map[string]lipgloss.Style{
		"risk-high":   lipgloss.NewStyle().Foreground(lipgloss.Color("#dc3545")),
		"risk-medium": lipgloss.NewStyle().Foreground(lipgloss.Color("#fd7e14")),
		"risk-low":    lipgloss.NewStyle().Foreground(lipgloss.Color("#198754")),
	}
)

func riskText(class, text string) string {
	if style, ok := riskStyles[class]; ok {
		return style.Render(text)
	}
	return text
}

func badgeText(b Badge) string {
	switch b.Status {
	case "healthy":
		return normalStyle.Render(b.Label)
	case "unhealthy":
		return fraudStyle.Render(b.Label)
	default:
		return mutedStyle.Render(b.Label)
	}
}

// TerminalBanner renders a submission banner for CLI output.
func TerminalBanner(b Banner) string {
	if b.Kind == "error" {
		return fraudStyle.Render(b.Message)
	}
	title := normalStyle.Render("✅ " + b.Title)
	if b.Kind == "fraud" {
		title = fraudStyle.Render("🚨 " + b.Title)
	}
	return fmt.Sprintf("%s\nFraud Probability: %s\nRisk Level: %s",
		title, b.Probability, riskText(b.RiskClass, string(b.RiskLevel)))
}

// TerminalDashboard renders the whole dashboard for a terminal of the given width.
func TerminalDashboard(d Dashboard, width int) string {
	if width <= 0 {
		width = 80
	}
	var b strings.Builder

	b.WriteString(headingStyle.Render("Fraud Detection Dashboard"))
	b.WriteString("  ")
	b.WriteString(badgeText(d.MLStatus))
	b.WriteString("  ")
	b.WriteString(badgeText(d.AlertStatus))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Total: %s   Fraud: %s   Normal: %s   Fraud Rate: %s",
		d.Stats.Total, fraudStyle.Render(d.Stats.Fraud), normalStyle.Render(d.Stats.Normal), d.Stats.FraudRate)
	b.WriteString(panelStyle.Width(width - 2).Render(stats))
	b.WriteString("\n")

	b.WriteString(headingStyle.Render(d.Chart.Label))
	b.WriteString("\n")
	b.WriteString(Sparkline(d.Chart.Data, d.Chart.YMax))
	b.WriteString("\n\n")

	b.WriteString(headingStyle.Render("Transaction Stream"))
	b.WriteString("\n")
	if d.StreamPlaceholder != "" {
		b.WriteString(mutedStyle.Render(d.StreamPlaceholder))
		b.WriteString("\n")
	}
	for _, item := range d.Stream {
		line := fmt.Sprintf("%-18s %12s  %-9s %s %6s",
			item.TransactionID, item.Amount, item.Type, riskText(item.RiskClass, fmt.Sprintf("%-6s", item.RiskLevel)), item.Probability)
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	alertsHeading := "Recent Alerts"
	if d.AlertsNote != "" {
		alertsHeading += " (" + d.AlertsNote + ")"
	}
	b.WriteString(headingStyle.Render(alertsHeading))
	b.WriteString("\n")
	if d.AlertsPlaceholder != "" {
		b.WriteString(mutedStyle.Render(d.AlertsPlaceholder))
		b.WriteString("\n")
	}
	for _, a := range d.Alerts {
		b.WriteString(fmt.Sprintf("%-18s %12s  Risk: %s (%s)\n",
			a.TransactionID, a.Amount, riskText(a.RiskClass, string(a.RiskLevel)), a.Probability))
	}
	if s := d.AlertSummary; s != nil {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Alerts: %d total, %d high, %d medium, %d low", s.Total, s.High, s.Medium, s.Low)))
		b.WriteString("\n")
	}
	return b.String()
}

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws values on a fixed [0,max] scale.
func Sparkline(values []float64, max float64) string {
	if len(values) == 0 {
		return mutedStyle.Render("no data")
	}
	if max <= 0 {
		max = 100
	}
	out := make([]rune, 0, len(values))
	for _, v := range values {
		if v < 0 {
			v = 0
		}
		if v > max {
			v = max
		}
		idx := int(v / max * float64(len(sparkTicks)-1))
		out = append(out, sparkTicks[idx])
	}
	return string(out)
}
