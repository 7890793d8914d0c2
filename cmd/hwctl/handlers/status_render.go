package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorYellow = lipgloss.Color("#eab308")
	colorRed    = lipgloss.Color("#ef4444")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f9fafb")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	greenStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	yellowStyle = lipgloss.NewStyle().Foreground(colorYellow)
	redStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// renderStatus produces a lipgloss-styled status report.
func renderStatus(s *ResourceStatus) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(fmt.Sprintf("  helloworld: %s/%s", s.Namespace, s.Name)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  " + strings.Repeat("═", 30)))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("  Workload"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "    StatefulSet: %s\n", s.Workload)
	fmt.Fprintf(&b, "    Image:       %s\n", s.Image)
	if !s.Created {
		b.WriteString("    Replicas:    ")
		b.WriteString(yellowStyle.Render("not created yet"))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString("    Replicas:    ")
	b.WriteString(replicaStyle(s).Render(fmt.Sprintf("%d/%d", s.Current, s.Desired)))
	if s.Target != s.Current {
		b.WriteString(dimStyle.Render(fmt.Sprintf(" (scaling to %d)", s.Target)))
	}
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("  Pods"))
	b.WriteString("\n")
	if len(s.Pods) == 0 {
		b.WriteString(dimStyle.Render("    none"))
		b.WriteString("\n")
	}
	for _, p := range s.Pods {
		fmt.Fprintf(&b, "    %-24s %-10s %s\n", p.Name, p.Phase, payloadLabel(p))
	}
	b.WriteString("\n")

	return b.String()
}

func replicaStyle(s *ResourceStatus) lipgloss.Style {
	if s.Complete() {
		return greenStyle
	}
	return yellowStyle
}

func payloadLabel(p PodStatus) string {
	switch {
	case p.Error != "":
		return redStyle.Render("log unavailable: " + p.Error)
	case p.Injected:
		return greenStyle.Render("✓ payload present")
	default:
		return yellowStyle.Render("… payload missing")
	}
}
