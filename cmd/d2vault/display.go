package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

const lineWidth = 46

// printer writes the human-readable report. Styling is dropped when the
// output is not a terminal.
type printer struct {
	w      io.Writer
	styled bool
}

func newPrinter(f *os.File) *printer {
	return &printer{w: f, styled: term.IsTerminal(int(f.Fd()))}
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *printer) printBanner(command string) {
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "  %s %s\n\n", p.render(bannerStyle, "d2vault "+version), p.render(dimStyle, command))
}

func (p *printer) printSection(title string) {
	n := lineWidth - lipgloss.Width(title) - 1
	if n < 3 {
		n = 3
	}
	fmt.Fprintf(p.w, "  %s\n", p.render(sectionStyle, "── "+title+" "+strings.Repeat("─", n)))
}

func (p *printer) printStat(label string, value any) {
	v := fmt.Sprint(value)
	n := lineWidth - 4 - lipgloss.Width(label) - lipgloss.Width(v)
	if n < 3 {
		n = 3
	}
	fmt.Fprintf(p.w, "  %s %s %s\n", label, p.render(dimStyle, strings.Repeat("·", n)), p.render(valueStyle, v))
}

func (p *printer) printOK(msg string) {
	fmt.Fprintf(p.w, "  %s %s\n", p.render(okStyle, "✓"), msg)
}

func (p *printer) printFail(msg string) {
	fmt.Fprintf(p.w, "  %s %s\n", p.render(failStyle, "✗"), msg)
}

func (p *printer) printLine(format string, args ...any) {
	fmt.Fprintf(p.w, "    "+format+"\n", args...)
}
