package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/openmined/papersync/internal/docsync"
)

var (
	// https://github.com/muesli/termenv/blob/master/ansicolors.go
	red       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	green     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	yellow    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cyan      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	gray      = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	lightGray = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
	bold      = lipgloss.NewStyle().Bold(true)
)

// renderReport prints one line per phase followed by every failed file
func renderReport(r *docsync.RunReport) string {
	var sb strings.Builder

	header := fmt.Sprintf("%s -> %s", r.Source, r.Mirror)
	if r.DryRun {
		header += " (dry run)"
	}
	sb.WriteString(bold.Render(header) + "\n")

	if r.Diff == nil {
		return sb.String()
	}

	if r.DryRun {
		sb.WriteString(renderDiff(r.Diff))
		return sb.String()
	}

	for _, p := range r.Phases() {
		style := green
		switch {
		case len(p.Failed) > 0:
			style = red
		case len(p.Skipped) > 0:
			style = yellow
		}
		sb.WriteString("  " + style.Render(p.String()) + "\n")
	}

	for _, f := range r.Failures() {
		sb.WriteString("  " + red.Render("FAILED") + " " + f.Error() + "\n")
	}

	if !r.Finished.IsZero() {
		took := r.Finished.Sub(r.Started).Round(time.Millisecond)
		sb.WriteString(lightGray.Render(fmt.Sprintf("  took %s", took)) + "\n")
	}

	// skipped uploads leave the mirror short of the source's names
	unmirrored := r.Upload.Skipped
	switch {
	case r.Err() != nil:
	case len(unmirrored) > 0:
		msg := fmt.Sprintf("Sync finished, %d not mirrored (no attached file): %s", len(unmirrored), strings.Join(unmirrored, ", "))
		sb.WriteString(yellow.Render(msg) + "\n")
	default:
		sb.WriteString(green.Render("Sync complete! Refresh your Mendeley and reMarkable apps.") + "\n")
	}
	return sb.String()
}

// renderPlan is the output of `papersync status`
func renderPlan(source, mirror string, d *docsync.DiffResult) string {
	var sb strings.Builder
	sb.WriteString(bold.Render(fmt.Sprintf("%s -> %s", source, mirror)) + "\n")
	sb.WriteString(renderDiff(d))
	return sb.String()
}

func renderDiff(d *docsync.DiffResult) string {
	var sb strings.Builder
	sections := []struct {
		title string
		style lipgloss.Style
		names []string
	}{
		{"delete from mirror", red, d.OnlyInMirror},
		{"upload to mirror", green, d.OnlyInSource},
		{"pull annotations", cyan, d.InBoth},
	}

	for _, s := range sections {
		sb.WriteString(fmt.Sprintf("  %s %s\n", s.style.Render(s.title), gray.Render(fmt.Sprintf("(%d)", len(s.names)))))
		for _, name := range s.names {
			sb.WriteString("    " + name + "\n")
		}
	}

	if d.Converged() {
		sb.WriteString(lightGray.Render("  folders already hold the same documents") + "\n")
	}
	return sb.String()
}
