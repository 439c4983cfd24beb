package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"ytprogress/progress"
	"ytprogress/youtube"
)

// Color palette
var (
	accent   = lipgloss.Color("#E5A00D")
	dimGray  = lipgloss.Color("#6B7280")
	green    = lipgloss.Color("#10B981")
	slate    = lipgloss.Color("#374151")
	errorRed = lipgloss.Color("#EF4444")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(dimGray)
	doneStyle  = lipgloss.NewStyle().Foreground(green)
	warnStyle  = lipgloss.NewStyle().Foreground(accent)
	errorStyle = lipgloss.NewStyle().Foreground(errorRed)
	barFull    = lipgloss.NewStyle().Foreground(accent)
	barEmpty   = lipgloss.NewStyle().Foreground(slate)
)

const (
	doneChar    = "✓"
	pendingChar = "·"
	fullChar    = "█"
	emptyChar   = "░"

	minBarWidth     = 10
	maxBarWidth     = 60
	defaultBarWidth = 40
)

// terminalWidth returns a bar width that fits stdout, or a default when
// stdout is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultBarWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return defaultBarWidth
	}
	// Leave room for the percentage.
	return clamp(w-10, minBarWidth, maxBarWidth)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// progressBar renders percent as width cells, unstyled.
func progressBar(percent float64, width int) (filled, empty string) {
	n := int(math.Round(percent / 100 * float64(width)))
	n = clamp(n, 0, width)
	return strings.Repeat(fullChar, n), strings.Repeat(emptyChar, width-n)
}

func renderSummary(w io.Writer, playlistID string, s progress.Summary, width int) {
	fmt.Fprintln(w, titleStyle.Render("Playlist "+playlistID))
	row := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label)), value)
	}
	row("Total:", fmt.Sprintf("%s (%d videos)", progress.FormatDuration(s.TotalSeconds), s.ItemCount))
	row("Watched:", progress.FormatDuration(s.CompletedSeconds))
	row("Remaining:", progress.FormatDuration(s.RemainingSeconds))
	row("Completed:", fmt.Sprintf("%d of %d videos", s.MarkedCount, s.ItemCount))

	filled, empty := progressBar(s.Percent, width)
	fmt.Fprintf(w, "%s%s %.2f%%\n", barFull.Render(filled), barEmpty.Render(empty), s.Percent)
}

func renderList(w io.Writer, items []youtube.PlaylistItem, done func(youtube.PlaylistItem) bool) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No videos found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDONE\tTITLE\tDURATION\tVIDEO ID")
	for _, it := range items {
		mark := pendingChar
		if done(it) {
			mark = doneChar
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			it.Position+1,
			mark,
			truncate(it.Title, 60),
			progress.FormatDuration(it.DurationSeconds),
			it.ID,
		)
	}
	tw.Flush()
}

// renderItem prints the now-playing view of one video.
func renderItem(w io.Writer, it youtube.PlaylistItem, done bool, description string) {
	status := labelStyle.Render("not watched")
	if done {
		status = doneStyle.Render(doneChar + " watched")
	}
	fmt.Fprintf(w, "%s %s (%s) %s\n",
		labelStyle.Render("Now playing:"),
		titleStyle.Render(it.Title),
		progress.FormatDuration(it.DurationSeconds),
		status)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Watch:"), it.WatchURL())
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Embed:"), it.EmbedURL())
	if description != "" {
		fmt.Fprintf(w, "\n%s\n", description)
	}
}

func renderCheck(w io.Writer, orphans, duplicates []string) {
	if len(orphans) == 0 && len(duplicates) == 0 {
		fmt.Fprintln(w, doneStyle.Render("No problems found."))
		return
	}
	if len(orphans) > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Completed titles not in the playlist (%d):", len(orphans))))
		for _, t := range orphans {
			fmt.Fprintf(w, "  %s\n", t)
		}
	}
	if len(duplicates) > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Titles shared by several videos (%d):", len(duplicates))))
		for _, t := range duplicates {
			fmt.Fprintf(w, "  %s\n", t)
		}
	}
}

func renderError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("Error: "+err.Error()))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
