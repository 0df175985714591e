package tracker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"speedrun-tracker/internal/speedrun"
)

const noTime = "--:--.---"

// BuildSplits converts a run snapshot into a plain-text split table: one line
// per segment with its state and split time, then one indented line per step.
// Checkpoint steps are marked with "*".
func BuildSplits(snap RunSnapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# %s\n", snap.Name))
	b.WriteString(fmt.Sprintf("# %s %s %.0f%%\n", snap.Time, runStatus(snap), snap.CompletionRatio*100))

	width := nameWidth(snap)
	for _, seg := range snap.Segments {
		b.WriteString("\n")
		line := fmt.Sprintf("%s  %s  %s", pad(seg.Name, width), splitTime(segmentSplit(seg)), segmentStatus(seg))
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("\n")
		for _, st := range seg.Steps {
			mark := " "
			if st.Checkpoint {
				mark = "*"
			}
			b.WriteString(fmt.Sprintf("  %s %s  %s\n", mark, pad(st.Name, width-4), splitTime(st.CompletedAt)))
		}
	}

	return b.String()
}

// segmentSplit prefers the completion time, then the finish, then the cancel.
func segmentSplit(seg SegmentSnapshot) *speedrun.Milliseconds {
	switch {
	case seg.CompletedAt != nil:
		return seg.CompletedAt
	case seg.FinishedAt != nil:
		return seg.FinishedAt
	default:
		return seg.CanceledAt
	}
}

func splitTime(m *speedrun.Milliseconds) string {
	if m == nil {
		return fmt.Sprintf("%9s", noTime)
	}
	return fmt.Sprintf("%9s", m.String())
}

func runStatus(snap RunSnapshot) string {
	switch {
	case snap.Completed:
		return "completed"
	case snap.Canceled:
		return "canceled"
	case snap.Ended:
		return "finished"
	case snap.Paused:
		return "paused"
	case snap.Active:
		return "running"
	default:
		return "idle"
	}
}

func segmentStatus(seg SegmentSnapshot) string {
	switch {
	case seg.Completed:
		return "completed"
	case seg.Canceled:
		return "canceled"
	case seg.Ended:
		return "ended"
	case seg.FinishedAt != nil:
		return "finished"
	default:
		return ""
	}
}

// nameWidth returns the column width for names in terminal cells: the
// widest segment name or indented step name, and at least 12.
func nameWidth(snap RunSnapshot) int {
	w := 12
	for _, seg := range snap.Segments {
		w = max(w, lipgloss.Width(seg.Name))
		for _, st := range seg.Steps {
			w = max(w, lipgloss.Width(st.Name)+4)
		}
	}
	return w
}

// pad right-pads s with spaces to width terminal cells.
func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
