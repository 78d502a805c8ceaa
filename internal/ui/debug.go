package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/minifeed/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing sync stats and recent events.
// Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Sync Stats"))
	lines = append(lines, fmt.Sprintf("  Fetches:    %d complete, %d errors",
		stats[otel.KindFetchComplete], stats[otel.KindFetchError]))
	lines = append(lines, fmt.Sprintf("  Polls:      %d ticks, %d merges",
		stats[otel.KindPollTick], stats[otel.KindMergeApply]))
	lines = append(lines, fmt.Sprintf("  Pages:      %d requested, %d exhausted",
		stats[otel.KindPageRequest], stats[otel.KindPageExhausted]))
	lines = append(lines, fmt.Sprintf("  Scopes:     %d changes, %d stale",
		stats[otel.KindScopeChange], stats[otel.KindStaleDiscard]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		line := fmt.Sprintf("  %6s  %-16s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Mode != "" {
			line += " " + e.Mode
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		if e.ReqID != "" {
			rid := e.ReqID
			if len(rid) > 8 {
				rid = rid[:8]
			}
			line += "  req:" + rid
		}
		lines = append(lines, line)
	}

	// Truncate to fit terminal height
	maxHeight := max(height-debugPanelChrome, 1)
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := min(76, width-4)
	if panelWidth < 20 {
		panelWidth = 20
	}

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Negative durations from clock skew clamp to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	hint := StatusBarKey.Render("?") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + hint)
}
