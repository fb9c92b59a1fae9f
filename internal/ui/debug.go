package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/ragaweb/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing request stats and recent events.
// Pure function with no side effects. Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Backend"))
	lines = append(lines, fmt.Sprintf("  Ingests:    %d complete, %d errors",
		stats[otel.KindIngestComplete], stats[otel.KindIngestError]))
	lines = append(lines, fmt.Sprintf("  Uploads:    %d complete, %d errors",
		stats[otel.KindUploadComplete], stats[otel.KindUploadError]))
	lines = append(lines, fmt.Sprintf("  Queries:    %d started, %d complete, %d errors",
		stats[otel.KindQueryStart], stats[otel.KindQueryComplete], stats[otel.KindQueryError]))
	lines = append(lines, fmt.Sprintf("  Store:      %d hydrated, %d persisted, %d errors",
		stats[otel.KindHydrate], stats[otel.KindPersist], stats[otel.KindStoreError]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		line := fmt.Sprintf("  %6s  %-26s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Collection != "" {
			line += "  " + truncateRunes(e.Collection, 24)
		}
		if e.Route != "" {
			line += "  " + e.Route
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		if e.RequestID != "" {
			rid := e.RequestID
			if len(rid) > 8 {
				rid = rid[:8]
			}
			line += "  rid:" + rid
		}
		lines = append(lines, line)
	}

	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 96
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
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
	keys := StatusBarKey.Render("ctrl+d") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}
