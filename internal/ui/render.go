package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/ragaweb/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// keyHint is one "key:action" pair of the status bar.
type keyHint struct {
	key, action string
}

// RenderList renders rows with the cursor row highlighted, scrolled so the
// cursor stays inside height lines.
func RenderList(rows []string, cursor, width, height int) string {
	if len(rows) == 0 || height <= 0 {
		return ""
	}
	offset := calcScrollOffset(len(rows), cursor, height)
	end := offset + height
	if end > len(rows) {
		end = len(rows)
	}

	var b strings.Builder
	for i := offset; i < end; i++ {
		line := truncateRunes(rows[i], width-2)
		if i == cursor {
			b.WriteString(SelectedItem.Render(line))
		} else {
			b.WriteString(NormalItem.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// calcScrollOffset returns the first visible row index.
func calcScrollOffset(total, cursor, height int) int {
	if total <= height || cursor < height {
		return 0
	}
	offset := cursor - height + 1
	if offset > total-height {
		offset = total - height
	}
	return offset
}

// RenderTranscript renders a chat history, oldest first.
func RenderTranscript(msgs []model.Message, width int) string {
	if len(msgs) == 0 {
		return MutedText.Render("  No messages yet. Ask a question below.")
	}
	bodyWidth := width - 4
	if bodyWidth < 10 {
		bodyWidth = 10
	}

	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		switch m.Role {
		case model.RoleUser:
			b.WriteString(UserMessage.Width(bodyWidth).Render("You: " + m.Content))
		default:
			b.WriteString(AIMessage.Width(bodyWidth).Render(m.Content))
		}
		b.WriteString("\n")
		b.WriteString(MessageMeta.Render(formatAgeShort(m.Time())))
		b.WriteString("\n")
	}
	return b.String()
}

// websiteRow renders one dashboard row.
func websiteRow(c model.WebsiteCollection) string {
	return fmt.Sprintf("%s  %s  %s",
		c.URL,
		MutedText.Render(fmt.Sprintf("%d msgs", len(c.ChatHistory))),
		MutedText.Render(formatAgeShort(c.Created())))
}

// documentRow renders one upload row.
func documentRow(c model.PDFCollection) string {
	return fmt.Sprintf("%s  %s",
		c.FileName,
		MutedText.Render(documentMeta(c)))
}

func documentMeta(c model.PDFCollection) string {
	parts := []string{humanize.IBytes(uint64(max(c.FileSize, 0)))}
	if c.PagesProcessed > 0 {
		parts = append(parts, humanize.Comma(int64(c.PagesProcessed))+" pages")
	}
	if c.ChunksCreated > 0 {
		parts = append(parts, humanize.Comma(int64(c.ChunksCreated))+" chunks")
	}
	parts = append(parts, formatAgeShort(c.Uploaded()))
	return strings.Join(parts, " · ")
}

// formatAgeShort renders t relative to now ("3 minutes ago").
func formatAgeShort(t time.Time) string {
	if time.Since(t) < time.Minute {
		return "just now"
	}
	return humanize.Time(t)
}

// RenderStatusBar renders status on the left and key hints on the right.
func RenderStatusBar(status string, hints []keyHint, width int) string {
	keys := make([]string, len(hints))
	for i, h := range hints {
		keys[i] = StatusBarKey.Render(h.key) + StatusBarText.Render(":"+h.action)
	}
	keyHints := strings.Join(keys, " ")

	left := " " + status + " "
	padding := width - lipgloss.Width(left) - lipgloss.Width(keyHints) - 2
	if padding < 0 {
		padding = 0
	}
	return StatusBar.Width(width).Render(left + strings.Repeat(" ", padding) + keyHints)
}

// truncateRunes shortens s to at most n runes, ending in "…" when cut.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
