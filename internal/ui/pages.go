package ui

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abelbrown/ragaweb/internal/controller"
	"github.com/abelbrown/ragaweb/internal/model"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// dashboardPage lists indexed websites and takes new urls.
type dashboardPage struct {
	sites     Sites
	input     textinput.Model
	rows      []model.WebsiteCollection
	cursor    int
	listFocus bool
	busy      bool
	width     int
	height    int
}

func newDashboardPage(sites Sites) dashboardPage {
	ti := textinput.New()
	ti.Placeholder = "https://example.com"
	ti.Prompt = "URL › "
	ti.CharLimit = 2048
	ti.Focus()

	p := dashboardPage{sites: sites, input: ti}
	p.refresh()
	return p
}

func (p *dashboardPage) refresh() {
	if p.sites == nil {
		return
	}
	p.rows = p.sites.Collections()
	p.cursor = clampCursor(p.cursor, len(p.rows))
}

func (p *dashboardPage) setSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = width - len(p.input.Prompt) - 4
}

func (p *dashboardPage) focusInput() {
	p.listFocus = false
	p.input.Focus()
}

func (p dashboardPage) update(ctx context.Context, msg tea.Msg) (dashboardPage, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Focus) {
			p.listFocus = !p.listFocus && len(p.rows) > 0
			if p.listFocus {
				p.input.Blur()
			} else {
				p.input.Focus()
			}
			return p, nil
		}
		if p.listFocus {
			return p.updateList(msg), nil
		}
		if key.Matches(msg, keys.Submit) {
			if p.busy || p.sites.Processing() {
				return p, nil
			}
			p.busy = true
			sites, raw := p.sites, p.input.Value()
			return p, func() tea.Msg {
				col, err := sites.Submit(ctx, raw)
				return SubmitDone{Collection: col, Err: err}
			}
		}

	case SubmitDone:
		p.busy = false
		if msg.Err == nil {
			p.input.Reset()
		}
		p.refresh()
		return p, nil
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p dashboardPage) updateList(msg tea.KeyMsg) dashboardPage {
	switch {
	case key.Matches(msg, keys.Up):
		p.cursor = clampCursor(p.cursor-1, len(p.rows))
	case key.Matches(msg, keys.Down):
		p.cursor = clampCursor(p.cursor+1, len(p.rows))
	case key.Matches(msg, keys.Submit):
		if p.cursor < len(p.rows) {
			p.sites.Open(p.rows[p.cursor].Name)
		}
	case key.Matches(msg, keys.Remove):
		if p.cursor < len(p.rows) {
			p.sites.Remove(p.rows[p.cursor].ID)
			p.refresh()
			if len(p.rows) == 0 {
				p.focusInput()
			}
		}
	}
	return p
}

func (p dashboardPage) working() bool {
	return p.busy || (p.sites != nil && p.sites.Processing())
}

func (p dashboardPage) view(spin string) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Chat with any website"))
	b.WriteString("\n")
	b.WriteString(" " + p.input.View())
	b.WriteString("\n")
	if p.working() {
		b.WriteString(" " + spin + MutedText.Render(" Indexing website..."))
	}
	b.WriteString("\n\n")

	if len(p.rows) == 0 {
		b.WriteString(MutedText.Render("  No websites yet. Paste a url above to index one."))
		return b.String()
	}
	b.WriteString(MutedText.Render("  Indexed websites (" + strconv.Itoa(len(p.rows)) + ")"))
	b.WriteString("\n")

	rows := make([]string, len(p.rows))
	for i, c := range p.rows {
		rows[i] = websiteRow(c)
	}
	cursor := -1
	if p.listFocus {
		cursor = p.cursor
	}
	b.WriteString(RenderList(rows, cursor, p.width, p.height-6))
	return b.String()
}

// documentsPage uploads PDFs and lists the most recent ones.
type documentsPage struct {
	docs      Documents
	limit     int
	input     textinput.Model
	rows      []model.PDFCollection
	cursor    int
	listFocus bool
	busy      bool
	err       error
	width     int
	height    int
}

func newDocumentsPage(docs Documents, limit int) documentsPage {
	ti := textinput.New()
	ti.Placeholder = "~/Documents/report.pdf"
	ti.Prompt = "PDF › "
	ti.CharLimit = 4096
	ti.Focus()

	if limit <= 0 {
		limit = controller.RecentLimit
	}
	p := documentsPage{docs: docs, limit: limit, input: ti}
	p.refresh()
	return p
}

func (p *documentsPage) refresh() {
	if p.docs == nil {
		return
	}
	p.rows = p.docs.Recent(p.limit)
	p.cursor = clampCursor(p.cursor, len(p.rows))
}

func (p *documentsPage) setSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = width - len(p.input.Prompt) - 4
}

func (p *documentsPage) focusInput() {
	p.listFocus = false
	p.input.Focus()
}

func (p documentsPage) update(ctx context.Context, msg tea.Msg) (documentsPage, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		p.err = nil
		if key.Matches(msg, keys.Focus) {
			p.listFocus = !p.listFocus && len(p.rows) > 0
			if p.listFocus {
				p.input.Blur()
			} else {
				p.input.Focus()
			}
			return p, nil
		}
		if p.listFocus {
			return p.updateList(msg), nil
		}
		if key.Matches(msg, keys.Submit) {
			path := expandPath(p.input.Value())
			if path == "" || p.busy || p.docs.Uploading() {
				return p, nil
			}
			p.busy = true
			docs := p.docs
			return p, func() tea.Msg {
				f, err := controller.FileFromPath(path)
				if err != nil {
					return UploadDone{Err: err}
				}
				col, err := docs.Upload(ctx, f)
				return UploadDone{Collection: col, Err: err}
			}
		}

	case UploadDone:
		p.busy = false
		p.err = msg.Err
		if msg.Err == nil {
			p.input.Reset()
		}
		p.refresh()
		return p, nil
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p documentsPage) updateList(msg tea.KeyMsg) documentsPage {
	switch {
	case key.Matches(msg, keys.Up):
		p.cursor = clampCursor(p.cursor-1, len(p.rows))
	case key.Matches(msg, keys.Down):
		p.cursor = clampCursor(p.cursor+1, len(p.rows))
	case key.Matches(msg, keys.Submit):
		if p.cursor < len(p.rows) {
			p.docs.Open(p.rows[p.cursor].ID)
		}
	case key.Matches(msg, keys.Remove):
		if p.cursor < len(p.rows) {
			p.docs.Remove(p.rows[p.cursor].ID)
			p.refresh()
			if len(p.rows) == 0 {
				p.focusInput()
			}
		}
	}
	return p
}

func (p documentsPage) working() bool {
	return p.busy || (p.docs != nil && p.docs.Uploading())
}

func (p documentsPage) view(spin string) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Chat with your PDFs"))
	b.WriteString("\n")
	b.WriteString(" " + p.input.View())
	b.WriteString("\n")
	switch {
	case p.working():
		b.WriteString(" " + spin + MutedText.Render(" Uploading and indexing..."))
	case p.err != nil:
		b.WriteString(ErrorStyle.Render(p.err.Error()))
	default:
		b.WriteString(MutedText.Render("  PDF files up to 10MB"))
	}
	b.WriteString("\n\n")

	if len(p.rows) == 0 {
		b.WriteString(MutedText.Render("  No PDFs uploaded yet."))
		return b.String()
	}
	b.WriteString(MutedText.Render("  Recent uploads"))
	b.WriteString("\n")

	rows := make([]string, len(p.rows))
	for i, c := range p.rows {
		rows[i] = documentRow(c)
	}
	cursor := -1
	if p.listFocus {
		cursor = p.cursor
	}
	b.WriteString(RenderList(rows, cursor, p.width, p.height-6))
	return b.String()
}

// expandPath trims quotes left by terminal drag and drop and expands a
// leading "~/".
func expandPath(raw string) string {
	p := strings.Trim(strings.TrimSpace(raw), `"'`)
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	return p
}

func clampCursor(c, n int) int {
	if n == 0 || c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}
