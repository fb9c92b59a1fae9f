package ui

import (
	"context"
	"strings"
	"time"

	"github.com/abelbrown/ragaweb/internal/controller"
	"github.com/abelbrown/ragaweb/internal/model"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// chatChrome is the lines around the transcript: title, subtitle, status
// and input.
const chatChrome = 4

// chatPage is the chat of either a website (keyed by collection name) or a
// document (keyed by local id).
type chatPage struct {
	page     controller.Page
	key      string
	title    string
	subtitle string
	state    controller.LoadState

	site SiteChat
	doc  DocumentChat

	input    textinput.Model
	viewport viewport.Model
	pending  bool
	width    int
}

func newChatInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a question..."
	ti.Prompt = "› "
	ti.CharLimit = 4000
	ti.Focus()
	return ti
}

func newChatViewport() viewport.Model {
	vp := viewport.New(80, 10)
	// Letters belong to the input; only paging keys scroll.
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}
	return vp
}

func newWebsiteChatPage(chat SiteChat, name, url string) chatPage {
	p := chatPage{
		page:     controller.PageWebsiteChat,
		key:      name,
		title:    name,
		subtitle: url,
		state:    controller.StateReady,
		site:     chat,
		input:    newChatInput(),
		viewport: newChatViewport(),
	}
	p.refresh()
	return p
}

// newDocumentChatPage opens document id. An id the store does not know yet
// starts in the loading state and resolves after HydrationGrace.
func newDocumentChatPage(chat DocumentChat, id string) (chatPage, tea.Cmd) {
	p := chatPage{
		page:     controller.PageDocumentChat,
		key:      id,
		doc:      chat,
		input:    newChatInput(),
		viewport: newChatViewport(),
	}
	col, st := chat.Open(id)
	p.state = st
	if st == controller.StateReady {
		p.setDocument(col)
		p.refresh()
		return p, nil
	}
	return p, tea.Tick(controller.HydrationGrace, func(time.Time) tea.Msg {
		return resolveTick{id: id}
	})
}

func (p *chatPage) setDocument(col model.PDFCollection) {
	p.title = col.FileName
	p.subtitle = documentMeta(col)
}

func (p *chatPage) setSize(width, height int) {
	p.width = width
	p.input.Width = width - len(p.input.Prompt) - 4
	p.viewport.Width = width
	p.viewport.Height = max(height-chatChrome, 1)
	p.refresh()
}

func (p *chatPage) history() []model.Message {
	if p.page == controller.PageDocumentChat {
		if p.state != controller.StateReady {
			return nil
		}
		return p.doc.History(p.key)
	}
	return p.site.History(p.key)
}

func (p *chatPage) typing() bool {
	if p.page == controller.PageDocumentChat {
		return p.doc.Typing()
	}
	return p.site.Typing()
}

func (p *chatPage) refresh() {
	p.viewport.SetContent(RenderTranscript(p.history(), p.width))
	p.viewport.GotoBottom()
}

func (p chatPage) working() bool {
	return p.pending || p.state == controller.StateLoading
}

func (p chatPage) update(ctx context.Context, msg tea.Msg) (chatPage, tea.Cmd) {
	switch msg := msg.(type) {
	case resolveTick:
		if msg.id != p.key || p.state != controller.StateLoading {
			return p, nil
		}
		col, st := p.doc.Resolve(p.key)
		p.state = st
		if st == controller.StateReady {
			p.setDocument(col)
		}
		p.refresh()
		return p, nil

	case SendDone:
		if msg.Key != p.key {
			return p, nil
		}
		p.pending = false
		p.refresh()
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Submit):
			return p.send(ctx)
		case key.Matches(msg, keys.Clear):
			if p.state == controller.StateReady {
				if p.page == controller.PageDocumentChat {
					p.doc.Clear(p.key)
				} else {
					p.site.Clear(p.key)
				}
				p.refresh()
			}
			return p, nil
		case key.Matches(msg, p.viewport.KeyMap.PageUp, p.viewport.KeyMap.PageDown):
			var cmd tea.Cmd
			p.viewport, cmd = p.viewport.Update(msg)
			return p, cmd
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// send starts a question. The controller appends the user message before
// the request goes out, so the transcript refreshes on spinner ticks while
// it is pending.
func (p chatPage) send(ctx context.Context) (chatPage, tea.Cmd) {
	text := p.input.Value()
	if p.pending || p.state != controller.StateReady || strings.TrimSpace(text) == "" {
		return p, nil
	}
	p.pending = true
	p.input.Reset()

	id := p.key
	if p.page == controller.PageDocumentChat {
		chat := p.doc
		return p, func() tea.Msg {
			reply, err := chat.Send(ctx, id, text)
			return SendDone{Key: id, Reply: reply, Err: err}
		}
	}
	chat := p.site
	return p, func() tea.Msg {
		reply, err := chat.Send(ctx, id, text)
		return SendDone{Key: id, Reply: reply, Err: err}
	}
}

func (p chatPage) view(spin string) string {
	var b strings.Builder
	switch p.state {
	case controller.StateLoading:
		b.WriteString(TitleStyle.Render("Loading document"))
		b.WriteString("\n\n " + spin + MutedText.Render(" Loading..."))
		return b.String()
	case controller.StateNotFound:
		b.WriteString(ErrorStyle.Render("PDF not found"))
		b.WriteString("\n\n")
		b.WriteString(MutedText.Render("  The PDF you're looking for doesn't exist or has been removed."))
		b.WriteString("\n")
		b.WriteString(MutedText.Render("  Returning to your documents..."))
		return b.String()
	}

	b.WriteString(TitleStyle.Render(p.title))
	b.WriteString("\n")
	b.WriteString(MutedText.Render("  " + p.subtitle))
	b.WriteString("\n")
	b.WriteString(p.viewport.View())
	b.WriteString("\n")
	if p.pending || p.typing() {
		b.WriteString(" " + spin + MutedText.Render(" Thinking..."))
	}
	b.WriteString("\n")
	b.WriteString(" " + p.input.View())
	return b.String()
}
