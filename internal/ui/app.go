package ui

import (
	"context"
	"time"

	"github.com/abelbrown/ragaweb/internal/controller"
	"github.com/abelbrown/ragaweb/internal/model"
	"github.com/abelbrown/ragaweb/internal/otel"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	maxToasts = 3
	toastTTL  = 4 * time.Second
	// headerLines + toast area + status bar
	appChrome = 1 + maxToasts + 1
)

// Sites is the dashboard controller as the App uses it.
type Sites interface {
	Submit(ctx context.Context, rawURL string) (model.WebsiteCollection, error)
	Open(collectionName string)
	Remove(id string)
	Collections() []model.WebsiteCollection
	Processing() bool
}

// SiteChat is the website chat controller as the App uses it.
type SiteChat interface {
	Send(ctx context.Context, collectionName, text string) (model.Message, error)
	Clear(collectionName string)
	History(collectionName string) []model.Message
	Typing() bool
}

// Documents is the document list controller as the App uses it.
type Documents interface {
	Upload(ctx context.Context, f controller.File) (model.PDFCollection, error)
	Open(id string)
	Remove(id string)
	Recent(n int) []model.PDFCollection
	Uploading() bool
}

// DocumentChat is the document chat controller as the App uses it.
type DocumentChat interface {
	Open(id string) (model.PDFCollection, controller.LoadState)
	Resolve(id string) (model.PDFCollection, controller.LoadState)
	Send(ctx context.Context, id, text string) (model.Message, error)
	Clear(id string)
	History(id string) []model.Message
	Typing() bool
}

// ObsConfig holds observability dependencies for the App.
type ObsConfig struct {
	Logger *otel.Logger
	Ring   *otel.RingBuffer
}

// AppConfig wires the App. Controllers report navigation and notifications
// through Bridge, which must be the Navigator and Notifier they were built
// with.
type AppConfig struct {
	Context      context.Context
	Sites        Sites
	SiteChat     SiteChat
	Documents    Documents
	DocumentChat DocumentChat
	Bridge       *Bridge
	Obs          ObsConfig

	// Start is the first page shown. The zero Route is the dashboard.
	Start controller.Route
	// RecentDocuments is how many uploads the document list shows.
	RecentDocuments int
}

type toast struct {
	seq int
	n   controller.Notification
}

// App is the root Bubble Tea model. It holds no store: pages read through
// the controllers and every mutation goes through them.
type App struct {
	ctx    context.Context
	cfg    AppConfig
	log    *otel.Logger
	ring   *otel.RingBuffer
	bridge *Bridge

	route     controller.Route
	dashboard dashboardPage
	documents documentsPage
	chat      chatPage

	spinner  spinner.Model
	toasts   []toast
	toastSeq int

	backend BackendStatus

	width        int
	height       int
	ready        bool
	debugVisible bool
}

// NewApp creates the App. The start route is entered on Init.
func NewApp(cfg AppConfig) App {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StatusBarKey

	return App{
		ctx:       ctx,
		cfg:       cfg,
		log:       cfg.Obs.Logger,
		ring:      cfg.Obs.Ring,
		bridge:    cfg.Bridge,
		route:     controller.DashboardRoute(),
		dashboard: newDashboardPage(cfg.Sites),
		documents: newDocumentsPage(cfg.Documents, cfg.RecentDocuments),
		spinner:   s,
	}
}

// Init starts the spinner, listens to the bridge and enters the start page.
func (a App) Init() tea.Cmd {
	start := a.cfg.Start
	return tea.Batch(
		a.spinner.Tick,
		a.listen(),
		textinput.Blink,
		func() tea.Msg { return NavigateMsg{Route: start} },
	)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	a.log.TraceMsg(otel.KindMsgReceived, a.route.Path(), msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.resize()
		return a, nil

	case bridgeMsg:
		m, cmd := a.Update(msg.msg)
		return m, tea.Batch(cmd, m.(App).listen())

	case NavigateMsg:
		cmd := a.navigate(msg.Route)
		return a, cmd

	case NotifyMsg:
		cmd := a.pushToast(msg.Notification)
		return a, cmd

	case toastExpired:
		for i, t := range a.toasts {
			if t.seq == msg.seq {
				a.toasts = append(a.toasts[:i:i], a.toasts[i+1:]...)
				break
			}
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		a.refreshBusy()
		return a, cmd

	case RefreshTick:
		a.refresh()
		return a, nil

	case BackendStatus:
		a.backend = msg
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case SubmitDone:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(a.ctx, msg)
		return a, cmd

	case UploadDone:
		var cmd tea.Cmd
		a.documents, cmd = a.documents.update(a.ctx, msg)
		return a, cmd

	case SendDone, resolveTick:
		if !a.onChat() {
			return a, nil
		}
		var cmd tea.Cmd
		a.chat, cmd = a.chat.update(a.ctx, msg)
		return a, cmd
	}

	return a.updatePage(msg)
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Debug):
		a.debugVisible = !a.debugVisible
		return a, nil
	}
	if a.debugVisible {
		if key.Matches(msg, keys.Back) {
			a.debugVisible = false
		}
		return a, nil
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, keys.Back):
		if a.route.Page != controller.PageDashboard {
			cmd = a.navigate(parentRoute(a.route))
		}
	case key.Matches(msg, keys.Websites):
		cmd = a.navigate(controller.DashboardRoute())
	case key.Matches(msg, keys.Documents):
		cmd = a.navigate(controller.DocumentsRoute())
	default:
		return a.updatePage(msg)
	}
	return a, cmd
}

func (a App) updatePage(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.route.Page {
	case controller.PageDashboard:
		a.dashboard, cmd = a.dashboard.update(a.ctx, msg)
	case controller.PageDocuments:
		a.documents, cmd = a.documents.update(a.ctx, msg)
	case controller.PageWebsiteChat, controller.PageDocumentChat:
		a.chat, cmd = a.chat.update(a.ctx, msg)
	}
	return a, cmd
}

// navigate enters r, rebuilding the chat page when r is a chat.
func (a *App) navigate(r controller.Route) tea.Cmd {
	a.route = r
	var cmd tea.Cmd
	switch r.Page {
	case controller.PageDashboard:
		a.dashboard.refresh()
		a.dashboard.focusInput()
	case controller.PageDocuments:
		a.documents.refresh()
		a.documents.focusInput()
	case controller.PageWebsiteChat:
		a.chat = newWebsiteChatPage(a.cfg.SiteChat, r.Key, a.siteURL(r.Key))
	case controller.PageDocumentChat:
		a.chat, cmd = newDocumentChatPage(a.cfg.DocumentChat, r.Key)
	}
	a.resize()
	return tea.Batch(cmd, textinput.Blink)
}

func (a *App) siteURL(name string) string {
	if a.cfg.Sites == nil {
		return ""
	}
	for _, c := range a.cfg.Sites.Collections() {
		if c.Name == name {
			return c.URL
		}
	}
	return ""
}

func (a *App) pushToast(n controller.Notification) tea.Cmd {
	a.toastSeq++
	seq := a.toastSeq
	a.toasts = append(a.toasts, toast{seq: seq, n: n})
	if len(a.toasts) > maxToasts {
		a.toasts = a.toasts[len(a.toasts)-maxToasts:]
	}
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpired{seq: seq} })
}

// refreshBusy re-reads the current page while a request is in flight.
func (a *App) refreshBusy() {
	switch a.route.Page {
	case controller.PageDashboard:
		if a.dashboard.working() {
			a.dashboard.refresh()
		}
	case controller.PageDocuments:
		if a.documents.working() {
			a.documents.refresh()
		}
	default:
		if a.chat.working() {
			a.chat.refresh()
		}
	}
}

func (a *App) refresh() {
	switch a.route.Page {
	case controller.PageDashboard:
		a.dashboard.refresh()
	case controller.PageDocuments:
		a.documents.refresh()
	default:
		a.chat.refresh()
	}
}

func (a *App) resize() {
	if !a.ready {
		return
	}
	h := max(a.height-appChrome, 1)
	a.dashboard.setSize(a.width, h)
	a.documents.setSize(a.width, h)
	if a.onChat() {
		a.chat.setSize(a.width, h)
	}
}

func (a App) onChat() bool {
	return a.route.Page == controller.PageWebsiteChat || a.route.Page == controller.PageDocumentChat
}

func (a App) listen() tea.Cmd {
	if a.bridge == nil {
		return nil
	}
	return a.bridge.Listen(a.ctx)
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.debugVisible {
		overlay := debugOverlay(a.ring, a.width, a.height-1)
		if overlay == "" {
			overlay = MutedText.Render("No event buffer attached.")
		}
		body := lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center, overlay)
		return body + "\n" + debugStatusBar(a.width)
	}

	h := max(a.height-appChrome, 1)
	var page string
	switch a.route.Page {
	case controller.PageDashboard:
		page = a.dashboard.view(a.spinner.View())
	case controller.PageDocuments:
		page = a.documents.view(a.spinner.View())
	default:
		page = a.chat.view(a.spinner.View())
	}
	body := lipgloss.NewStyle().Height(h).MaxHeight(h).Render(page)

	return lipgloss.JoinVertical(lipgloss.Left,
		a.renderHeader(),
		body,
		a.renderToasts(),
		RenderStatusBar(a.route.Path(), a.hints(), a.width),
	)
}

func (a App) renderHeader() string {
	web, pdf := NormalItem, NormalItem
	switch a.route.Page {
	case controller.PageDashboard, controller.PageWebsiteChat:
		web = SelectedItem
	default:
		pdf = SelectedItem
	}
	return TitleStyle.Render("ragaweb") + web.Render("Websites") + " " + pdf.Render("PDFs") + "  " + a.renderBackend()
}

// renderBackend shows the last health check: gray before the first one.
func (a App) renderBackend() string {
	switch {
	case a.backend.At.IsZero():
		return MutedText.Render("○ backend")
	case a.backend.Err != nil:
		return ToastError.Render("● backend down")
	default:
		return ToastSuccess.Render("● backend") + MutedText.Render(" "+a.backend.Latency.Round(time.Millisecond).String())
	}
}

// Backend returns the last health check result (for testing).
func (a App) Backend() BackendStatus {
	return a.backend
}

func (a App) renderToasts() string {
	lines := make([]string, maxToasts)
	for i, t := range a.toasts {
		style, mark := ToastInfo, "•"
		switch t.n.Level {
		case controller.LevelSuccess:
			style, mark = ToastSuccess, "✓"
		case controller.LevelError:
			style, mark = ToastError, "✗"
		}
		text := mark + " " + t.n.Title
		if t.n.Detail != "" {
			text += "  " + MutedText.Render(t.n.Detail)
		}
		lines[i] = style.Render(truncateRunes(text, a.width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (a App) hints() []keyHint {
	hints := []keyHint{{"enter", "submit"}, {"tab", "list"}, {"j/k", "nav"}, {"x", "remove"}}
	if a.onChat() {
		hints = []keyHint{{"enter", "send"}, {"ctrl+x", "clear"}, {"esc", "back"}}
	}
	return append(hints,
		keyHint{"ctrl+w", "sites"},
		keyHint{"ctrl+o", "pdfs"},
		keyHint{"ctrl+d", "debug"},
		keyHint{"ctrl+c", "quit"},
	)
}

// Route returns the current page (for testing).
func (a App) Route() controller.Route {
	return a.route
}

// parentRoute is where Back leads from r.
func parentRoute(r controller.Route) controller.Route {
	switch r.Page {
	case controller.PageDocumentChat:
		return controller.DocumentsRoute()
	case controller.PageDocuments, controller.PageWebsiteChat:
		return controller.DashboardRoute()
	}
	return controller.DashboardRoute()
}

// Key bindings
var keys = struct {
	Quit      key.Binding
	Debug     key.Binding
	Back      key.Binding
	Websites  key.Binding
	Documents key.Binding
	Focus     key.Binding
	Submit    key.Binding
	Up        key.Binding
	Down      key.Binding
	Remove    key.Binding
	Clear     key.Binding
}{
	Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Debug:     key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "debug")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Websites:  key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "websites")),
	Documents: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "pdfs")),
	Focus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch focus")),
	Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Remove:    key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
	Clear:     key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear chat")),
}
