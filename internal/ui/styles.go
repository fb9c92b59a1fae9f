package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application. UseTheme swaps them.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorError     = lipgloss.Color("196") // Red
	colorText      = lipgloss.Color("255")
	colorBar       = lipgloss.Color("236")
)

var (
	// TitleStyle for page headers.
	TitleStyle lipgloss.Style
	// SelectedItem style for the highlighted row.
	SelectedItem lipgloss.Style
	// NormalItem style for other rows.
	NormalItem lipgloss.Style
	// MutedText for metadata and hints.
	MutedText lipgloss.Style

	// UserMessage and AIMessage render chat turns.
	UserMessage lipgloss.Style
	AIMessage   lipgloss.Style
	// MessageMeta renders the age under a chat turn.
	MessageMeta lipgloss.Style

	// StatusBar style for the bottom status bar.
	StatusBar lipgloss.Style
	// StatusBarKey style for key hints in status bar.
	StatusBarKey lipgloss.Style
	// StatusBarText style for descriptive text in status bar.
	StatusBarText lipgloss.Style

	// ErrorStyle for inline errors.
	ErrorStyle lipgloss.Style

	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
	ToastInfo    lipgloss.Style

	// DebugPanel frames the debug overlay. See debugPanelChrome.
	DebugPanel       lipgloss.Style
	DebugHeaderStyle lipgloss.Style
)

func init() {
	buildStyles()
}

// UseTheme selects the "dark" or "light" palette. Call before the program
// starts.
func UseTheme(name string) {
	if name == "light" {
		colorPrimary = lipgloss.Color("25")
		colorSecondary = lipgloss.Color("243")
		colorMuted = lipgloss.Color("246")
		colorHighlight = lipgloss.Color("125")
		colorSuccess = lipgloss.Color("28")
		colorError = lipgloss.Color("160")
		colorText = lipgloss.Color("232")
		colorBar = lipgloss.Color("254")
	} else {
		colorPrimary = lipgloss.Color("62")
		colorSecondary = lipgloss.Color("241")
		colorMuted = lipgloss.Color("240")
		colorHighlight = lipgloss.Color("212")
		colorSuccess = lipgloss.Color("78")
		colorError = lipgloss.Color("196")
		colorText = lipgloss.Color("255")
		colorBar = lipgloss.Color("236")
	}
	buildStyles()
}

func buildStyles() {
	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorHighlight).
		Padding(0, 1)

	SelectedItem = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255")).
		Background(colorPrimary).
		Padding(0, 1)

	NormalItem = lipgloss.NewStyle().
		Foreground(colorText).
		Padding(0, 1)

	MutedText = lipgloss.NewStyle().
		Foreground(colorSecondary)

	UserMessage = lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true).
		PaddingLeft(1)

	AIMessage = lipgloss.NewStyle().
		Foreground(colorText).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(colorPrimary).
		PaddingLeft(1)

	MessageMeta = lipgloss.NewStyle().
		Foreground(colorMuted).
		PaddingLeft(2)

	StatusBar = lipgloss.NewStyle().
		Foreground(colorText).
		Background(colorBar).
		Padding(0, 1)

	StatusBarKey = lipgloss.NewStyle().
		Foreground(colorHighlight).
		Bold(true)

	StatusBarText = lipgloss.NewStyle().
		Foreground(colorSecondary)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true).
		Padding(0, 1)

	toast := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1)
	ToastSuccess = toast.Foreground(colorSuccess)
	ToastError = toast.Foreground(colorError)
	ToastInfo = toast.Foreground(colorPrimary)

	DebugPanel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2)

	DebugHeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorHighlight)
}
