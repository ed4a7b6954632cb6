package greeter

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/muurk/tapauth/internal/i18n"
	"github.com/muurk/tapauth/internal/version"
)

// AppName is shown in the header
const AppName = "TAPAUTH"

// Layout constants
const (
	MinTerminalWidth  = 48
	MinTerminalHeight = 16
	FormWidth         = 44
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF5555") // Red
	TextColor      = lipgloss.Color("#FFFFFF") // White
	SubtleColor    = lipgloss.Color("#626262") // Gray
	BorderColor    = lipgloss.Color("#7D56F4")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginBottom(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			MarginTop(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true).
			MarginTop(1)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true).
			MarginTop(1)

	// BlockingStyle frames dead-end notices such as a banned card
	BlockingStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true).
			Padding(1, 2).
			MarginTop(1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ErrorColor)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	FormStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2).
			Width(FormWidth)
)

// severity picks how a message is rendered
type severity int

const (
	severityInfo severity = iota
	severitySuccess
	severityWarning
)

var severities = map[i18n.Key]severity{
	i18n.KeyUsernameRequired:    severityWarning,
	i18n.KeyPasswordRequired:    severityWarning,
	i18n.KeyPinRequired:         severityWarning,
	i18n.KeyOldPasswordRequired: severityWarning,
	i18n.KeyNewPasswordRequired: severityWarning,
	i18n.KeyPasswordsMustDiffer: severityWarning,
	i18n.KeyWrongPin:            severityWarning,
	i18n.KeyRegisterFailed:      severityWarning,
	i18n.KeyChangePasswordFail:  severityWarning,
	i18n.KeyConnectivity:        severityWarning,
	i18n.KeyRequestFailed:       severityWarning,
	i18n.KeyRegistered:          severitySuccess,
	i18n.KeyPasswordChanged:     severitySuccess,
	i18n.KeyLoggingIn:           severitySuccess,
}

func renderMessage(text string, key i18n.Key, blocking bool) string {
	if text == "" {
		return ""
	}
	if blocking {
		return BlockingStyle.Render("✗ " + text)
	}
	switch severities[key] {
	case severitySuccess:
		return SuccessStyle.Render("✓ " + text)
	case severityWarning:
		return WarningStyle.Render("! " + text)
	}
	return InfoStyle.Render(text)
}

// RenderContainer centres content under a header line and pins the help
// footer to the bottom of the terminal.
func RenderContainer(content, footer string, width, height int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	if height < MinTerminalHeight {
		height = MinTerminalHeight
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Foreground(TextColor).Bold(true).Render(AppName),
		" ",
		lipgloss.NewStyle().Foreground(SubtleColor).Render(version.Version),
	)
	styledHeader := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(width).
		Padding(0, 1).
		Render(header)

	styledFooter := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Width(width).
		Padding(0, 1).
		Render(footer)

	bodyHeight := height - lipgloss.Height(styledHeader) - lipgloss.Height(styledFooter)
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body := lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, content)

	return lipgloss.JoinVertical(lipgloss.Left, styledHeader, body, styledFooter)
}

// TerminalSize returns the size of stdout, or the minimum when it is not a
// terminal.
func TerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, MinTerminalHeight
	}
	return width, height
}
