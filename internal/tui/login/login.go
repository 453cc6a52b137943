// ABOUTME: Sign-in screen with identifier and password inputs
// ABOUTME: Emits SubmittedMsg; the root model performs the actual login call

package login

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/orion-forum/orion-cli/internal/tui/styles"
)

// SubmittedMsg is sent when the user confirms both fields.
type SubmittedMsg struct {
	Identifier string
	Password   string
}

// CancelledMsg is sent when the user backs out of the form.
type CancelledMsg struct{}

const (
	fieldIdentifier = iota
	fieldPassword
)

// Login is the sign-in form model.
type Login struct {
	identifier textinput.Model
	password   textinput.Model
	focus      int
	errMsg     string
	busy       bool
}

// New creates the sign-in form with the identifier field focused.
func New() *Login {
	identifier := textinput.New()
	identifier.Placeholder = "username or email"
	identifier.CharLimit = 128
	identifier.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword

	return &Login{
		identifier: identifier,
		password:   password,
	}
}

// Init implements tea.Model
func (l *Login) Init() tea.Cmd {
	return textinput.Blink
}

// SetError shows a failure message under the form and re-enables it.
func (l *Login) SetError(msg string) {
	l.errMsg = msg
	l.busy = false
}

// SetBusy disables input while a login request is in flight.
func (l *Login) SetBusy() {
	l.busy = true
	l.errMsg = ""
}

// Update implements tea.Model
func (l *Login) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return l.updateFields(msg)
	}

	if l.busy {
		return l, nil
	}

	switch keyMsg.String() {
	case "esc":
		return l, func() tea.Msg { return CancelledMsg{} }

	case "tab", "shift+tab", "up", "down":
		l.toggleFocus()
		return l, nil

	case "enter":
		if l.focus == fieldIdentifier {
			l.toggleFocus()
			return l, nil
		}
		if l.identifier.Value() == "" || l.password.Value() == "" {
			l.errMsg = "enter both an identifier and a password"
			return l, nil
		}
		l.busy = true
		l.errMsg = ""
		identifier, password := l.identifier.Value(), l.password.Value()
		return l, func() tea.Msg {
			return SubmittedMsg{Identifier: identifier, Password: password}
		}
	}

	return l.updateFields(msg)
}

func (l *Login) toggleFocus() {
	if l.focus == fieldIdentifier {
		l.focus = fieldPassword
		l.identifier.Blur()
		l.password.Focus()
	} else {
		l.focus = fieldIdentifier
		l.password.Blur()
		l.identifier.Focus()
	}
}

func (l *Login) updateFields(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	l.identifier, cmd = l.identifier.Update(msg)
	cmds = append(cmds, cmd)
	l.password, cmd = l.password.Update(msg)
	cmds = append(cmds, cmd)
	return l, tea.Batch(cmds...)
}

// View implements tea.Model
func (l *Login) View() string {
	content := styles.Title.Render("Sign in to Orion") + "\n\n"
	content += "Identifier\n" + l.identifier.View() + "\n\n"
	content += "Password\n" + l.password.View() + "\n"

	if l.busy {
		content += "\n" + styles.Subtitle.Render("Signing in...")
	}
	if l.errMsg != "" {
		content += "\n" + styles.StatusError.Render(l.errMsg)
	}

	content += "\n" + styles.Help.Render("tab switch field · enter submit · esc quit")

	return styles.ActivePanel.Render(content)
}
