// ABOUTME: Tests for the sign-in form model

package login

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func typeText(l *Login, text string) *Login {
	for _, r := range text {
		model, _ := l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		l = model.(*Login)
	}
	return l
}

func TestLoginSubmitEmitsValues(t *testing.T) {
	l := New()
	l = typeText(l, "ana")

	model, _ := l.Update(keyMsg("tab"))
	l = model.(*Login)
	l = typeText(l, "hunter2")

	model, cmd := l.Update(keyMsg("enter"))
	l = model.(*Login)
	if cmd == nil {
		t.Fatal("expected a submit command")
	}

	msg := cmd()
	submitted, ok := msg.(SubmittedMsg)
	if !ok {
		t.Fatalf("msg = %T, want SubmittedMsg", msg)
	}
	if submitted.Identifier != "ana" || submitted.Password != "hunter2" {
		t.Errorf("submitted = %+v", submitted)
	}
	if !l.busy {
		t.Error("expected form to be busy after submit")
	}
}

func TestLoginEnterOnIdentifierMovesFocus(t *testing.T) {
	l := New()
	l = typeText(l, "ana")

	model, cmd := l.Update(keyMsg("enter"))
	l = model.(*Login)
	if cmd != nil {
		t.Error("expected no command when moving focus")
	}
	if l.focus != fieldPassword {
		t.Errorf("focus = %d, want password field", l.focus)
	}
}

func TestLoginRejectsEmptyFields(t *testing.T) {
	l := New()

	model, _ := l.Update(keyMsg("tab"))
	l = model.(*Login)
	model, cmd := l.Update(keyMsg("enter"))
	l = model.(*Login)

	if cmd != nil {
		t.Error("expected no submit command with empty fields")
	}
	if l.errMsg == "" {
		t.Error("expected a validation message")
	}
}

func TestLoginEscCancels(t *testing.T) {
	l := New()

	_, cmd := l.Update(keyMsg("esc"))
	if cmd == nil {
		t.Fatal("expected a cancel command")
	}
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Errorf("msg = %T, want CancelledMsg", cmd())
	}
}

func TestLoginSetErrorReenablesForm(t *testing.T) {
	l := New()
	l.SetBusy()
	l.SetError("bad credentials")

	if l.busy {
		t.Error("expected form to be re-enabled")
	}
	if !strings.Contains(l.View(), "bad credentials") {
		t.Error("expected view to show the error")
	}
}
