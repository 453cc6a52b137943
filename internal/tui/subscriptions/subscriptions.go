// ABOUTME: Subscription listing screen for the signed-in user

package subscriptions

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/orion-forum/orion-cli/internal/client"
	"github.com/orion-forum/orion-cli/internal/tui/styles"
)

// UnsubscribeMsg asks the root model to remove a subscription.
type UnsubscribeMsg struct {
	ID int64
}

// BrowseMsg asks the root model to show the subscribed topic's posts.
type BrowseMsg struct {
	TopicID   int64
	TopicName string
}

// BackMsg returns to the previous screen.
type BackMsg struct{}

// Subscriptions renders the user's topic subscriptions.
type Subscriptions struct {
	subs    []client.Subscription
	cursor  int
	loading bool
	errMsg  string
	spin    spinner.Model
	width   int
}

// New creates an empty subscription list in the loading state.
func New() *Subscriptions {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &Subscriptions{loading: true, spin: s}
}

// Init implements tea.Model
func (s *Subscriptions) Init() tea.Cmd {
	return s.spin.Tick
}

// SetSubscriptions replaces the listing.
func (s *Subscriptions) SetSubscriptions(subs []client.Subscription) {
	s.subs = subs
	s.loading = false
	s.errMsg = ""
	if s.cursor >= len(subs) {
		s.cursor = 0
	}
}

// SetLoading shows the spinner.
func (s *Subscriptions) SetLoading() {
	s.loading = true
	s.errMsg = ""
}

// SetError surfaces a load or mutation failure.
func (s *Subscriptions) SetError(msg string) {
	s.loading = false
	s.errMsg = msg
}

// SetWidth adjusts the panel width.
func (s *Subscriptions) SetWidth(width int) {
	s.width = width
}

// Update implements tea.Model
func (s *Subscriptions) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.subs)-1 {
				s.cursor++
			}
		case "enter":
			if len(s.subs) > 0 {
				sub := s.subs[s.cursor]
				return s, func() tea.Msg {
					return BrowseMsg{TopicID: sub.TopicID, TopicName: sub.TopicName}
				}
			}
		case "d":
			if len(s.subs) > 0 {
				id := s.subs[s.cursor].ID
				return s, func() tea.Msg { return UnsubscribeMsg{ID: id} }
			}
		case "b", "esc":
			return s, func() tea.Msg { return BackMsg{} }
		}
	}
	return s, nil
}

// View implements tea.Model
func (s *Subscriptions) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render("My subscriptions"))
	sb.WriteString("\n\n")

	switch {
	case s.errMsg != "":
		sb.WriteString(styles.StatusError.Render(s.errMsg))
	case s.loading && len(s.subs) == 0:
		sb.WriteString(s.spin.View() + " Loading subscriptions...")
	case len(s.subs) == 0:
		sb.WriteString(styles.Subtitle.Render("You are not subscribed to any topics."))
	default:
		for i, sub := range s.subs {
			line := sub.TopicName
			if i == s.cursor {
				sb.WriteString(styles.Selected.Render("> " + line))
			} else {
				sb.WriteString("  " + line)
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(styles.Help.Render("enter browse posts · d unsubscribe · b back · q quit"))

	panel := styles.ActivePanel
	if s.width > 0 {
		panel = panel.Width(s.width)
	}
	return panel.Render(sb.String())
}
