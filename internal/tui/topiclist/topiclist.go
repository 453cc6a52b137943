// ABOUTME: Topic listing screen with subscribe and browse actions

package topiclist

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/orion-forum/orion-cli/internal/client"
	"github.com/orion-forum/orion-cli/internal/tui/styles"
)

// BrowseMsg asks the root model to show a topic's posts.
type BrowseMsg struct {
	TopicID   int64
	TopicName string
}

// SubscribeMsg asks the root model to subscribe to a topic.
type SubscribeMsg struct {
	TopicID int64
}

// BackMsg returns to the previous screen.
type BackMsg struct{}

// TopicList renders the available topics.
type TopicList struct {
	topics  []client.Topic
	cursor  int
	loading bool
	errMsg  string
	notice  string
	spin    spinner.Model
	width   int
}

// New creates an empty topic list in the loading state.
func New() *TopicList {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &TopicList{loading: true, spin: s}
}

// Init implements tea.Model
func (t *TopicList) Init() tea.Cmd {
	return t.spin.Tick
}

// SetTopics replaces the listing.
func (t *TopicList) SetTopics(topics []client.Topic) {
	t.topics = topics
	t.loading = false
	t.errMsg = ""
	if t.cursor >= len(topics) {
		t.cursor = 0
	}
}

// SetLoading shows the spinner.
func (t *TopicList) SetLoading() {
	t.loading = true
	t.errMsg = ""
}

// SetError surfaces a load failure.
func (t *TopicList) SetError(msg string) {
	t.loading = false
	t.errMsg = msg
}

// SetNotice shows a transient success message, e.g. after subscribing.
func (t *TopicList) SetNotice(msg string) {
	t.notice = msg
}

// SetWidth adjusts the panel width.
func (t *TopicList) SetWidth(width int) {
	t.width = width
}

// Update implements tea.Model
func (t *TopicList) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !t.loading {
			return t, nil
		}
		var cmd tea.Cmd
		t.spin, cmd = t.spin.Update(msg)
		return t, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if t.cursor > 0 {
				t.cursor--
			}
		case "down", "j":
			if t.cursor < len(t.topics)-1 {
				t.cursor++
			}
		case "enter":
			if len(t.topics) > 0 {
				topic := t.topics[t.cursor]
				return t, func() tea.Msg {
					return BrowseMsg{TopicID: topic.ID, TopicName: topic.Name}
				}
			}
		case "s":
			if len(t.topics) > 0 {
				t.notice = ""
				id := t.topics[t.cursor].ID
				return t, func() tea.Msg { return SubscribeMsg{TopicID: id} }
			}
		case "b", "esc":
			return t, func() tea.Msg { return BackMsg{} }
		}
	}
	return t, nil
}

// View implements tea.Model
func (t *TopicList) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render("Topics"))
	sb.WriteString("\n\n")

	switch {
	case t.errMsg != "":
		sb.WriteString(styles.StatusError.Render(t.errMsg))
	case t.loading && len(t.topics) == 0:
		sb.WriteString(t.spin.View() + " Loading topics...")
	case len(t.topics) == 0:
		sb.WriteString(styles.Subtitle.Render("No topics yet."))
	default:
		for i, topic := range t.topics {
			line := topic.Name
			if topic.Description != "" {
				line += "  " + topic.Description
			}
			if i == t.cursor {
				sb.WriteString(styles.Selected.Render("> " + line))
			} else {
				sb.WriteString("  " + line)
			}
			sb.WriteString("\n")
		}
	}

	if t.notice != "" {
		sb.WriteString("\n" + styles.StatusOK.Render(t.notice))
	}

	sb.WriteString("\n")
	sb.WriteString(styles.Help.Render("enter browse posts · s subscribe · b back · q quit"))

	panel := styles.ActivePanel
	if t.width > 0 {
		panel = panel.Width(t.width)
	}
	return panel.Render(sb.String())
}
