// ABOUTME: Post listing screen with sort cycling, selection, and delete confirm
// ABOUTME: Pure presentation; the root model owns loading and mutation calls

package postlist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/orion-forum/orion-cli/internal/client"
	"github.com/orion-forum/orion-cli/internal/tui/styles"
)

// SortMode cycles through the listing orders offered to the user.
type SortMode int

const (
	SortDateDesc SortMode = iota
	SortDateAsc
	SortTitleAsc
)

func (m SortMode) String() string {
	switch m {
	case SortDateDesc:
		return "newest first"
	case SortDateAsc:
		return "oldest first"
	case SortTitleAsc:
		return "by title"
	default:
		return "unknown"
	}
}

// Query translates the mode into the service's sort parameters.
func (m SortMode) Query() client.PostQuery {
	switch m {
	case SortDateAsc:
		return client.PostQuery{Sort: client.SortCreatedAt, Order: client.OrderAsc}
	case SortTitleAsc:
		return client.PostQuery{Sort: client.SortTitle, Order: client.OrderAsc}
	default:
		return client.PostQuery{Sort: client.SortCreatedAt, Order: client.OrderDesc}
	}
}

// SortChangedMsg asks the root model to reload with a new order.
type SortChangedMsg struct {
	Mode SortMode
}

// SelectedMsg asks the root model to open a post.
type SelectedMsg struct {
	ID int64
}

// DeleteConfirmedMsg asks the root model to delete a post.
type DeleteConfirmedMsg struct {
	ID int64
}

// RefreshMsg asks the root model to reload the listing.
type RefreshMsg struct{}

// BackMsg returns to the previous screen.
type BackMsg struct{}

// PostList renders the posts for the current view.
type PostList struct {
	title      string
	posts      []client.Post
	cursor     int
	sortMode   SortMode
	loading    bool
	errMsg     string
	confirming bool
	spin       spinner.Model
	width      int
}

// New creates an empty post list in the loading state.
func New(title string) *PostList {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &PostList{
		title:   title,
		loading: true,
		spin:    s,
	}
}

// Init implements tea.Model
func (p *PostList) Init() tea.Cmd {
	return p.spin.Tick
}

// SetPosts replaces the listing and clears any transient state.
func (p *PostList) SetPosts(posts []client.Post) {
	p.posts = posts
	p.loading = false
	p.errMsg = ""
	p.confirming = false
	if p.cursor >= len(posts) {
		p.cursor = 0
	}
}

// SetLoading shows the spinner while keeping the previous rows visible.
func (p *PostList) SetLoading() {
	p.loading = true
	p.errMsg = ""
}

// SetError surfaces a load or mutation failure.
func (p *PostList) SetError(msg string) {
	p.loading = false
	p.errMsg = msg
	p.confirming = false
}

// SetWidth adjusts the panel width.
func (p *PostList) SetWidth(width int) {
	p.width = width
}

// SortMode returns the current ordering.
func (p *PostList) SortMode() SortMode {
	return p.sortMode
}

// Update implements tea.Model
func (p *PostList) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !p.loading {
			return p, nil
		}
		var cmd tea.Cmd
		p.spin, cmd = p.spin.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		return p.updateKeys(msg)
	}
	return p, nil
}

func (p *PostList) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if p.confirming {
		switch msg.String() {
		case "y":
			p.confirming = false
			id := p.posts[p.cursor].ID
			return p, func() tea.Msg { return DeleteConfirmedMsg{ID: id} }
		default:
			p.confirming = false
		}
		return p, nil
	}

	switch msg.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.posts)-1 {
			p.cursor++
		}
	case "enter":
		if len(p.posts) > 0 {
			id := p.posts[p.cursor].ID
			return p, func() tea.Msg { return SelectedMsg{ID: id} }
		}
	case "s":
		p.sortMode = (p.sortMode + 1) % 3
		mode := p.sortMode
		return p, func() tea.Msg { return SortChangedMsg{Mode: mode} }
	case "d":
		if len(p.posts) > 0 {
			p.confirming = true
		}
	case "r":
		return p, func() tea.Msg { return RefreshMsg{} }
	case "b", "esc":
		return p, func() tea.Msg { return BackMsg{} }
	}
	return p, nil
}

// View implements tea.Model
func (p *PostList) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(p.title))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render("sorted " + p.sortMode.String()))
	sb.WriteString("\n\n")

	switch {
	case p.errMsg != "":
		sb.WriteString(styles.StatusError.Render(p.errMsg))
	case p.loading && len(p.posts) == 0:
		sb.WriteString(p.spin.View() + " Loading posts...")
	case len(p.posts) == 0:
		sb.WriteString(styles.Subtitle.Render("No posts yet."))
	default:
		for i, post := range p.posts {
			line := fmt.Sprintf("%s  %s · %s",
				post.Title,
				post.AuthorUsername,
				post.CreatedAt.Format("2006-01-02"))
			if post.TopicName != "" {
				line += " · " + post.TopicName
			}
			if i == p.cursor {
				sb.WriteString(styles.Selected.Render("> " + line))
			} else {
				sb.WriteString("  " + line)
			}
			sb.WriteString("\n")
		}
		if p.loading {
			sb.WriteString("\n" + p.spin.View() + " Refreshing...")
		}
	}

	if p.confirming {
		sb.WriteString("\n\n" + styles.StatusError.Render("Delete this post? press y to confirm"))
	}

	sb.WriteString("\n")
	sb.WriteString(styles.Help.Render("enter open · s sort · d delete · r refresh · b back · q quit"))

	panel := styles.ActivePanel
	if p.width > 0 {
		panel = panel.Width(p.width)
	}
	return panel.Render(sb.String())
}
