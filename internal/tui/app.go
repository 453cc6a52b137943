// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Guards screens by session state and routes messages to child models

package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/orion-forum/orion-cli/internal/asyncstate"
	"github.com/orion-forum/orion-cli/internal/client"
	"github.com/orion-forum/orion-cli/internal/session"
	"github.com/orion-forum/orion-cli/internal/tui/login"
	"github.com/orion-forum/orion-cli/internal/tui/postlist"
	"github.com/orion-forum/orion-cli/internal/tui/styles"
	"github.com/orion-forum/orion-cli/internal/tui/subscriptions"
	"github.com/orion-forum/orion-cli/internal/tui/topiclist"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenPosts
	ScreenPostDetail
	ScreenTopics
	ScreenSubscriptions
)

// postScope selects which listing the posts screen shows.
type postScope int

const (
	scopeFeed postScope = iota
	scopeTopic
	scopeMine
)

const minTerminalWidth = 60

// sessionChangedMsg is sent when the credential store changes.
type sessionChangedMsg struct{}

// sessionExpiredMsg is sent when token refresh gave up and the session
// was torn down.
type sessionExpiredMsg struct{}

// loadersChangedMsg is sent whenever an async loader settles or starts.
type loadersChangedMsg struct{}

// loginResultMsg carries the outcome of a sign-in attempt.
type loginResultMsg struct {
	resp *client.LoginResponse
	err  error
}

// mutationDoneMsg carries the outcome of a write operation.
type mutationDoneMsg struct {
	what   string
	notice string
	err    error
}

// App is the root model for the TUI
type App struct {
	client *client.Client
	store  *session.Store
	reader *session.Reader
	send   func(tea.Msg)

	screen     Screen
	width      int
	height     int
	notice     string
	scope      postScope
	topicID    int64
	topicName  string
	userID     int64
	detailID   int64
	prevScreen Screen

	postsLoader  *asyncstate.Loader[[]client.Post]
	postLoader   *asyncstate.Loader[*client.Post]
	topicsLoader *asyncstate.Loader[[]client.Topic]
	subsLoader   *asyncstate.Loader[[]client.Subscription]

	// Child models
	loginScreen *login.Login
	postsScreen *postlist.PostList
	topicScreen *topiclist.TopicList
	subsScreen  *subscriptions.Subscriptions
}

// New creates a new TUI application
func New(apiClient *client.Client, store *session.Store) *App {
	a := &App{
		client:      apiClient,
		store:       store,
		reader:      session.NewReader(store),
		screen:      ScreenLogin,
		loginScreen: login.New(),
	}

	notify := func() {
		if a.send != nil {
			a.send(loadersChangedMsg{})
		}
	}
	a.postsLoader = asyncstate.New[[]client.Post](notify).RetainDataOnError()
	a.postLoader = asyncstate.New[*client.Post](notify)
	a.topicsLoader = asyncstate.New[[]client.Topic](notify)
	a.subsLoader = asyncstate.New[[]client.Subscription](notify)

	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	if a.reader.CanEnter() {
		return a.goTo(ScreenPosts)
	}
	return a.loginScreen.Init()
}

// goTo switches screens, redirecting to the sign-in form when the
// destination needs a session the local state cannot vouch for.
func (a *App) goTo(screen Screen) tea.Cmd {
	if screen != ScreenLogin && !a.reader.CanEnter() {
		a.screen = ScreenLogin
		a.notice = "please sign in first"
		a.loginScreen = login.New()
		return a.loginScreen.Init()
	}

	a.prevScreen = a.screen
	a.screen = screen
	a.notice = ""

	switch screen {
	case ScreenLogin:
		a.loginScreen = login.New()
		return a.loginScreen.Init()

	case ScreenPosts:
		if a.postsScreen == nil {
			a.postsScreen = postlist.New(a.postsTitle())
		}
		a.postsScreen.SetLoading()
		a.loadPosts()
		return a.postsScreen.Init()

	case ScreenPostDetail:
		a.loadPost()
		return nil

	case ScreenTopics:
		if a.topicScreen == nil {
			a.topicScreen = topiclist.New()
		}
		a.topicScreen.SetLoading()
		a.topicsLoader.Trigger(context.Background(), a.client.Topics)
		return a.topicScreen.Init()

	case ScreenSubscriptions:
		if a.subsScreen == nil {
			a.subsScreen = subscriptions.New()
		}
		a.subsScreen.SetLoading()
		a.subsLoader.Trigger(context.Background(), a.client.MySubscriptions)
		return a.subsScreen.Init()
	}

	return nil
}

func (a *App) postsTitle() string {
	switch a.scope {
	case scopeTopic:
		return "Posts in " + a.topicName
	case scopeMine:
		return "My posts"
	default:
		return "All posts"
	}
}

// loadPosts triggers the listing load for the current scope. The feed
// is sorted locally; the author listing lets the server sort.
func (a *App) loadPosts() {
	mode := postlist.SortDateDesc
	if a.postsScreen != nil {
		mode = a.postsScreen.SortMode()
	}

	switch a.scope {
	case scopeTopic:
		topicID := a.topicID
		a.postsLoader.Trigger(context.Background(), func(ctx context.Context) ([]client.Post, error) {
			posts, err := a.client.PostsByTopic(ctx, topicID)
			return sortPosts(posts, mode), err
		})
	case scopeMine:
		userID := a.userID
		query := mode.Query()
		a.postsLoader.Trigger(context.Background(), func(ctx context.Context) ([]client.Post, error) {
			return a.client.PostsByAuthor(ctx, userID, query)
		})
	default:
		a.postsLoader.Trigger(context.Background(), func(ctx context.Context) ([]client.Post, error) {
			posts, err := a.client.Posts(ctx)
			return sortPosts(posts, mode), err
		})
	}
}

func (a *App) loadPost() {
	id := a.detailID
	a.postLoader.Trigger(context.Background(), func(ctx context.Context) (*client.Post, error) {
		return a.client.Post(ctx, id)
	})
}

// sortPosts orders a listing locally for endpoints that do not accept
// sort parameters.
func sortPosts(posts []client.Post, mode postlist.SortMode) []client.Post {
	switch mode {
	case postlist.SortDateAsc:
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].CreatedAt.Before(posts[j].CreatedAt)
		})
	case postlist.SortTitleAsc:
		sort.SliceStable(posts, func(i, j int) bool {
			return strings.ToLower(posts[i].Title) < strings.ToLower(posts[j].Title)
		})
	default:
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	}
	return posts
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.postsScreen != nil {
			a.postsScreen.SetWidth(a.panelWidth())
		}
		if a.topicScreen != nil {
			a.topicScreen.SetWidth(a.panelWidth())
		}
		if a.subsScreen != nil {
			a.subsScreen.SetWidth(a.panelWidth())
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKeys(msg)

	case sessionChangedMsg, sessionExpiredMsg:
		return a.handleSessionChange(msg)

	case loadersChangedMsg:
		a.syncLoaders()
		return a, nil

	case login.SubmittedMsg:
		a.loginScreen.SetBusy()
		return a, a.doLogin(msg)

	case login.CancelledMsg:
		return a, tea.Quit

	case loginResultMsg:
		return a.handleLoginResult(msg)

	case postlist.SortChangedMsg:
		a.postsScreen.SetLoading()
		a.loadPosts()
		return a, nil

	case postlist.RefreshMsg:
		a.postsScreen.SetLoading()
		a.loadPosts()
		return a, nil

	case postlist.SelectedMsg:
		a.detailID = msg.ID
		return a, a.goTo(ScreenPostDetail)

	case postlist.DeleteConfirmedMsg:
		return a, a.doDeletePost(msg.ID)

	case postlist.BackMsg:
		if a.scope != scopeFeed {
			a.scope = scopeFeed
			a.postsScreen = nil
			return a, a.goTo(ScreenPosts)
		}
		return a, tea.Quit

	case topiclist.BrowseMsg:
		a.scope = scopeTopic
		a.topicID = msg.TopicID
		a.topicName = msg.TopicName
		a.postsScreen = nil
		return a, a.goTo(ScreenPosts)

	case topiclist.SubscribeMsg:
		return a, a.doSubscribe(msg.TopicID)

	case topiclist.BackMsg:
		a.scope = scopeFeed
		a.postsScreen = nil
		return a, a.goTo(ScreenPosts)

	case subscriptions.BrowseMsg:
		a.scope = scopeTopic
		a.topicID = msg.TopicID
		a.topicName = msg.TopicName
		a.postsScreen = nil
		return a, a.goTo(ScreenPosts)

	case subscriptions.UnsubscribeMsg:
		return a, a.doUnsubscribe(msg.ID)

	case subscriptions.BackMsg:
		a.scope = scopeFeed
		a.postsScreen = nil
		return a, a.goTo(ScreenPosts)

	case mutationDoneMsg:
		return a.handleMutationDone(msg)

	default:
		return a.forwardToChild(msg)
	}
}

func (a *App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	// Global navigation on list screens; the sign-in form owns its keys.
	if a.screen != ScreenLogin {
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "t":
			return a, a.goTo(ScreenTopics)
		case "u":
			return a, a.goTo(ScreenSubscriptions)
		case "p":
			if a.screen != ScreenPosts || a.scope != scopeFeed {
				a.scope = scopeFeed
				a.postsScreen = nil
				return a, a.goTo(ScreenPosts)
			}
			return a, nil
		case "m":
			if a.screen == ScreenPosts && a.scope != scopeMine {
				if creds := a.store.Read(); creds != nil {
					a.scope = scopeMine
					a.userID = creds.UserID
					a.postsScreen = nil
					return a, a.goTo(ScreenPosts)
				}
			}
		}
	}

	if a.screen == ScreenPostDetail {
		switch msg.String() {
		case "b", "esc":
			a.postLoader.Reset()
			return a, a.goTo(ScreenPosts)
		}
		return a, nil
	}

	return a.forwardToChild(msg)
}

func (a *App) forwardToChild(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch a.screen {
	case ScreenLogin:
		model, cmd := a.loginScreen.Update(msg)
		a.loginScreen = model.(*login.Login)
		return a, cmd
	case ScreenPosts:
		if a.postsScreen == nil {
			return a, nil
		}
		model, cmd := a.postsScreen.Update(msg)
		a.postsScreen = model.(*postlist.PostList)
		return a, cmd
	case ScreenTopics:
		if a.topicScreen == nil {
			return a, nil
		}
		model, cmd := a.topicScreen.Update(msg)
		a.topicScreen = model.(*topiclist.TopicList)
		return a, cmd
	case ScreenSubscriptions:
		if a.subsScreen == nil {
			return a, nil
		}
		model, cmd := a.subsScreen.Update(msg)
		a.subsScreen = model.(*subscriptions.Subscriptions)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleSessionChange(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.reader.CanEnter() {
		return a, nil
	}

	// Signed out, whether by choice or by a failed refresh.
	if a.screen != ScreenLogin {
		cmd := a.goTo(ScreenLogin)
		if _, expired := msg.(sessionExpiredMsg); expired {
			a.notice = "your session expired, please sign in again"
		}
		return a, cmd
	}
	return a, nil
}

func (a *App) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.loginScreen.SetError(msg.err.Error())
		return a, nil
	}

	err := a.store.Persist(session.Credentials{
		AccessToken:  msg.resp.AccessToken,
		RefreshToken: msg.resp.RefreshToken,
		UserID:       msg.resp.UserID,
		Username:     msg.resp.Username,
	})
	if err != nil {
		a.loginScreen.SetError("could not save the session: " + err.Error())
		return a, nil
	}

	a.scope = scopeFeed
	a.postsScreen = nil
	return a, a.goTo(ScreenPosts)
}

func (a *App) handleMutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		switch a.screen {
		case ScreenPosts:
			if a.postsScreen != nil {
				a.postsScreen.SetError(msg.err.Error())
			}
		case ScreenTopics:
			if a.topicScreen != nil {
				a.topicScreen.SetError(msg.err.Error())
			}
		case ScreenSubscriptions:
			if a.subsScreen != nil {
				a.subsScreen.SetError(msg.err.Error())
			}
		}
		return a, nil
	}

	switch msg.what {
	case "delete-post":
		if a.postsScreen != nil {
			a.postsScreen.SetLoading()
		}
		a.loadPosts()
	case "subscribe":
		if a.topicScreen != nil {
			a.topicScreen.SetNotice(msg.notice)
		}
	case "unsubscribe":
		if a.subsScreen != nil {
			a.subsScreen.SetLoading()
		}
		a.subsLoader.Trigger(context.Background(), a.client.MySubscriptions)
	}
	return a, nil
}

// syncLoaders copies loader snapshots into the child models.
func (a *App) syncLoaders() {
	if a.postsScreen != nil {
		switch state := a.postsLoader.State(); state.Status {
		case asyncstate.StatusLoading:
			a.postsScreen.SetLoading()
		case asyncstate.StatusSuccess:
			a.postsScreen.SetPosts(state.Data)
		case asyncstate.StatusError:
			a.postsScreen.SetError(state.Err.Error())
		}
	}

	if a.topicScreen != nil {
		switch state := a.topicsLoader.State(); state.Status {
		case asyncstate.StatusLoading:
			a.topicScreen.SetLoading()
		case asyncstate.StatusSuccess:
			a.topicScreen.SetTopics(state.Data)
		case asyncstate.StatusError:
			a.topicScreen.SetError(state.Err.Error())
		}
	}

	if a.subsScreen != nil {
		switch state := a.subsLoader.State(); state.Status {
		case asyncstate.StatusLoading:
			a.subsScreen.SetLoading()
		case asyncstate.StatusSuccess:
			a.subsScreen.SetSubscriptions(state.Data)
		case asyncstate.StatusError:
			a.subsScreen.SetError(state.Err.Error())
		}
	}
}

func (a *App) doLogin(msg login.SubmittedMsg) tea.Cmd {
	return func() tea.Msg {
		resp, err := a.client.Login(context.Background(), client.LoginRequest{
			Identifier: msg.Identifier,
			Password:   msg.Password,
		})
		return loginResultMsg{resp: resp, err: err}
	}
}

func (a *App) doDeletePost(id int64) tea.Cmd {
	return func() tea.Msg {
		err := a.client.DeletePost(context.Background(), id)
		return mutationDoneMsg{what: "delete-post", err: err}
	}
}

func (a *App) doSubscribe(topicID int64) tea.Cmd {
	return func() tea.Msg {
		sub, err := a.client.Subscribe(context.Background(), topicID)
		if err != nil {
			return mutationDoneMsg{what: "subscribe", err: err}
		}
		return mutationDoneMsg{what: "subscribe", notice: "subscribed to " + sub.TopicName}
	}
}

func (a *App) doUnsubscribe(id int64) tea.Cmd {
	return func() tea.Msg {
		err := a.client.Unsubscribe(context.Background(), id)
		return mutationDoneMsg{what: "unsubscribe", err: err}
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLogin:
		content = a.loginScreen.View()
	case ScreenPosts:
		if a.postsScreen != nil {
			content = a.postsScreen.View()
		}
	case ScreenPostDetail:
		content = a.viewPostDetail()
	case ScreenTopics:
		if a.topicScreen != nil {
			content = a.topicScreen.View()
		}
	case ScreenSubscriptions:
		if a.subsScreen != nil {
			content = a.subsScreen.View()
		}
	}

	return a.renderHeader() + "\n" + content
}

func (a *App) viewPostDetail() string {
	state := a.postLoader.State()

	var sb strings.Builder
	switch state.Status {
	case asyncstate.StatusError:
		sb.WriteString(styles.StatusError.Render(state.Err.Error()))
	case asyncstate.StatusSuccess:
		post := state.Data
		sb.WriteString(styles.Title.Render(post.Title))
		sb.WriteString("\n")
		sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("%s · %s · %s",
			post.AuthorUsername,
			post.CreatedAt.Format("2006-01-02 15:04"),
			post.TopicName)))
		sb.WriteString("\n\n")
		sb.WriteString(post.Content)
		sb.WriteString("\n\n")
		sb.WriteString(styles.ValueStyle.Render(fmt.Sprintf("Comments (%d)", len(post.Comments))))
		sb.WriteString("\n")
		for _, comment := range post.Comments {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", comment.AuthorUsername, comment.Content))
		}
	default:
		sb.WriteString("Loading post...")
	}

	sb.WriteString("\n")
	sb.WriteString(styles.Help.Render("b back · q quit"))

	panel := styles.ActivePanel
	if a.width > 0 {
		panel = panel.Width(a.panelWidth())
	}
	return panel.Render(sb.String())
}

// renderHeader shows the app name, the signed-in user, and any notice.
func (a *App) renderHeader() string {
	header := " " + styles.Title.Render("Orion")

	view := a.reader.Read()
	if view.Authenticated {
		header += "  " + styles.Subtitle.Render("signed in as "+view.Username)
	}
	if a.notice != "" {
		header += "  " + styles.StatusError.Render(a.notice)
	}
	return header
}

func (a *App) panelWidth() int {
	if a.width < minTerminalWidth {
		return minTerminalWidth - 4
	}
	return a.width - 4
}

// Run starts the TUI and keeps it in sync with the credential store.
func Run(apiClient *client.Client, store *session.Store) error {
	app := New(apiClient, store)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)
	app.send = p.Send

	unsubscribe := store.Subscribe(func() {
		p.Send(sessionChangedMsg{})
	})
	defer unsubscribe()

	apiClient.OnSessionExpired(func() {
		p.Send(sessionExpiredMsg{})
	})

	_, err := p.Run()
	return err
}
