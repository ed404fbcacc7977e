package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/roomchat/internal/auth"
	"github.com/diogo/roomchat/internal/chat"
	apierrors "github.com/diogo/roomchat/internal/errors"
	"github.com/diogo/roomchat/internal/media"
	"github.com/diogo/roomchat/internal/models"
	"github.com/diogo/roomchat/internal/render"
)

// Message types for the TUI
type (
	cachedLoadedMsg struct {
		messages []models.Message
	}
	subscribedMsg struct {
		feed *chat.Feed
		err  error
	}
	snapshotMsg struct {
		messages []models.Message
	}
	feedClosedMsg  struct{}
	authChangedMsg struct {
		state auth.State
	}
	sentMsg struct {
		draft string
		sent  bool
		err   error
	}
	imageSentMsg struct {
		err error
	}
	permissionMsg struct {
		err error
	}
	candidatesMsg struct {
		candidates []media.Candidate
		err        error
	}
	logoutMsg struct {
		err error
	}
	copiedMsg struct {
		err error
	}
)

// writeClipboard is swapped in tests
var writeClipboard = clipboard.WriteAll

// Model is the chat screen
type Model struct {
	ctx  context.Context
	ctrl *chat.Controller

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	state      chat.State
	feed       *chat.Feed
	authCh     <-chan auth.State
	stopAuth   func()
	renderOpts render.Options
	rendered   map[string]string
	ready      bool

	// sends in flight; input stays live while they run
	pending     int
	sendingText string
	notice      string
	alert       apierrors.Alert

	// Image flow
	askingPermission bool
	selecting        bool
	selector         GallerySelectorModel

	signedOut bool

	// Dimensions
	width  int
	height int
}

// NewChatModel creates the chat screen. ctx bounds every backend call
// made from the screen.
func NewChatModel(ctx context.Context, ctrl *chat.Controller, opts render.Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	authCh, stopAuth := ctrl.WatchAuth()

	return Model{
		ctx:        ctx,
		ctrl:       ctrl,
		textarea:   ta,
		spinner:    s,
		state:      chat.State{Messages: []models.Message{}},
		authCh:     authCh,
		stopAuth:   stopAuth,
		renderOpts: opts,
		rendered:   make(map[string]string),
	}
}

// Init loads the cache and opens the live subscription concurrently
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.loadCached(),
		m.subscribe(),
		m.waitForAuth(),
	)
}

func (m Model) loadCached() tea.Cmd {
	return func() tea.Msg {
		return cachedLoadedMsg{messages: m.ctrl.LoadCached(m.ctx)}
	}
}

func (m Model) subscribe() tea.Cmd {
	return func() tea.Msg {
		feed, err := m.ctrl.Subscribe(m.ctx)
		return subscribedMsg{feed: feed, err: err}
	}
}

// waitForSnapshot blocks on the feed; it is re-issued after every snapshot
func waitForSnapshot(feed *chat.Feed) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-feed.Snapshots()
		if !ok {
			return feedClosedMsg{}
		}
		return snapshotMsg{messages: snap}
	}
}

func (m Model) waitForAuth() tea.Cmd {
	if m.authCh == nil {
		return nil
	}
	ch, ctx := m.authCh, m.ctx
	return func() tea.Msg {
		select {
		case state := <-ch:
			return authChangedMsg{state: state}
		case <-ctx.Done():
			return nil
		}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.selecting {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m.updateSelector(msg)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3 // Header panel with border
		inputHeight := 5  // Input panel with border
		statusHeight := 1 // Status bar

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - 2
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 2)
		if m.selecting {
			m.selector, _ = m.selector.Update(msg)
		}
		m.updateViewport()
		m.viewport.GotoBottom()

	case tea.KeyMsg:
		if !m.alert.IsZero() {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "enter", "esc", " ":
				m.alert = apierrors.Alert{}
			}
			return m, nil
		}

		if m.askingPermission {
			return m.updatePermissionPrompt(msg)
		}

		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+l":
			return m, m.logout()

		case "ctrl+o":
			return m.startImagePick()

		case "ctrl+y":
			return m, m.copyLatest()

		case "enter":
			draft := m.textarea.Value()
			switch strings.TrimSpace(draft) {
			case "":
				return m, nil
			case "/quit", "/exit":
				return m, tea.Quit
			case "/logout":
				m.textarea.Reset()
				return m, m.logout()
			case "/image":
				m.textarea.Reset()
				return m.startImagePick()
			}
			m.notice = ""
			return m, m.track(m.sendMessage(draft), "Sending...")
		}

	case cachedLoadedMsg:
		if m.state.ApplyCached(msg.messages) {
			m.updateViewport()
			m.viewport.GotoBottom()
		}

	case subscribedMsg:
		if msg.err != nil {
			m.alert = apierrors.AlertFor(msg.err)
			break
		}
		m.feed = msg.feed
		cmds = append(cmds, waitForSnapshot(m.feed))

	case snapshotMsg:
		m.state.ApplySnapshot(msg.messages)
		m.updateViewport()
		m.viewport.GotoBottom()
		cmds = append(cmds, waitForSnapshot(m.feed))

	case feedClosedMsg:
		m.notice = "Disconnected"

	case authChangedMsg:
		if msg.state == auth.SignedOut {
			m.signedOut = true
			return m, tea.Quit
		}
		cmds = append(cmds, m.waitForAuth())

	case sentMsg:
		m.pending = max(m.pending-1, 0)
		if msg.err != nil {
			// the draft stays for another try
			m.alert = apierrors.AlertFor(msg.err)
		} else if msg.sent && m.textarea.Value() == msg.draft {
			// text typed since the send started is kept
			m.textarea.Reset()
			m.state.Draft = ""
		}

	case permissionMsg:
		if msg.err != nil {
			m.alert = apierrors.AlertFor(msg.err)
			break
		}
		cmds = append(cmds, m.listCandidates())

	case candidatesMsg:
		if msg.err != nil {
			m.alert = apierrors.AlertFor(msg.err)
			break
		}
		dir := ""
		if g, ok := m.ctrl.Picker().(*media.Gallery); ok {
			dir = g.Dir()
		}
		m.selector = NewGallerySelectorModel(msg.candidates, dir, m.width, m.height)
		m.selecting = true

	case imageSentMsg:
		m.pending = max(m.pending-1, 0)
		if msg.err != nil {
			m.alert = apierrors.AlertFor(msg.err)
		}

	case logoutMsg:
		if msg.err != nil {
			m.alert = apierrors.AlertFor(msg.err)
		}

	case copiedMsg:
		if msg.err != nil {
			m.alert = apierrors.AlertFor(msg.err)
		} else {
			m.notice = "Copied to clipboard"
		}

	case spinner.TickMsg:
		if m.pending > 0 {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if _, ok := msg.(tea.KeyMsg); ok {
		m.textarea, cmd = m.textarea.Update(msg)
		m.state.Draft = m.textarea.Value()
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) updatePermissionPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "ctrl+c":
		return m, tea.Quit
	case "y", "enter":
		m.askingPermission = false
		return m, m.requestPermission(true)
	case "n", "esc":
		m.askingPermission = false
		return m, m.requestPermission(false)
	}
	return m, nil
}

func (m Model) updateSelector(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.selector, cmd = m.selector.Update(msg)
	if !m.selector.Done() {
		return m, cmd
	}

	m.selecting = false
	picked := m.selector.Selected()
	if picked == nil {
		// cancelled: nothing is sent and nothing is reported
		return m, nil
	}

	return m, m.track(m.sendImage(picked), models.ImagePlaceholder)
}

// track counts send as in flight and starts the spinner for the first one
func (m *Model) track(send tea.Cmd, label string) tea.Cmd {
	m.sendingText = label
	m.pending++
	if m.pending == 1 {
		return tea.Batch(send, m.spinner.Tick)
	}
	return send
}

// startImagePick begins the image flow with the permission check
func (m Model) startImagePick() (tea.Model, tea.Cmd) {
	picker := m.ctrl.Picker()
	if picker == nil {
		m.alert = apierrors.AlertPermissionDenied
		return m, nil
	}
	if picker.Permission() == media.PermissionUndetermined {
		m.askingPermission = true
		return m, nil
	}
	// a stored decision is returned without asking
	return m, m.requestPermission(false)
}

func (m Model) requestPermission(answer bool) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		err := ctrl.RequestPermission(ctx, func(context.Context) (bool, error) {
			return answer, nil
		})
		return permissionMsg{err: err}
	}
}

func (m Model) listCandidates() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		candidates, err := ctrl.Candidates(ctx)
		return candidatesMsg{candidates: candidates, err: err}
	}
}

func (m Model) sendMessage(draft string) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		sent, err := ctrl.SendMessage(ctx, draft)
		return sentMsg{draft: draft, sent: sent, err: err}
	}
}

func (m Model) sendImage(candidate *media.Candidate) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		asset, err := ctrl.PickImage(ctx, candidate)
		if err != nil {
			return imageSentMsg{err: err}
		}
		_, err = ctrl.SendImage(ctx, asset)
		return imageSentMsg{err: err}
	}
}

func (m Model) logout() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return logoutMsg{err: ctrl.Logout(ctx)}
	}
}

func (m Model) copyLatest() tea.Cmd {
	latest, ok := m.state.Latest()
	if !ok {
		return nil
	}
	text := latest.Text
	if latest.IsImage() {
		text = latest.ImageURL
	}
	return func() tea.Msg {
		return copiedMsg{err: writeClipboard(text)}
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	if m.selecting {
		return m.selector.View()
	}

	contentWidth := m.width - 4
	var sections []string

	// Header
	user := m.ctrl.CurrentUser()
	who := user.Email
	if who == "" {
		who = "signed out"
	}
	headerContent := lipgloss.JoinHorizontal(
		lipgloss.Center,
		titleStyle.Render("roomchat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(who),
		hintStyle.Render("  •  Logout (ctrl+l)"),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Messages
	var messagesContent string
	switch {
	case !m.alert.IsZero():
		messagesContent = lipgloss.Place(m.viewport.Width, m.viewport.Height,
			lipgloss.Center, lipgloss.Center, renderAlert(m.alert))
	case m.askingPermission:
		messagesContent = lipgloss.Place(m.viewport.Width, m.viewport.Height,
			lipgloss.Center, lipgloss.Center, m.renderPermissionPrompt())
	case len(m.state.Messages) == 0:
		messagesContent = lipgloss.Place(m.viewport.Width, m.viewport.Height,
			lipgloss.Center, lipgloss.Center, welcomeStyle.Render("No messages yet"))
	default:
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	// Input
	label := inputLabelStyle.Render("Message")
	if m.pending > 0 {
		progress := m.sendingText
		if m.pending > 1 {
			progress = fmt.Sprintf("%s (%d)", progress, m.pending)
		}
		label += "  " + m.spinner.View() + loadingStyle.Render(" "+progress)
	}
	inputContent := lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View())
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderPermissionPrompt() string {
	body := lipgloss.JoinVertical(
		lipgloss.Center,
		alertTitleStyle.Foreground(colorWarning).Render("Gallery access"),
		"",
		alertMessageStyle.Render("Allow roomchat to read your pictures?"),
		"",
		hintStyle.Render("y: allow  n: deny"),
	)
	return promptBoxStyle.Render(body)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	if m.notice != "" {
		return statusBarStyle.Width(width).Align(lipgloss.Center).Render(noticeStyle.Render(m.notice))
	}

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"^O", "Image"},
		{"^Y", "Copy"},
		{"^L", "Logout"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content with placed bubbles
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	width := m.viewport.Width
	bubbleWidth := width * 3 / 4
	if bubbleWidth < 10 {
		bubbleWidth = width
	}
	uid := m.ctrl.CurrentUser().UID

	var content strings.Builder
	for i, msg := range m.state.Messages {
		if i > 0 {
			content.WriteString("\n")
		}

		label := msg.User
		if label == "" {
			label = "unknown"
		}

		body := m.renderBody(msg, bubbleWidth-2)

		var block string
		if chat.PlacementFor(msg, uid) == chat.Mine {
			block = lipgloss.JoinVertical(lipgloss.Right,
				mineLabelStyle.Render(label),
				mineBubbleStyle.MaxWidth(bubbleWidth).Render(body),
			)
			block = lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
		} else {
			block = lipgloss.JoinVertical(lipgloss.Left,
				theirsLabelStyle.Render(label),
				theirsBubbleStyle.MaxWidth(bubbleWidth).Render(body),
			)
		}
		content.WriteString(block)
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// renderBody renders message content, memoized per message and width
func (m *Model) renderBody(msg models.Message, width int) string {
	key := fmt.Sprintf("%s:%d", msg.ID, width)
	if msg.ID != "" {
		if out, ok := m.rendered[key]; ok {
			return out
		}
	}

	var out string
	if msg.IsImage() {
		art, err := render.ImageFromDataURI(msg.ImageURL, width)
		if err != nil {
			out = msg.Text
		} else {
			out = art
		}
	} else {
		out = render.MessageText(msg.Text, m.renderOpts.WithWidth(width))
	}

	if msg.ID != "" {
		m.rendered[key] = out
	}
	return out
}

// State returns the screen state
func (m Model) State() chat.State {
	return m.state
}

// SignedOut reports whether the screen closed because of a sign-out
func (m Model) SignedOut() bool {
	return m.signedOut
}

// Close tears down the live subscription and the auth watch
func (m Model) Close() {
	if m.feed != nil {
		m.feed.Close()
	}
	if m.stopAuth != nil {
		m.stopAuth()
	}
}

// Outcome describes how the chat screen ended
type Outcome struct {
	SignedOut bool
}

// RunChat runs the chat screen until the user quits or signs out
func RunChat(ctx context.Context, ctrl *chat.Controller, opts render.Options) (Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewChatModel(ctx, ctrl, opts)
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	out := Outcome{}
	if fm, ok := final.(Model); ok {
		fm.Close()
		out.SignedOut = fm.SignedOut()
	} else {
		m.Close()
	}
	return out, err
}
