package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/minifeed/internal/logging"
	"github.com/abelbrown/minifeed/internal/model"
	"github.com/abelbrown/minifeed/internal/otel"
	"github.com/abelbrown/minifeed/internal/route"
	"github.com/abelbrown/minifeed/internal/session"
)

// DefaultTitle is the window title base when none is configured.
const DefaultTitle = "minifeed"

const (
	pickerWidth = 28
	wheelLines  = 3
)

// AppConfig holds the dependencies of the root model.
type AppConfig struct {
	// Fetch runs a session request and reports back with ItemsFetched.
	Fetch func(session.Request) tea.Cmd

	// Title is the window title base; the unread count is appended.
	Title string

	// StartScope is requested as soon as the catalog is loaded.
	StartScope model.Scope

	PageSize int
	Events   *otel.Logger
	Ring     *otel.RingBuffer
}

// App is the root Bubble Tea model. It owns the sync session and the
// stream the session renders into; all session calls happen in Update.
type App struct {
	fetch  func(session.Request) tea.Cmd
	sess   *session.Session
	stream *Stream
	picker *Picker
	events *otel.Logger
	ring   *otel.RingBuffer

	catalog    *model.Catalog
	startScope model.Scope

	spinner    spinner.Model
	routeInput textinput.Model

	baseTitle string
	title     string

	width        int
	height       int
	ready        bool
	pickerOpen   bool
	routeActive  bool
	debugVisible bool
}

// NewApp creates the root model.
func NewApp(cfg AppConfig) App {
	stream := NewStream()

	opts := []session.Option{session.WithEvents(cfg.Events)}
	if cfg.PageSize > 0 {
		opts = append(opts, session.WithPageSize(cfg.PageSize))
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorHighlight)

	ti := textinput.New()
	ti.Prompt = ": "
	ti.Placeholder = "#/feed/<id>"
	ti.CharLimit = 256

	base := cfg.Title
	if base == "" {
		base = DefaultTitle
	}

	return App{
		fetch:      cfg.Fetch,
		sess:       session.New(stream, opts...),
		stream:     stream,
		picker:     NewPicker(nil),
		events:     cfg.Events,
		ring:       cfg.Ring,
		startScope: cfg.StartScope,
		spinner:    sp,
		routeInput: ti,
		baseTitle:  base,
	}
}

// Init starts the spinner and sets the initial window title.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, tea.SetWindowTitle(a.baseTitle))
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.events.Emit(otel.Event{
			Level: otel.LevelDebug,
			Kind:  otel.KindMsgReceived,
			Comp:  "ui",
			Msg:   fmt.Sprintf("%T", msg),
		})
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.layout()
		return a, a.afterScroll()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case CatalogLoaded:
		return a.handleCatalog(msg.Catalog)

	case CatalogFailed:
		logging.Warn("catalog unavailable", "err", msg.Err)
		return a, nil

	case PollTick:
		req, ok := a.sess.Poll()
		if !ok {
			return a, nil
		}
		return a, a.run(req)

	case ItemsFetched:
		out := a.sess.Apply(msg.Result)
		logging.Debug("fetch applied", "mode", msg.Result.Request.Mode, "outcome", out, "items", len(msg.Result.Items))
		return a, a.syncTitle()
	}

	return a, nil
}

func (a App) handleCatalog(c *model.Catalog) (tea.Model, tea.Cmd) {
	first := a.catalog == nil
	a.catalog = c
	a.stream.SetCatalog(c)
	a.picker = NewPicker(c)
	if !first {
		a.picker.SetActive(a.sess.Scope())
		return a, nil
	}
	return a, a.changeScope(a.startScope)
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.routeActive {
		return a.handleRouteKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, keys.Debug):
		a.debugVisible = !a.debugVisible
		return a, nil

	case key.Matches(msg, keys.Cancel):
		a.debugVisible = false
		if a.pickerOpen {
			a.pickerOpen = false
			a.layout()
		}
		return a, nil
	}

	if a.debugVisible {
		return a, nil
	}

	switch {
	case key.Matches(msg, keys.Picker):
		a.pickerOpen = !a.pickerOpen
		if a.pickerOpen {
			a.picker.SetActive(a.sess.Scope())
		}
		a.layout()
		return a, nil

	case key.Matches(msg, keys.Route):
		a.routeActive = true
		a.routeInput.SetValue(route.Format(a.sess.Scope()))
		a.routeInput.CursorEnd()
		return a, a.routeInput.Focus()
	}

	if a.pickerOpen {
		return a.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Down):
		a.stream.MoveCursor(1)
	case key.Matches(msg, keys.Up):
		a.stream.MoveCursor(-1)
	case key.Matches(msg, keys.PageDown):
		a.stream.Page(1)
	case key.Matches(msg, keys.PageUp):
		a.stream.Page(-1)
	case key.Matches(msg, keys.Top):
		a.stream.CursorTop()
	case key.Matches(msg, keys.Bottom):
		a.stream.CursorBottom()
	case key.Matches(msg, keys.Reload):
		if a.catalog == nil {
			return a, nil
		}
		return a, a.changeScope(a.sess.Scope())
	default:
		return a, nil
	}
	return a, a.afterScroll()
}

func (a App) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Down):
		a.picker.Move(1)
	case key.Matches(msg, keys.Up):
		a.picker.Move(-1)
	case key.Matches(msg, keys.Top):
		a.picker.Move(-a.picker.Len())
	case key.Matches(msg, keys.Bottom):
		a.picker.Move(a.picker.Len())
	case key.Matches(msg, keys.Select):
		if a.catalog == nil {
			return a, nil
		}
		a.pickerOpen = false
		a.layout()
		return a, a.changeScope(a.picker.Selected())
	}
	return a, nil
}

func (a App) handleRouteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.routeActive = false
		a.routeInput.Blur()
		return a, nil
	case tea.KeyEnter:
		a.routeActive = false
		a.routeInput.Blur()
		if a.catalog == nil {
			a.startScope = route.Parse(a.routeInput.Value())
			return a, nil
		}
		return a, a.changeScope(route.Parse(a.routeInput.Value()))
	}
	var cmd tea.Cmd
	a.routeInput, cmd = a.routeInput.Update(msg)
	return a, cmd
}

func (a App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || a.debugVisible {
		return a, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.stream.ScrollBy(-wheelLines)
	case tea.MouseButtonWheelDown:
		a.stream.ScrollBy(wheelLines)
	default:
		return a, nil
	}
	return a, a.afterScroll()
}

// changeScope starts a full reload of scope.
func (a *App) changeScope(scope model.Scope) tea.Cmd {
	if a.catalog != nil && !a.catalog.Valid(scope) {
		logging.Warn("scope not in catalog", "scope", scope)
	}
	req := a.sess.RequestScope(scope)
	a.picker.SetActive(scope)
	return tea.Batch(a.run(req), a.syncTitle())
}

// afterScroll reports the viewport position to the session and runs the
// pagination request it may return.
func (a *App) afterScroll() tea.Cmd {
	req, ok := a.sess.ScrollChanged(a.stream.Scroll())
	title := a.syncTitle()
	if !ok {
		return title
	}
	return tea.Batch(a.run(req), title)
}

func (a *App) run(req session.Request) tea.Cmd {
	if a.fetch == nil {
		return nil
	}
	return a.fetch(req)
}

// syncTitle returns a window title command when the unread count changed
// the title.
func (a *App) syncTitle() tea.Cmd {
	t := session.Title(a.baseTitle, a.sess.State().UnreadCount)
	if t == a.title {
		return nil
	}
	a.title = t
	return tea.SetWindowTitle(t)
}

// layout sizes the stream to what is left after header, status bar and
// the optional picker.
func (a *App) layout() {
	w := a.width
	if a.pickerOpen {
		w -= pickerWidth
	}
	a.stream.SetSize(max(w, 1), a.bodyHeight())
}

func (a App) bodyHeight() int {
	return max(a.height-2, 1)
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.debugVisible {
		overlay := debugOverlay(a.ring, a.width, a.height-1)
		if overlay == "" {
			overlay = HelpStyle.Render("Event ring buffer disabled.")
		}
		body := lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center, overlay)
		return body + "\n" + debugStatusBar(a.width)
	}

	header := a.renderHeader()

	bodyHeight := a.bodyHeight()

	body := lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(a.renderBody())
	if a.pickerOpen {
		side := a.picker.View(pickerWidth, bodyHeight)
		body = lipgloss.JoinHorizontal(lipgloss.Top, side, body)
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	if a.routeActive {
		b.WriteString(RouteBar.Width(a.width).Render(a.routeInput.View()))
	} else {
		b.WriteString(a.renderStatusBar())
	}
	return b.String()
}

func (a App) renderBody() string {
	switch {
	case a.catalog == nil:
		return HelpStyle.Render(a.spinner.View() + " Loading feeds...")
	case a.sess.State().Phase == session.Loading && a.stream.Len() == 0:
		return HelpStyle.Render(a.spinner.View() + " Loading items...")
	}
	return a.stream.View()
}

func (a App) renderHeader() string {
	st := a.sess.State()
	left := Header.Render(navInfo(st.Scope, a.catalog))
	if badge := session.Badge(st.UnreadCount); badge != "" {
		left += " " + Badge.Render(badge)
	}
	if a.catalog == nil || st.Phase == session.Loading {
		left += " " + a.spinner.View()
	}
	return lipgloss.NewStyle().MaxWidth(a.width).Render(left)
}

// navInfo names the scope on screen: "all feeds", the group ID, or the
// feed title.
func navInfo(scope model.Scope, c *model.Catalog) string {
	switch scope.Kind {
	case model.ScopeGroup:
		return scope.ID
	case model.ScopeFeed:
		if f, ok := c.Feed(scope.ID); ok {
			return f.Title
		}
		return scope.ID
	default:
		return "all feeds"
	}
}

func (a App) renderStatusBar() string {
	st := a.sess.State()

	var position string
	switch {
	case a.catalog == nil || st.Phase == session.Loading:
		position = " Loading... "
	case st.Rendered == 0:
		position = " 0 items "
	default:
		position = fmt.Sprintf(" %d/%d ", a.stream.Cursor()+1, st.Rendered)
		if st.PageInFlight {
			position += "(loading older) "
		} else if st.PaginationExhausted {
			position += "(end) "
		}
	}

	var hints []string
	for _, b := range statusHints() {
		h := b.Help()
		hints = append(hints, StatusBarKey.Render(h.Key)+StatusBarText.Render(":"+h.Desc))
	}
	keyHints := strings.Join(hints, " ")

	// StatusBar pads one column on each side.
	padding := max(a.width-2-lipgloss.Width(position)-lipgloss.Width(keyHints), 0)
	bar := position + strings.Repeat(" ", padding) + keyHints
	return StatusBar.Width(a.width).MaxWidth(a.width).MaxHeight(1).Render(bar)
}

// Session returns the sync session (for testing).
func (a App) Session() *session.Session {
	return a.sess
}

// Stream returns the item stream (for testing).
func (a App) Stream() *Stream {
	return a.stream
}
