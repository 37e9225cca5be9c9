package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wpp-client/internal/api"
	"github.com/matheus3301/wpp-client/internal/bus"
	"github.com/matheus3301/wpp-client/internal/present"
	"github.com/matheus3301/wpp-client/internal/status"
	"github.com/matheus3301/wpp-client/internal/store"
	"github.com/matheus3301/wpp-client/internal/tui/keys"
	"github.com/matheus3301/wpp-client/internal/tui/ui"
	"github.com/matheus3301/wpp-client/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// Terminals this wide or narrower show one pane at a time.
const narrowWidth = 80

const (
	pageLoading       = "loading"
	pageConversations = "conversations"
	pageHelp          = "help"
	pageDetails       = "details"

	scopeList   = "list"
	scopeThread = "thread"

	headerHeight = 6
	promptHeight = 3
)

// Shell is the application state the UI renders and the operations it
// triggers. *store.Store implements it.
type Shell interface {
	Snapshot() store.Snapshot
	RefreshCh() <-chan struct{}
	FetchChats(ctx context.Context) error
	SelectChat(ctx context.Context, chat api.Chat) error
	ClearSelection(ctx context.Context) error
	SendMessage(ctx context.Context, text string) error
}

// Options carries what the header shows about the active profile.
type Options struct {
	Profile    string
	BackendURI string
}

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	shell    Shell
	bus      *bus.Bus
	conn     *status.Machine
	logger   *zap.Logger
	opts     Options
	theme    *ui.Theme
	registry *keys.Registry
	flash    *ui.FlashModel

	root      *tview.Flex
	header    *tview.Flex
	connInfo  *ui.ConnectionInfo
	menu      *ui.Menu
	logo      *ui.Logo
	crumbs    *ui.Crumbs
	pages     *ui.Pages
	prompt    *ui.Prompt
	flashBar  *ui.FlashBar
	statusBar *views.StatusBar

	split   *tview.Flex
	right   *tview.Pages
	list    *views.ConversationList
	thread  *views.MessageThread
	empty   *views.Placeholder
	loading *views.Placeholder
	help    *views.HelpView
	details *views.ConversationInfo

	snap       store.Snapshot
	narrow     bool
	promptOn   bool
	lastFocus  tview.Primitive
	lastOpened string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewApp creates the TUI application. conn may be nil.
func NewApp(shell Shell, b *bus.Bus, conn *status.Machine, logger *zap.Logger, opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		shell:     shell,
		bus:       b,
		conn:      conn,
		logger:    logger.Named("tui"),
		opts:      opts,
		theme:     theme,
		registry:  keys.NewRegistry(),
		flash:     ui.NewFlashModel(),
		connInfo:  ui.NewConnectionInfo(theme),
		menu:      ui.NewMenu(theme),
		logo:      ui.NewLogo(theme, "Web Client"),
		crumbs:    ui.NewCrumbs(theme),
		pages:     ui.NewPages(),
		prompt:    ui.NewPrompt(theme),
		flashBar:  ui.NewFlashBar(theme),
		statusBar: views.NewStatusBar(theme),
		list:      views.NewConversationList(theme),
		thread:    views.NewMessageThread(theme),
		empty:     views.NewEmptyThread(theme),
		loading:   views.NewLoading(theme),
		help:      views.NewHelpView(theme),
		details:   views.NewConversationInfo(theme),
		snap:      store.Snapshot{Loading: true},
		ctx:       ctx,
		cancel:    cancel,
	}

	a.statusBar.SetProfile(opts.Profile)
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()
	a.render()

	return a
}

func runeAction(r rune, description string, handler func()) *keys.Action {
	return &keys.Action{Key: tcell.KeyRune, Rune: r, Description: description, Handler: handler}
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("command", runeAction(':', "Command", func() { a.activatePrompt(ui.PromptCommand) }))
	a.registry.AddGlobal("search", runeAction('/', "Search", func() { a.activatePrompt(ui.PromptFilter) }))
	a.registry.AddGlobal("help", runeAction('?', "Help", func() { a.pages.Push(pageHelp) }))
	a.registry.AddGlobal("quit", &keys.Action{
		Key: tcell.KeyRune, Rune: 'q', Description: "Quit",
		Handler: func() {
			if a.pages.Pop() == "" {
				a.app.Stop()
			}
		},
	})
	a.registry.AddGlobal("back", &keys.Action{Key: tcell.KeyEscape, Description: "Back", Handler: a.back})

	for _, scope := range []string{scopeList, scopeThread} {
		a.registry.AddView(scope, "details", runeAction('d', "Details", a.showDetails))
		a.registry.AddView(scope, "refresh", runeAction('r', "Refresh", a.refresh))
		a.registry.AddView(scope, "switch", &keys.Action{Key: tcell.KeyTab, Description: "Switch pane", Handler: a.switchPane})
	}

	a.registry.AddView(scopeThread, "compose", runeAction('i', "Compose", func() { a.app.SetFocus(a.thread.Composer()) }))
	a.registry.AddView(scopeList, "all", runeAction('0', "Show all", func() { a.list.SetFilter("") }))
	for n := 1; n <= 9; n++ {
		a.registry.AddView(scopeList, fmt.Sprintf("jump%d", n), &keys.Action{
			Key: tcell.KeyRune, Rune: rune('0' + n), Description: "Jump",
			Handler: func() {
				if chat, ok := a.list.ChatAt(n); ok {
					a.openChat(chat)
				}
			},
		})
	}
}

func (a *App) setupCallbacks() {
	a.list.SetOnOpen(a.openChat)

	a.thread.SetOnSend(func(text string) {
		a.goAsync(func(ctx context.Context) {
			_ = a.shell.SendMessage(ctx, text)
		})
	})

	a.prompt.SetOnChange(func(mode ui.PromptMode, text string) {
		if mode == ui.PromptFilter {
			a.list.SetFilter(text)
		}
	})
	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.deactivatePrompt()
		switch mode {
		case ui.PromptCommand:
			a.runCommand(ParseCommand(text))
		case ui.PromptFilter:
			a.list.SetFilter(text)
		}
	})
	a.prompt.SetOnCancel(func() {
		if a.prompt.Mode() == ui.PromptFilter {
			a.list.SetFilter("")
		}
		a.deactivatePrompt()
	})

	a.pages.SetOnChange(func([]string) { a.refreshChrome() })
}

func (a *App) setupLayout() {
	a.right = tview.NewPages().
		AddPage("empty", a.empty, true, true).
		AddPage("thread", a.thread, true, false)

	a.split = tview.NewFlex().
		AddItem(a.list, 0, 1, true).
		AddItem(a.right, 0, 2, false)

	a.pages.AddPage(pageLoading, a.loading, true, false)
	a.pages.AddPage(pageConversations, a.split, true, false)
	a.pages.AddPage(pageHelp, a.help, true, false)
	a.pages.AddPage(pageDetails, a.details, true, false)
	a.pages.Reset(pageLoading)

	a.header = tview.NewFlex().
		AddItem(a.connInfo, 42, 0, false).
		AddItem(a.menu, 0, 1, false).
		AddItem(a.logo, 14, 0, false)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.header, headerHeight, 0, false).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.flashBar, 1, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(a.root, true)
	a.app.SetInputCapture(a.keyboard)
	a.app.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		w, _ := screen.Size()
		if narrow := w <= narrowWidth; narrow != a.narrow {
			a.narrow = narrow
			a.layout()
		}
		return false
	})
}

func (a *App) keyboard(ev *tcell.EventKey) *tcell.EventKey {
	if a.promptOn {
		return ev
	}
	if a.app.GetFocus() == a.thread.Composer() {
		if ev.Key() == tcell.KeyEscape {
			a.app.SetFocus(a.thread.Messages())
			return nil
		}
		return ev
	}
	if a.registry.HandleEvent(a.scope(), ev) {
		a.refreshChrome()
		return nil
	}
	return ev
}

// scope names the key binding set for the focused part of the screen.
func (a *App) scope() string {
	page := a.pages.Current()
	if page != pageConversations {
		return page
	}
	if a.snap.Selected != nil && a.app.GetFocus() != a.list {
		return scopeThread
	}
	return scopeList
}

// Run starts the TUI and blocks until it exits.
func (a *App) Run() error {
	a.wg.Add(1)
	go a.watch()
	defer func() {
		a.cancel()
		a.wg.Wait()
	}()
	return a.app.Run()
}

// Stop shuts the TUI down. Safe to call more than once.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// watch redraws on store changes, connection changes, flash messages and
// a one second tick for the clock and flash expiry.
func (a *App) watch() {
	defer a.wg.Done()
	connEvents, unsub := a.bus.Subscribe("conn.", 16)
	defer unsub()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-a.shell.RefreshCh():
			a.app.QueueUpdateDraw(a.render)
		case evt := <-connEvents:
			if change, ok := evt.Payload.(status.StatusChange); ok {
				a.logger.Debug("connection", zap.String("from", string(change.From)), zap.String("to", string(change.To)))
			}
			a.app.QueueUpdateDraw(a.renderConnection)
		case <-a.flash.Watch():
			a.app.QueueUpdateDraw(func() { a.flashBar.Update(a.flash.Current()) })
		case <-ticker.C:
			a.app.QueueUpdateDraw(func() {
				a.flashBar.Update(a.flash.Current())
				a.statusBar.Refresh()
			})
		}
	}
}

// render copies the latest snapshot into the views. Runs on the UI goroutine.
func (a *App) render() {
	a.snap = a.shell.Snapshot()
	snap := a.snap

	if snap.Loading {
		if a.pages.Current() != pageLoading {
			a.pages.Reset(pageLoading)
		}
	} else if a.pages.Current() == pageLoading {
		a.pages.Reset(pageConversations)
		a.app.SetFocus(a.list)
	}

	a.list.Update(snap.Chats, snap.SelectedID())

	openedID := snap.SelectedID()
	if snap.Selected != nil {
		a.thread.Update(*snap.Selected, snap.Messages, snap.MessagesRev)
		a.right.SwitchToPage("thread")
		if openedID != a.lastOpened && a.pages.Current() == pageConversations {
			a.app.SetFocus(a.thread.Messages())
		}
	} else {
		a.right.SwitchToPage("empty")
		if a.focusInThread() {
			a.app.SetFocus(a.list)
		}
	}
	a.lastOpened = openedID

	a.layout()
	a.renderConnection()
	a.statusBar.SetUnread(present.UnreadTotal(snap.Chats))
	a.refreshChrome()
}

func (a *App) renderConnection() {
	state := status.Idle
	if a.conn != nil {
		state = a.conn.Current()
	}
	a.connInfo.Update(ui.ConnectionData{
		Profile:    a.opts.Profile,
		BackendURI: a.opts.BackendURI,
		State:      state,
		Chats:      len(a.snap.Chats),
		Unread:     present.UnreadTotal(a.snap.Chats),
	})
	a.statusBar.SetState(state)
}

// layout sizes the panes. Wide terminals show list and conversation side
// by side; narrow ones show the conversation over the list while a chat is
// open.
func (a *App) layout() {
	switch {
	case !a.narrow:
		a.split.ResizeItem(a.list, 0, 1)
		a.split.ResizeItem(a.right, 0, 2)
		a.root.ResizeItem(a.header, headerHeight, 0)
	case a.snap.Selected != nil:
		a.split.ResizeItem(a.list, 0, 0)
		a.split.ResizeItem(a.right, 0, 1)
		a.root.ResizeItem(a.header, 0, 0)
	default:
		a.split.ResizeItem(a.list, 0, 1)
		a.split.ResizeItem(a.right, 0, 0)
		a.root.ResizeItem(a.header, 0, 0)
	}
}

func (a *App) refreshChrome() {
	labels := make([]string, 0, 3)
	var hints []ui.MenuHint
	for _, name := range a.pages.Stack() {
		c := a.component(name)
		if c == nil {
			continue
		}
		labels = append(labels, c.Title())
		hints = c.Hints()
	}
	if a.pages.Current() == pageConversations && a.snap.Selected != nil {
		labels = append(labels, a.thread.Title())
		if a.scope() == scopeThread {
			hints = a.thread.Hints()
		}
	}
	a.crumbs.Update(labels)
	a.menu.Update(hints)
}

func (a *App) component(page string) ui.Component {
	switch page {
	case pageConversations:
		return a.list
	case pageHelp:
		return a.help
	case pageDetails:
		return a.details
	}
	return nil
}

func (a *App) focusInThread() bool {
	f := a.app.GetFocus()
	return f == a.thread.Messages() || f == a.thread.Composer()
}

func (a *App) openChat(chat api.Chat) {
	if a.pages.Current() != pageConversations {
		a.pages.Reset(pageConversations)
	}
	a.goAsync(func(ctx context.Context) {
		if err := a.shell.SelectChat(ctx, chat); err != nil && !errors.Is(err, store.ErrSuperseded) {
			a.logger.Debug("select chat", zap.String("wa_id", chat.WaID), zap.Error(err))
		}
	})
}

// back walks out one level: an inner page, then the search filter, then
// the open conversation.
func (a *App) back() {
	switch {
	case a.pages.Pop() != "":
	case a.list.Filter() != "":
		a.list.SetFilter("")
	case a.snap.Selected != nil:
		a.app.SetFocus(a.list)
		a.goAsync(func(ctx context.Context) { _ = a.shell.ClearSelection(ctx) })
	}
}

func (a *App) switchPane() {
	if a.snap.Selected == nil || a.narrow {
		return
	}
	if a.app.GetFocus() == a.list {
		a.app.SetFocus(a.thread.Messages())
	} else {
		a.app.SetFocus(a.list)
	}
}

func (a *App) showDetails() {
	chat, ok := a.list.CursorChat()
	if a.scope() == scopeThread || !ok {
		if a.snap.Selected == nil {
			a.flash.Warn("no conversation selected")
			return
		}
		chat = *a.snap.Selected
	}
	a.details.Update(chat)
	a.pages.Push(pageDetails)
}

func (a *App) refresh() {
	a.flash.Info("Refreshing conversations…")
	a.goAsync(func(ctx context.Context) {
		if err := a.shell.FetchChats(ctx); err != nil {
			a.flash.Err(fmt.Errorf("refresh failed: %w", err))
		}
	})
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case CmdQuit:
		a.app.Stop()
	case CmdHelp:
		a.pages.Push(pageHelp)
	case CmdRefresh:
		a.refresh()
	case CmdDetails:
		a.showDetails()
	case CmdFilter:
		a.pages.Reset(pageConversations)
		a.list.SetFilter(cmd.Args)
	case CmdChat:
		matches := present.FilterChats(a.snap.Chats, cmd.Args)
		if cmd.Args == "" || len(matches) == 0 {
			a.flash.Warn(fmt.Sprintf("no conversation matches %q", cmd.Args))
			return
		}
		a.openChat(matches[0])
	case "":
	default:
		a.flash.Warn(fmt.Sprintf("unknown command %q", cmd.Name))
	}
}

func (a *App) activatePrompt(mode ui.PromptMode) {
	if mode == ui.PromptFilter && a.pages.Current() != pageConversations {
		a.pages.Reset(pageConversations)
	}
	seed := ""
	if mode == ui.PromptFilter {
		seed = a.list.Filter()
	}
	a.lastFocus = a.app.GetFocus()
	a.promptOn = true
	a.prompt.Activate(mode, seed)
	a.root.ResizeItem(a.prompt, promptHeight, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) deactivatePrompt() {
	a.promptOn = false
	a.root.ResizeItem(a.prompt, 0, 0)
	if a.lastFocus != nil {
		a.app.SetFocus(a.lastFocus)
	} else {
		a.app.SetFocus(a.list)
	}
}

// goAsync runs fn off the draw loop with the app's context.
func (a *App) goAsync(fn func(ctx context.Context)) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn(a.ctx)
	}()
}
