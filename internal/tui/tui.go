// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

// This file holds the top-level model. It routes keys to the active screen
// and runs store operations as tea.Cmds so the UI never blocks on I/O.
package tui

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/derpfest/customizations/internal/i18n"
	"github.com/derpfest/customizations/internal/importer"
	"github.com/derpfest/customizations/internal/logging"
	"github.com/derpfest/customizations/internal/payload"
	"github.com/derpfest/customizations/internal/prefs"
	"github.com/derpfest/customizations/internal/settings"
	"github.com/derpfest/customizations/internal/source"
)

// screen is the part of the UI that currently receives keys.
type screen int

const (
	menuScreen screen = iota
	miscScreen
	statusBarScreen
	qsScreen
	pickerScreen
	locationScreen
)

// menuScreens are the entries of the main menu, in display order.
var menuScreens = []screen{miscScreen, statusBarScreen, qsScreen}

func (s screen) titleID() string {
	switch s {
	case miscScreen:
		return "screen_misc"
	case statusBarScreen:
		return "screen_statusbar"
	case qsScreen:
		return "screen_qs"
	}
	return "tui_title"
}

func helpText(s screen) string {
	switch s {
	case menuScreen:
		return i18n.T("tui_help_menu")
	case pickerScreen:
		return i18n.T("tui_help_picker")
	case locationScreen:
		return i18n.T("tui_help_location")
	}
	return i18n.T("tui_help_screen")
}

// Options configures Run. Import.Store and Import.Opener are required;
// Import.Notifier is replaced by the status line.
type Options struct {
	Import importer.Options
	// StartDir is where the file picker opens. Empty means the working
	// directory.
	StartDir string
}

// screenData is everything the screens render, loaded by refreshCmd.
type screenData struct {
	summaries    map[payload.Kind]importer.Summary
	toggles      map[string]bool
	cycle        int
	cycleSummary string
	err          error
}

type dataMsg struct{ data screenData }

// doneMsg reports the end of an import, delete or preference write.
type doneMsg struct {
	message string
	err     error
}

// Model is the top-level bubbletea model.
type Model struct {
	ctx      context.Context
	ctrl     *importer.Controller
	store    settings.Store
	status   *statusNotifier
	policy   payload.Policy
	startDir string

	screen screen
	// back is the screen the picker returns to.
	back     screen
	cursor   int
	data     screenData
	picker   filepicker.Model
	location textinput.Model
	pickKind payload.Kind
	pickReq  importer.PickRequest

	message string
	isError bool
	width   int
	height  int
}

// statusNotifier keeps the last controller notification for the status
// line. Controller calls happen inside tea.Cmds, so access is locked.
type statusNotifier struct {
	mu   sync.Mutex
	last *importer.Notification
}

func (s *statusNotifier) Notify(n importer.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &n
}

func (s *statusNotifier) take() (importer.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return importer.Notification{}, false
	}
	n := *s.last
	s.last = nil
	return n, true
}

func newModel(ctx context.Context, opts Options) Model {
	status := &statusNotifier{}
	imp := interactiveImport(opts.Import)
	imp.Notifier = status
	ctrl := importer.New(imp)

	ti := textinput.New()
	ti.Placeholder = "sftp://user@host/path/keybox.xml"
	ti.CharLimit = 1024
	ti.Width = 60

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		store:    imp.Store,
		status:   status,
		policy:   ctrl.Policy(),
		startDir: opts.StartDir,
		location: ti,
		data:     screenData{summaries: map[payload.Kind]importer.Summary{}, toggles: map[string]bool{}},
	}
}

// interactiveImport disables terminal password prompts, which cannot run
// while bubbletea holds the terminal in raw mode.
func interactiveImport(opts importer.Options) importer.Options {
	if r, ok := opts.Opener.(*source.Resolver); ok {
		opts.Opener = r.WithoutPrompt()
	}
	return opts
}

// Init loads the initial screen data.
func (m Model) Init() tea.Cmd {
	return m.refreshCmd()
}

// Update routes msg to the active screen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.picker.Height = pickerHeight(msg.Height)
		return m, nil
	case dataMsg:
		m.data = msg.data
		if msg.data.err != nil {
			m.message, m.isError = msg.data.err.Error(), true
		}
		return m, nil
	case doneMsg:
		m.message = msg.message
		m.isError = msg.err != nil
		return m, m.refreshCmd()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case menuScreen:
			return m.updateMenu(msg)
		case pickerScreen:
			return m.updatePicker(msg)
		case locationScreen:
			return m.updateLocation(msg)
		default:
			return m.updateScreen(msg)
		}
	}

	// Directory listings and other picker messages arrive asynchronously.
	if m.screen == pickerScreen {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(menuScreens)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.screen = menuScreens[m.cursor]
		m.cursor = 0
		m.message = ""
		return m, m.refreshCmd()
	}
	return m, nil
}

func (m Model) updateScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.rows()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.cursor = indexOf(menuScreens, m.screen)
		m.screen = menuScreen
		return m, nil
	case "up", "k":
		m.cursor = m.step(rows, -1)
	case "down", "j":
		m.cursor = m.step(rows, 1)
	case "enter", " ":
		if m.cursor < len(rows) {
			return m.activate(rows[m.cursor])
		}
	}
	return m, nil
}

// step moves the cursor by dir, skipping rows that cannot be selected.
func (m Model) step(rows []row, dir int) int {
	for i := m.cursor + dir; i >= 0 && i < len(rows); i += dir {
		if rows[i].selectable() {
			return i
		}
	}
	return m.cursor
}

func indexOf(list []screen, s screen) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return 0
}

// refreshCmd reloads summaries, toggles and the cycle type from the store.
func (m Model) refreshCmd() tea.Cmd {
	ctx, ctrl, store := m.ctx, m.ctrl, m.store
	return func() tea.Msg {
		d := screenData{summaries: map[payload.Kind]importer.Summary{}, toggles: map[string]bool{}}
		for _, k := range payload.Kinds {
			s, err := ctrl.Summary(ctx, k)
			if err != nil {
				d.err = err
				return dataMsg{data: d}
			}
			d.summaries[k] = s
		}
		for _, t := range prefs.Toggles {
			on, err := t.Enabled(ctx, store)
			if err != nil {
				d.err = err
				return dataMsg{data: d}
			}
			d.toggles[t.Name] = on
		}
		cycle, err := prefs.Cycle(ctx, store)
		if err != nil {
			d.err = err
			return dataMsg{data: d}
		}
		d.cycle = cycle
		d.cycleSummary, d.err = prefs.CycleSummary(ctx, store, "")
		return dataMsg{data: d}
	}
}

// Run starts the interactive program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	if _, err := tea.NewProgram(newModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		logging.Errorf("TUI run error: %v", err)
		return err
	}
	return nil
}
