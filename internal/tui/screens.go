// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/derpfest/customizations/internal/i18n"
	"github.com/derpfest/customizations/internal/payload"
	"github.com/derpfest/customizations/internal/prefs"
)

type rowKind int

const (
	rowLoad rowKind = iota
	rowDelete
	rowToggle
	rowCycle
	rowInfo
)

// row is one line of a settings screen.
type row struct {
	kind    rowKind
	payload payload.Kind
	toggle  prefs.Toggle
}

func (r row) selectable() bool { return r.kind != rowInfo }

func toggleRows() []row {
	rows := make([]row, 0, len(prefs.Toggles))
	for _, t := range prefs.Toggles {
		rows = append(rows, row{kind: rowToggle, toggle: t})
	}
	return rows
}

// rows lists the rows of the active screen. The Status bar screen repeats
// the privacy switches from Misc.
func (m Model) rows() []row {
	switch m.screen {
	case miscScreen:
		rows := []row{
			{kind: rowLoad, payload: payload.Keybox},
			{kind: rowDelete, payload: payload.Keybox},
			{kind: rowLoad, payload: payload.Pif},
			{kind: rowDelete, payload: payload.Pif},
		}
		return append(rows, toggleRows()...)
	case statusBarScreen:
		return toggleRows()
	case qsScreen:
		return []row{{kind: rowCycle}, {kind: rowInfo}}
	}
	return nil
}

// deleteEnabled reports whether the delete row of kind can be used.
func (m Model) deleteEnabled(kind payload.Kind) bool {
	return m.data.summaries[kind].Loaded
}

func (m Model) activate(r row) (tea.Model, tea.Cmd) {
	switch r.kind {
	case rowLoad:
		return m.openPicker(r.payload)
	case rowDelete:
		if !m.deleteEnabled(r.payload) {
			return m, nil
		}
		return m, m.deleteCmd(r.payload)
	case rowToggle:
		return m, m.toggleCmd(r.toggle, !m.data.toggles[r.toggle.Name])
	case rowCycle:
		next := prefs.CycleWeekly
		if m.data.cycle == prefs.CycleWeekly {
			next = prefs.CycleDaily
		}
		return m, m.cycleCmd(next)
	}
	return m, nil
}

func (m Model) deleteCmd(kind payload.Kind) tea.Cmd {
	ctx, ctrl, status := m.ctx, m.ctrl, m.status
	return func() tea.Msg {
		err := ctrl.Delete(ctx, kind)
		return doneFromStatus(status, err)
	}
}

func (m Model) importCmd(kind payload.Kind, location string) tea.Cmd {
	ctx, ctrl, status := m.ctx, m.ctrl, m.status
	return func() tea.Msg {
		_, err := ctrl.Complete(ctx, kind, pickResult(location))
		return doneFromStatus(status, err)
	}
}

func (m Model) toggleCmd(t prefs.Toggle, on bool) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		if err := t.Set(ctx, store, on); err != nil {
			return doneMsg{message: i18n.T("store_error", err), err: err}
		}
		return doneMsg{message: fmt.Sprintf("%s: %s", i18n.T(t.TitleID), switchLabel(on))}
	}
}

func (m Model) cycleCmd(v int) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		if err := prefs.SetCycle(ctx, store, v); err != nil {
			return doneMsg{message: i18n.T("store_error", err), err: err}
		}
		return doneMsg{message: fmt.Sprintf("%s: %s", i18n.T("qs_data_usage_cycle_type_title"), prefs.CycleLabel(v))}
	}
}

// doneFromStatus turns the controller's last notification into a doneMsg.
// A cancelled pick produces no notification and clears the status line.
func doneFromStatus(status *statusNotifier, err error) doneMsg {
	n, ok := status.take()
	if !ok {
		if err != nil {
			return doneMsg{message: err.Error(), err: err}
		}
		return doneMsg{}
	}
	return doneMsg{message: n.Message, err: err}
}

func switchLabel(on bool) string {
	if on {
		return i18n.T("switch_on")
	}
	return i18n.T("switch_off")
}
