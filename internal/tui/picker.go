// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/derpfest/customizations/internal/i18n"
	"github.com/derpfest/customizations/internal/importer"
	"github.com/derpfest/customizations/internal/payload"
)

func pickResult(location string) importer.PickResult {
	return importer.PickResult{OK: location != "", Location: location}
}

func pickerHeight(termHeight int) int {
	h := termHeight - 12
	if h < 5 {
		h = 5
	}
	return h
}

// newPicker builds a file picker that only offers files of req's extension.
func newPicker(req importer.PickRequest, dir string) filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{req.Extension}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.ShowHidden = false
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		} else {
			dir = "."
		}
	}
	fp.CurrentDirectory = dir
	fp.Styles.Cursor = fp.Styles.Cursor.Foreground(colorHighlight)
	fp.Styles.Selected = fp.Styles.Selected.Foreground(colorHighlight).Bold(true)
	fp.Styles.DisabledFile = fp.Styles.DisabledFile.Foreground(colorSubtle)
	return fp
}

func (m Model) openPicker(kind payload.Kind) (tea.Model, tea.Cmd) {
	m.pickReq = m.ctrl.BeginPick(kind)
	m.pickKind = kind
	m.picker = newPicker(m.pickReq, m.startDir)
	m.picker.Height = pickerHeight(m.height)
	m.back = m.screen
	m.screen = pickerScreen
	m.message = ""
	return m, m.picker.Init()
}

// cancelPick reports a cancelled pick to the controller and returns to the
// screen the picker was opened from.
func (m Model) cancelPick() (tea.Model, tea.Cmd) {
	m.screen = m.back
	m.location.Blur()
	m.location.SetValue("")
	return m, m.importCmd(m.pickKind, "")
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return m.cancelPick()
	case "/":
		// Type a location instead, e.g. an sftp:// URL.
		m.screen = locationScreen
		m.location.SetValue("")
		return m, m.location.Focus()
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.screen = m.back
		return m, m.importCmd(m.pickKind, path)
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.message = i18n.T("check_wrong_type", m.pickReq.MIMEType, m.pickReq.Extension) + ": " + path
		m.isError = true
	}
	return m, cmd
}

func (m Model) updateLocation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.cancelPick()
	case "enter":
		loc := m.location.Value()
		m.location.Blur()
		m.location.SetValue("")
		m.screen = m.back
		return m, m.importCmd(m.pickKind, loc)
	}
	var cmd tea.Cmd
	m.location, cmd = m.location.Update(msg)
	return m, cmd
}
