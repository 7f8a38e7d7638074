// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/derpfest/customizations/internal/i18n"
	"github.com/derpfest/customizations/internal/prefs"
)

// View renders the active screen, the status line and the footer.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(mainTitleStyle.Render(i18n.T("tui_title")))
	b.WriteString("\n")

	switch m.screen {
	case menuScreen:
		b.WriteString(m.viewMenu())
	case pickerScreen:
		b.WriteString(titleStyle.Render(m.pickReq.Title))
		b.WriteString("\n")
		b.WriteString(paneStyle.Render(m.picker.View()))
	case locationScreen:
		b.WriteString(titleStyle.Render(m.pickReq.Title))
		b.WriteString("\n")
		b.WriteString(paneStyle.Render(m.location.View()))
	default:
		b.WriteString(titleStyle.Render(i18n.T(m.screen.titleID())))
		b.WriteString("\n")
		b.WriteString(paneStyle.Render(m.viewRows()))
	}

	b.WriteString("\n")
	if m.message != "" {
		if m.isError {
			b.WriteString(errorStyle.Render(m.message))
		} else {
			b.WriteString(statusMessageStyle.Render(m.message))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.footer())
	return docStyle.Render(b.String())
}

func (m Model) viewMenu() string {
	lines := make([]string, 0, len(menuScreens))
	for i, s := range menuScreens {
		title := i18n.T(s.titleID())
		if i == m.cursor {
			lines = append(lines, selectedItemStyle.Render("▸ "+title))
		} else {
			lines = append(lines, itemStyle.Render("  "+title))
		}
	}
	return paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) viewRows() string {
	rows := m.rows()
	lines := make([]string, 0, len(rows)*2)
	for i, r := range rows {
		title, summary := m.rowText(r)
		style := itemStyle
		prefix := "  "
		if i == m.cursor && r.selectable() {
			style = selectedItemStyle
			prefix = "▸ "
		}
		if r.kind == rowDelete && !m.deleteEnabled(r.payload) {
			style = inactiveItemStyle
		}
		if r.kind == rowInfo {
			style = specialStyle
		}
		lines = append(lines, style.Render(prefix+title))
		if summary != "" {
			lines = append(lines, summaryStyle.Render(summary))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// rowText returns the title and the summary line of r.
func (m Model) rowText(r row) (string, string) {
	switch r.kind {
	case rowLoad:
		return i18n.T(r.payload.MessagePrefix() + "_title"), m.data.summaries[r.payload].Text
	case rowDelete:
		return i18n.T(r.payload.MessagePrefix() + "_delete"), ""
	case rowToggle:
		on := m.data.toggles[r.toggle.Name]
		label := switchLabel(on)
		if on {
			label = successStyle.Render(label)
		}
		return i18n.T(r.toggle.TitleID) + "  [" + label + "]", ""
	case rowCycle:
		return i18n.T("qs_data_usage_cycle_type_title") + "  [" + prefs.CycleLabel(m.data.cycle) + "]", ""
	case rowInfo:
		return i18n.T("qs_show_data_usage_title"), m.data.cycleSummary
	}
	return "", ""
}
