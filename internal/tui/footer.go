// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// AlignFooter returns a single line with left at the start and right
// right-aligned within width columns. If width is too small a single space
// separates the tokens. Widths are measured in terminal cells, so styled
// tokens align correctly.
func AlignFooter(left, right string, width int) string {
	spaces := width - lipgloss.Width(left) - lipgloss.Width(right)
	if spaces < 1 {
		spaces = 1
	}
	return left + strings.Repeat(" ", spaces) + right
}

func (m Model) footer() string {
	help := helpText(m.screen)
	right := ""
	if m.policy != "" {
		right = string(m.policy)
	}
	return footerStyle.Render(AlignFooter(help, right, m.width-4))
}
