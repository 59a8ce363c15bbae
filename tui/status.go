package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/spiritfield/engine/state"
)

// renderHeader produces the title row above the grid.
func (m Model) renderHeader() string {
	return styleHeader.Render(" Spirit Field ") + styleSystem.Render("  4x4 farm · furnace · pests")
}

// renderStatusBar produces a full-width inverted status line showing
// crop counts, flame, proficiency and the furnace timer.
func (m Model) renderStatusBar() string {
	s := m.engine.State

	growing := len(state.GrowingFields(s))
	ready := len(state.ReadyFields(s))

	left := fmt.Sprintf(" Growing: %d | Ready: %d | Flame: %s", growing, ready, s.Flame)
	right := fmt.Sprintf("Prof: %d ", s.Proficiency)
	if s.Refining {
		candidate := fmt.Sprintf("Refining %.1fs | Prof: %d ", s.RefineRemaining, s.Proficiency)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("R%.0fs | Prof: %d ", s.RefineRemaining, s.Proficiency)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
