package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/spiritfield/engine/balance"
	"github.com/nathoo/spiritfield/engine/events"
	"github.com/nathoo/spiritfield/engine/field"
	"github.com/nathoo/spiritfield/types"
)

// Screen geometry. The header occupies row 0, the grid starts below it and
// the side panel sits to the right of the grid.
const (
	headerHeight    = 1
	cellInnerWidth  = 10
	cellInnerHeight = 2
	cellWidth       = cellInnerWidth + 2 // rounded border
	cellHeight      = cellInnerHeight + 2
	gridWidth       = balance.GridSize * cellWidth
	gridHeight      = balance.GridSize * cellHeight
	panelGap        = 2
	panelX          = gridWidth + panelGap
	panelWidth      = 22
	farmWidth       = panelX + panelWidth
)

// Panel rows holding the clickable buttons, relative to the grid top.
const (
	refineButtonRow = 10
	flameButtonRow  = 12
)

const (
	refineLabel = "[ Refine ]"
	flameLabel  = "[ Flame  ]"
)

// button identifies a clickable panel button.
type button int

const (
	noButton button = iota
	refineButton
	flameButton
)

// fieldAt maps a screen position to the field drawn there.
func fieldAt(x, y int) (int, bool) {
	y -= headerHeight
	if x < 0 || y < 0 || x >= gridWidth || y >= gridHeight {
		return 0, false
	}
	return (y/cellHeight)*balance.GridSize + x/cellWidth, true
}

// buttonAt maps a screen position to the panel button drawn there.
func buttonAt(x, y int) button {
	y -= headerHeight
	switch {
	case y == refineButtonRow && x >= panelX && x < panelX+len(refineLabel):
		return refineButton
	case y == flameButtonRow && x >= panelX && x < panelX+len(flameLabel):
		return flameButton
	}
	return noButton
}

// renderGrid draws the 4x4 field grid.
func renderGrid(fields []field.Field) string {
	rows := make([]string, 0, balance.GridSize)
	for r := 0; r < balance.GridSize; r++ {
		cells := make([]string, 0, balance.GridSize)
		for c := 0; c < balance.GridSize; c++ {
			i := r*balance.GridSize + c
			cells = append(cells, renderCell(i, &fields[i]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCell(idx int, f *field.Field) string {
	switch {
	case f.IsEmpty():
		return styleCellEmpty.Render(fmt.Sprintf("%2d", idx) + "\n" + "  ·  ·  ·")
	case f.IsReady():
		return styleCellReady.Render(fmt.Sprintf("%2d %s", idx, cropLabel(f.Crop())) + "\n" + "  READY")
	default:
		return styleCellGrowing.Render(fmt.Sprintf("%2d %s", idx, cropLabel(f.Crop())) + "\n" + progressBar(f.Progress(), cellInnerWidth))
	}
}

// cropLabel is the short name drawn inside a cell.
func cropLabel(it types.Item) string {
	name, _, _ := strings.Cut(string(it), "_")
	return name
}

// progressBar renders p in [0,1] as a bar of the given width.
func progressBar(p float64, width int) string {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	filled := int(p * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// panelLines builds the side panel text. Button rows must stay at
// refineButtonRow and flameButtonRow.
func (m Model) panelLines() []string {
	eng := m.engine
	inv := eng.Inventory()

	lines := make([]string, 0, gridHeight)
	lines = append(lines, stylePanelHead.Render("Inventory"))
	for _, it := range balance.Items {
		lines = append(lines, fmt.Sprintf("  %-12s%4d", events.ItemName(it), inv[it]))
	}
	lines = append(lines, "")

	furnace := "idle"
	if eng.Refining() {
		furnace = fmt.Sprintf("%.1fs", eng.RefineRemaining())
	}
	lines = append(lines,
		fmt.Sprintf("Flame       %s", eng.Flame()),
		fmt.Sprintf("Proficiency %d", eng.Proficiency()),
		fmt.Sprintf("Success     %.0f%%", eng.SuccessRate()*100),
		fmt.Sprintf("Furnace     %s", furnace),
		"",
	)

	refine := styleButton.Render(refineLabel)
	if eng.Refining() || inv[types.FireGrass] < eng.Balance.RefineCost {
		refine = styleButtonOff.Render(refineLabel)
	}
	lines = append(lines, refine, "", styleButton.Render(flameLabel), "")
	lines = append(lines, styleSystem.Render("click a field to"), styleSystem.Render("plant or harvest"))
	return lines
}

// renderFarm draws the grid with the side panel to its right.
func (m Model) renderFarm() string {
	panel := lipgloss.NewStyle().
		MarginLeft(panelGap).
		Width(panelWidth).
		Render(strings.Join(m.panelLines(), "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, renderGrid(m.engine.Fields()), panel)
}
