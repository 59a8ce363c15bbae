package tui

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/spiritfield/clock"
	"github.com/nathoo/spiritfield/engine"
	"github.com/nathoo/spiritfield/engine/save"
	"github.com/nathoo/spiritfield/types"
)

const (
	tickInterval     = 100 * time.Millisecond
	autosaveInterval = 10.0 // seconds
	minLogHeight     = 3
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the farm UI.
type Model struct {
	engine *engine.Engine
	watch  *clock.Stopwatch

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated event log lines (unstyled, for re-wrapping)

	width     int
	height    int
	ready     bool
	trace     bool
	quitting  bool
	lastCmd   string
	savePath  string
	sinceSave float64
}

// tickMsg drives the simulation.
type tickMsg time.Time

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for ticks and intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// New creates a TUI model wired to the given engine. The state is saved to
// savePath periodically, after every change and on quit; an empty path
// disables saving.
func New(eng *engine.Engine, savePath string) Model {
	return newModel(eng, savePath, clock.RealClock{})
}

func newModel(eng *engine.Engine, savePath string, clk clock.Clock) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:   eng,
		watch:    clock.NewStopwatch(clk),
		input:    ti,
		history:  NewHistory(100),
		savePath: savePath,
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, savePath string) error {
	m := New(eng, savePath)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init starts the tick loop and prints the intro.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick(), m.initialOutput())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		return gameOutputMsg{lines: []string{
			"Welcome to Spirit Field.",
			"Click a field to plant fire grass or harvest it; type /help for commands.",
		}}
	}
}

// Update handles messages (ticks, clicks, key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.logHeight()
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tickMsg:
		m = m.advance()
		return m, tick()

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m.quit()

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// logHeight is what remains for the event log below the farm.
func (m Model) logHeight() int {
	h := m.height - headerHeight - gridHeight - 2 // 1 status bar + 1 input line
	if h < minLogHeight {
		h = minLogHeight
	}
	return h
}

// advance applies the wall time since the last tick and autosaves.
func (m Model) advance() Model {
	dt := m.watch.Lap()
	result := m.engine.Tick(dt)
	if len(result.Output) > 0 {
		m = m.appendOutput(gameOutputMsg{lines: m.withTrace(result)})
	}

	m.sinceSave += dt
	if len(result.Events) > 0 || m.sinceSave >= autosaveInterval {
		m = m.autosave()
	}
	return m
}

// handleMouse maps left clicks on the grid and the panel buttons to
// commands. The wheel scrolls the event log.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if tea.MouseEvent(msg).IsWheel() {
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		return m, vpCmd
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	if idx, ok := fieldAt(msg.X, msg.Y); ok {
		verb := "harvest"
		if m.engine.Fields()[idx].IsEmpty() {
			verb = "plant"
		}
		return m.runCommand(fmt.Sprintf("%s %d", verb, idx))
	}

	switch buttonAt(msg.X, msg.Y) {
	case refineButton:
		return m.runCommand("refine")
	case flameButton:
		return m.runCommand("flame")
	}
	return m, nil
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Handle "again" / "g".
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(gameOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else if !strings.HasPrefix(input, "/") {
		m.lastCmd = input
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			return m.quit()
		}
		return m, nil
	}

	return m.runCommand(input)
}

// runCommand sends one game command to the engine and saves if anything
// changed.
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	result := m.engine.Step(input)
	m = m.appendOutput(gameOutputMsg{input: input, lines: m.withTrace(result)})
	if len(result.Events) > 0 {
		m = m.autosave()
	}
	return m, nil
}

// quit saves and stops the program.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m = m.autosave()
	m.quitting = true
	return m, tea.Quit
}

// autosave writes the state to savePath. A failure is shown in the log and
// play continues.
func (m Model) autosave() Model {
	m.sinceSave = 0
	if m.savePath == "" {
		return m
	}
	if err := save.WriteFile(m.savePath, m.engine.State); err != nil {
		slog.Error("autosave failed", "path", m.savePath, "error", err)
		return m.appendOutput(gameOutputMsg{lines: []string{fmt.Sprintf("Autosave failed: %v", err)}, isSystem: true})
	}
	return m
}

func (m Model) withTrace(result types.Result) []string {
	if !m.trace {
		return result.Output
	}
	return append(result.Output, m.formatTrace(result)...)
}

// appendOutput adds lines to the event log and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full layout: header, farm, event log, status bar, input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.renderHeader() + "\n" +
		m.renderFarm() + "\n" +
		m.viewport.View() + "\n" +
		m.renderStatusBar() + "\n" +
		m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(path string) []string {
	if path == "" {
		path = m.savePath
	}
	if path == "" {
		return []string{"Save failed: no save file configured."}
	}
	if err := save.WriteFile(path, m.engine.State); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	m.sinceSave = 0
	return []string{fmt.Sprintf("Game saved to %s.", path)}
}

func (m *Model) cmdLoad(path string) []string {
	if path == "" {
		path = m.savePath
	}
	if path == "" {
		return []string{"Load failed: no save file configured."}
	}
	if _, err := os.Stat(path); err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	s, err := save.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	m.engine.State = s
	return []string{fmt.Sprintf("Game loaded from %s.", path)}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /save [file]  — Save game (default: the autosave file)",
		"  /load [file]  — Load game (default: the autosave file)",
		"  /quit         — Save and exit",
		"  /help         — Show this help",
		"  /state        — Debug: dump current state",
		"  /trace        — Toggle debug trace output",
		"",
		"Game commands:",
		"  plant <field> [crop]    — Sow fire grass (default) or wood grass in field 0-15",
		"  harvest <field> | all   — Collect ready crops",
		"  refine (r)              — Refine 2 fire grass into a pill",
		"  flame [low|mid|high]    — Set the flame, or cycle it",
		"  wait [seconds] (z)      — Skip ahead",
		"  look (l) / inventory (i)",
		"  again (g)               — Repeat your last command",
		"",
		"Mouse: click a field to plant or harvest, click [ Refine ] or [ Flame ].",
		"Navigation: PgUp/PgDn or wheel to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdState() []string {
	s := m.engine.State
	return []string{
		fmt.Sprintf("Flame: %s  Proficiency: %d  Success rate: %.2f", s.Flame, s.Proficiency, m.engine.SuccessRate()),
		fmt.Sprintf("Refining: %v (%.1fs left)  Pest timer: %.1fs", s.Refining, s.RefineRemaining, s.PestTimer),
		fmt.Sprintf("Inventory: %v", m.engine.Inventory()),
		fmt.Sprintf("RNG: seed %d, %d draws", m.engine.RNG.Seed(), m.engine.RNG.Position()),
	}
}

func (m *Model) formatTrace(result types.Result) []string {
	if len(result.Events) == 0 {
		return nil
	}
	lines := []string{fmt.Sprintf("[trace] Events: %d", len(result.Events))}
	for _, e := range result.Events {
		lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
