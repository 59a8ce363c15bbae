// Package cli provides line-oriented terminal I/O, output formatting, and
// meta-command dispatch for plain and scripted play.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nathoo/spiritfield/clock"
	"github.com/nathoo/spiritfield/engine"
	"github.com/nathoo/spiritfield/engine/save"
	"github.com/nathoo/spiritfield/types"
)

// CLI handles terminal interaction with the player. The farm keeps growing
// in real time between commands; the elapsed time is applied before each
// command runs.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	SavePath  string      // written after every command; empty disables saving
	Clock     clock.Clock // nil means the system clock
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, savePath string) *CLI {
	return &CLI{
		Engine:   eng,
		In:       os.Stdin,
		Out:      os.Stdout,
		SavePath: savePath,
	}
}

// Run starts the game loop. It shows the intro and the farm, then loops:
// prompt → input → catch up on elapsed time → dispatch → output → save.
func (c *CLI) Run() {
	c.printLine("Spirit Field. Grow fire grass, refine pills. Type /help for commands.")
	c.printLine("")
	c.printResult(c.Engine.Step("look"))

	clk := c.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	watch := clock.NewStopwatch(clk)

	defer c.autosave()

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Whatever happened while the player was typing.
		c.printResult(c.Engine.Tick(watch.Lap()))

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		// "again" / "g" repeats the last game command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Engine.Step(input)
		c.printResult(result)

		if c.Trace {
			c.printTrace(result)
		}
		c.autosave()
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(path string) {
	if path == "" {
		path = c.SavePath
	}
	if path == "" {
		c.printSystem("Save failed: no save file configured.")
		return
	}
	if err := save.WriteFile(path, c.Engine.State); err != nil {
		slog.Error("save failed", "path", path, "error", err)
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", path))
}

func (c *CLI) cmdLoad(path string) {
	if path == "" {
		path = c.SavePath
	}
	if _, err := os.Stat(path); err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	s, err := save.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	c.Engine.State = s
	c.printSystem(fmt.Sprintf("Game loaded from %s.", path))

	// Show the farm after loading.
	c.printResult(c.Engine.Step("look"))
}

// autosave writes the state to SavePath. Failures are reported and play
// continues.
func (c *CLI) autosave() {
	if c.SavePath == "" {
		return
	}
	if err := save.WriteFile(c.SavePath, c.Engine.State); err != nil {
		slog.Error("autosave failed", "path", c.SavePath, "error", err)
		c.printSystem(fmt.Sprintf("Autosave failed: %v", err))
	}
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [file]  — Save game (default: the autosave file)",
		"  /load [file]  — Load game (default: the autosave file)",
		"  /quit         — Exit game",
		"  /help         — Show this help",
		"  /state        — Debug: dump current state",
		"  /trace        — Toggle debug trace output",
		"",
		"Game commands:",
		"  look (l)                — Show the farm, inventory and furnace",
		"  plant <field> [crop]    — Sow fire grass (default) or wood grass in field 0-15",
		"  harvest <field> | all   — Collect ready crops",
		"  refine (r)              — Refine 2 fire grass into a pill",
		"  flame [low|mid|high]    — Set the flame, or cycle it",
		"  wait [seconds] (z)      — Let time pass",
		"  inventory (i)           — Check your stores",
		"  again (g)               — Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	s := c.Engine.State
	c.printSystem(fmt.Sprintf("Flame: %s  Proficiency: %d  Success rate: %.2f",
		s.Flame, s.Proficiency, c.Engine.SuccessRate()))
	c.printSystem(fmt.Sprintf("Refining: %v (%.1fs left)  Pest timer: %.1fs",
		s.Refining, s.RefineRemaining, s.PestTimer))
	c.printSystem(fmt.Sprintf("Inventory: %v", c.Engine.Inventory()))
	c.printSystem(fmt.Sprintf("RNG: seed %d, %d draws", c.Engine.RNG.Seed(), c.Engine.RNG.Position()))
}

func (c *CLI) printTrace(result types.Result) {
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
