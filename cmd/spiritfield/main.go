// Spirit Field is a small farming and alchemy game: a 4x4 field grid grows
// fire grass that is refined into pills.
// Usage: spiritfield [--version] [--plain] [--script <file>] [--save <path>] [--balance <file>] [--seed <n>]
package main

import (
	"fmt"
	"os"

	"github.com/nathoo/spiritfield/cli"
	"github.com/nathoo/spiritfield/config"
	"github.com/nathoo/spiritfield/engine"
	"github.com/nathoo/spiritfield/engine/balance"
	"github.com/nathoo/spiritfield/engine/save"
	"github.com/nathoo/spiritfield/loader"
	"github.com/nathoo/spiritfield/logger"
	"github.com/nathoo/spiritfield/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: spiritfield [--version] [--plain] [--script <file>] [--save <path>] [--balance <file>] [--seed <n>]"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	plain := false
	var scriptFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("spiritfield %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--script":
			scriptFile = flagValue(args, &i)
		case "--save":
			cfg.SaveFile = flagValue(args, &i)
		case "--balance":
			cfg.BalanceFile = flagValue(args, &i)
		case "--seed":
			seed, err := config.ParseSeed(flagValue(args, &i))
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid --seed value: %v\n", err)
				os.Exit(1)
			}
			cfg.Seed = seed
		default:
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(1)
		}
	}

	// Script mode: open file, force plain, echo commands.
	var script *os.File
	if scriptFile != "" {
		script, err = os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer script.Close()
		plain = true
	}
	plain = plain || !isTerminal()

	// The full-screen UI owns the terminal, so it always logs to a file.
	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	logCfg.File = cfg.LogFile
	logCfg.Version = version
	if !plain && logCfg.File == "" {
		logCfg.File = config.DefaultLogFile()
	}
	closer := logger.Init(logCfg)
	defer closer.Close()

	var b *balance.Balance
	if cfg.BalanceFile != "" {
		b, err = loader.Load(cfg.BalanceFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading balance: %v\n", err)
			os.Exit(1)
		}
	}

	s, err := save.ReadFile(cfg.SaveFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; starting a new farm.\n", err)
	}

	eng := engine.New(b, s, cfg.Seed)

	if plain {
		c := cli.New(eng, cfg.SaveFile)
		if script != nil {
			c.In = script
			c.EchoInput = true
		}
		c.Run()
		return
	}

	if err := tui.Run(eng, cfg.SaveFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flagValue returns the argument following args[*i] and advances i past it.
func flagValue(args []string, i *int) string {
	if *i+1 >= len(args) {
		fmt.Fprintf(os.Stderr, "%s requires a value\n", args[*i])
		os.Exit(1)
	}
	*i++
	return args[*i]
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
