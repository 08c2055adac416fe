// Idlerpg is an incremental skilling RPG that keeps progressing while
// you're away.
// Usage: idlerpg [--version] [--plain] [--script <file>] [--config <file>] [<content_directory>]
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/nathoo/idlecore/cli"
	"github.com/nathoo/idlecore/config"
	"github.com/nathoo/idlecore/engine"
	"github.com/nathoo/idlecore/loader"
	"github.com/nathoo/idlecore/storage"
	"github.com/nathoo/idlecore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	var contentDir string
	var scriptFile string
	var configFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("idlerpg %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		case "--config":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--config requires a file path\n")
				os.Exit(1)
			}
			i++
			configFile = args[i]
		default:
			if contentDir == "" {
				contentDir = args[i]
			}
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if contentDir == "" {
		contentDir = cfg.ContentDir
	}

	cat, err := loader.Load(contentDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading content: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewFileStore(cfg.SaveDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening save directory: %v\n", err)
		os.Exit(1)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	eng := engine.New(cat, store, seed)
	result, err := eng.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not restore save: %v\n", err)
	}
	for _, issue := range result.Report.Warnings {
		fmt.Fprintf(os.Stderr, "save repair: %s: %s\n", issue.Field, issue.Message)
	}
	if result.Found && result.Report.Valid && !result.Report.ChecksumOK {
		fmt.Fprintln(os.Stderr, "Warning: save checksum mismatch; the file may have been edited.")
	}

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(eng)
		c.In = f
		c.EchoInput = true
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		c := cli.New(eng)
		c.Run()
		return
	}

	tick := time.Duration(cfg.TickIntervalMs) * time.Millisecond
	autosave := time.Duration(cfg.AutosaveIntervalMs) * time.Millisecond
	if err := tui.Run(eng, tick, autosave, result.Gains); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
