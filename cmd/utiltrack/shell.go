package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/c-bata/go-prompt"
	"golang.org/x/term"
)

var shellSuggestions = []prompt.Suggest{
	{Text: "system", Description: "recent system samples"},
	{Text: "disk", Description: "disk usage from the latest tick"},
	{Text: "temp", Description: "recent temperature samples"},
	{Text: "gpu", Description: "recent GPU samples"},
	{Text: "summary", Description: "CPU/memory statistics over a window"},
	{Text: "status", Description: "database row counts and time bounds"},
	{Text: "export", Description: "parquet snapshot"},
	{Text: "help", Description: "show command help"},
	{Text: "exit", Description: "leave the shell"},
}

// execLine runs one shell line and reports whether the shell should quit.
// Errors are printed, not returned; a bad command never ends the session.
func (c *cli) execLine(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	if fields[0] == "exit" || fields[0] == "quit" {
		return true
	}
	if err := c.dispatch(ctx, fields[0], fields[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return false
}

// cmdShell runs the interactive prompt. Each line is dispatched through
// the same command table as the one-shot CLI. The prompt loop ends through
// its exit checker so main's deferred closers still run.
func (c *cli) cmdShell(ctx context.Context) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("shell requires a terminal")
	}

	var quit bool

	executor := func(line string) {
		if c.execLine(ctx, line) {
			quit = true
		}
	}

	completer := func(d prompt.Document) []prompt.Suggest {
		if strings.Contains(d.TextBeforeCursor(), " ") {
			return nil
		}
		return prompt.FilterHasPrefix(shellSuggestions, d.GetWordBeforeCursor(), true)
	}

	p := prompt.New(executor, completer,
		prompt.OptionPrefix("utiltrack> "),
		prompt.OptionTitle("utiltrack"),
		prompt.OptionSetExitCheckerOnInput(func(string, bool) bool {
			return quit
		}),
	)
	p.Run()
	return nil
}
