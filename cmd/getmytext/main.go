package main

import (
	"os"
	"strings"

	"getmytext-cli/internal/cli"
	"getmytext-cli/internal/model"
)

func rewriteDirectEditArgs(argv []string, subcommands map[string]bool) []string {
	// Convenience: `getmytext <id>` works like `getmytext edit <id>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so argv is
	// rewritten before parsing. Persistent flags may come first, so look for
	// the first positional token rather than argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--config":    true,
		"--server":    true,
		"--log-level": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	isDirect := func(a string) bool {
		return !subcommands[a] && model.IsDocID(a)
	}
	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "edit")
		out = append(out, argv[i:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			// Cobra stops resolving subcommands at "--", so edit goes before it.
			if i+1 < len(argv) && isDirect(strings.TrimSpace(argv[i+1])) {
				return rewrite(i)
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}

		// First positional token.
		if isDirect(a) {
			return rewrite(i)
		}
		return argv
	}

	return argv
}

func main() {
	cmd := cli.NewRootCmd()

	subcommands := map[string]bool{"help": true, "completion": true}
	for _, c := range cmd.Commands() {
		subcommands[c.Name()] = true
		for _, alias := range c.Aliases {
			subcommands[alias] = true
		}
	}
	cmd.SetArgs(rewriteDirectEditArgs(os.Args, subcommands)[1:])

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
