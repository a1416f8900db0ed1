package cmds

import (
	"fmt"
	"os"
	"sort"
)

// GlobalExecutor is the process-wide command registry. Packages that want
// a CLI flag of their own (logs' -log-debug, configs' future additions)
// call Define at init time instead of threading an *Executor through
// every constructor.
var GlobalExecutor = NewExecutor()

// Define registers command on the global executor.
func Define(name string, command *Command) {
	GlobalExecutor.Define(name, command)
}

// Execute runs args against the global executor, exiting the process on
// error. Every cmd/* entry point calls this first, before touching any
// flag value Var/Switch/Collect registered at init time.
func Execute(args []string) {
	GlobalExecutor.MustExecute(args)
}

// PrintUsage lists every top-level command and its subcommands, one per
// line, skipping aliases of a command already printed under its primary
// name.
func (p *Executor) PrintUsage() {
	p.printUsage(os.Stdout, "", p.commands)
}

func (p *Executor) printUsage(w *os.File, indent string, commands map[string]*Command) {
	printed := make(map[*Command]bool)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		command := commands[name]
		if printed[command] {
			continue
		}
		printed[command] = true

		line := indent + name
		if command.Description != "" {
			line += "\t" + command.Description
		}
		fmt.Fprintln(w, line)

		if len(command.Subs) > 0 {
			p.printUsage(w, indent+"  ", command.Subs)
		}
	}
}
