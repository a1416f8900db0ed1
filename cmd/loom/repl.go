package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/loomlang/loom/loomvm"
	"github.com/mattn/go-isatty"
)

// runREPL steps bootstrap one instruction at a time under a
// readline-backed prompt, printing the VM's stack/scope/call depths
// after every step. It is a local step/inspect debugger rather than a
// remote debugger protocol — there is no source language to evaluate
// expressions in, so every command here drives the already-loaded
// bootstrap: "n" steps one instruction, "c" continues to completion,
// "s" prints the current stack depths, and any bare Enter repeats the
// last command.
//
// -repl only makes sense against an interactive terminal; piped stdin or
// stdout (a CI log, a redirected file) has no one to type "n" at the
// prompt, so runREPL falls back to running the bootstrap straight
// through instead of hanging on a Readline call that will never see a
// line worth reading.
func runREPL(vm *loomvm.VM, bootstrap loomvm.Bootstrap) {
	if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
		runNonInteractive(vm, bootstrap)
		return
	}

	var historyFile string
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".loom_history")
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "(loom) ",
		HistoryFile: historyFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	defer rl.Close()

	stepper := newStepper(vm, bootstrap)
	lastCmd := "n"

	for {
		line, err := rl.Readline()
		if err != nil { // Ctrl-C or Ctrl-D
			break
		}
		cmd := line
		if cmd == "" {
			cmd = lastCmd
		} else {
			lastCmd = cmd
		}

		switch cmd {
		case "n":
			done, err := stepper.step()
			printStepResult(vm, done, err)
			if done {
				return
			}
		case "c":
			for {
				done, err := stepper.step()
				if err != nil {
					printStepResult(vm, done, err)
					return
				}
				if done {
					fmt.Println("done")
					return
				}
			}
		case "s":
			printStatus(vm)
		case "q":
			return
		default:
			fmt.Printf("unknown command %q (n=step, c=continue, s=status, q=quit)\n", cmd)
		}
	}
}

// runNonInteractive drives the stepper to completion without a prompt,
// for -repl invocations whose stdin/stdout aren't a terminal.
func runNonInteractive(vm *loomvm.VM, bootstrap loomvm.Bootstrap) {
	stepper := newStepper(vm, bootstrap)
	for {
		done, err := stepper.step()
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		if done {
			fmt.Println("done")
			return
		}
	}
}

func printStepResult(vm *loomvm.VM, done bool, err error) {
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if done {
		fmt.Println("done")
		return
	}
	printStatus(vm)
}

func printStatus(vm *loomvm.VM) {
	fmt.Printf("stack=%d scopes=%d calls=%d\n", vm.StackSize(), vm.ScopeDepth(), vm.CallDepth())
}

// stepper drives a VM one instruction at a time via VM.Step, which
// dispatches a single instruction against whatever LoadBootstrap most
// recently installed as the current frame's program. A plain Run call can't be
// single-stepped from the outside — it resets the instruction pointer to
// the bootstrap's start every time it's called — so the REPL primes the
// VM once here and then calls Step directly.
type stepper struct {
	vm *loomvm.VM
}

func newStepper(vm *loomvm.VM, bootstrap loomvm.Bootstrap) *stepper {
	vm.LoadBootstrap(bootstrap)
	return &stepper{vm: vm}
}

func (s *stepper) step() (done bool, err error) {
	return s.vm.Step()
}
