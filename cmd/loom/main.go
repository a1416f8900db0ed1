package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/loomlang/loom/asm"
	"github.com/loomlang/loom/cmds"
	"github.com/loomlang/loom/logs"
	"github.com/loomlang/loom/loomvm"
	"github.com/reusee/dscope"
)

var disasmFlag = cmds.Switch("-disasm")
var traceFlag = cmds.Switch("-trace")
var replFlag = cmds.Switch("-repl")

func main() {
	cmds.Execute(os.Args[1:])

	scope := dscope.New(new(Module))

	scope.Call(func(
		logger logs.Logger,
		maxStackSize MaxStackSize,
		maxCallDepth MaxCallDepth,
	) {
		bootstrap, err := loadProgram(logger, os.Args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if *disasmFlag {
			fmt.Print(loomvm.Disassemble(bootstrap))
			return
		}

		var opts []loomvm.VMOption
		if int(maxStackSize) != 0 {
			opts = append(opts, loomvm.WithMaxStackSize(int(maxStackSize)))
		}
		if int(maxCallDepth) != 0 {
			opts = append(opts, loomvm.WithMaxCallDepth(int(maxCallDepth)))
		}
		vm := loomvm.NewVM(loomvm.NewPool(), opts...)

		if *replFlag {
			runREPL(vm, bootstrap)
			return
		}

		if err := vm.Run(bootstrap); err != nil {
			logger.Error("run failed", "error", err)
			if *traceFlag {
				if runtimeErr, ok := err.(*loomvm.RuntimeError); ok {
					for _, entry := range runtimeErr.Trace {
						fmt.Fprintf(os.Stderr, "\tat %s:%d\n", entry.FunctionName, entry.InstructionOffset)
					}
				}
			}
			os.Exit(1)
		}
	})
}

// loadProgram reads a CBOR-encoded Bootstrap from the path given as the
// first non-flag argument, or falls back to demoProgram when none is
// given — this repository has no parser/compiler, so there is no source
// file to open by default.
func loadProgram(logger logs.Logger, args []string) (loomvm.Bootstrap, error) {
	for _, arg := range args[1:] {
		if len(arg) == 0 || arg[0] == '-' {
			continue
		}
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", arg, err)
		}
		logger.Info("loaded program", "path", arg, "size", humanize.Bytes(uint64(len(data))))
		bootstrap, err := loomvm.DecodeBootstrap(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", arg, err)
		}
		return bootstrap, nil
	}
	return demoProgram(), nil
}

// demoProgram is the bootstrap cmd/loom runs when given no file argument:
// it defines greet(name), a closure that returns its sole argument
// unchanged, assigns it into the global table, then calls
// greet("World") and assigns the result to a global "greeting". It
// exists to give -disasm and the REPL something with a closure, an arg
// table, and a call to show, without needing an assembled-program file
// on disk.
func demoProgram() loomvm.Bootstrap {
	greet := asm.NewFunction("greet").
		NumParams(1).
		AddLocalTable().
		GenerateArgTable().
		GetTable("arg").PushName("arg").GetTableValue(0).
		PushNumber(1).GetTableValue(0).
		DelLocalTable().
		Ret().
		Build()

	return asm.New().
		AddGlobalTable().
		GenerateClosure(greet).
		GetTable("greet").PushName("greet").
		Assign().
		CleanStack().
		GetTable("greet").PushName("greet").GetTableValue(0).
		PushString("World").Counter(1).
		Call().
		GetTable("greeting").PushName("greeting").Assign().CleanStack().
		CleanStack().
		CleanStack().
		DelGlobalTable().
		Bootstrap()
}
