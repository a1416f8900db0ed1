package main

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/loomlang/loom/cmds"
	"github.com/loomlang/loom/configs"
	"github.com/loomlang/loom/logs"
	"github.com/loomlang/loom/vars"
)

//go:embed schema.cue
var schemaSrc string

// ConfigsLoader searches the working directory, the user config dir, and
// /etc, in that order, for a loom.cue or .loom.cue file, and returns a
// Loader over whichever of those exist.
func (Module) ConfigsLoader(
	logger logs.Logger,
) configs.Loader {
	var paths []string
	defer func() {
		if len(paths) > 0 {
			logger.Info("config file", "paths", paths)
		}
	}()

	filenames := []string{"loom.cue", ".loom.cue"}

	if workingDir, err := os.Getwd(); err == nil {
		for _, filename := range filenames {
			path := filepath.Join(workingDir, filename)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		for _, filename := range filenames {
			path := filepath.Join(configDir, filename)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}

	for _, filename := range filenames {
		path := filepath.Join("/etc", filename)
		if _, err := os.Stat(path); err == nil {
			paths = append(paths, path)
		}
	}

	return configs.NewLoader(paths, schemaSrc)
}

// MaxStackSize is the operand stack's slot cap, resolved from the
// -max-stack-size flag (highest precedence) and the max_stack_size
// config key. Zero means unlimited.
type MaxStackSize int

var maxStackSizeFlag = cmds.Var[int]("-max-stack-size")

func (Module) MaxStackSize(loader configs.Loader) MaxStackSize {
	n := vars.FirstNonZero(
		*maxStackSizeFlag,
		configs.First[int](loader, "max_stack_size"),
	)
	return MaxStackSize(n)
}

// MaxCallDepth is the call stack's depth cap, resolved the same way as
// MaxStackSize.
type MaxCallDepth int

var maxCallDepthFlag = cmds.Var[int]("-max-call-depth")

func (Module) MaxCallDepth(loader configs.Loader) MaxCallDepth {
	n := vars.FirstNonZero(
		*maxCallDepthFlag,
		configs.First[int](loader, "max_call_depth"),
	)
	return MaxCallDepth(n)
}
