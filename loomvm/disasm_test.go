package loomvm_test

import (
	"strings"
	"testing"

	"github.com/loomlang/loom/asm"
	"github.com/loomlang/loom/loomvm"
)

func TestDisassembleRendersNestedFunctionBody(t *testing.T) {
	body := asm.NewFunction("greet").
		NumParams(1).
		Upvalue("greeting").
		GetTable("greeting").PushName("greeting").GetTableValue(0).
		Ret().
		Build()

	bs := asm.New().
		AddGlobalTable().
		GenerateClosure(body).
		GetTable("greet").PushName("greet").Assign().CleanStack().
		DelGlobalTable().
		Bootstrap()

	out := loomvm.Disassemble(bs)

	for _, want := range []string{
		"AddGlobalTable",
		"GenerateClosure",
		`fn=greet`,
		`function "greet" (params=1, upvalues=[greeting])`,
		"Ret",
		"DelGlobalTable",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("disassembly missing %q in:\n%s", want, out)
		}
	}

	// The nested body's own instructions must be indented past the
	// top-level GenerateClosure line that introduces them.
	lines := strings.Split(out, "\n")
	var genLineIndent, retLineIndent string
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		indent := line[:len(line)-len(trimmed)]
		if strings.Contains(line, "GenerateClosure") {
			genLineIndent = indent
		}
		if strings.Contains(line, "Ret") {
			retLineIndent = indent
		}
	}
	if len(retLineIndent) <= len(genLineIndent) {
		t.Fatalf("expected Ret (nested) more indented than GenerateClosure (top-level): %q vs %q", retLineIndent, genLineIndent)
	}
}

func TestDisassembleEmptyBootstrap(t *testing.T) {
	if got := loomvm.Disassemble(loomvm.Bootstrap{}); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}
