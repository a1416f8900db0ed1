package loomvm_test

import (
	"testing"

	"github.com/loomlang/loom/asm"
	"github.com/loomlang/loom/loomvm"
)

// Assign/CleanStack always leave the operand stack, scope stack, and
// call stack exactly as balanced as they were before the sequence
// began, once bracketed by AddGlobalTable/DelGlobalTable.
func TestInvariantAssignCleanStackBalance(t *testing.T) {
	bs := asm.New().
		AddGlobalTable().
		PushNumber(7).Counter(1).GetLocalTable().PushName("x").Assign().CleanStack().
		DelGlobalTable().
		Bootstrap()

	vm := loomvm.NewVM(loomvm.NewPool())
	if err := vm.Run(bs); err != nil {
		t.Fatal(err)
	}
	if vm.StackSize() != 0 || vm.ScopeDepth() != 0 || vm.CallDepth() != 0 {
		t.Fatalf("unbalanced after run: stack=%d scope=%d call=%d", vm.StackSize(), vm.ScopeDepth(), vm.CallDepth())
	}
}

// ResetCounter is idempotent: once a run has been forced down to one
// value, applying it again changes nothing, and the surviving value is
// always the first one produced.
func TestInvariantResetCounterIdempotent(t *testing.T) {
	bs := asm.New().
		AddGlobalTable().
		PushNumber(10).PushNumber(20).PushNumber(30).Counter(3).
		ResetCounter().
		ResetCounter().
		GetLocalTable().PushName("r").Assign().CleanStack().
		DelGlobalTable().
		Bootstrap()

	vm := loomvm.NewVM(loomvm.NewPool())
	if err := vm.Run(bs); err != nil {
		t.Fatal(err)
	}
	r := vm.Globals().GetValue(loomvm.StringValue("r"))
	if r.Number() != 10 {
		t.Fatalf("got %s, want the first value of the original run", r.GoString())
	}
	if vm.StackSize() != 0 {
		t.Fatalf("unbalanced stack: %d", vm.StackSize())
	}
}

// MergeCounter is associative: (A∘B)∘C and A∘(B∘C) produce the same
// combined run, in the same left-to-right order.
func TestInvariantMergeCounterAssociativity(t *testing.T) {
	leftAssoc := asm.New().
		AddGlobalTable().AddLocalTable().
		PushNumber(1).PushNumber(2).Counter(2).
		PushNumber(3).Counter(1).
		MergeCounter(). // (A∘B)
		PushNumber(4).PushNumber(5).Counter(2).
		MergeCounter(). // ((A∘B)∘C)
		GenerateArgTable().
		GetTable("arg").PushName("arg").GetTableValue(0).
		GetTable("argball").PushName("argball").Assign().CleanStack().
		DelLocalTable().DelGlobalTable().
		Bootstrap()

	rightAssoc := asm.New().
		AddGlobalTable().AddLocalTable().
		PushNumber(1).PushNumber(2).Counter(2).
		PushNumber(3).Counter(1).
		PushNumber(4).PushNumber(5).Counter(2).
		MergeCounter(). // (B∘C)
		MergeCounter(). // (A∘(B∘C))
		GenerateArgTable().
		GetTable("arg").PushName("arg").GetTableValue(0).
		GetTable("argball").PushName("argball").Assign().CleanStack().
		DelLocalTable().DelGlobalTable().
		Bootstrap()

	for _, bs := range []loomvm.Bootstrap{leftAssoc, rightAssoc} {
		vm := loomvm.NewVM(loomvm.NewPool())
		if err := vm.Run(bs); err != nil {
			t.Fatal(err)
		}
		argball := vm.Globals().GetValue(loomvm.StringValue("argball")).Table()
		if argball.Len() != 5 {
			t.Fatalf("got %d elements, want 5", argball.Len())
		}
		first := argball.GetValue(loomvm.NumberValue(1))
		last := argball.GetValue(loomvm.NumberValue(5))
		if first.Number() != 1 || last.Number() != 5 {
			t.Fatalf("got first=%s last=%s, want 1 and 5", first.GoString(), last.GoString())
		}
	}
}

// The call stack and scope stack return to their pre-call depth once a
// call fully returns, regardless of how many local scopes the callee
// opened and closed along the way.
func TestInvariantCallRetSymmetry(t *testing.T) {
	body := asm.NewFunction("f").
		AddLocalTable().
		AddLocalTable().
		DelLocalTable().
		DelLocalTable().
		Ret().
		Build()

	bs := asm.New().
		AddGlobalTable().
		GenerateClosure(body).
		Counter(0).
		Call().
		Bootstrap()

	vm := loomvm.NewVM(loomvm.NewPool())
	scopeBefore, callBefore := vm.ScopeDepth(), vm.CallDepth()
	if err := vm.Run(bs); err != nil {
		t.Fatal(err)
	}
	if vm.ScopeDepth() != scopeBefore+1 || vm.CallDepth() != callBefore+1 {
		// +1 each: AddGlobalTable's own bottom sentinel is still open —
		// this bootstrap never reaches DelGlobalTable, only the inner
		// Call/Ret round trip is under test here.
		t.Fatalf("scope=%d call=%d, want %d and %d", vm.ScopeDepth(), vm.CallDepth(), scopeBefore+1, callBefore+1)
	}
}
