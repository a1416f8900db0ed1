package loomvm_test

import (
	"testing"

	"github.com/loomlang/loom/asm"
	"github.com/loomlang/loom/loomvm"
)

// Capturing a name with no existing owner at the global frame creates a
// fresh global bound to Nil, rather than erroring.
func TestUpvalueUndeclaredNameBecomesNilGlobal(t *testing.T) {
	fn := asm.NewFunction("f").Upvalue("undefined").Build()

	bs := asm.New().
		AddGlobalTable().
		GenerateClosure(fn).CleanStack().
		DelGlobalTable().
		Bootstrap()

	vm := loomvm.NewVM(loomvm.NewPool())
	if err := vm.Run(bs); err != nil {
		t.Fatal(err)
	}

	undefined := vm.Globals().GetValue(loomvm.StringValue("undefined"))
	if !undefined.IsNil() {
		t.Fatalf("got %s, want Nil", undefined.GoString())
	}
}

// A closure created inside another closure's own call, capturing a name
// that is itself one of the outer closure's upvalues, resolves through
// the outer closure's upvalue table rather than the outer call's (empty)
// local tables.
func TestUpvalueNestedClosureCapturesThroughEnclosingUpvalues(t *testing.T) {
	inner := asm.NewFunction("inner").Upvalue("x").Build()
	outer := asm.NewFunction("outer").Upvalue("x").
		GenerateClosure(inner).
		GetTable("innerFn").PushName("innerFn").Assign().CleanStack().
		Ret().
		Build()

	bs := asm.New().
		AddGlobalTable().
		AddLocalTable().
		PushNumber(5).Counter(1).GetLocalTable().PushName("x").Assign().CleanStack().
		GenerateClosure(outer).
		GetTable("outerG").PushName("outerG").Assign().CleanStack().
		GetTable("outerG").PushName("outerG").GetTableValue(0).
		Counter(0).
		Call().
		CleanStack().CleanStack().
		DelLocalTable().
		DelGlobalTable().
		Bootstrap()

	vm := loomvm.NewVM(loomvm.NewPool())
	if err := vm.Run(bs); err != nil {
		t.Fatal(err)
	}

	outerFn := vm.Globals().GetValue(loomvm.StringValue("outerG"))
	outerUpvalues := outerFn.Closure().Upvalues
	if x := outerUpvalues.GetValue(loomvm.StringValue("x")); x.Number() != 5 {
		t.Fatalf("outer's own capture of x: got %s, want 5", x.GoString())
	}

	innerFn := outerUpvalues.GetValue(loomvm.StringValue("innerFn"))
	if innerFn.Kind() != loomvm.KindClosure {
		t.Fatalf("expected innerFn to be a closure, got %s", innerFn.GoString())
	}
	innerX := innerFn.Closure().Upvalues.GetValue(loomvm.StringValue("x"))
	if innerX.Number() != 5 {
		t.Fatalf("inner's transitive capture of x: got %s, want 5", innerX.GoString())
	}
}
