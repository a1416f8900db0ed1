package loomvm_test

import (
	"testing"

	"github.com/loomlang/loom/asm"
	"github.com/loomlang/loom/loomvm"
)

// S1: a single top-level assignment, x = 1.
func TestScenarioSimpleAssignment(t *testing.T) {
	bs := asm.New().
		AddGlobalTable().
		PushNumber(1).
		Counter(1).
		GetLocalTable().
		PushName("x").
		Assign().
		CleanStack().
		DelGlobalTable().
		Bootstrap()

	vm := loomvm.NewVM(loomvm.NewPool())
	if err := vm.Run(bs); err != nil {
		t.Fatal(err)
	}

	x := vm.Globals().GetValue(loomvm.StringValue("x"))
	if x.Kind() != loomvm.KindNumber || x.Number() != 1 {
		t.Fatalf("got %s", x.GoString())
	}
}

// S2: two assignment targets sharing one single-value RHS — the second
// target is padded with Nil once the RHS counter is exhausted.
func TestScenarioMultiAssignPadding(t *testing.T) {
	bs := asm.New().
		AddGlobalTable().
		PushNumber(1).
		Counter(1).
		GetLocalTable().
		PushName("x").
		Assign().
		GetLocalTable().
		PushName("y").
		Assign().
		CleanStack().
		DelGlobalTable().
		Bootstrap()

	vm := loomvm.NewVM(loomvm.NewPool())
	if err := vm.Run(bs); err != nil {
		t.Fatal(err)
	}

	x := vm.Globals().GetValue(loomvm.StringValue("x"))
	if x.Number() != 1 {
		t.Fatalf("x: got %s", x.GoString())
	}
	y := vm.Globals().GetValue(loomvm.StringValue("y"))
	if !y.IsNil() {
		t.Fatalf("y: expected Nil padding, got %s", y.GoString())
	}
}

// S3: indexing a non-table value fails with a TypeError.
func TestScenarioIndexTypeError(t *testing.T) {
	bs := asm.New().
		PushNumber(5).
		Counter(1).
		PushName("z").
		GetTableValue(0).
		Bootstrap()

	vm := loomvm.NewVM(loomvm.NewPool())
	err := vm.Run(bs)
	if err == nil {
		t.Fatalf("expected a type error")
	}
	rerr, ok := err.(*loomvm.RuntimeError)
	if !ok || rerr.Kind != loomvm.ErrTypeError {
		t.Fatalf("got %v", err)
	}
	if rerr.Error() != "attempt to index value from number" {
		t.Fatalf("got %q", rerr.Error())
	}
}

// S4: a closure captures its upvalue by value at creation time — a
// later mutation of the outer binding is not visible through it.
func TestScenarioClosureCapturesUpvalueByValue(t *testing.T) {
	fn := asm.NewFunction("f").Upvalue("x").Build()

	bs := asm.New().
		AddGlobalTable().
		AddLocalTable().
		PushNumber(10).Counter(1).GetLocalTable().PushName("x").Assign().CleanStack().
		GenerateClosure(fn).
		GetTable("f").PushName("f").Assign().CleanStack().
		PushNumber(99).Counter(1).GetLocalTable().PushName("x").Assign().CleanStack().
		DelLocalTable().
		DelGlobalTable().
		Bootstrap()

	vm := loomvm.NewVM(loomvm.NewPool())
	if err := vm.Run(bs); err != nil {
		t.Fatal(err)
	}

	f := vm.Globals().GetValue(loomvm.StringValue("f"))
	if f.Kind() != loomvm.KindClosure {
		t.Fatalf("expected a closure, got %s", f.GoString())
	}
	captured := f.Closure().Upvalues.GetValue(loomvm.StringValue("x"))
	if captured.Number() != 10 {
		t.Fatalf("captured x: got %s, want 10 (mutation after capture must not leak in)", captured.GoString())
	}
}

// S5: calling a closure packs its incoming arguments into a 1-indexed
// "arg" table via GenerateArgTable.
func TestScenarioVariadicArgPacking(t *testing.T) {
	body := asm.NewFunction("variadic").
		AddLocalTable().
		GenerateArgTable().
		GetTable("arg").PushName("arg").GetTableValue(0).
		PushNumber(1).GetTableValue(0).
		GetTable("result").PushName("result").Assign().CleanStack().
		DelLocalTable().
		Ret().
		Build()

	bs := asm.New().
		AddGlobalTable().
		GenerateClosure(body).
		PushNumber(10).PushNumber(20).PushNumber(30).Counter(3).
		Call().
		CleanStack().
		CleanStack().
		DelGlobalTable().
		Bootstrap()

	vm := loomvm.NewVM(loomvm.NewPool())
	if err := vm.Run(bs); err != nil {
		t.Fatal(err)
	}

	result := vm.Globals().GetValue(loomvm.StringValue("result"))
	if result.Number() != 10 {
		t.Fatalf("arg[1]: got %s, want 10", result.GoString())
	}
}

// S6: a native function round trip — call a Go-backed function with
// two arguments, consume its single return value.
func TestScenarioNativeCallRoundTrip(t *testing.T) {
	pool := loomvm.NewPool()
	vm := loomvm.NewVM(pool)

	add := pool.GetNativeFunction("add", func(vm *loomvm.VM, args []loomvm.Value) ([]loomvm.Value, error) {
		return []loomvm.Value{loomvm.NumberValue(args[0].Number() + args[1].Number())}, nil
	})
	if err := vm.Globals().Assign(loomvm.StringValue("add"), add); err != nil {
		t.Fatal(err)
	}

	bs := asm.New().
		AddGlobalTable().
		GetTable("add").PushName("add").GetTableValue(0).
		PushNumber(4).PushNumber(5).Counter(2).
		Call().
		GetTable("sum").PushName("sum").Assign().CleanStack().
		CleanStack().
		CleanStack().
		DelGlobalTable().
		Bootstrap()

	if err := vm.Run(bs); err != nil {
		t.Fatal(err)
	}

	sum := vm.Globals().GetValue(loomvm.StringValue("sum"))
	if sum.Number() != 9 {
		t.Fatalf("got %s", sum.GoString())
	}
}
