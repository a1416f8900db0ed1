package loomvm

import "testing"

func TestPoolGetStringInterns(t *testing.T) {
	p := NewPool()
	a := p.GetString("hello")
	b := p.GetString("hello")
	if !a.Equal(b) {
		t.Fatalf("interned strings should be equal")
	}
	if a.Table() != nil {
		t.Fatalf("string value must not carry a table")
	}
}

func TestPoolGetTableFreshEachTime(t *testing.T) {
	p := NewPool()
	a := p.GetTable()
	b := p.GetTable()
	if a.Equal(b) {
		t.Fatalf("two GetTable calls must return distinct tables")
	}
}

func TestPoolGetClosureAllocatesUpvaluesOnlyWhenDeclared(t *testing.T) {
	p := NewPool()

	plain := &Function{Name: "plain"}
	cl := p.GetClosure(plain)
	if cl.Closure().Upvalues != nil {
		t.Fatalf("closure over a function with no upvalues must not get an upvalue table")
	}

	withUp := &Function{Name: "withUp", UpvalueNames: []string{"x"}}
	cl2 := p.GetClosure(withUp)
	if cl2.Closure().Upvalues == nil {
		t.Fatalf("closure over a function declaring upvalues must get an upvalue table")
	}
}

func TestPoolGetNativeFunction(t *testing.T) {
	p := NewPool()
	called := false
	v := p.GetNativeFunction("f", func(vm *VM, args []Value) ([]Value, error) {
		called = true
		return nil, nil
	})
	if v.Kind() != KindNativeFunction {
		t.Fatalf("expected a native function value")
	}
	if _, err := v.NativeFunction().Call(nil, nil); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatalf("native function was not invoked")
	}
}
