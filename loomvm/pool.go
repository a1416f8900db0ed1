package loomvm

// Pool is the data pool: the allocator and interner for Values, Tables,
// Closures, and Strings. A *Pool is owned exclusively by one *VM; nothing
// shares a Pool across VMs.
//
// Garbage collection itself is out of scope — Pool assumes a
// reachable-from-roots allocator and relies on Go's own GC for that,
// adding string interning on top of it via GetString.
type Pool struct {
	strings map[string]Value
}

// NewPool constructs an empty data pool.
func NewPool() *Pool {
	return &Pool{
		strings: make(map[string]Value),
	}
}

func (p *Pool) GetNil() Value { return NilValue }

func (p *Pool) GetBool(b bool) Value { return BoolValue(b) }

func (p *Pool) GetNumber(n float64) Value { return NumberValue(n) }

// GetString interns s: repeated calls with an equal string return Values
// that are == to each other's underlying representation, so a Bootstrap
// with the same string literal used many times doesn't pay to re-box it.
func (p *Pool) GetString(s string) Value {
	if v, ok := p.strings[s]; ok {
		return v
	}
	v := StringValue(s)
	p.strings[s] = v
	return v
}

// GetTable allocates a fresh, empty table.
func (p *Pool) GetTable() Value {
	return TableValue(NewTable())
}

// GetClosure allocates a new Closure around fn, allocating its upvalue
// table iff fn declares at least one upvalue.
func (p *Pool) GetClosure(fn *Function) Value {
	c := &Closure{Fn: fn}
	if fn.HasUpvalues() {
		c.Upvalues = NewTable()
	}
	return ClosureValue(c)
}

// GetNativeFunction wraps a Go function as a native-function Value. It
// belongs on the pool alongside the other constructors since it's the
// only other heap-allocated Value variant, even though native functions
// are otherwise a host collaborator rather than part of the pool's own
// data model.
func (p *Pool) GetNativeFunction(name string, fn NativeFunc) Value {
	return NativeFunctionValue(&NativeFunction{Name: name, Call: fn})
}
