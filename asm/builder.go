// Package asm is a fluent instruction assembler standing in for the
// compiler that would normally produce a Bootstrap: the boundary
// between a compiler and the runtime is just the Instruction/Bootstrap
// format itself, and any component that produces a well-formed
// Bootstrap counts as a compiler. Nothing in loom parses source text;
// asm.Builder lets Go code emit a Bootstrap directly, one opcode at a
// time, pairing emit/addConst-style calls without a parser's AST
// walking in between.
package asm

import "github.com/loomlang/loom/loomvm"

// Builder accumulates a sequence of Instructions. The zero value is not
// usable; construct with New.
type Builder struct {
	instructions loomvm.Bootstrap
}

// New starts an empty instruction sequence.
func New() *Builder {
	return &Builder{}
}

func (b *Builder) emit(op loomvm.OpCode, p loomvm.Param) *Builder {
	b.instructions = append(b.instructions, loomvm.Instruction{Op: op, Param: p})
	return b
}

// Push emits Push with a literal Value param.
func (b *Builder) Push(v loomvm.Value) *Builder {
	return b.emit(loomvm.OpPush, loomvm.ValueParam(v))
}

// PushName emits Push with a bare key Name param — the shape GetTable,
// GetTableValue's preceding key push, and Assign's key all expect.
func (b *Builder) PushName(name string) *Builder {
	return b.emit(loomvm.OpPush, loomvm.NameParam(loomvm.StringValue(name)))
}

// PushNil, PushBool, PushNumber, and PushString are Push shorthands for
// the four constant kinds a Bootstrap's constant pool can hold.
func (b *Builder) PushNil() *Builder               { return b.Push(loomvm.NilValue) }
func (b *Builder) PushBool(v bool) *Builder         { return b.Push(loomvm.BoolValue(v)) }
func (b *Builder) PushNumber(n float64) *Builder    { return b.Push(loomvm.NumberValue(n)) }
func (b *Builder) PushString(s string) *Builder     { return b.Push(loomvm.StringValue(s)) }

// Counter emits Push with a fresh {current:0, total} counter param —
// the instruction a compiler emits right after pushing the values of a
// multi-value result, to delimit the run it just produced.
func (b *Builder) Counter(total int) *Builder {
	return b.emit(loomvm.OpPush, loomvm.CounterParam(total))
}

func (b *Builder) CleanStack() *Builder { return b.emit(loomvm.OpCleanStack, loomvm.NoParam()) }

func (b *Builder) GetLocalTable() *Builder {
	return b.emit(loomvm.OpGetLocalTable, loomvm.NoParam())
}

// GetTable emits GetTable for the given name, resolving it to the scope
// table (or upvalue/global table) that owns it.
func (b *Builder) GetTable(name string) *Builder {
	return b.emit(loomvm.OpGetTable, loomvm.NameParam(loomvm.StringValue(name)))
}

// GetTableValue emits GetTableValue with the given CounterIndex — how
// many other counter-delimited runs sit between the key atop the stack
// and the (table, counter) pair it indexes. Pass 0 for a simple `a.b`.
func (b *Builder) GetTableValue(counterIndex int) *Builder {
	return b.emit(loomvm.OpGetTableValue, loomvm.CounterIndexParam(counterIndex))
}

func (b *Builder) Assign() *Builder { return b.emit(loomvm.OpAssign, loomvm.NoParam()) }

// GenerateClosure emits GenerateClosure for fn.
func (b *Builder) GenerateClosure(fn *loomvm.Function) *Builder {
	return b.emit(loomvm.OpGenerateClosure, loomvm.FunctionParam(fn))
}

func (b *Builder) Call() *Builder { return b.emit(loomvm.OpCall, loomvm.NoParam()) }

func (b *Builder) Ret() *Builder { return b.emit(loomvm.OpRet, loomvm.NoParam()) }

func (b *Builder) GenerateArgTable() *Builder {
	return b.emit(loomvm.OpGenerateArgTable, loomvm.NoParam())
}

func (b *Builder) MergeCounter() *Builder { return b.emit(loomvm.OpMergeCounter, loomvm.NoParam()) }

func (b *Builder) ResetCounter() *Builder { return b.emit(loomvm.OpResetCounter, loomvm.NoParam()) }

func (b *Builder) DuplicateCounter() *Builder {
	return b.emit(loomvm.OpDuplicateCounter, loomvm.NoParam())
}

func (b *Builder) AddLocalTable() *Builder {
	return b.emit(loomvm.OpAddLocalTable, loomvm.NoParam())
}

func (b *Builder) DelLocalTable() *Builder {
	return b.emit(loomvm.OpDelLocalTable, loomvm.NoParam())
}

func (b *Builder) AddGlobalTable() *Builder {
	return b.emit(loomvm.OpAddGlobalTable, loomvm.NoParam())
}

func (b *Builder) DelGlobalTable() *Builder {
	return b.emit(loomvm.OpDelGlobalTable, loomvm.NoParam())
}

// WrapCallee emits Counter(1) to close off the callee value just pushed,
// the first half of the caller-side bracket around a Call. Pushing the
// argTotal argument values belongs between this and WrapArgs — splitting
// the bracket in two, rather than one CallExpr(argTotal) call wrapping a
// nonexistent argTotal pushes, is what lets a real call site interleave
// its own arg-value instructions in between.
func (b *Builder) WrapCallee() *Builder {
	return b.Counter(1)
}

// WrapArgs emits Counter(argTotal) to close off the argTotal argument
// values already pushed since WrapCallee, then Call itself. It does not
// touch whatever Call leaves behind (the calling convention charges the
// caller with cleaning that up) — pair it with CleanStack/ResetCounter
// once the result has been consumed, same as any other multi-value run.
func (b *Builder) WrapArgs(argTotal int) *Builder {
	return b.Counter(argTotal).Call()
}

// Bootstrap yields the finished, immutable instruction sequence.
func (b *Builder) Bootstrap() loomvm.Bootstrap {
	return b.instructions
}

// Function builds a loomvm.Function body with its own Builder. It does
// not embed *Builder: every chaining method is forwarded explicitly so
// that a chain started from NewFunction keeps returning *Function all
// the way to Build, instead of decaying to *Builder (which has no
// Build method) the moment an opcode method is called.
type Function struct {
	b            *Builder
	name         string
	numParams    int
	upvalueNames []string
}

// NewFunction starts building a named function body.
func NewFunction(name string) *Function {
	return &Function{b: New(), name: name}
}

// NumParams records how many positional parameters fn declares
// (informational only — see loomvm.Function.NumParams).
func (f *Function) NumParams(n int) *Function {
	f.numParams = n
	return f
}

// Upvalue declares name as one of fn's upvalues, in capture order.
// Declaring the same name twice panics.
func (f *Function) Upvalue(name string) *Function {
	for _, existing := range f.upvalueNames {
		if existing == name {
			panic("asm: duplicate upvalue " + name + " in function " + f.name)
		}
	}
	f.upvalueNames = append(f.upvalueNames, name)
	return f
}

// Build finishes the function, yielding a *loomvm.Function ready to
// pass to Builder.GenerateClosure.
func (f *Function) Build() *loomvm.Function {
	return &loomvm.Function{
		Name:         f.name,
		Instructions: f.b.Bootstrap(),
		NumParams:    f.numParams,
		UpvalueNames: f.upvalueNames,
	}
}

func (f *Function) Push(v loomvm.Value) *Function        { f.b.Push(v); return f }
func (f *Function) PushName(name string) *Function       { f.b.PushName(name); return f }
func (f *Function) PushNil() *Function                   { f.b.PushNil(); return f }
func (f *Function) PushBool(v bool) *Function             { f.b.PushBool(v); return f }
func (f *Function) PushNumber(n float64) *Function        { f.b.PushNumber(n); return f }
func (f *Function) PushString(s string) *Function         { f.b.PushString(s); return f }
func (f *Function) Counter(total int) *Function           { f.b.Counter(total); return f }
func (f *Function) CleanStack() *Function                 { f.b.CleanStack(); return f }
func (f *Function) GetLocalTable() *Function               { f.b.GetLocalTable(); return f }
func (f *Function) GetTable(name string) *Function         { f.b.GetTable(name); return f }
func (f *Function) GetTableValue(counterIndex int) *Function {
	f.b.GetTableValue(counterIndex)
	return f
}
func (f *Function) Assign() *Function                     { f.b.Assign(); return f }
func (f *Function) GenerateClosure(fn *loomvm.Function) *Function {
	f.b.GenerateClosure(fn)
	return f
}
func (f *Function) Call() *Function                        { f.b.Call(); return f }
func (f *Function) Ret() *Function                          { f.b.Ret(); return f }
func (f *Function) GenerateArgTable() *Function             { f.b.GenerateArgTable(); return f }
func (f *Function) MergeCounter() *Function                 { f.b.MergeCounter(); return f }
func (f *Function) ResetCounter() *Function                 { f.b.ResetCounter(); return f }
func (f *Function) DuplicateCounter() *Function             { f.b.DuplicateCounter(); return f }
func (f *Function) AddLocalTable() *Function                { f.b.AddLocalTable(); return f }
func (f *Function) DelLocalTable() *Function                { f.b.DelLocalTable(); return f }
func (f *Function) AddGlobalTable() *Function                { f.b.AddGlobalTable(); return f }
func (f *Function) DelGlobalTable() *Function                { f.b.DelGlobalTable(); return f }
func (f *Function) WrapCallee() *Function                    { f.b.WrapCallee(); return f }
func (f *Function) WrapArgs(argTotal int) *Function           { f.b.WrapArgs(argTotal); return f }
