package loomvm

import "sync/atomic"

// nativeReturnBootstrap is the one-instruction program Call switches to
// after invoking a native function, so the very next dispatch cycle runs
// the ordinary Ret sequence instead of duplicating Ret's bookkeeping
// inline.
var nativeReturnBootstrap = Bootstrap{{Op: OpRet}}

// VMOption configures a VM at construction time.
type VMOption func(*VM)

// WithMaxStackSize caps the operand stack's slot count; Run fails with a
// ErrStackShapeError-kind RuntimeError once a Push would exceed it. Zero
// (the default) means unlimited — the limit is a host-configurable guard
// rail, not something correctness depends on.
func WithMaxStackSize(n int) VMOption {
	return func(vm *VM) { vm.maxStackSize = n }
}

// WithMaxCallDepth caps the call stack's depth, guarding against runaway
// recursion in a way the bytecode itself has no way to express.
func WithMaxCallDepth(n int) VMOption {
	return func(vm *VM) { vm.maxCallDepth = n }
}

// VM is one execution of the instruction set over one Pool. It owns the
// operand stack, the scope-table stack, and the call stack, plus the
// handful of fields tracking where in the current Bootstrap execution
// stands. A VM is single-threaded and single-use: a VM that raised an
// uncaught error is not reset — callers needing to run another chunk
// after an error should build a new VM.
type VM struct {
	pool    *Pool
	stack   *operandStack
	scopes  *scopeStack
	calls   *callStack
	globals *Table

	insBase    Bootstrap
	insCount   int
	insCurrent int

	interrupted atomic.Bool

	maxStackSize int
	maxCallDepth int
}

// NewVM constructs a VM over pool with a fresh, empty global table.
func NewVM(pool *Pool, opts ...VMOption) *VM {
	vm := &VM{
		pool:    pool,
		stack:   newOperandStack(),
		scopes:  newScopeStack(),
		calls:   newCallStack(),
		globals: NewTable(),
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Globals returns the VM's global table, for host code wiring in native
// functions and constants before Run.
func (vm *VM) Globals() *Table { return vm.globals }

// Pool returns the VM's data pool, for host native functions that need to
// allocate Values consistent with the rest of the VM's bookkeeping (e.g.
// interned strings via Pool.GetString).
func (vm *VM) Pool() *Pool { return vm.pool }

// StackSize reports the operand stack's current slot count. Exposed for
// the REPL's status display and for tests asserting stack balance —
// nothing in the dispatch loop itself needs it.
func (vm *VM) StackSize() int { return vm.stack.Size() }

// ScopeDepth reports the scope-table stack's current depth.
func (vm *VM) ScopeDepth() int { return vm.scopes.depth() }

// CallDepth reports the call stack's current depth.
func (vm *VM) CallDepth() int { return vm.calls.depth() }

// Interrupt requests that the currently running (or next) Run call stop
// at the next instruction boundary and return ErrInterruptedValue. Safe
// to call from another goroutine.
func (vm *VM) Interrupt() {
	vm.interrupted.Store(true)
}

// Run installs bootstrap as the current frame's instructions and
// dispatches instructions one at a time until the instruction pointer
// walks off the end, an instruction handler returns an error, or the VM
// is interrupted. Every error the VM itself raises is a *RuntimeError; an
// error returned by a native function is passed through unchanged.
func (vm *VM) Run(bootstrap Bootstrap) error {
	vm.LoadBootstrap(bootstrap)

	for {
		done, err := vm.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// LoadBootstrap installs bootstrap as the current frame's program and
// rewinds the instruction pointer to its start, without running
// anything. Run calls this itself; it's exposed separately so a caller
// that wants to single-step via Step (cmd/loom's REPL) can prime the VM
// once up front.
func (vm *VM) LoadBootstrap(bootstrap Bootstrap) {
	vm.insBase = bootstrap
	vm.insCount = len(bootstrap)
	vm.insCurrent = -1
}

// Step dispatches exactly one instruction of whatever bootstrap
// LoadBootstrap (directly or through Run) last installed and reports whether execution is finished. It is the
// building block Run loops over; cmd/loom's REPL calls it directly to
// single-step a loaded program without restarting it, which a bare Run
// call cannot do since Run always resets the instruction pointer to the
// bootstrap's start.
func (vm *VM) Step() (done bool, err error) {
	if vm.interrupted.CompareAndSwap(true, false) {
		return false, ErrInterruptedValue
	}

	vm.insCurrent++
	if vm.insCurrent >= vm.insCount {
		return true, nil
	}

	if vm.maxCallDepth > 0 && vm.calls.depth() > vm.maxCallDepth {
		err := stackShapeError("call stack exceeded max depth %d", vm.maxCallDepth)
		err.Trace = vm.buildTrace()
		return false, err
	}

	ins := vm.insBase[vm.insCurrent]
	if err := vm.dispatch(ins); err != nil {
		if runtimeErr, ok := err.(*RuntimeError); ok && runtimeErr.Trace == nil {
			runtimeErr.Trace = vm.buildTrace()
		}
		return false, err
	}
	return false, nil
}

// buildTrace synthesizes an optional stack trace from the call stack's
// activation records at the moment an error is about to surface from
// Run. Each callRecord pairs the function now executing in a frame
// (its callee) with the instruction offset, in the frame that called it,
// where that call happened (its callerOffset) — so walking the records
// from innermost to outermost yields one trace entry per frame: this
// frame's currently-pending instruction, paired with the enclosing
// frame's function name (one record further out, or "<global>" once the
// walk runs off the bottom sentinel).
func (vm *VM) buildTrace() []TraceEntry {
	records := vm.calls.records
	depth := len(records)

	trace := []TraceEntry{{
		FunctionName:      frameName(records),
		InstructionOffset: vm.insCurrent,
	}}
	for i := depth - 1; i >= 0; i-- {
		var name string
		if i > 0 {
			name = calleeName(records[i-1].callee, records[i-1].hasCallee)
		} else {
			name = "<global>"
		}
		trace = append(trace, TraceEntry{
			FunctionName:      name,
			InstructionOffset: records[i].callerOffset,
		})
	}
	return trace
}

func frameName(records []callRecord) string {
	if len(records) == 0 {
		return "<global>"
	}
	top := records[len(records)-1]
	return calleeName(top.callee, top.hasCallee)
}

func calleeName(callee Value, hasCallee bool) string {
	if !hasCallee {
		return "<global>"
	}
	switch callee.Kind() {
	case KindClosure:
		return callee.Closure().Fn.Name
	case KindNativeFunction:
		return callee.NativeFunction().Name
	default:
		return "<unknown>"
	}
}

func (vm *VM) dispatch(ins Instruction) error {
	switch ins.Op {
	case OpPush:
		return vm.opPush(ins.Param)
	case OpCleanStack:
		return vm.opCleanStack()
	case OpGetLocalTable:
		return vm.opGetLocalTable()
	case OpGetTable:
		return vm.opGetTable(ins.Param)
	case OpGetTableValue:
		return vm.opGetTableValue(ins.Param)
	case OpAssign:
		return vm.opAssign()
	case OpGenerateClosure:
		return vm.opGenerateClosure(ins.Param)
	case OpCall:
		return vm.opCall()
	case OpRet:
		return vm.opRet()
	case OpGenerateArgTable:
		return vm.opGenerateArgTable()
	case OpMergeCounter:
		return vm.opMergeCounter()
	case OpResetCounter:
		return vm.opResetCounter()
	case OpDuplicateCounter:
		return vm.opDuplicateCounter()
	case OpAddLocalTable:
		return vm.opAddLocalTable()
	case OpDelLocalTable:
		return vm.opDelLocalTable()
	case OpAddGlobalTable:
		return vm.opAddGlobalTable()
	case OpDelGlobalTable:
		return vm.opDelGlobalTable()
	default:
		return stackShapeError("unknown opcode %v", ins.Op)
	}
}

func (vm *VM) checkStackGrowth(n int) error {
	if vm.maxStackSize > 0 && vm.stack.Size()+n > vm.maxStackSize {
		return stackShapeError("operand stack exceeded max size %d", vm.maxStackSize)
	}
	return nil
}
