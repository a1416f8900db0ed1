package loomvm

// opCall implements Call. The stack, top to bottom, is: an argument
// counter{0,A}; the A argument values; a callee counter{0,1}; and the
// callee value. Call only reads this layout — it never pops anything —
// so the callee counter, callee value, arguments, and argument counter
// are all still exactly where the caller left them once the callee
// starts running; the caller's own instructions after Call returns are
// responsible for discarding whatever of that it no longer needs
// (typically via CleanStack once the call's result has been consumed).
func (vm *VM) opCall() error {
	top := vm.stack.Top()
	if !top.isCounter {
		return stackShapeError("Call: top slot must be an argument counter")
	}
	argTotal := top.total

	calleeCounterIdx := -2 - argTotal
	calleeCounter := vm.stack.getSlot(calleeCounterIdx)
	if !calleeCounter.isCounter || calleeCounter.total != 1 {
		return stackShapeError("Call: malformed callee counter")
	}
	callee := vm.stack.getSlot(calleeCounterIdx - 1).value

	vm.calls.push(callRecord{
		callerBase:   vm.insBase,
		callerCount:  vm.insCount,
		callerOffset: vm.insCurrent,
		callee:       callee,
		hasCallee:    true,
	})

	switch callee.Kind() {
	case KindClosure:
		fn := callee.Closure().Fn
		vm.insBase = fn.Instructions
		vm.insCount = len(vm.insBase)
		vm.insCurrent = -1
		return nil

	case KindNativeFunction:
		args := make([]Value, argTotal)
		for i := 0; i < argTotal; i++ {
			args[i] = vm.stack.GetStackValue(-1 - argTotal + i)
		}
		results, err := callee.NativeFunction().Call(vm, args)
		if err != nil {
			return err
		}
		if err := vm.checkStackGrowth(len(results) + 1); err != nil {
			return err
		}
		for _, r := range results {
			vm.stack.Push(r)
		}
		vm.stack.PushCounter(0, len(results))
		vm.insBase = nativeReturnBootstrap
		vm.insCount = len(vm.insBase)
		vm.insCurrent = -1
		return nil

	default:
		return typeErrorCall(callee)
	}
}

// opRet implements Ret: pops the top call record, restores the caller's
// instruction pointer, and trims the scope stack by exactly the number
// of tables this activation pushed. It never touches the operand stack
// — whatever return values and return counter the callee body pushed
// before Ret stay exactly where they are, now addressable relative to
// the resumed caller's own top of stack.
func (vm *VM) opRet() error {
	record := vm.calls.pop()
	vm.insBase = record.callerBase
	vm.insCount = record.callerCount
	vm.insCurrent = record.callerOffset
	for i := 0; i < record.calleeTables; i++ {
		vm.scopes.pop()
	}
	return nil
}

// opGenerateClosure implements GenerateClosure: allocates a Closure
// around the Function named by the instruction, pushes it topped by a
// singleton counter, and — if the function declares upvalues — resolves
// and copies each one by value from its owning table into the new
// closure's upvalue table.
func (vm *VM) opGenerateClosure(p Param) error {
	if p.Fn == nil {
		return stackShapeError("GenerateClosure: missing function param")
	}
	fn := p.Fn

	closureVal := vm.pool.GetClosure(fn)
	if err := vm.checkStackGrowth(2); err != nil {
		return err
	}
	vm.stack.Push(closureVal)
	vm.stack.PushCounter(0, 1)

	upvalues := closureVal.Closure().Upvalues
	if upvalues == nil {
		return nil
	}
	for _, name := range fn.UpvalueNames {
		key := vm.pool.GetString(name)
		owner := vm.getUpvalueKeyOwnerTable(key)
		if err := upvalues.Assign(key, owner.GetTableValue(key)); err != nil {
			return err
		}
	}
	return nil
}

// opGenerateArgTable implements GenerateArgTable: builds a fresh,
// 1-indexed table out of the counter-delimited run atop the stack,
// without consuming it — the counter is left on the stack with current
// advanced to total — and binds that table under the name "arg" in the
// innermost scope table. This is how script functions reach the values
// a Call instruction left waiting for them.
func (vm *VM) opGenerateArgTable() error {
	top := vm.stack.Top()
	if !top.isCounter {
		return stackShapeError("GenerateArgTable: top slot must be a counter")
	}

	arg := NewTable()
	current, total := top.current, top.total
	index := -1 - (total - current)
	argIndex := 1
	for current < total {
		key := NumberValue(float64(argIndex))
		value := vm.stack.GetStackValue(index)
		if err := arg.Assign(key, value); err != nil {
			return err
		}
		index++
		argIndex++
		current++
	}

	top.current = top.total
	vm.stack.setSlot(-1, top)

	local := vm.scopes.back()
	return local.Assign(vm.pool.GetString("arg"), TableValue(arg))
}
