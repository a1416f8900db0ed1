package loomvm

// opPush implements Push: pushes a bare Name or Value, or an
// empty counter{current:0, total}, depending on Param.Kind.
func (vm *VM) opPush(p Param) error {
	switch p.Kind {
	case ParamName:
		if err := vm.checkStackGrowth(1); err != nil {
			return err
		}
		vm.stack.Push(p.Name)
	case ParamValue:
		if err := vm.checkStackGrowth(1); err != nil {
			return err
		}
		vm.stack.Push(p.Value)
	case ParamCounter:
		if err := vm.checkStackGrowth(1); err != nil {
			return err
		}
		vm.stack.PushCounter(0, p.Total)
	default:
		return stackShapeError("Push: unsupported param kind %d", p.Kind)
	}
	return nil
}

// opCleanStack implements CleanStack: pops the top counter
// and the values it delimits, discarding a whole multi-value result in
// one step (used for expression statements whose value is unused).
func (vm *VM) opCleanStack() error {
	top := vm.stack.Top()
	if !top.isCounter {
		return stackShapeError("CleanStack: top slot must be a counter")
	}
	total := top.total
	vm.stack.Pop(1)
	if total > 0 {
		vm.stack.Pop(total)
	}
	return nil
}

// opMergeCounter implements MergeCounter: splices two
// adjacent counter-delimited runs into one, dropping the intervening
// counter and combining totals. Used to fold the tail of a varargs-style
// expansion into the run that precedes it.
func (vm *VM) opMergeCounter() error {
	top := vm.stack.Top()
	if !top.isCounter {
		return stackShapeError("MergeCounter: top slot must be a counter")
	}
	counter1 := top.total

	below := vm.stack.getSlot(-(counter1 + 2))
	if !below.isCounter {
		return stackShapeError("MergeCounter: expected a counter beneath the top run")
	}
	counter2 := below.total

	vm.stack.removeAt(-(counter1 + 2))
	vm.stack.Pop(1)
	vm.stack.PushCounter(0, counter1+counter2)
	return nil
}

// opResetCounter implements ResetCounter: forces the top
// counter-delimited run down to exactly one value — the first value
// produced, mirroring the language's "extra results are discarded, a
// short result is padded with Nil" rule wherever a multi-value
// expression is used in a single-value context.
func (vm *VM) opResetCounter() error {
	top := vm.stack.Top()
	if !top.isCounter {
		return stackShapeError("ResetCounter: top slot must be a counter")
	}
	total := top.total
	if total == 1 {
		return nil
	}

	vm.stack.Pop(1)
	if total == 0 {
		vm.stack.Push(NilValue)
	} else {
		vm.stack.Pop(total - 1)
	}
	vm.stack.PushCounter(0, 1)
	return nil
}

// opDuplicateCounter implements DuplicateCounter: copies the
// top counter-delimited run, leaving the original run in place beneath a
// fresh copy and a fresh counter. Used when the same multi-value result
// feeds two consumers (e.g. an assignment target list and its printed
// echo in a REPL).
func (vm *VM) opDuplicateCounter() error {
	top := vm.stack.Top()
	if !top.isCounter {
		return stackShapeError("DuplicateCounter: top slot must be a counter")
	}
	total := top.total
	if err := vm.checkStackGrowth(total + 1); err != nil {
		return err
	}

	start := vm.stack.Size() - total - 1
	for i := 0; i < total; i++ {
		vm.stack.Push(vm.stack.getSlot(start + i).value)
	}
	vm.stack.PushCounter(0, total)
	return nil
}
