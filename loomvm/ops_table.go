package loomvm

// opGetLocalTable implements GetLocalTable: pushes the innermost active
// scope table, topped by a singleton counter, so it can be addressed
// uniformly with GetTable's result.
func (vm *VM) opGetLocalTable() error {
	if err := vm.checkStackGrowth(2); err != nil {
		return err
	}
	vm.stack.Push(TableValue(vm.scopes.back()))
	vm.stack.PushCounter(0, 1)
	return nil
}

// opGetTable implements GetTable: resolves a name to the scope table
// that owns it, searching only the current frame's own pushed tables
// (bounded by the active call record's callee_tables, not the whole
// scope stack — a closure must never see a caller's locals).
//
// If no table in the current frame owns the name, the name is an
// upvalue or global: fall back to the current closure's upvalue table,
// or — if there is no enclosing closure, i.e. execution is at the global
// frame — to the global table itself.
func (vm *VM) opGetTable(p Param) error {
	if p.Kind != ParamName {
		return stackShapeError("GetTable: expected a Name param")
	}
	key := p.Name

	record := vm.calls.top()
	for offset := 0; offset < record.calleeTables; offset++ {
		t := vm.scopes.at(offset)
		if t.HaveKey(key) {
			if err := vm.checkStackGrowth(2); err != nil {
				return err
			}
			vm.stack.Push(TableValue(t))
			vm.stack.PushCounter(0, 1)
			return nil
		}
	}

	if err := vm.checkStackGrowth(2); err != nil {
		return err
	}
	if record.hasCallee && record.callee.Kind() == KindClosure {
		if upvalues := record.callee.Closure().Upvalues; upvalues != nil {
			vm.stack.Push(TableValue(upvalues))
			vm.stack.PushCounter(0, 1)
			return nil
		}
	}
	vm.stack.Push(TableValue(vm.globals))
	vm.stack.PushCounter(0, 1)
	return nil
}

// opGetTableValue implements GetTableValue. The top slot is a bare key
// value; CounterIndex says how many other counter-delimited runs sit
// between that key and the (table, counter) pair it indexes —
// each one is skipped by its own total, so a.b.c chains and interleaved
// sub-expression results address the right table regardless of what sat
// between them on the stack. The table slot is overwritten in place with
// the looked-up value; only the key is popped, so chained GetTableValue
// instructions can walk a.b.c one field at a time.
func (vm *VM) opGetTableValue(p Param) error {
	if p.Kind != ParamCounterIndex {
		return stackShapeError("GetTableValue: expected a CounterIndex param")
	}

	keySlot := vm.stack.Top()
	if keySlot.isCounter {
		return stackShapeError("GetTableValue: top slot must be a key value")
	}

	pos := -2
	for i := 0; i < p.CounterIndex; i++ {
		c := vm.stack.getSlot(pos)
		if !c.isCounter {
			return stackShapeError("GetTableValue: expected a counter while skipping to CounterIndex %d", p.CounterIndex)
		}
		pos -= c.total + 1
	}
	counterIdx := pos
	tableIdx := pos - 1

	counterSlot := vm.stack.getSlot(counterIdx)
	if !counterSlot.isCounter {
		return stackShapeError("GetTableValue: expected a counter at the target position")
	}
	targetSlot := vm.stack.getSlot(tableIdx)
	if targetSlot.value.Kind() != KindTable {
		return typeErrorIndex(targetSlot.value)
	}

	result := targetSlot.value.Table().GetTableValue(keySlot.value)
	vm.stack.setSlot(tableIdx, valueSlot(result))
	vm.stack.Pop(1)
	return nil
}

// opAssign implements Assign. Stack, top to bottom: a bare key value;
// the (table, counter{0,1}) pair produced by GetLocalTable or GetTable;
// and an already-in-progress RHS counter-delimited run. Pops
// the key and the table's counter together, then the table itself,
// leaving the RHS counter exposed; consumes exactly one value from it
// (Nil once exhausted), advances its current, and assigns into the
// table. The RHS counter and its remaining values stay on the stack for
// any further Assigns against the same multi-value RHS.
func (vm *VM) opAssign() error {
	keySlot := vm.stack.Top()
	if keySlot.isCounter {
		return stackShapeError("Assign: top slot must be a key value")
	}
	key := keySlot.value
	vm.stack.Pop(2) // key, and the table's trailing counter

	tableSlot := vm.stack.Top()
	if tableSlot.isCounter || tableSlot.value.Kind() != KindTable {
		return stackShapeError("Assign: expected a table beneath the key")
	}
	table := tableSlot.value.Table()
	vm.stack.Pop(1)

	counter := vm.stack.Top()
	if !counter.isCounter {
		return stackShapeError("Assign: expected the RHS counter beneath the table")
	}

	value := NilValue
	if counter.current < counter.total {
		index := counter.current - counter.total - 1
		value = vm.stack.GetStackValue(index)
		counter.current++
		vm.stack.setSlot(-1, counter)
	}

	return table.Assign(key, value)
}

// opAddLocalTable implements AddLocalTable: opens a fresh lexical scope,
// tracked against the current call record so Ret knows how many to trim.
func (vm *VM) opAddLocalTable() error {
	vm.scopes.push(NewTable())
	vm.calls.top().calleeTables++
	return nil
}

// opDelLocalTable implements DelLocalTable: the inverse of AddLocalTable.
func (vm *VM) opDelLocalTable() error {
	vm.scopes.pop()
	vm.calls.top().calleeTables--
	return nil
}

// opAddGlobalTable implements AddGlobalTable: pushes the global table
// onto the scope stack and opens the bottom sentinel call record
// (callee=null, callee_tables=1) that brackets top-level execution so
// GetTable can see the global scope.
func (vm *VM) opAddGlobalTable() error {
	vm.scopes.push(vm.globals)
	vm.calls.push(callRecord{calleeTables: 1})
	return nil
}

// opDelGlobalTable implements DelGlobalTable: the inverse of
// AddGlobalTable. Unlike Ret, this pops exactly one scope table and one
// call record unconditionally — by the time a well-formed Bootstrap
// reaches its closing DelGlobalTable, every AddLocalTable it opened has
// already been matched by a DelLocalTable.
func (vm *VM) opDelGlobalTable() error {
	vm.calls.pop()
	vm.scopes.pop()
	return nil
}
