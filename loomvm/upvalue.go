package loomvm

// getUpvalueKeyOwnerTable is the scope-resolution walk GenerateClosure
// runs once per declared upvalue to find the table that owns its
// current value, so that value can be copied into the new closure's
// upvalue table.
//
// Like GetTable, the search is bounded to the current frame's own
// pushed tables (callee_tables), never reaching into an enclosing call's
// locals — a closure created inside another closure captures its
// *lexically* enclosing values, which by construction already live
// either in the current frame's own tables or in the current closure's
// own upvalue table, never in some unrelated caller's frame. Scanning
// the whole table stack unbounded here would let a closure capture a
// caller's locals purely because they happened to be on the stack at
// definition time, which would be inconsistent with the bounded walk
// GetTable itself uses one opcode over.
func (vm *VM) getUpvalueKeyOwnerTable(key Value) *Table {
	record := vm.calls.top()
	for offset := 0; offset < record.calleeTables; offset++ {
		t := vm.scopes.at(offset)
		if t.HaveKey(key) {
			return t
		}
	}

	if record.hasCallee {
		// key names one of this closure's own upvalues, which was
		// already resolved the same way when this closure was created,
		// so it is guaranteed present here.
		return record.callee.Closure().Upvalues
	}

	// No enclosing closure: we're generating a closure directly inside
	// the global frame. There is nowhere upstream left to look, so the
	// key becomes a fresh global bound to Nil, and future references to
	// it (including this capture) resolve there.
	t := vm.globals
	t.Assign(key, NilValue)
	return t
}
