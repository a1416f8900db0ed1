package loomvm

// Table is the language's hybrid map from Value keys to Value values.
// Tables are reference types: two Values created by TableValue around
// the same *Table alias each other's mutations, and Table itself
// carries no locking — the VM's single-threaded execution model is the
// only synchronization this type relies on.
type Table struct {
	entries map[any]Value
	keys    map[any]Value // hashKey -> original Value, for iteration/inspection
}

// NewTable allocates a fresh, empty table. Pool.GetTable wraps it as a
// Value; the VM's scope and arg tables are allocated with it directly.
func NewTable() *Table {
	return &Table{
		entries: make(map[any]Value),
		keys:    make(map[any]Value),
	}
}

// Assign sets table[key] = val. A Nil key is a runtime error.
func (t *Table) Assign(key, val Value) error {
	if key.IsNil() {
		return &RuntimeError{Kind: ErrKeyError, Message: "table index is nil"}
	}
	hk := key.hashKey()
	t.entries[hk] = val
	t.keys[hk] = key
	return nil
}

// GetValue returns the value bound to key, or Nil if absent.
func (t *Table) GetValue(key Value) Value {
	if v, ok := t.entries[key.hashKey()]; ok {
		return v
	}
	return NilValue
}

// GetTableValue is the same lookup as GetValue, kept under its own name
// so the instruction handler with the matching name (ops_table.go's
// GetTableValue) reads as a direct call into this method.
func (t *Table) GetTableValue(key Value) Value {
	return t.GetValue(key)
}

// HaveKey reports whether key is bound in the table.
func (t *Table) HaveKey(key Value) bool {
	_, ok := t.entries[key.hashKey()]
	return ok
}

// Len returns the number of bound keys.
func (t *Table) Len() int {
	return len(t.entries)
}

// Each iterates the table's entries in unspecified order; insertion
// order is not preserved or externally observable.
func (t *Table) Each(fn func(key, val Value) bool) {
	for hk, key := range t.keys {
		if !fn(key, t.entries[hk]) {
			return
		}
	}
}
