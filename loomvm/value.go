package loomvm

import "fmt"

// ValueKind discriminates the seven variants of the language's value
// model.
type ValueKind uint8

const (
	KindNil ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindTable
	KindClosure
	KindNativeFunction
)

func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindTable:
		return "table"
	case KindClosure:
		return "function"
	case KindNativeFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the language's value model. It is kept as
// one small struct rather than a Go interface so that it stays comparable
// with == for the primitive/string cases and so the operand stack's slots
// (stack.go) can embed it by value without boxing.
type Value struct {
	kind ValueKind
	b    bool
	n    float64
	s    string
	tbl  *Table
	clo  *Closure
	nat  *NativeFunction
}

// NilValue is the single nil value.
var NilValue = Value{kind: KindNil}

func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

func NumberValue(n float64) Value { return Value{kind: KindNumber, n: n} }

// StringValue constructs a string value directly, bypassing interning.
// Prefer Pool.GetString for values that originate from a Bootstrap's
// constant table, where repeated identical literals are common.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

func TableValue(t *Table) Value { return Value{kind: KindTable, tbl: t} }

func ClosureValue(c *Closure) Value { return Value{kind: KindClosure, clo: c} }

func NativeFunctionValue(n *NativeFunction) Value { return Value{kind: KindNativeFunction, nat: n} }

// Kind reports the value's tag.
func (v Value) Kind() ValueKind { return v.kind }

// Name is the human-readable type name used in error messages.
func (v Value) Name() string { return v.kind.String() }

func (v Value) IsNil() bool { return v.kind == KindNil }

// Truthy implements the language's notion of falsiness: nil and the
// boolean false are false, everything else — including zero and the empty
// string — is true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.b
	default:
		return true
	}
}

func (v Value) Bool() bool { return v.b }

func (v Value) Number() float64 { return v.n }

func (v Value) String() string { return v.s }

func (v Value) Table() *Table { return v.tbl }

func (v Value) Closure() *Closure { return v.clo }

func (v Value) NativeFunction() *NativeFunction { return v.nat }

// Equal implements the language's equality rule: identity for tables,
// closures, and native functions; by-value for nil, booleans, numbers, and
// strings.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.n == other.n
	case KindString:
		return v.s == other.s
	case KindTable:
		return v.tbl == other.tbl
	case KindClosure:
		return v.clo == other.clo
	case KindNativeFunction:
		return v.nat == other.nat
	default:
		return false
	}
}

// hashKey converts v into a value usable as a Go map key. Every variant
// is hashable under Go's == once boxed into an interface{} key this way
// — this exists so Table has a single narrow place that encodes "how
// does a Value become a map key," rather than callers reaching past
// Table's contract to build map keys themselves.
func (v Value) hashKey() any {
	switch v.kind {
	case KindNil:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindTable:
		return v.tbl
	case KindClosure:
		return v.clo
	case KindNativeFunction:
		return v.nat
	default:
		return nil
	}
}

func (v Value) GoString() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return fmt.Sprintf("%v", v.b)
	case KindNumber:
		return fmt.Sprintf("%g", v.n)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindTable:
		return fmt.Sprintf("table(%p)", v.tbl)
	case KindClosure:
		return fmt.Sprintf("closure(%s)", v.clo.Fn.Name)
	case KindNativeFunction:
		return fmt.Sprintf("native(%s)", v.nat.Name)
	default:
		return "<invalid>"
	}
}
