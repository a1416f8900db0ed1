package loomvm

import "fmt"

// ErrKind discriminates the runtime error taxonomy.
type ErrKind uint8

const (
	// ErrTypeError covers "attempt to index value from <type>" and
	// "attempt to call <type>".
	ErrTypeError ErrKind = iota
	// ErrKeyError is a nil key rejected by Table, surfaced by Assign.
	ErrKeyError
	// ErrStackShapeError is an internal/debug-only invariant violation of
	// counter/stack arrangement; production behavior is undefined but
	// must not be reachable from valid compiler (here: asm.Builder)
	// output.
	ErrStackShapeError
	// ErrInterrupted is raised when a host-signaled interrupt is observed
	// at an instruction boundary.
	ErrInterrupted
)

// TraceEntry is one synthesized stack-trace line.
type TraceEntry struct {
	FunctionName string
	InstructionOffset int
}

// RuntimeError is the error kind the VM raises: every failure detected
// by the VM itself surfaces as a *RuntimeError with a human-readable
// message. An error returned by a native function is not wrapped and
// reaches the host as the native function returned it.
type RuntimeError struct {
	Kind    ErrKind
	Message string
	Trace   []TraceEntry
}

func (e *RuntimeError) Error() string {
	return e.Message
}

func typeErrorIndex(v Value) *RuntimeError {
	return &RuntimeError{
		Kind:    ErrTypeError,
		Message: fmt.Sprintf("attempt to index value from %s", v.Name()),
	}
}

func typeErrorCall(v Value) *RuntimeError {
	return &RuntimeError{
		Kind:    ErrTypeError,
		Message: fmt.Sprintf("attempt to call %s", v.Name()),
	}
}

func stackShapeError(format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Kind:    ErrStackShapeError,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrInterruptedValue is returned by Run when a host interrupt (VM.Interrupt)
// is observed at an instruction boundary.
var ErrInterruptedValue = &RuntimeError{Kind: ErrInterrupted, Message: "interrupted"}

// ErrUnencodableNative is returned by EncodeBootstrap when a Bootstrap's
// constant pool contains a native-function Value, which has no
// serializable identity — native functions are host-provided Go
// closures with no representation outside the process that created
// them.
var ErrUnencodableNative = fmt.Errorf("cannot encode a native-function value")
