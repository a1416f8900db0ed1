package logs

import "github.com/reusee/dscope"

// Module provides Logger, NewSpan, and Writer to a dscope composition
// root (cmd/loom/module.go).
type Module struct {
	dscope.Module
}

// Span identifies one traced unit of work, propagated through a
// context.Context and attached to every log record emitted within it.
type Span string

type spanKey struct{}

// SpanKey is the context key NewSpan and the fanout Handler use to carry
// the active Span.
var SpanKey = spanKey{}
