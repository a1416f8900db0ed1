package main

import (
	"github.com/loomlang/loom/logs"
	"github.com/reusee/dscope"
)

// Module is the composition root: every provider method hanging off
// Module or one of its embedded sibling Modules becomes available to
// scope.Call's callback.
type Module struct {
	dscope.Module
	Logs logs.Module
}
