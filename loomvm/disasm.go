package loomvm

import (
	"fmt"
	"strings"
)

// Disassemble renders a Bootstrap as a human-readable instruction
// listing, one line per instruction, nested functions (from
// GenerateClosure params) rendered as indented sub-listings immediately
// after the instruction that references them. Used by cmd/loom's
// -disasm flag.
func Disassemble(b Bootstrap) string {
	var sb strings.Builder
	disassembleInto(&sb, b, "")
	return sb.String()
}

func disassembleInto(sb *strings.Builder, b Bootstrap, indent string) {
	for i, ins := range b {
		fmt.Fprintf(sb, "%s%4d  %-16s%s\n", indent, i, ins.Op, formatParam(ins.Param))
		if ins.Param.Fn != nil {
			fn := ins.Param.Fn
			fmt.Fprintf(sb, "%s      -- function %q (params=%d, upvalues=%v)\n",
				indent, fn.Name, fn.NumParams, fn.UpvalueNames)
			disassembleInto(sb, fn.Instructions, indent+"      ")
		}
	}
}

func formatParam(p Param) string {
	switch p.Kind {
	case ParamNone:
		return ""
	case ParamName:
		return fmt.Sprintf("name=%s", p.Name.GoString())
	case ParamValue:
		if p.Fn != nil {
			return fmt.Sprintf("fn=%s", p.Fn.Name)
		}
		return fmt.Sprintf("value=%s", p.Value.GoString())
	case ParamCounter:
		return fmt.Sprintf("total=%d", p.Total)
	case ParamCounterIndex:
		return fmt.Sprintf("counter_index=%d", p.CounterIndex)
	default:
		return "?"
	}
}
