package loomvm

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode encodes in canonical mode so two encodings of the same
// Bootstrap are byte-identical — encoding/decoding round trips and
// encoded-output diffs in tests can compare bytes directly instead of
// decoding both sides first.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("loomvm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// wireInstruction and wireParam mirror Instruction and Param for the
// wire format, kept separate from the VM's own types so the hot dispatch
// path (instruction.go) never has to carry cbor struct tags.
type wireInstruction struct {
	Op    OpCode    `cbor:"1,keyasint"`
	Param wireParam `cbor:"2,keyasint"`
}

type wireParam struct {
	Kind         ParamKind    `cbor:"1,keyasint"`
	Name         Value        `cbor:"2,keyasint"`
	Value        Value        `cbor:"3,keyasint"`
	Fn           *wireFunction `cbor:"4,keyasint,omitempty"`
	Total        int          `cbor:"5,keyasint"`
	CounterIndex int          `cbor:"6,keyasint"`
}

type wireFunction struct {
	Name         string            `cbor:"1,keyasint"`
	Instructions []wireInstruction `cbor:"2,keyasint"`
	NumParams    int               `cbor:"3,keyasint"`
	UpvalueNames []string          `cbor:"4,keyasint"`
}

func toWireInstructions(b Bootstrap) ([]wireInstruction, error) {
	out := make([]wireInstruction, len(b))
	for i, ins := range b {
		wp, err := toWireParam(ins.Param)
		if err != nil {
			return nil, err
		}
		out[i] = wireInstruction{Op: ins.Op, Param: wp}
	}
	return out, nil
}

func toWireParam(p Param) (wireParam, error) {
	wp := wireParam{
		Kind:         p.Kind,
		Name:         p.Name,
		Value:        p.Value,
		Total:        p.Total,
		CounterIndex: p.CounterIndex,
	}
	if p.Fn != nil {
		wf, err := toWireFunction(p.Fn)
		if err != nil {
			return wireParam{}, err
		}
		wp.Fn = wf
	}
	return wp, nil
}

func toWireFunction(fn *Function) (*wireFunction, error) {
	wins, err := toWireInstructions(fn.Instructions)
	if err != nil {
		return nil, err
	}
	return &wireFunction{
		Name:         fn.Name,
		Instructions: wins,
		NumParams:    fn.NumParams,
		UpvalueNames: fn.UpvalueNames,
	}, nil
}

func fromWireInstructions(wins []wireInstruction) (Bootstrap, error) {
	out := make(Bootstrap, len(wins))
	for i, w := range wins {
		p, err := fromWireParam(w.Param)
		if err != nil {
			return nil, err
		}
		out[i] = Instruction{Op: w.Op, Param: p}
	}
	return out, nil
}

func fromWireParam(w wireParam) (Param, error) {
	p := Param{
		Kind:         w.Kind,
		Name:         w.Name,
		Value:        w.Value,
		Total:        w.Total,
		CounterIndex: w.CounterIndex,
	}
	if w.Fn != nil {
		fn, err := fromWireFunction(w.Fn)
		if err != nil {
			return Param{}, err
		}
		p.Fn = fn
	}
	return p, nil
}

func fromWireFunction(w *wireFunction) (*Function, error) {
	ins, err := fromWireInstructions(w.Instructions)
	if err != nil {
		return nil, err
	}
	return &Function{
		Name:         w.Name,
		Instructions: ins,
		NumParams:    w.NumParams,
		UpvalueNames: w.UpvalueNames,
	}, nil
}

// EncodeBootstrap serializes a Bootstrap to CBOR. It fails with
// ErrUnencodableNative if any constant in b is a native function,
// table, or closure — none of those have a representation that survives
// a round trip through a different process's Pool.
func EncodeBootstrap(b Bootstrap) ([]byte, error) {
	wins, err := toWireInstructions(b)
	if err != nil {
		return nil, err
	}
	data, err := cborEncMode.Marshal(wins)
	if err != nil {
		return nil, fmt.Errorf("loomvm: encode bootstrap: %w", err)
	}
	return data, nil
}

// DecodeBootstrap deserializes a Bootstrap previously produced by
// EncodeBootstrap.
func DecodeBootstrap(data []byte) (Bootstrap, error) {
	var wins []wireInstruction
	if err := cbor.Unmarshal(data, &wins); err != nil {
		return nil, fmt.Errorf("loomvm: decode bootstrap: %w", err)
	}
	return fromWireInstructions(wins)
}

// MarshalCBOR implements cbor.Marshaler. Only the four constant-bearing
// kinds (Nil, Bool, Number, String) can appear in a Bootstrap's constant
// pool; Table, Closure, and NativeFunction values are runtime-only and
// have no stable cross-process identity, so encoding one of those
// returns ErrUnencodableNative.
func (v Value) MarshalCBOR() ([]byte, error) {
	type pair struct {
		_       struct{} `cbor:",toarray"`
		Kind    uint8
		Payload any
	}
	switch v.kind {
	case KindNil:
		return cbor.Marshal(pair{Kind: uint8(KindNil), Payload: nil})
	case KindBool:
		return cbor.Marshal(pair{Kind: uint8(KindBool), Payload: v.b})
	case KindNumber:
		return cbor.Marshal(pair{Kind: uint8(KindNumber), Payload: v.n})
	case KindString:
		return cbor.Marshal(pair{Kind: uint8(KindString), Payload: v.s})
	default:
		return nil, ErrUnencodableNative
	}
}

// UnmarshalCBOR implements cbor.Unmarshaler, the inverse of MarshalCBOR.
func (v *Value) UnmarshalCBOR(data []byte) error {
	var wire struct {
		_       struct{} `cbor:",toarray"`
		Kind    uint8
		Payload cbor.RawMessage
	}
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch ValueKind(wire.Kind) {
	case KindNil:
		*v = NilValue
	case KindBool:
		var b bool
		if err := cbor.Unmarshal(wire.Payload, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case KindNumber:
		var n float64
		if err := cbor.Unmarshal(wire.Payload, &n); err != nil {
			return err
		}
		*v = NumberValue(n)
	case KindString:
		var s string
		if err := cbor.Unmarshal(wire.Payload, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	default:
		return fmt.Errorf("loomvm: cannot decode value kind %d from wire format", wire.Kind)
	}
	return nil
}
