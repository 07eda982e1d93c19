package sig

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signature describes a contract function known only at runtime: its name
// plus ordered input and output types. It drives both call-data encoding and
// return-data decoding without generated bindings.
type Signature struct {
	name     string
	inputs   abi.Arguments
	outputs  abi.Arguments
	selector [4]byte
}

// New builds a Signature from go-ethereum ABI argument metadata.
func New(name string, inputs, outputs abi.Arguments) *Signature {
	s := &Signature{
		name:    name,
		inputs:  inputs,
		outputs: outputs,
	}
	copy(s.selector[:], crypto.Keccak256([]byte(s.canonical())))
	return s
}

// Name returns the function name.
func (s *Signature) Name() string {
	return s.name
}

// Selector returns the 4-byte call-data selector.
func (s *Signature) Selector() [4]byte {
	return s.selector
}

// Inputs returns the declared input types.
func (s *Signature) Inputs() abi.Arguments {
	return s.inputs
}

// Outputs returns the declared output types.
func (s *Signature) Outputs() abi.Arguments {
	return s.outputs
}

// String returns the canonical signature, e.g. "balanceOf(address)".
func (s *Signature) String() string {
	return s.canonical()
}

// EncodeInput packs args against the declared input types, in order, and
// prefixes the selector. Argument count or type mismatches surface as errors
// from the ABI encoder.
func (s *Signature) EncodeInput(args ...interface{}) ([]byte, error) {
	packed, err := s.inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("packing arguments for %s: %w", s.canonical(), err)
	}
	out := make([]byte, 0, 4+len(packed))
	out = append(out, s.selector[:]...)
	return append(out, packed...), nil
}

// DecodeOutput unpacks return data against the declared output types, in
// order. Truncated or malformed data surfaces as an error from the ABI
// decoder.
func (s *Signature) DecodeOutput(data []byte) ([]interface{}, error) {
	values, err := s.outputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpacking return data for %s: %w", s.canonical(), err)
	}
	return values, nil
}

func (s *Signature) canonical() string {
	types := make([]string, len(s.inputs))
	for i, in := range s.inputs {
		types[i] = in.Type.String()
	}
	return s.name + "(" + strings.Join(types, ",") + ")"
}
