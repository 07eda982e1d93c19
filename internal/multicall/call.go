package multicall

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"multigofer/internal/sig"
)

// Call is one pending sub-call: a target contract, the argument values and
// the runtime signature used to encode them and decode the reply. The
// signature never goes on the wire. Calls are plain values; the setters
// return modified copies, so handles never alias.
type Call struct {
	target       common.Address
	args         []interface{}
	signature    *sig.Signature
	allowFailure bool
	value        *big.Int
}

// NewCall builds a call against target described by s. Arguments are not
// validated here; mismatches surface when the batch is encoded.
func NewCall(target common.Address, s *sig.Signature, args ...interface{}) Call {
	return Call{
		target:    target,
		args:      args,
		signature: s,
	}
}

// AllowFailure returns a copy of the call with the failure-tolerance flag
// set. A tolerated on-chain revert becomes a per-call Failure result instead
// of reverting the whole batch.
func (c Call) AllowFailure(allow bool) Call {
	c.allowFailure = allow
	return c
}

// WithValue returns a copy of the call carrying the given native-asset
// amount.
func (c Call) WithValue(value *big.Int) Call {
	c.value = value
	return c
}

// Target returns the call's destination contract.
func (c Call) Target() common.Address {
	return c.target
}

// Signature returns the call's runtime signature descriptor.
func (c Call) Signature() *sig.Signature {
	return c.signature
}

func (c Call) callValue() *big.Int {
	if c.value == nil {
		return new(big.Int)
	}
	return c.value
}

// Failure records one sub-call that reverted on-chain: its position in the
// batch and the raw revert data.
type Failure struct {
	Index      int
	ReturnData []byte
}

// Result is the outcome of one sub-call: decoded values on success, a
// Failure on a tolerated revert. Exactly one of the two is set.
type Result struct {
	Values  []interface{}
	Failure *Failure
}

// Failed reports whether this sub-call reverted.
func (r Result) Failed() bool {
	return r.Failure != nil
}
