package multicall

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

// Builder accumulates calls and aggregates them through the batching
// contract in a single round trip. Add and the With* setters return
// modified copies sharing the caller handle, so existing handles never
// observe later mutations. A single Builder value is not safe for
// concurrent mutation; independent copies are.
type Builder struct {
	calls     []Call
	caller    Caller
	block     BlockRef
	overrides StateOverride
	contract  common.Address
	inputKind InputKind
	logger    zerolog.Logger
}

// New creates a Builder against the canonical Multicall3 deployment.
func New(caller Caller, logger zerolog.Logger) *Builder {
	return &Builder{
		caller:   caller,
		contract: DefaultContract,
		logger:   logger.With().Str("component", "multicall").Logger(),
	}
}

// WithContract returns a copy targeting a different batching contract.
func (b *Builder) WithContract(addr common.Address) *Builder {
	nb := b.clone()
	nb.contract = addr
	return nb
}

// WithBlock returns a copy pinning the aggregation to the given block.
func (b *Builder) WithBlock(block BlockRef) *Builder {
	nb := b.clone()
	nb.block = block
	return nb
}

// WithOverrides returns a copy applying simulated state overrides to the
// aggregation call.
func (b *Builder) WithOverrides(overrides StateOverride) *Builder {
	nb := b.clone()
	nb.overrides = overrides
	return nb
}

// WithInputKind returns a copy using the given payload-encoding convention.
func (b *Builder) WithInputKind(kind InputKind) *Builder {
	nb := b.clone()
	nb.inputKind = kind
	return nb
}

// Add returns a copy with call appended. Order is preserved; results come
// back in insertion order. No deduplication.
func (b *Builder) Add(call Call) *Builder {
	nb := b.clone()
	nb.calls = append(nb.calls, call)
	return nb
}

// Reset returns a copy with no queued calls. Caller, contract, block,
// overrides and input kind are retained.
func (b *Builder) Reset() *Builder {
	nb := b.clone()
	nb.calls = nil
	return nb
}

// Len returns the number of queued calls.
func (b *Builder) Len() int {
	return len(b.calls)
}

// Empty reports whether no calls are queued.
func (b *Builder) Empty() bool {
	return len(b.calls) == 0
}

func (b *Builder) clone() *Builder {
	nb := *b
	nb.calls = append([]Call(nil), b.calls...)
	return &nb
}

// Aggregate encodes all queued calls, performs one read-only call against
// the batching contract and decodes every item with its own call's
// signature. The result slice has exactly one entry per queued call, in
// insertion order. Reverts of calls marked AllowFailure come back as inline
// Failure entries; every other problem aborts the whole aggregation with no
// results. There are no retries; callers wrap Aggregate if they need them.
func (b *Builder) Aggregate(ctx context.Context) ([]Result, error) {
	if b.caller == nil {
		return nil, errors.New("no caller configured")
	}

	method, payload, value, err := b.encodeCalls()
	if err != nil {
		return nil, err
	}

	b.logger.Debug().
		Int("calls", len(b.calls)).
		Str("contract", b.contract.Hex()).
		Str("method", method).
		Str("block", b.block.String()).
		Msg("aggregating batch")

	raw, err := b.caller.CallContract(ctx, Msg{
		To:        b.contract,
		Data:      payload,
		Value:     value,
		InputKind: b.inputKind,
	}, b.block, b.overrides)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransportFailed, err)
	}

	var items []callResult
	if err := contract.UnpackIntoInterface(&items, method, raw); err != nil {
		return nil, fmt.Errorf("%w: %s reply: %w", ErrDecodeFailed, method, err)
	}
	if len(items) != len(b.calls) {
		return nil, fmt.Errorf("%w: sent %d calls, got %d results", ErrCountMismatch, len(b.calls), len(items))
	}

	results := make([]Result, len(items))
	for i, item := range items {
		if !item.Success {
			results[i] = Result{Failure: &Failure{Index: i, ReturnData: item.ReturnData}}
			continue
		}
		values, err := b.calls[i].signature.DecodeOutput(item.ReturnData)
		if err != nil {
			return nil, fmt.Errorf("%w: call %d: %w", ErrDecodeFailed, i, err)
		}
		results[i] = Result{Values: values}
	}
	return results, nil
}

// encodeCalls encodes every queued call and packs the outer batch payload.
// aggregate3Value is selected as soon as any call carries native value; the
// outer message value is the sum over all calls.
func (b *Builder) encodeCalls() (string, []byte, *big.Int, error) {
	withValue := false
	for _, c := range b.calls {
		if c.value != nil && c.value.Sign() != 0 {
			withValue = true
			break
		}
	}

	if withValue {
		total := new(big.Int)
		items := make([]call3Value, len(b.calls))
		for i, c := range b.calls {
			data, err := b.encodeCall(i, c)
			if err != nil {
				return "", nil, nil, err
			}
			items[i] = call3Value{
				Target:       c.target,
				AllowFailure: c.allowFailure,
				Value:        c.callValue(),
				CallData:     data,
			}
			total.Add(total, c.callValue())
		}
		payload, err := contract.Pack("aggregate3Value", items)
		if err != nil {
			return "", nil, nil, fmt.Errorf("%w: packing aggregate3Value: %w", ErrEncodeFailed, err)
		}
		return "aggregate3Value", payload, total, nil
	}

	items := make([]call3, len(b.calls))
	for i, c := range b.calls {
		data, err := b.encodeCall(i, c)
		if err != nil {
			return "", nil, nil, err
		}
		items[i] = call3{
			Target:       c.target,
			AllowFailure: c.allowFailure,
			CallData:     data,
		}
	}
	payload, err := contract.Pack("aggregate3", items)
	if err != nil {
		return "", nil, nil, fmt.Errorf("%w: packing aggregate3: %w", ErrEncodeFailed, err)
	}
	return "aggregate3", payload, nil, nil
}

func (b *Builder) encodeCall(i int, c Call) ([]byte, error) {
	if c.signature == nil {
		return nil, fmt.Errorf("%w: call %d has no signature", ErrEncodeFailed, i)
	}
	data, err := c.signature.EncodeInput(c.args...)
	if err != nil {
		return nil, fmt.Errorf("%w: call %d (%s): %w", ErrEncodeFailed, i, c.signature, err)
	}
	return data, nil
}
