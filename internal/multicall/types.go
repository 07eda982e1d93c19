package multicall

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Caller executes a single read-only contract call. It is the only network
// dependency of the builder; implementations must not retry internally.
type Caller interface {
	CallContract(ctx context.Context, msg Msg, block BlockRef, overrides StateOverride) ([]byte, error)
}

// InputKind selects which key of the call object carries the payload.
// Older nodes only understand "data", newer ones prefer "input".
type InputKind int

const (
	// InputKindData sends the payload under "data" only.
	InputKindData InputKind = iota
	// InputKindInput sends the payload under "input" only.
	InputKindInput
	// InputKindBoth sends the payload under both keys.
	InputKindBoth
)

// ParseInputKind parses a config-level input kind name.
func ParseInputKind(s string) (InputKind, error) {
	switch s {
	case "", "data":
		return InputKindData, nil
	case "input":
		return InputKindInput, nil
	case "both":
		return InputKindBoth, nil
	}
	return 0, fmt.Errorf("unknown input kind %q", s)
}

func (k InputKind) String() string {
	switch k {
	case InputKindInput:
		return "input"
	case InputKindBoth:
		return "both"
	default:
		return "data"
	}
}

// Msg is the read-only call handed to a Caller.
type Msg struct {
	To        common.Address
	Data      []byte
	Value     *big.Int // nil or zero for plain reads
	InputKind InputKind
}

// BlockRef pins a call to a chain state: a tag (latest, pending, earliest,
// safe, finalized), a concrete block number, or a block hash. The zero value
// means latest.
type BlockRef struct {
	tag    string
	number *big.Int
	hash   *common.Hash
}

var (
	LatestBlock    = BlockRef{tag: "latest"}
	PendingBlock   = BlockRef{tag: "pending"}
	EarliestBlock  = BlockRef{tag: "earliest"}
	SafeBlock      = BlockRef{tag: "safe"}
	FinalizedBlock = BlockRef{tag: "finalized"}
)

// BlockNumber pins to a concrete block height.
func BlockNumber(n uint64) BlockRef {
	return BlockRef{number: new(big.Int).SetUint64(n)}
}

// BlockHash pins to a specific block by hash.
func BlockHash(h common.Hash) BlockRef {
	return BlockRef{hash: &h}
}

// IsZero reports whether the reference is unset (defaults to latest).
func (b BlockRef) IsZero() bool {
	return b.tag == "" && b.number == nil && b.hash == nil
}

func (b BlockRef) String() string {
	switch {
	case b.hash != nil:
		return b.hash.Hex()
	case b.number != nil:
		return hexutil.EncodeBig(b.number)
	case b.tag != "":
		return b.tag
	}
	return "latest"
}

// MarshalJSON renders the eth_call block parameter: a tag or hex number
// string, or an EIP-1898 blockHash object.
func (b BlockRef) MarshalJSON() ([]byte, error) {
	if b.hash != nil {
		return json.Marshal(map[string]interface{}{"blockHash": b.hash})
	}
	return json.Marshal(b.String())
}

// ParseBlockRef parses a config-level block reference: a known tag or a
// decimal/hex block number.
func ParseBlockRef(s string) (BlockRef, error) {
	switch s {
	case "":
		return BlockRef{}, nil
	case "latest", "pending", "earliest", "safe", "finalized":
		return BlockRef{tag: s}, nil
	}
	n, ok := new(big.Int).SetString(s, 0)
	if !ok || n.Sign() < 0 {
		return BlockRef{}, fmt.Errorf("invalid block reference %q", s)
	}
	return BlockRef{number: n}, nil
}

// StateOverride maps addresses to simulated account changes applied for the
// duration of one call only.
type StateOverride map[common.Address]OverrideAccount

// OverrideAccount is one account's simulated state. Nil/empty fields are
// left untouched. State replaces all storage, StateDiff patches individual
// slots.
type OverrideAccount struct {
	Nonce     *hexutil.Uint64             `json:"nonce,omitempty"`
	Code      hexutil.Bytes               `json:"code,omitempty"`
	Balance   *hexutil.Big                `json:"balance,omitempty"`
	State     map[common.Hash]common.Hash `json:"state,omitempty"`
	StateDiff map[common.Hash]common.Hash `json:"stateDiff,omitempty"`
}
