package multicall

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// DefaultContract is the canonical Multicall3 deployment, reused at the
// same address across chains. https://github.com/mds1/multicall
var DefaultContract = common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11")

// Multicall3 batch entry points. aggregate3 carries no native value;
// aggregate3Value adds a per-call value field and is payable.
const contractABI = `[
  {
    "name": "aggregate3",
    "type": "function",
    "stateMutability": "payable",
    "inputs": [
      {
        "name": "calls",
        "type": "tuple[]",
        "components": [
          {"name": "target", "type": "address"},
          {"name": "allowFailure", "type": "bool"},
          {"name": "callData", "type": "bytes"}
        ]
      }
    ],
    "outputs": [
      {
        "name": "returnData",
        "type": "tuple[]",
        "components": [
          {"name": "success", "type": "bool"},
          {"name": "returnData", "type": "bytes"}
        ]
      }
    ]
  },
  {
    "name": "aggregate3Value",
    "type": "function",
    "stateMutability": "payable",
    "inputs": [
      {
        "name": "calls",
        "type": "tuple[]",
        "components": [
          {"name": "target", "type": "address"},
          {"name": "allowFailure", "type": "bool"},
          {"name": "value", "type": "uint256"},
          {"name": "callData", "type": "bytes"}
        ]
      }
    ],
    "outputs": [
      {
        "name": "returnData",
        "type": "tuple[]",
        "components": [
          {"name": "success", "type": "bool"},
          {"name": "returnData", "type": "bytes"}
        ]
      }
    ]
  }
]`

var contract = mustParseABI(contractABI)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

// call3 matches the Multicall3 aggregate3 call tuple.
type call3 struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

// call3Value matches the Multicall3 aggregate3Value call tuple.
type call3Value struct {
	Target       common.Address
	AllowFailure bool
	Value        *big.Int
	CallData     []byte
}

// callResult matches the per-item reply tuple of both entry points.
type callResult struct {
	Success    bool
	ReturnData []byte
}
