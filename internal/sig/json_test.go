package sig

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func rawArgs(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(items))
	for i, s := range items {
		out[i] = json.RawMessage(s)
	}
	return out
}

func TestArgsFromJSON_Integers(t *testing.T) {
	s := MustParse("f(uint256,uint8,int64)")

	args, err := s.ArgsFromJSON(rawArgs(`"0x7b"`, `200`, `"-42"`))
	if err != nil {
		t.Fatalf("ArgsFromJSON: %v", err)
	}

	if got := args[0].(*big.Int); got.Int64() != 123 {
		t.Errorf("args[0] = %v, want 123", got)
	}
	if got := args[1].(uint8); got != 200 {
		t.Errorf("args[1] = %v, want 200", got)
	}
	if got := args[2].(int64); got != -42 {
		t.Errorf("args[2] = %v, want -42", got)
	}
}

func TestArgsFromJSON_IntegerOverflow(t *testing.T) {
	s := MustParse("f(uint8)")
	if _, err := s.ArgsFromJSON(rawArgs(`256`)); err == nil {
		t.Error("expected overflow error")
	}

	s = MustParse("g(uint256)")
	if _, err := s.ArgsFromJSON(rawArgs(`"-1"`)); err == nil {
		t.Error("expected negative-value error")
	}
}

func TestArgsFromJSON_AddressAndBytes(t *testing.T) {
	s := MustParse("f(address,bytes,bytes4,bool,string)")

	args, err := s.ArgsFromJSON(rawArgs(
		`"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"`,
		`"0xdeadbeef"`,
		`"0x01020304"`,
		`true`,
		`"hello"`,
	))
	if err != nil {
		t.Fatalf("ArgsFromJSON: %v", err)
	}

	want := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	if args[0].(common.Address) != want {
		t.Errorf("args[0] = %v", args[0])
	}
	if got := args[1].([]byte); len(got) != 4 || got[0] != 0xde {
		t.Errorf("args[1] = %x", got)
	}
	if got := args[2].([4]byte); got != [4]byte{1, 2, 3, 4} {
		t.Errorf("args[2] = %x", got)
	}
	if args[3].(bool) != true {
		t.Errorf("args[3] = %v", args[3])
	}
	if args[4].(string) != "hello" {
		t.Errorf("args[4] = %v", args[4])
	}
}

func TestArgsFromJSON_Arrays(t *testing.T) {
	s := MustParse("f(address[],uint256[2])")

	args, err := s.ArgsFromJSON(rawArgs(
		`["0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2","0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"]`,
		`["1","2"]`,
	))
	if err != nil {
		t.Fatalf("ArgsFromJSON: %v", err)
	}

	addrs := args[0].([]common.Address)
	if len(addrs) != 2 {
		t.Fatalf("len(addrs) = %d, want 2", len(addrs))
	}
	nums := args[1].([2]*big.Int)
	if nums[0].Int64() != 1 || nums[1].Int64() != 2 {
		t.Errorf("nums = %v", nums)
	}

	// Fixed array length must match exactly
	if _, err := s.ArgsFromJSON(rawArgs(`[]`, `["1"]`)); err == nil {
		t.Error("expected length error for fixed array")
	}
}

func TestArgsFromJSON_CoercedArgsEncode(t *testing.T) {
	s := MustParse("transfer(address,uint256)(bool)")
	args, err := s.ArgsFromJSON(rawArgs(`"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"`, `"1000000000000000000"`))
	if err != nil {
		t.Fatalf("ArgsFromJSON: %v", err)
	}
	data, err := s.EncodeInput(args...)
	if err != nil {
		t.Fatalf("EncodeInput: %v", err)
	}
	if len(data) != 4+64 {
		t.Errorf("len(data) = %d, want 68", len(data))
	}
}

func TestArgsFromJSON_WrongCount(t *testing.T) {
	s := MustParse("balanceOf(address)(uint256)")
	if _, err := s.ArgsFromJSON(nil); err == nil {
		t.Error("expected argument count error")
	}
}

func TestArgsFromJSON_InvalidAddress(t *testing.T) {
	s := MustParse("balanceOf(address)(uint256)")
	if _, err := s.ArgsFromJSON(rawArgs(`"0x1234"`)); err == nil {
		t.Error("expected invalid address error")
	}
}
