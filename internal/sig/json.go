package sig

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ArgsFromJSON coerces JSON-encoded argument values into the Go values the
// ABI encoder expects for this signature's input types. Integers accept JSON
// numbers, decimal strings or 0x-prefixed hex strings; addresses and byte
// types accept hex strings; arrays and tuples accept JSON arrays.
func (s *Signature) ArgsFromJSON(raw []json.RawMessage) ([]interface{}, error) {
	if len(raw) != len(s.inputs) {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", s.canonical(), len(s.inputs), len(raw))
	}
	args := make([]interface{}, len(raw))
	for i, r := range raw {
		v, err := coerce(s.inputs[i].Type, r)
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s: %w", i, s.canonical(), err)
		}
		args[i] = v
	}
	return args, nil
}

func coerce(t abi.Type, raw json.RawMessage) (interface{}, error) {
	switch t.T {
	case abi.UintTy, abi.IntTy:
		return coerceInt(t, raw)

	case abi.BoolTy:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("expected bool: %w", err)
		}
		return b, nil

	case abi.StringTy:
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, fmt.Errorf("expected string: %w", err)
		}
		return str, nil

	case abi.AddressTy:
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, fmt.Errorf("expected address string: %w", err)
		}
		if !common.IsHexAddress(str) {
			return nil, fmt.Errorf("invalid address %q", str)
		}
		return common.HexToAddress(str), nil

	case abi.BytesTy:
		return coerceHexBytes(raw)

	case abi.FixedBytesTy:
		b, err := coerceHexBytes(raw)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(b))
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil

	case abi.SliceTy, abi.ArrayTy:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("expected array: %w", err)
		}
		if t.T == abi.ArrayTy && len(items) != t.Size {
			return nil, fmt.Errorf("expected %d elements, got %d", t.Size, len(items))
		}
		var out reflect.Value
		if t.T == abi.SliceTy {
			out = reflect.MakeSlice(t.GetType(), len(items), len(items))
		} else {
			out = reflect.New(t.GetType()).Elem()
		}
		for i, item := range items {
			v, err := coerce(*t.Elem, item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(reflect.ValueOf(v))
		}
		return out.Interface(), nil

	case abi.TupleTy:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("expected array for tuple: %w", err)
		}
		if len(items) != len(t.TupleElems) {
			return nil, fmt.Errorf("tuple has %d fields, got %d", len(t.TupleElems), len(items))
		}
		out := reflect.New(t.GetType()).Elem()
		for i, item := range items {
			v, err := coerce(*t.TupleElems[i], item)
			if err != nil {
				return nil, fmt.Errorf("tuple field %d: %w", i, err)
			}
			out.Field(i).Set(reflect.ValueOf(v))
		}
		return out.Interface(), nil

	default:
		return nil, fmt.Errorf("unsupported type %s", t.String())
	}
}

func coerceInt(t abi.Type, raw json.RawMessage) (interface{}, error) {
	var (
		n  = new(big.Int)
		ok bool
	)
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "-0x") {
			n, ok = n.SetString(str, 0)
		} else {
			n, ok = n.SetString(str, 10)
		}
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", str)
		}
	} else {
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return nil, fmt.Errorf("expected integer: %w", err)
		}
		if n, ok = n.SetString(num.String(), 10); !ok {
			return nil, fmt.Errorf("invalid integer %q", num.String())
		}
	}
	return intValue(t, n)
}

// intValue converts n to the exact Go type the ABI encoder requires for t:
// sized native integers for 8/16/32/64-bit widths, *big.Int otherwise.
func intValue(t abi.Type, n *big.Int) (interface{}, error) {
	if t.T == abi.UintTy {
		if n.Sign() < 0 {
			return nil, fmt.Errorf("negative value for %s", t.String())
		}
		switch t.Size {
		case 8, 16, 32, 64:
		default:
			return n, nil
		}
		if !n.IsUint64() || n.Uint64() > maxUint(t.Size) {
			return nil, fmt.Errorf("value %s overflows %s", n, t.String())
		}
		u := n.Uint64()
		switch t.Size {
		case 8:
			return uint8(u), nil
		case 16:
			return uint16(u), nil
		case 32:
			return uint32(u), nil
		}
		return u, nil
	}

	switch t.Size {
	case 8, 16, 32, 64:
	default:
		return n, nil
	}
	if !n.IsInt64() || n.Int64() > maxInt(t.Size) || n.Int64() < minInt(t.Size) {
		return nil, fmt.Errorf("value %s overflows %s", n, t.String())
	}
	v := n.Int64()
	switch t.Size {
	case 8:
		return int8(v), nil
	case 16:
		return int16(v), nil
	case 32:
		return int32(v), nil
	}
	return v, nil
}

func coerceHexBytes(raw json.RawMessage) ([]byte, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return nil, fmt.Errorf("expected hex string: %w", err)
	}
	b, err := hexutil.Decode(str)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", str, err)
	}
	return b, nil
}

func maxUint(size int) uint64 {
	if size == 64 {
		return math.MaxUint64
	}
	return 1<<uint(size) - 1
}

func maxInt(size int) int64 {
	if size == 64 {
		return math.MaxInt64
	}
	return 1<<uint(size-1) - 1
}

func minInt(size int) int64 {
	if size == 64 {
		return math.MinInt64
	}
	return -(1 << uint(size-1))
}
