package sig

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	lru "github.com/hashicorp/golang-lru/v2"
)

// parseCacheSize bounds the cache of parsed signatures. Parsing is pure and
// descriptors are immutable, so cached entries are shared across goroutines.
const parseCacheSize = 512

var parseCache, _ = lru.New[string, *Signature](parseCacheSize)

// Parse parses a human-readable function signature of the form
//
//	name(inputTypes)(outputTypes)
//
// e.g. "balanceOf(address)(uint256)". The output list may be omitted when
// the return value is ignored. Tuples are written in parentheses, arrays
// with the usual suffix: "observe(uint32[])((int56[],uint160[]))".
func Parse(s string) (*Signature, error) {
	if cached, ok := parseCache.Get(s); ok {
		return cached, nil
	}

	trimmed := strings.TrimSpace(s)
	open := strings.IndexByte(trimmed, '(')
	if open <= 0 {
		return nil, fmt.Errorf("invalid signature %q: expected name(inputs)", s)
	}
	name := trimmed[:open]
	if !validName(name) {
		return nil, fmt.Errorf("invalid signature %q: bad function name %q", s, name)
	}

	inEnd, err := matchParen(trimmed, open)
	if err != nil {
		return nil, fmt.Errorf("invalid signature %q: %w", s, err)
	}
	inputs, err := parseArgList(trimmed[open+1 : inEnd])
	if err != nil {
		return nil, fmt.Errorf("invalid signature %q: inputs: %w", s, err)
	}

	outputs := abi.Arguments{}
	if rest := strings.TrimSpace(trimmed[inEnd+1:]); rest != "" {
		if rest[0] != '(' {
			return nil, fmt.Errorf("invalid signature %q: unexpected trailing %q", s, rest)
		}
		outEnd, err := matchParen(rest, 0)
		if err != nil {
			return nil, fmt.Errorf("invalid signature %q: %w", s, err)
		}
		if outEnd != len(rest)-1 {
			return nil, fmt.Errorf("invalid signature %q: unexpected trailing %q", s, rest[outEnd+1:])
		}
		outputs, err = parseArgList(rest[1:outEnd])
		if err != nil {
			return nil, fmt.Errorf("invalid signature %q: outputs: %w", s, err)
		}
	}

	parsed := New(name, inputs, outputs)
	parseCache.Add(s, parsed)
	return parsed, nil
}

// MustParse is like Parse but panics on a malformed signature.
func MustParse(s string) *Signature {
	parsed, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return parsed
}

// parseArgList parses a comma-separated type list into ABI arguments with
// synthesized names (arg0, arg1, ...).
func parseArgList(list string) (abi.Arguments, error) {
	parts := splitTop(list)
	args := make(abi.Arguments, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty type at position %d", i)
		}
		typ, err := parseType(part)
		if err != nil {
			return nil, err
		}
		args = append(args, abi.Argument{
			Name: fmt.Sprintf("arg%d", i),
			Type: typ,
		})
	}
	return args, nil
}

// parseType parses one type expression. Tuple types are expressed in
// parentheses, elementary and array types are delegated to the ABI package.
func parseType(s string) (abi.Type, error) {
	if s[0] == '(' {
		end, err := matchParen(s, 0)
		if err != nil {
			return abi.Type{}, err
		}
		components, err := tupleComponents(s[1:end])
		if err != nil {
			return abi.Type{}, err
		}
		suffix := s[end+1:]
		if !validArraySuffix(suffix) {
			return abi.Type{}, fmt.Errorf("bad array suffix %q in %q", suffix, s)
		}
		return abi.NewType("tuple"+suffix, "", components)
	}
	return abi.NewType(s, "", nil)
}

func tupleComponents(inner string) ([]abi.ArgumentMarshaling, error) {
	parts := splitTop(inner)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty tuple")
	}
	components := make([]abi.ArgumentMarshaling, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty tuple component at position %d", i)
		}
		component, err := componentFor(part, fmt.Sprintf("arg%d", i))
		if err != nil {
			return nil, err
		}
		components = append(components, component)
	}
	return components, nil
}

func componentFor(s, name string) (abi.ArgumentMarshaling, error) {
	if s[0] == '(' {
		end, err := matchParen(s, 0)
		if err != nil {
			return abi.ArgumentMarshaling{}, err
		}
		nested, err := tupleComponents(s[1:end])
		if err != nil {
			return abi.ArgumentMarshaling{}, err
		}
		suffix := s[end+1:]
		if !validArraySuffix(suffix) {
			return abi.ArgumentMarshaling{}, fmt.Errorf("bad array suffix %q in %q", suffix, s)
		}
		return abi.ArgumentMarshaling{
			Name:       name,
			Type:       "tuple" + suffix,
			Components: nested,
		}, nil
	}
	return abi.ArgumentMarshaling{Name: name, Type: s}, nil
}

// splitTop splits a type list on commas at bracket depth zero.
func splitTop(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// matchParen returns the index of the ')' matching the '(' at index open.
func matchParen(s string, open int) (int, error) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unbalanced parentheses")
}

func validName(name string) bool {
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '$':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return len(name) > 0
}

// validArraySuffix accepts "" or any run of [] / [N] groups.
func validArraySuffix(s string) bool {
	for len(s) > 0 {
		if s[0] != '[' {
			return false
		}
		close := strings.IndexByte(s, ']')
		if close < 0 {
			return false
		}
		for i := 1; i < close; i++ {
			if s[i] < '0' || s[i] > '9' {
				return false
			}
		}
		s = s[close+1:]
	}
	return true
}
