package seaport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"
)

// ParseBigInt converts an untrusted JSON value into a non-negative *big.Int.
// Accepted forms: decimal strings, 0x-prefixed hex strings, and integral JSON
// numbers. Negative, fractional, and non-numeric inputs are rejected. Every
// numeric field of a stored order funnels through here so amounts above 2^53
// never pass through a float.
func ParseBigInt(v any) (*big.Int, error) {
	switch n := v.(type) {
	case string:
		return parseBigString(n)
	case json.Number:
		return parseBigString(n.String())
	case float64:
		// Only reachable when a decoder was not configured with UseNumber.
		if n != math.Trunc(n) {
			return nil, fmt.Errorf("seaport: non-integral number %v", n)
		}
		if n < 0 {
			return nil, fmt.Errorf("seaport: negative number %v", n)
		}
		f, _ := big.NewFloat(n).Int(nil)
		return f, nil
	case *big.Int:
		if n.Sign() < 0 {
			return nil, fmt.Errorf("seaport: negative number %s", n)
		}
		return new(big.Int).Set(n), nil
	default:
		return nil, fmt.Errorf("seaport: unsupported numeric value %T", v)
	}
}

func parseBigString(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("seaport: empty numeric string")
	}
	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("seaport: non-numeric string %q", s)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("seaport: negative string %q", s)
	}
	return n, nil
}

// jsonBig decodes a JSON number or numeric string through ParseBigInt. The
// zero value carries a nil big.Int, which normalization treats as "field
// absent".
type jsonBig struct {
	val *big.Int
}

func (b *jsonBig) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	v, err := ParseBigInt(raw)
	if err != nil {
		return err
	}
	b.val = v
	return nil
}

// orZero returns the decoded value, or a fresh zero when the field was absent.
func (b jsonBig) orZero() *big.Int {
	if b.val == nil {
		return new(big.Int)
	}
	return b.val
}
