package action

import (
	"strings"

	"github.com/pkg/errors"
)

// Canonical key tokens accepted in macro definitions. Platform dispatchers
// translate these to virtual-key codes or X keysyms.
var namedKeys = map[string]bool{
	"ctrl":  true,
	"alt":   true,
	"shift": true,
	"win":   true,
	"enter": true,
	"space": true,
	"tab":   true,
	"esc":   true,
}

// Normalize lowercases and validates macro key tokens. Letters, digits,
// F1..F12 and the named keys above are accepted; anything else is an error so
// a typo in the configuration surfaces before the first dispatch.
func Normalize(keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, errors.New("empty key combination")
	}
	out := make([]string, 0, len(keys))
	for _, raw := range keys {
		k := strings.ToLower(strings.TrimSpace(raw))
		if k == "" {
			continue
		}
		if !validToken(k) {
			return nil, errors.Errorf("unknown key token %q", raw)
		}
		out = append(out, k)
	}
	if len(out) == 0 {
		return nil, errors.New("empty key combination")
	}
	return out, nil
}

func validToken(k string) bool {
	if namedKeys[k] {
		return true
	}
	if len(k) == 1 {
		c := k[0]
		return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
	}
	if fn, ok := functionKeyNumber(k); ok {
		return fn >= 1 && fn <= 12
	}
	return false
}

// functionKeyNumber parses "f1".."f12" tokens.
func functionKeyNumber(k string) (int, bool) {
	if len(k) < 2 || len(k) > 3 || k[0] != 'f' {
		return 0, false
	}
	n := 0
	for _, c := range k[1:] {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
