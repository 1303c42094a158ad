package decoder

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	errOddHex    = errors.New("malformed hex")
	errBase64    = errors.New("malformed base64")
	errNotUTF8   = errors.New("base64 payload is not utf-8")
	errTooShort  = errors.New("ciphertext too short")
	urlSafeToStd = strings.NewReplacer("-", "+", "_", "/")
)

// XOR keys, cycled by byte position.
const (
	keyHexXor      = "pWB9V)[*4I`nJpp?ozyB~dbr9yt!_n4u"
	keyReversedHex = "X9a(O;FMV2-7VO5x;Ao\x05:dN1NoFs?j,"
	keyTrimmed     = "3SAY~#%Y(V%>5d/Yg\"$G[Lh1rK4a;7ok"
)

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

func shift(b []byte, delta int) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = byte(int(c) + delta)
	}
	return out
}

func xor(b []byte, key string) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = c ^ key[i%len(key)]
	}
	return out
}

// hexPairs decodes consecutive two-character hex groups; a trailing single digit is decoded on its own.
func hexPairs(b []byte) ([]byte, error) {
	out := make([]byte, 0, (len(b)+1)/2)
	for i := 0; i < len(b); i += 2 {
		end := min(i+2, len(b))
		v, err := strconv.ParseUint(string(b[i:end]), 16, 8)
		if err != nil {
			return nil, errOddHex
		}
		out = append(out, byte(v))
	}
	return out, nil
}

// unbase64 decodes standard padded base64 into raw bytes that may still be
// an intermediate, non-text state.
func unbase64(b []byte) ([]byte, error) {
	out, err := base64.StdEncoding.DecodeString(string(b))
	if err != nil {
		return nil, errBase64
	}
	return out, nil
}

// atob is unbase64 for payloads that are the final plaintext, which must be utf-8.
func atob(b []byte) ([]byte, error) {
	out, err := unbase64(b)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(out) {
		return nil, errNotUTF8
	}
	return out, nil
}

func rot13(c byte) byte {
	switch {
	case c >= 'a' && c <= 'z':
		return 'a' + (c-'a'+13)%26
	case c >= 'A' && c <= 'Z':
		return 'A' + (c-'A'+13)%26
	}
	return c
}

// hexXorShiftBase64: hex → xor → -3 → base64.
func hexXorShiftBase64(in string) (string, error) {
	raw, err := hexPairs([]byte(in))
	if err != nil {
		return "", err
	}
	out, err := atob(shift(xor(raw, keyHexXor), -3))
	return string(out), err
}

// rot13Base64: reverse → rot13 → reverse → base64.
func rot13Base64(in string) (string, error) {
	rev := reverse([]byte(in))
	for i, c := range rev {
		rev[i] = rot13(c)
	}
	out, err := atob(reverse(rev))
	return string(out), err
}

// alternateBase64: reverse → keep even positions → base64.
func alternateBase64(in string) (string, error) {
	rev := reverse([]byte(in))
	kept := make([]byte, 0, (len(rev)+1)/2)
	for i := 0; i < len(rev); i += 2 {
		kept = append(kept, rev[i])
	}
	out, err := atob(kept)
	return string(out), err
}

// reversedHexXor: reverse → hex → xor.
func reversedHexXor(in string) (string, error) {
	raw, err := hexPairs(reverse([]byte(in)))
	if err != nil {
		return "", err
	}
	return string(xor(raw, keyReversedHex)), nil
}

// reversedShiftHex: reverse → -1 → hex.
func reversedShiftHex(in string) (string, error) {
	raw, err := hexPairs(shift(reverse([]byte(in)), -1))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// trimmedBase64Xor: drop 10 leading and 16 trailing bytes → base64 → xor.
func trimmedBase64Xor(in string) (string, error) {
	if len(in) < 26 {
		return "", errTooShort
	}
	raw, err := unbase64([]byte(in[10 : len(in)-16]))
	if err != nil {
		return "", err
	}
	return string(xor(raw, keyTrimmed)), nil
}

// caesar3 rotates letters forward by three, wrapping x, y, z to a, b, c.
func caesar3(in string) (string, error) {
	out := []byte(in)
	for i, c := range out {
		switch {
		case c >= 'a' && c <= 'w', c >= 'A' && c <= 'W':
			out[i] = c + 3
		case c >= 'x' && c <= 'z', c >= 'X' && c <= 'Z':
			out[i] = c - 23
		}
	}
	return string(out), nil
}

// urlSafeBase64Shift builds the reverse → url-safe base64 → -delta family.
func urlSafeBase64Shift(delta int) func(string) (string, error) {
	return func(in string) (string, error) {
		std := urlSafeToStd.Replace(string(reverse([]byte(in))))
		raw, err := unbase64([]byte(std))
		if err != nil {
			return "", err
		}
		return string(shift(raw, -delta)), nil
	}
}
