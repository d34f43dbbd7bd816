package trie

import "encoding/hex"

// HexToBytes maps an ASCII hex string to a byte sequence by packing
// two nibbles per byte, padding an odd-length input with a trailing
// zero nibble. Characters outside [0-9a-fA-F] fail with an
// InvalidHexError naming the offending byte.
func HexToBytes(s string) ([]byte, error) {
	out := make([]byte, (len(s)+1)/2)
	for i := 0; i < len(s); i++ {
		nibble, err := hexNibble(s[i])
		if err != nil {
			if hexErr, ok := err.(*InvalidHexError); ok {
				hexErr.Pos = i
			}
			return nil, err
		}
		if i%2 == 0 {
			out[i/2] = nibble << 4
		} else {
			out[i/2] |= nibble
		}
	}
	return out, nil
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, &InvalidHexError{Char: c}
	}
}

// BytesToHex encodes b as lowercase hex, two characters per byte, so
// HexToBytes(BytesToHex(b)) returns b. In the other direction,
// BytesToHex(HexToBytes(s)) returns s in lowercase, with one trailing
// '0' added when s has odd length (the parity-padding rule).
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// CompressHexStrings applies HexToBytes to every key in keys,
// rejecting the whole set if any key fails to decode.
func CompressHexStrings(keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	for i, k := range keys {
		b, err := HexToBytes(k)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
