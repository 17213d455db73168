package codec

import (
	"golang.org/x/text/encoding/charmap"
)

// DecodeName converts a raw Windows-1252 character name to UTF-8.
// Pure ASCII passes through unchanged.
func DecodeName(raw string) string {
	if raw == "" {
		return ""
	}
	// Fast path: if all bytes are ASCII, no conversion needed
	allASCII := true
	for i := 0; i < len(raw); i++ {
		if raw[i] >= 0x80 {
			allASCII = false
			break
		}
	}
	if allASCII {
		return raw
	}
	decoded, err := charmap.Windows1252.NewDecoder().String(raw)
	if err != nil {
		return raw
	}
	return decoded
}
