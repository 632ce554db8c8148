package delbin

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ToHexString renders data as a lowercase hex string with no separators.
func ToHexString(data []byte) string {
	return hex.EncodeToString(data)
}

// FromHexString parses a hex string back into bytes. Surrounding
// whitespace is ignored; the string must have an even number of hex
// digits.
func FromHexString(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("delbin: invalid hex string: %w", err)
	}
	return data, nil
}

// HexDump renders data as a classic 16-byte-per-line hex dump with an
// offset column and an ASCII gutter, for inspecting a generated header
// by eye.
func HexDump(data []byte) string {
	var b strings.Builder
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		row := data[off:end]

		fmt.Fprintf(&b, "%08x  ", off)
		for i := 0; i < 16; i++ {
			if i < len(row) {
				fmt.Fprintf(&b, "%02x ", row[i])
			} else {
				b.WriteString("   ")
			}
			if i == 7 {
				b.WriteByte(' ')
			}
		}

		b.WriteString(" |")
		for _, c := range row {
			if c >= 0x20 && c < 0x7f {
				b.WriteByte(c)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteString("|\n")
	}
	return b.String()
}
