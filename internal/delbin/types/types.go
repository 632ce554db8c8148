// Package types holds delbin's scalar type/size model and byte-order
// encoding rules. It is a pure value component: no parsing, no
// evaluation state.
package types

import (
	"encoding/binary"
	"fmt"
)

// Endian is the declared byte order of a schema file.
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

func (e Endian) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

// ScalarTag is one of the eight fixed-width scalar tags. Signed tags
// are accepted syntactically only: encoding is identical to the
// same-width unsigned tag because all arithmetic is carried in u64.
type ScalarTag string

const (
	U8  ScalarTag = "u8"
	U16 ScalarTag = "u16"
	U32 ScalarTag = "u32"
	U64 ScalarTag = "u64"
	I8  ScalarTag = "i8"
	I16 ScalarTag = "i16"
	I32 ScalarTag = "i32"
	I64 ScalarTag = "i64"
)

// IsScalarTag reports whether s names one of the eight scalar tags.
func IsScalarTag(s string) bool {
	switch ScalarTag(s) {
	case U8, U16, U32, U64, I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

// Size returns the tag's width in bytes: 1, 2, 4, or 8.
func (t ScalarTag) Size() (int, error) {
	switch t {
	case U8, I8:
		return 1, nil
	case U16, I16:
		return 2, nil
	case U32, I32:
		return 4, nil
	case U64, I64:
		return 8, nil
	default:
		return 0, fmt.Errorf("types: unknown scalar tag %q", string(t))
	}
}

// EncodeScalar truncates value to the tag's width and writes it in the
// given byte order. No sign extension is performed; the caller supplies
// the already-computed u64 value.
func EncodeScalar(tag ScalarTag, value uint64, endian Endian) ([]byte, error) {
	size, err := tag.Size()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, size)

	switch size {
	case 1:
		buf[0] = byte(value)
	case 2:
		if endian == LittleEndian {
			binary.LittleEndian.PutUint16(buf, uint16(value))
		} else {
			binary.BigEndian.PutUint16(buf, uint16(value))
		}
	case 4:
		if endian == LittleEndian {
			binary.LittleEndian.PutUint32(buf, uint32(value))
		} else {
			binary.BigEndian.PutUint32(buf, uint32(value))
		}
	case 8:
		if endian == LittleEndian {
			binary.LittleEndian.PutUint64(buf, value)
		} else {
			binary.BigEndian.PutUint64(buf, value)
		}
	}

	return buf, nil
}

// Narrows reports whether value does not fit in the tag's declared
// width — used to decide whether W03002 should be emitted.
func Narrows(tag ScalarTag, value uint64) bool {
	size, err := tag.Size()
	if err != nil || size >= 8 {
		return false
	}
	mask := uint64(1)<<(uint(size)*8) - 1
	return value&^mask != 0
}
