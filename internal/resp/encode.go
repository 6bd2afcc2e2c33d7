package resp

import (
	"bytes"
	"strconv"
)

// Encode appends v's canonical RESP wire encoding to dst and returns the
// extended slice.
func Encode(dst []byte, v Value) []byte {
	switch v.Kind {
	case KindSimpleString:
		dst = append(dst, '+')
		dst = append(dst, v.Str...)
		return append(dst, '\r', '\n')
	case KindError:
		dst = append(dst, '-')
		dst = append(dst, v.Str...)
		return append(dst, '\r', '\n')
	case KindInteger:
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, v.Int, 10)
		return append(dst, '\r', '\n')
	case KindBulkString:
		if v.Null {
			return append(dst, '$', '-', '1', '\r', '\n')
		}
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(v.Bulk)), 10)
		dst = append(dst, '\r', '\n')
		dst = append(dst, v.Bulk...)
		return append(dst, '\r', '\n')
	case KindArray:
		if v.Null {
			return append(dst, '*', '-', '1', '\r', '\n')
		}
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(v.Array)), 10)
		dst = append(dst, '\r', '\n')
		for _, elem := range v.Array {
			dst = Encode(dst, elem)
		}
		return dst
	default:
		return dst
	}
}

// Bytes returns v's canonical RESP wire encoding as a fresh byte slice.
func Bytes(v Value) []byte {
	return Encode(make([]byte, 0, 32), v)
}

// EncodeAll appends the concatenated encoding of vs to dst.
func EncodeAll(dst []byte, vs []Value) []byte {
	for _, v := range vs {
		dst = Encode(dst, v)
	}
	return dst
}

var crlf = []byte("\r\n")

func indexCRLF(b []byte) int {
	return bytes.Index(b, crlf)
}
