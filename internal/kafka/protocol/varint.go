// Package protocol implements the Kafka wire-protocol codec: fixed-width
// integers, the "compact"/varint length-prefix families, tagged fields, and
// message framing. It has no knowledge of any particular API's request or
// response shape.
package protocol

import "github.com/pkg/errors"

// ErrMalformedVarint is returned when a varint runs past its maximum byte
// length without a terminating (MSB=0) byte.
var ErrMalformedVarint = errors.New("malformed varint: no terminating byte")

// maxUvarintBytes bounds decode_uvarint per spec.md 4.1: 10 bytes covers a
// full uint64, 11 is read as a I-told-you-so guard matching the one extra
// byte the reference decoder tolerates before giving up.
const maxUvarintBytes = 10

// appendUvarint appends the unsigned LEB128 encoding of v to dst.
func appendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// sizeUvarint returns len(appendUvarint(nil, v)) without allocating.
func sizeUvarint(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// decodeUvarint reads a uvarint from the front of b, returning the value and
// the number of bytes consumed. n == 0 signals the slice ended before a
// terminating byte was found (distinct from a malformed/overlong varint).
func decodeUvarint(b []byte) (value uint64, n int, err error) {
	var shift uint
	for n = 0; n < len(b); n++ {
		c := b[n]
		if shift >= 64 {
			return 0, 0, errors.WithStack(ErrMalformedVarint)
		}
		value |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return value, n + 1, nil
		}
		shift += 7
		if n+1 >= maxUvarintBytes+1 {
			return 0, 0, errors.WithStack(ErrMalformedVarint)
		}
	}
	return 0, 0, nil
}

// zigzagEncode32 maps a signed i32 onto the unsigned range so small-magnitude
// negatives stay small, per spec.md 4.1.
func zigzagEncode32(v int32) uint32 {
	return uint32(v<<1) ^ uint32(v>>31)
}

func zigzagDecode32(v uint32) int32 {
	return int32(v>>1) ^ -int32(v&1)
}

func zigzagEncode64(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

func zigzagDecode64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

func sizeZigzag32(v int32) int {
	return sizeUvarint(uint64(zigzagEncode32(v)))
}

func sizeZigzag64(v int64) int {
	return sizeUvarint(uint64(zigzagEncode64(v)))
}
