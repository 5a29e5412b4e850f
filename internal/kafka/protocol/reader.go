package protocol

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// LengthEncoding names one of the length-prefix conventions the wire format
// uses; see spec.md §3 and the "type-parameterized length prefixes" design
// note in §9. Every String/Bytes/Array alias in the data model is this one
// abstraction instantiated with a LengthEncoding and a null sentinel.
type LengthEncoding int

const (
	// LenInt16 is a fixed i16 length; -1 denotes null where nullable.
	LenInt16 LengthEncoding = iota
	// LenInt32 is a fixed i32 length; -1 denotes null where nullable.
	LenInt32
	// LenCompact is an unsigned varint storing length+1; 0 denotes null
	// where nullable, or is illegal where not.
	LenCompact
	// LenVarint is a zig-zag signed varint length; -1 denotes null.
	LenVarint
)

// Reader is a pull-parser over an in-memory frame. It never looks ahead of
// what it has been told to hold, and it accumulates the first error seen so
// callers can chain reads and check err once at the end, mirroring the
// kbin.Reader shape used by the pack's franz-go protocol layer.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader wraps buf for sequential decoding. buf is not copied; callers
// must not mutate it while the Reader is in use.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Err returns the first decode error encountered, if any.
func (r *Reader) Err() error {
	return r.err
}

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int {
	if r.off > len(r.buf) {
		return 0
	}
	return len(r.buf) - r.off
}

// Rest returns (and consumes) every remaining byte, for handlers that parse
// a trailing run as opaque tagged fields (spec.md §4.7 DescribeTopicPartitions
// note on response_partition_limit/cursor).
func (r *Reader) Rest() []byte {
	if r.err != nil {
		return nil
	}
	b := r.buf[r.off:]
	r.off = len(r.buf)
	return b
}

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Sub reads exactly n bytes and returns a fresh Reader over them, leaving r
// positioned just after. If r is already in an error state, or n bytes
// aren't available, the returned Reader carries ErrTruncated (or r's
// existing error) and r.Err() reports it too.
func (r *Reader) Sub(n int) *Reader {
	b := r.raw(n)
	if b == nil {
		sub := NewReader(nil)
		if r.err != nil {
			sub.err = r.err
		} else {
			sub.err = errors.WithStack(ErrTruncated)
		}
		return sub
	}
	return NewReader(b)
}

// raw reads exactly n bytes, failing with ErrTruncated if that many aren't
// available.
func (r *Reader) raw(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.fail(errors.WithStack(ErrTruncated))
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

// Uint8 reads one unsigned byte.
func (r *Reader) Uint8() uint8 {
	b := r.raw(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Int8 reads one signed byte.
func (r *Reader) Int8() int8 {
	return int8(r.Uint8())
}

// Bool decodes a boolean as a single byte: 1 is true, anything else false.
func (r *Reader) Bool() bool {
	return r.Uint8() != 0
}

// Int16 reads a big-endian i16.
func (r *Reader) Int16() int16 {
	b := r.raw(2)
	if b == nil {
		return 0
	}
	return int16(binary.BigEndian.Uint16(b))
}

// Int32 reads a big-endian i32.
func (r *Reader) Int32() int32 {
	b := r.raw(4)
	if b == nil {
		return 0
	}
	return int32(binary.BigEndian.Uint32(b))
}

// Uint32 reads a big-endian u32, used for the record batch CRC.
func (r *Reader) Uint32() uint32 {
	b := r.raw(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// Int64 reads a big-endian i64.
func (r *Reader) Int64() int64 {
	b := r.raw(8)
	if b == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

// Uvarint reads an unsigned LEB128 varint (spec.md 4.1 decode_uvarint).
func (r *Reader) Uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n, err := decodeUvarint(r.buf[r.off:])
	if err != nil {
		r.fail(err)
		return 0
	}
	if n == 0 {
		r.fail(errors.WithStack(ErrTruncated))
		return 0
	}
	r.off += n
	return v
}

// Varint reads a zig-zag encoded signed i32 (the "varint" length convention,
// and Record.offset_delta / Record.length).
func (r *Reader) Varint() int32 {
	return zigzagDecode32(uint32(r.Uvarint()))
}

// Varlong reads a zig-zag encoded signed i64 (Record.timestamp_delta).
func (r *Reader) Varlong() int64 {
	return zigzagDecode64(r.Uvarint())
}

// UUID reads the 16 raw bytes of a Kafka UUID.
func (r *Reader) UUID() UUID {
	b := r.raw(uuidSize)
	if b == nil {
		return NilUUID
	}
	var u UUID
	copy(u[:], b)
	return u
}

// length reads one length field per the given encoding, reporting whether
// the wire value was the "null" sentinel for that encoding.
func (r *Reader) length(enc LengthEncoding) (n int, isNull bool) {
	switch enc {
	case LenInt16:
		v := r.Int16()
		if v < 0 {
			return 0, true
		}
		return int(v), false
	case LenInt32:
		v := r.Int32()
		if v < 0 {
			return 0, true
		}
		return int(v), false
	case LenCompact:
		v := r.Uvarint()
		if v == 0 {
			return 0, true
		}
		return int(v - 1), false
	case LenVarint:
		v := r.Varint()
		if v < 0 {
			return 0, true
		}
		return int(v), false
	default:
		r.fail(errors.Errorf("unknown length encoding %d", enc))
		return 0, true
	}
}

// bytesOf reads a length-prefixed byte run using enc. A null sentinel
// decodes to a nil slice; any other length (including 0) decodes to a
// non-nil slice.
func (r *Reader) bytesOf(enc LengthEncoding) []byte {
	n, isNull := r.length(enc)
	if r.err != nil {
		return nil
	}
	if isNull {
		return nil
	}
	b := r.raw(n)
	if b == nil && n == 0 {
		return []byte{}
	}
	return b
}

// requireNonNull converts a nil decode (the type's null sentinel fired) into
// ErrProtocolViolation, for the non-nullable String/Bytes/CompactString/
// CompactBytes aliases.
func (r *Reader) requireNonNull(b []byte, wasNull bool) []byte {
	if r.err != nil {
		return nil
	}
	if wasNull {
		r.fail(errors.WithStack(ErrProtocolViolation))
		return nil
	}
	return b
}

// String decodes the non-nullable String alias (i16 length).
func (r *Reader) String() string {
	n, isNull := r.length(LenInt16)
	b := r.raw(n)
	return string(r.requireNonNull(b, isNull))
}

// NullableString decodes NullableString (i16 length, -1 => nil).
func (r *Reader) NullableString() *string {
	b := r.bytesOf(LenInt16)
	if r.err != nil || b == nil {
		return nil
	}
	s := string(b)
	return &s
}

// CompactString decodes the non-nullable CompactString alias.
func (r *Reader) CompactString() string {
	n, isNull := r.length(LenCompact)
	b := r.raw(n)
	return string(r.requireNonNull(b, isNull))
}

// CompactNullableString decodes CompactNullableString (uvarint, 0 => nil).
func (r *Reader) CompactNullableString() *string {
	b := r.bytesOf(LenCompact)
	if r.err != nil || b == nil {
		return nil
	}
	s := string(b)
	return &s
}

// Bytes decodes the non-nullable Bytes alias (i32 length).
func (r *Reader) Bytes() []byte {
	n, isNull := r.length(LenInt32)
	b := r.raw(n)
	return r.requireNonNull(b, isNull)
}

// NullableBytes decodes NullableBytes (i32 length, -1 => nil).
func (r *Reader) NullableBytes() []byte {
	return r.bytesOf(LenInt32)
}

// CompactBytes decodes the non-nullable CompactBytes alias.
func (r *Reader) CompactBytes() []byte {
	n, isNull := r.length(LenCompact)
	b := r.raw(n)
	return r.requireNonNull(b, isNull)
}

// CompactNullableBytes decodes CompactNullableBytes (uvarint, 0 => nil).
func (r *Reader) CompactNullableBytes() []byte {
	return r.bytesOf(LenCompact)
}

// VarintBytes decodes the zig-zag-signed-varint-length nullable bytes alias
// used by Record.key.
func (r *Reader) VarintBytes() []byte {
	return r.bytesOf(LenVarint)
}

// VarintString decodes the zig-zag-signed-varint-length nullable string
// alias used by Record.Header.key.
func (r *Reader) VarintString() string {
	b := r.bytesOf(LenVarint)
	return string(b)
}

// ArrayLen decodes the i32 element-count prefix of Array<T>, reporting
// whether the array was null.
func (r *Reader) ArrayLen() (n int, isNull bool) {
	return r.length(LenInt32)
}

// CompactArrayLen decodes the uvarint element-count prefix of
// CompactArray<T>, reporting whether the array was null.
func (r *Reader) CompactArrayLen() (n int, isNull bool) {
	return r.length(LenCompact)
}

// Int32Array decodes a fixed-width Array<i32> (not compact): an i32 count
// followed by that many big-endian i32s. A null array decodes to nil.
func (r *Reader) Int32Array() []int32 {
	n, isNull := r.ArrayLen()
	if isNull || r.err != nil {
		return nil
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = r.Int32()
	}
	return out
}

// CompactInt32Array decodes a CompactArray<i32>. A null array decodes to nil.
func (r *Reader) CompactInt32Array() []int32 {
	n, isNull := r.CompactArrayLen()
	if isNull || r.err != nil {
		return nil
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = r.Int32()
	}
	return out
}

// CompactUUIDArray decodes a CompactArray<Uuid> (used for Partition.directories).
func (r *Reader) CompactUUIDArray() []UUID {
	n, isNull := r.CompactArrayLen()
	if isNull || r.err != nil {
		return nil
	}
	out := make([]UUID, n)
	for i := range out {
		out[i] = r.UUID()
	}
	return out
}
