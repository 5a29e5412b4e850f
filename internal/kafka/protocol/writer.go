package protocol

import "encoding/binary"

// Writer accumulates an encoded response body. Unlike Reader it cannot
// fail: every Put* call is a pure append, which is what lets byte_size be
// computed without ever invoking encode (spec.md §4.2 "byte_size duality").
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer, optionally pre-sizing its backing
// buffer to hint, which callers set to a rough guess of the encoded size.
func NewWriter(hint int) *Writer {
	return &Writer{buf: make([]byte, 0, hint)}
}

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// PutUint8 appends one unsigned byte.
func (w *Writer) PutUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// PutInt8 appends one signed byte.
func (w *Writer) PutInt8(v int8) {
	w.PutUint8(uint8(v))
}

// PutBool appends a boolean as 0x00/0x01.
func (w *Writer) PutBool(v bool) {
	if v {
		w.PutUint8(1)
		return
	}
	w.PutUint8(0)
}

// PutInt16 appends a big-endian i16.
func (w *Writer) PutInt16(v int16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	w.buf = append(w.buf, b[:]...)
}

// PutInt32 appends a big-endian i32.
func (w *Writer) PutInt32(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	w.buf = append(w.buf, b[:]...)
}

// PutUint32 appends a big-endian u32.
func (w *Writer) PutUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// PutInt64 appends a big-endian i64.
func (w *Writer) PutInt64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	w.buf = append(w.buf, b[:]...)
}

// PutUvarint appends the unsigned LEB128 encoding of v.
func (w *Writer) PutUvarint(v uint64) {
	w.buf = appendUvarint(w.buf, v)
}

// PutVarint appends a zig-zag encoded signed i32.
func (w *Writer) PutVarint(v int32) {
	w.PutUvarint(uint64(zigzagEncode32(v)))
}

// PutVarlong appends a zig-zag encoded signed i64.
func (w *Writer) PutVarlong(v int64) {
	w.PutUvarint(zigzagEncode64(v))
}

// PutUUID appends the 16 raw bytes of a Kafka UUID.
func (w *Writer) PutUUID(u UUID) {
	w.buf = append(w.buf, u[:]...)
}

// PutRaw appends b verbatim with no length prefix of its own, for callers
// (e.g. the metadata record encoder) splicing in an already-encoded
// sub-structure's bytes.
func (w *Writer) PutRaw(b []byte) {
	w.buf = append(w.buf, b...)
}

// putLength appends a length field per enc; isNull selects that encoding's
// null sentinel instead of n.
func (w *Writer) putLength(enc LengthEncoding, n int, isNull bool) {
	switch enc {
	case LenInt16:
		if isNull {
			w.PutInt16(-1)
			return
		}
		w.PutInt16(int16(n))
	case LenInt32:
		if isNull {
			w.PutInt32(-1)
			return
		}
		w.PutInt32(int32(n))
	case LenCompact:
		if isNull {
			w.PutUvarint(0)
			return
		}
		w.PutUvarint(uint64(n) + 1)
	case LenVarint:
		if isNull {
			w.PutVarint(-1)
			return
		}
		w.PutVarint(int32(n))
	}
}

func sizeLength(enc LengthEncoding, n int, isNull bool) int {
	switch enc {
	case LenInt16:
		return 2
	case LenInt32:
		return 4
	case LenCompact:
		if isNull {
			return sizeUvarint(0)
		}
		return sizeUvarint(uint64(n) + 1)
	case LenVarint:
		if isNull {
			return sizeZigzag32(-1)
		}
		return sizeZigzag32(int32(n))
	default:
		return 0
	}
}

// putBytesOf writes b using enc; b == nil is encoded as that encoding's
// null sentinel.
func (w *Writer) putBytesOf(enc LengthEncoding, b []byte) {
	w.putLength(enc, len(b), b == nil)
	if b != nil {
		w.buf = append(w.buf, b...)
	}
}

func sizeBytesOf(enc LengthEncoding, b []byte) int {
	return sizeLength(enc, len(b), b == nil) + len(b)
}

// PutString writes the non-nullable String alias.
func (w *Writer) PutString(s string) {
	w.putBytesOf(LenInt16, []byte(s))
}

// SizeString is the pure byte_size of PutString(s).
func SizeString(s string) int {
	return sizeBytesOf(LenInt16, []byte(s))
}

// PutNullableString writes NullableString.
func (w *Writer) PutNullableString(s *string) {
	if s == nil {
		w.putBytesOf(LenInt16, nil)
		return
	}
	w.putBytesOf(LenInt16, []byte(*s))
}

// SizeNullableString is the pure byte_size of PutNullableString(s).
func SizeNullableString(s *string) int {
	if s == nil {
		return sizeBytesOf(LenInt16, nil)
	}
	return sizeBytesOf(LenInt16, []byte(*s))
}

// PutCompactString writes the non-nullable CompactString alias.
func (w *Writer) PutCompactString(s string) {
	w.putBytesOf(LenCompact, []byte(s))
}

// SizeCompactString is the pure byte_size of PutCompactString(s).
func SizeCompactString(s string) int {
	return sizeBytesOf(LenCompact, []byte(s))
}

// PutCompactNullableString writes CompactNullableString.
func (w *Writer) PutCompactNullableString(s *string) {
	if s == nil {
		w.putBytesOf(LenCompact, nil)
		return
	}
	w.putBytesOf(LenCompact, []byte(*s))
}

// SizeCompactNullableString is the pure byte_size of PutCompactNullableString(s).
func SizeCompactNullableString(s *string) int {
	if s == nil {
		return sizeBytesOf(LenCompact, nil)
	}
	return sizeBytesOf(LenCompact, []byte(*s))
}

// PutBytes writes the non-nullable Bytes alias.
func (w *Writer) PutBytes(b []byte) {
	if b == nil {
		b = []byte{}
	}
	w.putBytesOf(LenInt32, b)
}

// SizeBytes is the pure byte_size of PutBytes(b).
func SizeBytes(b []byte) int {
	if b == nil {
		b = []byte{}
	}
	return sizeBytesOf(LenInt32, b)
}

// PutNullableBytes writes NullableBytes (nil b => null on the wire).
func (w *Writer) PutNullableBytes(b []byte) {
	w.putBytesOf(LenInt32, b)
}

// SizeNullableBytes is the pure byte_size of PutNullableBytes(b).
func SizeNullableBytes(b []byte) int {
	return sizeBytesOf(LenInt32, b)
}

// PutCompactBytes writes the non-nullable CompactBytes alias.
func (w *Writer) PutCompactBytes(b []byte) {
	if b == nil {
		b = []byte{}
	}
	w.putBytesOf(LenCompact, b)
}

// SizeCompactBytes is the pure byte_size of PutCompactBytes(b).
func SizeCompactBytes(b []byte) int {
	if b == nil {
		b = []byte{}
	}
	return sizeBytesOf(LenCompact, b)
}

// PutCompactNullableBytes writes CompactNullableBytes.
func (w *Writer) PutCompactNullableBytes(b []byte) {
	w.putBytesOf(LenCompact, b)
}

// SizeCompactNullableBytes is the pure byte_size of PutCompactNullableBytes(b).
func SizeCompactNullableBytes(b []byte) int {
	return sizeBytesOf(LenCompact, b)
}

// PutVarintBytes writes the zig-zag-signed-varint-length nullable bytes alias.
func (w *Writer) PutVarintBytes(b []byte) {
	w.putBytesOf(LenVarint, b)
}

// SizeVarintBytes is the pure byte_size of PutVarintBytes(b).
func SizeVarintBytes(b []byte) int {
	return sizeBytesOf(LenVarint, b)
}

// PutVarintString writes the zig-zag-signed-varint-length nullable string
// alias used by Record.Header.key.
func (w *Writer) PutVarintString(s string) {
	w.putBytesOf(LenVarint, []byte(s))
}

// SizeVarintString is the pure byte_size of PutVarintString(s).
func SizeVarintString(s string) int {
	return sizeBytesOf(LenVarint, []byte(s))
}

// PutArrayLen writes the i32 element-count prefix of Array<T>; isNull
// selects the -1 null form.
func (w *Writer) PutArrayLen(n int, isNull bool) {
	w.putLength(LenInt32, n, isNull)
}

// SizeArrayLen is the pure byte_size of PutArrayLen.
func SizeArrayLen() int {
	return 4
}

// PutCompactArrayLen writes the uvarint element-count prefix of
// CompactArray<T>; isNull selects the 0 null form.
func (w *Writer) PutCompactArrayLen(n int, isNull bool) {
	w.putLength(LenCompact, n, isNull)
}

// SizeCompactArrayLen is the pure byte_size of PutCompactArrayLen(n, isNull).
func SizeCompactArrayLen(n int, isNull bool) int {
	return sizeLength(LenCompact, n, isNull)
}

// PutInt32Array writes a fixed-width Array<i32>.
func (w *Writer) PutInt32Array(vs []int32) {
	w.PutArrayLen(len(vs), vs == nil)
	for _, v := range vs {
		w.PutInt32(v)
	}
}

// SizeInt32Array is the pure byte_size of PutInt32Array(vs).
func SizeInt32Array(vs []int32) int {
	return SizeArrayLen() + 4*len(vs)
}

// PutCompactInt32Array writes a CompactArray<i32>.
func (w *Writer) PutCompactInt32Array(vs []int32) {
	w.PutCompactArrayLen(len(vs), vs == nil)
	for _, v := range vs {
		w.PutInt32(v)
	}
}

// SizeCompactInt32Array is the pure byte_size of PutCompactInt32Array(vs).
func SizeCompactInt32Array(vs []int32) int {
	return SizeCompactArrayLen(len(vs), vs == nil) + 4*len(vs)
}

// PutCompactUUIDArray writes a CompactArray<Uuid>.
func (w *Writer) PutCompactUUIDArray(us []UUID) {
	w.PutCompactArrayLen(len(us), us == nil)
	for _, u := range us {
		w.PutUUID(u)
	}
}

// SizeCompactUUIDArray is the pure byte_size of PutCompactUUIDArray(us).
func SizeCompactUUIDArray(us []UUID) int {
	return SizeCompactArrayLen(len(us), us == nil) + uuidSize*len(us)
}
