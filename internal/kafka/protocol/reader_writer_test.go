package protocol

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
)

func TestStringRoundTrip(t *testing.T) {
	w := NewWriter(0)
	w.PutString("hello")
	want := SizeString("hello")
	if got := len(w.Bytes()); got != want {
		t.Fatalf("SizeString disagreed with PutString: size=%d encode=%d", want, got)
	}
	r := NewReader(w.Bytes())
	if got := r.String(); got != "hello" || r.Err() != nil {
		t.Fatalf("String() = %q, err=%v", got, r.Err())
	}
}

func TestNullableStringNull(t *testing.T) {
	w := NewWriter(0)
	w.PutNullableString(nil)
	if got := len(w.Bytes()); got != SizeNullableString(nil) {
		t.Fatalf("size mismatch: %d vs %d", got, SizeNullableString(nil))
	}
	r := NewReader(w.Bytes())
	if got := r.NullableString(); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestCompactStringRoundTrip(t *testing.T) {
	w := NewWriter(0)
	w.PutCompactString("topic-name")
	r := NewReader(w.Bytes())
	if got := r.CompactString(); got != "topic-name" {
		t.Fatalf("CompactString() = %q", got)
	}
}

func TestCompactNullableStringNull(t *testing.T) {
	w := NewWriter(0)
	w.PutCompactNullableString(nil)
	r := NewReader(w.Bytes())
	if got := r.CompactNullableString(); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestNonNullableStringRejectsNull(t *testing.T) {
	w := NewWriter(0)
	w.PutInt16(-1)
	r := NewReader(w.Bytes())
	_ = r.String()
	if r.Err() == nil {
		t.Fatal("expected ErrProtocolViolation decoding a -1-length non-nullable string")
	}
}

func TestBytesRoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	w := NewWriter(0)
	w.PutBytes(payload)
	if got := len(w.Bytes()); got != SizeBytes(payload) {
		t.Fatalf("size mismatch: %d vs %d", got, SizeBytes(payload))
	}
	r := NewReader(w.Bytes())
	if got := r.Bytes(); !bytes.Equal(got, payload) {
		t.Fatalf("Bytes() = %v, want %v", got, payload)
	}
}

func TestVarintBytesNull(t *testing.T) {
	w := NewWriter(0)
	w.PutVarintBytes(nil)
	r := NewReader(w.Bytes())
	if got := r.VarintBytes(); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestUUIDRoundTrip(t *testing.T) {
	u := uuid.New()
	w := NewWriter(0)
	w.PutUUID(u)
	r := NewReader(w.Bytes())
	if got := r.UUID(); got != u {
		t.Fatalf("UUID() = %v, want %v", got, u)
	}
}

func TestCompactInt32ArrayRoundTrip(t *testing.T) {
	vs := []int32{1, 2, 3}
	w := NewWriter(0)
	w.PutCompactInt32Array(vs)
	if got := len(w.Bytes()); got != SizeCompactInt32Array(vs) {
		t.Fatalf("size mismatch: %d vs %d", got, SizeCompactInt32Array(vs))
	}
	r := NewReader(w.Bytes())
	got := r.CompactInt32Array()
	if len(got) != len(vs) {
		t.Fatalf("CompactInt32Array() = %v, want %v", got, vs)
	}
	for i := range vs {
		if got[i] != vs[i] {
			t.Fatalf("CompactInt32Array()[%d] = %d, want %d", i, got[i], vs[i])
		}
	}
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader([]byte{0, 1})
	_ = r.Int32()
	if r.Err() == nil {
		t.Fatal("expected a truncation error reading an i32 from 2 bytes")
	}
}

func TestTaggedFieldsEmptyRoundTrip(t *testing.T) {
	w := NewWriter(0)
	w.PutEmptyTaggedFields()
	if got := len(w.Bytes()); got != SizeEmptyTaggedFields() {
		t.Fatalf("size mismatch: %d vs %d", got, SizeEmptyTaggedFields())
	}
	r := NewReader(w.Bytes())
	tf := r.ReadTaggedFields()
	if _, ok := tf.Get(0); ok {
		t.Fatal("expected no tags in an empty trailer")
	}
}

func TestTaggedFieldsSkipUnknown(t *testing.T) {
	w := NewWriter(0)
	w.PutUvarint(1)
	w.PutUvarint(7)
	w.PutUvarint(3)
	w.buf = append(w.buf, []byte{0xAA, 0xBB, 0xCC}...)
	r := NewReader(w.Bytes())
	tf := r.ReadTaggedFields()
	b, ok := tf.Get(7)
	if !ok || !bytes.Equal(b, []byte{0xAA, 0xBB, 0xCC}) {
		t.Fatalf("expected tag 7 = [AA BB CC], got %v ok=%v", b, ok)
	}
}
