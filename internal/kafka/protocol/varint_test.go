package protocol

import "testing"

func TestUvarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 16384, 1 << 32, 1<<64 - 1}
	for _, v := range cases {
		enc := appendUvarint(nil, v)
		if len(enc) != sizeUvarint(v) {
			t.Fatalf("sizeUvarint(%d) = %d, encode produced %d bytes", v, sizeUvarint(v), len(enc))
		}
		got, n, err := decodeUvarint(enc)
		if err != nil {
			t.Fatalf("decodeUvarint(%d): %v", v, err)
		}
		if n != len(enc) {
			t.Fatalf("decodeUvarint(%d) consumed %d bytes, want %d", v, n, len(enc))
		}
		if got != v {
			t.Fatalf("decodeUvarint round trip: got %d, want %d", got, v)
		}
	}
}

func TestDecodeUvarintTruncated(t *testing.T) {
	_, n, err := decodeUvarint([]byte{0x80, 0x80})
	if err != nil {
		t.Fatalf("unexpected error for merely-short input: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected n=0 for a varint that runs off the end, got %d", n)
	}
}

func TestDecodeUvarintOverlong(t *testing.T) {
	overlong := make([]byte, 12)
	for i := range overlong {
		overlong[i] = 0x80
	}
	_, _, err := decodeUvarint(overlong)
	if err == nil {
		t.Fatal("expected ErrMalformedVarint for an overlong varint")
	}
}

func TestZigzag32RoundTrip(t *testing.T) {
	cases := []int32{0, 1, -1, 2, -2, 1<<31 - 1, -(1 << 31)}
	for _, v := range cases {
		if got := zigzagDecode32(zigzagEncode32(v)); got != v {
			t.Fatalf("zigzag32 round trip: got %d, want %d", got, v)
		}
	}
}

func TestZigzag64RoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 1 << 62, -(1 << 62)}
	for _, v := range cases {
		if got := zigzagDecode64(zigzagEncode64(v)); got != v {
			t.Fatalf("zigzag64 round trip: got %d, want %d", got, v)
		}
	}
}
