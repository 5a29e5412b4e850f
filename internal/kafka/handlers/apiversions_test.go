package handlers

import (
	"testing"

	"github.com/moband/kafkabroker/internal/kafka/protocol"
)

func TestHandleAPIVersionsV4AdvertisesOnlyApiVersionsAndDescribeTopicPartitions(t *testing.T) {
	body := HandleAPIVersions(7, 4)
	r := protocol.NewReader(body)
	if got := r.Int32(); got != 7 {
		t.Fatalf("correlation_id = %d, want 7", got)
	}
	errCode := r.Int16()
	if errCode != int16(protocol.ErrNone) {
		t.Fatalf("error_code = %d, want 0", errCode)
	}
	n, isNull := r.CompactArrayLen()
	if isNull || n != 2 {
		t.Fatalf("api_versions length = %d (null=%v), want 2", n, isNull)
	}
	var keys []int16
	for i := 0; i < n; i++ {
		keys = append(keys, r.Int16())
		r.Int16() // min_version
		r.Int16() // max_version
		r.ReadTaggedFields()
	}
	if len(keys) != 2 || keys[0] != 18 || keys[1] != 75 {
		t.Fatalf("advertised api keys = %v, want [18 75]", keys)
	}
	if r.Err() != nil {
		t.Fatalf("decode error: %v", r.Err())
	}
}

func TestHandleAPIVersionsV0UsesPlainArray(t *testing.T) {
	body := HandleAPIVersions(3, 0)
	r := protocol.NewReader(body)
	if got := r.Int32(); got != 3 {
		t.Fatalf("correlation_id = %d, want 3", got)
	}
	errCode := r.Int16()
	if errCode != int16(protocol.ErrNone) {
		t.Fatalf("error_code = %d, want 0", errCode)
	}
	n, isNull := r.ArrayLen()
	if isNull || n != 2 {
		t.Fatalf("api_versions length = %d (null=%v), want 2", n, isNull)
	}
	var keys []int16
	for i := 0; i < n; i++ {
		keys = append(keys, r.Int16())
		r.Int16() // min_version
		r.Int16() // max_version
	}
	if len(keys) != 2 || keys[0] != 18 || keys[1] != 75 {
		t.Fatalf("advertised api keys = %v, want [18 75]", keys)
	}
	if r.Err() != nil {
		t.Fatalf("decode error: %v", r.Err())
	}
	if r.Len() != 0 {
		t.Fatalf("v0 body has %d trailing bytes, want 0 (no throttle_time_ms, no tagged fields)", r.Len())
	}
}

func TestHandleAPIVersionsUnsupportedVersion(t *testing.T) {
	body := HandleAPIVersions(1, 99)
	r := protocol.NewReader(body)
	r.Int32() // correlation_id
	errCode := r.Int16()
	if errCode != int16(protocol.ErrUnsupportedVersion) {
		t.Fatalf("error_code = %d, want %d", errCode, protocol.ErrUnsupportedVersion)
	}
	n, isNull := r.CompactArrayLen()
	if isNull || n != 0 {
		t.Fatalf("expected an empty (non-null) api_versions array, got n=%d isNull=%v", n, isNull)
	}
}
