package handlers

import (
	"testing"

	"github.com/google/uuid"

	"github.com/moband/kafkabroker/internal/kafka/metadata"
	"github.com/moband/kafkabroker/internal/kafka/protocol"
)

func encodeFetchRequest(topicID protocol.UUID, partitions []int32) []byte {
	w := protocol.NewWriter(0)
	w.PutInt32(500) // max_wait_ms
	w.PutInt32(1)   // min_bytes
	w.PutInt32(1 << 20)
	w.PutInt8(0) // isolation_level
	w.PutInt32(0)
	w.PutInt32(0)

	w.PutCompactArrayLen(1, false)
	w.PutUUID(topicID)
	w.PutCompactArrayLen(len(partitions), false)
	for _, p := range partitions {
		w.PutInt32(p)
		w.PutInt32(-1)
		w.PutInt64(0)
		w.PutInt32(-1)
		w.PutInt64(0)
		w.PutInt32(1 << 20)
		w.PutEmptyTaggedFields()
	}
	w.PutEmptyTaggedFields() // topic-level tagged fields

	w.PutCompactArrayLen(0, false) // forgotten_topics
	w.PutCompactString("")         // rack_id
	w.PutEmptyTaggedFields()
	return w.Bytes()
}

func TestHandleFetchKnownPartition(t *testing.T) {
	topicID := uuid.New()
	idx := metadata.BuildIndex([]metadata.RecordBatch{{
		Records: []metadata.Record{
			{Value: metadata.Value{Partition: &metadata.Partition{PartitionID: 0, TopicID: topicID}}},
		},
	}})

	body := encodeFetchRequest(topicID, []int32{0})
	r := protocol.NewReader(body)
	topics := readFetchRequest(r)
	resp := encodeFetchResponse(3, topics, idx)

	dr := protocol.NewReader(resp)
	dr.Int32() // correlation_id
	dr.ReadTaggedFields()
	dr.Int32() // throttle_time_ms
	topLevelErr := dr.Int16()
	if topLevelErr != int16(protocol.ErrNone) {
		t.Fatalf("top-level error_code = %d, want 0", topLevelErr)
	}
	dr.Int32() // session_id
	n, isNull := dr.CompactArrayLen()
	if isNull || n != 1 {
		t.Fatalf("responses length = %d (null=%v), want 1", n, isNull)
	}
	id := dr.UUID()
	if id != topicID {
		t.Fatalf("topic id = %v, want %v", id, topicID)
	}
	pn, pIsNull := dr.CompactArrayLen()
	if pIsNull || pn != 1 {
		t.Fatalf("partitions length = %d (null=%v), want 1", pn, pIsNull)
	}
	dr.Int32() // partition_index
	partErr := dr.Int16()
	if partErr != int16(protocol.ErrNone) {
		t.Fatalf("partition error_code = %d, want 0", partErr)
	}
	if dr.Err() != nil {
		t.Fatalf("decode error: %v", dr.Err())
	}
}

func TestHandleFetchUnknownTopic(t *testing.T) {
	idx := metadata.BuildIndex(nil)
	unknown := uuid.New()
	body := encodeFetchRequest(unknown, []int32{0})
	r := protocol.NewReader(body)
	topics := readFetchRequest(r)
	resp := encodeFetchResponse(4, topics, idx)

	dr := protocol.NewReader(resp)
	dr.Int32()
	dr.ReadTaggedFields()
	dr.Int32()
	dr.Int16()
	dr.Int32()
	dr.CompactArrayLen()
	dr.UUID()
	dr.CompactArrayLen()
	dr.Int32() // partition_index
	partErr := dr.Int16()
	if partErr != int16(protocol.ErrUnknownTopicID) {
		t.Fatalf("partition error_code = %d, want %d", partErr, protocol.ErrUnknownTopicID)
	}
}
