package handlers

import (
	"testing"

	"github.com/google/uuid"

	"github.com/moband/kafkabroker/internal/kafka/metadata"
	"github.com/moband/kafkabroker/internal/kafka/protocol"
)

func fixtureIndex(t *testing.T) (*metadata.Index, protocol.UUID) {
	t.Helper()
	topicID := uuid.New()
	batches := []metadata.RecordBatch{
		{
			Records: []metadata.Record{
				{Value: metadata.Value{Topic: &metadata.Topic{Name: "saucerful-of-secrets", ID: topicID}}},
				{Value: metadata.Value{Partition: &metadata.Partition{
					PartitionID: 0,
					TopicID:     topicID,
					Replicas:    []int32{1},
					ISR:         []int32{1},
					Leader:      1,
					LeaderEpoch: 0,
				}}},
			},
		},
	}
	return metadata.BuildIndex(batches), topicID
}

func encodeRequestTopicNames(names []string) []byte {
	w := protocol.NewWriter(0)
	w.PutCompactArrayLen(len(names), false)
	for _, n := range names {
		w.PutCompactString(n)
		w.PutEmptyTaggedFields()
	}
	w.PutEmptyTaggedFields() // the request body's own trailing tagged fields
	return w.Bytes()
}

func TestHandleDescribeTopicPartitionsKnownTopic(t *testing.T) {
	idx, topicID := fixtureIndex(t)
	body := encodeRequestTopicNames([]string{"saucerful-of-secrets"})
	r := protocol.NewReader(body)

	resp := HandleDescribeTopicPartitions(r, 5, 0, idx)
	dr := protocol.NewReader(resp)
	dr.Int32() // correlation_id
	dr.ReadTaggedFields()
	dr.Int32() // throttle_time_ms

	n, isNull := dr.CompactArrayLen()
	if isNull || n != 1 {
		t.Fatalf("topics length = %d (null=%v), want 1", n, isNull)
	}
	errCode := dr.Int16()
	if errCode != int16(protocol.ErrNone) {
		t.Fatalf("error_code = %d, want 0", errCode)
	}
	name := dr.CompactNullableString()
	if name == nil || *name != "saucerful-of-secrets" {
		t.Fatalf("name = %v", name)
	}
	id := dr.UUID()
	if id != topicID {
		t.Fatalf("topic_id = %v, want %v", id, topicID)
	}
	dr.Bool() // is_internal
	pn, pIsNull := dr.CompactArrayLen()
	if pIsNull || pn != 1 {
		t.Fatalf("partitions length = %d (null=%v), want 1", pn, pIsNull)
	}
	if dr.Err() != nil {
		t.Fatalf("decode error: %v", dr.Err())
	}
}

func TestHandleDescribeTopicPartitionsUnknownTopic(t *testing.T) {
	idx, _ := fixtureIndex(t)
	body := encodeRequestTopicNames([]string{"does-not-exist"})
	r := protocol.NewReader(body)

	resp := HandleDescribeTopicPartitions(r, 9, 0, idx)
	dr := protocol.NewReader(resp)
	dr.Int32()
	dr.ReadTaggedFields()
	dr.Int32()
	dr.CompactArrayLen()
	errCode := dr.Int16()
	if errCode != int16(protocol.ErrUnknownTopicOrPartition) {
		t.Fatalf("error_code = %d, want %d", errCode, protocol.ErrUnknownTopicOrPartition)
	}
}
