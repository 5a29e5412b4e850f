package handlers

import (
	"github.com/moband/kafkabroker/internal/kafka/metadata"
	"github.com/moband/kafkabroker/internal/kafka/protocol"
)

type fetchRequestPartition struct {
	partitionIndex int32
}

type fetchRequestTopic struct {
	id         protocol.UUID
	partitions []fetchRequestPartition
}

// encodeFetchResponse builds the Fetch v16 response body from already-parsed
// request topics, so callers that need to decide whether to load the
// metadata index (router.go) can do so only once they know topics isn't
// empty.
func encodeFetchResponse(correlationID int32, topics []fetchRequestTopic, idx *metadata.Index) []byte {
	w := protocol.NewWriter(128)
	w.WriteResponseHeaderV1(correlationID)
	w.PutInt32(0) // throttle_time_ms
	w.PutInt16(int16(protocol.ErrNone))
	w.PutInt32(0) // session_id

	w.PutCompactArrayLen(len(topics), topics == nil)
	for _, topic := range topics {
		w.PutUUID(topic.id)
		w.PutCompactArrayLen(len(topic.partitions), topic.partitions == nil)
		for _, p := range topic.partitions {
			writeFetchResponsePartition(w, topic.id, p.partitionIndex, idx)
		}
		w.PutEmptyTaggedFields()
	}
	w.PutEmptyTaggedFields()
	return w.Bytes()
}

func writeFetchResponsePartition(w *protocol.Writer, topicID protocol.UUID, partitionIndex int32, idx *metadata.Index) {
	known := partitionExists(idx, topicID, partitionIndex)

	w.PutInt32(partitionIndex)
	if known {
		w.PutInt16(int16(protocol.ErrNone))
	} else {
		w.PutInt16(int16(protocol.ErrUnknownTopicID))
	}
	w.PutInt64(0) // high_watermark
	w.PutInt64(0) // last_stable_offset
	w.PutInt64(0) // log_start_offset
	w.PutCompactArrayLen(0, true) // aborted_transactions: null
	if known {
		w.PutInt32(-1) // preferred_read_replica
		w.PutCompactNullableBytes([]byte{})
	} else {
		w.PutInt32(0)
		w.PutCompactNullableBytes(nil)
	}
	w.PutEmptyTaggedFields()
}

func partitionExists(idx *metadata.Index, topicID protocol.UUID, partitionIndex int32) bool {
	for _, p := range idx.Partitions(topicID) {
		if p.PartitionID == partitionIndex {
			return true
		}
	}
	return false
}

func readFetchRequest(r *protocol.Reader) []fetchRequestTopic {
	r.Int32() // max_wait_ms
	r.Int32() // min_bytes
	r.Int32() // max_bytes
	r.Int8()  // isolation_level
	r.Int32() // session_id
	r.Int32() // session_epoch

	n, isNull := r.CompactArrayLen()
	if isNull || r.Err() != nil {
		return nil
	}
	topics := make([]fetchRequestTopic, 0, n)
	for i := 0; i < n; i++ {
		topics = append(topics, readFetchRequestTopic(r))
		if r.Err() != nil {
			return topics
		}
	}

	readForgottenTopics(r)
	r.CompactString() // rack_id
	r.ReadTaggedFields()
	return topics
}

func readFetchRequestTopic(r *protocol.Reader) fetchRequestTopic {
	var t fetchRequestTopic
	t.id = r.UUID()

	n, isNull := r.CompactArrayLen()
	if isNull || r.Err() != nil {
		r.ReadTaggedFields()
		return t
	}
	t.partitions = make([]fetchRequestPartition, 0, n)
	for i := 0; i < n; i++ {
		var p fetchRequestPartition
		p.partitionIndex = r.Int32()
		r.Int32() // current_leader_epoch
		r.Int64() // fetch_offset
		r.Int32() // last_fetched_epoch
		r.Int64() // log_start_offset
		r.Int32() // partition_max_bytes
		r.ReadTaggedFields()
		t.partitions = append(t.partitions, p)
	}
	r.ReadTaggedFields()
	return t
}

func readForgottenTopics(r *protocol.Reader) {
	n, isNull := r.CompactArrayLen()
	if isNull || r.Err() != nil {
		return
	}
	for i := 0; i < n; i++ {
		r.UUID()
		r.CompactInt32Array()
		r.ReadTaggedFields()
	}
}
