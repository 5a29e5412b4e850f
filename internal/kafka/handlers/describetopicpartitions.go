package handlers

import (
	"sort"

	"github.com/moband/kafkabroker/internal/kafka/metadata"
	"github.com/moband/kafkabroker/internal/kafka/protocol"
)

// HandleDescribeTopicPartitions answers api_key 75. Only v0 is implemented;
// any other version still parses the header (flexible v2) far enough to
// recover the correlation id and answers with the same fallback as an
// unrecognized api_key (a V0 header plus error_code UnsupportedVersion, no
// topics), rather than closing the connection outright.
func HandleDescribeTopicPartitions(r *protocol.Reader, correlationID int32, apiVersion int16, idx *metadata.Index) []byte {
	if apiVersion != 0 {
		return protocol.WriteUnsupportedAPIResponse(correlationID)
	}

	names := readDescribeTopicPartitionsRequestTopics(r)
	// response_partition_limit, cursor, and the request's own trailing
	// tagged fields are parsed as opaque bytes and discarded: spec.md §4.7
	// and original_source/src/api/describe_topic_partitions.rs both treat
	// them as not worth interpreting for this subset of the protocol.
	r.Rest()

	topics := make([]responseTopic, 0, len(names))
	for _, name := range names {
		topics = append(topics, buildResponseTopic(name, idx))
	}
	sort.Slice(topics, func(i, j int) bool {
		a, b := topics[i].name, topics[j].name
		if (a == nil) != (b == nil) {
			return a == nil
		}
		if a == nil {
			return false
		}
		return *a < *b
	})

	return encodeDescribeTopicPartitionsResponse(correlationID, topics)
}

func readDescribeTopicPartitionsRequestTopics(r *protocol.Reader) []string {
	n, isNull := r.CompactArrayLen()
	if isNull || r.Err() != nil {
		return nil
	}
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name := r.CompactString()
		r.ReadTaggedFields()
		if r.Err() != nil {
			return names
		}
		names = append(names, name)
	}
	return names
}

type responsePartition struct {
	partitionIndex int32
	leaderID       int32
	leaderEpoch    int32
	replicaNodes   []int32
	isrNodes       []int32
}

type responseTopic struct {
	errorCode  protocol.ErrorCode
	name       *string
	topicID    protocol.UUID
	partitions []responsePartition
}

func buildResponseTopic(name string, idx *metadata.Index) responseTopic {
	n := name
	topic, ok := idx.TopicByName(name)
	if !ok {
		return responseTopic{
			errorCode: protocol.ErrUnknownTopicOrPartition,
			name:      &n,
			topicID:   protocol.NilUUID,
		}
	}

	parts := idx.Partitions(topic.ID)
	rps := make([]responsePartition, 0, len(parts))
	for _, p := range parts {
		rps = append(rps, responsePartition{
			partitionIndex: p.PartitionID,
			leaderID:       p.Leader,
			leaderEpoch:    p.LeaderEpoch,
			replicaNodes:   p.Replicas,
			isrNodes:       p.ISR,
		})
	}
	return responseTopic{
		errorCode:  protocol.ErrNone,
		name:       &n,
		topicID:    topic.ID,
		partitions: rps,
	}
}

func encodeDescribeTopicPartitionsResponse(correlationID int32, topics []responseTopic) []byte {
	w := protocol.NewWriter(128)
	w.WriteResponseHeaderV1(correlationID)
	w.PutInt32(0) // throttle_time_ms

	w.PutCompactArrayLen(len(topics), topics == nil)
	for _, t := range topics {
		w.PutInt16(int16(t.errorCode))
		w.PutCompactNullableString(t.name)
		w.PutUUID(t.topicID)
		w.PutBool(false) // is_internal
		w.PutCompactArrayLen(len(t.partitions), t.partitions == nil)
		for _, p := range t.partitions {
			w.PutInt16(int16(protocol.ErrNone))
			w.PutInt32(p.partitionIndex)
			w.PutInt32(p.leaderID)
			w.PutInt32(p.leaderEpoch)
			w.PutCompactInt32Array(p.replicaNodes)
			w.PutCompactInt32Array(p.isrNodes)
			w.PutCompactInt32Array(nil) // eligible_leader_replicas
			w.PutCompactInt32Array(nil) // last_known_elr
			w.PutCompactInt32Array(nil) // offline_replicas
			w.PutEmptyTaggedFields()
		}
		w.PutInt32(0) // topic_authorized_operations
		w.PutEmptyTaggedFields()
	}

	w.PutInt8(-1) // next_cursor: null
	w.PutEmptyTaggedFields()
	return w.Bytes()
}
