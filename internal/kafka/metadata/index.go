package metadata

import "github.com/moband/kafkabroker/internal/kafka/protocol"

// Index is the flattened view of the metadata log that the API handlers
// actually query: topics by name, partitions by topic id, in the order the
// log recorded them. Later records for the same key overwrite earlier ones,
// matching how a compacted Kafka topic is meant to be read.
type Index struct {
	topicsByName map[string]Topic
	partitions   map[protocol.UUID][]Partition
}

// BuildIndex flattens a decoded batch list into an Index.
func BuildIndex(batches []RecordBatch) *Index {
	idx := &Index{
		topicsByName: make(map[string]Topic),
		partitions:   make(map[protocol.UUID][]Partition),
	}
	for _, batch := range batches {
		for _, rec := range batch.Records {
			switch {
			case rec.Value.Topic != nil:
				t := *rec.Value.Topic
				idx.topicsByName[t.Name] = t
			case rec.Value.Partition != nil:
				p := *rec.Value.Partition
				idx.partitions[p.TopicID] = appendOrReplacePartition(idx.partitions[p.TopicID], p)
			}
		}
	}
	return idx
}

func appendOrReplacePartition(ps []Partition, p Partition) []Partition {
	for i, existing := range ps {
		if existing.PartitionID == p.PartitionID {
			ps[i] = p
			return ps
		}
	}
	return append(ps, p)
}

// TopicByName looks up a topic's id by name.
func (idx *Index) TopicByName(name string) (Topic, bool) {
	t, ok := idx.topicsByName[name]
	return t, ok
}

// Partitions returns every partition recorded for topicID, in the order the
// log scanned them (a later record for an already-seen partition id updates
// in place rather than moving to the end), matching original_source's
// make_response and spec.md §8 S4.
func (idx *Index) Partitions(topicID protocol.UUID) []Partition {
	ps := idx.partitions[topicID]
	out := make([]Partition, len(ps))
	copy(out, ps)
	return out
}
