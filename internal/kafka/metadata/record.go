// Package metadata decodes the __cluster_metadata log: a flat file of
// back-to-back RecordBatch frames, each holding Record entries whose value
// payload is one of a handful of typed variants (Topic, Partition,
// FeatureLevel). DescribeTopicPartitions and Fetch both answer entirely out
// of what this package extracts.
package metadata

import (
	"io"

	"github.com/pkg/errors"

	"github.com/moband/kafkabroker/internal/kafka/protocol"
)

// recordTypeTopic, recordTypePartition and recordTypeFeatureLevel are the
// Value.type tag bytes, grounded on original_source's value/mod.rs
// (API_KEY_TOPIC/API_KEY_PARTITION/API_KEY_FEATURE_LEVELS).
const (
	recordTypeTopic        = 2
	recordTypePartition    = 3
	recordTypeFeatureLevel = 12
)

// RecordBatch is one outer frame of the metadata log.
type RecordBatch struct {
	BaseOffset           int64
	BatchLength          int32
	PartitionLeaderEpoch int32
	Magic                uint8
	CRC                  uint32
	Attributes           int16
	LastOffsetDelta      int32
	FirstTimestamp       int64
	MaxTimestamp         int64
	ProducerID           int64
	ProducerEpoch        int16
	BaseSequence         int32
	Records              []Record
}

// Record is one entry of a RecordBatch.
type Record struct {
	Length         int32
	Attributes     uint8
	TimestampDelta int64
	OffsetDelta    int32
	Key            []byte
	Value          Value
	Headers        []Header
}

// Header is a record header entry (key/value), never populated by anything
// this server emits but decoded for completeness.
type Header struct {
	Key   string
	Value []byte
}

// Value is the typed payload of a Record, dispatched on Type.
type Value struct {
	FrameVersion uint8
	Type         uint8
	Version      uint8
	Topic        *Topic
	Partition    *Partition
	FeatureLevel *FeatureLevel
}

// Topic is RecordVariant::Topic: a topic name to topic-id mapping.
type Topic struct {
	Name string
	ID   protocol.UUID
}

// Partition is RecordVariant::Partition. It deliberately omits
// leader_recovery_state and the eligible_leader_replicas/last_known_elr
// arrays: the CodeCrafters-documented wire layout this server targets never
// carries them, even though upstream Kafka's metadata log does (see
// SPEC_FULL.md §4.4 and DESIGN.md).
type Partition struct {
	PartitionID      int32
	TopicID          protocol.UUID
	Replicas         []int32
	ISR              []int32
	RemovingReplicas []int32
	AddingReplicas   []int32
	Leader           int32
	LeaderEpoch      int32
	PartitionEpoch   int32
	Directories      []protocol.UUID
}

// FeatureLevel is RecordVariant::FeatureLevel, e.g. "metadata.version" -> 20.
type FeatureLevel struct {
	Name  string
	Level int16
}

// ReadBatches decodes every RecordBatch in r until a clean EOF at a batch
// boundary. An EOF that arrives mid-batch is ErrTruncated, per spec.md §9's
// "EOF at boundary is success, EOF mid-structure is Truncated" rule.
func ReadBatches(r io.Reader) ([]RecordBatch, error) {
	var batches []RecordBatch
	for {
		batch, err := readOneBatch(r)
		if err != nil {
			if err == io.EOF {
				return batches, nil
			}
			return batches, err
		}
		batches = append(batches, batch)
	}
}

// batchPrefixSize is everything in RecordBatch up to and including
// base_sequence: the fixed-width header whose size is known before
// batch_length tells us how much more to read.
const batchPrefixSize = 8 + 4 + 4 + 1 + 4 + 2 + 4 + 8 + 8 + 8 + 2 + 4

// batchLengthCoversFrom is how many of the prefix's bytes batch_length
// itself counts: partition_leader_epoch onward (everything after
// base_offset+batch_length).
const batchLengthCoversFrom = 8 + 4

func readOneBatch(r io.Reader) (RecordBatch, error) {
	prefix := make([]byte, batchPrefixSize)
	if _, err := io.ReadFull(r, prefix); err != nil {
		if err == io.EOF {
			return RecordBatch{}, io.EOF
		}
		return RecordBatch{}, errors.WithStack(protocol.ErrTruncated)
	}

	pr := protocol.NewReader(prefix)
	var b RecordBatch
	b.BaseOffset = pr.Int64()
	b.BatchLength = pr.Int32()
	b.PartitionLeaderEpoch = pr.Int32()
	b.Magic = pr.Uint8()
	b.CRC = pr.Uint32()
	b.Attributes = pr.Int16()
	b.LastOffsetDelta = pr.Int32()
	b.FirstTimestamp = pr.Int64()
	b.MaxTimestamp = pr.Int64()
	b.ProducerID = pr.Int64()
	b.ProducerEpoch = pr.Int16()
	b.BaseSequence = pr.Int32()
	if pr.Err() != nil {
		return RecordBatch{}, pr.Err()
	}

	remaining := int(b.BatchLength) - (batchPrefixSize - batchLengthCoversFrom)
	if remaining < 0 {
		return RecordBatch{}, errors.WithStack(protocol.ErrProtocolViolation)
	}
	rest := make([]byte, remaining)
	if _, err := io.ReadFull(r, rest); err != nil {
		return RecordBatch{}, errors.WithStack(protocol.ErrTruncated)
	}

	rr := protocol.NewReader(rest)
	n, isNull := rr.ArrayLen()
	if rr.Err() != nil {
		return RecordBatch{}, rr.Err()
	}
	if isNull {
		return b, nil
	}
	b.Records = make([]Record, 0, n)
	for i := 0; i < n; i++ {
		rec, err := readRecord(rr)
		if err != nil {
			return RecordBatch{}, err
		}
		b.Records = append(b.Records, rec)
	}
	if rr.Err() != nil {
		return RecordBatch{}, rr.Err()
	}
	return b, nil
}

func readRecord(rr *protocol.Reader) (Record, error) {
	var rec Record
	rec.Length = rr.Varint()
	if rr.Err() != nil {
		return rec, rr.Err()
	}
	if rec.Length < 0 {
		return rec, errors.WithStack(protocol.ErrProtocolViolation)
	}

	body := rr.Sub(int(rec.Length))
	if body.Err() != nil {
		return rec, body.Err()
	}

	rec.Attributes = body.Uint8()
	rec.TimestampDelta = body.Varlong()
	rec.OffsetDelta = body.Varint()
	rec.Key = body.VarintBytes()

	valBytes := body.VarintBytes()
	if body.Err() != nil {
		return rec, body.Err()
	}
	if valBytes != nil {
		v, err := decodeValue(valBytes)
		if err != nil {
			return rec, err
		}
		rec.Value = v
	}

	hn, hIsNull := body.CompactArrayLen()
	if body.Err() != nil {
		return rec, body.Err()
	}
	if !hIsNull {
		rec.Headers = make([]Header, 0, hn)
		for i := 0; i < hn; i++ {
			key := body.VarintString()
			val := body.VarintBytes()
			if body.Err() != nil {
				return rec, body.Err()
			}
			rec.Headers = append(rec.Headers, Header{Key: key, Value: val})
		}
	}
	if body.Err() != nil {
		return rec, body.Err()
	}
	return rec, nil
}

// EncodeBatch serializes a RecordBatch back to its wire form, recomputing
// batch_length from the encoded content (the stored CRC is written
// verbatim; per spec.md §1 this server never validates or recomputes it).
// Grounded on original_source's #[derive(Serialize)] on RecordBatch/Record/
// Value (base.rs, value/mod.rs): every decoded type there is symmetric, and
// spec.md §8 scenario S8 exercises that symmetry end to end.
func EncodeBatch(b RecordBatch) []byte {
	rest := protocol.NewWriter(64)
	rest.PutInt32(b.PartitionLeaderEpoch)
	rest.PutUint8(b.Magic)
	rest.PutUint32(b.CRC)
	rest.PutInt16(b.Attributes)
	rest.PutInt32(b.LastOffsetDelta)
	rest.PutInt64(b.FirstTimestamp)
	rest.PutInt64(b.MaxTimestamp)
	rest.PutInt64(b.ProducerID)
	rest.PutInt16(b.ProducerEpoch)
	rest.PutInt32(b.BaseSequence)
	rest.PutArrayLen(len(b.Records), b.Records == nil)
	for _, rec := range b.Records {
		rest.PutRaw(EncodeRecord(rec))
	}
	restBytes := rest.Bytes()

	out := protocol.NewWriter(len(restBytes) + 12)
	out.PutInt64(b.BaseOffset)
	out.PutInt32(int32(len(restBytes)))
	out.PutRaw(restBytes)
	return out.Bytes()
}

// EncodeRecord serializes one Record, recomputing its length prefix from
// the encoded body.
func EncodeRecord(rec Record) []byte {
	body := protocol.NewWriter(32)
	body.PutUint8(rec.Attributes)
	body.PutVarlong(rec.TimestampDelta)
	body.PutVarint(rec.OffsetDelta)
	body.PutVarintBytes(rec.Key)
	body.PutVarintBytes(EncodeValue(rec.Value))
	body.PutCompactArrayLen(len(rec.Headers), rec.Headers == nil)
	for _, h := range rec.Headers {
		body.PutVarintString(h.Key)
		body.PutVarintBytes(h.Value)
	}
	bodyBytes := body.Bytes()

	w := protocol.NewWriter(len(bodyBytes) + 4)
	w.PutVarint(int32(len(bodyBytes)))
	w.PutRaw(bodyBytes)
	return w.Bytes()
}

// EncodeValue serializes a Value's typed payload, dispatching on Type the
// same way decodeValue does.
func EncodeValue(v Value) []byte {
	w := protocol.NewWriter(32)
	w.PutUint8(v.FrameVersion)
	w.PutUint8(v.Type)
	w.PutUint8(v.Version)
	switch v.Type {
	case recordTypeTopic:
		w.PutCompactString(v.Topic.Name)
		w.PutUUID(v.Topic.ID)
	case recordTypePartition:
		p := v.Partition
		w.PutInt32(p.PartitionID)
		w.PutUUID(p.TopicID)
		w.PutCompactInt32Array(p.Replicas)
		w.PutCompactInt32Array(p.ISR)
		w.PutCompactInt32Array(p.RemovingReplicas)
		w.PutCompactInt32Array(p.AddingReplicas)
		w.PutInt32(p.Leader)
		w.PutInt32(p.LeaderEpoch)
		w.PutInt32(p.PartitionEpoch)
		w.PutCompactUUIDArray(p.Directories)
	case recordTypeFeatureLevel:
		w.PutCompactString(v.FeatureLevel.Name)
		w.PutInt16(v.FeatureLevel.Level)
	}
	w.PutEmptyTaggedFields()
	return w.Bytes()
}

func decodeValue(b []byte) (Value, error) {
	vr := protocol.NewReader(b)
	var v Value
	v.FrameVersion = vr.Uint8()
	v.Type = vr.Uint8()
	v.Version = vr.Uint8()
	if vr.Err() != nil {
		return v, vr.Err()
	}
	switch v.Type {
	case recordTypeTopic:
		t := &Topic{}
		t.Name = vr.CompactString()
		t.ID = vr.UUID()
		v.Topic = t
	case recordTypePartition:
		p := &Partition{}
		p.PartitionID = vr.Int32()
		p.TopicID = vr.UUID()
		p.Replicas = vr.CompactInt32Array()
		p.ISR = vr.CompactInt32Array()
		p.RemovingReplicas = vr.CompactInt32Array()
		p.AddingReplicas = vr.CompactInt32Array()
		p.Leader = vr.Int32()
		p.LeaderEpoch = vr.Int32()
		p.PartitionEpoch = vr.Int32()
		p.Directories = vr.CompactUUIDArray()
		v.Partition = p
	case recordTypeFeatureLevel:
		f := &FeatureLevel{}
		f.Name = vr.CompactString()
		f.Level = vr.Int16()
		v.FeatureLevel = f
	default:
		return v, errors.WithStack(protocol.ErrUnknownRecordType)
	}
	vr.ReadTaggedFields()
	if vr.Err() != nil {
		return v, vr.Err()
	}
	return v, nil
}
