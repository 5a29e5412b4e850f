package protocol

import "github.com/google/uuid"

// UUID is the wire form used throughout the cluster-metadata log and the
// DescribeTopicPartitions/Fetch APIs: 16 raw bytes, no textual form on the
// wire. google/uuid's UUID is itself a [16]byte, so it drops in as the codec
// type directly (see SPEC_FULL.md Domain Stack).
type UUID = uuid.UUID

// NilUUID is the zero-UUID sentinel for "unknown", used whenever a topic
// lookup fails.
var NilUUID = uuid.Nil

const uuidSize = 16
