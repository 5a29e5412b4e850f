package handlers

import "github.com/moband/kafkabroker/internal/kafka/protocol"

// apiKeyAPIVersions and apiKeyDescribeTopicPartitions are the api keys
// advertised by ApiVersions; see supportedAPIVersions below.
const (
	apiKeyAPIVersions             int16 = 18
	apiKeyDescribeTopicPartitions int16 = 75
	apiKeyFetch                   int16 = 1
)

type apiVersionEntry struct {
	apiKey     int16
	minVersion int16
	maxVersion int16
}

// supportedAPIVersions is always exactly {(18,0,4),(75,0,0)} regardless of
// what the broker actually serves: original_source/src/api/api_versions.rs
// never advertises Fetch even though the Fetch handler exists and answers
// v16 requests directly (see SPEC_FULL.md §4.7). Preserved verbatim since a
// client is expected to probe Fetch without negotiating it here.
var supportedAPIVersions = []apiVersionEntry{
	{apiKeyAPIVersions, 0, 4},
	{apiKeyDescribeTopicPartitions, 0, 0},
}

// HandleAPIVersions answers api_key 18. Versions 0-2 use the non-flexible
// response body shape (no tagged fields, no trailing throttle field below
// v1); versions 3-4 use the flexible shape; anything higher reports
// UnsupportedVersion with an empty api_versions array, matching the
// original's fallback arm.
func HandleAPIVersions(correlationID int32, apiVersion int16) []byte {
	w := protocol.NewWriter(64)
	w.WriteResponseHeaderV0(correlationID)

	switch {
	case apiVersion == 0:
		writeErrorCode(w, protocol.ErrNone)
		writeAPIVersionArrayV1(w, supportedAPIVersions)
	case apiVersion == 1 || apiVersion == 2:
		writeErrorCode(w, protocol.ErrNone)
		writeAPIVersionArrayV1(w, supportedAPIVersions)
		w.PutInt32(0) // throttle_time_ms
	case apiVersion == 3 || apiVersion == 4:
		writeErrorCode(w, protocol.ErrNone)
		writeAPIVersionArrayV2(w, supportedAPIVersions)
		w.PutInt32(0) // throttle_time_ms
		w.PutEmptyTaggedFields()
	default:
		writeErrorCode(w, protocol.ErrUnsupportedVersion)
		// Empty-but-present, not null: original_source's fallback arm is
		// CompactArray::new(Some(vec![])), which encodes uvarint(1), and
		// spec.md §8 S1 expects api_versions=[] rather than a null array.
		writeAPIVersionArrayV2(w, []apiVersionEntry{})
		w.PutInt32(0)
		w.PutEmptyTaggedFields()
	}
	return w.Bytes()
}

func writeErrorCode(w *protocol.Writer, code protocol.ErrorCode) {
	w.PutInt16(int16(code))
}

// writeAPIVersionArrayV1 writes the plain i32-length-prefixed
// Array<ApiVersionV1> (no per-entry tagged fields) used by ApiVersions
// response versions 0-2: unlike the request header, the v0-2 response body
// is never flexible, so the length prefix and entries stay non-compact.
func writeAPIVersionArrayV1(w *protocol.Writer, entries []apiVersionEntry) {
	w.PutArrayLen(len(entries), entries == nil)
	for _, e := range entries {
		w.PutInt16(e.apiKey)
		w.PutInt16(e.minVersion)
		w.PutInt16(e.maxVersion)
	}
}

// writeAPIVersionArrayV2 writes a CompactArray<ApiVersionV2> (with
// per-entry tagged fields), used by response versions 3+.
func writeAPIVersionArrayV2(w *protocol.Writer, entries []apiVersionEntry) {
	w.PutCompactArrayLen(len(entries), entries == nil)
	for _, e := range entries {
		w.PutInt16(e.apiKey)
		w.PutInt16(e.minVersion)
		w.PutInt16(e.maxVersion)
		w.PutEmptyTaggedFields()
	}
}
