// Package handlers implements the three supported Kafka APIs (ApiVersions,
// DescribeTopicPartitions, Fetch) on top of internal/kafka/protocol and
// internal/kafka/metadata.
package handlers

import (
	"github.com/moband/kafkabroker/internal/kafka/metadata"
	"github.com/moband/kafkabroker/internal/kafka/protocol"
)

// Route decodes one request frame body and returns the encoded response
// frame body (no length prefix — that's C5's job). log is the mtime-keyed
// cache of decoded metadata batches; the Index a handler queries is built
// from it per request.
func Route(body []byte, log *metadata.Cache, logPath string) ([]byte, error) {
	if len(body) < 4 {
		return nil, protocol.ErrTruncated
	}
	apiKey := int16(body[0])<<8 | int16(body[1])
	apiVersion := int16(body[2])<<8 | int16(body[3])

	flexible := isFlexibleHeader(apiKey, apiVersion)
	r := protocol.NewReader(body)
	header := protocol.ReadRequestHeader(r, flexible)
	if r.Err() != nil {
		return nil, r.Err()
	}

	switch apiKey {
	case apiKeyAPIVersions:
		return HandleAPIVersions(header.CorrelationID, header.APIVersion), nil
	case apiKeyDescribeTopicPartitions:
		idx, err := indexFor(log, logPath)
		if err != nil {
			return nil, err
		}
		return HandleDescribeTopicPartitions(r, header.CorrelationID, header.APIVersion, idx), nil
	case apiKeyFetch:
		if header.APIVersion != 16 {
			return nil, &protocol.UnsupportedAPIError{CorrelationID: header.CorrelationID}
		}
		topics := readFetchRequest(r)
		if r.Err() != nil {
			return nil, r.Err()
		}
		// An empty topics list never touches the metadata log (spec.md
		// §4.7/§8 S6): idx stays nil and encodeFetchResponse's topics loop
		// never runs, so it's never dereferenced.
		var idx *metadata.Index
		if len(topics) > 0 {
			var err error
			idx, err = indexFor(log, logPath)
			if err != nil {
				return nil, err
			}
		}
		return encodeFetchResponse(header.CorrelationID, topics, idx), nil
	default:
		return nil, &protocol.UnsupportedAPIError{CorrelationID: header.CorrelationID}
	}
}

// isFlexibleHeader decides whether the request header carries a
// tagged-fields trailer. ApiVersions flexes starting at v3; the other two
// APIs are flexible at every version they're attempted with (an
// unsupported version still needs a flexible parse to recover the
// correlation id, per HandleDescribeTopicPartitions and Route's Fetch
// version check).
func isFlexibleHeader(apiKey, apiVersion int16) bool {
	switch apiKey {
	case apiKeyAPIVersions:
		return apiVersion >= 3
	case apiKeyDescribeTopicPartitions, apiKeyFetch:
		return true
	default:
		return false
	}
}

func indexFor(log *metadata.Cache, logPath string) (*metadata.Index, error) {
	batches, err := log.ReadBatchesFile(logPath)
	if err != nil {
		return nil, err
	}
	return metadata.BuildIndex(batches), nil
}
