package protocol

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// RequestHeader is the common envelope every request carries ahead of its
// body: api_key/api_version/correlation_id plus an optional client_id, and,
// for flexible versions, a tagged-fields trailer. ApiVersions uses the
// non-flexible v1 form for versions 0-2 and the flexible v2 form from v3;
// DescribeTopicPartitions and Fetch always use the flexible v2 form (per
// spec.md §4.5/§4.7).
type RequestHeader struct {
	APIKey        int16
	APIVersion    int16
	CorrelationID int32
	ClientID      *string
	Flexible      bool
}

// ReadFrame reads one length-prefixed Kafka request off conn: a big-endian
// i32 size followed by exactly that many bytes. A negative size is
// ErrNegativeFrameSize; a clean io.EOF before any bytes are read propagates
// unwrapped so the caller can treat it as "peer closed the connection"; any
// other truncation is ErrTruncated.
func ReadFrame(r io.Reader) ([]byte, error) {
	var sizeBuf [4]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, errors.WithStack(ErrTruncated)
		}
		return nil, err
	}
	size := int32(binary.BigEndian.Uint32(sizeBuf[:]))
	if size < 0 {
		return nil, errors.WithStack(ErrNegativeFrameSize)
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.WithStack(ErrTruncated)
		}
		return nil, err
	}
	return body, nil
}

// ReadRequestHeader decodes the envelope from the front of a frame body.
// flexible selects whether a tagged-fields trailer follows client_id.
func ReadRequestHeader(r *Reader, flexible bool) RequestHeader {
	h := RequestHeader{Flexible: flexible}
	h.APIKey = r.Int16()
	h.APIVersion = r.Int16()
	h.CorrelationID = r.Int32()
	h.ClientID = r.NullableString()
	if flexible {
		r.ReadTaggedFields()
	}
	return h
}

// WriteResponseHeaderV0 writes the non-flexible response header used by
// ApiVersions at every version, including the flexible v3/v4 bodies (per
// original_source/src/message/header.rs's ResponseHeader::V0).
func (w *Writer) WriteResponseHeaderV0(correlationID int32) {
	w.PutInt32(correlationID)
}

// SizeResponseHeaderV0 is the pure byte_size of WriteResponseHeaderV0.
func SizeResponseHeaderV0() int {
	return 4
}

// WriteResponseHeaderV1 writes the flexible response header (correlation_id
// plus an empty tagged-fields trailer), used by DescribeTopicPartitions and
// Fetch.
func (w *Writer) WriteResponseHeaderV1(correlationID int32) {
	w.PutInt32(correlationID)
	w.PutEmptyTaggedFields()
}

// SizeResponseHeaderV1 is the pure byte_size of WriteResponseHeaderV1.
func SizeResponseHeaderV1() int {
	return 4 + SizeEmptyTaggedFields()
}

// WriteUnsupportedAPIResponse encodes the best-effort fallback response for
// a routing failure whose correlation id was still recovered (spec.md §4.6):
// a non-flexible V0 header followed by the bare UNSUPPORTED_VERSION error
// code. No API-specific body shape applies here since the api_key itself
// wasn't recognized, so this is the minimal response a client's framing
// layer can still parse (size prefix, correlation id, one int16).
func WriteUnsupportedAPIResponse(correlationID int32) []byte {
	w := NewWriter(6)
	w.WriteResponseHeaderV0(correlationID)
	w.PutInt16(int16(ErrUnsupportedVersion))
	return w.Bytes()
}

// WriteFrame writes body as a length-prefixed Kafka response: a big-endian
// i32 size followed by body itself.
func WriteFrame(w io.Writer, body []byte) error {
	var sizeBuf [4]byte
	binary.BigEndian.PutUint32(sizeBuf[:], uint32(len(body)))
	if _, err := w.Write(sizeBuf[:]); err != nil {
		return errors.WithStack(err)
	}
	if _, err := w.Write(body); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
