package protocol

import (
	"io"

	"github.com/pkg/errors"
)

// Taxonomy from spec.md §7. Each sentinel is wrapped with github.com/pkg/errors
// at the call site so callers can still recover the original frame via
// errors.Cause while getting a stack trace for logging.
var (
	// ErrTruncated means the byte source ended mid-structure.
	ErrTruncated = errors.New("truncated: stream ended mid-structure")
	// ErrNegativeFrameSize means a request's length prefix was negative.
	ErrNegativeFrameSize = errors.New("negative frame size")
	// ErrProtocolViolation means a non-nullable field arrived as null on the wire.
	ErrProtocolViolation = errors.New("protocol violation: non-nullable field was null")
	// ErrUnknownRecordType means a metadata record's type byte matched no known variant.
	ErrUnknownRecordType = errors.New("unknown cluster-metadata record type")
	// ErrUnsupportedAPI means the request's api_key/api_version has no handler.
	ErrUnsupportedAPI = errors.New("unsupported api key or version")
)

// IsEOF reports whether err is (or wraps) io.EOF specifically — the "clean"
// end of stream at a structure boundary, as opposed to ErrTruncated which
// means EOF arrived mid-structure.
func IsEOF(err error) bool {
	return errors.Is(err, io.EOF)
}

// UnsupportedAPIError is ErrUnsupportedAPI carrying the correlation id
// recovered from a request header that parsed successfully even though its
// api_key or api_version has no handler. Per spec.md §4.6/§7, a routing
// failure with a recovered correlation id gets a best-effort response
// carrying error_code UNSUPPORTED_VERSION rather than a dropped connection;
// only a header that fails to parse at all closes the connection.
type UnsupportedAPIError struct {
	CorrelationID int32
}

func (e *UnsupportedAPIError) Error() string {
	return ErrUnsupportedAPI.Error()
}

func (e *UnsupportedAPIError) Cause() error {
	return ErrUnsupportedAPI
}

func (e *UnsupportedAPIError) Unwrap() error {
	return ErrUnsupportedAPI
}
