package protocol

// ErrorCode is the i16 error code that rides in every Kafka response body.
// The table below is grounded on the pack's srenatus-franz-go/kerr package
// (code -> name/retriable/description); UnknownTopicID (100) postdates that
// snapshot and is added here since Fetch needs it.
type ErrorCode int16

const (
	ErrNone                     ErrorCode = 0
	ErrOffsetOutOfRange         ErrorCode = 1
	ErrCorruptMessage           ErrorCode = 2
	ErrUnknownTopicOrPartition  ErrorCode = 3
	ErrUnknownServerError       ErrorCode = -1
	ErrUnsupportedVersion       ErrorCode = 35
	ErrInvalidRequest           ErrorCode = 42
	ErrUnknownTopicID           ErrorCode = 100
)

// errorCodeNames mirrors kerr.code2err's Message field, trimmed to the
// codes this broker can actually emit or needs to log meaningfully; any
// other code still encodes correctly on the wire via ErrorCode's int16
// underlying type, it just prints as its bare number.
var errorCodeNames = map[ErrorCode]string{
	ErrNone:                    "NONE",
	ErrOffsetOutOfRange:        "OFFSET_OUT_OF_RANGE",
	ErrCorruptMessage:          "CORRUPT_MESSAGE",
	ErrUnknownTopicOrPartition: "UNKNOWN_TOPIC_OR_PARTITION",
	ErrUnknownServerError:      "UNKNOWN_SERVER_ERROR",
	ErrUnsupportedVersion:      "UNSUPPORTED_VERSION",
	ErrInvalidRequest:          "INVALID_REQUEST",
	ErrUnknownTopicID:          "UNKNOWN_TOPIC_ID",
}

// String implements fmt.Stringer for logging.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN_ERROR_CODE"
}
