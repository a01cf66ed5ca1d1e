package wire

import "github.com/pkg/errors"

// Errors returned by Buffer operations. Callers match them with errors.Is;
// the returned values are usually wrapped with the offending sizes.
var (
	// ErrBufferUnderflow is returned when a read needs more bytes than are
	// readable before the writer index. The stream is truncated or out of sync.
	ErrBufferUnderflow = errors.New("wire: buffer underflow")
	// ErrIndexOutOfRange is returned when a cursor is moved outside its bounds.
	ErrIndexOutOfRange = errors.New("wire: index out of range")
	// ErrMalformedValue is returned when decoded bytes do not form a valid value,
	// e.g. an over-long varint or a negative string length.
	ErrMalformedValue = errors.New("wire: malformed value")
)

func underflow(need, readable int) error {
	return errors.Wrapf(ErrBufferUnderflow, "need %d bytes, %d readable", need, readable)
}
