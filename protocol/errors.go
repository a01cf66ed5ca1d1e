package protocol

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errors returned by the codec layer. Buffer-level failures come from the
// wire package (wire.ErrBufferUnderflow, wire.ErrMalformedValue,
// wire.ErrIndexOutOfRange) and are reachable through errors.Is.
var (
	// ErrAttributeNotSet is returned by Attribute.Get for a key that has no value.
	ErrAttributeNotSet = errors.New("protocol: attribute not set")
	// ErrNoInternalID is returned when a message references a catalog value
	// that has no registered wire id.
	ErrNoInternalID = errors.New("protocol: no internal id")
	// ErrUnknownPacket is returned when no codec is registered for a packet id
	// or message type.
	ErrUnknownPacket = errors.New("protocol: unknown packet")
	// ErrTrailingBytes is returned when a decoder leaves unread payload bytes.
	ErrTrailingBytes = errors.New("protocol: trailing bytes after packet")
)

// EncodeError reports a message that cannot be represented on the wire.
type EncodeError struct {
	Message string // name of the message being encoded
	Err     error
}

// NewEncodeError wraps err as an EncodeError for msg.
func NewEncodeError(msg Message, err error) *EncodeError {
	name := "<nil>"
	if msg != nil {
		name = msg.MessageName()
	}
	return &EncodeError{Message: name, Err: err}
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("protocol: encode %s: %v", e.Message, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// DecodeError reports a packet whose payload could not be decoded.
type DecodeError struct {
	State     State
	Direction Direction
	PacketID  int32
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("protocol: decode %s %s packet 0x%02X: %v", e.State, e.Direction, e.PacketID, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
