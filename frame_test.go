package gamewire

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zereker/gamewire/wire"
)

func frameReader(p []byte) *limitedReader {
	return newLimitedReader(bufio.NewReader(bytes.NewReader(p)), 0)
}

func TestAppendFrame(t *testing.T) {
	got := appendFrame(nil, 0x25, []byte{0xAA, 0xBB})
	assert.Equal(t, []byte{0x03, 0x25, 0xAA, 0xBB}, got)

	got = appendFrame([]byte{0xFF}, 300, nil)
	assert.Equal(t, []byte{0xFF, 0x02, 0xAC, 0x02}, got)
}

func TestReadFrame(t *testing.T) {
	stream := appendFrame(appendFrame(nil, 0x13, []byte{1, 2, 3}), 0x1A, nil)
	r := frameReader(stream)

	frame, err := readFrame(r, wire.HeapAllocator{}, 1024)
	require.NoError(t, err)
	id, err := frame.ReadVarInt()
	require.NoError(t, err)
	assert.Equal(t, int32(0x13), id)
	assert.Equal(t, []byte{1, 2, 3}, frame.Readable())

	frame, err = readFrame(r, wire.HeapAllocator{}, 1024)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1A}, frame.Bytes())

	_, err = readFrame(r, wire.HeapAllocator{}, 1024)
	assert.Equal(t, io.EOF, err)
}

func TestReadFrame_Errors(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
		max    int
		check  func(error) bool
	}{
		{"empty_frame", []byte{0x00}, 1024, func(err error) bool { return errors.Is(err, wire.ErrMalformedValue) }},
		{"negative_length", wire.AppendVarInt(nil, -1), 1024, func(err error) bool { return errors.Is(err, wire.ErrMalformedValue) }},
		{"too_large", appendFrame(nil, 1, make([]byte, 32)), 16, func(err error) bool { return errors.Is(err, ErrMessageTooLarge) }},
		{"truncated_body", []byte{0x05, 0x01, 0x02}, 1024, func(err error) bool { return err == io.ErrUnexpectedEOF }},
		{"truncated_length", []byte{0x80}, 1024, func(err error) bool { return err == io.ErrUnexpectedEOF }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := readFrame(frameReader(tc.stream), wire.HeapAllocator{}, tc.max)
			require.Error(t, err)
			assert.True(t, tc.check(err), "unexpected error %v", err)
		})
	}
}

func TestReadFrame_PooledAllocator(t *testing.T) {
	alloc := wire.NewPooledAllocator(16)
	r := frameReader(appendFrame(nil, 0x0F, bytes.Repeat([]byte{7}, 12)))

	frame, err := readFrame(r, alloc, 1024)
	require.NoError(t, err)
	assert.Equal(t, 13, frame.WriterIndex())
	release(alloc, frame)

	// HeapAllocator has no Release; release is a no-op for it.
	assert.NotPanics(t, func() { release(wire.HeapAllocator{}, wire.NewBuffer()) })
}

func TestLimitedReader(t *testing.T) {
	r := newLimitedReader(bufio.NewReader(bytes.NewReader([]byte{1, 2, 3, 4})), 3)

	p := make([]byte, 8)
	n, err := r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = r.ReadByte()
	assert.Equal(t, ErrMessageTooLarge, err)

	r.reset(1)
	c, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(4), c)
}
