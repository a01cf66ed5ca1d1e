package protocol

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zereker/gamewire/wire"
)

var (
	testEntityID = NewAttributeKey[int32]("test-entity-id")
	testName     = NewAttributeKey[string]("test-name")
)

func TestNewContext_Defaults(t *testing.T) {
	ctx := NewContext()

	assert.NotEqual(t, uuid.Nil, ctx.ID())
	require.NotNil(t, ctx.Alloc())

	buf := ctx.Alloc().Buffer()
	assert.Equal(t, 0, buf.WriterIndex())
	assert.NotSame(t, buf, ctx.Alloc().Buffer())
}

func TestNewContext_Options(t *testing.T) {
	id := uuid.New()
	alloc := wire.NewPooledAllocator(8)
	ctx := NewContext(WithID(id), WithAllocator(alloc))

	assert.Equal(t, id, ctx.ID())
	assert.Same(t, alloc, ctx.Alloc())
}

func TestAttribute_SetGet(t *testing.T) {
	ctx := NewContext()

	_, err := Attr(ctx, testEntityID).Get()
	assert.True(t, errors.Is(err, ErrAttributeNotSet))

	Attr(ctx, testEntityID).Set(42)
	v, err := Attr(ctx, testEntityID).Get()
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)

	Attr(ctx, testEntityID).Set(7)
	v, ok := Attr(ctx, testEntityID).Lookup()
	assert.True(t, ok)
	assert.Equal(t, int32(7), v)
}

func TestAttribute_KeysAreDistinct(t *testing.T) {
	ctx := NewContext()
	other := NewAttributeKey[int32]("test-entity-id")

	Attr(ctx, testEntityID).Set(1)
	Attr(ctx, testName).Set("steve")

	_, ok := Attr(ctx, other).Lookup()
	assert.False(t, ok, "keys with the same name are different tokens")

	name, err := Attr(ctx, testName).Get()
	require.NoError(t, err)
	assert.Equal(t, "steve", name)
}

func TestAttribute_ScopedToContext(t *testing.T) {
	a := NewContext()
	b := NewContext()

	Attr(a, testEntityID).Set(99)

	_, ok := Attr(b, testEntityID).Lookup()
	assert.False(t, ok)
}

func TestAttribute_RemoveAndClear(t *testing.T) {
	ctx := NewContext()
	Attr(ctx, testEntityID).Set(1)
	Attr(ctx, testName).Set("alex")

	Attr(ctx, testEntityID).Remove()
	_, ok := Attr(ctx, testEntityID).Lookup()
	assert.False(t, ok)

	ctx.Clear()
	_, ok = Attr(ctx, testName).Lookup()
	assert.False(t, ok)
}
