package protocol

import "github.com/pkg/errors"

// AttributeKey identifies a connection attribute holding a T. Keys compare by
// identity, so two keys created with the same name are still distinct.
type AttributeKey[T any] struct {
	name string
}

// NewAttributeKey creates a key. Keys are usually package-level variables.
func NewAttributeKey[T any](name string) *AttributeKey[T] {
	return &AttributeKey[T]{name: name}
}

// Name returns the name the key was created with.
func (k *AttributeKey[T]) Name() string {
	return k.name
}

func (k *AttributeKey[T]) String() string {
	return k.name
}

// Attribute is a typed handle on one attribute of a Context.
type Attribute[T any] struct {
	ctx *Context
	key *AttributeKey[T]
}

// Attr returns the handle for key on ctx.
func Attr[T any](ctx *Context, key *AttributeKey[T]) Attribute[T] {
	return Attribute[T]{ctx: ctx, key: key}
}

// Set stores v, replacing any previous value.
func (a Attribute[T]) Set(v T) {
	a.ctx.attrs[a.key] = v
}

// Get returns the stored value or ErrAttributeNotSet.
func (a Attribute[T]) Get() (T, error) {
	v, ok := a.Lookup()
	if !ok {
		return v, errors.Wrapf(ErrAttributeNotSet, "attribute %q", a.key.name)
	}
	return v, nil
}

// Lookup returns the stored value and whether it was set.
func (a Attribute[T]) Lookup() (T, bool) {
	v, ok := a.ctx.attrs[a.key]
	if !ok {
		var zero T
		return zero, false
	}
	// Only Set writes under a *AttributeKey[T], so the value is always a T.
	return v.(T), true
}

// Remove deletes the stored value.
func (a Attribute[T]) Remove() {
	delete(a.ctx.attrs, a.key)
}
