// Package protocol defines the codec contract of the game protocol and the
// per-connection state codecs share.
//
// A Context is created when a connection is established and dropped when it
// disconnects. Codecs are stateless and shared by every connection; anything
// a codec must remember between two packets of the same connection lives in
// the Context's typed attributes.
package protocol

import (
	"github.com/google/uuid"

	"github.com/Zereker/gamewire/wire"
)

// Context is the state of one connection as seen by codecs. It is not safe
// for concurrent use: a connection encodes and decodes one packet at a time.
type Context struct {
	id    uuid.UUID
	alloc wire.Allocator
	attrs map[any]any
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithAllocator sets the allocator codecs get their output buffers from.
func WithAllocator(alloc wire.Allocator) ContextOption {
	return func(c *Context) {
		c.alloc = alloc
	}
}

// WithID sets the connection id instead of a random one.
func WithID(id uuid.UUID) ContextOption {
	return func(c *Context) {
		c.id = id
	}
}

// NewContext creates the context of a new connection.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{attrs: make(map[any]any)}
	for _, opt := range opts {
		opt(c)
	}
	if c.alloc == nil {
		c.alloc = wire.HeapAllocator{}
	}
	if c.id == uuid.Nil {
		c.id = uuid.New()
	}
	return c
}

// ID returns the connection id.
func (c *Context) ID() uuid.UUID {
	return c.id
}

// Alloc returns the buffer allocator of the connection.
func (c *Context) Alloc() wire.Allocator {
	return c.alloc
}

// Clear drops every attribute. It is called when the connection goes away.
func (c *Context) Clear() {
	clear(c.attrs)
}
