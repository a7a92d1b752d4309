package session

import (
	"context"

	"github.com/IvanPartsunev/deltacat-cli/internal/catalog"
	"github.com/rs/zerolog/log"
)

// Opener connects to an initialized catalog.  catalog.Open is used when no
// opener is given.
type Opener func(ctx context.Context, name string, root string) (*catalog.Catalog, error)

// Context resolves the current catalog and keeps one open handle for the
// last pointer it was asked about.
type Context struct {
	store  *Store
	open   Opener
	key    Pointer
	handle *catalog.Catalog
}

func NewContext(store *Store, open Opener) *Context {
	if open == nil {
		open = catalog.Open
	}
	return &Context{store: store, open: open}
}

func (c *Context) Store() *Store {
	return c.store
}

func (c *Context) Current() (Pointer, error) {
	return c.store.Current()
}

// Catalog returns the handle for the current pointer, opening it on first
// use or when the pointer changed.
func (c *Context) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	pointer, err := c.store.Current()
	if err != nil {
		return nil, err
	}

	if c.handle != nil && c.key == pointer {
		return c.handle, nil
	}
	c.invalidate()

	handle, err := c.open(ctx, pointer.Name, pointer.Root)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("catalog", pointer.Name).Str("root", pointer.Root).Msg("cached catalog handle")
	c.key = pointer
	c.handle = handle
	return handle, nil
}

func (c *Context) invalidate() {
	if c.handle != nil {
		if err := c.handle.Close(); err != nil {
			log.Debug().Err(err).Msg("failed to close catalog handle")
		}
	}
	c.handle = nil
	c.key = Pointer{}
}

func (c *Context) Set(name string, root string) error {
	c.invalidate()
	return c.store.Set(name, root)
}

func (c *Context) Clear() error {
	c.invalidate()
	return c.store.Clear()
}

func (c *Context) Switch(name string) (Pointer, error) {
	c.invalidate()
	return c.store.Switch(name)
}

func (c *Context) Remove(name string) (Pointer, error) {
	c.invalidate()
	return c.store.Remove(name)
}

func (c *Context) Close() error {
	c.invalidate()
	return nil
}
