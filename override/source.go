package override

import (
	"context"

	"go.trai.ch/zerr"

	"github.com/albertocavalcante/go-realign/coord"
)

// Source loads the overrides a bill of materials manages.
type Source interface {
	Overrides(ctx context.Context, ref coord.GAV) (*Tables, error)
}

// StaticSource serves tables from memory, keyed by "group:artifact:version".
type StaticSource map[string]*Tables

var _ Source = StaticSource(nil)

// Overrides implements [Source].
func (s StaticSource) Overrides(ctx context.Context, ref coord.GAV) (*Tables, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, ok := s[ref.String()]
	if !ok {
		return nil, zerr.With(zerr.Wrap(ErrUnknownBOM, "static source"), "bom", ref.String())
	}
	return t, nil
}

// Collection is the result of loading several bills of materials.
type Collection struct {
	// Merged holds every entry; when two references manage the same
	// coordinate the one listed first wins.
	Merged *Tables
	// Named holds each reference's own tables, keyed by
	// "group:artifact:version", for symbolic override values.
	Named map[string]*Tables
}

// Collect loads refs from src in order.
func Collect(ctx context.Context, src Source, refs []coord.GAV) (*Collection, error) {
	out := &Collection{Merged: NewTables(), Named: make(map[string]*Tables, len(refs))}
	for _, ref := range refs {
		t, err := src.Overrides(ctx, ref)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "load bill of materials"), "bom", ref.String())
		}
		if t == nil {
			t = NewTables()
		}
		out.Named[ref.String()] = t
		for _, o := range t.Dependencies.Entries() {
			out.Merged.Dependencies.setIfAbsent(o)
		}
		for _, o := range t.Plugins.Entries() {
			out.Merged.Plugins.setIfAbsent(o)
		}
	}
	return out, nil
}

// DependencyTables returns the named dependency tables.
func (c *Collection) DependencyTables() map[string]*Table {
	return c.pick(func(t *Tables) *Table { return t.Dependencies })
}

// PluginTables returns the named plugin tables.
func (c *Collection) PluginTables() map[string]*Table {
	return c.pick(func(t *Tables) *Table { return t.Plugins })
}

func (c *Collection) pick(fn func(*Tables) *Table) map[string]*Table {
	if c == nil {
		return nil
	}
	out := make(map[string]*Table, len(c.Named))
	for name, t := range c.Named {
		out[name] = fn(t)
	}
	return out
}
