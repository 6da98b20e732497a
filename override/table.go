package override

import (
	"maps"
	"slices"

	"go.trai.ch/zerr"

	"github.com/albertocavalcante/go-realign/coord"
)

// Table is an ordered set of overrides keyed by coordinate. Keys may be
// patterns ("group:*", "*:*") only in module override scopes.
type Table struct {
	entries map[coord.GA]Override
	order   []coord.GA
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[coord.GA]Override)}
}

// TableFromVersions builds a table from "group:artifact" -> version pairs,
// sorted by coordinate.
func TableFromVersions(versions map[string]string) (*Table, error) {
	t := NewTable()
	for _, key := range slices.Sorted(maps.Keys(versions)) {
		ga, err := coord.ParseGA(key)
		if err != nil {
			return nil, err
		}
		if ga.IsPattern() {
			return nil, zerr.With(zerr.Wrap(ErrInvalidOverrideKey, "wildcard in override table"), "key", key)
		}
		t.Set(VersionOverride{GA: ga, Version: versions[key]})
	}
	return t, nil
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Get returns the override for ga.
func (t *Table) Get(ga coord.GA) (Override, bool) {
	if t == nil {
		return nil, false
	}
	o, ok := t.entries[ga]
	return o, ok
}

// Set adds or replaces the override for its coordinate. A replaced entry
// keeps its position.
func (t *Table) Set(o Override) {
	ga := o.Coordinate()
	if _, ok := t.entries[ga]; !ok {
		t.order = append(t.order, ga)
	}
	t.entries[ga] = o
}

// setIfAbsent adds o unless its coordinate is present.
func (t *Table) setIfAbsent(o Override) {
	if _, ok := t.entries[o.Coordinate()]; !ok {
		t.Set(o)
	}
}

// Delete removes the entry for ga.
func (t *Table) Delete(ga coord.GA) {
	if _, ok := t.entries[ga]; !ok {
		return
	}
	delete(t.entries, ga)
	t.order = slices.DeleteFunc(t.order, func(k coord.GA) bool { return k == ga })
}

// DeleteMatching removes every entry the pattern matches and returns how many
// were removed.
func (t *Table) DeleteMatching(pattern coord.GA) int {
	n := 0
	t.order = slices.DeleteFunc(t.order, func(k coord.GA) bool {
		if !pattern.Matches(k) {
			return false
		}
		delete(t.entries, k)
		n++
		return true
	})
	return n
}

// Entries returns the overrides in insertion order.
func (t *Table) Entries() []Override {
	if t == nil {
		return nil
	}
	out := make([]Override, 0, len(t.order))
	for _, ga := range t.order {
		out = append(out, t.entries[ga])
	}
	return out
}

// Versions returns the table as "group:artifact" -> version.
func (t *Table) Versions() map[string]string {
	out := make(map[string]string, t.Len())
	for _, o := range t.Entries() {
		out[o.Coordinate().String()] = o.TargetVersion()
	}
	return out
}

// Clone returns a shallow copy; overrides are values and are shared.
func (t *Table) Clone() *Table {
	if t == nil {
		return NewTable()
	}
	return &Table{entries: maps.Clone(t.entries), order: slices.Clone(t.order)}
}

// Tables holds the dependency and plugin overrides of one source.
type Tables struct {
	Dependencies *Table
	Plugins      *Table
}

// NewTables returns empty tables.
func NewTables() *Tables {
	return &Tables{Dependencies: NewTable(), Plugins: NewTable()}
}

// Len returns the total number of entries.
func (t *Tables) Len() int {
	if t == nil {
		return 0
	}
	return t.Dependencies.Len() + t.Plugins.Len()
}
