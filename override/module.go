package override

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/zerr"

	"github.com/albertocavalcante/go-realign/coord"
)

// ReferencePrefix marks a symbolic override value.
const ReferencePrefix = "bom:"

// ModuleOverride is one user-supplied module override.
type ModuleOverride struct {
	// Key is the raw "target@module" key.
	Key string
	// Target is the coordinate or pattern being pinned or excluded.
	Target coord.GA
	// Module is the module pattern the entry applies to. It is empty when
	// AllModules is set.
	Module coord.GA
	// AllModules is set for "@*" keys.
	AllModules bool
	// Value is the pinned version, empty for an exclusion, or a symbolic
	// reference until resolved.
	Value string
	// Ref is set when Value refers to a bill of materials.
	Ref *coord.GAV
}

// IsExclusion reports whether the entry removes the target.
func (m ModuleOverride) IsExclusion() bool {
	return m.Value == "" && m.Ref == nil
}

// ParseModuleOverrides parses "target@module" -> value pairs. Entries are
// returned sorted by key.
func ParseModuleOverrides(entries map[string]string) ([]ModuleOverride, error) {
	out := make([]ModuleOverride, 0, len(entries))
	for _, key := range slices.Sorted(maps.Keys(entries)) {
		m, err := parseModuleOverride(key, entries[key])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// ParseModuleOverrideList parses "target@module=value" strings, as given on
// a command line. A missing "=value" is an exclusion.
func ParseModuleOverrideList(entries []string) ([]ModuleOverride, error) {
	m := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, _ := strings.Cut(entry, "=")
		m[strings.TrimSpace(key)] = value
	}
	return ParseModuleOverrides(m)
}

func parseModuleOverride(key, value string) (ModuleOverride, error) {
	invalid := func(reason string) error {
		return zerr.With(zerr.With(zerr.Wrap(ErrInvalidOverrideKey, reason), "key", key), "value", value)
	}
	if strings.Count(key, "@") != 1 {
		return ModuleOverride{}, invalid("key must contain exactly one @")
	}
	target, module, _ := strings.Cut(key, "@")

	m := ModuleOverride{Key: key, Value: strings.TrimSpace(value)}
	var err error
	if m.Target, err = coord.ParseGA(target); err != nil {
		return ModuleOverride{}, invalid("bad target coordinate")
	}
	if module == coord.Wildcard {
		m.AllModules = true
	} else if m.Module, err = coord.ParseGA(module); err != nil {
		return ModuleOverride{}, invalid("bad module coordinate")
	}

	if rest, ok := strings.CutPrefix(m.Value, ReferencePrefix); ok {
		if m.Target.IsPattern() {
			return ModuleOverride{}, invalid("references need a concrete target")
		}
		ref, err := coord.ParseGAV(rest)
		if err != nil {
			return ModuleOverride{}, invalid("bad bill of materials reference")
		}
		m.Ref = &ref
	}
	return m, nil
}

// AppliesTo reports whether the entry applies to module ga in the first
// pass. "@*" entries never do.
func (m ModuleOverride) AppliesTo(ga coord.GA) bool {
	return !m.AllModules && m.Module.Matches(ga)
}

// pin is a resolved module override in lookup order.
type pin struct {
	target coord.GA
	value  string
	key    string
}

// scope is the override view of one module.
type scope struct {
	working *Table
	pins    []pin
}

// newScope builds the view of module ga: pins from entries naming the module
// come before "@*" pins, and exact targets before patterns within each pass.
// Exclusions are removed from the working copy of global.
func newScope(ga coord.GA, entries []ModuleOverride, values map[string]string, global *Table) *scope {
	var first, second []pin
	for _, m := range entries {
		p := pin{target: m.Target, value: values[m.Key], key: m.Key}
		switch {
		case m.AllModules:
			second = append(second, p)
		case m.AppliesTo(ga):
			first = append(first, p)
		}
	}
	byPattern := func(a, b pin) int {
		return cmp.Compare(boolRank(a.target.IsPattern()), boolRank(b.target.IsPattern()))
	}
	slices.SortStableFunc(first, byPattern)
	slices.SortStableFunc(second, byPattern)

	s := &scope{working: global.Clone(), pins: append(first, second...)}
	for _, p := range s.pins {
		if p.value == "" {
			s.working.DeleteMatching(p.target)
		}
	}
	return s
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// lookup returns the first pin matching ga.
func (s *scope) lookup(ga coord.GA) (pin, bool) {
	for _, p := range s.pins {
		if p.target.Matches(ga) {
			return p, true
		}
	}
	return pin{}, false
}
