package override

import (
	"strings"

	"go.trai.ch/zerr"
)

// Precedence orders the primary (bill of materials) and secondary (REST
// translation) tables.
type Precedence int

const (
	// PrimaryFirst uses both tables; primary entries win.
	PrimaryFirst Precedence = iota
	// SecondaryFirst uses both tables; secondary entries win.
	SecondaryFirst
	// PrimaryOnly ignores the secondary table.
	PrimaryOnly
	// SecondaryOnly ignores the primary table.
	SecondaryOnly
)

var precedenceNames = map[string]Precedence{
	"primary-first":   PrimaryFirst,
	"bomrest":         PrimaryFirst,
	"secondary-first": SecondaryFirst,
	"restbom":         SecondaryFirst,
	"primary":         PrimaryOnly,
	"bom":             PrimaryOnly,
	"secondary":       SecondaryOnly,
	"rest":            SecondaryOnly,
}

func (p Precedence) String() string {
	switch p {
	case PrimaryFirst:
		return "primary-first"
	case SecondaryFirst:
		return "secondary-first"
	case PrimaryOnly:
		return "primary"
	case SecondaryOnly:
		return "secondary"
	}
	return "unknown"
}

// ParsePrecedence parses a precedence name. BOM, REST, BOMREST and RESTBOM
// are accepted as aliases. The empty string means PrimaryFirst.
func ParsePrecedence(s string) (Precedence, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if normalized == "" {
		return PrimaryFirst, nil
	}
	if p, ok := precedenceNames[normalized]; ok {
		return p, nil
	}
	return PrimaryFirst, zerr.With(zerr.Wrap(ErrUnknownPrecedence, "parse precedence"), "precedence", s)
}

// Merge combines primary and secondary under p. Entries of the winning table
// come first, in their own order, followed by entries only the other table
// has. Either table may be nil.
func Merge(primary, secondary *Table, p Precedence) *Table {
	var first, second *Table
	switch p {
	case PrimaryOnly:
		return primary.Clone()
	case SecondaryOnly:
		return secondary.Clone()
	case SecondaryFirst:
		first, second = secondary, primary
	default:
		first, second = primary, secondary
	}
	out := first.Clone()
	for _, o := range second.Entries() {
		out.setIfAbsent(o)
	}
	return out
}

// MergeTables applies [Merge] to the dependency and plugin tables.
func MergeTables(primary, secondary *Tables, p Precedence) *Tables {
	if primary == nil {
		primary = NewTables()
	}
	if secondary == nil {
		secondary = NewTables()
	}
	return &Tables{
		Dependencies: Merge(primary.Dependencies, secondary.Dependencies, p),
		Plugins:      Merge(primary.Plugins, secondary.Plugins, p),
	}
}
