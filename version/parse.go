package version

import (
	"strings"
)

// Version is a parsed version string. The zero value is the empty, malformed
// version. Values are immutable; the With* methods return modified copies.
type Version struct {
	numbers   []string
	numDelims []string // numDelims[i] precedes numbers[i+1]

	// qualDelim separates the numeric part from the first qualifier piece.
	// Later pieces carry their own delimiter.
	qualDelim  string
	base       string
	buildDelim string
	build      string
	snapDelim  string
	snapshot   string

	malformed bool
}

// Parse parses s. It never fails: malformed input is kept verbatim as the
// qualifier base and reported by [Version.Malformed].
func Parse(s string) Version {
	toks, ok := tokenize(s)
	if !ok {
		return Version{base: s, malformed: true}
	}
	p := parser{toks: toks}
	return p.parse()
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) at(offset int, kind tokenKind) bool {
	i := p.pos + offset
	return i < len(p.toks) && p.toks[i].kind == kind
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

func (p *parser) parse() Version {
	var v Version
	p.parseNumeric(&v)
	if p.pos == len(p.toks) {
		return v
	}
	if len(v.numbers) > 0 && p.at(0, tokDelim) {
		v.qualDelim = p.next().text
	}
	parseQualifier(&v, p.toks[p.pos:])
	return v
}

// parseNumeric consumes up to three delimited digit runs.
func (p *parser) parseNumeric(v *Version) {
	if !p.at(0, tokNumber) {
		return
	}
	v.numbers = append(v.numbers, p.next().text)
	for len(v.numbers) < 3 && p.at(0, tokDelim) && p.at(1, tokNumber) {
		v.numDelims = append(v.numDelims, p.next().text)
		v.numbers = append(v.numbers, p.next().text)
	}
}

// parseQualifier splits qualifier tokens from the right: an optional
// SNAPSHOT, then an optional delimited build number, and the rest is the base.
func parseQualifier(v *Version, toks []token) {
	n := len(toks)
	if n > 0 && toks[n-1].kind == tokAlpha && strings.EqualFold(toks[n-1].text, "SNAPSHOT") {
		switch {
		case n == 1:
			v.snapshot = toks[0].text
			toks = toks[:0]
		case toks[n-2].kind == tokDelim:
			v.snapDelim = toks[n-2].text
			v.snapshot = toks[n-1].text
			toks = toks[:n-2]
		}
	}

	n = len(toks)
	if n > 0 && toks[n-1].kind == tokNumber {
		switch {
		case n == 1:
			v.build = toks[0].text
			toks = toks[:0]
		case toks[n-2].kind == tokDelim:
			v.buildDelim = toks[n-2].text
			v.build = toks[n-1].text
			toks = toks[:n-2]
		}
	}

	var sb strings.Builder
	for _, t := range toks {
		sb.WriteString(t.text)
	}
	v.base = sb.String()

	// The first piece present is introduced by qualDelim, not its own delimiter.
	if v.base == "" {
		if v.build != "" {
			v.buildDelim = ""
		} else {
			v.snapDelim = ""
		}
	}
}

// parseSuffix parses a qualifier fragment that has no numeric part.
func parseSuffix(s string) (Version, bool) {
	toks, ok := tokenize(s)
	if !ok {
		return Version{}, false
	}
	var v Version
	parseQualifier(&v, toks)
	return v, true
}

// String reassembles the version with its original delimiters.
func (v Version) String() string {
	var sb strings.Builder
	for i, n := range v.numbers {
		if i > 0 {
			sb.WriteString(v.numDelims[i-1])
		}
		sb.WriteString(n)
	}
	if len(v.numbers) > 0 && v.hasQualifier() {
		sb.WriteString(v.qualDelim)
	}
	sb.WriteString(v.base)
	if v.build != "" {
		sb.WriteString(v.buildDelim)
		sb.WriteString(v.build)
	}
	if v.snapshot != "" {
		sb.WriteString(v.snapDelim)
		sb.WriteString(v.snapshot)
	}
	return sb.String()
}

// Malformed reports whether the input could not be parsed.
func (v Version) Malformed() bool { return v.malformed }

// Numbers returns the numeric components (at most three).
func (v Version) Numbers() []string {
	return append([]string(nil), v.numbers...)
}

// Major returns the first numeric component, or "".
func (v Version) Major() string { return v.number(0) }

// Minor returns the second numeric component, or "".
func (v Version) Minor() string { return v.number(1) }

// Micro returns the third numeric component, or "".
func (v Version) Micro() string { return v.number(2) }

func (v Version) number(i int) string {
	if i < len(v.numbers) {
		return v.numbers[i]
	}
	return ""
}

// QualifierBase returns the qualifier without build number and snapshot.
func (v Version) QualifierBase() string { return v.base }

// BuildNumber returns the build number digits, or "".
func (v Version) BuildNumber() string { return v.build }

// IsSnapshot reports whether the version ends in SNAPSHOT.
func (v Version) IsSnapshot() bool { return v.snapshot != "" }

// Qualifier returns everything after the numeric part and its delimiter.
func (v Version) Qualifier() string {
	q := v
	q.numbers = nil
	q.numDelims = nil
	return q.String()
}

func (v Version) hasQualifier() bool {
	return v.base != "" || v.build != "" || v.snapshot != ""
}

func (v Version) clone() Version {
	v.numbers = append([]string(nil), v.numbers...)
	v.numDelims = append([]string(nil), v.numDelims...)
	return v
}

// normalize restores delimiter invariants after an edit.
func (v *Version) normalize() {
	if !v.hasQualifier() {
		v.qualDelim, v.buildDelim, v.snapDelim = "", "", ""
		return
	}
	switch {
	case v.base != "":
		if v.build != "" && v.buildDelim == "" {
			v.buildDelim = "-"
		}
	case v.build != "":
		v.buildDelim = ""
		// A bare build number after fewer than three numbers would read
		// back as another numeric component.
		if len(v.numbers) > 0 {
			v.padNumbers()
		}
	default:
		v.snapDelim = ""
	}
	if v.snapshot != "" && (v.base != "" || v.build != "") && v.snapDelim == "" {
		v.snapDelim = "-"
	}
	if len(v.numbers) > 0 && v.qualDelim == "" && v.base == "" {
		v.qualDelim = "-"
	}
}

// padNumbers extends the numeric part to major.minor.micro with zeros.
func (v *Version) padNumbers() {
	for len(v.numbers) < 3 {
		v.numDelims = append(v.numDelims, ".")
		v.numbers = append(v.numbers, "0")
	}
}
