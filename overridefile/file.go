package overridefile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/bazelbuild/buildtools/build"
	"go.trai.ch/zerr"

	"github.com/albertocavalcante/go-realign/coord"
	"github.com/albertocavalcante/go-realign/internal/buildutil"
	"github.com/albertocavalcante/go-realign/override"
	"github.com/albertocavalcante/go-realign/project"
)

// ErrInvalidFile is wrapped by every error [Parse] reports.
var ErrInvalidFile = zerr.New("invalid override file")

// Position locates a statement in the file.
type Position struct {
	Filename string
	Line     int
	Column   int
}

// ParseError is a problem with one statement.
type ParseError struct {
	Pos     Position
	Message string
	Wrapped error
}

func (e *ParseError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}

// File is a parsed override file.
type File struct {
	Path string

	boms   []coord.GAV
	tables map[string]*override.Tables

	dependencyOverrides map[string]string
	pluginOverrides     map[string]string
}

var _ override.Source = (*File)(nil)

// ParseFile reads and parses an override file from disk.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "read override file"), "path", path)
	}
	return Parse(path, data)
}

// Parse parses override declarations. Every statement is checked; the
// returned error joins all problems found.
func Parse(filename string, content []byte) (*File, error) {
	raw, err := build.ParseModule(filename, content)
	if err != nil {
		return nil, zerr.Wrap(errors.Join(ErrInvalidFile, &ParseError{
			Pos:     Position{Filename: filename},
			Message: fmt.Sprintf("syntax error: %v", err),
			Wrapped: err,
		}), "parse override file")
	}

	p := &parser{
		filename: filename,
		file: &File{
			Path:                filename,
			tables:              make(map[string]*override.Tables),
			dependencyOverrides: make(map[string]string),
			pluginOverrides:     make(map[string]string),
		},
	}
	for _, stmt := range raw.Stmt {
		call, ok := stmt.(*build.CallExpr)
		if !ok {
			continue
		}
		p.statement(call)
	}
	if len(p.errs) > 0 {
		return nil, zerr.Wrap(errors.Join(append([]error{ErrInvalidFile}, p.errs...)...), "parse override file")
	}
	return p.file, nil
}

// BOMs returns the declared bills of materials in file order.
func (f *File) BOMs() []coord.GAV {
	return slices.Clone(f.boms)
}

// Overrides implements override.Source.
func (f *File) Overrides(ctx context.Context, ref coord.GAV) (*override.Tables, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, ok := f.tables[ref.String()]
	if !ok {
		return nil, zerr.With(zerr.With(zerr.Wrap(override.ErrUnknownBOM, "override file"), "bom", ref.String()), "path", f.Path)
	}
	return t, nil
}

// DependencyOverrides returns the dependency_override declarations as
// "target@module" -> version.
func (f *File) DependencyOverrides() map[string]string {
	return f.dependencyOverrides
}

// PluginOverrides returns the plugin_override declarations.
func (f *File) PluginOverrides() map[string]string {
	return f.pluginOverrides
}

type parser struct {
	filename string
	file     *File
	errs     []error
}

func (p *parser) position(expr build.Expr) Position {
	start, _ := expr.Span()
	return Position{Filename: p.filename, Line: start.Line, Column: start.LineRune}
}

func (p *parser) addError(pos Position, format string, args ...any) {
	p.errs = append(p.errs, &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) statement(call *build.CallExpr) {
	pos := p.position(call)
	switch name := buildutil.FuncName(call); name {
	case "bom":
		p.bom(call, pos)
	case "managed_plugin":
		p.managedPlugin(call, pos)
	case "dependency_override":
		p.moduleOverride(call, pos, "dependency", p.file.dependencyOverrides)
	case "plugin_override":
		p.moduleOverride(call, pos, "plugin", p.file.pluginOverrides)
	default:
		p.addError(pos, "unknown function %q", name)
	}
}

// tables returns the tables for coordinate, declaring the bill of
// materials on first use.
func (p *parser) tables(call *build.CallExpr, pos Position) (*override.Tables, bool) {
	raw := buildutil.String(call, "coordinate")
	gav, err := coord.ParseGAV(raw)
	if err != nil {
		p.addError(pos, "%s: invalid coordinate %q", buildutil.FuncName(call), raw)
		return nil, false
	}
	t, ok := p.file.tables[gav.String()]
	if !ok {
		t = override.NewTables()
		p.file.tables[gav.String()] = t
		p.file.boms = append(p.file.boms, gav)
	}
	return t, true
}

func (p *parser) bom(call *build.CallExpr, pos Position) {
	t, ok := p.tables(call, pos)
	if !ok {
		return
	}
	if !buildutil.Has(call, "versions") {
		return
	}
	versions, ok := buildutil.StringDict(call, "versions")
	if !ok {
		p.addError(pos, "bom: versions must map strings to strings")
		return
	}
	table, err := override.TableFromVersions(versions)
	if err != nil {
		p.errs = append(p.errs, &ParseError{Pos: pos, Message: "bom: " + err.Error(), Wrapped: err})
		return
	}
	for _, o := range table.Entries() {
		t.Dependencies.Set(o)
	}
}

func (p *parser) managedPlugin(call *build.CallExpr, pos Position) {
	t, ok := p.tables(call, pos)
	if !ok {
		return
	}
	raw := buildutil.String(call, "plugin")
	ga, err := coord.ParseGA(raw)
	if err != nil || ga.IsPattern() {
		p.addError(pos, "managed_plugin: invalid plugin %q", raw)
		return
	}
	po := override.PluginOverride{
		GA:            ga,
		Version:       buildutil.String(call, "version"),
		Configuration: buildutil.Dict(call, "configuration"),
	}
	for _, item := range buildutil.List(call, "executions") {
		exec, ok := execution(item)
		if !ok {
			p.addError(pos, "managed_plugin: executions entries need a string id")
			return
		}
		po.Executions = append(po.Executions, exec)
	}
	for _, item := range buildutil.List(call, "dependencies") {
		s, _ := item.(string)
		gav, err := coord.ParseGAV(s)
		if err != nil {
			p.addError(pos, "managed_plugin: invalid dependency %q", s)
			return
		}
		po.Dependencies = append(po.Dependencies, &project.Dependency{Group: gav.Group, Artifact: gav.Artifact, Version: gav.Version})
	}
	t.Plugins.Set(po)
}

func execution(item any) (*project.Execution, bool) {
	m, ok := item.(map[string]any)
	if !ok {
		return nil, false
	}
	id, ok := m["id"].(string)
	if !ok || id == "" {
		return nil, false
	}
	exec := &project.Execution{ID: id}
	exec.Phase, _ = m["phase"].(string)
	if goals, ok := m["goals"].([]any); ok {
		for _, g := range goals {
			if s, ok := g.(string); ok {
				exec.Goals = append(exec.Goals, s)
			}
		}
	}
	exec.Configuration, _ = m["configuration"].(map[string]any)
	return exec, true
}

func (p *parser) moduleOverride(call *build.CallExpr, pos Position, target string, into map[string]string) {
	fn := buildutil.FuncName(call)
	coordinate := buildutil.String(call, target)
	module := buildutil.String(call, "module")
	if coordinate == "" || module == "" {
		p.addError(pos, "%s: %s and module are required", fn, target)
		return
	}
	if !buildutil.Has(call, "version") {
		p.addError(pos, "%s: version is required (use \"\" to exclude)", fn)
		return
	}
	key := coordinate + "@" + module
	if _, dup := into[key]; dup {
		p.addError(pos, "%s: duplicate override for %s", fn, key)
		return
	}
	version := buildutil.String(call, "version")
	if _, err := override.ParseModuleOverrides(map[string]string{key: version}); err != nil {
		p.errs = append(p.errs, &ParseError{Pos: pos, Message: fn + ": " + err.Error(), Wrapped: err})
		return
	}
	into[key] = version
}
