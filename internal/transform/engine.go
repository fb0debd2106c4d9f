// Package transform applies the structural rewrites requested by marker
// annotations on dynamic-language declarations and then adds the members
// every class gets without writing them.
package transform

import (
	"fmt"

	"github.com/toyz/jointc/internal/annotations"
	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/resolver"
	"github.com/toyz/jointc/internal/types"
	"github.com/toyz/jointc/internal/utils"
)

// Transform is one marker-driven rewrite
type Transform interface {
	// Apply rewrites target for marker. A returned error aborts this
	// transform only and is reported at the marker.
	Apply(ctx *Context, target *models.Declaration, marker *models.Annotation) error
}

// TransformFunc adapts a function to the Transform interface
type TransformFunc func(ctx *Context, target *models.Declaration, marker *models.Annotation) error

// Apply calls f
func (f TransformFunc) Apply(ctx *Context, target *models.Declaration, marker *models.Annotation) error {
	return f(ctx, target, marker)
}

// PreconditionError is a transform that cannot run on its target
type PreconditionError struct {
	Msg  string
	Span models.Span
}

func (e *PreconditionError) Error() string { return e.Msg }

func precondition(span models.Span, format string, args ...interface{}) error {
	return &PreconditionError{Msg: fmt.Sprintf(format, args...), Span: span}
}

// Logger receives transform progress
type Logger interface {
	Debug(format string, args ...interface{})
}

// Engine dispatches markers to transforms. Units are processed in the order
// given; within a unit outer types come before nested ones, and a type's
// source supertypes, mixins and delegate targets are processed before it.
type Engine struct {
	transforms *utils.Registry[string, Transform]
	schemas    annotations.SchemaRegistry
	validator  annotations.SchemaValidator
	logger     Logger
}

// NewEngine creates an engine with the built-in transforms registered
func NewEngine() *Engine {
	e := &Engine{
		transforms: utils.NewRegistry[string, Transform]("transform", "marker"),
		schemas:    annotations.DefaultRegistry(),
		validator:  annotations.NewValidator(),
	}
	e.transforms.SetValidator(utils.ChainValidators[string, Transform](
		utils.NotEmptyKeyValidator[Transform]("marker"),
		utils.NoDuplicateValidator[string, Transform]("marker"),
	))
	for marker, t := range builtinTransforms() {
		e.transforms.MustRegister(marker, t)
	}
	return e
}

// SetLogger routes debug output to l
func (e *Engine) SetLogger(l Logger) { e.logger = l }

// Register adds a transform for a marker
func (e *Engine) Register(marker string, t Transform) error {
	return e.transforms.Register(marker, t)
}

// Handles reports whether a transform is registered for marker
func (e *Engine) Handles(marker string) bool {
	return e.transforms.Has(marker)
}

func builtinTransforms() map[string]Transform {
	m := map[string]Transform{
		annotations.PackageScope:        TransformFunc(applyPackageScope),
		annotations.Delegate:            TransformFunc(applyDelegate),
		annotations.Singleton:           TransformFunc(applySingleton),
		annotations.InheritConstructors: TransformFunc(applyInheritConstructors),
		annotations.Category:            TransformFunc(applyCategory),
		annotations.Mixin:               TransformFunc(applyMixin),
		annotations.Sortable:            TransformFunc(applySortable),
		annotations.TypeChecked:         TransformFunc(checkActivation),
		annotations.CompileStatic:       TransformFunc(checkActivation),
		annotations.CompileDynamic:      TransformFunc(checkActivation),
	}
	for _, marker := range annotations.LoggerMarkers {
		m[marker] = TransformFunc(applyLogger)
	}
	return m
}

type visitState uint8

const (
	unvisited visitState = iota
	visiting
	visited
)

// Run transforms every dynamic-language unit and then verifies the implicit
// members of all units. Each resolver must have completed its header phase.
func (e *Engine) Run(units []*resolver.Resolver) {
	s := &session{
		engine:   e,
		contexts: make(map[*models.CompilationUnit]*Context, len(units)),
		state:    make(map[*models.Declaration]visitState),
	}
	for _, r := range units {
		s.contexts[r.Unit()] = &Context{Resolver: r, engine: e, session: s}
	}
	for _, r := range units {
		if r.Unit().Fatal {
			continue
		}
		for _, d := range r.Unit().AllTypes() {
			s.visit(d)
		}
	}
	for _, r := range units {
		if r.Unit().Fatal {
			continue
		}
		Verify(r)
	}
}

type session struct {
	engine   *Engine
	contexts map[*models.CompilationUnit]*Context
	state    map[*models.Declaration]visitState
}

func (s *session) contextOf(d *models.Declaration) *Context {
	u := d.Unit
	if u == nil {
		u = d.TopLevel().Unit
	}
	return s.contexts[u]
}

func (s *session) visit(d *models.Declaration) {
	if s.state[d] != unvisited {
		return
	}
	ctx := s.contextOf(d)
	if ctx == nil {
		return
	}
	s.state[d] = visiting
	if d.Owner != nil && d.Owner.IsType() {
		s.visit(d.Owner)
	}
	for _, dep := range ctx.dependencies(d) {
		s.visit(dep)
	}
	if ctx.Resolver.Dynamic() {
		ctx.transformType(d)
	}
	s.state[d] = visited
}

// Context gives transforms access to the resolver of the unit being
// rewritten and to the marker being applied
type Context struct {
	Resolver *resolver.Resolver
	// Params holds the validated arguments of the marker being applied
	Params *annotations.ParsedMarker

	engine  *Engine
	session *session
}

// Unit returns the unit being transformed
func (c *Context) Unit() *models.CompilationUnit { return c.Resolver.Unit() }

// Diagnostics returns the collector of the unit
func (c *Context) Diagnostics() *errors.Collector { return c.Resolver.Diagnostics() }

// Lookup resolves a type declaration by qualified name
func (c *Context) Lookup(qualified string) *models.Declaration {
	return c.Resolver.Table().Lookup(qualified)
}

// refTo builds a resolved reference to a class by qualified name
func (c *Context) refTo(qualified string) *models.TypeRef {
	ref := models.ResolvedRef(types.Class(qualified))
	ref.Decl = c.Lookup(qualified)
	return ref
}

// prepare resolves the member types of d and its source supertypes in the
// units declaring them, so their signatures can be copied
func (c *Context) prepare(d *models.Declaration) {
	for _, a := range resolver.Ancestors(d) {
		if a.Origin == models.OriginLibrary {
			continue
		}
		owner := c
		if c.session != nil {
			if peer := c.session.contextOf(a); peer != nil {
				owner = peer
			}
		}
		for _, m := range a.Members {
			if !m.IsType() {
				owner.resolveMember(m)
			}
		}
	}
}

// dependencies lists source types that must be transformed before d
func (c *Context) dependencies(d *models.Declaration) []*models.Declaration {
	var out []*models.Declaration
	for _, s := range resolver.Supers(d) {
		if s.Origin != models.OriginLibrary {
			out = append(out, s)
		}
	}
	if m := models.FindAnnotation(d.Annotations, annotations.Mixin); m != nil {
		for _, t := range c.classDecls(m, "value", d) {
			if t.Origin != models.OriginLibrary {
				out = append(out, t)
			}
		}
	}
	for _, f := range d.Fields() {
		if models.FindAnnotation(f.Annotations, annotations.Delegate) == nil {
			continue
		}
		if f.Type.IsDynamic() {
			continue
		}
		if _, t := c.Resolver.Probe(f.Type, f); t != nil && t.Origin != models.OriginLibrary {
			out = append(out, t)
		}
	}
	return out
}

// transformType expands collectors on d and its members, then applies the
// markers of d followed by the markers of each member present beforehand.
// The markers on a collector declaration stand for its usages and are not
// applied to the collector itself.
func (c *Context) transformType(d *models.Declaration) {
	if models.FindAnnotation(d.Annotations, annotations.AnnotationCollector) != nil {
		return
	}
	c.expandCollectors(d, &d.Annotations)
	members := append([]*models.Declaration(nil), d.Members...)
	for _, m := range members {
		if !m.IsType() {
			c.expandCollectors(d, &m.Annotations)
		}
	}
	for _, a := range append([]*models.Annotation(nil), d.Annotations...) {
		c.apply(d, a)
	}
	for _, m := range members {
		if m.IsType() {
			continue
		}
		for _, a := range append([]*models.Annotation(nil), m.Annotations...) {
			c.apply(m, a)
		}
	}
}

// apply validates marker against its schema and runs its transform
func (c *Context) apply(target *models.Declaration, marker *models.Annotation) {
	if marker.QualifiedName == "" {
		return
	}
	t, ok := c.engine.transforms.Get(marker.QualifiedName)
	if !ok {
		return
	}
	schema, ok := c.engine.schemas.Lookup(marker.QualifiedName)
	if ok {
		if err := c.engine.validator.CheckTarget(marker, schema, annotations.TargetOf(target)); err != nil {
			c.reportProblems(marker, err)
			return
		}
		parsed, err := c.engine.validator.Validate(marker, schema)
		if err != nil {
			c.reportProblems(marker, err)
			return
		}
		c.Params = parsed
	} else {
		c.Params = &annotations.ParsedMarker{Marker: marker, Parameters: map[string]interface{}{}}
	}
	defer func() { c.Params = nil }()

	if c.engine.logger != nil {
		c.engine.logger.Debug("applying @%s to %s", marker.SimpleName(), target.QualifiedName)
	}
	if err := t.Apply(c, target, marker); err != nil {
		span := marker.Span
		if pe, ok := err.(*PreconditionError); ok && pe.Span.IsValid() {
			span = pe.Span
		}
		c.Diagnostics().Report(errors.TransformPreconditionCode, span, "%s", err.Error())
	}
}

func (c *Context) reportProblems(marker *models.Annotation, err error) {
	for _, p := range annotations.Problems(err) {
		span := p.Location()
		if !span.IsValid() {
			span = marker.Span
		}
		c.Diagnostics().Report(errors.TransformPreconditionCode, span, "%s", p.Error())
	}
}

// resolveMarker binds a marker produced by a transform to its annotation type
func (c *Context) resolveMarker(a *models.Annotation, from *models.Declaration) {
	if a.Decl == nil && a.QualifiedName != "" {
		a.Decl = c.Lookup(a.QualifiedName)
	}
	c.Resolver.ResolveAnnotation(a, from)
}

// resolveMember resolves the declared types of a generated member
func (c *Context) resolveMember(m *models.Declaration) {
	for _, p := range m.Params {
		c.Resolver.ResolveType(p.Type, m)
	}
	c.Resolver.ResolveType(m.Return, m)
	c.Resolver.ResolveType(m.Type, m)
	for _, t := range m.Throws {
		c.Resolver.ResolveType(t, m)
	}
}
