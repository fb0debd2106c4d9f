// Package compiler drives one joint compilation session over Groovy and Java
// sources: parse, register, resolve, transform, check, lower and emit.
package compiler

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/toyz/jointc/internal/checker"
	"github.com/toyz/jointc/internal/config"
	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/generator"
	"github.com/toyz/jointc/internal/library"
	"github.com/toyz/jointc/internal/lowering"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/parser"
	"github.com/toyz/jointc/internal/resolver"
	"github.com/toyz/jointc/internal/transform"
)

// Source is one input file. Language names a front end explicitly; when
// empty the front end is chosen by the path's extension.
type Source struct {
	Path     string `json:"path"`
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// Logger receives phase timings at Verbose and per-unit detail at Debug.
// utils.DiagnosticSystem satisfies it.
type Logger interface {
	Verbose(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Verbose(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{})   {}

// Session compiles one set of sources. A session is single use.
type Session struct {
	ID uuid.UUID

	opts      *config.Options
	frontEnds *parser.Registry
	engine    *transform.Engine
	logger    Logger
}

// Option configures a session
type Option func(*Session)

// WithLogger routes session logging to lg
func WithLogger(lg Logger) Option {
	return func(s *Session) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// WithFrontEnds replaces the default Groovy and Java front ends
func WithFrontEnds(r *parser.Registry) Option {
	return func(s *Session) { s.frontEnds = r }
}

// NewSession creates a session. Options are validated by Compile.
func NewSession(opts *config.Options, options ...Option) *Session {
	if opts == nil {
		opts = config.Default()
	}
	s := &Session{
		ID:     uuid.New(),
		opts:   opts,
		logger: nopLogger{},
	}
	for _, o := range options {
		o(s)
	}
	if s.frontEnds == nil {
		s.frontEnds = parser.DefaultRegistry()
	}
	if s.engine == nil {
		s.engine = transform.NewEngine()
	}
	return s
}

// unitState carries one unit through the phases
type unitState struct {
	result   *UnitResult
	diags    *errors.Collector
	resolver *resolver.Resolver
	lowerer  *lowering.Lowerer
}

func (u *unitState) live() bool {
	return u.result.Unit != nil && !u.result.Unit.Fatal
}

// Compile runs every phase over the sources. Compiler diagnostics are part
// of the result; the error is reserved for invalid options, unknown file
// types, cancellation and internal failures.
func (s *Session) Compile(ctx context.Context, sources []Source) (*Result, error) {
	if err := s.opts.Validate(); err != nil {
		return nil, err
	}
	catalog, err := library.New()
	if err != nil {
		return nil, errors.WrapCatalogError("builtin", err)
	}
	table := resolver.NewSymbolTable(catalog)
	s.engine.SetLogger(s.logger)

	units := make([]*unitState, len(sources))
	for i, src := range sources {
		units[i] = &unitState{result: &UnitResult{Source: src}}
	}

	s.logger.Verbose("session %s: %d sources", s.ID, len(sources))
	if err := s.phase(ctx, "parse", units, s.parse); err != nil {
		return nil, err
	}

	start := time.Now()
	for _, u := range units {
		if u.live() {
			table.Register(u.result.Unit, u.diags)
			u.resolver = resolver.New(table, u.result.Unit, u.diags, s.opts)
		}
	}
	s.logger.Verbose("session %s: register done in %s", s.ID, time.Since(start))

	if err := s.sequential(ctx, "imports", units, func(u *unitState) {
		u.resolver.ResolveImports()
	}); err != nil {
		return nil, err
	}
	if err := s.sequential(ctx, "headers", units, func(u *unitState) {
		u.resolver.ResolveHeaders()
	}); err != nil {
		return nil, err
	}

	start = time.Now()
	var resolvers []*resolver.Resolver
	for _, u := range units {
		if u.live() {
			resolvers = append(resolvers, u.resolver)
		}
	}
	s.engine.Run(resolvers)
	s.logger.Verbose("session %s: transform done in %s", s.ID, time.Since(start))

	if err := s.phase(ctx, "members", units, func(_ context.Context, u *unitState) error {
		u.resolver.ResolveMembers()
		return nil
	}); err != nil {
		return nil, err
	}
	if err := s.phase(ctx, "check", units, func(_ context.Context, u *unitState) error {
		u.resolver.ResolveBodies()
		checker.New(u.resolver).Check()
		if s.opts.Retain {
			u.result.Declarations = generator.PrintUnit(u.result.Unit)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	// lowering rewrites member lists that other units' anonymous classes and
	// enum bodies read, so units are lowered one at a time
	if err := s.sequential(ctx, "lower", units, func(u *unitState) {
		u.lowerer = lowering.New(u.resolver)
		u.lowerer.SetLogger(s.logger)
		u.lowerer.Lower()
	}); err != nil {
		return nil, err
	}

	gen := generator.NewGenerator(table, s.opts.ClassFileMajor())
	if err := s.phase(ctx, "emit", units, func(_ context.Context, u *unitState) error {
		if u.diags.HasErrors() {
			return nil
		}
		files, classes, err := gen.Generate(u.lowerer.Types())
		if err != nil {
			return errors.InternalError("emit "+u.result.Source.Path, err)
		}
		u.result.ClassFiles = files
		u.result.Classes = classes
		return nil
	}); err != nil {
		return nil, err
	}

	result := &Result{SessionID: s.ID.String(), PathStyle: s.opts.PathStyle}
	for _, u := range units {
		if u.diags != nil {
			u.result.Diagnostics = u.diags.Diagnostics()
		}
		if !s.opts.Retain {
			u.result.Unit = nil
		}
		result.Units = append(result.Units, u.result)
		s.logger.Debug("%s: %d problems, %d classes", u.result.Source.Path, len(u.result.Diagnostics), len(u.result.Classes))
	}
	return result, nil
}

// parse runs the front end of one source. Syntax errors become diagnostics;
// a unit the front end could not recover is marked fatal.
func (s *Session) parse(_ context.Context, u *unitState) error {
	src := u.result.Source
	var (
		unit *models.CompilationUnit
		err  error
	)
	if src.Language != "" {
		fe, ferr := s.frontEnds.Named(src.Language)
		if ferr != nil {
			return errors.Wrapf(errors.ValidationErrorCode, ferr, "cannot compile %s", src.Path)
		}
		unit, err = fe.Parse(src.Path, src.Text)
	} else {
		unit, err = s.frontEnds.Parse(src.Path, src.Text)
	}

	var problems *parser.Problems
	switch {
	case err == nil:
	case stderrors.As(err, &problems):
		if unit == nil {
			unit = problems.Unit
		}
	default:
		return err
	}
	u.result.Unit = unit
	u.diags = errors.NewCollector(unit)
	if problems != nil {
		for _, d := range problems.Diagnostics {
			u.diags.Add(d)
		}
	}
	return nil
}

// phase runs fn for every live unit in parallel and waits for all of them
func (s *Session) phase(ctx context.Context, name string, units []*unitState, fn func(context.Context, *unitState) error) error {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	n := 0
	for _, u := range units {
		if name != "parse" && !u.live() {
			continue
		}
		n++
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, u)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Verbose("session %s: %s done for %d units in %s", s.ID, name, n, time.Since(start))
	return nil
}

// sequential runs fn for every live unit in order
func (s *Session) sequential(ctx context.Context, name string, units []*unitState, fn func(*unitState)) error {
	start := time.Now()
	n := 0
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !u.live() {
			continue
		}
		n++
		fn(u)
	}
	s.logger.Verbose("session %s: %s done for %d units in %s", s.ID, name, n, time.Since(start))
	return nil
}
