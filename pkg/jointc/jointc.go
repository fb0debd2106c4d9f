// Package jointc compiles Groovy and Java sources together.
//
//	result, err := jointc.Compile(ctx, []jointc.Source{
//		{Path: "p/Base.java", Text: javaText},
//		{Path: "p/Impl.groovy", Text: groovyText},
//	}, nil)
//	if err != nil {
//		return err // options, unknown file type, cancellation
//	}
//	fmt.Print(result.Report()) // problems, JDT layout
//
// Source problems never surface as errors; they are part of the Result.
package jointc

import (
	"context"

	"github.com/toyz/jointc/internal/compiler"
	"github.com/toyz/jointc/internal/config"
	"github.com/toyz/jointc/internal/errors"
)

type (
	// Source is one input file
	Source = compiler.Source
	// Options controls a compilation
	Options = config.Options
	// ImportSet is a group of implicit imports applied to matching units
	ImportSet = config.ImportSet
	// Result is the outcome of a compilation, units in input order
	Result = compiler.Result
	// UnitResult is the outcome of one source
	UnitResult = compiler.UnitResult
	// Logger receives phase timings and per-unit detail
	Logger = compiler.Logger
)

// Star-import precedence values
const (
	PrecedenceLast  = config.PrecedenceLast
	PrecedenceFirst = config.PrecedenceFirst
)

// Report path styles
const (
	PathStyleWindows = errors.PathStyleWindows
	PathStyleNative  = errors.PathStyleNative
)

// DefaultOptions returns compliance 1.8, strict generics, last-wins star
// imports and Windows report paths
func DefaultOptions() *Options {
	return config.Default()
}

// LoadOptions reads a jointc.toml
func LoadOptions(path string) (*Options, error) {
	return config.Load(path)
}

// Compile runs one session over sources. A nil opts uses DefaultOptions.
func Compile(ctx context.Context, sources []Source, opts *Options) (*Result, error) {
	return compiler.NewSession(opts).Compile(ctx, sources)
}

// CompileWithLogger is Compile with session logging routed to lg
func CompileWithLogger(ctx context.Context, sources []Source, opts *Options, lg Logger) (*Result, error) {
	return compiler.NewSession(opts, compiler.WithLogger(lg)).Compile(ctx, sources)
}

// CompileArchive compiles the members of a txtar archive
func CompileArchive(ctx context.Context, archive []byte, opts *Options) (*Result, error) {
	return Compile(ctx, compiler.ArchiveSources(archive), opts)
}
