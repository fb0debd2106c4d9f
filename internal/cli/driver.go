package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/toyz/jointc/internal/compiler"
	"github.com/toyz/jointc/internal/utils"
)

// RunSummary describes one compile run
type RunSummary struct {
	Sources  int
	Classes  int
	Problems int
	Errors   bool
	Elapsed  time.Duration
}

// Driver coordinates one command-line compile: scan, configure, compile,
// then print the problem report and the requested dumps
type Driver struct {
	scanner     *SourceScanner
	reporter    *DiagnosticReporter
	diagnostics *utils.DiagnosticSystem
	out         io.Writer
	summary     RunSummary
}

// NewDriver creates a driver. Problem reports and dumps go to stdout,
// progress to the diagnostic system.
func NewDriver(diagnostics *utils.DiagnosticSystem, verbose bool) *Driver {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	return &Driver{
		scanner:     NewSourceScanner(),
		reporter:    NewDiagnosticReporter(verbose),
		diagnostics: diagnostics,
		out:         os.Stdout,
	}
}

// SetOutput redirects the problem report and dumps
func (d *Driver) SetOutput(w io.Writer) { d.out = w }

// Reporter returns the reporter used for tool failures
func (d *Driver) Reporter() *DiagnosticReporter { return d.reporter }

// Summary returns the summary of the last run
func (d *Driver) Summary() RunSummary { return d.summary }

// Run compiles the configured paths. Source problems are part of the
// result; the error covers configuration, IO and internal failures.
func (d *Driver) Run(ctx context.Context, cfg Config) (*compiler.Result, error) {
	start := time.Now()
	d.summary = RunSummary{}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	d.diagnostics.Debug("compliance %s, class file version %d", opts.Compliance, opts.ClassFileMajor())

	if len(cfg.Excludes) > 0 {
		if err := d.scanner.Exclude(cfg.Excludes...); err != nil {
			return nil, err
		}
	}
	sources, err := d.scanner.Scan(cfg.Paths)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		d.reporter.ReportWarning(fmt.Sprintf("no Groovy or Java sources found in %v", cfg.Paths))
	}

	d.diagnostics.Header(fmt.Sprintf("compiling %d source(s)", len(sources)))
	for _, src := range sources {
		d.diagnostics.Debug("source %s (%d bytes)", src.Path, len(src.Text))
	}

	session := compiler.NewSession(opts, compiler.WithLogger(d.diagnostics))
	result, err := session.Compile(ctx, sources)
	if err != nil {
		return nil, err
	}

	fmt.Fprint(d.out, result.Report())
	if cfg.Dump {
		d.printDump(result)
	}
	if cfg.Disasm {
		d.printDisassembly(result)
	}

	d.summary = RunSummary{
		Sources:  len(sources),
		Problems: result.Problems(),
		Errors:   result.HasErrors(),
		Elapsed:  time.Since(start),
	}
	for _, u := range result.Units {
		d.summary.Classes += len(u.Classes)
	}

	d.diagnostics.Summary("Compile Summary", map[string]interface{}{
		"Sources":  d.summary.Sources,
		"Classes":  d.summary.Classes,
		"Problems": d.summary.Problems,
		"Time":     d.summary.Elapsed.Round(time.Millisecond),
	})
	d.diagnostics.CompileComplete(d.summary.Problems)
	return result, nil
}

func (d *Driver) printDump(result *compiler.Result) {
	for _, u := range result.Units {
		if u.Declarations == "" {
			continue
		}
		fmt.Fprintf(d.out, "// %s\n%s\n", u.Source.Path, u.Declarations)
	}
}

func (d *Driver) printDisassembly(result *compiler.Result) {
	for _, u := range result.Units {
		for _, c := range u.Classes {
			fmt.Fprintf(d.out, "// %s\n%s\n", c.FilePath, c.Disassembly)
		}
	}
}
