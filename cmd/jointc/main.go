package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/toyz/jointc/internal/cli"
	"github.com/toyz/jointc/internal/config"
	"github.com/toyz/jointc/internal/server"
	"github.com/toyz/jointc/internal/utils"
)

// listFlag collects a repeatable string flag
type listFlag []string

func (l *listFlag) String() string     { return strings.Join(*l, ",") }
func (l *listFlag) Set(v string) error { *l = append(*l, v); return nil }

func diagnosticsFor(verbose, quiet bool) *utils.DiagnosticSystem {
	switch {
	case quiet:
		return utils.NewQuietDiagnostics()
	case verbose:
		return utils.NewVerboseDiagnostics()
	default:
		return utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		os.Exit(serve(os.Args[2:]))
	}
	os.Exit(compile())
}

func compile() int {
	var (
		configFlag     = flag.String("config", "", "Path to a jointc.toml (defaults to ./jointc.toml when present)")
		complianceFlag = flag.String("compliance", "", "Source compliance level, e.g. 1.8 or 11")
		noStrictFlag   = flag.Bool("no-generics-strict", false, "Do not report raw type and unchecked warnings")
		dumpFlag       = flag.Bool("dump", false, "Print the declaration tree of every unit")
		disasmFlag     = flag.Bool("disasm", false, "Print the disassembly of every emitted class")
		verboseFlag    = flag.Bool("verbose", false, "Enable verbose output and phase timings")
		quietFlag      = flag.Bool("quiet", false, "Only show problems and errors")
		helpFlag       = flag.Bool("help", false, "Show help information")
		excludes       listFlag
	)
	flag.Var(&excludes, "exclude", "Glob of files to skip while walking directories (repeatable)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <paths...>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s serve [--addr :8080] [--config jointc.toml]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Groovy/Java joint compiler\n")
		fmt.Fprintf(os.Stderr, "Compiles .groovy and .java sources together and reports problems.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nArguments:\n")
		fmt.Fprintf(os.Stderr, "  paths              Source files, .txtar archives, or directories\n")
		fmt.Fprintf(os.Stderr, "                     dir/... walks a directory recursively\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s src/...                        # Compile everything under src\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --compliance 11 A.java B.groovy # Compile two files at level 11\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dump fixtures/enum.txtar      # Print declaration trees\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s serve --addr :9000              # Run the compile service\n", os.Args[0])
	}
	flag.Parse()

	if *helpFlag {
		flag.Usage()
		return 0
	}

	cfg := cli.Config{
		Paths:            flag.Args(),
		ConfigPath:       *configFlag,
		Compliance:       *complianceFlag,
		NoGenericsStrict: *noStrictFlag,
		Dump:             *dumpFlag,
		Disasm:           *disasmFlag,
		Excludes:         excludes,
		Verbose:          *verboseFlag,
		Quiet:            *quietFlag,
	}
	if len(cfg.Paths) == 0 {
		fmt.Fprintf(os.Stderr, "Error: At least one source path is required\n\n")
		flag.Usage()
		return 1
	}

	diagnostics := diagnosticsFor(*verboseFlag, *quietFlag)
	if *verboseFlag {
		diagnostics.Section("Configuration")
		diagnostics.List("Paths: %s", strings.Join(cfg.Paths, ", "))
		if cfg.ConfigPath != "" {
			diagnostics.List("Config: %s", cfg.ConfigPath)
		}
		if cfg.Compliance != "" {
			diagnostics.List("Compliance: %s", cfg.Compliance)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver := cli.NewDriver(diagnostics, *verboseFlag)
	result, err := driver.Run(ctx, cfg)
	if err != nil {
		driver.Reporter().ReportError(err)
		return 1
	}
	if result.HasErrors() {
		return 1
	}
	return 0
}

func serve(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var (
		addrFlag    = fs.String("addr", "", "Listen address (default :8080, or :$PORT)")
		configFlag  = fs.String("config", "", "Path to a jointc.toml with the service defaults")
		logFlag     = fs.Bool("log-requests", false, "Log every request")
		verboseFlag = fs.Bool("verbose", false, "Log compile sessions")
	)
	_ = fs.Parse(args)

	diagnostics := diagnosticsFor(*verboseFlag, false)
	reporter := cli.NewDiagnosticReporter(*verboseFlag)

	cfg := server.DefaultConfig()
	if *addrFlag != "" {
		cfg.Addr = *addrFlag
	}
	cfg.EnableLogger = *logFlag

	var err error
	if *configFlag != "" {
		cfg.Options, err = config.Load(*configFlag)
	} else {
		cfg.Options, err = config.LoadIfExists(filepath.Join(".", config.FileName))
	}
	if err != nil {
		reporter.ReportError(err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	diagnostics.Header("compile service")
	if err := server.New(cfg, diagnostics).Start(ctx); err != nil {
		reporter.ReportError(err)
		return 1
	}
	return 0
}
