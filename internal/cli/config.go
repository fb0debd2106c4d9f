package cli

import (
	"path/filepath"

	"github.com/toyz/jointc/internal/config"
	"github.com/toyz/jointc/internal/errors"
)

// Config holds the command-line configuration of one compile run
type Config struct {
	// Paths are files, directories or "dir/..." patterns to compile
	Paths []string

	// ConfigPath names a jointc.toml explicitly. When empty, jointc.toml in
	// the working directory is used if present.
	ConfigPath string

	// Compliance overrides the configured source level
	Compliance string

	// NoGenericsStrict turns raw-type and unchecked warnings off
	NoGenericsStrict bool

	// Dump prints the declaration dump of every unit
	Dump bool

	// Disasm prints the disassembly of every emitted class
	Disasm bool

	// Excludes are glob patterns of files skipped while walking directories
	Excludes []string

	Verbose bool
	Quiet   bool
}

// Options resolves compiler options: file configuration first, flags on top
func (c *Config) Options() (*config.Options, error) {
	var (
		opts *config.Options
		err  error
	)
	if c.ConfigPath != "" {
		opts, err = config.Load(c.ConfigPath)
	} else {
		opts, err = config.LoadIfExists(filepath.Join(".", config.FileName))
	}
	if err != nil {
		return nil, err
	}

	if c.Compliance != "" {
		opts.Compliance = c.Compliance
	}
	if c.NoGenericsStrict {
		opts.GenericsStrict = false
	}
	opts.Retain = c.Dump

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Validate checks flag combinations that cannot be resolved later
func (c *Config) Validate() error {
	if len(c.Paths) == 0 {
		return errors.ConfigurationError("paths", "no input files").
			WithSuggestion("Pass source files, directories, or dir/... patterns").
			WithSuggestion("Example: jointc src/...")
	}
	if c.Verbose && c.Quiet {
		return errors.ConfigurationError("flags", "--verbose and --quiet are mutually exclusive")
	}
	return nil
}
