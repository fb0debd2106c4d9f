package config

import (
	"bytes"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/toyz/jointc/internal/errors"
)

// FileName is the configuration file looked up next to the sources
const FileName = "jointc.toml"

type fileConfig struct {
	Compliance           string          `toml:"compliance"`
	GenericsStrict       *bool           `toml:"generics_strict"`
	StarImportPrecedence string          `toml:"star_import_precedence"`
	PathStyle            string          `toml:"path_style"`
	Imports              []fileImportSet `toml:"imports"`
}

type fileImportSet struct {
	Files  string   `toml:"files"`
	Star   []string `toml:"star"`
	Single []string `toml:"single"`
	Static []string `toml:"static"`
}

// Load reads options from a TOML file on top of the defaults
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}
	return Parse(data)
}

// LoadIfExists is Load, returning the defaults when the file is absent
func LoadIfExists(path string) (*Options, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes TOML configuration on top of the defaults
func Parse(data []byte) (*Options, error) {
	var fc fileConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return nil, errors.WrapConfigurationError(FileName, "parse", err).
			WithSuggestion("Known keys: compliance, generics_strict, star_import_precedence, path_style, [[imports]]")
	}

	opts := Default()
	if fc.Compliance != "" {
		opts.Compliance = fc.Compliance
	}
	if fc.GenericsStrict != nil {
		opts.GenericsStrict = *fc.GenericsStrict
	}
	if fc.StarImportPrecedence != "" {
		opts.StarImportPrecedence = Precedence(fc.StarImportPrecedence)
	}
	switch fc.PathStyle {
	case "", "windows":
	case "native":
		opts.PathStyle = errors.PathStyleNative
	default:
		return nil, errors.ConfigurationError(FileName, "path_style must be \"windows\" or \"native\"")
	}
	for _, set := range fc.Imports {
		opts.Imports = append(opts.Imports, &ImportSet{
			Files:  set.Files,
			Star:   set.Star,
			Single: set.Single,
			Static: set.Static,
		})
	}
	if err := opts.Validate(); err != nil {
		return nil, errors.WrapConfigurationError(FileName, "validate", err)
	}
	return opts, nil
}
