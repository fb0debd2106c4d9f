package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"golang.org/x/mod/semver"

	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/utils"
)

// Precedence decides which of several star imports supplies a simple name
type Precedence string

const (
	// PrecedenceLast lets the star import written last win
	PrecedenceLast Precedence = "last"
	// PrecedenceFirst lets the star import written first win
	PrecedenceFirst Precedence = "first"
)

// Compliance levels that gate language features
const (
	Level8 = "1.8"
	Level9 = "9"
)

// DefaultCompliance is used when no level is configured
const DefaultCompliance = Level8

// ImportSet is a group of implicit imports applied to matching units
type ImportSet struct {
	// Files is a glob over the unit file name; empty matches every unit
	Files  string
	Star   []string
	Single []string
	Static []string

	matcher glob.Glob
}

// Options controls one compilation session
type Options struct {
	Compliance           string
	GenericsStrict       bool
	StarImportPrecedence Precedence
	PathStyle            errors.PathStyle
	Imports              []*ImportSet
	// Retain keeps parsed trees and declaration dumps in the result
	Retain bool
}

// Default returns the default options
func Default() *Options {
	return &Options{
		Compliance:           DefaultCompliance,
		GenericsStrict:       true,
		StarImportPrecedence: PrecedenceLast,
		PathStyle:            errors.PathStyleWindows,
	}
}

// Validate checks option values and compiles glob filters
func (o *Options) Validate() error {
	var multi *errors.MultipleErrors
	if !semver.IsValid(semverOf(o.Compliance)) {
		errors.AddValidationError(&multi, "compliance", "a Java release such as 1.8 or 11", o.Compliance)
	}
	if o.StarImportPrecedence == "" {
		o.StarImportPrecedence = PrecedenceLast
	}
	if err := utils.IsOneOf("star_import_precedence", PrecedenceLast, PrecedenceFirst)(o.StarImportPrecedence); err != nil {
		errors.AddValidationError(&multi, "star_import_precedence", `"last" or "first"`, string(o.StarImportPrecedence))
	}
	for _, set := range o.Imports {
		if err := set.compile(); err != nil {
			errors.AddToMultiple(&multi, errors.NewValidationErrorWithValue("imports.files", set.Files, err.Error()))
		}
		for _, group := range []struct {
			field string
			names []string
		}{
			{"imports.star", set.Star},
			{"imports.single", set.Single},
			{"imports.static", set.Static},
		} {
			if err := utils.ValidateEach(group.field, importName(group.field))(group.names); err != nil {
				errors.AddToMultiple(&multi, errors.NewValidationErrorWithValue(group.field, group.names, err.Error()))
			}
		}
	}
	return multi.ErrorOrNil()
}

// importName accepts a dotted name with an optional trailing .* or
// " as Alias"
func importName(field string) utils.Validator[string] {
	alias := utils.IsJavaIdentifier(field + " alias")
	name := utils.IsQualifiedName(field)
	return func(value string) error {
		value = strings.TrimSuffix(value, ".*")
		if i := strings.Index(value, " as "); i >= 0 {
			if err := alias(strings.TrimSpace(value[i+4:])); err != nil {
				return err
			}
			value = value[:i]
		}
		return utils.NewValidatorChain(utils.NotEmpty(field), name).Validate(strings.TrimSpace(value))
	}
}

// AddImports appends an import set
func (o *Options) AddImports(set *ImportSet) error {
	if err := set.compile(); err != nil {
		return errors.WrapConfigurationError("imports", "compile", err)
	}
	o.Imports = append(o.Imports, set)
	return nil
}

// AtLeast reports whether the configured compliance level is level or newer
func (o *Options) AtLeast(level string) bool {
	return semver.Compare(semverOf(o.Compliance), semverOf(level)) >= 0
}

// ClassFileMajor returns the class file major version of the compliance
// level: 52 for 1.8, 55 for 11
func (o *Options) ClassFileMajor() int {
	parts := strings.Split(strings.TrimPrefix(semver.Canonical(semverOf(o.Compliance)), "v"), ".")
	release, _ := strconv.Atoi(parts[0])
	if release == 1 && len(parts) > 1 {
		release, _ = strconv.Atoi(parts[1])
	}
	return 44 + release
}

// ImplicitImports returns the configured imports that apply to a unit file
func (o *Options) ImplicitImports(fileName string) []*models.Import {
	var out []*models.Import
	for _, set := range o.Imports {
		if !set.Matches(fileName) {
			continue
		}
		for _, name := range set.Single {
			out = append(out, implicitImport(name, false, false))
		}
		for _, name := range set.Star {
			out = append(out, implicitImport(strings.TrimSuffix(name, ".*"), true, false))
		}
		for _, name := range set.Static {
			star := strings.HasSuffix(name, ".*")
			out = append(out, implicitImport(strings.TrimSuffix(name, ".*"), star, true))
		}
	}
	return out
}

// Matches reports whether the set applies to the unit file name
func (s *ImportSet) Matches(fileName string) bool {
	if s.Files == "" {
		return true
	}
	if s.matcher == nil {
		if err := s.compile(); err != nil {
			return false
		}
	}
	return s.matcher.Match(fileName)
}

func (s *ImportSet) compile() error {
	if s.Files == "" {
		return nil
	}
	g, err := glob.Compile(s.Files)
	if err != nil {
		return fmt.Errorf("invalid file pattern %q: %w", s.Files, err)
	}
	s.matcher = g
	return nil
}

func implicitImport(name string, star, static bool) *models.Import {
	alias := ""
	if i := strings.Index(name, " as "); i >= 0 {
		alias = strings.TrimSpace(name[i+4:])
		name = strings.TrimSpace(name[:i])
	}
	return &models.Import{
		Static:   static,
		Star:     star,
		Name:     name,
		Alias:    alias,
		Span:     models.NoSpan,
		NameSpan: models.NoSpan,
		Implicit: true,
	}
}

// semverOf maps Java release names onto semver: 1.8 -> v1.8, 1.9 -> v9, 11 -> v11
func semverOf(level string) string {
	level = strings.TrimSpace(level)
	if rest, ok := strings.CutPrefix(level, "1."); ok && rest != "" {
		if len(rest) > 1 || rest[0] >= '9' {
			return "v" + rest
		}
	}
	return "v" + level
}
