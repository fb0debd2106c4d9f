package models

import (
	"path/filepath"
	"strings"
)

// Language identifies the front end a unit was written for
type Language uint8

const (
	LanguageGroovy Language = iota + 1
	LanguageJava
)

// String returns the language name
func (l Language) String() string {
	switch l {
	case LanguageGroovy:
		return "groovy"
	case LanguageJava:
		return "java"
	default:
		return "unknown"
	}
}

// Origin returns the declaration origin for declarations of this language
func (l Language) Origin() Origin {
	if l == LanguageJava {
		return OriginJava
	}
	return OriginGroovy
}

// Import is one import directive as written (or configured)
type Import struct {
	Static bool
	Star   bool
	// Name is the imported qualified name without the trailing .*
	Name     string
	Alias    string
	Span     Span
	NameSpan Span
	// Implicit marks imports contributed by configuration
	Implicit bool
}

// SimpleName returns the name the import makes visible; empty for star imports
func (i *Import) SimpleName() string {
	if i.Star {
		return ""
	}
	if i.Alias != "" {
		return i.Alias
	}
	if idx := strings.LastIndexByte(i.Name, '.'); idx >= 0 {
		return i.Name[idx+1:]
	}
	return i.Name
}

// MemberName returns the member part of a static single import
func (i *Import) MemberName() string {
	if idx := strings.LastIndexByte(i.Name, '.'); idx >= 0 {
		return i.Name[idx+1:]
	}
	return i.Name
}

// Owner returns the class part of a static single import
func (i *Import) Owner() string {
	if i.Star {
		return i.Name
	}
	if idx := strings.LastIndexByte(i.Name, '.'); idx >= 0 {
		return i.Name[:idx]
	}
	return ""
}

// String renders the import reference, e.g. a.B.FOO as Wibble
func (i *Import) String() string {
	s := i.Name
	if i.Star {
		s += ".*"
	}
	if i.Alias != "" {
		s += " as " + i.Alias
	}
	return s
}

// CompilationUnit is one source file's parsed tree
type CompilationUnit struct {
	Path     string
	Source   string
	Lines    *LineIndex
	Language Language

	Package     string
	PackageSpan Span
	Imports     []*Import
	// Types holds the top-level declarations in source order
	Types []*Declaration
	// Fatal is set when the unit could not be parsed into a tree
	Fatal bool
}

// NewCompilationUnit creates an empty unit for src
func NewCompilationUnit(path, src string, lang Language) *CompilationUnit {
	return &CompilationUnit{
		Path:     path,
		Source:   src,
		Lines:    NewLineIndex(src),
		Language: lang,
	}
}

// BaseName returns the file name without directory and extension
func (u *CompilationUnit) BaseName() string {
	base := filepath.Base(filepath.FromSlash(strings.ReplaceAll(u.Path, "\\", "/")))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FileName returns the file name without directory
func (u *CompilationUnit) FileName() string {
	return filepath.Base(filepath.FromSlash(strings.ReplaceAll(u.Path, "\\", "/")))
}

// Qualify prefixes a simple name with the unit's package
func (u *CompilationUnit) Qualify(name string) string {
	if u.Package == "" {
		return name
	}
	return u.Package + "." + name
}

// Text returns the source text covered by a span
func (u *CompilationUnit) Text(s Span) string {
	if !s.IsValid() || s.End > len(u.Source) {
		return ""
	}
	return u.Source[s.Start:s.End]
}

// AllTypes returns every type declared in the unit, outer before nested, in
// declaration order; anonymous constant bodies are included
func (u *CompilationUnit) AllTypes() []*Declaration {
	var out []*Declaration
	var walk func(d *Declaration)
	walk = func(d *Declaration) {
		out = append(out, d)
		for _, c := range d.Constants {
			if c.Body != nil {
				walk(c.Body)
			}
		}
		for _, m := range d.Members {
			if m.IsType() {
				walk(m)
			}
		}
	}
	for _, t := range u.Types {
		walk(t)
	}
	return out
}
