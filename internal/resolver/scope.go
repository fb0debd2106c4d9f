package resolver

import (
	"github.com/toyz/jointc/internal/config"
	"github.com/toyz/jointc/internal/models"
)

// DefaultStarImports are the packages every dynamic unit imports on demand,
// in lookup order
var DefaultStarImports = []string{
	"java.lang",
	"java.util",
	"java.io",
	"java.net",
	"groovy.lang",
	"groovy.util",
}

// DefaultSingleImports are imported by name into every dynamic unit
var DefaultSingleImports = []string{
	"java.math.BigDecimal",
	"java.math.BigInteger",
}

// Packages searched last, so their markers resolve without an import
var transformPackages = []string{
	"groovy.transform",
	"groovy.util.logging",
}

// Match is the outcome of looking up a simple type name
type Match struct {
	Decl *models.Declaration
	// Candidates holds every type found when the name is ambiguous
	Candidates []*models.Declaration
	// Via is the import that supplied the type, if any
	Via *models.Import
}

// Found reports a unique result
func (m Match) Found() bool { return m.Decl != nil }

// Ambiguous reports several equally visible candidates
func (m Match) Ambiguous() bool { return len(m.Candidates) > 1 }

// ImportScope answers simple type name lookups for one unit. Source imports
// are followed by the configured implicit imports of the unit.
type ImportScope struct {
	table   *SymbolTable
	unit    *models.CompilationUnit
	dynamic bool
	first   bool

	imports     []*models.Import
	singles     map[string]*models.Import
	statics     []*models.Import
	staticStars []*models.Import
}

// NewImportScope builds the scope of unit
func NewImportScope(table *SymbolTable, unit *models.CompilationUnit, opts *config.Options) *ImportScope {
	s := &ImportScope{
		table:   table,
		unit:    unit,
		dynamic: unit.Language == models.LanguageGroovy,
		first:   opts.StarImportPrecedence == config.PrecedenceFirst,
		singles: make(map[string]*models.Import),
	}
	s.imports = append(append(s.imports, unit.Imports...), opts.ImplicitImports(unit.FileName())...)
	for _, imp := range s.imports {
		switch {
		case imp.Static && imp.Star:
			s.staticStars = append(s.staticStars, imp)
		case imp.Static:
			s.statics = append(s.statics, imp)
		case imp.Star:
		default:
			// a later single import of the same name is a conflict, reported
			// by import validation; the first one stays visible
			if _, dup := s.singles[imp.SimpleName()]; !dup {
				s.singles[imp.SimpleName()] = imp
			}
		}
	}
	return s
}

// Imports returns the source and implicit imports in order
func (s *ImportScope) Imports() []*models.Import { return s.imports }

// StaticImports returns the single static imports in order
func (s *ImportScope) StaticImports() []*models.Import { return s.statics }

// StaticStarImports returns the static on-demand imports in order
func (s *ImportScope) StaticStarImports() []*models.Import { return s.staticStars }

// Lookup resolves a simple type name through the unit's own types, its
// imports and the default imports of its language
func (s *ImportScope) Lookup(name string) Match {
	for _, d := range s.unit.Types {
		if d.Name == name && !d.Anonymous {
			return Match{Decl: d}
		}
	}
	if imp, ok := s.singles[name]; ok {
		if d := s.table.Lookup(imp.Name); d != nil {
			return Match{Decl: d, Via: imp}
		}
	}
	for _, imp := range s.statics {
		if imp.SimpleName() != name {
			continue
		}
		if d := MemberType(s.table.Lookup(imp.Owner()), imp.MemberName(), false); d != nil {
			return Match{Decl: d, Via: imp}
		}
	}
	if s.dynamic {
		return s.lookupDynamic(name)
	}
	return s.lookupStatic(name)
}

// lookupDynamic searches star imports before the unit's package. Among star
// imports the configured precedence picks the winner.
func (s *ImportScope) lookupDynamic(name string) Match {
	stars := s.onDemand()
	if !s.first {
		for i := len(stars) - 1; i >= 0; i-- {
			if d := s.fromStar(stars[i], name); d != nil {
				return Match{Decl: d, Via: stars[i]}
			}
		}
	} else {
		for _, imp := range stars {
			if d := s.fromStar(imp, name); d != nil {
				return Match{Decl: d, Via: imp}
			}
		}
	}
	if d := s.table.PackageType(s.unit.Package, name); d != nil {
		return Match{Decl: d}
	}
	for _, pkg := range DefaultStarImports {
		if d := s.table.PackageType(pkg, name); d != nil {
			return Match{Decl: d}
		}
	}
	for _, qn := range DefaultSingleImports {
		if d := s.table.Lookup(qn); d != nil && d.Name == name {
			return Match{Decl: d}
		}
	}
	for _, pkg := range transformPackages {
		if d := s.table.PackageType(pkg, name); d != nil {
			return Match{Decl: d}
		}
	}
	return Match{}
}

// lookupStatic searches the unit's package before on-demand imports, which
// are equally visible with java.lang
func (s *ImportScope) lookupStatic(name string) Match {
	if d := s.table.PackageType(s.unit.Package, name); d != nil {
		return Match{Decl: d}
	}
	var found []*models.Declaration
	var via *models.Import
	seen := make(map[*models.Declaration]bool)
	for _, imp := range s.onDemand() {
		if d := s.fromStar(imp, name); d != nil && !seen[d] {
			seen[d] = true
			found = append(found, d)
			if via == nil {
				via = imp
			}
		}
	}
	if d := s.table.PackageType("java.lang", name); d != nil && !seen[d] {
		found = append(found, d)
	}
	switch len(found) {
	case 0:
		return Match{}
	case 1:
		return Match{Decl: found[0], Via: via}
	}
	return Match{Candidates: found}
}

// onDemand returns package, type and static star imports in source order
func (s *ImportScope) onDemand() []*models.Import {
	var out []*models.Import
	for _, imp := range s.imports {
		if imp.Star {
			out = append(out, imp)
		}
	}
	return out
}

func (s *ImportScope) fromStar(imp *models.Import, name string) *models.Declaration {
	if !imp.Static {
		if d := s.table.PackageType(imp.Name, name); d != nil {
			return d
		}
	}
	return MemberType(s.table.Lookup(imp.Name), name, false)
}
