// Package resolver binds the names written in source to declarations: types
// in headers and members, imports, and the identifiers of method bodies.
package resolver

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/library"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

// SymbolTable maps qualified names to the declarations of every source unit
// of a session, falling back to the library catalog. Source types shadow
// binary types of the same name.
type SymbolTable struct {
	mu       sync.RWMutex
	types    map[string]*models.Declaration
	packages map[string]bool
	catalog  *library.Catalog
}

// NewSymbolTable creates an empty table over a catalog
func NewSymbolTable(cat *library.Catalog) *SymbolTable {
	t := &SymbolTable{
		types:    make(map[string]*models.Declaration),
		packages: make(map[string]bool),
		catalog:  cat,
	}
	for _, pkg := range cat.Packages() {
		t.addPackage(pkg)
	}
	return t
}

// Catalog returns the library catalog behind the table
func (t *SymbolTable) Catalog() *library.Catalog { return t.catalog }

// addPackage records pkg and every enclosing package prefix
func (t *SymbolTable) addPackage(pkg string) {
	for pkg != "" {
		t.packages[pkg] = true
		i := strings.LastIndexByte(pkg, '.')
		if i < 0 {
			return
		}
		pkg = pkg[:i]
	}
}

// Register adds the types declared by unit. A type whose qualified name is
// already taken is reported on unit and left out of the table.
func (t *SymbolTable) Register(unit *models.CompilationUnit, diags *errors.Collector) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if unit.Package != "" {
		t.addPackage(unit.Package)
	}
	for _, d := range unit.AllTypes() {
		if d.Anonymous {
			continue
		}
		prev, taken := t.types[d.QualifiedName]
		if !taken {
			t.types[d.QualifiedName] = d
			continue
		}
		if unit.Language == models.LanguageGroovy {
			if prev.Unit == unit {
				diags.Report(errors.UnresolvedReferenceCode, d.Span,
					"Invalid duplicate class definition of class %s : The source %s contains at least two definitions of the class %s.",
					d.QualifiedName, filepath.FromSlash(unit.Path), d.QualifiedName)
			} else {
				diags.Report(errors.UnresolvedReferenceCode, d.Span,
					"Invalid duplicate class definition of class %s : The sources %s and %s each contain a class with the name %s.",
					d.QualifiedName, filepath.FromSlash(unit.Path), filepath.FromSlash(prev.Unit.Path), d.QualifiedName)
			}
		}
		diags.ReportPlain(errors.UnresolvedReferenceCode, d.NameSpan, "The type %s is already defined", d.Name)
	}
}

// Lookup returns the type with the given qualified name, source first
func (t *SymbolTable) Lookup(qualified string) *models.Declaration {
	t.mu.RLock()
	d, ok := t.types[qualified]
	t.mu.RUnlock()
	if ok {
		return d
	}
	return t.catalog.Lookup(qualified)
}

// HasPackage reports whether pkg, or a package below it, holds any type
func (t *SymbolTable) HasPackage(pkg string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.packages[pkg]
}

// PackageType returns the top-level type simple declared in pkg
func (t *SymbolTable) PackageType(pkg, simple string) *models.Declaration {
	name := simple
	if pkg != "" {
		name = pkg + "." + simple
	}
	d := t.Lookup(name)
	if d == nil || d.Owner != nil {
		return nil
	}
	return d
}

// DirectSupertypes implements types.Hierarchy. Type arguments of t are
// substituted into the declared supertypes; raw types yield erased supertypes.
func (t *SymbolTable) DirectSupertypes(ty *types.Type) []*types.Type {
	if ty == nil || ty.Kind != types.KindClass {
		return nil
	}
	d := t.Lookup(ty.Name)
	if d == nil {
		return nil
	}
	raw := len(ty.Args) == 0 && len(d.TypeParams) > 0
	var bindings map[string]*types.Type
	if len(ty.Args) == len(d.TypeParams) && len(ty.Args) > 0 {
		bindings = make(map[string]*types.Type, len(ty.Args))
		for i, tp := range d.TypeParams {
			bindings[tp.Name] = ty.Args[i]
		}
	}
	var out []*types.Type
	add := func(ref *models.TypeRef) {
		if ref == nil || ref.Resolved == nil {
			return
		}
		s := ref.Resolved
		switch {
		case raw:
			s = s.Erasure()
		case bindings != nil:
			s = s.Substitute(bindings)
		}
		out = append(out, s)
	}
	add(d.Super)
	for _, i := range d.Interfaces {
		add(i)
	}
	if len(out) == 0 && d.IsInterface() {
		out = append(out, types.Object)
	}
	return out
}

// Supers returns the resolved direct supertype declarations of d, superclass
// first
func Supers(d *models.Declaration) []*models.Declaration {
	var out []*models.Declaration
	if d.Super != nil && d.Super.Decl != nil {
		out = append(out, d.Super.Decl)
	}
	for _, i := range d.Interfaces {
		if i.Decl != nil {
			out = append(out, i.Decl)
		}
	}
	return out
}

// Ancestors returns d followed by all of its supertypes, breadth first and
// without repeats
func Ancestors(d *models.Declaration) []*models.Declaration {
	seen := map[*models.Declaration]bool{d: true}
	out := []*models.Declaration{d}
	for i := 0; i < len(out); i++ {
		for _, s := range Supers(out[i]) {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// IsSubclass reports whether d is sup or inherits from it
func IsSubclass(d, sup *models.Declaration) bool {
	for _, a := range Ancestors(d) {
		if a == sup || a.QualifiedName == sup.QualifiedName {
			return true
		}
	}
	return false
}

// FindField returns the field name declared by d or inherited by it
func FindField(d *models.Declaration, name string) *models.Declaration {
	if d == nil {
		return nil
	}
	for _, a := range Ancestors(d) {
		if f := a.Field(name); f != nil {
			return f
		}
	}
	return nil
}

// FindConstant returns the enum constant name of d or of an enum it extends
func FindConstant(d *models.Declaration, name string) *models.EnumConstant {
	for _, a := range Ancestors(d) {
		if a.Kind == models.KindEnum {
			if c := a.Constant(name); c != nil {
				return c
			}
		}
	}
	return nil
}

// MemberType returns the member type name of d, searching inherited member
// types when inherited is set
func MemberType(d *models.Declaration, name string, inherited bool) *models.Declaration {
	if d == nil {
		return nil
	}
	if !inherited {
		return d.NestedType(name)
	}
	for _, a := range Ancestors(d) {
		if n := a.NestedType(name); n != nil {
			return n
		}
	}
	return nil
}

// AllMethods returns the methods of d and its supertypes. A method is hidden
// by an earlier one with the same signature, so overrides come first.
func AllMethods(d *models.Declaration) []*models.Declaration {
	seen := make(map[string]bool)
	var out []*models.Declaration
	for _, a := range Ancestors(d) {
		for _, m := range a.Methods() {
			sig := m.Signature()
			if seen[sig] {
				continue
			}
			seen[sig] = true
			out = append(out, m)
		}
	}
	return out
}

// FindMethods returns the visible methods of d called name
func FindMethods(d *models.Declaration, name string) []*models.Declaration {
	var out []*models.Declaration
	for _, m := range AllMethods(d) {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}
