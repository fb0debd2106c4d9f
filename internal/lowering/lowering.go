// Package lowering rewrites checked declaration trees into the shape the
// class emitter writes out. Enums become classes holding one field per
// constant, anonymous classes get their binary names, and field
// initializers move into constructors and the static initializer.
package lowering

import (
	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/resolver"
	"github.com/toyz/jointc/internal/types"
)

// StaticInitName names the assembled static initializer
const StaticInitName = "<clinit>"

// Logger receives lowering progress
type Logger interface {
	Debug(format string, args ...interface{})
}

// Lowerer lowers the types of one compilation unit
type Lowerer struct {
	r       *resolver.Resolver
	table   *resolver.SymbolTable
	diags   *errors.Collector
	dynamic bool
	logger  Logger

	// anonymous holds the classes declared by new expressions, in the
	// order they were numbered
	anonymous []*models.Declaration
}

// New creates a lowerer over a resolved and checked unit
func New(r *resolver.Resolver) *Lowerer {
	return &Lowerer{r: r, table: r.Table(), diags: r.Diagnostics(), dynamic: r.Dynamic()}
}

// SetLogger routes debug output to lg
func (l *Lowerer) SetLogger(lg Logger) { l.logger = lg }

func (l *Lowerer) debugf(format string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Debug(format, args...)
	}
}

// Lower rewrites every type of the unit. Enum lowering reports its
// diagnostics to the unit's collector and keeps going.
func (l *Lowerer) Lower() {
	unit := l.r.Unit()
	if unit.Fatal {
		return
	}
	for _, top := range unit.Types {
		l.nameAnonymous(top)
	}
	all := append(unit.AllTypes(), l.anonymous...)
	for _, d := range all {
		if d.Kind == models.KindEnum {
			l.lowerEnum(d)
		}
	}
	if l.dynamic {
		for _, d := range l.anonymous {
			l.checkAnonymous(d)
		}
	}
	for _, d := range all {
		l.assembleInitializers(d)
	}
}

// Types returns every class the unit produces, anonymous ones included
func (l *Lowerer) Types() []*models.Declaration {
	return append(l.r.Unit().AllTypes(), l.anonymous...)
}

func (l *Lowerer) refTo(qualified string) *models.TypeRef {
	ref := models.ResolvedRef(types.Class(qualified))
	ref.Decl = l.table.Lookup(qualified)
	return ref
}

// typeIdent is a bare reference to a class, bound for later phases
func (l *Lowerer) typeIdent(d *models.Declaration) *models.Ident {
	id := models.NewIdent(d.Name)
	id.Binding = &models.Binding{Kind: models.BindType, Decl: d, Type: d.RawDescriptor(), Static: true}
	return id
}

// staticField is a bare reference to a static field of owner
func staticField(owner, f *models.Declaration) *models.Ident {
	id := models.NewIdent(f.Name)
	id.Binding = &models.Binding{Kind: models.BindField, Decl: f, Owner: owner, Type: f.Type.Type(), Static: true}
	return id
}
