package library

import (
	"strconv"
	"strings"

	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

const retentionName = "java.lang.annotation.Retention"

type builder struct {
	cat   *Catalog
	entry *classEntry
	decl  *models.Declaration
	// scope holds the type variables visible while converting a signature
	scope map[string]*types.Type
}

func (b *builder) build() {
	e, d := b.entry, b.decl

	switch e.Kind {
	case "interface":
		d.Kind = models.KindInterface
		d.Modifiers = models.ModInterface | models.ModAbstract
	case "enum":
		d.Kind = models.KindEnum
		d.Modifiers = models.ModEnum | models.ModFinal
	case "annotation":
		d.Kind = models.KindAnnotation
		d.Modifiers = models.ModInterface | models.ModAbstract | models.ModAnnotation
	default:
		d.Kind = models.KindClass
	}
	d.Modifiers |= models.ModPublic
	for _, word := range strings.Fields(e.Modifiers) {
		if m, ok := models.ParseModifier(word); ok {
			d.Modifiers |= m
		}
	}

	if i := strings.LastIndexByte(e.binary, '$'); i >= 0 {
		outerName := strings.ReplaceAll(e.binary[:i], "$", ".")
		if outer := b.cat.lookupLocked(outerName); outer != nil {
			d.Owner = outer
			d.Modifiers |= models.ModStatic
		}
	}

	b.scope = make(map[string]*types.Type)
	d.TypeParams = b.typeParams(e.header.TypeParams)

	if e.Extends != "" {
		d.Super = b.ref(e.Extends)
	} else if d.Kind == models.KindClass && e.qualified != types.ObjectName {
		d.Super = b.ref(types.ObjectName)
	} else if d.Kind == models.KindEnum {
		d.Super = models.ResolvedRef(types.Class(types.EnumName, d.RawDescriptor()))
		d.Super.Decl = b.cat.lookupLocked(types.EnumName)
	}
	for _, iface := range e.Implements {
		d.Interfaces = append(d.Interfaces, b.ref(iface))
	}
	if d.Kind == models.KindAnnotation {
		d.Interfaces = append(d.Interfaces, b.ref("java.lang.annotation.Annotation"))
		if e.Retention != "" {
			d.Annotations = append(d.Annotations, retentionMarker(e.Retention))
		}
	}

	for i, name := range e.Constants {
		field := models.NewField(name, models.ModPublic|models.ModStatic|models.ModFinal|models.ModEnum,
			models.ResolvedRef(d.RawDescriptor()), nil)
		b.adopt(field)
		d.Constants = append(d.Constants, &models.EnumConstant{
			Name:     name,
			Ordinal:  i,
			Span:     models.NoSpan,
			NameSpan: models.NoSpan,
			Field:    field,
		})
	}

	for _, src := range e.Members {
		m, err := parseMember(src)
		if err != nil {
			// entries are validated by the catalog tests
			continue
		}
		b.adopt(b.member(m))
	}

	for _, name := range b.cat.nested[e.qualified] {
		if nested := b.cat.lookupLocked(name); nested != nil {
			nested.Owner = d
			d.Members = append(d.Members, nested)
		}
	}
}

func (b *builder) adopt(m *models.Declaration) {
	m.Origin = models.OriginLibrary
	m.Generated = false
	b.decl.AddMember(m)
}

func (b *builder) typeParams(list []*sigTypeParam) []*models.TypeParam {
	var out []*models.TypeParam
	for _, tp := range list {
		b.scope[tp.Name] = types.TypeVar(tp.Name, nil)
	}
	for _, tp := range list {
		p := &models.TypeParam{Name: tp.Name, Span: models.NoSpan}
		for _, bound := range tp.Bounds {
			p.Bounds = append(p.Bounds, models.ResolvedRef(b.convert(bound)))
		}
		if len(p.Bounds) > 0 {
			b.scope[tp.Name] = types.TypeVar(tp.Name, p.Bounds[0].Resolved)
		}
		out = append(out, p)
	}
	return out
}

func (b *builder) member(m *sigMember) *models.Declaration {
	saved := b.scope
	if len(m.TypeParams) > 0 {
		b.scope = make(map[string]*types.Type, len(saved)+len(m.TypeParams))
		for k, v := range saved {
			b.scope[k] = v
		}
	}
	defer func() { b.scope = saved }()

	var mods models.Modifiers
	for _, word := range m.Modifiers {
		mod, _ := models.ParseModifier(word)
		mods |= mod
	}
	if b.decl.IsInterface() && mods.IsPackagePrivate() {
		mods |= models.ModPublic
		if !mods.Has(models.ModStatic) && !mods.Has(models.ModDefault) && m.Params != nil {
			mods |= models.ModAbstract
		}
		if m.Params == nil {
			mods |= models.ModStatic | models.ModFinal
		}
	}
	tps := b.typeParams(m.TypeParams)

	var d *models.Declaration
	switch {
	case m.isField():
		d = models.NewField(m.Name, mods, models.ResolvedRef(b.convert(m.Type)), nil)
	case m.isConstructor():
		d = models.NewConstructor(b.decl, mods, b.params(m.Params), nil)
	default:
		d = models.NewMethod(m.Name, mods, models.ResolvedRef(b.convert(m.Type)), b.params(m.Params), nil)
	}
	d.TypeParams = tps
	for _, t := range m.Throws {
		d.Throws = append(d.Throws, models.ResolvedRef(b.convert(t)))
	}
	for _, a := range m.Annotations {
		qualified := b.qualify(a)
		d.Annotations = append(d.Annotations, &models.Annotation{
			Name:          a,
			QualifiedName: qualified,
			Span:          models.NoSpan,
			NameSpan:      models.NoSpan,
		})
		if qualified == "java.lang.Deprecated" {
			d.Deprecated = true
		}
	}
	return d
}

func (b *builder) params(p *sigParams) []*models.Param {
	out := make([]*models.Param, len(p.List))
	for i, sp := range p.List {
		name := sp.Name
		if name == "" {
			name = "param" + strconv.Itoa(i)
		}
		param := models.NewParam(name, models.ResolvedRef(b.convert(sp.Type)))
		param.Varargs = sp.Varargs
		out[i] = param
	}
	return out
}

func (b *builder) ref(src string) *models.TypeRef {
	st, err := parseType(src)
	if err != nil {
		return models.ResolvedRef(types.Object)
	}
	t := b.convert(st)
	ref := models.ResolvedRef(t)
	if t.Kind == types.KindClass {
		ref.Decl = b.cat.lookupLocked(t.Name)
	}
	return ref
}

func (b *builder) convert(st *sigType) *types.Type {
	var t *types.Type
	if p, ok := types.Primitive(st.Name); ok {
		t = p
	} else if tv, ok := b.scope[st.Name]; ok {
		t = tv
	} else {
		args := make([]*types.Type, len(st.Args))
		for i, a := range st.Args {
			args[i] = b.convertArg(a)
		}
		t = types.Class(b.qualify(st.Name), args...)
	}
	if n := st.dims(); n > 0 {
		t = types.ArrayOf(t, n)
	}
	return t
}

func (b *builder) convertArg(a *sigArg) *types.Type {
	if !a.Wildcard {
		return b.convert(a.Type)
	}
	switch a.Kind {
	case "extends":
		return types.Wildcard(types.ExtendsBound, b.convert(a.Bound))
	case "super":
		return types.Wildcard(types.SuperBound, b.convert(a.Bound))
	default:
		return types.Wildcard(types.Unbounded, nil)
	}
}

func (b *builder) qualify(name string) string {
	name = strings.ReplaceAll(name, "$", ".")
	if strings.Contains(name, ".") {
		if b.cat.Has(name) {
			return name
		}
		// Outer.Inner relative to a searched package
		for _, pkg := range b.searchPackages() {
			if cand := pkg + "." + name; b.cat.Has(cand) {
				return cand
			}
		}
		return name
	}
	if b.decl.Name == name {
		return b.entry.qualified
	}
	if nested := b.entry.qualified + "." + name; b.cat.Has(nested) {
		return nested
	}
	for _, pkg := range b.searchPackages() {
		if cand := pkg + "." + name; b.cat.Has(cand) {
			return cand
		}
	}
	return name
}

func (b *builder) searchPackages() []string {
	return []string{"java.lang", types.PackageOf(b.entry.qualified), "java.util", "groovy.lang"}
}

// retentionMarker builds @Retention(RetentionPolicy.X) for a catalog entry
func retentionMarker(policy string) *models.Annotation {
	value := models.Select(models.NewIdent("RetentionPolicy"), strings.ToUpper(policy))
	return &models.Annotation{
		Name:          retentionName,
		QualifiedName: retentionName,
		Args:          []*models.AnnotationArg{{Name: "value", Value: value, Span: models.NoSpan}},
		Span:          models.NoSpan,
		NameSpan:      models.NoSpan,
	}
}
