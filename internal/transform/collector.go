package transform

import (
	"strings"

	"github.com/toyz/jointc/internal/annotations"
	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

// maxCollectorDepth bounds collectors that collect each other
const maxCollectorDepth = 8

// expandCollectors replaces every collector usage in list by the annotations
// it stands for, keeping source order
func (c *Context) expandCollectors(from *models.Declaration, list *[]*models.Annotation) {
	var out []*models.Annotation
	changed := false
	for _, a := range *list {
		expanded, ok := c.expand(from, a, 0)
		if !ok {
			out = append(out, a)
			continue
		}
		changed = true
		out = append(out, expanded...)
	}
	if changed {
		*list = out
	}
}

func (c *Context) expand(from *models.Declaration, usage *models.Annotation, depth int) ([]*models.Annotation, bool) {
	if usage.Decl == nil || depth > maxCollectorDepth {
		return nil, false
	}
	constituents, ok := c.collected(usage.Decl)
	if !ok {
		return nil, false
	}

	used := make(map[string]bool)
	var out []*models.Annotation
	for _, k := range constituents {
		n := k.Clone()
		n.Span, n.NameSpan = usage.Span, usage.NameSpan
		n.ExpandedFrom = usage.QualifiedName
		if n.Decl == nil && n.QualifiedName != "" {
			n.Decl = c.Lookup(n.QualifiedName)
		}
		for _, arg := range usage.Args {
			if !c.declaresMember(n, arg.Name) {
				continue
			}
			n.SetArg(arg.Name, arg.Value)
			for _, na := range n.Args {
				if na.Name == arg.Name {
					na.Span = arg.Span
				}
			}
			used[arg.Name] = true
		}
		if nested, ok := c.expand(from, n, depth+1); ok {
			out = append(out, nested...)
		} else {
			out = append(out, n)
		}
	}

	var unmapped []string
	for _, arg := range usage.Args {
		if !used[arg.Name] {
			unmapped = append(unmapped, arg.Name)
		}
	}
	if len(unmapped) > 0 {
		c.Diagnostics().Report(errors.TransformPreconditionCode, usage.Span,
			"Annotation collector got unmapped names [%s].", strings.Join(unmapped, ", "))
	}
	for _, n := range out {
		c.resolveMarker(n, from)
	}
	return out, true
}

// collected returns the annotations a collector type stands for. Source
// collectors list them as annotations on the collector and as class
// literals in its value; library collectors come from the catalog.
func (c *Context) collected(d *models.Declaration) ([]*models.Annotation, bool) {
	if d.Origin == models.OriginLibrary {
		entries := c.Resolver.Table().Catalog().Collects(d.QualifiedName)
		if len(entries) == 0 {
			return nil, false
		}
		out := make([]*models.Annotation, len(entries))
		for i, e := range entries {
			out[i] = annotations.ParseCollected(e)
		}
		return out, true
	}

	marker := models.FindAnnotation(d.Annotations, annotations.AnnotationCollector)
	if marker == nil || d.Kind != models.KindAnnotation {
		return nil, false
	}
	var out []*models.Annotation
	for _, a := range d.Annotations {
		if a == marker || a.Decl == nil || types.PackageOf(a.QualifiedName) == "java.lang.annotation" {
			continue
		}
		out = append(out, a)
	}
	for _, cls := range c.classDecls(marker, "value", d) {
		if cls.Kind != models.KindAnnotation {
			continue
		}
		out = append(out, &models.Annotation{
			Name:          cls.Name,
			QualifiedName: cls.QualifiedName,
			Decl:          cls,
			Span:          models.NoSpan,
			NameSpan:      models.NoSpan,
		})
	}
	return out, true
}

// declaresMember reports whether the annotation type of a has a member name
func (c *Context) declaresMember(a *models.Annotation, name string) bool {
	if a.Decl != nil {
		return len(a.Decl.MethodsNamed(name)) > 0
	}
	if schema, ok := c.engine.schemas.Lookup(a.QualifiedName); ok {
		_, ok := schema.Parameters[name]
		return ok
	}
	return false
}

// classDecls returns the types named by a class-valued argument, written as
// class literals or bare names, in order
func (c *Context) classDecls(a *models.Annotation, arg string, from *models.Declaration) []*models.Declaration {
	v, ok := a.Arg(arg)
	if !ok {
		return nil
	}
	var out []*models.Declaration
	var collect func(e models.Expr)
	collect = func(e models.Expr) {
		var ref *models.TypeRef
		switch x := e.(type) {
		case *models.ClassLit:
			ref = x.Type
		case *models.ListLit:
			for _, el := range x.Elems {
				collect(el)
			}
			return
		case *models.Ident, *models.FieldAccess:
			ref = &models.TypeRef{Name: models.QualifiedName(e), Span: e.NodeSpan()}
		default:
			return
		}
		d := ref.Decl
		if d == nil && ref.Name != "" {
			_, d = c.Resolver.Probe(ref, from)
		}
		if d != nil {
			out = append(out, d)
		}
	}
	collect(v)
	return out
}
