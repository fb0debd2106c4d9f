package transform

import (
	"github.com/toyz/jointc/internal/models"
)

const runtimeExceptionName = "java.lang.RuntimeException"

// applySingleton adds the instance holder, the accessor and a private
// constructor. Eager singletons create the instance as the first step of
// class initialization; lazy ones on the first accessor call.
func applySingleton(ctx *Context, d *models.Declaration, marker *models.Annotation) error {
	p := ctx.Params
	property := p.GetString("property", "instance")
	lazy := p.GetBool("lazy")
	strict := p.GetBool("strict", true)

	if strict {
		for _, c := range d.Constructors() {
			if !c.Generated {
				return precondition(marker.Span, "@Singleton didn't expect to find one or more additional constructors: remove constructor(s) or set strict=false")
			}
		}
	}
	if d.Field(property) != nil {
		return precondition(marker.Span, "The field '%s' is declared multiple times.", property)
	}

	self := models.RefTo(d)
	holder := models.Select(models.NewIdent(d.Name), property)
	getter := "get" + capitalize(property)

	var body *models.Block
	if lazy {
		field := models.NewField(property, models.ModPrivate|models.ModStatic|models.ModVolatile, self, nil)
		d.InsertMember(0, field)
		// if (instance != null) return instance
		// synchronized (C) { if (instance != null) return instance; return instance = new C() }
		ready := func() models.Stmt {
			return models.IfThen(models.Compare("!=", models.Select(models.NewIdent(d.Name), property), models.NullLit()),
				models.Ret(models.Select(models.NewIdent(d.Name), property)))
		}
		body = models.Stmts(
			ready(),
			&models.Sync{
				Lock: models.ClassOf(models.RefTo(d)),
				Body: models.Stmts(
					ready(),
					models.Ret(models.AssignTo(models.Select(models.NewIdent(d.Name), property), models.NewOf(models.RefTo(d)))),
				),
				Span: models.NoSpan,
			},
		)
	} else {
		field := models.NewField(property, models.ModPublic|models.ModStatic|models.ModFinal, self, models.NewOf(models.RefTo(d)))
		d.InsertMember(0, field)
		body = models.Stmts(models.Ret(holder))
	}

	if len(d.MethodsNamed(getter)) == 0 {
		d.AddMember(models.NewMethod(getter, models.ModPublic|models.ModStatic, models.RefTo(d), nil, body))
	}

	if len(d.Constructors()) == 0 {
		// a second construction through reflection is refused
		msg := models.StringLit("Can't instantiate singleton " + d.QualifiedName + ". Use " + d.QualifiedName + "." + property)
		guard := models.IfThen(
			models.Compare("!=", models.Select(models.NewIdent(d.Name), property), models.NullLit()),
			&models.Throw{X: models.NewOf(ctx.refTo(runtimeExceptionName), msg), Span: models.NoSpan},
		)
		ctor := models.NewConstructor(d, models.ModPrivate, nil, models.Stmts(guard))
		at := 0
		for i, m := range d.Members {
			if m.Kind == models.KindField || m.Kind == models.KindInitializer {
				at = i + 1
			}
		}
		d.InsertMember(at, ctor)
	}
	return nil
}
