package transform

import (
	"github.com/toyz/jointc/internal/annotations"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

// loggerFactory describes how a logging framework creates its loggers
type loggerFactory struct {
	logger  string
	factory string
	method  string
}

var loggerFactories = map[string]loggerFactory{
	annotations.Log:     {logger: "java.util.logging.Logger", factory: "java.util.logging.Logger", method: "getLogger"},
	annotations.Slf4j:   {logger: "org.slf4j.Logger", factory: "org.slf4j.LoggerFactory", method: "getLogger"},
	annotations.Commons: {logger: "org.apache.commons.logging.Log", factory: "org.apache.commons.logging.LogFactory", method: "getLog"},
	annotations.Log4j:   {logger: "org.apache.log4j.Logger", factory: "org.apache.log4j.Logger", method: "getLogger"},
	annotations.Log4j2:  {logger: "org.apache.logging.log4j.Logger", factory: "org.apache.logging.log4j.LogManager", method: "getLogger"},
}

// applyLogger injects a static logger field named by value, created for the
// given category or the class name
func applyLogger(ctx *Context, d *models.Declaration, marker *models.Annotation) error {
	lf, ok := loggerFactories[marker.QualifiedName]
	if !ok {
		return nil
	}
	name := ctx.Params.GetString("value", "log")
	if d.Field(name) != nil {
		return precondition(marker.Span, "Class annotated with Log annotation cannot have log field declared")
	}
	category := ctx.Params.GetString("category")
	if category == "" {
		category = d.QualifiedName
	}

	factory := ctx.Lookup(lf.factory)
	recv := &models.Ident{
		Name: types.SimpleName(lf.factory),
		Span: models.NoSpan,
		Binding: &models.Binding{
			Kind:   models.BindType,
			Decl:   factory,
			Type:   types.Class(lf.factory),
			Static: true,
		},
	}
	create := models.CallOn(recv, lf.method, models.StringLit(category))
	create.Static = true

	mods := models.ModPrivate | models.ModStatic | models.ModFinal | models.ModTransient
	d.InsertMember(0, models.NewField(name, mods, ctx.refTo(lf.logger), create))
	return nil
}
