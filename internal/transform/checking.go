package transform

import (
	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
)

// checkActivation accepts the type checking markers. Their arguments were
// validated against the schema; the checker reads them from the tree.
// Extension scripts are not run.
func checkActivation(ctx *Context, target *models.Declaration, marker *models.Annotation) error {
	if len(ctx.Params.GetStringSlice("extensions")) > 0 {
		ctx.Diagnostics().Warn(errors.TransformPreconditionCode, ctx.Params.Span("extensions"),
			"Type checking extensions are not supported and were ignored for %s", target.Name)
	}
	return nil
}
