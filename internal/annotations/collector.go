package annotations

import (
	"strings"

	"github.com/toyz/jointc/internal/models"
)

// ParseCollected builds the marker a library collector entry stands for.
// Entries are a qualified annotation name with an optional argument list of
// name = value pairs or a single value, e.g.
// groovy.transform.CompileStatic(groovy.transform.TypeCheckingMode.SKIP).
func ParseCollected(entry string) *models.Annotation {
	name, args, _ := strings.Cut(strings.TrimSpace(entry), "(")
	a := &models.Annotation{
		Name:          name,
		QualifiedName: name,
		Span:          models.NoSpan,
		NameSpan:      models.NoSpan,
	}
	args = strings.TrimSuffix(strings.TrimSpace(args), ")")
	if args == "" {
		return a
	}
	for _, part := range strings.Split(args, ",") {
		key, value, named := strings.Cut(part, "=")
		if !named {
			key, value = "value", part
		}
		a.SetArg(strings.TrimSpace(key), constantExpr(strings.TrimSpace(value)))
	}
	return a
}

func constantExpr(value string) models.Expr {
	switch {
	case value == "true" || value == "false":
		return models.BoolLit(value == "true")
	case strings.HasPrefix(value, "'") || strings.HasPrefix(value, `"`):
		return models.StringLit(strings.Trim(value, `'"`))
	case value != "" && value[0] >= '0' && value[0] <= '9':
		return &models.Literal{Kind: models.LitInt, Value: value, Span: models.NoSpan}
	}
	return DottedExpr(value)
}

// DottedExpr builds the name expression a.b.C as an identifier chain
func DottedExpr(name string) models.Expr {
	parts := strings.Split(name, ".")
	var x models.Expr = models.NewIdent(parts[0])
	for _, p := range parts[1:] {
		x = models.Select(x, p)
	}
	return x
}
