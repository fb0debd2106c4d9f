package checker

import (
	"strconv"
	"strings"

	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

const (
	assignMismatch = "Cannot assign value of type %s to variable of type %s"
	returnMismatch = "Cannot return value of type %s on method returning type %s"
	lossyMismatch  = "Possible loss of precision from %s to %s"
)

type conversion uint8

const (
	convOK conversion = iota
	convLossy
	convMismatch
)

// checkAssign reports a value of type source stored into target. format
// takes the source and target type names.
func (w *walker) checkAssign(target, source *types.Type, value models.Expr, span models.Span, format string) bool {
	if target == nil || source == nil {
		return true
	}
	switch w.c.convertible(target, source, value) {
	case convLossy:
		w.report(errors.TypeMismatchCode, span, lossyMismatch, typeName(types.Unbox(source)), typeName(types.Unbox(target)))
		return false
	case convMismatch:
		w.report(errors.TypeMismatchCode, span, format, typeName(source), typeName(target))
		return false
	}
	return true
}

// convertible classifies the implicit conversion of a value on assignment
func (c *Checker) convertible(target, source *types.Type, value models.Expr) conversion {
	if types.Assignable(c.table, target, source) {
		return convOK
	}
	if source.IsVoid() {
		return convMismatch
	}
	// String and boolean targets accept any value
	if target.Name == types.StringName || types.Unbox(target).Name == "boolean" {
		return convOK
	}
	switch v := value.(type) {
	case *models.ListLit:
		if target.IsArray() || (target.Kind == types.KindClass && !target.IsPrimitive()) {
			return convOK
		}
	case *models.MapLit:
		if target.Kind == types.KindClass {
			return convOK
		}
	case *models.Closure:
		if d := c.declOf(target); d != nil && d.IsInterface() {
			return convOK
		}
	case *models.Literal:
		if v.Kind == models.LitString && types.Unbox(target).Name == "char" && len([]rune(v.Value)) == 1 {
			return convOK
		}
	}
	if types.IsNumeric(target) && types.IsNumeric(source) {
		return c.numericConversion(target, source, value)
	}
	return convMismatch
}

func (c *Checker) numericConversion(target, source *types.Type, value models.Expr) conversion {
	tp, sp := types.Unbox(target), types.Unbox(source)
	if !tp.IsPrimitive() {
		return convMismatch
	}
	if !sp.IsPrimitive() {
		// BigDecimal and BigInteger literals narrow to floating point silently
		if tp.Name == "double" || tp.Name == "float" {
			return convOK
		}
		return convLossy
	}
	if types.NumericRank(sp) <= types.NumericRank(tp) {
		return convMismatch
	}
	if lit, ok := value.(*models.Literal); ok && lit.Kind == models.LitInt && fits(lit.Value, tp.Name) {
		return convOK
	}
	return convLossy
}

// fits reports whether an integer literal is in range of a narrow primitive
func fits(text, prim string) bool {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return false
	}
	switch prim {
	case "byte":
		return n >= -128 && n <= 127
	case "short":
		return n >= -32768 && n <= 32767
	case "char":
		return n >= 0 && n <= 65535
	}
	return false
}

// typeName renders a type the way checker messages print it: qualified raw
// names followed by simple type arguments, e.g. java.util.ArrayList <Integer>
func typeName(t *types.Type) string {
	if t == nil {
		return types.ObjectName
	}
	switch t.Kind {
	case types.KindArray:
		return typeName(t.Elem) + "[]"
	case types.KindNull:
		return "null"
	case types.KindClass:
		if len(t.Args) == 0 {
			return t.Name
		}
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.SimpleString()
		}
		return t.Name + " <" + strings.Join(args, ", ") + ">"
	}
	return t.String()
}

func typeList(list []*types.Type) string {
	names := make([]string, len(list))
	for i, t := range list {
		names[i] = typeName(t)
	}
	return strings.Join(names, ", ")
}
