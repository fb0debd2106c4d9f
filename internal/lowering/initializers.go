package lowering

import (
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

// assembleInitializers moves field initializers and initializer blocks to
// where they run: static ones into a single static initializer, instance
// ones into every constructor that does not delegate to another
func (l *Lowerer) assembleInitializers(d *models.Declaration) {
	l.assembleStatic(d)
	if d.Kind == models.KindClass || d.Kind == models.KindEnum {
		l.assembleInstance(d)
	}
}

// assembleStatic builds the static initializer. Statements run in member
// order, so enum holder fields and eager singleton instances come first.
func (l *Lowerer) assembleStatic(d *models.Declaration) {
	var stmts []models.Stmt
	var blocks []*models.Declaration
	for _, m := range d.Members {
		if !m.IsStatic() {
			continue
		}
		switch {
		case m.Kind == models.KindField && m.Init != nil && !IsConstantValue(m):
			stmts = append(stmts, models.Eval(models.AssignTo(staticField(d, m), m.Init)))
		case m.Kind == models.KindInitializer && !m.Generated:
			if m.Body != nil {
				stmts = append(stmts, m.Body)
			}
			blocks = append(blocks, m)
		}
	}
	for _, b := range blocks {
		d.RemoveMember(b)
	}
	if len(stmts) == 0 {
		return
	}
	d.AddMember(&models.Declaration{
		Kind:      models.KindInitializer,
		Name:      StaticInitName,
		Modifiers: models.ModStatic,
		Body:      models.Stmts(stmts...),
		Origin:    models.OriginGenerated,
		Generated: true,
		Synthetic: true,
		Span:      models.NoSpan,
		NameSpan:  models.NoSpan,
		BodySpan:  models.NoSpan,
	})
}

func (l *Lowerer) assembleInstance(d *models.Declaration) {
	var stmts []models.Stmt
	var blocks []*models.Declaration
	for _, m := range d.Members {
		if m.IsStatic() {
			continue
		}
		switch {
		case m.Kind == models.KindField && m.Init != nil:
			stmts = append(stmts, models.Eval(models.AssignTo(models.Select(models.NewThis(), m.Name), m.Init)))
		case m.Kind == models.KindInitializer:
			if m.Body != nil {
				stmts = append(stmts, m.Body)
			}
			blocks = append(blocks, m)
		}
	}
	for _, b := range blocks {
		d.RemoveMember(b)
	}
	if len(stmts) == 0 {
		return
	}
	for _, ctor := range d.Constructors() {
		if ctor.Body == nil {
			ctor.Body = models.Stmts()
		}
		at := 0
		if len(ctor.Body.Stmts) > 0 {
			if call, ok := ctor.Body.Stmts[0].(*models.CtorCall); ok {
				if !call.Super {
					continue
				}
				at = 1
			}
		}
		body := make([]models.Stmt, 0, len(ctor.Body.Stmts)+len(stmts))
		body = append(body, ctor.Body.Stmts[:at]...)
		body = append(body, stmts...)
		body = append(body, ctor.Body.Stmts[at:]...)
		ctor.Body.Stmts = body
	}
}

// IsConstantValue reports a static final field of primitive or String type
// initialized by a literal; its value is stored in the class file instead
// of being assigned at class initialization
func IsConstantValue(f *models.Declaration) bool {
	if f.Kind != models.KindField || !f.IsStatic() || !f.Modifiers.Has(models.ModFinal) {
		return false
	}
	lit, ok := f.Init.(*models.Literal)
	if !ok || lit.Kind == models.LitNull {
		return false
	}
	t := f.Type.Type()
	return t.IsPrimitive() || t.Equal(types.String)
}
