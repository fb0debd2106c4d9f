package generator

import (
	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
)

// Generator emits and disassembles the classes of lowered units
type Generator struct {
	emitter *Emitter
}

// NewGenerator creates a generator writing class files of the given major
// version; lookup maps qualified names to declarations for $ names
func NewGenerator(lookup ClassLookup, major int) *Generator {
	return &Generator{emitter: NewEmitter(lookup, major)}
}

// Generate emits the given classes, as listed by lowering, and renders
// their disassembly
func (g *Generator) Generate(classes []*models.Declaration) ([]*ClassFile, []*models.GeneratedClass, error) {
	files := g.emitter.EmitAll(classes)
	out := make([]*models.GeneratedClass, 0, len(files))
	for _, cf := range files {
		text, err := Disassemble(cf)
		if err != nil {
			return nil, nil, errors.Wrap(errors.InternalErrorCode, "failed to disassemble "+dottedName(cf.Name), err)
		}
		out = append(out, &models.GeneratedClass{
			BinaryName:  cf.Name,
			FilePath:    cf.Name + ".class",
			SourceFile:  cf.SourceFile,
			Disassembly: text,
		})
	}
	return files, out, nil
}
