package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/utils"
)

// FrontEnd turns one source file into a compilation unit
type FrontEnd interface {
	Name() string
	Extensions() []string
	Parse(path, src string) (*models.CompilationUnit, error)
}

// Problems carries the syntax errors of one unit. Front ends return it next
// to a usable unit; the unit is only unusable when its Fatal flag is set.
type Problems struct {
	Unit        *models.CompilationUnit
	Diagnostics []*errors.Diagnostic
}

func (p *Problems) Error() string {
	if len(p.Diagnostics) == 0 {
		return "no syntax errors"
	}
	msg := p.Diagnostics[0].Error()
	if n := len(p.Diagnostics) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

// Registry selects front ends by file extension or by name
type Registry struct {
	byExt  *utils.Registry[string, FrontEnd]
	byName *utils.Registry[string, FrontEnd]
}

// NewRegistry creates a registry holding the given front ends
func NewRegistry(frontEnds ...FrontEnd) (*Registry, error) {
	r := &Registry{
		byExt:  utils.NewRegistry[string, FrontEnd]("front end", "extension"),
		byName: utils.NewRegistry[string, FrontEnd]("front end", "front end"),
	}
	r.byExt.SetValidator(utils.ChainValidators(
		utils.NotEmptyKeyValidator[FrontEnd]("extension"),
		utils.NoDuplicateValidator[string, FrontEnd]("extension"),
	))
	r.byName.SetValidator(utils.NoDuplicateValidator[string, FrontEnd]("front end"))

	for _, fe := range frontEnds {
		if err := r.Register(fe); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns a registry with the Groovy and Java front ends
func DefaultRegistry() *Registry {
	r, err := NewRegistry(NewGroovyFrontEnd(), NewJavaFrontEnd())
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds a front end under its name and each of its extensions
func (r *Registry) Register(fe FrontEnd) error {
	if err := r.byName.Register(fe.Name(), fe); err != nil {
		return err
	}
	for _, ext := range fe.Extensions() {
		if err := r.byExt.Register(strings.ToLower(ext), fe); err != nil {
			return err
		}
	}
	return nil
}

// ForPath returns the front end registered for the file's extension
func (r *Registry) ForPath(path string) (FrontEnd, error) {
	ext := strings.ToLower(filepath.Ext(path))
	fe, err := r.byExt.GetOrError(ext)
	if err != nil {
		return nil, errors.Wrapf(errors.ValidationErrorCode, err, "cannot compile %s", path).
			WithSuggestion("supported extensions: " + strings.Join(r.byExt.Keys(), ", "))
	}
	return fe, nil
}

// Named returns the front end registered under name
func (r *Registry) Named(name string) (FrontEnd, error) {
	return r.byName.GetOrError(name)
}

// Parse parses src with the front end chosen by the path's extension
func (r *Registry) Parse(path, src string) (*models.CompilationUnit, error) {
	fe, err := r.ForPath(path)
	if err != nil {
		return nil, err
	}
	return fe.Parse(path, src)
}

// binaryName builds the JVM internal name of a type declared in unit
func binaryName(unit *models.CompilationUnit, owner *models.Declaration, name string) string {
	if owner != nil {
		return owner.BinaryName + "$" + name
	}
	if unit.Package == "" {
		return name
	}
	return strings.ReplaceAll(unit.Package, ".", "/") + "/" + name
}

// qualifiedName builds the dotted source name of a type declared in unit
func qualifiedName(unit *models.CompilationUnit, owner *models.Declaration, name string) string {
	if owner != nil {
		return owner.QualifiedName + "." + name
	}
	return unit.Qualify(name)
}
