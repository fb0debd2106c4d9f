package templates

import (
	"sync"
	"text/template"

	"github.com/toyz/jointc/internal/errors"
)

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
	order     []string

	once sync.Once
	set  *template.Template
	err  error
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerClassTemplates()
	registry.registerMemberTemplates()

	return registry
}

func (tr *TemplateRegistry) register(name, text string) {
	if _, exists := tr.templates[name]; !exists {
		tr.order = append(tr.order, name)
	}
	tr.templates[name] = text
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

// Names returns the registered template names in registration order
func (tr *TemplateRegistry) Names() []string {
	return append([]string(nil), tr.order...)
}

// Set parses every registered template into one set, so templates can
// include each other by name. The set is parsed once.
func (tr *TemplateRegistry) Set() (*template.Template, error) {
	tr.once.Do(func() {
		root := template.New("disassembly").Funcs(funcMap())
		for _, name := range tr.order {
			if _, err := root.New(name).Parse(tr.templates[name]); err != nil {
				tr.err = errors.WrapTemplateError(name, "parse", err)
				return
			}
		}
		tr.set = root
	})
	return tr.set, tr.err
}

// registerClassTemplates registers the class file layout
func (tr *TemplateRegistry) registerClassTemplates() {
	tr.register("class", `// Compiled from {{.SourceFile}} (version {{.Version}} : {{.Major}}.{{.Minor}}{{if .SuperBit}}, super bit{{end}})
{{if .Signature}}// Signature: {{.Signature}}
{{end}}{{range .Annotations}}@{{.}}
{{end}}{{.Header}} {
{{range .Fields}}{{template "field" .}}{{end}}{{range .Methods}}{{template "method" .}}{{end}}{{if .InnerClasses}}{{template "inner-classes" .InnerClasses}}{{end}}}
`)

	tr.register("inner-classes", `
  Inner classes:
{{range .}}    [inner class info: #{{.InnerIndex}} {{.Inner}}, outer class info: #{{.OuterIndex}} {{.Outer}}
     inner name: #{{.NameIndex}} {{.Name}}, accessflags: {{.Flags}} {{.Access}}]
{{end}}`)
}

// registerMemberTemplates registers the field and method layouts
func (tr *TemplateRegistry) registerMemberTemplates() {
	tr.register("field", `
  // Field descriptor #{{.DescriptorIndex}} {{.Descriptor}}
{{if .Signature}}  // Signature: {{.Signature}}
{{end}}{{range .Annotations}}  @{{.}}
{{end}}  {{.Declaration}}{{if .Constant}} = {{.Constant}}{{end}};
`)

	tr.register("method", `
  // Method descriptor #{{.DescriptorIndex}} {{.Descriptor}}
{{if .Signature}}  // Signature: {{.Signature}}
{{end}}{{range .Annotations}}  @{{.}}
{{end}}  {{.Declaration}}{{if .Exceptions}} throws {{join .Exceptions ", "}}{{end}};
`)
}

// DefaultTemplateRegistry is the registry used by the disassembler
var DefaultTemplateRegistry = NewTemplateRegistry()
