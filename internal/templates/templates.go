package templates

import (
	"bytes"

	"github.com/toyz/jointc/internal/errors"
)

// ClassData is the view of one class file rendered by the "class" template
type ClassData struct {
	SourceFile   string
	Version      string
	Major        int
	Minor        int
	SuperBit     bool
	Signature    string
	Annotations  []string
	Header       string
	Fields       []MemberData
	Methods      []MemberData
	InnerClasses []InnerClassData
}

// MemberData is one field or method
type MemberData struct {
	DescriptorIndex int
	Descriptor      string
	Signature       string
	Annotations     []string
	// Declaration is the Java-like declaration without the trailing semicolon
	Declaration string
	// Constant is the rendered ConstantValue of a field
	Constant   string
	Exceptions []string
}

// InnerClassData is one InnerClasses attribute entry
type InnerClassData struct {
	InnerIndex int
	Inner      string
	OuterIndex int
	Outer      string
	NameIndex  int
	Name       string
	Flags      int
	Access     string
}

// Execute renders a registered template of the default registry
func Execute(name string, data interface{}) (string, error) {
	return executeTemplate(DefaultTemplateRegistry, name, data)
}

// RenderClass renders the disassembly of one class
func RenderClass(data *ClassData) (string, error) {
	return Execute("class", data)
}

// executeTemplate executes a registered template with the given data
func executeTemplate(tr *TemplateRegistry, name string, data interface{}) (string, error) {
	if _, ok := tr.Get(name); !ok {
		return "", errors.Newf(errors.TemplateErrorCode, "template not found: %s", name)
	}
	set, err := tr.Set()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.WrapTemplateError(name, "execute", err)
	}

	return buf.String(), nil
}
