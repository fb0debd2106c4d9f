package generator

import (
	"strconv"
	"strings"

	"github.com/toyz/jointc/internal/lowering"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

// Access flags with no source modifier counterpart
const (
	AccSuper   models.Modifiers = 0x0020
	AccVarargs models.Modifiers = 0x0080

	classAccessMask = models.ModPublic | models.ModFinal | models.ModInterface | models.ModAbstract |
		models.ModSynthetic | models.ModAnnotation | models.ModEnum
	fieldAccessMask = models.VisibilityMask | models.ModStatic | models.ModFinal | models.ModVolatile |
		models.ModTransient | models.ModSynthetic | models.ModEnum
	methodAccessMask = models.VisibilityMask | models.ModStatic | models.ModFinal | models.ModSynchronized |
		models.ModNative | models.ModAbstract | models.ModStrict | models.ModSynthetic
	innerAccessMask = models.VisibilityMask | models.ModStatic | models.ModFinal | models.ModInterface |
		models.ModAbstract | models.ModSynthetic | models.ModAnnotation | models.ModEnum
)

const groovyObjectName = "groovy.lang.GroovyObject"

// ClassFile is the emitted form of one class: names, flags and member
// descriptors as the JVM sees them. Method bodies are not assembled.
type ClassFile struct {
	Name         string
	SourceFile   string
	Major        int
	Minor        int
	Access       models.Modifiers
	Super        string
	Interfaces   []string
	Signature    string
	Annotations  []Annotation
	Fields       []*Field
	Methods      []*Method
	InnerClasses []InnerClass
	Pool         *ConstantPool

	ThisIndex  int
	SuperIndex int
	Decl       *models.Declaration
}

// Field is one field_info
type Field struct {
	Access          models.Modifiers
	Name            string
	Descriptor      string
	Signature       string
	NameIndex       int
	DescriptorIndex int
	Constant        *Constant
	Annotations     []Annotation
	Type            *types.Type
}

// Constant is a ConstantValue attribute
type Constant struct {
	Index int
	Text  string
}

// Method is one method_info
type Method struct {
	Access          models.Modifiers
	Name            string
	Descriptor      string
	Signature       string
	NameIndex       int
	DescriptorIndex int
	Exceptions      []string
	Annotations     []Annotation
	Params          []*types.Type
	ParamNames      []string
	Return          *types.Type
}

// IsVarargs reports whether the method carries ACC_VARARGS
func (m *Method) IsVarargs() bool { return m.Access&AccVarargs != 0 }

// Annotation is one entry of a Runtime(In)VisibleAnnotations attribute
type Annotation struct {
	Type    string
	Visible bool
}

// InnerClass is one InnerClasses attribute entry. Outer and Name are empty
// for anonymous classes.
type InnerClass struct {
	Inner      string
	Outer      string
	Name       string
	Access     models.Modifiers
	InnerIndex int
	OuterIndex int
	NameIndex  int
}

// Emitter turns lowered type declarations into class files
type Emitter struct {
	namer
	major int
}

// NewEmitter creates an emitter writing the given class file major version
func NewEmitter(lookup ClassLookup, major int) *Emitter {
	return &Emitter{namer: namer{lookup: lookup}, major: major}
}

// EmitAll emits every declaration and links nested classes to their outer
// class through InnerClasses entries
func (e *Emitter) EmitAll(decls []*models.Declaration) []*ClassFile {
	out := make([]*ClassFile, 0, len(decls))
	byDecl := make(map[*models.Declaration]*ClassFile, len(decls))
	for _, d := range decls {
		cf := e.Emit(d)
		out = append(out, cf)
		byDecl[d] = cf
	}
	for _, cf := range out {
		outer := outerClass(cf.Decl)
		if outer == nil {
			continue
		}
		cf.addInner(cf.Decl, outer)
		if host, ok := byDecl[outer]; ok {
			host.addInner(cf.Decl, outer)
		}
	}
	return out
}

// outerClass returns the class a nested or anonymous class is declared in
func outerClass(d *models.Declaration) *models.Declaration {
	for cur := d.Owner; cur != nil; cur = cur.Owner {
		if cur.IsType() {
			return cur
		}
	}
	return nil
}

func (cf *ClassFile) addInner(d, outer *models.Declaration) {
	ic := InnerClass{
		Inner:  d.BinaryName,
		Access: d.Modifiers & innerAccessMask,
	}
	ic.InnerIndex = cf.Pool.Class(ic.Inner)
	if !d.Anonymous {
		ic.Outer = outer.BinaryName
		ic.Name = d.Name
		ic.OuterIndex = cf.Pool.Class(ic.Outer)
		ic.NameIndex = cf.Pool.Utf8(ic.Name)
	}
	cf.InnerClasses = append(cf.InnerClasses, ic)
}

// Emit builds the class file of one type declaration
func (e *Emitter) Emit(d *models.Declaration) *ClassFile {
	pool := NewConstantPool()
	cf := &ClassFile{
		Name:  d.BinaryName,
		Major: e.major,
		Pool:  pool,
		Decl:  d,
	}
	if d.Unit != nil {
		cf.SourceFile = d.Unit.FileName()
	}
	cf.ThisIndex = pool.Class(cf.Name)
	cf.Access = classAccess(d)

	super, interfaces := e.supertypes(d)
	cf.Super = e.internalName(super.Name)
	cf.SuperIndex = pool.Class(cf.Super)
	for _, i := range interfaces {
		name := e.internalName(i.Name)
		pool.Class(name)
		cf.Interfaces = append(cf.Interfaces, name)
	}
	if sig := e.classSignature(d, super, interfaces); sig != "" {
		cf.Signature = sig
		pool.Utf8(sig)
	}
	cf.Annotations = e.annotations(pool, d.Annotations)

	for _, m := range d.Members {
		switch {
		case m.Kind == models.KindField:
			cf.Fields = append(cf.Fields, e.field(pool, m))
		case m.Kind == models.KindMethod || m.Kind == models.KindConstructor:
			cf.Methods = append(cf.Methods, e.method(pool, d, m))
		case m.Kind == models.KindInitializer && m.Name == lowering.StaticInitName && m.Generated:
			cf.Methods = append(cf.Methods, e.method(pool, d, m))
		}
	}
	if cf.SourceFile != "" {
		pool.Utf8(cf.SourceFile)
	}
	return cf
}

// classAccess maps declaration modifiers to class access flags. Nested
// protected classes are public and private ones package-private in the
// class file; their declared access lives in InnerClasses.
func classAccess(d *models.Declaration) models.Modifiers {
	acc := d.Modifiers
	if acc.Has(models.ModProtected) {
		acc |= models.ModPublic
	}
	acc &= classAccessMask
	if d.IsInterface() {
		acc |= models.ModInterface | models.ModAbstract
	} else {
		acc |= AccSuper
	}
	return acc
}

// supertypes returns the superclass and interfaces as written to the class
// file; dynamic-language classes also implement GroovyObject
func (e *Emitter) supertypes(d *models.Declaration) (*types.Type, []*types.Type) {
	super := types.Object
	if !d.IsInterface() && d.Super != nil {
		super = d.Super.Type()
	}
	var interfaces []*types.Type
	seen := make(map[string]bool)
	for _, i := range d.Interfaces {
		t := i.Type()
		interfaces = append(interfaces, t)
		seen[t.Name] = true
	}
	if d.Unit != nil && d.Unit.Language == models.LanguageGroovy && !d.IsInterface() && !seen[groovyObjectName] {
		interfaces = append(interfaces, types.Class(groovyObjectName))
	}
	return super, interfaces
}

func (e *Emitter) field(pool *ConstantPool, m *models.Declaration) *Field {
	t := m.Type.Type()
	f := &Field{
		Access:     m.Modifiers & fieldAccessMask,
		Name:       m.Name,
		Descriptor: e.descriptor(t),
		Type:       t,
	}
	f.NameIndex = pool.Utf8(f.Name)
	f.DescriptorIndex = pool.Utf8(f.Descriptor)
	if generic(t) {
		f.Signature = e.signature(t)
		pool.Utf8(f.Signature)
	}
	if lowering.IsConstantValue(m) {
		f.Constant = constantValue(pool, m.Init.(*models.Literal), t)
	}
	f.Annotations = e.annotations(pool, m.Annotations)
	return f
}

func (e *Emitter) method(pool *ConstantPool, owner, m *models.Declaration) *Method {
	out := &Method{
		Access: m.Modifiers & methodAccessMask,
		Name:   m.Name,
		Return: m.ReturnType(),
	}
	switch m.Kind {
	case models.KindConstructor:
		out.Name = "<init>"
	case models.KindInitializer:
		out.Return = types.Void
	}
	if owner.IsInterface() && m.Kind == models.KindMethod && !m.IsStatic() && m.Body == nil {
		out.Access |= models.ModAbstract
	}
	if m.IsVarargs() {
		out.Access |= AccVarargs
	}
	for _, p := range m.Params {
		out.Params = append(out.Params, p.Descriptor())
		out.ParamNames = append(out.ParamNames, p.Name)
	}
	out.Descriptor = e.methodDescriptor(out.Params, out.Return)
	out.NameIndex = pool.Utf8(out.Name)
	out.DescriptorIndex = pool.Utf8(out.Descriptor)
	if sig := e.methodSignature(m, out.Params, out.Return); sig != "" {
		out.Signature = sig
		pool.Utf8(sig)
	}
	for _, t := range m.Throws {
		name := e.internalName(t.Type().Name)
		pool.Class(name)
		out.Exceptions = append(out.Exceptions, name)
	}
	out.Annotations = e.annotations(pool, m.Annotations)
	return out
}

// annotations keeps the annotations retained in class files: RUNTIME ones
// are visible, CLASS ones invisible and SOURCE ones dropped
func (e *Emitter) annotations(pool *ConstantPool, list []*models.Annotation) []Annotation {
	var out []Annotation
	for _, a := range list {
		policy := retention(a)
		if policy == "SOURCE" {
			continue
		}
		name := a.QualifiedName
		if name == "" {
			name = a.Name
		}
		pool.Utf8(e.descriptor(types.Class(name)))
		out = append(out, Annotation{Type: name, Visible: policy == "RUNTIME"})
	}
	return out
}

// retention reads @Retention from the annotation type; CLASS is the default
func retention(a *models.Annotation) string {
	if a.Decl == nil {
		return "CLASS"
	}
	meta := models.FindAnnotation(a.Decl.Annotations, "java.lang.annotation.Retention")
	if meta == nil {
		return "CLASS"
	}
	value, ok := meta.Arg("value")
	if !ok {
		return "CLASS"
	}
	switch v := value.(type) {
	case *models.FieldAccess:
		return v.Name
	case *models.Ident:
		return v.Name
	}
	return "CLASS"
}

// constantValue adds the pool entry of a compile-time constant field
func constantValue(pool *ConstantPool, lit *models.Literal, t *types.Type) *Constant {
	text := strings.ReplaceAll(lit.Value, "_", "")
	switch t.Name {
	case types.StringName:
		return &Constant{Index: pool.String(lit.Value), Text: strconv.Quote(lit.Value)}
	case "boolean":
		v := int32(0)
		if lit.Value == "true" {
			v = 1
		}
		return &Constant{Index: pool.Integer(v), Text: lit.Value}
	case "char":
		if lit.Kind == models.LitChar {
			r := []rune(lit.Value)
			if len(r) == 1 {
				return &Constant{Index: pool.Integer(int32(r[0])), Text: strconv.QuoteRune(r[0])}
			}
		}
	case "long":
		if v, err := strconv.ParseInt(strings.TrimRight(text, "lL"), 0, 64); err == nil {
			return &Constant{Index: pool.Long(v), Text: strconv.FormatInt(v, 10) + "L"}
		}
	case "float":
		if v, err := strconv.ParseFloat(strings.TrimRight(text, "fF"), 32); err == nil {
			return &Constant{Index: pool.Float(float32(v)), Text: strconv.FormatFloat(v, 'g', -1, 32) + "f"}
		}
	case "double":
		if v, err := strconv.ParseFloat(strings.TrimRight(text, "dD"), 64); err == nil {
			return &Constant{Index: pool.Double(v), Text: strconv.FormatFloat(v, 'g', -1, 64)}
		}
	}
	if v, err := strconv.ParseInt(strings.TrimRight(text, "iI"), 0, 32); err == nil {
		return &Constant{Index: pool.Integer(int32(v)), Text: strconv.FormatInt(v, 10)}
	}
	return &Constant{Index: pool.String(lit.Value), Text: lit.Value}
}
