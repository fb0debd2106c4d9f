package generator

import (
	"strings"

	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/templates"
	"github.com/toyz/jointc/internal/types"
)

// Disassemble renders a class file in the layout of a class file
// disassembler: header, then one block per field and method, then the
// InnerClasses attribute
func Disassemble(cf *ClassFile) (string, error) {
	return templates.RenderClass(classData(cf))
}

func classData(cf *ClassFile) *templates.ClassData {
	data := &templates.ClassData{
		SourceFile: cf.SourceFile,
		Version:    templates.VersionName(cf.Major),
		Major:      cf.Major,
		Minor:      cf.Minor,
		SuperBit:   cf.Access&AccSuper != 0,
		Signature:  cf.Signature,
		Header:     classHeader(cf),
	}
	data.Annotations = annotationNames(cf.Annotations)
	for _, f := range cf.Fields {
		md := templates.MemberData{
			DescriptorIndex: f.DescriptorIndex,
			Descriptor:      f.Descriptor,
			Signature:       f.Signature,
			Annotations:     annotationNames(f.Annotations),
			Declaration:     accessWords(f.Access, fieldWords) + f.Type.Erasure().String() + " " + f.Name,
		}
		if f.Constant != nil {
			md.Constant = f.Constant.Text
		}
		data.Fields = append(data.Fields, md)
	}
	for _, m := range cf.Methods {
		data.Methods = append(data.Methods, templates.MemberData{
			DescriptorIndex: m.DescriptorIndex,
			Descriptor:      m.Descriptor,
			Signature:       m.Signature,
			Annotations:     annotationNames(m.Annotations),
			Declaration:     methodDeclaration(cf, m),
			Exceptions:      dotted(m.Exceptions),
		})
	}
	for _, ic := range cf.InnerClasses {
		data.InnerClasses = append(data.InnerClasses, templates.InnerClassData{
			InnerIndex: ic.InnerIndex,
			Inner:      ic.Inner,
			OuterIndex: ic.OuterIndex,
			Outer:      ic.Outer,
			NameIndex:  ic.NameIndex,
			Name:       ic.Name,
			Flags:      int(ic.Access),
			Access:     strings.TrimSpace(accessWords(ic.Access, innerWords)),
		})
	}
	return data
}

type flagWord struct {
	flag models.Modifiers
	word string
}

var (
	fieldWords = []flagWord{
		{models.ModPublic, "public"}, {models.ModPrivate, "private"}, {models.ModProtected, "protected"},
		{models.ModStatic, "static"}, {models.ModFinal, "final"},
		{models.ModVolatile, "volatile"}, {models.ModTransient, "transient"},
	}
	methodWords = []flagWord{
		{models.ModPublic, "public"}, {models.ModPrivate, "private"}, {models.ModProtected, "protected"},
		{models.ModAbstract, "abstract"}, {models.ModStatic, "static"}, {models.ModFinal, "final"},
		{models.ModSynchronized, "synchronized"}, {models.ModNative, "native"}, {models.ModStrict, "strictfp"},
	}
	innerWords = []flagWord{
		{models.ModPublic, "public"}, {models.ModPrivate, "private"}, {models.ModProtected, "protected"},
		{models.ModStatic, "static"}, {models.ModFinal, "final"}, {models.ModAbstract, "abstract"},
		{models.ModEnum, "enum"}, {models.ModInterface, "interface"},
	}
)

// accessWords renders the set flags as keywords followed by a space
func accessWords(acc models.Modifiers, words []flagWord) string {
	var sb strings.Builder
	for _, w := range words {
		if acc&w.flag != 0 {
			sb.WriteString(w.word)
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func classHeader(cf *ClassFile) string {
	var sb strings.Builder
	if cf.Access.Has(models.ModPublic) {
		sb.WriteString("public ")
	}
	interfaceLike := cf.Access.Has(models.ModInterface)
	switch {
	case !interfaceLike && cf.Access.Has(models.ModAbstract):
		sb.WriteString("abstract ")
	case cf.Access.Has(models.ModFinal):
		sb.WriteString("final ")
	}
	switch {
	case cf.Access.Has(models.ModAnnotation):
		sb.WriteString("@interface ")
	case interfaceLike:
		sb.WriteString("interface ")
	case cf.Access.Has(models.ModEnum):
		sb.WriteString("enum ")
	default:
		sb.WriteString("class ")
	}
	sb.WriteString(dottedName(cf.Name))
	if !interfaceLike && cf.Super != "" && cf.Super != "java/lang/Object" {
		sb.WriteString(" extends ")
		sb.WriteString(dottedName(cf.Super))
	}
	if len(cf.Interfaces) > 0 {
		if interfaceLike {
			sb.WriteString(" extends ")
		} else {
			sb.WriteString(" implements ")
		}
		sb.WriteString(strings.Join(dotted(cf.Interfaces), ", "))
	}
	return sb.String()
}

func methodDeclaration(cf *ClassFile, m *Method) string {
	if m.Name == "<clinit>" {
		return "static {}"
	}
	var sb strings.Builder
	sb.WriteString(accessWords(m.Access, methodWords))
	switch m.Name {
	case "<init>":
		sb.WriteString(dottedName(cf.Name))
	default:
		sb.WriteString(m.Return.Erasure().String())
		sb.WriteByte(' ')
		sb.WriteString(m.Name)
	}
	sb.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(paramText(p, m.IsVarargs() && i == len(m.Params)-1))
		if i < len(m.ParamNames) && m.ParamNames[i] != "" {
			sb.WriteByte(' ')
			sb.WriteString(m.ParamNames[i])
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

func paramText(t *types.Type, varargs bool) string {
	text := t.Erasure().String()
	if varargs && strings.HasSuffix(text, "[]") {
		return strings.TrimSuffix(text, "[]") + "..."
	}
	return text
}

func annotationNames(list []Annotation) []string {
	var out []string
	for _, a := range list {
		out = append(out, a.Type)
	}
	return out
}

func dottedName(internal string) string {
	return strings.ReplaceAll(internal, "/", ".")
}

func dotted(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = dottedName(n)
	}
	return out
}
