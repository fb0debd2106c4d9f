package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	tr := NewTemplateRegistry()
	assert.Equal(t, []string{"class", "inner-classes", "field", "method"}, tr.Names())

	_, ok := tr.Get("class")
	assert.True(t, ok)
	_, ok = tr.Get("missing")
	assert.False(t, ok)
	assert.Panics(t, func() { tr.MustGet("missing") })

	set, err := tr.Set()
	require.NoError(t, err)
	for _, name := range tr.Names() {
		assert.NotNil(t, set.Lookup(name), name)
	}
}

func TestRegistry_ParseError(t *testing.T) {
	tr := &TemplateRegistry{templates: make(map[string]string)}
	tr.register("broken", "{{.Name")
	_, err := tr.Set()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	_, err = executeTemplate(tr, "broken", nil)
	require.Error(t, err)
}

func TestRenderClass(t *testing.T) {
	data := &ClassData{
		SourceFile:  "X.groovy",
		Version:     VersionName(52),
		Major:       52,
		SuperBit:    true,
		Annotations: []string{"p.Anno"},
		Header:      "public class p.X implements groovy.lang.GroovyObject",
		Fields: []MemberData{
			{DescriptorIndex: 11, Descriptor: "Ljava/lang/String;", Annotations: []string{"p.Anno"}, Declaration: "private java.lang.String s"},
			{DescriptorIndex: 13, Descriptor: "I", Declaration: "public static final int LIMIT", Constant: "10"},
		},
		Methods: []MemberData{
			{DescriptorIndex: 20, Descriptor: "([Ljava/lang/String;)V", Declaration: "public static void main(java.lang.String... argv)"},
			{DescriptorIndex: 22, Descriptor: "()V", Declaration: "public void close()", Exceptions: []string{"java.io.IOException"}},
		},
	}
	out, err := RenderClass(data)
	require.NoError(t, err)
	assert.Equal(t, `// Compiled from X.groovy (version 1.8 : 52.0, super bit)
@p.Anno
public class p.X implements groovy.lang.GroovyObject {

  // Field descriptor #11 Ljava/lang/String;
  @p.Anno
  private java.lang.String s;

  // Field descriptor #13 I
  public static final int LIMIT = 10;

  // Method descriptor #20 ([Ljava/lang/String;)V
  public static void main(java.lang.String... argv);

  // Method descriptor #22 ()V
  public void close() throws java.io.IOException;
}
`, out)
}

func TestRenderClass_InnerClasses(t *testing.T) {
	data := &ClassData{
		SourceFile: "E.groovy",
		Version:    VersionName(55),
		Major:      55,
		Signature:  "Ljava/lang/Enum<LE;>;",
		Header:     "public abstract enum E extends java.lang.Enum",
		InnerClasses: []InnerClassData{
			{InnerIndex: 3, Inner: "E$1", NameIndex: 0, Flags: 16400, Access: "final enum"},
		},
	}
	out, err := RenderClass(data)
	require.NoError(t, err)
	assert.Contains(t, out, "(version 11 : 55.0)\n// Signature: Ljava/lang/Enum<LE;>;\n")
	assert.Contains(t, out, "  Inner classes:\n    [inner class info: #3 E$1, outer class info: #0 \n     inner name: #0 , accessflags: 16400 final enum]\n}\n")
}

func TestVersionName(t *testing.T) {
	assert.Equal(t, "1.5", VersionName(49))
	assert.Equal(t, "1.8", VersionName(52))
	assert.Equal(t, "9", VersionName(53))
	assert.Equal(t, "17", VersionName(61))
}
