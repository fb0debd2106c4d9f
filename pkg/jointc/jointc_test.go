package jointc_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/jointc/pkg/jointc"
)

func TestCompile(t *testing.T) {
	result, err := jointc.Compile(context.Background(), []jointc.Source{
		{Path: "p/Base.java", Text: "package p;\npublic abstract class Base {\n  protected abstract String name();\n}\n"},
		{Path: "p/Impl.groovy", Text: "package p\nclass Impl extends Base {\n  String name() { 'impl' }\n}\n"},
	}, nil)
	require.NoError(t, err)
	assert.False(t, result.HasErrors(), result.Report())
	assert.NotNil(t, result.Unit("p/Impl.groovy").Class("p/Impl"))
}

func TestCompileArchive(t *testing.T) {
	opts := jointc.DefaultOptions()
	opts.PathStyle = jointc.PathStyleNative
	opts.StarImportPrecedence = jointc.PrecedenceFirst

	archive := []byte(`-- a/Thing.groovy --
package a
class Thing {}
-- b/Thing.groovy --
package b
class Thing {}
-- c/User.groovy --
package c
import b.*
import a.*
class User {
  Thing thing
}
-- c/Bad.groovy --
package c
class Bad {
  Nope n
}
`)
	result, err := jointc.CompileArchive(context.Background(), archive, opts)
	require.NoError(t, err)
	require.Len(t, result.Units, 4)
	assert.NotNil(t, result.Unit("c/User.groovy").Class("c/User"))
	assert.True(t, result.HasErrors())
	assert.Contains(t, result.Report(), "ERROR in c/Bad.groovy (at line 3)")
}

type lines []string

func (l *lines) Verbose(format string, args ...interface{}) { *l = append(*l, fmt.Sprintf(format, args...)) }
func (l *lines) Debug(string, ...interface{})               {}

func TestCompileWithLogger(t *testing.T) {
	var lg lines
	_, err := jointc.CompileWithLogger(context.Background(), []jointc.Source{{Path: "A.groovy", Text: "class A {}\n"}}, nil, &lg)
	require.NoError(t, err)
	assert.NotEmpty(t, lg)
}

func TestCompile_InvalidOptions(t *testing.T) {
	opts := jointc.DefaultOptions()
	opts.Compliance = "x"
	_, err := jointc.Compile(context.Background(), []jointc.Source{{Path: "A.groovy", Text: "class A {}\n"}}, opts)
	assert.Error(t, err)
}
