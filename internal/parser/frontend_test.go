package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
)

type stubFrontEnd struct {
	name string
	exts []string
}

func (s *stubFrontEnd) Name() string         { return s.name }
func (s *stubFrontEnd) Extensions() []string { return s.exts }
func (s *stubFrontEnd) Parse(path, src string) (*models.CompilationUnit, error) {
	return models.NewCompilationUnit(path, src, models.LanguageGroovy), nil
}

func TestRegistry_ForPath(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		path    string
		want    string
		wantErr string
	}{
		{path: "src/a/Foo.groovy", want: "groovy"},
		{path: "script.gvy", want: "groovy"},
		{path: "src/a/Bar.java", want: "java"},
		{path: "LOUD.JAVA", want: "java"},
		{path: "Main.kt", wantErr: "cannot compile Main.kt: extension '.kt' is not registered"},
		{path: "Makefile", wantErr: "extension '' is not registered"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			fe, err := r.ForPath(tt.path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, fe)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, fe.Name())
		})
	}
}

func TestRegistry_UnsupportedExtensionHint(t *testing.T) {
	_, err := DefaultRegistry().ForPath("Main.scala")
	require.Error(t, err)

	var base *errors.BaseError
	require.ErrorAs(t, err, &base)
	assert.Equal(t, errors.ValidationErrorCode, base.ErrorCode())
	require.Len(t, base.Hints, 1)
	assert.Equal(t, "supported extensions: .groovy, .gvy, .gy, .java", base.Hints[0])
}

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name    string
		fe      FrontEnd
		wantErr string
	}{
		{
			name: "new front end",
			fe:   &stubFrontEnd{name: "kotlin", exts: []string{".kt"}},
		},
		{
			name:    "duplicate name",
			fe:      &stubFrontEnd{name: "groovy", exts: []string{".g2"}},
			wantErr: "front end registry: front end 'groovy' is already registered",
		},
		{
			name:    "duplicate extension",
			fe:      &stubFrontEnd{name: "other", exts: []string{".JAVA"}},
			wantErr: "front end registry: extension '.java' is already registered",
		},
		{
			name:    "empty extension",
			fe:      &stubFrontEnd{name: "blank", exts: []string{""}},
			wantErr: "extension cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRegistry()
			err := r.Register(tt.fe)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			fe, err := r.ForPath("Main.kt")
			require.NoError(t, err)
			assert.Same(t, tt.fe, fe)
		})
	}
}

func TestRegistry_Named(t *testing.T) {
	r := DefaultRegistry()

	fe, err := r.Named("java")
	require.NoError(t, err)
	assert.Equal(t, []string{".java"}, fe.Extensions())

	_, err = r.Named("scala")
	assert.EqualError(t, err, "front end 'scala' is not registered")
}

func TestRegistry_Parse(t *testing.T) {
	r := DefaultRegistry()

	unit, err := r.Parse("p/Greeter.groovy", "package p\nclass Greeter {}\n")
	require.NoError(t, err)
	assert.Equal(t, models.LanguageGroovy, unit.Language)
	assert.Equal(t, "p.Greeter", unit.Types[0].QualifiedName)

	unit, err = r.Parse("p/Util.java", "package p;\npublic class Util {}\n")
	require.NoError(t, err)
	assert.Equal(t, models.LanguageJava, unit.Language)
	assert.Equal(t, "p/Util", unit.Types[0].BinaryName)

	unit, err = r.Parse("notes.txt", "hello")
	assert.Error(t, err)
	assert.Nil(t, unit)
}

func TestNewRegistry_DuplicateFrontEnds(t *testing.T) {
	r, err := NewRegistry(NewGroovyFrontEnd(), NewGroovyFrontEnd())
	assert.Nil(t, r)
	assert.EqualError(t, err, "front end registry: front end 'groovy' is already registered")
}
