package utils

import (
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      ValidationError
		expected string
	}{
		{
			name:     "error with field",
			err:      ValidationError{Field: "property", Message: "cannot be empty"},
			expected: "validation error for field 'property': cannot be empty",
		},
		{
			name:     "error without field",
			err:      ValidationError{Message: "invalid format"},
			expected: "validation error: invalid format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestIsJavaIdentifier(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"log", true},
		{"$VALUES", true},
		{"_x1", true},
		{"ünïcode", true},
		{"", false},
		{"1abc", false},
		{"a-b", false},
		{"a.b", false},
	}

	validator := IsJavaIdentifier("value")
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := validator(tt.value)
			if tt.valid && err != nil {
				t.Errorf("expected %q to be valid, got %v", tt.value, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("expected %q to be invalid", tt.value)
			}
		})
	}
}

func TestIsQualifiedName(t *testing.T) {
	validator := IsQualifiedName("import")
	for _, ok := range []string{"java.util.List", "a", "a.B.FOO"} {
		if err := validator(ok); err != nil {
			t.Errorf("expected %q to be valid: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "a..b", "a.", ".a", "a.*"} {
		if err := validator(bad); err == nil {
			t.Errorf("expected %q to be invalid", bad)
		}
	}
}

func TestIsOneOf(t *testing.T) {
	validator := IsOneOf("precedence", "first", "last")
	if err := validator("last"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := validator("middle")
	if err == nil || !strings.Contains(err.Error(), "must be one of: [first last]") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidatorChain(t *testing.T) {
	chain := NewValidatorChain(NotEmpty("name")).Add(IsJavaIdentifier("name"))

	if err := chain.Validate("instance"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := chain.Validate(""); err == nil || !strings.Contains(err.Error(), "cannot be empty") {
		t.Errorf("expected empty error, got %v", err)
	}
	if err := chain.Validate("9lives"); err == nil || !strings.Contains(err.Error(), "valid identifier") {
		t.Errorf("expected identifier error, got %v", err)
	}
}

func TestValidateEach(t *testing.T) {
	validator := ValidateEach("includes", IsJavaIdentifier("name"))
	if err := validator([]string{"a", "b"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := validator([]string{"a", "b c"})
	if err == nil || !strings.Contains(err.Error(), "includes[1]") {
		t.Errorf("expected indexed error, got %v", err)
	}
}
