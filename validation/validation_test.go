package validation

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/surgicalcoder/deploymentharness/errors"
)

type testCommand struct {
	Binary string        `json:"binary" validate:"required,nonul"`
	Dir    string        `json:"dir" validate:"omitempty,dir"`
	Env    []string      `json:"env" validate:"dive,envpair"`
	Grace  time.Duration `json:"grace_period" validate:"gte=0"`
}

func TestValidatorRequired(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"present", "echo", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New().Required("binary", tt.value)
			if v.HasErrors() != tt.wantErr {
				t.Errorf("HasErrors() = %v, want %v", v.HasErrors(), tt.wantErr)
			}
		})
	}
}

func TestValidatorRanges(t *testing.T) {
	v := New().
		Min("max_line_bytes", 0, 1).
		RangeFloat("sample_rate", 1.5, 0, 1).
		NonNegativeDuration("grace_period", -time.Second)
	if len(v.Errors()) != 3 {
		t.Errorf("expected 3 errors, got %v", v.Errors())
	}

	ok := New().
		Min("max_line_bytes", 1024, 1).
		RangeFloat("sample_rate", 0.5, 0, 1).
		NonNegativeDuration("grace_period", 0)
	if ok.HasErrors() {
		t.Errorf("expected no errors, got %v", ok.Errors())
	}
}

func TestValidatorOneOf(t *testing.T) {
	v := New().
		OneOf("format", "xml", []string{"json", "console"}).
		OneOf("format", "", []string{"json"}).
		OneOf("format", "json", []string{"json"})
	errs := v.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if !strings.Contains(errs[0].Message, "json, console") {
		t.Errorf("unexpected message %q", errs[0].Message)
	}
}

func TestValidatorValidate(t *testing.T) {
	if New().Required("name", "x").Validate() != nil {
		t.Error("expected nil for valid input")
	}
	if New().Error() != nil {
		t.Error("expected nil error for empty validator")
	}

	appErr := New().Required("binary", "").Required("dir", "").Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("code = %s", appErr.Code)
	}
	if _, ok := appErr.Details["fields"]; !ok {
		t.Error("expected fields detail")
	}
	if !strings.Contains(appErr.Message, "binary") || !strings.Contains(appErr.Message, "dir") {
		t.Errorf("expected both fields in message, got %q", appErr.Message)
	}
}

func TestStructValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		cmd       testCommand
		wantField string
	}{
		{"valid", testCommand{Binary: "echo", Dir: dir, Env: []string{"A=1"}}, ""},
		{"missing binary", testCommand{}, "binary"},
		{"nul in binary", testCommand{Binary: "ec\x00ho"}, "binary"},
		{"missing dir", testCommand{Binary: "echo", Dir: filepath.Join(dir, "gone")}, "dir"},
		{"bad env", testCommand{Binary: "echo", Env: []string{"A=1", "oops"}}, "env[1]"},
		{"negative grace", testCommand{Binary: "echo", Grace: -time.Second}, "grace_period"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cmd)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantField+":") {
				t.Errorf("expected error to mention %q, got %q", tt.wantField, err.Error())
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Binary":      "binary",
		"GracePeriod": "grace_period",
		"Dir":         "dir",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
