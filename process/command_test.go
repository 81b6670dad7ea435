package process_test

import (
	"strings"
	"testing"
	"time"

	"github.com/surgicalcoder/deploymentharness/errors"
	"github.com/surgicalcoder/deploymentharness/process"
)

func TestSplitArgLine(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"a b  c", []string{"a", "b", "c"}},
		{`-c "echo hi"`, []string{"-c", "echo hi"}},
		{`-m "say \"hi\""`, []string{"-m", `say "hi"`}},
		{`-c 'say "hi"'`, []string{"-c", "'say", "hi'"}},
		{`pre"fix suf"fix`, []string{"prefix suffix"}},
		{`""`, []string{""}},
		{`a "" b`, []string{"a", "", "b"}},
		{`"a""b"`, []string{`a"b`}},
		{`C:\dir\ x`, []string{`C:\dir\`, "x"}},
		{`a\\"b c"`, []string{`a\b c`}},
		{`a\\\"b`, []string{`a\"b`}},
		{"tab\tsep", []string{"tab", "sep"}},
		{"line\nbreak", []string{"line\nbreak"}},
		{`"unterminated arg`, []string{"unterminated arg"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := process.SplitArgLine(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitArgLine(%q) = %q, want %q", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("SplitArgLine(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCommandString(t *testing.T) {
	cmd := process.Command{
		Binary:  "git",
		Args:    []string{"commit", "-m", `say "hi"`, ""},
		ArgLine: "--quiet",
	}
	want := `git commit -m "say \"hi\"" "" --quiet`
	if got := cmd.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCommandValidate(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		cmd     process.Command
		wantErr string
	}{
		{"valid", process.Command{Binary: "echo", Dir: dir, Env: []string{"A=1"}}, ""},
		{"empty binary", process.Command{}, "binary"},
		{"nul in arg", process.Command{Binary: "echo", Args: []string{"a\x00"}}, "args[0]"},
		{"bad env", process.Command{Binary: "echo", Env: []string{"=x"}}, "env[0]"},
		{"negative grace", process.Command{Binary: "echo", GracePeriod: -time.Second}, "grace_period"},
		{"missing dir is left to launch", process.Command{Binary: "echo", Dir: dir + "/missing"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected %q in %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestConfig(t *testing.T) {
	var cfg process.Config
	cfg.ApplyDefaults()
	if cfg.GracePeriod != process.DefaultGracePeriod || cfg.MaxLineBytes != process.DefaultMaxLineBytes {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	cfg.Timeout = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative timeout")
	}
}

func TestTerminationSuccess(t *testing.T) {
	tests := []struct {
		term process.Termination
		want bool
	}{
		{process.Termination{ExitCode: 0}, true},
		{process.Termination{ExitCode: 1}, false},
		{process.Termination{ExitCode: -1, Signal: "SIGKILL"}, false},
	}
	for _, tt := range tests {
		if got := tt.term.Success(); got != tt.want {
			t.Errorf("%+v.Success() = %v, want %v", tt.term, got, tt.want)
		}
	}
}
