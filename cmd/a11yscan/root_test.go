package main

import (
	"bytes"
	"strings"
	"testing"
)

// executeCmd runs the root command with args and returns its output.
func executeCmd(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "a11yscan" {
			t.Errorf("expected use 'a11yscan', got %q", cmd.Use)
		}
	})

	t.Run("has descriptions and version", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" || cmd.Version == "" {
			t.Error("expected short, long, and version to be set")
		}
	})

	t.Run("has global flags", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name      string
			shorthand string
			defValue  string
		}{
			{name: "verbose", shorthand: "v", defValue: "false"},
			{name: "log-level", defValue: "warn"},
			{name: "log-format", defValue: "text"},
			{name: "config", shorthand: "c", defValue: ""},
		}
		for _, tt := range tests {
			flag := cmd.PersistentFlags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected %s flag", tt.name)
				continue
			}
			if flag.Shorthand != tt.shorthand || flag.DefValue != tt.defValue {
				t.Errorf("%s: got shorthand %q default %q", tt.name, flag.Shorthand, flag.DefValue)
			}
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()

		want := map[string]bool{"run": false, "rules": false, "history": false, "init": false, "version": false}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage || !cmd.SilenceErrors {
			t.Error("expected SilenceUsage and SilenceErrors to be true")
		}
	})
}

// TestVersionCmd tests the version output.
func TestVersionCmd(t *testing.T) {
	t.Parallel()

	stdout, _, err := executeCmd(t, "", "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"a11yscan version", "commit:", "built:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected output to contain %q, got %q", want, stdout)
		}
	}
}
