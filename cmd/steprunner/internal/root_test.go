package internal

import (
	"bytes"
	"testing"
)

func TestExecute(t *testing.T) {
	cmd := NewRootCmd()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRootCmdHasExpectedSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	want := map[string]bool{
		"run":           false,
		"plan":          false,
		"validate":      false,
		"version":       false,
		"__step-worker": false,
	}
	for _, c := range cmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected root command to register %q", name)
		}
	}
}
