package cmd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/goatx/suitegen/internal/check"
	"github.com/goatx/suitegen/internal/test"
	"github.com/google/go-cmp/cmp"
)

func TestCheckCommand(t *testing.T) {
	dir := test.CopyFixture(t, "test_mod.suite", "test_mod.yaml")
	text := filepath.Join(dir, "test_mod.suite")
	yaml := filepath.Join(dir, "test_mod.yaml")

	stdout, _, err := execute(t, "check", "--check", text, yaml)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := "ok " + text + ": suite test_mod (2 tests)\n" +
		"ok " + yaml + ": suite test_mod (2 tests)\n"
	if diff := cmp.Diff(want, stdout); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckCommandSignature(t *testing.T) {
	dir := test.CopyFixture(t)
	input := filepath.Join(dir, "conn.suite")
	writeFile(t, input, "- name: conn\n- setup: openConn(*Conn)\ntest open(c) {}\n")

	// Without --check only the declaration itself is validated.
	if _, _, err := execute(t, "check", input); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	_, _, err := execute(t, "check", "--check", input)
	if !errors.Is(err, check.ErrSignature) {
		t.Fatalf("error = %v, want ErrSignature", err)
	}
}
