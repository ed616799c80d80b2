package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goatx/suitegen/internal/check"
	"github.com/goatx/suitegen/internal/suite"
	"github.com/goatx/suitegen/internal/test"
	"github.com/google/go-cmp/cmp"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	// #nosec G304 - path is built from t.TempDir() in test
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestGenerateCommand(t *testing.T) {
	dir := test.CopyFixture(t, "test_mod.suite")

	if _, _, err := execute(t, "generate", filepath.Join(dir, "test_mod.suite")); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	got := readFile(t, filepath.Join(dir, "test_mod_suite_test.go"))
	if diff := cmp.Diff(goldenSuite(t, "test_mod.suite"), got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateCommandYAMLWithCheck(t *testing.T) {
	dir := test.CopyFixture(t, "test_mod.yaml")
	input := filepath.Join(dir, "test_mod.yaml")

	// The second run loads the package including the file written by the first.
	for range 2 {
		if _, _, err := execute(t, "generate", "--check", input); err != nil {
			t.Fatalf("execute failed: %v", err)
		}
	}

	got := readFile(t, filepath.Join(dir, "test_mod_suite_test.go"))
	if diff := cmp.Diff(goldenSuite(t, "test_mod.yaml"), got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateCommandStdout(t *testing.T) {
	dir := test.CopyFixture(t, "test_mod.suite")

	stdout, _, err := execute(t, "generate", "-o", "-", filepath.Join(dir, "test_mod.suite"))
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if diff := cmp.Diff(goldenSuite(t, "test_mod.suite"), stdout); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(dir, "test_mod_suite_test.go")); !os.IsNotExist(err) {
		t.Fatalf("generate -o - wrote a file next to the declaration: %v", err)
	}
}

func TestGenerateCommandOutputAndPackage(t *testing.T) {
	dir := test.CopyFixture(t, "test_mod.suite")
	output := filepath.Join(t.TempDir(), "gen", "custom_test.go")

	_, _, err := execute(t, "generate", "--output", output, "--package", "other", "--parallel",
		filepath.Join(dir, "test_mod.suite"))
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	got := readFile(t, output)
	for _, want := range []string{"package other\n", "t.Parallel()", "func TestTestMod(t *testing.T)"} {
		if !strings.Contains(got, want) {
			t.Errorf("generated code is missing %q:\n%s", want, got)
		}
	}
}

func TestGenerateCommandConfig(t *testing.T) {
	dir := test.CopyFixture(t, "test_mod.suite")
	configPath := filepath.Join(t.TempDir(), "suitegen.yaml")
	writeFile(t, configPath, "package: configured\nparallel: true\noutput_suffix: _gen_test.go\n")

	_, _, err := execute(t, "--config", configPath, "generate", "--parallel=false", filepath.Join(dir, "test_mod.suite"))
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	got := readFile(t, filepath.Join(dir, "test_mod_gen_test.go"))
	if !strings.Contains(got, "package configured\n") {
		t.Errorf("config package was not applied:\n%s", got)
	}
	if strings.Contains(got, "t.Parallel()") {
		t.Errorf("--parallel=false did not override the config:\n%s", got)
	}
}

func TestGenerateCommandVerboseLogs(t *testing.T) {
	dir := test.CopyFixture(t, "test_mod.suite")

	_, stderr, err := execute(t, "-v", "generate", filepath.Join(dir, "test_mod.suite"))
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	for _, want := range []string{"debug suitegen parsed suite", "info suitegen wrote suite"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("log output is missing %q:\n%s", want, stderr)
		}
	}
}

func TestGenerateCommandWritesUnformattedCode(t *testing.T) {
	dir := test.CopyFixture(t)
	input := filepath.Join(dir, "broken.suite")
	writeFile(t, input, "- name: broken\ntest bad {\n\tif {\n\t}\n}\n")

	_, stderr, err := execute(t, "generate", input)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.Contains(stderr, "warn suitegen writing unformatted code") {
		t.Errorf("missing format warning:\n%s", stderr)
	}
	if got := readFile(t, filepath.Join(dir, "broken_suite_test.go")); !strings.Contains(got, "if {") {
		t.Errorf("unformatted body was not written:\n%s", got)
	}
}

func TestGenerateCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		args     func(dir string) []string
		kind     error
		wantErr  string
		notWrote []string
	}{
		{
			name: "duplicate test names",
			files: map[string]string{"dup.suite": `- name: dup
test should_return_true {}
test should_return_true {}
`},
			args:     func(dir string) []string { return []string{filepath.Join(dir, "dup.suite")} },
			kind:     suite.ErrDuplicate,
			wantErr:  "test should_return_true is already declared at",
			notWrote: []string{"dup_suite_test.go"},
		},
		{
			name: "arity mismatch",
			files: map[string]string{"arity.suite": `- name: arity
- setup: setup(int, string)
test too_many(a, b, c) {}
`},
			args:     func(dir string) []string { return []string{filepath.Join(dir, "arity.suite")} },
			kind:     suite.ErrArity,
			wantErr:  "test too_many declares 3 parameters, but setup setup returns 2 values",
			notWrote: []string{"arity_suite_test.go"},
		},
		{
			name: "signature mismatch aborts every suite",
			files: map[string]string{
				"good.suite": "- name: good\n- setup: setup(int, string)\ntest ok(_, _) {}\n",
				"bad.suite":  "- name: bad\n- setup: setup(int, int)\ntest ok(_, _) {}\n",
			},
			args: func(dir string) []string {
				return []string{"--check", filepath.Join(dir, "good.suite"), filepath.Join(dir, "bad.suite")}
			},
			kind:     check.ErrSignature,
			wantErr:  "setup setup result 2 is string, but int is declared",
			notWrote: []string{"good_suite_test.go", "bad_suite_test.go"},
		},
		{
			name: "output with several inputs",
			files: map[string]string{
				"a.suite": "- name: a\n",
				"b.suite": "- name: b\n",
			},
			args: func(dir string) []string {
				return []string{"-o", filepath.Join(dir, "out_test.go"), filepath.Join(dir, "a.suite"), filepath.Join(dir, "b.suite")}
			},
			wantErr:  "--output requires exactly one declaration file",
			notWrote: []string{"out_test.go"},
		},
		{
			name: "same suite in two declarations",
			files: map[string]string{
				"a.suite": "- name: same\ntest first {}\n",
				"b.suite": "- name: same\ntest second {}\n",
			},
			args: func(dir string) []string {
				return []string{filepath.Join(dir, "a.suite"), filepath.Join(dir, "b.suite")}
			},
			kind:     suite.ErrDuplicate,
			wantErr:  "suites same (a.suite) and same (b.suite) both write",
			notWrote: []string{"same_suite_test.go"},
		},
		{
			name: "different test functions in one output file",
			files: map[string]string{
				"upper.suite": "- name: URL\ntest first {}\n",
				"lower.suite": "- name: url\ntest second {}\n",
			},
			args: func(dir string) []string {
				return []string{filepath.Join(dir, "lower.suite"), filepath.Join(dir, "upper.suite")}
			},
			kind:     suite.ErrDuplicate,
			wantErr:  "suites url (lower.suite) and URL (upper.suite) both write",
			notWrote: []string{"url_suite_test.go"},
		},
		{
			name: "same test function in one package",
			files: map[string]string{
				"snake.suite": "- name: x_1\ntest first {}\n",
				"plain.suite": "- name: x1\ntest second {}\n",
			},
			args: func(dir string) []string {
				return []string{filepath.Join(dir, "snake.suite"), filepath.Join(dir, "plain.suite")}
			},
			kind:     suite.ErrDuplicate,
			wantErr:  "suites x_1 (snake.suite) and x1 (plain.suite) both generate TestX1 in",
			notWrote: []string{"x_1_suite_test.go", "x1_suite_test.go"},
		},
		{
			name:    "missing declaration",
			args:    func(dir string) []string { return []string{filepath.Join(dir, "missing.suite")} },
			kind:    os.ErrNotExist,
			wantErr: "failed to read declaration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := test.CopyFixture(t)
			for name, content := range tt.files {
				writeFile(t, filepath.Join(dir, name), content)
			}

			_, _, err := execute(t, append([]string{"generate"}, tt.args(dir)...)...)
			if err == nil {
				t.Fatal("execute returned nil error")
			}
			if tt.kind != nil && !errors.Is(err, tt.kind) {
				t.Fatalf("error = %v, want %v", err, tt.kind)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %q, want it to contain %q", err, tt.wantErr)
			}
			for _, name := range tt.notWrote {
				if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
					t.Errorf("%s was written despite the error", name)
				}
			}
		})
	}
}
