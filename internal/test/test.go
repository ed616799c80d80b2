package test

import (
	"go/format"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fixtureFiles make up the example.com/fixture module under testdata.
var fixtureFiles = []string{"go.mod", "fixture.go", "fixture_test.go"}

func FixtureDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime.Caller failed")
	}
	return filepath.Join(filepath.Dir(filename), "..", "..", "testdata")
}

func ReadGolden(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(FixtureDir(t), name)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}
	return string(b)
}

// CopyFixture copies the fixture module, plus any extra testdata files, into
// a fresh temporary directory and returns it.
func CopyFixture(t *testing.T, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range append(append([]string(nil), fixtureFiles...), extra...) {
		content := ReadGolden(t, name)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("failed to copy fixture %s: %v", name, err)
		}
	}
	return dir
}

// Gofmt formats Go source so expectations do not depend on hand alignment.
func Gofmt(t *testing.T, src string) string {
	t.Helper()
	out, err := format.Source([]byte(src))
	if err != nil {
		t.Fatalf("failed to format expected source: %v\n%s", err, src)
	}
	return string(out)
}
