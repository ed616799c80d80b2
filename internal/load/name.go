package load

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// PackageName infers the package clause for a file generated into dir. It
// reads the package clause of the Go files already in dir, preferring
// non-test names, and falls back to the sanitized directory name.
func PackageName(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve package path %s: %w", dir, err)
	}

	files, err := filepath.Glob(filepath.Join(abs, "*.go"))
	if err != nil {
		return "", fmt.Errorf("failed to list Go files in %s: %w", abs, err)
	}
	sort.Strings(files)

	fset := token.NewFileSet()
	var testName string
	for _, file := range files {
		base := filepath.Base(file)
		if strings.HasPrefix(base, "_") || strings.HasPrefix(base, ".") {
			continue
		}
		f, err := parser.ParseFile(fset, file, nil, parser.PackageClauseOnly)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("failed to read package clause of %s: %w", file, err)
		}
		name := f.Name.Name
		if !strings.HasSuffix(name, "_test") {
			return name, nil
		}
		if testName == "" {
			testName = strings.TrimSuffix(name, "_test")
		}
	}
	if testName != "" {
		return testName, nil
	}

	return sanitize(filepath.Base(abs)), nil
}

// sanitize turns a directory name such as "my-pkg" or "v2.0" into a
// package name.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case b.Len() > 0:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	switch {
	case out == "":
		return "pkg"
	case unicode.IsDigit([]rune(out)[0]):
		return "pkg" + out
	case token.IsKeyword(out):
		return out + "pkg"
	}
	return out
}
