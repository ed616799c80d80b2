// Package codegen turns a validated suite declaration into Go test source.
package codegen

import (
	"errors"
	"fmt"
	"go/token"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/goatx/suitegen/internal/strcase"
	"github.com/goatx/suitegen/internal/suite"
)

// DefaultSuffix is appended to the snake case suite name to form the output file name.
const DefaultSuffix = "_suite_test.go"

// ErrFormat reports generated source that could not be formatted, usually
// because a test body is not valid Go. The unformatted source is still returned.
var ErrFormat = errors.New("failed to format generated code")

// Options configures Generate.
type Options struct {
	// PackageName is the package clause of the generated file.
	PackageName string
	// Parallel marks every generated unit with t.Parallel().
	Parallel bool
	// Source names the declaration in the generated header, e.g. "db.suite".
	Source string
	// Filename is the destination path. It lets import fixing find packages of the enclosing module.
	Filename string
}

// Namespace returns the name of the top-level test function grouping the
// units of s, e.g. "TestTestMod" for suite test_mod.
func Namespace(s *suite.Suite) string {
	return "Test" + strcase.ToPascalCase(s.Name)
}

// OutputName returns the file name for the generated code of s.
func OutputName(s *suite.Suite, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return strcase.ToSnakeCase(s.Name) + suffix
}

// Generate emits one top-level test function named by Namespace holding one
// subtest per declared test, in declaration order. Each subtest calls setup
// itself and defers teardown, so units share no state and teardown runs even
// when the body fails the test.
//
// When the result cannot be formatted, Generate returns the unformatted source
// together with an error wrapping ErrFormat.
func Generate(s *suite.Suite, opts Options) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("suite cannot be nil")
	}
	if !token.IsIdentifier(opts.PackageName) || opts.PackageName == "_" {
		return nil, fmt.Errorf("invalid package name %q", opts.PackageName)
	}

	g := &generator{suite: s, opts: opts}
	src := g.file()

	filename := opts.Filename
	if filename == "" {
		filename = OutputName(s, "")
	}
	formatted, err := imports.Process(filename, src, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return src, fmt.Errorf("%w for suite %s: %v", ErrFormat, s.Name, err)
	}
	return formatted, nil
}

type generator struct {
	suite *suite.Suite
	opts  Options
	buf   strings.Builder
}

func (g *generator) printf(format string, args ...any) {
	fmt.Fprintf(&g.buf, format, args...)
}

func (g *generator) file() []byte {
	if g.opts.Source != "" {
		g.printf("// Code generated by suitegen from %s. DO NOT EDIT.\n\n", g.opts.Source)
	} else {
		g.printf("// Code generated by suitegen. DO NOT EDIT.\n\n")
	}
	g.printf("package %s\n\n", g.opts.PackageName)
	g.printf("import \"testing\"\n\n")

	name := Namespace(g.suite)
	g.printf("// %s runs the tests of suite %s.\n", name, g.suite.Name)
	g.printf("func %s(t *testing.T) {\n", name)
	for i, test := range g.suite.Tests {
		if i > 0 {
			g.printf("\n")
		}
		g.unit(test)
	}
	g.printf("}\n")

	return []byte(g.buf.String())
}

// unit writes one subtest. Wiring follows the test's shape:
//   - with parameters: typed locals assigned from one setup call, then deferred teardown
//   - bare, suite without setup: deferred teardown only
//   - bare, suite with setup: the body alone
func (g *generator) unit(test suite.Test) {
	g.printf("\tt.Run(%q, func(t *testing.T) {\n", test.Name)
	if g.opts.Parallel {
		g.printf("\t\tt.Parallel()\n")
	}

	wired := false
	switch {
	case !test.Bare():
		g.bindings(test)
		g.teardown()
		wired = true
	case g.suite.Setup == nil && g.suite.Teardown != nil:
		g.teardown()
		wired = true
	}

	if body := trimBody(test.Body); body != "" {
		if wired || g.opts.Parallel {
			g.printf("\n")
		}
		g.printf("%s\n", body)
	}
	g.printf("\t})\n")
}

// bindings declares one local per non-blank parameter with the matching
// result type, then assigns all of them from a single setup call.
func (g *generator) bindings(test suite.Test) {
	setup := g.suite.Setup

	var decls []string
	for i, p := range test.Params {
		if p.Name == "_" {
			continue
		}
		decls = append(decls, fmt.Sprintf("%s %s", p.Name, setup.ResultTypes[i].Text))
	}

	switch len(decls) {
	case 0:
	case 1:
		g.printf("\t\tvar %s\n", decls[0])
	default:
		g.printf("\t\tvar (\n")
		for _, d := range decls {
			g.printf("\t\t\t%s\n", d)
		}
		g.printf("\t\t)\n")
	}
	g.printf("\t\t%s = %s()\n", strings.Join(test.ParamNames(), ", "), setup.Callable.Name)
}

func (g *generator) teardown() {
	if g.suite.Teardown == nil {
		return
	}
	g.printf("\t\tdefer %s()\n", g.suite.Teardown.Name)
}

// trimBody drops blank lines around the body. Everything from the first
// token to the last one is kept verbatim.
func trimBody(body string) string {
	body = strings.TrimRight(body, " \t\r\n")
	rest := strings.TrimLeft(body, " \t\r\n")
	if rest == "" {
		return ""
	}
	lead := body[:len(body)-len(rest)]
	if i := strings.LastIndexByte(lead, '\n'); i >= 0 {
		body = body[i+1:]
	}
	return body
}
