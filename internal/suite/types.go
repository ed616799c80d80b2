// Package suite holds the test suite declaration model and its parsers.
package suite

import "go/token"

// Suite is a validated test suite declaration.
// Tests keep their declaration order, which is also the emission order.
type Suite struct {
	Name     string
	Setup    *Setup
	Teardown *Callable
	Tests    []Test
	Pos      token.Position
}

// Setup describes the callable that produces the values bound by each test.
type Setup struct {
	Callable    Callable
	ResultTypes []TypeExpr
}

// Callable is a plain or package-qualified function name, e.g. "setup" or "fixtures.Setup".
type Callable struct {
	Name string
	Pos  token.Position
}

// TypeExpr is a normalized Go type expression.
type TypeExpr struct {
	Text string
	Pos  token.Position
}

// Test is a single test case. Body holds the source between the braces, verbatim.
type Test struct {
	Name    string
	Params  []Param
	Body    string
	Pos     token.Position
	BodyPos token.Position
}

type Param struct {
	Name string
	Pos  token.Position
}

// Bare reports whether the test binds nothing from setup.
func (t Test) Bare() bool {
	return len(t.Params) == 0
}

// ParamNames returns the parameter names in declaration order.
func (t Test) ParamNames() []string {
	names := make([]string, len(t.Params))
	for i, p := range t.Params {
		names[i] = p.Name
	}
	return names
}

// Arity is the number of values setup returns, or zero without setup.
func (s *Suite) Arity() int {
	if s.Setup == nil {
		return 0
	}
	return len(s.Setup.ResultTypes)
}
