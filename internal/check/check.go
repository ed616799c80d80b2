// Package check verifies suite declarations against the type-checked package
// the generated tests will be compiled into.
package check

import (
	"errors"
	"fmt"
	"go/token"
	"go/types"
	"strings"

	"github.com/goatx/suitegen/internal/load"
	"github.com/goatx/suitegen/internal/suite"
)

// ErrSignature reports a setup or teardown callable whose signature does not
// fit the declaration.
var ErrSignature = errors.New("signature mismatch")

// Suite checks that the setup of s resolves to a function without parameters
// returning exactly the declared result types, and that the teardown resolves
// to a function without parameters. Teardown results are ignored.
func Suite(pkg *load.PackageInfo, s *suite.Suite) error {
	c := &checker{pkg: pkg}

	if s.Setup != nil {
		sig, obj, err := c.signature("setup", s.Setup.Callable)
		if err != nil {
			return err
		}
		if err := c.noParams("setup", s.Setup.Callable, sig, obj); err != nil {
			return err
		}
		if err := c.results(s.Setup, sig, obj); err != nil {
			return err
		}
	}

	if s.Teardown != nil {
		sig, obj, err := c.signature("teardown", *s.Teardown)
		if err != nil {
			return err
		}
		if err := c.noParams("teardown", *s.Teardown, sig, obj); err != nil {
			return err
		}
	}
	return nil
}

type checker struct {
	pkg *load.PackageInfo
}

func errorf(pos token.Position, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if pos.IsValid() {
		return fmt.Errorf("%s: %w: %s", pos, ErrSignature, msg)
	}
	return fmt.Errorf("%w: %s", ErrSignature, msg)
}

// qualifier prints other packages by name, matching how declarations spell them.
func (c *checker) qualifier(p *types.Package) string {
	if p == c.pkg.Types {
		return ""
	}
	return p.Name()
}

func (c *checker) declared(obj types.Object) string {
	return c.pkg.Fset.Position(obj.Pos()).String()
}

func (c *checker) signature(role string, callable suite.Callable) (*types.Signature, types.Object, error) {
	obj, err := c.lookup(callable)
	if err != nil {
		return nil, nil, errorf(callable.Pos, "%s %s: %v", role, callable.Name, err)
	}
	if _, isType := obj.(*types.TypeName); !isType {
		if sig, ok := obj.Type().Underlying().(*types.Signature); ok {
			return sig, obj, nil
		}
	}
	return nil, nil, errorf(callable.Pos, "%s %s is not a function (declared at %s)", role, callable.Name, c.declared(obj))
}

// lookup resolves name or pkg.Name. A qualifier may be an imported package or
// a package-level variable whose method is called.
func (c *checker) lookup(callable suite.Callable) (types.Object, error) {
	scope := c.pkg.Types.Scope()
	qual, name, qualified := strings.Cut(callable.Name, ".")
	if !qualified {
		if obj := scope.Lookup(qual); obj != nil {
			return obj, nil
		}
		return nil, fmt.Errorf("undefined in package %s", c.pkg.Name)
	}

	if obj := scope.Lookup(qual); obj != nil {
		if _, isType := obj.(*types.TypeName); isType {
			return nil, fmt.Errorf("%s is a type, not a value", qual)
		}
		m, _, _ := types.LookupFieldOrMethod(obj.Type(), true, c.pkg.Types, name)
		if m == nil {
			return nil, fmt.Errorf("%s has no field or method %s", qual, name)
		}
		return m, nil
	}

	imported := c.imported(qual)
	if imported == nil {
		return nil, fmt.Errorf("package %s is not imported by package %s", qual, c.pkg.Name)
	}
	obj := imported.Scope().Lookup(name)
	if obj == nil || !obj.Exported() {
		return nil, fmt.Errorf("undefined in package %s", imported.Path())
	}
	return obj, nil
}

// imported finds the package a file of the target package refers to as name.
func (c *checker) imported(name string) *types.Package {
	for _, file := range c.pkg.Syntax {
		scope := c.pkg.TypesInfo.Scopes[file]
		if scope == nil {
			continue
		}
		if pn, ok := scope.Lookup(name).(*types.PkgName); ok {
			return pn.Imported()
		}
	}
	for _, p := range c.pkg.Types.Imports() {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func (c *checker) noParams(role string, callable suite.Callable, sig *types.Signature, obj types.Object) error {
	if sig.Params().Len() == 0 {
		return nil
	}
	return errorf(callable.Pos, "%s %s must take no arguments, but has signature %s (declared at %s)",
		role, callable.Name, types.TypeString(sig, c.qualifier), c.declared(obj))
}

func (c *checker) results(setup *suite.Setup, sig *types.Signature, obj types.Object) error {
	results := sig.Results()
	if results.Len() != len(setup.ResultTypes) {
		return errorf(setup.Callable.Pos, "setup %s returns %d value(s) %s, but %d result type(s) are declared (declared at %s)",
			setup.Callable.Name, results.Len(), types.TypeString(results, c.qualifier), len(setup.ResultTypes), c.declared(obj))
	}
	for i, want := range setup.ResultTypes {
		got := results.At(i).Type()
		if !c.matches(want, got) {
			return errorf(want.Pos, "setup %s result %d is %s, but %s is declared",
				setup.Callable.Name, i+1, types.TypeString(got, c.qualifier), want.Text)
		}
	}
	return nil
}

// matches evaluates the declared type in the scope of each file of the
// package, since imports are file scoped. Declarations naming a package no
// file imports are compared by their printed form.
func (c *checker) matches(want suite.TypeExpr, got types.Type) bool {
	for _, file := range c.pkg.Syntax {
		tv, err := types.Eval(c.pkg.Fset, c.pkg.Types, file.Package, want.Text)
		if err != nil || !tv.IsType() {
			continue
		}
		return types.Identical(tv.Type, got)
	}
	return types.TypeString(got, c.qualifier) == want.Text
}
