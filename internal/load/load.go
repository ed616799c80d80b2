package load

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"
)

type PackageInfo struct {
	Name      string
	Fset      *token.FileSet
	Syntax    []*ast.File
	Types     *types.Package
	TypesInfo *types.Info
	// Errors holds the load errors of a package whose types could still be
	// built, e.g. a stale generated file that no longer compiles.
	Errors []packages.Error
}

// Load type-checks the package in dir together with its in-package test
// files, so helpers declared in _test.go files are visible.
func Load(dir string) (*PackageInfo, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve package path %s: %w", dir, err)
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo |
			packages.NeedModule | packages.NeedDeps,
		Dir:   abs,
		Tests: true,
	}

	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to load package in %s: %w", abs, err)
	}
	pkg := selectPackage(pkgs)
	if pkg == nil {
		return nil, fmt.Errorf("no packages found in %s", abs)
	}

	if pkg.Types == nil || pkg.TypesInfo == nil || len(pkg.Syntax) == 0 {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("failed to load package in %s: %s", abs, joinErrors(pkg.Errors))
		}
		return nil, fmt.Errorf("failed to obtain type information for package in %s", abs)
	}

	info := &PackageInfo{
		Name:      pkg.Name,
		Fset:      pkg.Fset,
		Syntax:    pkg.Syntax,
		Types:     pkg.Types,
		TypesInfo: pkg.TypesInfo,
		Errors:    pkg.Errors,
	}
	return info, nil
}

// selectPackage prefers the test variant "p [p.test]" over the plain package
// and skips external _test packages and the synthesized test main.
func selectPackage(pkgs []*packages.Package) *packages.Package {
	var plain *packages.Package
	for _, pkg := range pkgs {
		switch {
		case strings.HasSuffix(pkg.Name, "_test"), strings.HasSuffix(pkg.ID, ".test"):
		case strings.HasSuffix(pkg.ID, ".test]"):
			return pkg
		case plain == nil:
			plain = pkg
		}
	}
	return plain
}

func joinErrors(errs []packages.Error) string {
	var b strings.Builder
	for i, pkgErr := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(pkgErr.Error())
	}
	return b.String()
}
