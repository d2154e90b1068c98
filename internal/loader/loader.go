// Package loader wraps go/packages to load a Go package with full type
// information and an index of its function declarations.
package loader

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/packages"
)

// LoadMode is the minimum set of flags needed to list members with
// their source positions.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo

// Result holds the loaded package along with convenience accessors.
type Result struct {
	// Pkg is the loaded package.
	Pkg *packages.Package

	// Fset is the shared file set for position information.
	Fset *token.FileSet

	// Decls maps every function and method declared in the package to
	// its declaration.
	Decls map[*types.Func]*ast.FuncDecl
}

// Decl returns the declaration of fn, following instantiations back to
// the generic origin.
func (r *Result) Decl(fn *types.Func) *ast.FuncDecl {
	if fn == nil {
		return nil
	}
	return r.Decls[fn.Origin()]
}

// Load loads a Go package at the given import path or file pattern.
// It returns the loaded package result or an error if loading or
// type-checking fails.
func Load(pattern string) (*Result, error) {
	return load(&packages.Config{Mode: LoadMode}, pattern)
}

// LoadDir loads the package in dir, which may sit outside the module
// graph of the caller, as testdata fixtures do.
func LoadDir(dir string) (*Result, error) {
	return load(&packages.Config{Mode: LoadMode, Dir: dir}, ".")
}

func load(cfg *packages.Config, pattern string) (*Result, error) {

	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("loading package %q: %w", pattern, err)
	}

	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found for pattern %q", pattern)
	}

	pkg := pkgs[0]

	// Check for package-level errors (syntax, type errors, etc.).
	var errs []string
	for _, e := range pkg.Errors {
		errs = append(errs, e.Error())
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package %q has errors:\n  %s",
			pattern, strings.Join(errs, "\n  "))
	}

	return &Result{
		Pkg:   pkg,
		Fset:  pkg.Fset,
		Decls: indexDecls(pkg),
	}, nil
}

func indexDecls(pkg *packages.Package) map[*types.Func]*ast.FuncDecl {
	decls := make(map[*types.Func]*ast.FuncDecl)
	for _, f := range pkg.Syntax {
		for _, d := range f.Decls {
			fd, ok := d.(*ast.FuncDecl)
			if !ok {
				continue
			}
			if fn, ok := pkg.TypesInfo.Defs[fd.Name].(*types.Func); ok {
				decls[fn] = fd
			}
		}
	}
	return decls
}
