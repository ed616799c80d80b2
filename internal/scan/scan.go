// Package scan finds suite declarations embedded in Go source files as
//
//	/*suitegen
//	- name: db
//	...
//	*/
//
// block comments, so a suite can live next to the helpers it calls.
package scan

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goatx/suitegen/internal/codegen"
	"github.com/goatx/suitegen/internal/suite"
)

const marker = "/*suitegen"

// Block is one suite declared in a Go file.
type Block struct {
	File  string
	Suite *suite.Suite
}

// Blocks parses every declaration block in the .go files of dir, in file
// name order. Suites must generate distinct test functions because each one
// becomes a top-level function of the same package.
func Blocks(dir string) ([]Block, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.go"))
	if err != nil {
		return nil, fmt.Errorf("failed to list Go files in %s: %w", dir, err)
	}
	sort.Strings(files)

	fset := token.NewFileSet()
	var blocks []Block
	seen := make(map[string]*suite.Suite)
	for _, path := range files {
		fileBlocks, err := fileBlocks(fset, path)
		if err != nil {
			return nil, err
		}
		for _, b := range fileBlocks {
			if err := duplicate(seen, b.Suite); err != nil {
				return nil, err
			}
			blocks = append(blocks, b)
		}
	}
	return blocks, nil
}

// duplicate rejects s when an earlier suite generates the same test function.
// Names such as test_mod and testMod collide this way.
func duplicate(seen map[string]*suite.Suite, s *suite.Suite) error {
	namespace := codegen.Namespace(s)
	prev, ok := seen[namespace]
	if !ok {
		seen[namespace] = s
		return nil
	}
	msg := fmt.Sprintf("suite %s is already declared at %s", s.Name, prev.Pos)
	if prev.Name != s.Name {
		msg = fmt.Sprintf("suite %s generates %s, like suite %s declared at %s", s.Name, namespace, prev.Name, prev.Pos)
	}
	return &suite.Error{
		Kind: suite.ErrDuplicate,
		Pos:  s.Pos,
		Prev: prev.Pos,
		Msg:  msg,
	}
}

func fileBlocks(fset *token.FileSet, path string) ([]Block, error) {
	f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var blocks []Block
	for _, group := range f.Comments {
		for _, c := range group.List {
			src, ok := blockText(c)
			if !ok {
				continue
			}
			start := fset.Position(c.Slash)
			start.Offset += len(c.Text) - len(src) - len("*/")
			start.Line++
			start.Column = 1

			s, err := suite.ParseBlock(start, []byte(src))
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, Block{File: path, Suite: s})
		}
	}
	return blocks, nil
}

// blockText returns the declaration inside c, which starts on the line after
// the marker.
func blockText(c *ast.Comment) (string, bool) {
	rest, ok := strings.CutPrefix(c.Text, marker)
	if !ok {
		return "", false
	}
	rest = strings.TrimPrefix(rest, "\r")
	rest, ok = strings.CutPrefix(rest, "\n")
	if !ok {
		return "", false
	}
	return strings.TrimSuffix(rest, "*/"), true
}
