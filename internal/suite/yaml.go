package suite

import (
	"fmt"
	"go/token"

	"gopkg.in/yaml.v3"
)

// ParseYAML parses the YAML form of a suite declaration:
//
//	name: test_mod
//	setup:
//	  call: setup
//	  returns: [int, string]
//	teardown: teardown
//	tests:
//	  - name: should_return_true
//	    params: [nbr, myString]
//	    body: |
//	      ...
//
// The document is walked as a yaml.Node tree so that errors carry YAML
// positions. The result goes through the same Validate as the text form.
func ParseYAML(filename string, in []byte) (*Suite, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(in, &doc); err != nil {
		return nil, errorf(ErrGrammar, token.Position{Filename: filename}, "%v", err)
	}
	if len(doc.Content) == 0 {
		return nil, errorf(ErrGrammar, token.Position{Filename: filename, Line: 1, Column: 1}, "empty YAML document")
	}

	d := yamlDecoder{filename: filename}
	s, err := d.suite(doc.Content[0])
	if err != nil {
		return nil, err
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

type yamlDecoder struct {
	filename string
}

func (d yamlDecoder) pos(n *yaml.Node) token.Position {
	return token.Position{Filename: d.filename, Line: n.Line, Column: n.Column}
}

// fields iterates over a mapping node, rejecting repeated and unknown keys.
func (d yamlDecoder) fields(n *yaml.Node, what string, known []string, fn func(key string, val *yaml.Node) error) error {
	if n.Kind != yaml.MappingNode {
		return errorf(ErrGrammar, d.pos(n), "%s must be a mapping", what)
	}
	seen := make(map[string]token.Position)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if !contains(known, key.Value) {
			return errorf(ErrGrammar, d.pos(key), "unknown key %q in %s", key.Value, what)
		}
		if prev, ok := seen[key.Value]; ok {
			return &Error{
				Kind: ErrGrammar,
				Pos:  d.pos(key),
				Prev: prev,
				Msg:  fmt.Sprintf("key %q is already declared at %s", key.Value, prev),
			}
		}
		seen[key.Value] = d.pos(key)
		if err := fn(key.Value, val); err != nil {
			return err
		}
	}
	return nil
}

func (d yamlDecoder) scalar(n *yaml.Node, what string) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", errorf(ErrGrammar, d.pos(n), "%s must be a scalar", what)
	}
	return n.Value, nil
}

// list accepts a sequence of scalars or a single scalar.
func (d yamlDecoder) list(n *yaml.Node, what string) ([]*yaml.Node, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return []*yaml.Node{n}, nil
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, errorf(ErrGrammar, d.pos(item), "%s entries must be scalars", what)
			}
		}
		return n.Content, nil
	}
	return nil, errorf(ErrGrammar, d.pos(n), "%s must be a list", what)
}

func (d yamlDecoder) suite(root *yaml.Node) (*Suite, error) {
	s := &Suite{Pos: d.pos(root)}
	err := d.fields(root, "suite", []string{fieldName, fieldSetup, fieldTeardown, "tests"}, func(key string, val *yaml.Node) error {
		switch key {
		case fieldName:
			name, err := d.scalar(val, "suite name")
			if err != nil {
				return err
			}
			s.Name, s.Pos = name, d.pos(val)
		case fieldSetup:
			setup, err := d.setup(val)
			if err != nil {
				return err
			}
			s.Setup = setup
		case fieldTeardown:
			name, err := d.scalar(val, "teardown")
			if err != nil {
				return err
			}
			s.Teardown = &Callable{Name: name, Pos: d.pos(val)}
		case "tests":
			if val.Kind != yaml.SequenceNode {
				return errorf(ErrGrammar, d.pos(val), "tests must be a list")
			}
			for _, item := range val.Content {
				t, err := d.test(item)
				if err != nil {
					return err
				}
				s.Tests = append(s.Tests, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (d yamlDecoder) setup(n *yaml.Node) (*Setup, error) {
	setup := &Setup{}
	var hasCall bool
	err := d.fields(n, "setup", []string{"call", "returns"}, func(key string, val *yaml.Node) error {
		switch key {
		case "call":
			name, err := d.scalar(val, "setup call")
			if err != nil {
				return err
			}
			setup.Callable = Callable{Name: name, Pos: d.pos(val)}
			hasCall = true
		case "returns":
			items, err := d.list(val, "setup returns")
			if err != nil {
				return err
			}
			for _, item := range items {
				te, err := parseTypeExpr(item.Value, d.pos(item))
				if err != nil {
					return err
				}
				setup.ResultTypes = append(setup.ResultTypes, te)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !hasCall {
		return nil, errorf(ErrGrammar, d.pos(n), "setup is missing the \"call\" key")
	}
	return setup, nil
}

func (d yamlDecoder) test(n *yaml.Node) (Test, error) {
	t := Test{Pos: d.pos(n)}
	var hasBody bool
	err := d.fields(n, "test", []string{fieldName, "params", "body"}, func(key string, val *yaml.Node) error {
		switch key {
		case fieldName:
			name, err := d.scalar(val, "test name")
			if err != nil {
				return err
			}
			t.Name = name
		case "params":
			items, err := d.list(val, "test params")
			if err != nil {
				return err
			}
			for _, item := range items {
				t.Params = append(t.Params, Param{Name: item.Value, Pos: d.pos(item)})
			}
		case "body":
			body, err := d.scalar(val, "test body")
			if err != nil {
				return err
			}
			t.Body = body
			t.BodyPos = d.pos(val)
			if val.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
				t.BodyPos.Line++
				t.BodyPos.Column = 1
			}
			hasBody = true
		}
		return nil
	})
	if err != nil {
		return Test{}, err
	}
	if !hasBody {
		return Test{}, errorf(ErrGrammar, t.Pos, "test %s is missing the \"body\" key", t.Name)
	}
	return t, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
