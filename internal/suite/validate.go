package suite

import (
	"fmt"
	"go/token"
	"strings"
)

// reservedParam is the name every generated unit uses for its *testing.T.
const reservedParam = "t"

// Validate checks the structural rules of a suite: a valid name, well-formed
// callables, unique test and parameter names, and parameter counts that match
// the setup result arity. The first violation is returned.
func Validate(s *Suite) error {
	if s.Name == "" {
		return errorf(ErrGrammar, s.Pos, "missing suite name; declare it with \"- name: <identifier>\"")
	}
	if !isName(s.Name) {
		return errorf(ErrGrammar, s.Pos, "suite name %q is not a valid identifier", s.Name)
	}

	if s.Setup != nil {
		if !isCallable(s.Setup.Callable.Name) {
			return errorf(ErrGrammar, s.Setup.Callable.Pos, "setup %q is not a function name", s.Setup.Callable.Name)
		}
		if len(s.Setup.ResultTypes) == 0 {
			return errorf(ErrGrammar, s.Setup.Callable.Pos, "setup %s declares no result types", s.Setup.Callable.Name)
		}
	}
	if s.Teardown != nil && !isCallable(s.Teardown.Name) {
		return errorf(ErrGrammar, s.Teardown.Pos, "teardown %q is not a function name", s.Teardown.Name)
	}

	seen := make(map[string]token.Position, len(s.Tests))
	for _, t := range s.Tests {
		if !isName(t.Name) {
			return errorf(ErrGrammar, t.Pos, "test name %q is not a valid identifier", t.Name)
		}
		if prev, ok := seen[t.Name]; ok {
			return &Error{
				Kind: ErrDuplicate,
				Pos:  t.Pos,
				Prev: prev,
				Msg:  fmt.Sprintf("test %s is already declared at %s", t.Name, prev),
			}
		}
		seen[t.Name] = t.Pos

		if err := validateParams(s, t); err != nil {
			return err
		}
	}
	return nil
}

func validateParams(s *Suite, t Test) error {
	params := make(map[string]token.Position, len(t.Params))
	for _, p := range t.Params {
		if !token.IsIdentifier(p.Name) {
			return errorf(ErrGrammar, p.Pos, "parameter %q of test %s is not a valid identifier", p.Name, t.Name)
		}
		if p.Name == reservedParam {
			return errorf(ErrGrammar, p.Pos, "parameter name %q in test %s is reserved for the *testing.T of the generated test", p.Name, t.Name)
		}
		if p.Name == "_" {
			continue
		}
		if callable, ok := shadowed(s, p.Name); ok {
			return errorf(ErrGrammar, p.Pos, "parameter %s of test %s shadows %s", p.Name, t.Name, callable)
		}
		if prev, ok := params[p.Name]; ok {
			return &Error{
				Kind: ErrDuplicate,
				Pos:  p.Pos,
				Prev: prev,
				Msg:  fmt.Sprintf("parameter %s of test %s is already declared at %s", p.Name, t.Name, prev),
			}
		}
		params[p.Name] = p.Pos
	}

	if t.Bare() {
		return nil
	}
	if s.Setup == nil {
		return errorf(ErrArity, t.Pos, "test %s declares %d %s, but the suite has no setup (0 values)",
			t.Name, len(t.Params), plural(len(t.Params), "parameter"))
	}
	if want := s.Arity(); len(t.Params) != want {
		return errorf(ErrArity, t.Pos, "test %s declares %d %s, but setup %s returns %d %s",
			t.Name, len(t.Params), plural(len(t.Params), "parameter"),
			s.Setup.Callable.Name, want, plural(want, "value"))
	}
	return nil
}

// shadowed reports whether a local named name would hide the setup or
// teardown callable (or its package), or a name used by a setup result type,
// inside a generated test.
func shadowed(s *Suite, name string) (string, bool) {
	var callables []string
	if s.Setup != nil {
		callables = append(callables, s.Setup.Callable.Name)
	}
	if s.Teardown != nil {
		callables = append(callables, s.Teardown.Name)
	}
	for _, c := range callables {
		if strings.SplitN(c, ".", 2)[0] == name {
			return c, true
		}
	}

	if s.Setup == nil {
		return "", false
	}
	for _, rt := range s.Setup.ResultTypes {
		for _, used := range typeNames(rt.Text) {
			if used == name {
				return fmt.Sprintf("%s in result type %s of setup %s", name, rt.Text, s.Setup.Callable.Name), true
			}
		}
	}
	return "", false
}

func isName(name string) bool {
	return name != "_" && token.IsIdentifier(name)
}

func isCallable(name string) bool {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return false
	}
	for _, part := range parts {
		if !isName(part) {
			return false
		}
	}
	return true
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
