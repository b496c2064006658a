package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jcorbin/stacklang/internal/lang"
	"github.com/jcorbin/stacklang/internal/parse"
)

// loadConstants reads a YAML mapping of constant names to values from path.
// Each value may be a scalar, giving a single valued constant, or a sequence
// of scalars, giving a constant that pushes several values in order.
//
//	greeting: "hello"
//	answer: 42
//	verbose: false
//	pair: [1, 2]
func loadConstants(path string) (map[string][]lang.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readConstants(path, f)
}

func readConstants(name string, r io.Reader) (map[string][]lang.Value, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%v: %w", name, err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, constError(name, root, "constants must be a mapping from name to value")
	}

	constants := make(map[string][]lang.Value, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode || !parse.IsIdentifier(key.Value) {
			return nil, constError(name, key, "invalid constant name %q", key.Value)
		}
		if _, dup := constants[key.Value]; dup {
			return nil, constError(name, key, "duplicate constant %q", key.Value)
		}

		var values []lang.Value
		switch val.Kind {
		case yaml.SequenceNode:
			values = make([]lang.Value, 0, len(val.Content))
			for _, elem := range val.Content {
				v, err := constValue(name, elem)
				if err != nil {
					return nil, err
				}
				values = append(values, v)
			}
		default:
			v, err := constValue(name, val)
			if err != nil {
				return nil, err
			}
			values = []lang.Value{v}
		}
		constants[key.Value] = values
	}
	return constants, nil
}

func constValue(name string, node *yaml.Node) (lang.Value, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, constError(name, node, "constant values must be scalars")
	}
	switch node.ShortTag() {
	case "!!null":
		return lang.Null{}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, constError(name, node, "%v", err)
		}
		return lang.Boolean(b), nil
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			return nil, constError(name, node, "%v", err)
		}
		return lang.Integer(n), nil
	case "!!str":
		return lang.String(node.Value), nil
	default:
		return nil, constError(name, node, "unsupported constant value %q of type %v", node.Value, node.ShortTag())
	}
}

func constError(name string, node *yaml.Node, mess string, args ...interface{}) error {
	return fmt.Errorf("%v:%v:%v: %v", name, node.Line, node.Column, fmt.Sprintf(mess, args...))
}
