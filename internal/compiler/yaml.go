package compiler

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/stricttuple/internal/ir"
)

// ParseYAML compiles a YAML (or JSON) schema file into a SchemaFile.
// Declaration order is taken from the document, not from map iteration.
func ParseYAML(path string, data []byte) (*ir.SchemaFile, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &CompileError{Field: "yaml", Message: err.Error(), File: path}
	}

	p := yamlParser{path: path}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, p.errorf(&doc, "record", "empty schema file")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, p.errorf(root, "record", "schema file must be a mapping")
	}

	sf := &ir.SchemaFile{Path: path}
	found := false
	for _, section := range []string{sectionRecord, sectionTyped} {
		sv := mappingValue(root, section)
		if sv == nil {
			continue
		}
		found = true

		defs, err := p.section(sv, section == sectionTyped)
		if err != nil {
			return nil, err
		}
		sf.Records = append(sf.Records, defs...)
	}

	if !found {
		return nil, p.errorf(root, "record", `no "record" or "typed" declarations found`)
	}
	return sf, nil
}

type yamlParser struct {
	path string
}

func (p yamlParser) errorf(n *yaml.Node, field, format string, args ...any) *CompileError {
	return &CompileError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		File:    p.path,
		Line:    n.Line,
	}
}

func (p yamlParser) section(n *yaml.Node, typed bool) ([]ir.RecordDef, error) {
	if n.Kind != yaml.MappingNode {
		return nil, p.errorf(n, "record", "section must map record names to fields")
	}

	var defs []ir.RecordDef
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		def := ir.RecordDef{Name: key.Value, Typed: typed, Line: key.Line}

		switch val.Kind {
		case yaml.MappingNode:
		case yaml.ScalarNode:
			// "Unit: {}" and "Unit:" both declare a record without fields.
			if val.Tag != "!!null" {
				return nil, p.errorf(val, key.Value, "record must be a mapping of fields")
			}
		default:
			return nil, p.errorf(val, key.Value, "record must be a mapping of fields")
		}

		for j := 0; j+1 < len(val.Content); j += 2 {
			fkey, fval := val.Content[j], val.Content[j+1]
			path := key.Value + "." + fkey.Value
			rules, err := p.fieldSpec(path, fval)
			if err != nil {
				return nil, err
			}
			def.Fields = append(def.Fields, ir.FieldDef{Name: fkey.Value, Rules: rules, Line: fkey.Line})
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (p yamlParser) fieldSpec(path string, n *yaml.Node) ([]ir.RuleRef, error) {
	if n.Kind == yaml.SequenceNode {
		refs := make([]ir.RuleRef, 0, len(n.Content))
		for i, entry := range n.Content {
			ref, err := p.ruleEntry(fmt.Sprintf("%s[%d]", path, i), entry)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
		return refs, nil
	}

	ref, err := p.ruleEntry(path, n)
	if err != nil {
		return nil, err
	}
	return []ir.RuleRef{ref}, nil
}

func (p yamlParser) ruleEntry(path string, n *yaml.Node) (ir.RuleRef, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag != "!!str" {
			return ir.RuleRef{}, p.errorf(n, path, "rule name must be a string, got %q", n.Value)
		}
		return ir.RuleRef{Name: n.Value}, nil

	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return ir.RuleRef{}, p.errorf(n, path, "rule mapping must have exactly one key, got %d", len(n.Content)/2)
		}
		args, err := p.args(path, n.Content[1])
		if err != nil {
			return ir.RuleRef{}, err
		}
		return ir.RuleRef{Name: n.Content[0].Value, Args: args}, nil

	default:
		return ir.RuleRef{}, p.errorf(n, path, "rule must be a name or a {name: args} mapping")
	}
}

// args treats a sequence as positional arguments and anything else as one argument.
func (p yamlParser) args(path string, n *yaml.Node) ([]any, error) {
	var raw any
	if err := n.Decode(&raw); err != nil {
		return nil, p.errorf(n, path, "decoding arguments: %v", err)
	}
	v, err := ir.Normalize(raw)
	if err != nil {
		return nil, p.errorf(n, path, "%v", err)
	}
	if list, ok := v.([]any); ok && n.Kind == yaml.SequenceNode {
		return list, nil
	}
	return []any{v}, nil
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
