package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// kind is the decoded type of a top-level configuration value.
type kind int

const (
	kindNull kind = iota
	kindString
	kindNumber
	kindBool
	kindCompound
)

// scalar is one top-level value as written in the file.
type scalar struct {
	kind kind
	// text is set for strings and numbers (literal form).
	text string
	// flag is set for booleans.
	flag bool
}

// document maps top-level keys to their decoded values.
type document map[string]scalar

// decode picks a decoder by file extension. Everything that is not HCL goes
// through the YAML decoder, which also accepts JSON.
func decode(path string, contents []byte) (document, error) {
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return decodeHCL(path, contents)
	}

	return decodeYAML(contents)
}

func decodeYAML(contents []byte) (document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(contents, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	doc := make(document)

	// Empty file.
	if root.Kind == 0 || len(root.Content) == 0 {
		return doc, nil
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping, got line %d", ErrParse, top.Line)
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		doc[top.Content[i].Value] = yamlScalar(top.Content[i+1])
	}

	return doc, nil
}

func yamlScalar(node *yaml.Node) scalar {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}

	if node.Kind != yaml.ScalarNode {
		return scalar{kind: kindCompound}
	}

	switch node.ShortTag() {
	case "!!null":
		return scalar{kind: kindNull}
	case "!!bool":
		var flag bool
		if err := node.Decode(&flag); err != nil {
			return scalar{kind: kindCompound}
		}

		return scalar{kind: kindBool, flag: flag}
	case "!!int", "!!float":
		return scalar{kind: kindNumber, text: node.Value}
	case "!!str":
		return scalar{kind: kindString, text: node.Value}
	default:
		// Timestamps, binary and custom tags.
		return scalar{kind: kindCompound}
	}
}

func decodeHCL(path string, contents []byte) (document, error) {
	file, diags := hclparse.NewParser().ParseHCL(contents, filepath.Base(path))
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrParse, diags)
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrParse, diags)
	}

	doc := make(document, len(attrs))

	for name, attr := range attrs {
		value, valueDiags := attr.Expr.Value(nil)
		if valueDiags.HasErrors() {
			return nil, fmt.Errorf("%w: %w", ErrParse, valueDiags)
		}

		entry := ctyScalar(value)
		if entry.kind == kindNumber {
			// Keep the number as written: 1.10 must not become 1.1.
			entry.text = sourceText(contents, attr.Expr.Range(), entry.text)
		}

		doc[name] = entry
	}

	return doc, nil
}

func ctyScalar(value cty.Value) scalar {
	if value.IsNull() {
		return scalar{kind: kindNull}
	}

	if !value.IsWhollyKnown() {
		return scalar{kind: kindCompound}
	}

	switch value.Type() {
	case cty.String:
		return scalar{kind: kindString, text: value.AsString()}
	case cty.Number:
		return scalar{kind: kindNumber, text: value.AsBigFloat().Text('f', -1)}
	case cty.Bool:
		return scalar{kind: kindBool, flag: value.True()}
	default:
		return scalar{kind: kindCompound}
	}
}

// sourceText returns the bytes rng covers in contents, or fallback when the
// range does not fit.
func sourceText(contents []byte, rng hcl.Range, fallback string) string {
	start, end := rng.Start.Byte, rng.End.Byte
	if start < 0 || end > len(contents) || start >= end {
		return fallback
	}

	return strings.TrimSpace(string(contents[start:end]))
}
