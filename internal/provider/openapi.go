package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

const (
	parameterRefPrefix = "#/components/parameters/"
	schemaRefPrefix    = "#/components/schemas/"

	// bounds chains of components referring to components
	maxRefHops = 8
)

// ParseOpenAPI decodes a YAML or JSON OpenAPI document without resolving
// $ref values. A dangling reference only affects the parameter that uses
// it, never the whole document.
func ParseOpenAPI(data []byte) (*openapi3.T, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeOpenAPI, err)
	}
	if _, ok := tree.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: document is not a mapping", ErrDecodeOpenAPI)
	}

	raw, err := json.Marshal(stringKeys(tree))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeOpenAPI, err)
	}
	doc := &openapi3.T{}
	if err := doc.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeOpenAPI, err)
	}
	return doc, nil
}

// stringKeys rewrites mappings with non-string keys, such as unquoted
// response codes, so the tree can be encoded as JSON.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = stringKeys(child)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[fmt.Sprint(k)] = stringKeys(child)
		}
		return out
	case []any:
		for i, child := range t {
			t[i] = stringKeys(child)
		}
		return t
	default:
		return v
	}
}

// resolveParameter follows local component references. It returns nil when
// the reference points nowhere.
func resolveParameter(doc *openapi3.T, ref *openapi3.ParameterRef) *openapi3.Parameter {
	for range maxRefHops {
		if ref == nil {
			return nil
		}
		if ref.Value != nil {
			return ref.Value
		}
		name, ok := strings.CutPrefix(ref.Ref, parameterRefPrefix)
		if !ok || doc == nil || doc.Components == nil {
			return nil
		}
		ref = doc.Components.Parameters[name]
	}
	return nil
}

func resolveSchema(doc *openapi3.T, ref *openapi3.SchemaRef) *openapi3.Schema {
	for range maxRefHops {
		if ref == nil {
			return nil
		}
		if ref.Value != nil {
			return ref.Value
		}
		name, ok := strings.CutPrefix(ref.Ref, schemaRefPrefix)
		if !ok || doc == nil || doc.Components == nil {
			return nil
		}
		ref = doc.Components.Schemas[name]
	}
	return nil
}
