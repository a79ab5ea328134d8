// Package schema loads the static tool definition set and validates values
// against its compiled schemas. The set is embedded in the binary, loaded
// once at startup, and read-only afterwards; a malformed set is a fatal
// configuration error because no tool could be served.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed tools.json
var toolsJSON []byte

// Tool is one named, schema-described operation: a human description, a
// compiled input schema for caller arguments, and a compiled output schema
// for the handler result. Defaults holds the input schema's top-level
// property defaults, substituted for absent optional fields before
// validation.
type Tool struct {
	Name        string
	Description string
	RawInput    json.RawMessage
	RawOutput   json.RawMessage
	Input       *jsonschema.Schema
	Output      *jsonschema.Schema
	Defaults    map[string]any
}

// Store is the immutable tool catalog. Safe for unsynchronized concurrent
// reads after Load.
type Store struct {
	tools map[string]Tool
	names []string
}

// Load parses and compiles the embedded definition set.
func Load() (*Store, error) {
	return loadFrom(toolsJSON)
}

func loadFrom(raw []byte) (*Store, error) {
	var doc struct {
		Tools []struct {
			Name         string          `json:"name"`
			Description  string          `json:"description"`
			InputSchema  json.RawMessage `json:"inputSchema"`
			OutputSchema json.RawMessage `json:"outputSchema"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse tool definitions: %w", err)
	}
	if len(doc.Tools) == 0 {
		return nil, fmt.Errorf("tool definition set is empty")
	}

	s := &Store{tools: make(map[string]Tool, len(doc.Tools))}
	for _, t := range doc.Tools {
		if t.Name == "" {
			return nil, fmt.Errorf("tool definition without a name")
		}
		if _, dup := s.tools[t.Name]; dup {
			return nil, fmt.Errorf("duplicate tool name %q", t.Name)
		}
		if len(t.InputSchema) == 0 || len(t.OutputSchema) == 0 {
			return nil, fmt.Errorf("tool %q: missing input or output schema", t.Name)
		}
		input, err := compileRaw(t.Name+".input.json", t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %q: input schema: %w", t.Name, err)
		}
		output, err := compileRaw(t.Name+".output.json", t.OutputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %q: output schema: %w", t.Name, err)
		}
		defaults, err := extractDefaults(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %q: defaults: %w", t.Name, err)
		}
		s.tools[t.Name] = Tool{
			Name:        t.Name,
			Description: t.Description,
			RawInput:    t.InputSchema,
			RawOutput:   t.OutputSchema,
			Input:       input,
			Output:      output,
			Defaults:    defaults,
		}
		s.names = append(s.names, t.Name)
	}
	slices.Sort(s.names)
	return s, nil
}

// Get returns the tool entry for name, or (zero, false) when unknown.
func (s *Store) Get(name string) (Tool, bool) {
	t, ok := s.tools[name]
	return t, ok
}

// Names returns all tool names in sorted order.
func (s *Store) Names() []string {
	return slices.Clone(s.names)
}

// Len returns the number of tools in the catalog.
func (s *Store) Len() int {
	return len(s.tools)
}

// ApplyDefaults returns a copy of args with defaults filled in for keys the
// caller left absent. The input map is never mutated.
func ApplyDefaults(args, defaults map[string]any) map[string]any {
	out := make(map[string]any, len(args)+len(defaults))
	maps.Copy(out, args)
	for k, v := range defaults {
		if _, present := out[k]; !present {
			out[k] = v
		}
	}
	return out
}

// compileRaw compiles one self-contained raw schema. Each schema is added
// as its own resource, so tool schemas cannot reference each other.
func compileRaw(url string, raw json.RawMessage) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

// extractDefaults collects top-level property defaults declared by an input
// schema ("parts" -> ["snippet"]). Nested defaults are not supported; the
// definition set only declares them at the top level.
func extractDefaults(raw json.RawMessage) (map[string]any, error) {
	var node struct {
		Properties map[string]struct {
			Default any `json:"default"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	defaults := make(map[string]any)
	for name, prop := range node.Properties {
		if prop.Default != nil {
			defaults[name] = prop.Default
		}
	}
	return defaults, nil
}
