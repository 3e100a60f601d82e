package binding

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	routequery "github.com/goliatone/go-routequery"
)

// Definition is the on-disk description of a set of query fields.
//
//	path: /products
//	fields:
//	  - name: page
//	    default: 1
//	    from_raw: "raw == nil ? 1 : int(raw)"
//	    to_raw: "string(value)"
//	  - name: tag
//	    list: true
//	    mode: push
type Definition struct {
	Path        string            `yaml:"path,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Fields      []FieldDefinition `yaml:"fields"`
}

// FieldDefinition declares one synchronized field.
type FieldDefinition struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Default     any    `yaml:"default,omitempty"`
	Mode        string `yaml:"mode,omitempty"`
	Engine      string `yaml:"engine,omitempty"`
	FromRaw     string `yaml:"from_raw,omitempty"`
	ToRaw       string `yaml:"to_raw,omitempty"`
	List        bool   `yaml:"list,omitempty"`
	Required    bool   `yaml:"required,omitempty"`
}

// Validate checks names, modes and engines.
func (d Definition) Validate() error {
	if len(d.Fields) == 0 {
		return fmt.Errorf("binding: definition declares no fields")
	}
	seen := make(map[string]struct{}, len(d.Fields))
	for i, field := range d.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return fmt.Errorf("binding: field %d: %w", i, routequery.ErrNameRequired)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("binding: duplicate field %q", name)
		}
		seen[name] = struct{}{}
		if _, err := routequery.ParseMode(field.Mode); err != nil {
			return fmt.Errorf("binding: field %q: %w", name, err)
		}
		switch strings.ToLower(strings.TrimSpace(field.Engine)) {
		case "", "expr", "cel", "js":
		default:
			return fmt.Errorf("binding: field %q: unknown engine %q", name, field.Engine)
		}
	}
	return nil
}

// Normalized trims names and lower-cases engines and modes.
func (d Definition) Normalized() Definition {
	out := d
	out.Fields = make([]FieldDefinition, len(d.Fields))
	for i, field := range d.Fields {
		field.Name = strings.TrimSpace(field.Name)
		field.Engine = strings.ToLower(strings.TrimSpace(field.Engine))
		field.Mode = strings.ToLower(strings.TrimSpace(field.Mode))
		out.Fields[i] = field
	}
	return out
}

// ParseDefinitionYAML decodes and validates a definition payload.
func ParseDefinitionYAML(data []byte) (Definition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Definition{}, fmt.Errorf("binding: definition payload is empty")
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("binding: decode definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def.Normalized(), nil
}

// LoadDefinitionFile reads a YAML definition from disk.
func LoadDefinitionFile(path string) (Definition, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Definition{}, fmt.Errorf("binding: read %s: %w", path, err)
	}
	def, err := ParseDefinitionYAML(data)
	if err != nil {
		return Definition{}, fmt.Errorf("binding: %s: %w", path, err)
	}
	return def, nil
}
