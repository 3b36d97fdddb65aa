// Package validation scores extracted metadata against declarative per-type schemas.
package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/kirillkom/fincadocs/internal/core/domain"
)

type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeDate    FieldType = "date"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

type FieldDef struct {
	Name      string    `yaml:"name" json:"name"`
	Type      FieldType `yaml:"type" json:"type"`
	Required  bool      `yaml:"required" json:"required"`
	Validator string    `yaml:"validator" json:"validator,omitempty"`
	Enum      []string  `yaml:"enum" json:"enum,omitempty"`
	MinLength int       `yaml:"min_length" json:"min_length,omitempty"`
	MaxLength int       `yaml:"max_length" json:"max_length,omitempty"`
	MinItems  int       `yaml:"min_items" json:"min_items,omitempty"`
	MaxItems  int       `yaml:"max_items" json:"max_items,omitempty"`
	ItemType  FieldType `yaml:"item_type" json:"item_type,omitempty"`
}

type RuleKind string

const (
	RuleDateOrder    RuleKind = "date_order"
	RuleCountMatches RuleKind = "count_matches"
	RuleMinLength    RuleKind = "min_length"
	RuleSumMatches   RuleKind = "sum_matches"
)

// RuleDef is a cross-field check. Fields order matters per kind:
// date_order [start, end], count_matches [count, array], min_length [field],
// sum_matches [part..., total].
type RuleDef struct {
	Name      string   `yaml:"name" json:"name"`
	Kind      RuleKind `yaml:"kind" json:"kind"`
	Fields    []string `yaml:"fields" json:"fields"`
	Min       int      `yaml:"min" json:"min,omitempty"`
	Tolerance float64  `yaml:"tolerance" json:"tolerance,omitempty"`
}

type Schema struct {
	DocumentType domain.DocumentType `yaml:"document_type" json:"document_type"`
	Version      int                 `yaml:"version" json:"version"`
	Description  string              `yaml:"description" json:"description,omitempty"`
	Fields       []FieldDef          `yaml:"fields" json:"fields"`
	Rules        []RuleDef           `yaml:"rules" json:"rules,omitempty"`
}

func (s *Schema) RequiredFields() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

//go:embed schemas/*.yaml schemas/definition.schema.json
var embedded embed.FS

const metaSchemaFile = "definition.schema.json"

// Registry holds the loaded schema of every document type. It is read-only after load.
type Registry struct {
	schemas map[domain.DocumentType]*Schema
}

// LoadRegistry loads the schema definitions compiled into the binary.
func LoadRegistry() (*Registry, error) {
	return LoadRegistryFS(embedded, "schemas")
}

// LoadRegistryFS loads every *.yaml definition under dir and checks it against the definition meta-schema.
func LoadRegistryFS(fsys fs.FS, dir string) (*Registry, error) {
	meta, err := compileMetaSchema()
	if err != nil {
		return nil, err
	}

	names, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list schema definitions: %w", err)
	}
	sort.Strings(names)

	reg := &Registry{schemas: make(map[domain.DocumentType]*Schema, len(names))}
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		schema, err := parseDefinition(meta, raw)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", path.Base(name), err)
		}
		if _, dup := reg.schemas[schema.DocumentType]; dup {
			return nil, fmt.Errorf("schema %s: duplicate definition for %s", path.Base(name), schema.DocumentType)
		}
		reg.schemas[schema.DocumentType] = schema
	}

	for _, t := range domain.DocumentTypes() {
		if _, ok := reg.schemas[t]; !ok {
			return nil, fmt.Errorf("missing schema definition for %s", t)
		}
	}
	return reg, nil
}

func compileMetaSchema() (*jsonschema.Schema, error) {
	raw, err := embedded.ReadFile("schemas/" + metaSchemaFile)
	if err != nil {
		return nil, fmt.Errorf("read meta schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(metaSchemaFile, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add meta schema: %w", err)
	}
	schema, err := compiler.Compile(metaSchemaFile)
	if err != nil {
		return nil, fmt.Errorf("compile meta schema: %w", err)
	}
	return schema, nil
}

func parseDefinition(meta *jsonschema.Schema, raw []byte) (*Schema, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert to json: %w", err)
	}
	var generic any
	if err := json.Unmarshal(asJSON, &generic); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if err := meta.Validate(generic); err != nil {
		return nil, fmt.Errorf("definition does not match meta schema: %w", err)
	}

	var schema Schema
	if err := yaml.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}
	if err := schema.check(); err != nil {
		return nil, err
	}
	return &schema, nil
}

// check covers what the meta schema cannot: unique names and rule references.
func (s *Schema) check() error {
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		if f.Validator != "" {
			if _, ok := namedValidators[f.Validator]; !ok {
				return fmt.Errorf("field %q: unknown validator %q", f.Name, f.Validator)
			}
		}
	}
	for _, r := range s.Rules {
		for _, name := range r.Fields {
			if _, ok := seen[name]; !ok {
				return fmt.Errorf("rule %q references unknown field %q", r.Name, name)
			}
		}
		if err := r.checkArity(); err != nil {
			return err
		}
	}
	return nil
}

func (r RuleDef) checkArity() error {
	want := map[RuleKind]int{RuleDateOrder: 2, RuleCountMatches: 2, RuleMinLength: 1}
	if n, ok := want[r.Kind]; ok && len(r.Fields) != n {
		return fmt.Errorf("rule %q: %s takes %d fields, got %d", r.Name, r.Kind, n, len(r.Fields))
	}
	if r.Kind == RuleSumMatches && len(r.Fields) < 3 {
		return fmt.Errorf("rule %q: sum_matches needs at least two parts and a total", r.Name)
	}
	return nil
}

// Schema returns the definition for t.
func (r *Registry) Schema(t domain.DocumentType) (*Schema, error) {
	s, ok := r.schemas[t]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "lookup schema", fmt.Errorf("no schema for %q", t))
	}
	return s, nil
}

// Types lists the loaded document types in canonical order.
func (r *Registry) Types() []domain.DocumentType {
	out := make([]domain.DocumentType, 0, len(r.schemas))
	for _, t := range domain.DocumentTypes() {
		if _, ok := r.schemas[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Describe renders a one-line summary per schema, used by the CLI.
func (r *Registry) Describe() []string {
	out := make([]string, 0, len(r.schemas))
	for _, t := range r.Types() {
		s := r.schemas[t]
		out = append(out, fmt.Sprintf("%s v%d: %d fields (%s required), %d rules",
			t, s.Version, len(s.Fields), strings.Join(s.RequiredFields(), ", "), len(s.Rules)))
	}
	return out
}
