package schema

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlDoc mirrors the on-disk schema shape. Required-relationship
// predicates cannot round-trip through YAML, so yamlEntity.Required only
// declares unconditional requirements (RelKind, no Predicate). A
// subtype-gated requirement can only be declared in Go, through
// [Builder.Entity] on a schema built with [NewBuilder]; it cannot be added
// to a Schema returned by [Load].
type yamlDoc struct {
	Entities      map[string]yamlEntity       `yaml:"entities"`
	Relationships map[string]yamlRelationship `yaml:"relationships"`
	Aliases       map[string]string           `yaml:"aliases"`
	Contradicts   [][2]string                 `yaml:"contradicts"`
}

type yamlEntity struct {
	Subtypes      []string `yaml:"subtypes"`
	Statuses      []string `yaml:"statuses"`
	DefaultStatus string   `yaml:"default_status"`
	Required      []string `yaml:"required"`
}

type yamlRelationship struct {
	SrcKinds  []string `yaml:"src_kinds"`
	DstKinds  []string `yaml:"dst_kinds"`
	Immutable bool     `yaml:"immutable"`
	Protected bool     `yaml:"protected"`
}

// Load reads a YAML schema document from path, validates it, and returns
// the resulting [Schema].
func Load(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("schema: open %q: %w", path, err)
	}
	defer f.Close()

	s, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("schema: parse %q: %w", path, err)
	}
	return s, nil
}

// LoadFromReader decodes a YAML schema document from r, validates it via
// [Schema.Validate], and returns the result. Unknown fields are rejected,
// matching the teacher's strict-decode convention.
func LoadFromReader(r io.Reader) (*Schema, error) {
	var doc yamlDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("schema: decode yaml: %w", err)
	}

	s := New()
	for kind, e := range doc.Entities {
		rule := EntityRule{
			Subtypes:      e.Subtypes,
			Statuses:      e.Statuses,
			DefaultStatus: e.DefaultStatus,
		}
		for _, relKind := range e.Required {
			rule.Required = append(rule.Required, RequiredRelationship{RelKind: relKind})
		}
		s.entities[kind] = rule
	}
	for relKind, rr := range doc.Relationships {
		s.relationships[relKind] = RelationshipRule{
			SrcKinds:  rr.SrcKinds,
			DstKinds:  rr.DstKinds,
			Immutable: rr.Immutable,
			Protected: rr.Protected,
		}
	}
	for from, to := range doc.Aliases {
		s.aliases[from] = to
	}
	for _, pair := range doc.Contradicts {
		s.contradicts[[2]string{pair[0], pair[1]}] = true
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
