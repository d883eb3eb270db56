// Package schema implements the declarative domain registry consumed by the
// rest of the engine: entity-kind rules (allowed subtypes/statuses,
// required relationships), relationship-kind rules (allowed endpoint
// kinds, mutability, protection), and a static contradiction matrix.
//
// A Schema is built once (via [New] + builder methods, or loaded from YAML
// with [Load]) and then treated as read-only for the lifetime of a run — it
// implements [github.com/arcweave/worldengine/pkg/worldgraph.Schema] so the
// graph store never hardcodes domain-specific kind or relationship strings.
package schema

import (
	"errors"
	"fmt"
)

// RequiredRelationship is one structural-completeness rule attached to an
// entity kind: every entity of that kind whose subtype satisfies Predicate
// (every entity of the kind, when Predicate is nil) must have at least one
// outgoing relationship of RelKind.
type RequiredRelationship struct {
	RelKind   string
	Predicate func(subtype string) bool
}

// EntityRule declares the legal shape of one entity kind.
type EntityRule struct {
	Subtypes      []string
	Statuses      []string
	DefaultStatus string
	Required      []RequiredRelationship
}

// RelationshipRule declares the legal shape of one relationship kind.
type RelationshipRule struct {
	SrcKinds  []string
	DstKinds  []string
	Immutable bool
	Protected bool
}

// Schema is a concrete, declarative domain registry. The zero value is not
// usable; construct one with [New].
type Schema struct {
	entities      map[string]EntityRule
	relationships map[string]RelationshipRule
	aliases       map[string]string
	contradicts   map[[2]string]bool
}

// New returns an empty Schema, ready for population via the builder methods
// in builder.go or direct field assignment by [Load].
func New() *Schema {
	return &Schema{
		entities:      make(map[string]EntityRule),
		relationships: make(map[string]RelationshipRule),
		aliases:       make(map[string]string),
		contradicts:   make(map[[2]string]bool),
	}
}

// ValidEntity reports whether (kind, subtype, status) is a legal
// combination. An empty status is accepted only via DefaultStatus
// resolution upstream; here status must be one of the kind's declared
// statuses.
func (s *Schema) ValidEntity(kind, subtype, status string) bool {
	rule, ok := s.entities[kind]
	if !ok {
		return false
	}
	if !contains(rule.Subtypes, subtype) {
		return false
	}
	return contains(rule.Statuses, status)
}

// DefaultStatus returns the configured default status for kind, or "" if
// kind is unknown.
func (s *Schema) DefaultStatus(kind string) string {
	return s.entities[kind].DefaultStatus
}

// AllowedRelationship reports whether (srcKind, relKind, dstKind) is
// permitted. relKind is resolved through the alias table first.
func (s *Schema) AllowedRelationship(srcKind, relKind, dstKind string) bool {
	relKind = s.ResolveAlias(relKind)
	rule, ok := s.relationships[relKind]
	if !ok {
		return false
	}
	return contains(rule.SrcKinds, srcKind) && contains(rule.DstKinds, dstKind)
}

// IsProtected reports whether relKind (after alias resolution) is marked
// protected.
func (s *Schema) IsProtected(relKind string) bool {
	return s.relationships[s.ResolveAlias(relKind)].Protected
}

// IsImmutable reports whether relKind (after alias resolution) is marked
// immutable.
func (s *Schema) IsImmutable(relKind string) bool {
	return s.relationships[s.ResolveAlias(relKind)].Immutable
}

// Incompatible reports whether a and b (after alias resolution) may never
// coexist on the same ordered entity pair, per the static contradiction
// matrix. The relation is symmetric regardless of insertion order.
func (s *Schema) Incompatible(a, b string) bool {
	a, b = s.ResolveAlias(a), s.ResolveAlias(b)
	return s.contradicts[[2]string{a, b}] || s.contradicts[[2]string{b, a}]
}

// ResolveAlias canonicalises relKind through the alias table, returning
// relKind unchanged when no alias applies.
func (s *Schema) ResolveAlias(relKind string) string {
	if canonical, ok := s.aliases[relKind]; ok {
		return canonical
	}
	return relKind
}

// ProtectedKinds returns the relationship kinds marked protected.
func (s *Schema) ProtectedKinds() []string {
	return s.relationshipKindsWhere(func(r RelationshipRule) bool { return r.Protected })
}

// ImmutableKinds returns the relationship kinds marked immutable.
func (s *Schema) ImmutableKinds() []string {
	return s.relationshipKindsWhere(func(r RelationshipRule) bool { return r.Immutable })
}

func (s *Schema) relationshipKindsWhere(pred func(RelationshipRule) bool) []string {
	var out []string
	for kind, rule := range s.relationships {
		if pred(rule) {
			out = append(out, kind)
		}
	}
	return out
}

// StructuralGaps reports the RequiredRelationship rules for kind/subtype
// that are not satisfied by present, the set of relationship kinds the
// entity currently participates in as source. It is a standalone helper:
// the orchestrator does not call it, and nothing in the core fails a run
// over a gap.
func (s *Schema) StructuralGaps(kind, subtype string, present map[string]bool) []string {
	rule, ok := s.entities[kind]
	if !ok {
		return nil
	}
	var gaps []string
	for _, req := range rule.Required {
		if req.Predicate != nil && !req.Predicate(subtype) {
			continue
		}
		if !present[req.RelKind] {
			gaps = append(gaps, req.RelKind)
		}
	}
	return gaps
}

// Validate reports a non-nil error describing every internal
// inconsistency in s: relationship rules whose endpoint kinds are not
// themselves declared entity kinds, required-relationship rules naming an
// undeclared relationship kind, and aliases pointing at themselves or at
// another alias.
func (s *Schema) Validate() error {
	var errs []error
	for relKind, rule := range s.relationships {
		for _, k := range rule.SrcKinds {
			if _, ok := s.entities[k]; !ok {
				errs = append(errs, fmt.Errorf("schema: relationship %q: unknown src kind %q", relKind, k))
			}
		}
		for _, k := range rule.DstKinds {
			if _, ok := s.entities[k]; !ok {
				errs = append(errs, fmt.Errorf("schema: relationship %q: unknown dst kind %q", relKind, k))
			}
		}
	}
	for kind, rule := range s.entities {
		for _, req := range rule.Required {
			if _, ok := s.relationships[req.RelKind]; !ok {
				errs = append(errs, fmt.Errorf("schema: entity %q: required relationship %q is not declared", kind, req.RelKind))
			}
		}
	}
	for from, to := range s.aliases {
		if from == to {
			errs = append(errs, fmt.Errorf("schema: alias %q resolves to itself", from))
		}
		if _, chained := s.aliases[to]; chained {
			errs = append(errs, fmt.Errorf("schema: alias %q chains to another alias %q, aliases must resolve in one hop", from, to))
		}
	}
	return errors.Join(errs...)
}

func contains(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}
