package schema

// Builder assembles a [Schema] through chained calls, mirroring the
// teacher's registry Register* pattern but for declarative rule tables
// rather than provider factories. Builder methods are not safe for
// concurrent use; a Schema is meant to be built once, single-threaded,
// before a run starts.
type Builder struct {
	s *Schema
}

// NewBuilder starts an empty Schema build.
func NewBuilder() *Builder {
	return &Builder{s: New()}
}

// Entity registers kind with the given rule, overwriting any prior
// registration under the same name.
func (b *Builder) Entity(kind string, rule EntityRule) *Builder {
	b.s.entities[kind] = rule
	return b
}

// Relationship registers relKind with the given rule, overwriting any
// prior registration under the same name.
func (b *Builder) Relationship(relKind string, rule RelationshipRule) *Builder {
	b.s.relationships[relKind] = rule
	return b
}

// Alias declares that from is a synonym for the canonical relationship
// kind to (e.g. "stronghold_of" -> "controls").
func (b *Builder) Alias(from, to string) *Builder {
	b.s.aliases[from] = to
	return b
}

// Contradicts declares that a and b may never coexist on the same ordered
// entity pair.
func (b *Builder) Contradicts(a, b2 string) *Builder {
	b.s.contradicts[[2]string{a, b2}] = true
	return b
}

// Build returns the assembled Schema. It does not call [Schema.Validate];
// callers that want fail-fast construction-time checking should call it
// themselves.
func (b *Builder) Build() *Schema {
	return b.s
}
