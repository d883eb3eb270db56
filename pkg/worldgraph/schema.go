package worldgraph

// Schema is the narrow view of a domain schema that the Graph consumes to
// enforce its structural invariants. [pkg/schema.Schema] implements this
// interface; the graph never hardcodes domain-specific kind or
// relationship strings.
type Schema interface {
	// ValidEntity reports whether (kind, subtype, status) is a legal
	// combination for a new or updated entity.
	ValidEntity(kind, subtype, status string) bool

	// DefaultStatus returns the default status for a newly created entity
	// of the given kind, used when the caller omits Status.
	DefaultStatus(kind string) string

	// AllowedRelationship reports whether the (srcKind, relKind, dstKind)
	// triple is permitted.
	AllowedRelationship(srcKind, relKind, dstKind string) bool

	// IsProtected reports whether relKind is marked non-cullable.
	IsProtected(relKind string) bool

	// IsImmutable reports whether relKind represents a fact that never
	// changes (spatial, discovery, …) and so is never culled.
	IsImmutable(relKind string) bool

	// Incompatible reports whether a and b may never coexist on the same
	// ordered entity pair (e.g. allied_with and enemy_of).
	Incompatible(a, b string) bool

	// ResolveAlias canonicalises relKind through any alias table the schema
	// declares (e.g. "stronghold_of" -> "controls"), returning relKind
	// unchanged when no alias applies.
	ResolveAlias(relKind string) string
}
