package worldgraph

import "errors"

// Sentinel errors returned by Graph's mutating methods. Callers should use
// errors.Is to test for them; they are always wrapped with additional
// context via fmt.Errorf("worldgraph: ...: %w", ...).
var (
	// ErrInvalidEntity is returned by AddEntity when kind/subtype/status are
	// not recognised by the domain schema.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUnknownEntity is returned by UpdateEntity and other lookups when the
	// referenced entity ID does not exist.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrImmutableField is returned by UpdateEntity when the caller attempts
	// to change ID. (EntityPartial has no CreatedAt field, so CreatedAt
	// cannot be changed at all.)
	ErrImmutableField = errors.New("field is immutable")

	// ErrInvariantViolation names a mutation that would leave the graph in a
	// state inconsistent with the structural invariants. No Graph method
	// returns it: AddRelationship reports a rejected edge (e.g. a disallowed
	// (srcKind, kind, dstKind) triple) as false with a nil error.
	ErrInvariantViolation = errors.New("graph invariant violation")
)
