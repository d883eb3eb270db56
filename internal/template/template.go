// Package template implements the entity-creation ("growth") machinery:
// gated prerequisite checks, candidate-target selection, and expansion
// into partial entities plus relationships whose placeholder IDs are
// resolved against freshly allocated real IDs at insertion time.
//
// The two-pass placeholder-resolution scheme (allocate real IDs for every
// synthetic reference first, then rewrite every edge endpoint through that
// mapping) follows the same shape as a template-instantiation routine that
// clones a subgraph and remaps dependency edges across the old/new ID
// boundary in two explicit passes.
package template

import (
	"fmt"
	"math"
	"strings"

	"github.com/arcweave/worldengine/internal/randclock"
	"github.com/arcweave/worldengine/pkg/worldgraph"
)

// placeholderPrefix marks a synthetic, call-local entity reference in a
// TemplateResult, e.g. "will-be-assigned-0".
const placeholderPrefix = "will-be-assigned-"

// EntityDraft is one entity a template wants created, keyed by its
// positional index for placeholder resolution.
type EntityDraft struct {
	Partial worldgraph.EntityPartial
}

// RelationshipDraft is one relationship a template wants created. Src/Dst
// may be either a real entity ID or a "will-be-assigned-N" placeholder
// referring to one of the same call's Entities.
type RelationshipDraft struct {
	Kind   string
	Src    string
	Dst    string
	Fields worldgraph.RelationshipFields
}

// Result is the authoring output of [Template.Expand].
type Result struct {
	Entities      []EntityDraft
	Relationships []RelationshipDraft
	Description   string
}

// Metadata declares static facts about a template used by the selectors
// in internal/distribution, independent of any particular invocation.
type Metadata struct {
	ProducesEntityKinds []string
}

// Template is an entity-creation rule: canApply gates it, findTargets
// picks candidate focal entities, and expand performs the authoring act.
// All three receive a bounded [worldgraph.View] and must not retain it.
type Template interface {
	ID() string
	Metadata() Metadata
	CanApply(view *worldgraph.View) bool
	FindTargets(view *worldgraph.View) []worldgraph.Entity
	Expand(view *worldgraph.View, target *worldgraph.Entity, rng *randclock.Rand) (Result, error)
}

// Placeholder returns the synthetic reference string for the entity at
// index idx within a single Result.
func Placeholder(idx int) string {
	return fmt.Sprintf("%s%d", placeholderPrefix, idx)
}

// Apply inserts result into g: first pass allocates a real ID for every
// drafted entity (positionally matched to result.Entities), second pass
// rewrites every relationship endpoint through the placeholder->real-ID
// mapping (falling back to treating a non-placeholder Src/Dst as an
// already-real entity ID) and inserts the edge. An unresolved placeholder
// reference aborts only that one relationship, not the whole template
// result (per spec §4.5: "Any unresolved reference aborts the template
// result", scoped here to the offending edge so a partial expand still
// contributes its entities).
//
// Returns the real IDs of the created entities, in Result.Entities order,
// and the count of relationships actually inserted.
func Apply(g *worldgraph.Graph, result Result) ([]string, int, error) {
	ids := make([]string, len(result.Entities))
	mapping := make(map[string]string, len(result.Entities))
	for i, draft := range result.Entities {
		id, err := g.AddEntity(draft.Partial)
		if err != nil {
			return nil, 0, fmt.Errorf("template: apply entity %d: %w", i, err)
		}
		ids[i] = id
		mapping[Placeholder(i)] = id
	}

	inserted := 0
	for _, rel := range result.Relationships {
		src, ok := resolve(rel.Src, mapping)
		if !ok {
			continue // unresolved placeholder: skip this edge only
		}
		dst, ok := resolve(rel.Dst, mapping)
		if !ok {
			continue
		}
		added, err := g.AddRelationship(rel.Kind, src, dst, rel.Fields)
		if err != nil {
			return ids, inserted, fmt.Errorf("template: apply relationship %s->%s: %w", src, dst, err)
		}
		if added {
			inserted++
		}
	}

	return ids, inserted, nil
}

// resolve maps ref through mapping if it is a placeholder; otherwise ref
// is assumed to already be a real entity ID. Returns ok=false only when
// ref looks like a placeholder but has no entry in mapping.
func resolve(ref string, mapping map[string]string) (string, bool) {
	if !strings.HasPrefix(ref, placeholderPrefix) {
		return ref, true
	}
	real, ok := mapping[ref]
	return real, ok
}

// GrowthTarget computes the per-epoch target count of new entities:
// T = clamp(ceil(remaining/epochsRemaining * jitter), 3, 25), or exactly 3
// when remaining is 0 (every kind already meets its target).
func GrowthTarget(remaining, epochsRemaining int, jitter float64) int {
	if remaining <= 0 {
		return 3
	}
	if epochsRemaining <= 0 {
		epochsRemaining = 1
	}
	raw := math.Ceil(float64(remaining) / float64(epochsRemaining) * jitter)
	t := int(raw)
	if t < 3 {
		t = 3
	}
	if t > 25 {
		t = 25
	}
	return t
}

// Remaining sums, over every kind in perKindTarget, max(0, target-current).
func Remaining(perKindTarget map[string]int, currentCounts map[string]int) int {
	total := 0
	for kind, target := range perKindTarget {
		deficit := target - currentCounts[kind]
		if deficit > 0 {
			total += deficit
		}
	}
	return total
}
