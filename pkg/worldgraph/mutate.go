package worldgraph

import (
	"fmt"
	"slices"
)

const maxTags = 5

// AddEntity allocates a fresh, kind-prefixed ID (unless partial.ID is
// already set and not yet taken, in which case it is used verbatim — the
// initial-state loader relies on this to honour caller-supplied IDs; a
// partial.ID that another entity already has is replaced by a fresh
// ID), sets
// CreatedAt = UpdatedAt = the graph's current tick, normalises the tag set,
// inserts the entity, and emits an [EventEntityCreated] history event.
//
// Returns [ErrInvalidEntity] if Kind/Subtype/Status are not recognised by
// the domain schema.
func (g *Graph) AddEntity(partial EntityPartial) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	status := partial.Status
	if status == "" {
		status = g.schema.DefaultStatus(partial.Kind)
	}
	if !g.schema.ValidEntity(partial.Kind, partial.Subtype, status) {
		return "", fmt.Errorf("worldgraph: add entity kind=%q subtype=%q status=%q: %w", partial.Kind, partial.Subtype, status, ErrInvalidEntity)
	}

	id := partial.ID
	if id == "" {
		id = g.nextID(partial.Kind)
	} else if _, exists := g.entities[id]; exists {
		id = g.nextID(partial.Kind)
	}

	prom := Forgotten
	if partial.Prominence != nil {
		prom = *partial.Prominence
	}

	e := &Entity{
		ID:          id,
		Kind:        partial.Kind,
		Subtype:     partial.Subtype,
		Name:        partial.Name,
		Description: partial.Description,
		Status:      status,
		Prominence:  prom,
		Tags:        normalizeTags(partial.Tags, partial.Name),
		CreatedAt:   g.tick,
		UpdatedAt:   g.tick,
		Coordinates: partial.Coordinates,
		Culture:     partial.Culture,
		Catalyst:    partial.Catalyst,
	}

	g.entities[id] = e
	g.entityOrder = append(g.entityOrder, id)

	g.history = append(g.history, HistoryEvent{
		Kind:      EventEntityCreated,
		Tick:      g.tick,
		Epoch:     g.epoch,
		Summary:   fmt.Sprintf("%s %q created", e.Kind, e.Name),
		EntityIDs: []string{id},
	})

	return id, nil
}

// UpdateEntity field-wise merges partial into the entity identified by id.
// Unspecified fields (empty string, nil pointer, nil slice) are left
// unchanged. UpdatedAt is refreshed to the graph's current tick and the
// "name:" tag is re-synced if Name changed.
//
// Returns [ErrImmutableField] if partial.ID is non-empty and differs from
// id, or [ErrUnknownEntity] if no such entity exists.
func (g *Graph) UpdateEntity(id string, partial EntityPartial) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if partial.ID != "" && partial.ID != id {
		return fmt.Errorf("worldgraph: update entity %q: id: %w", id, ErrImmutableField)
	}

	e, ok := g.entities[id]
	if !ok {
		return fmt.Errorf("worldgraph: update entity %q: %w", id, ErrUnknownEntity)
	}

	if partial.Kind != "" {
		e.Kind = partial.Kind
	}
	if partial.Subtype != "" {
		e.Subtype = partial.Subtype
	}
	nameChanged := partial.Name != "" && partial.Name != e.Name
	if partial.Name != "" {
		e.Name = partial.Name
	}
	if partial.Description != "" {
		e.Description = partial.Description
	}
	if partial.Status != "" {
		e.Status = partial.Status
	}
	if partial.Prominence != nil {
		e.Prominence = *partial.Prominence
	}
	if partial.Coordinates != nil {
		e.Coordinates = partial.Coordinates
	}
	if partial.Culture != "" {
		e.Culture = partial.Culture
	}
	if partial.Catalyst != nil {
		e.Catalyst = partial.Catalyst
	}
	if partial.Tags != nil {
		e.Tags = normalizeTags(partial.Tags, e.Name)
	} else if nameChanged {
		e.Tags = normalizeTags(e.Tags, e.Name)
	}

	e.UpdatedAt = g.tick
	return nil
}

// AdjustProminence steps the entity's prominence by exactly one level in the
// direction of sign(delta), clamped at the ordered extremes (invariant 4 —
// one step per call regardless of |delta|). Returns the new prominence, or
// an error if id is unknown.
func (g *Graph) AdjustProminence(id string, delta int) (Prominence, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entities[id]
	if !ok {
		return Forgotten, fmt.Errorf("worldgraph: adjust prominence %q: %w", id, ErrUnknownEntity)
	}
	e.Prominence = e.Prominence.Step(delta)
	e.UpdatedAt = g.tick
	return e.Prominence, nil
}

// AddRelationship inserts a new (kind, src, dst) edge iff:
//
//  1. both endpoints exist;
//  2. src != dst;
//  3. the schema permits (srcKind, kind, dstKind);
//  4. no identical (kind, src, dst) edge already exists (idempotence).
//
// On success it mirrors the link into src's Links slice and stamps the
// formation-cooldown table for (src, kind). Returns whether a new edge was
// inserted; a false return with a nil error means one of the above
// conditions was not met (this is not an error — see the error-handling
// design for "invariant violation is rejected, not propagated").
func (g *Graph) AddRelationship(kind, src, dst string, fields RelationshipFields) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	kind = g.schema.ResolveAlias(kind)

	if src == dst {
		return false, nil
	}
	srcEnt, ok := g.entities[src]
	if !ok {
		return false, nil
	}
	dstEnt, ok := g.entities[dst]
	if !ok {
		return false, nil
	}
	if !g.schema.AllowedRelationship(srcEnt.Kind, kind, dstEnt.Kind) {
		return false, nil
	}
	if g.hasRelationshipLocked(src, dst, kind) {
		return false, nil
	}

	rel := Relationship{Kind: kind, Src: src, Dst: dst, Strength: 0.5, Status: StatusCurrent}
	if fields.Strength != nil {
		rel.Strength = *fields.Strength
	}
	if fields.Distance != nil {
		rel.Distance = fields.Distance
	}
	rel.CatalyzedBy = fields.CatalyzedBy
	if fields.Status != "" {
		rel.Status = fields.Status
	}

	g.relationships = append(g.relationships, rel)
	srcEnt.Links = append(srcEnt.Links, Link{Kind: kind, Dst: dst})
	g.cooldowns[cooldownKey{EntityID: src, RelKind: kind}] = g.tick

	return true, nil
}

// hasRelationshipLocked reports whether an edge (kind, src, dst) already
// exists. Must be called with g.mu held.
func (g *Graph) hasRelationshipLocked(src, dst, kind string) bool {
	for _, r := range g.relationships {
		if r.Src == src && r.Dst == dst && r.Kind == kind {
			return true
		}
	}
	return false
}

// removeRelationshipsLocked removes every relationship for which keep
// returns false, also pruning the corresponding Links mirror entries. Must
// be called with g.mu held. Returns the number removed.
func (g *Graph) removeRelationshipsLocked(keep func(Relationship) bool) int {
	kept := g.relationships[:0]
	removed := 0
	for _, r := range g.relationships {
		if keep(r) {
			kept = append(kept, r)
			continue
		}
		removed++
		if e, ok := g.entities[r.Src]; ok {
			e.Links = slices.DeleteFunc(e.Links, func(l Link) bool {
				return l.Kind == r.Kind && l.Dst == r.Dst
			})
		}
	}
	g.relationships = kept
	return removed
}

// normalizeTags deduplicates tags, caps the set at maxTags, and ensures a
// "name:X" tag mirroring name is present (invariant 6) when name is
// non-empty.
func normalizeTags(tags []string, name string) []string {
	seen := make(map[string]struct{}, len(tags)+1)
	out := make([]string, 0, len(tags)+1)
	for _, t := range tags {
		if t == "" {
			continue
		}
		if len(t) >= 5 && t[:5] == "name:" {
			continue // drop stale name tags; re-added below
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if name != "" {
		nameTag := "name:" + name
		out = append([]string{nameTag}, out...)
	}
	if len(out) > maxTags {
		out = out[:maxTags]
	}
	return out
}
