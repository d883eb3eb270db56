// Package changedetect implements the epoch-over-epoch entity diff that
// drives the narrative-enrichment hooks: for every entity with a prior
// snapshot, a kind-specific rule set produces human-readable change
// strings gated by prominence tiers.
//
// Snapshot/diff bookkeeping (counts plus added/modified ID sets compared
// across two points in time) is adapted from the teacher's report-shape
// for a changes report (ChangesReportData's Statistics + AddedEntities/
// ModifiedEntities/DeletedEntities triad) — a VCS diff-over-refs report
// reshaped into a per-entity diff-over-epochs snapshot.
package changedetect

import (
	"fmt"
	"sort"

	"github.com/arcweave/worldengine/pkg/worldgraph"
)

// Snapshot captures the narratively-relevant state of one entity at a
// given tick, used to diff against the entity's state at a later epoch
// boundary. It is always a value copy; the detector never shares mutable
// state with the graph.
type Snapshot struct {
	Tick       int
	Status     string
	Prominence worldgraph.Prominence

	ResidentCount     int
	TerritoryCount    int
	PractitionerCount int

	AllyIDs       map[string]bool
	EnemyIDs      map[string]bool
	LocationIDs   map[string]bool
	LeadershipIDs map[string]bool
	EnforcerIDs   map[string]bool

	Controller string
	Leader     string
}

// WatchedRelationships configures which relationship kinds feed into
// which fingerprint sets for a given entity kind. Domains declare this
// rather than the engine hardcoding kind strings like "discovered_by" or
// "controls" (per the design note on not hardcoding domain relationship
// names).
type WatchedRelationships struct {
	AllyKinds      []string
	EnemyKinds     []string
	ResidentKinds  []string
	TerritoryKinds []string
	PractitionerKinds []string
	LocationKinds  []string // ability -> manifestation location, for "spread"
	LeadershipKind string   // NPC -> faction leadership edge kind
	ControllerKind string   // controlling faction -> location, read as incoming at the location
	LeaderKind     string   // faction -> leader NPC
	EnforcerKinds  []string // rule -> enforcing entity, for "enforcement"
}

// Capture builds a fresh [Snapshot] for entityID as of the graph's current
// tick, using cfg to decide which relationship kinds populate which
// fingerprint sets.
func Capture(g *worldgraph.Graph, entityID string, cfg WatchedRelationships) (Snapshot, bool) {
	e, ok := g.GetEntity(entityID)
	if !ok {
		return Snapshot{}, false
	}

	snap := Snapshot{
		Tick:       g.Tick(),
		Status:     e.Status,
		Prominence: e.Prominence,
	}

	snap.AllyIDs = toSet(collectRelated(g, entityID, cfg.AllyKinds))
	snap.EnemyIDs = toSet(collectRelated(g, entityID, cfg.EnemyKinds))
	snap.LocationIDs = toSet(collectRelated(g, entityID, cfg.LocationKinds))
	snap.LeadershipIDs = toSet(collectRelated(g, entityID, []string{cfg.LeadershipKind}))
	snap.EnforcerIDs = toSet(collectRelated(g, entityID, cfg.EnforcerKinds))

	snap.ResidentCount = len(collectRelated(g, entityID, cfg.ResidentKinds))
	snap.TerritoryCount = len(collectRelated(g, entityID, cfg.TerritoryKinds))
	snap.PractitionerCount = len(collectRelated(g, entityID, cfg.PractitionerKinds))

	if cfg.ControllerKind != "" {
		if ids := g.GetRelated(entityID, cfg.ControllerKind, worldgraph.Incoming); len(ids) > 0 {
			snap.Controller = ids[0]
		}
	}
	if cfg.LeaderKind != "" {
		if ids := g.GetRelated(entityID, cfg.LeaderKind, worldgraph.Outgoing); len(ids) > 0 {
			snap.Leader = ids[0]
		}
	}

	return snap, true
}

func collectRelated(g *worldgraph.Graph, entityID string, kinds []string) []string {
	var out []string
	for _, kind := range kinds {
		if kind == "" {
			continue
		}
		out = append(out, g.GetRelated(entityID, kind, worldgraph.Outgoing)...)
	}
	return out
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// Tier gates which entity kinds emit changes at all, and at what minimum
// prominence. Domains configure this per kind (locations/factions always
// emit; rules only at recognized+; abilities with MinCountDelta 3, which
// gates practitioner-count deltas and the number of new spread locations;
// NPCs only at renowned+ — spec §4.8). Unless AlwaysEmit is set, an
// entity whose current prominence is below MinProminence emits nothing,
// whatever its count deltas; a prominence change does not lift the count
// gate either.
type Tier struct {
	AlwaysEmit         bool
	MinProminence      worldgraph.Prominence
	MinCountDelta      int
}

// Changes computes the list of human-readable change strings for entity
// between its prior snapshot and its current state, or nil if kind's tier
// gate excludes it or nothing narratively significant changed.
func Changes(g *worldgraph.Graph, entityID string, prior Snapshot, cfg WatchedRelationships, tier Tier) []string {
	e, ok := g.GetEntity(entityID)
	if !ok {
		return nil
	}
	if !tier.AlwaysEmit && e.Prominence < tier.MinProminence {
		return nil
	}

	current, ok := Capture(g, entityID, cfg)
	if !ok {
		return nil
	}

	var changes []string

	if current.Prominence != prior.Prominence {
		changes = append(changes, fmt.Sprintf("prominence changed from %s to %s", prior.Prominence, current.Prominence))
	}
	if current.Status != prior.Status {
		changes = append(changes, fmt.Sprintf("status changed from %q to %q", prior.Status, current.Status))
	}

	minDelta := tier.MinCountDelta
	if minDelta <= 0 {
		minDelta = 1
	}

	if delta := current.ResidentCount - prior.ResidentCount; abs(delta) >= max(3, minDelta) {
		changes = append(changes, fmt.Sprintf("population changed by %+d (now %d)", delta, current.ResidentCount))
	}
	if delta := current.TerritoryCount - prior.TerritoryCount; delta != 0 {
		changes = append(changes, fmt.Sprintf("territory changed by %+d (now %d)", delta, current.TerritoryCount))
	}
	if delta := current.PractitionerCount - prior.PractitionerCount; abs(delta) >= minDelta {
		changes = append(changes, fmt.Sprintf("practitioner count changed by %+d (now %d)", delta, current.PractitionerCount))
	}

	if current.Controller != prior.Controller && current.Controller != "" {
		changes = append(changes, fmt.Sprintf("control passed to %s", current.Controller))
	}
	if current.Leader != prior.Leader && current.Leader != "" {
		changes = append(changes, fmt.Sprintf("new leader: %s", current.Leader))
	}

	if added := setAdditions(prior.AllyIDs, current.AllyIDs); len(added) > 0 {
		changes = append(changes, fmt.Sprintf("formed new alliances with: %v", added))
	}
	if added := setAdditions(prior.EnemyIDs, current.EnemyIDs); len(added) > 0 {
		changes = append(changes, fmt.Sprintf("new hostilities declared with: %v", added))
	}
	if added := setAdditions(prior.LocationIDs, current.LocationIDs); len(added) >= minDelta {
		changes = append(changes, fmt.Sprintf("spread to new locations: %v", added))
	}
	if current.Prominence >= worldgraph.Recognized {
		if added := setAdditions(prior.EnforcerIDs, current.EnforcerIDs); len(added) > 0 {
			changes = append(changes, fmt.Sprintf("new enforcers: %v", added))
		}
	}

	return changes
}

func setAdditions(prior, current map[string]bool) []string {
	var added []string
	for id := range current {
		if !prior[id] {
			added = append(added, id)
		}
	}
	sort.Strings(added)
	return added
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
