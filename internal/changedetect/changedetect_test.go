package changedetect_test

import (
	"testing"

	"github.com/arcweave/worldengine/internal/changedetect"
	"github.com/arcweave/worldengine/pkg/worldgraph"
)

type permissiveSchema struct{}

func (permissiveSchema) ValidEntity(kind, subtype, status string) bool { return true }
func (permissiveSchema) DefaultStatus(kind string) string               { return "active" }
func (permissiveSchema) AllowedRelationship(a, b, c string) bool         { return true }
func (permissiveSchema) IsProtected(string) bool                        { return false }
func (permissiveSchema) IsImmutable(string) bool                        { return false }
func (permissiveSchema) Incompatible(a, b string) bool                  { return false }
func (permissiveSchema) ResolveAlias(relKind string) string              { return relKind }

func testWatch() changedetect.WatchedRelationships {
	return changedetect.WatchedRelationships{
		AllyKinds:      []string{"allied_with"},
		EnemyKinds:     []string{"enemy_of"},
		ResidentKinds:  []string{"resident_of"},
		TerritoryKinds: []string{"controls"},
		PractitionerKinds: []string{"practices"},
		LocationKinds:  []string{"manifested_at"},
		LeadershipKind: "leads",
		ControllerKind: "controls",
		LeaderKind:     "leads",
	}
}

func TestCaptureCollectsRelationshipFingerprints(t *testing.T) {
	t.Parallel()
	g := worldgraph.New(permissiveSchema{})
	a, _ := g.AddEntity(worldgraph.EntityPartial{Kind: "faction", Subtype: "x", Name: "A"})
	b, _ := g.AddEntity(worldgraph.EntityPartial{Kind: "faction", Subtype: "x", Name: "B"})
	g.AddRelationship("allied_with", a, b, worldgraph.RelationshipFields{})

	snap, ok := changedetect.Capture(g, a, testWatch())
	if !ok {
		t.Fatal("expected capture to succeed")
	}
	if !snap.AllyIDs[b] {
		t.Fatalf("expected %s to appear in AllyIDs, got %v", b, snap.AllyIDs)
	}
}

func TestCaptureUnknownEntityFails(t *testing.T) {
	t.Parallel()
	g := worldgraph.New(permissiveSchema{})
	_, ok := changedetect.Capture(g, "missing", testWatch())
	if ok {
		t.Fatal("expected capture of unknown entity to fail")
	}
}

func TestChangesGatesOnTierForLowProminence(t *testing.T) {
	t.Parallel()
	g := worldgraph.New(permissiveSchema{})
	a, _ := g.AddEntity(worldgraph.EntityPartial{Kind: "npc", Subtype: "x", Name: "A"})
	prior, _ := changedetect.Capture(g, a, testWatch())

	tier := changedetect.Tier{MinProminence: worldgraph.Renowned}
	got := changedetect.Changes(g, a, prior, testWatch(), tier)
	if got != nil {
		t.Fatalf("expected nil changes below the prominence gate, got %v", got)
	}
}

func TestChangesAlwaysEmitsForLocations(t *testing.T) {
	t.Parallel()
	g := worldgraph.New(permissiveSchema{})
	a, _ := g.AddEntity(worldgraph.EntityPartial{Kind: "location", Subtype: "x", Name: "A"})
	b, _ := g.AddEntity(worldgraph.EntityPartial{Kind: "faction", Subtype: "x", Name: "B"})
	prior, _ := changedetect.Capture(g, a, testWatch())

	g.AddRelationship("controls", b, a, worldgraph.RelationshipFields{})

	tier := changedetect.Tier{AlwaysEmit: true}
	got := changedetect.Changes(g, a, prior, testWatch(), tier)
	if len(got) == 0 {
		t.Fatal("expected a control-change entry for an always-emit kind")
	}
}

func TestChangesDetectsNewAlliance(t *testing.T) {
	t.Parallel()
	g := worldgraph.New(permissiveSchema{})
	a, _ := g.AddEntity(worldgraph.EntityPartial{Kind: "faction", Subtype: "x", Name: "A"})
	b, _ := g.AddEntity(worldgraph.EntityPartial{Kind: "faction", Subtype: "x", Name: "B"})
	prior, _ := changedetect.Capture(g, a, testWatch())

	g.AddRelationship("allied_with", a, b, worldgraph.RelationshipFields{})

	got := changedetect.Changes(g, a, prior, testWatch(), changedetect.Tier{AlwaysEmit: true})
	found := false
	for _, c := range got {
		if c == "formed new alliances with: ["+b+"]" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an alliance-formed change, got %v", got)
	}
}

func TestChangesDetectsProminenceShift(t *testing.T) {
	t.Parallel()
	g := worldgraph.New(permissiveSchema{})
	a, _ := g.AddEntity(worldgraph.EntityPartial{Kind: "npc", Subtype: "x", Name: "A"})
	prior, _ := changedetect.Capture(g, a, testWatch())

	if _, err := g.AdjustProminence(a, 2); err != nil {
		t.Fatalf("AdjustProminence: %v", err)
	}

	got := changedetect.Changes(g, a, prior, testWatch(), changedetect.Tier{AlwaysEmit: true})
	if len(got) == 0 {
		t.Fatal("expected a prominence-change entry")
	}
}

func TestChangesIgnoresSmallPractitionerDeltaUnderThreshold(t *testing.T) {
	t.Parallel()
	g := worldgraph.New(permissiveSchema{})
	ability, _ := g.AddEntity(worldgraph.EntityPartial{Kind: "ability", Subtype: "x", Name: "A"})
	npc, _ := g.AddEntity(worldgraph.EntityPartial{Kind: "npc", Subtype: "x", Name: "N"})
	prior, _ := changedetect.Capture(g, ability, testWatch())

	g.AddRelationship("practices", ability, npc, worldgraph.RelationshipFields{})

	tier := changedetect.Tier{AlwaysEmit: true, MinCountDelta: 3}
	got := changedetect.Changes(g, ability, prior, testWatch(), tier)
	for _, c := range got {
		if c == "" {
			t.Fatalf("unexpected entry: %v", got)
		}
	}
	if len(got) != 0 {
		t.Fatalf("expected a single +1 practitioner delta to stay under the threshold, got %v", got)
	}
}

func TestChangesNoOpWhenNothingChanged(t *testing.T) {
	t.Parallel()
	g := worldgraph.New(permissiveSchema{})
	a, _ := g.AddEntity(worldgraph.EntityPartial{Kind: "location", Subtype: "x", Name: "A"})
	prior, _ := changedetect.Capture(g, a, testWatch())

	got := changedetect.Changes(g, a, prior, testWatch(), changedetect.Tier{AlwaysEmit: true})
	if got != nil {
		t.Fatalf("expected no changes, got %v", got)
	}
}
