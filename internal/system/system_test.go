package system_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/arcweave/worldengine/internal/randclock"
	"github.com/arcweave/worldengine/internal/system"
	"github.com/arcweave/worldengine/pkg/worldgraph"
)

type permissiveSchema struct{}

func (permissiveSchema) ValidEntity(kind, subtype, status string) bool { return true }
func (permissiveSchema) DefaultStatus(kind string) string               { return "active" }
func (permissiveSchema) AllowedRelationship(a, b, c string) bool         { return true }
func (permissiveSchema) IsProtected(relKind string) bool                { return relKind == "member_of" }
func (permissiveSchema) IsImmutable(string) bool                        { return false }
func (permissiveSchema) Incompatible(a, b string) bool                  { return false }
func (permissiveSchema) ResolveAlias(relKind string) string              { return relKind }

// fixedSystem always proposes the same fixed list of relationship
// insertions, referencing entities already present in the graph.
type fixedSystem struct {
	id  string
	add []system.AddedRelationship
	err error
}

func (f *fixedSystem) ID() string                { return f.id }
func (f *fixedSystem) Metadata() system.Metadata { return system.Metadata{} }
func (f *fixedSystem) Apply(*worldgraph.View, float64, *randclock.Rand) (system.Result, error) {
	if f.err != nil {
		return system.Result{}, f.err
	}
	return system.Result{RelationshipsAdded: f.add}, nil
}

func newGraphWithEntities(t *testing.T, n int) (*worldgraph.Graph, []string) {
	t.Helper()
	g := worldgraph.New(permissiveSchema{})
	ids := make([]string, n)
	for i := range ids {
		id, err := g.AddEntity(worldgraph.EntityPartial{Kind: "npc", Subtype: "x", Name: "n"})
		if err != nil {
			t.Fatalf("AddEntity: %v", err)
		}
		ids[i] = id
	}
	return g, ids
}

func TestTickSkipsZeroModifierSystems(t *testing.T) {
	t.Parallel()
	g, ids := newGraphWithEntities(t, 2)
	sys := &fixedSystem{id: "s1", add: []system.AddedRelationship{{Kind: "knows", Src: ids[0], Dst: ids[1]}}}
	runner := system.NewRunner([]system.System{sys}, system.Budget{MaxPerSimulationTick: 10}, slog.Default())

	report := runner.Tick(g, map[string]float64{"s1": 0}, randclock.New(1), 1)
	if report.RelationshipsInserted != 0 {
		t.Fatalf("expected 0 insertions for a zero-modifier system, got %d", report.RelationshipsInserted)
	}
}

func TestTickEnforcesBudget(t *testing.T) {
	t.Parallel()
	g, ids := newGraphWithEntities(t, 4)
	sys := &fixedSystem{id: "s1", add: []system.AddedRelationship{
		{Kind: "knows", Src: ids[0], Dst: ids[1]},
		{Kind: "knows", Src: ids[1], Dst: ids[2]},
		{Kind: "knows", Src: ids[2], Dst: ids[3]},
	}}
	runner := system.NewRunner([]system.System{sys}, system.Budget{MaxPerSimulationTick: 1}, slog.Default())

	report := runner.Tick(g, map[string]float64{"s1": 1.0}, randclock.New(1), 1)
	if report.RelationshipsInserted != 1 {
		t.Fatalf("expected exactly 1 insertion under budget=1, got %d", report.RelationshipsInserted)
	}
	if !report.BudgetHit {
		t.Fatal("expected BudgetHit to be true")
	}
	if report.RelationshipsDropped != 2 {
		t.Fatalf("expected 2 dropped, got %d", report.RelationshipsDropped)
	}
}

func TestTickSkipsFailingSystem(t *testing.T) {
	t.Parallel()
	g, _ := newGraphWithEntities(t, 1)
	sys := &fixedSystem{id: "s1", err: errors.New("boom")}
	runner := system.NewRunner([]system.System{sys}, system.Budget{MaxPerSimulationTick: 10}, slog.Default())

	report := runner.Tick(g, map[string]float64{"s1": 1.0}, randclock.New(1), 1)
	if report.RelationshipsInserted != 0 {
		t.Fatalf("expected 0 insertions from a failing system, got %d", report.RelationshipsInserted)
	}
}

func TestTickAccumulatesPressureDeltas(t *testing.T) {
	t.Parallel()
	g, _ := newGraphWithEntities(t, 1)

	sys := &fixedSystem{id: "s1"}
	runner := system.NewRunner([]system.System{
		&stubPressureSystem{fixedSystem: sys, deltas: map[string]float64{"tension": 5}},
	}, system.Budget{MaxPerSimulationTick: 10}, slog.Default())

	report := runner.Tick(g, map[string]float64{"s1": 1.0}, randclock.New(1), 1)
	if report.PressureDeltas["tension"] != 5 {
		t.Fatalf("expected accumulated pressure delta of 5, got %v", report.PressureDeltas["tension"])
	}
}

type stubPressureSystem struct {
	*fixedSystem
	deltas map[string]float64
}

func (s *stubPressureSystem) Apply(v *worldgraph.View, m float64, r *randclock.Rand) (system.Result, error) {
	return system.Result{PressureChanges: s.deltas}, nil
}

func TestCapProbability(t *testing.T) {
	t.Parallel()
	if got := system.CapProbability(1.5); got != system.ProbabilityCap {
		t.Fatalf("expected clamp to %v, got %v", system.ProbabilityCap, got)
	}
	if got := system.CapProbability(-1); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
	if got := system.CapProbability(0.5); got != 0.5 {
		t.Fatalf("expected 0.5 unchanged, got %v", got)
	}
}

func TestPruningSystemRunIfDueRespectsCadence(t *testing.T) {
	t.Parallel()
	g, ids := newGraphWithEntities(t, 2)
	weak := 0.01
	g.AddRelationship("knows", ids[0], ids[1], worldgraph.RelationshipFields{Strength: &weak})
	for i := 0; i < 100; i++ {
		g.AdvanceTick()
	}

	p := system.NewPruningSystem(10, 0.15, 5)
	if removed := p.RunIfDue(g, 99); removed != 0 {
		t.Fatalf("expected no-op on a non-multiple tick, got removed=%d", removed)
	}
	if removed := p.RunIfDue(g, 100); removed != 1 {
		t.Fatalf("expected the weak edge to be culled on a due tick, got removed=%d", removed)
	}
}

func TestPruningSystemProtectsConfiguredKinds(t *testing.T) {
	t.Parallel()
	g, ids := newGraphWithEntities(t, 2)
	weak := 0.01
	g.AddRelationship("member_of", ids[0], ids[1], worldgraph.RelationshipFields{Strength: &weak})
	for i := 0; i < 100; i++ {
		g.AdvanceTick()
	}

	p := system.NewPruningSystem(10, 0.15, 5)
	p.RunIfDue(g, 100)
	if g.RelationshipCount() != 1 {
		t.Fatalf("expected the protected member_of edge to survive, got count=%d", g.RelationshipCount())
	}
	if len(g.Violations()) != 1 {
		t.Fatalf("expected a recorded violation, got %d", len(g.Violations()))
	}
}
