package worldgraph

// View is a bounded handle over a Graph, scoped to a single template or
// system invocation. Its methods are read-only and it keeps no write
// buffer: templates and systems return their proposed writes as result
// values, which the orchestrator applies, and [View.Graph] gives direct
// access to the Graph. Per the ownership model, templates and systems
// never hold a View (or any reference derived from it) across ticks.
//
// A View is not safe to retain; it is cheap to construct and is created
// fresh for every invocation by the orchestrator.
type View struct {
	g *Graph
}

// NewView wraps g in a View. Exported so that package internal/template and
// internal/system (and their tests) can construct one without an import
// cycle back into this package's internals.
func NewView(g *Graph) *View { return &View{g: g} }

// Graph returns the underlying Graph. Callers obtained a View specifically
// to avoid holding long-lived references; treat the returned pointer as
// valid only for the duration of the current invocation.
func (v *View) Graph() *Graph { return v.g }

func (v *View) FindEntities(filter EntityFilter) []Entity        { return v.g.FindEntities(filter) }
func (v *View) GetEntity(id string) (Entity, bool)               { return v.g.GetEntity(id) }
func (v *View) GetRelated(from, relKind string, dir Direction) []string {
	return v.g.GetRelated(from, relKind, dir)
}
func (v *View) HasRelationship(a, b, kind string) bool { return v.g.HasRelationship(a, b, kind) }
func (v *View) CanFormRelationship(a, relKind string, cooldownTicks int) bool {
	return v.g.CanFormRelationship(a, relKind, cooldownTicks)
}
func (v *View) AreRelationshipsCompatible(a, b, relKind string) bool {
	return v.g.AreRelationshipsCompatible(a, b, relKind)
}
func (v *View) Neighbors(id string, depth int) []string { return v.g.Neighbors(id, depth) }
func (v *View) Pressure(id string) float64              { return v.g.Pressure(id) }
func (v *View) Pressures() map[string]float64           { return v.g.Pressures() }
func (v *View) Tick() int                                { return v.g.Tick() }
func (v *View) Epoch() int                               { return v.g.Epoch() }
func (v *View) Era() string                              { return v.g.Era() }
func (v *View) EntityCount() int                         { return v.g.EntityCount() }
