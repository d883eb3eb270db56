// Package distribution measures the current graph's statistical shape
// against configured targets and converts the resulting deviations into
// selection-biasing weights for templates and systems.
//
// GraphMetrics mirrors the nested, typed stats-struct shape used for
// reporting overall graph composition (counts by node/edge type plus
// derived connectivity figures), adapted here from resource-graph
// counters to entity/relationship counters and extended with the
// union-find connectivity figures this engine's invariants require.
package distribution

import (
	"math"

	"github.com/arcweave/worldengine/pkg/worldgraph"
)

// GraphMetrics is the full statistical snapshot of a graph at a point in
// time, computed fresh on demand (never cached across mutations).
type GraphMetrics struct {
	EntityKindRatios       map[string]float64
	ProminenceRatios       map[string]float64
	RelationshipTypeRatios map[string]float64

	Clusters            int
	AvgClusterSize       float64
	IsolatedNodes        int
	IsolatedNodeRatio    float64
	AvgDegree            float64
	IntraClusterDensity  float64
}

// Measure computes a fresh [GraphMetrics] snapshot over v.
func Measure(v *worldgraph.View) GraphMetrics {
	entities := v.FindEntities(worldgraph.EntityFilter{})
	rels := v.Graph().AllRelationships()

	m := GraphMetrics{
		EntityKindRatios:       ratiosBy(entities, func(e worldgraph.Entity) string { return e.Kind }),
		ProminenceRatios:       ratiosBy(entities, func(e worldgraph.Entity) string { return e.Prominence.String() }),
		RelationshipTypeRatios: relationshipRatios(rels),
	}

	uf := newUnionFind(entities)
	for _, r := range rels {
		uf.union(r.Src, r.Dst)
	}
	clusterSizes := uf.clusterSizes()
	m.Clusters = len(clusterSizes)
	if len(clusterSizes) > 0 {
		total := 0
		for _, sz := range clusterSizes {
			total += sz
		}
		m.AvgClusterSize = float64(total) / float64(len(clusterSizes))
	}

	degree := make(map[string]int, len(entities))
	for _, r := range rels {
		degree[r.Src]++
		degree[r.Dst]++
	}
	isolated := 0
	for _, e := range entities {
		if degree[e.ID] == 0 {
			isolated++
		}
	}
	m.IsolatedNodes = isolated
	if len(entities) > 0 {
		m.IsolatedNodeRatio = float64(isolated) / float64(len(entities))
		m.AvgDegree = 2 * float64(len(rels)) / float64(len(entities))
	}
	m.IntraClusterDensity = intraClusterDensity(entities, rels, uf)

	return m
}

func ratiosBy(entities []worldgraph.Entity, key func(worldgraph.Entity) string) map[string]float64 {
	counts := make(map[string]int)
	for _, e := range entities {
		counts[key(e)]++
	}
	total := len(entities)
	ratios := make(map[string]float64, len(counts))
	if total == 0 {
		return ratios
	}
	for k, c := range counts {
		ratios[k] = float64(c) / float64(total)
	}
	return ratios
}

func relationshipRatios(rels []worldgraph.Relationship) map[string]float64 {
	counts := make(map[string]int)
	for _, r := range rels {
		counts[r.Kind]++
	}
	total := len(rels)
	ratios := make(map[string]float64, len(counts))
	if total == 0 {
		return ratios
	}
	for k, c := range counts {
		ratios[k] = float64(c) / float64(total)
	}
	return ratios
}

// intraClusterDensity is the mean, over clusters with >=2 members, of
// actualEdges / possibleEdges (possibleEdges = n*(n-1)/2 for an
// undirected reading of the relationship graph).
func intraClusterDensity(entities []worldgraph.Entity, rels []worldgraph.Relationship, uf *unionFind) float64 {
	clusterEdges := make(map[string]int)
	clusterSize := uf.clusterSizes()
	for _, r := range rels {
		rootSrc, rootDst := uf.find(r.Src), uf.find(r.Dst)
		if rootSrc == rootDst {
			clusterEdges[rootSrc]++
		}
	}

	var sumDensity float64
	var counted int
	for root, n := range clusterSize {
		if n < 2 {
			continue
		}
		possible := float64(n*(n-1)) / 2
		sumDensity += float64(clusterEdges[root]) / possible
		counted++
	}
	if counted == 0 {
		return 0
	}
	return sumDensity / float64(counted)
}

// unionFind is a minimal disjoint-set structure over entity IDs, grounded
// on the same flat-map/typed-node style of graph bookkeeping used to
// count nodes/edges by type, adapted to connectivity instead of taxonomy.
type unionFind struct {
	parent map[string]string
}

func newUnionFind(entities []worldgraph.Entity) *unionFind {
	uf := &unionFind{parent: make(map[string]string, len(entities))}
	for _, e := range entities {
		uf.parent[e.ID] = e.ID
	}
	return uf
}

func (uf *unionFind) find(id string) string {
	root, ok := uf.parent[id]
	if !ok {
		return id
	}
	for root != uf.parent[root] {
		uf.parent[root] = uf.parent[uf.parent[root]]
		root = uf.parent[root]
	}
	return root
}

func (uf *unionFind) union(a, b string) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	uf.parent[ra] = rb
}

func (uf *unionFind) clusterSizes() map[string]int {
	sizes := make(map[string]int)
	for id := range uf.parent {
		sizes[uf.find(id)]++
	}
	return sizes
}

// Deviation is the mean absolute difference between actual and target
// ratios over the union of keys present in either map.
func Deviation(actual, target map[string]float64) float64 {
	keys := make(map[string]struct{}, len(actual)+len(target))
	for k := range actual {
		keys[k] = struct{}{}
	}
	for k := range target {
		keys[k] = struct{}{}
	}
	if len(keys) == 0 {
		return 0
	}
	var sum float64
	for k := range keys {
		sum += math.Abs(actual[k] - target[k])
	}
	return sum / float64(len(keys))
}

// RelationshipDiversityDeviation is 1 - entropy/maxEntropy over the
// relationship-type ratio distribution.
func RelationshipDiversityDeviation(ratios map[string]float64) float64 {
	if len(ratios) == 0 {
		return 1
	}
	var entropy float64
	for _, p := range ratios {
		if p <= 0 {
			continue
		}
		entropy -= p * math.Log2(p)
	}
	maxEntropy := math.Log2(float64(len(ratios)))
	if maxEntropy == 0 {
		return 0
	}
	return 1 - entropy/maxEntropy
}

// ConnectivityDeviation combines a cluster-count delta with isolated-node
// excess into a single [0,1]-ish deviation figure.
func ConnectivityDeviation(m GraphMetrics, targetClusters int, targetIsolatedRatio float64) float64 {
	clusterDelta := 0.0
	if targetClusters > 0 {
		clusterDelta = math.Abs(float64(m.Clusters-targetClusters)) / float64(targetClusters)
	}
	isolatedExcess := math.Max(0, m.IsolatedNodeRatio-targetIsolatedRatio)
	return (clusterDelta + isolatedExcess) / 2
}
