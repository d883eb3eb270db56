package worldengine

import (
	"github.com/arcweave/worldengine/pkg/worldgraph"
)

// InitialLink is one outgoing relationship declared inline on an
// [InitialEntity]. Dst may name either another InitialEntity's Name or a
// real/assigned entity ID; seed resolves names first and falls back to
// treating Dst as already a real ID.
type InitialLink struct {
	Kind   string
	Dst    string
	Fields worldgraph.RelationshipFields
}

// InitialEntity is one partial entity supplied to [Run] as the starting
// state of a simulation (spec §6 "Initial state"). ID is optional; when
// empty the graph assigns a fresh kind-prefixed ID.
type InitialEntity struct {
	ID          string
	Kind        string
	Subtype     string
	Name        string
	Description string
	Status      string
	Prominence  *worldgraph.Prominence
	Tags        []string
	Coordinates any
	Culture     string
	Catalyst    *worldgraph.Catalyst
	Links       []InitialLink
}

// seed inserts every initial entity into g, then resolves and inserts every
// declared link. A link whose Dst resolves to neither a known Name nor an
// existing entity ID is silently dropped, per spec §6 ("missing endpoints
// drop that link silently") — worldgraph.Graph.AddRelationship already
// returns false rather than erroring when an endpoint is unknown, so no
// special-casing is needed here beyond the name lookup.
func seed(g *worldgraph.Graph, initial []InitialEntity) {
	ids := make([]string, len(initial))
	nameToID := make(map[string]string, len(initial))

	for i, ie := range initial {
		id, err := g.AddEntity(worldgraph.EntityPartial{
			ID:          ie.ID,
			Kind:        ie.Kind,
			Subtype:     ie.Subtype,
			Name:        ie.Name,
			Description: ie.Description,
			Status:      ie.Status,
			Prominence:  ie.Prominence,
			Tags:        ie.Tags,
			Coordinates: ie.Coordinates,
			Culture:     ie.Culture,
			Catalyst:    ie.Catalyst,
		})
		if err != nil {
			continue // invalid entity: skip it, its links never resolve
		}
		ids[i] = id
		if ie.Name != "" {
			nameToID[ie.Name] = id
		}
	}

	for i, ie := range initial {
		src := ids[i]
		if src == "" {
			continue
		}
		for _, link := range ie.Links {
			dst := link.Dst
			if resolved, ok := nameToID[dst]; ok {
				dst = resolved
			}
			_, _ = g.AddRelationship(link.Kind, src, dst, link.Fields)
		}
	}
}
