// Package hooks defines the optional external enrichment surface: narrow,
// all-fields-optional callback structs the core invokes fire-and-forget
// and no-ops on when a field is nil. This mirrors the teacher's narrow
// provider-interface convention for optional side-effect services, widened
// here from a single provider method to the engine's eight-callback
// enrichment surface.
package hooks

import (
	"context"

	"github.com/google/uuid"
)

// LoreRecord is the result of an external enrichment hook, appended to
// the graph for downstream consumers. IDs are generated with a random
// UUID rather than derived from the graph's deterministic entity-ID
// counter: lore text already breaks run-to-run determinism (an external
// LLM call), so there is nothing to protect by making the ID
// deterministic too.
type LoreRecord struct {
	ID       string
	Kind     string
	Subject  string
	Text     string
	Metadata map[string]any
}

// NewLoreRecord returns a LoreRecord with a freshly generated ID.
func NewLoreRecord(kind, subject, text string) LoreRecord {
	return LoreRecord{
		ID:      uuid.NewString(),
		Kind:    kind,
		Subject: subject,
		Text:    text,
	}
}

// EnrichmentContext is the shallow, immutable snapshot hooks observe the
// graph through. It is a value copy: later graph mutations cannot corrupt
// a hook that is still in flight.
type EnrichmentContext struct {
	Tick          int
	Era           string
	Pressures     map[string]float64
	Entities      map[string]EntitySnapshot
	RelatedHistory []HistoryEntry
}

// EntitySnapshot is the read-only entity view passed to hooks.
type EntitySnapshot struct {
	ID         string
	Kind       string
	Subtype    string
	Name       string
	Status     string
	Prominence string
	Tags       []string
}

// HistoryEntry is one read-only history row passed to hooks.
type HistoryEntry struct {
	Tick        int
	Kind        string
	Description string
}

// EntityBatch is the unit enrichEntities/enrichRelationships act on.
type EntityBatch struct {
	EntityIDs []string
}

// EnrichEntitiesOptions configures an enrichEntities call.
type EnrichEntitiesOptions struct {
	PreserveNames bool
}

// EraNarrativeRequest is the payload for generateEraNarrative.
type EraNarrativeRequest struct {
	FromEra   string
	ToEra     string
	Pressures map[string]float64
	ActorIDs  []string
	Tick      int
}

// DiscoveryEventRequest is the payload for enrichDiscoveryEvent.
type DiscoveryEventRequest struct {
	LocationID     string
	ExplorerID     string
	DiscoveryType  string
	TriggerContext string
	Tick           int
}

// ChainLinkRequest is the payload for generateChainLink.
type ChainLinkRequest struct {
	SourceLocationID      string
	RevealedLocationTheme string
	ExplorerID            string
}

// Hooks bundles every optional enrichment callback the orchestrator may
// invoke. Every field may be left nil; the orchestrator checks for nil
// before calling and no-ops when a hook isn't wired, per the engine's
// ambient-dependency boundary on narrative/LLM services.
type Hooks struct {
	EnrichEntities func(ctx context.Context, batch EntityBatch, ec EnrichmentContext, opts EnrichEntitiesOptions) (*LoreRecord, error)

	EnrichAbility func(ctx context.Context, entityID string, ec EnrichmentContext) (*LoreRecord, error)

	EnrichRelationships func(ctx context.Context, batch EntityBatch, actorIDs []string, ec EnrichmentContext) (*LoreRecord, error)

	EnrichEntityChanges func(ctx context.Context, entityID string, changes []string, ec EnrichmentContext) (*LoreRecord, error)

	GenerateEraNarrative func(ctx context.Context, req EraNarrativeRequest) (*LoreRecord, error)

	EnrichDiscoveryEvent func(ctx context.Context, req DiscoveryEventRequest) (*LoreRecord, error)

	GenerateChainLink func(ctx context.Context, req ChainLinkRequest) (*LoreRecord, error)

	GenerateMythicImage func(ctx context.Context, entityID string, ec EnrichmentContext) (*LoreRecord, error)
}
