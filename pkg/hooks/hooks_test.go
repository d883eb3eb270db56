package hooks_test

import (
	"context"
	"testing"

	"github.com/arcweave/worldengine/pkg/hooks"
)

func TestNewLoreRecordGeneratesUniqueIDs(t *testing.T) {
	t.Parallel()
	a := hooks.NewLoreRecord("era_narrative", "era-1", "text")
	b := hooks.NewLoreRecord("era_narrative", "era-1", "text")
	if a.ID == "" || b.ID == "" {
		t.Fatal("expected non-empty IDs")
	}
	if a.ID == b.ID {
		t.Fatal("expected distinct IDs across calls")
	}
}

func TestZeroValueHooksAreAllNil(t *testing.T) {
	t.Parallel()
	var h hooks.Hooks
	if h.EnrichEntities != nil || h.GenerateEraNarrative != nil || h.GenerateMythicImage != nil {
		t.Fatal("expected every hook field to be nil on the zero value")
	}
}

func TestWiredHookIsInvocable(t *testing.T) {
	t.Parallel()
	called := false
	h := hooks.Hooks{
		GenerateEraNarrative: func(ctx context.Context, req hooks.EraNarrativeRequest) (*hooks.LoreRecord, error) {
			called = true
			rec := hooks.NewLoreRecord("era_narrative", req.ToEra, "narrative")
			return &rec, nil
		},
	}

	rec, err := h.GenerateEraNarrative(context.Background(), hooks.EraNarrativeRequest{FromEra: "dawn", ToEra: "age-of-iron"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected the hook to have been invoked")
	}
	if rec == nil || rec.Subject != "age-of-iron" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}
