package schema_test

import (
	"strings"
	"testing"

	"github.com/arcweave/worldengine/pkg/schema"
)

func buildTestSchema() *schema.Schema {
	return schema.NewBuilder().
		Entity("npc", schema.EntityRule{
			Subtypes:      []string{"hero", "commoner"},
			Statuses:      []string{"alive", "dead"},
			DefaultStatus: "alive",
			Required: []schema.RequiredRelationship{
				{RelKind: "member_of", Predicate: func(subtype string) bool { return subtype == "hero" }},
			},
		}).
		Entity("faction", schema.EntityRule{
			Subtypes:      []string{"guild"},
			Statuses:      []string{"active", "disbanded"},
			DefaultStatus: "active",
		}).
		Entity("location", schema.EntityRule{
			Subtypes:      []string{"ruin"},
			Statuses:      []string{"discovered", "hidden"},
			DefaultStatus: "hidden",
		}).
		Relationship("member_of", schema.RelationshipRule{
			SrcKinds:  []string{"npc"},
			DstKinds:  []string{"faction"},
			Protected: true,
		}).
		Relationship("allied_with", schema.RelationshipRule{
			SrcKinds: []string{"faction"},
			DstKinds: []string{"faction"},
		}).
		Relationship("enemy_of", schema.RelationshipRule{
			SrcKinds: []string{"faction"},
			DstKinds: []string{"faction"},
		}).
		Relationship("controls", schema.RelationshipRule{
			SrcKinds: []string{"faction"},
			DstKinds: []string{"location"},
		}).
		Alias("stronghold_of", "controls").
		Contradicts("allied_with", "enemy_of").
		Build()
}

func TestValidEntity(t *testing.T) {
	t.Parallel()
	s := buildTestSchema()

	cases := []struct {
		name                    string
		kind, subtype, status   string
		want                    bool
	}{
		{"known combination", "npc", "hero", "alive", true},
		{"unknown subtype", "npc", "dragon", "alive", false},
		{"unknown status", "npc", "hero", "ghost", false},
		{"unknown kind", "spaceship", "x", "x", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := s.ValidEntity(tc.kind, tc.subtype, tc.status); got != tc.want {
				t.Errorf("ValidEntity(%q,%q,%q) = %v, want %v", tc.kind, tc.subtype, tc.status, got, tc.want)
			}
		})
	}
}

func TestDefaultStatus(t *testing.T) {
	t.Parallel()
	s := buildTestSchema()
	if got := s.DefaultStatus("npc"); got != "alive" {
		t.Errorf("DefaultStatus(npc) = %q, want alive", got)
	}
	if got := s.DefaultStatus("unknown"); got != "" {
		t.Errorf("DefaultStatus(unknown) = %q, want empty", got)
	}
}

func TestAllowedRelationshipRespectsAliases(t *testing.T) {
	t.Parallel()
	s := buildTestSchema()

	if !s.AllowedRelationship("faction", "controls", "location") {
		t.Error("expected faction->location controls to be allowed")
	}
	if !s.AllowedRelationship("faction", "stronghold_of", "location") {
		t.Error("expected the stronghold_of alias to resolve to controls")
	}
	if s.AllowedRelationship("npc", "controls", "location") {
		t.Error("expected npc->location controls to be disallowed")
	}
}

func TestProtectedAndImmutableKinds(t *testing.T) {
	t.Parallel()
	s := buildTestSchema()
	if !s.IsProtected("member_of") {
		t.Error("expected member_of to be protected")
	}
	if s.IsProtected("allied_with") {
		t.Error("expected allied_with to not be protected")
	}
	protected := s.ProtectedKinds()
	if len(protected) != 1 || protected[0] != "member_of" {
		t.Errorf("ProtectedKinds() = %v, want [member_of]", protected)
	}
}

func TestIncompatibleIsSymmetric(t *testing.T) {
	t.Parallel()
	s := buildTestSchema()
	if !s.Incompatible("allied_with", "enemy_of") {
		t.Error("expected allied_with/enemy_of to be incompatible")
	}
	if !s.Incompatible("enemy_of", "allied_with") {
		t.Error("expected the contradiction check to be order-independent")
	}
	if s.Incompatible("allied_with", "controls") {
		t.Error("expected unrelated kinds to be compatible")
	}
}

func TestStructuralGaps(t *testing.T) {
	t.Parallel()
	s := buildTestSchema()

	gaps := s.StructuralGaps("npc", "hero", map[string]bool{})
	if len(gaps) != 1 || gaps[0] != "member_of" {
		t.Fatalf("expected a member_of gap for an unaffiliated hero, got %v", gaps)
	}

	gaps = s.StructuralGaps("npc", "hero", map[string]bool{"member_of": true})
	if len(gaps) != 0 {
		t.Fatalf("expected no gaps once member_of is present, got %v", gaps)
	}

	gaps = s.StructuralGaps("npc", "commoner", map[string]bool{})
	if len(gaps) != 0 {
		t.Fatalf("expected no gaps for a commoner (predicate excludes non-heroes), got %v", gaps)
	}
}

func TestValidateCatchesDanglingRelationshipKinds(t *testing.T) {
	t.Parallel()
	s := schema.NewBuilder().
		Entity("npc", schema.EntityRule{Subtypes: []string{"x"}, Statuses: []string{"x"}, DefaultStatus: "x"}).
		Relationship("haunts", schema.RelationshipRule{SrcKinds: []string{"ghost"}, DstKinds: []string{"npc"}}).
		Build()

	err := s.Validate()
	if err == nil {
		t.Fatal("expected Validate to report the undeclared 'ghost' src kind")
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("expected error to mention the offending kind, got: %v", err)
	}
}

func TestLoadFromReader(t *testing.T) {
	t.Parallel()
	doc := strings.NewReader(`
entities:
  npc:
    subtypes: [hero, commoner]
    statuses: [alive, dead]
    default_status: alive
  faction:
    subtypes: [guild]
    statuses: [active]
    default_status: active
relationships:
  member_of:
    src_kinds: [npc]
    dst_kinds: [faction]
    protected: true
aliases:
  joined: member_of
contradicts:
  - [member_of, joined]
`)
	s, err := schema.LoadFromReader(doc)
	if err != nil {
		t.Fatalf("LoadFromReader: unexpected error: %v", err)
	}
	if !s.ValidEntity("npc", "hero", "alive") {
		t.Error("expected npc/hero/alive to validate")
	}
	if !s.AllowedRelationship("npc", "joined", "faction") {
		t.Error("expected the joined alias to resolve to member_of")
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	doc := strings.NewReader("entities:\n  npc:\n    made_up_field: true\n")
	if _, err := schema.LoadFromReader(doc); err == nil {
		t.Fatal("expected an error decoding an unknown field")
	}
}
