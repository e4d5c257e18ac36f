package hydrate

import (
	"context"
	"strings"
	"testing"

	"github.com/lumodev/lumo/scope"
)

func TestResourceIDs(t *testing.T) {
	t.Run("DeterministicWithoutScope", func(t *testing.T) {
		ctx := context.Background()
		a := ResourceID(ctx, "/api/users", "page=2")
		b := ResourceID(ctx, "/api/users", "page=2")
		if a != b {
			t.Errorf("Expected stable id outside a scope, got %q and %q", a, b)
		}
		if !strings.HasPrefix(a, IDPrefix) {
			t.Errorf("Expected prefix %q, got %q", IDPrefix, a)
		}
	})

	t.Run("OrdinalInsideScope", func(t *testing.T) {
		ctx := scope.Context(context.Background(), scope.New(scope.Config{}))
		a := ResourceID(ctx, "/api/users", "")
		b := ResourceID(ctx, "/api/users", "")
		if a == b {
			t.Errorf("Expected distinct ids for repeated fetches, got %q twice", a)
		}
		base := BaseResourceID("/api/users", "")
		if !strings.HasPrefix(a, base+ordinalSep) || !strings.HasPrefix(b, base+ordinalSep) {
			t.Errorf("Expected ordinal-suffixed ids, got %q and %q", a, b)
		}
	})

	t.Run("QueryChangesID", func(t *testing.T) {
		if BaseResourceID("/a", "x=1") == BaseResourceID("/a", "x=2") {
			t.Error("Different queries must produce different ids")
		}
	})

	t.Run("EncodedSafely", func(t *testing.T) {
		id := BaseResourceID("/a b/<script>", "k=v&x=%20")
		for _, r := range id {
			valid := r == '-' ||
				(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
			if !valid {
				t.Fatalf("Unsafe rune %q in id %q", r, id)
			}
		}
	})
}

func TestInjectAndSnapshot(t *testing.T) {
	t.Run("NoScopeIsNoOp", func(t *testing.T) {
		ctx := context.Background()
		Inject(ctx, "some-id", "data")
		if snap := Snapshot(ctx); len(snap) != 0 {
			t.Errorf("Expected empty snapshot, got %v", snap)
		}
	})

	t.Run("CollectsPerScope", func(t *testing.T) {
		ctx := scope.Context(context.Background(), scope.New(scope.Config{}))
		id := ResourceID(ctx, "/api/items", "")
		Inject(ctx, id, map[string]any{"n": 1})

		snap := Snapshot(ctx)
		if len(snap) != 1 {
			t.Fatalf("Expected 1 entry, got %d", len(snap))
		}
		entry, ok := snap[id]
		if !ok || entry.ID != id {
			t.Errorf("Snapshot entry mismatch: %#v", snap)
		}
	})
}
