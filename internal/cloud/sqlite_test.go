package cloud

import (
	"context"
	"path/filepath"
	"testing"

	"mousecolony/pkg/colony"
)

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLite(filepath.Join(t.TempDir(), "colony.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.DB().Close() }()

	if _, found, err := store.Load(ctx, "lab"); err != nil || found {
		t.Fatalf("missing owner must report absence, found=%v err=%v", found, err)
	}

	doc := colony.EmptyDocument()
	doc.Cages = append(doc.Cages, colony.Cage{ID: "c1", Name: "A-01", Row: "A"})
	doc.Mice = append(doc.Mice, colony.Mouse{ID: "m1", Name: "alpha", Sex: "♂"})
	if err := store.Save(ctx, "lab", doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, found, err := store.Load(ctx, "lab")
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if len(loaded.Cages) != 1 || len(loaded.Mice) != 1 {
		t.Fatalf("round trip lost records: %+v", loaded)
	}
	if loaded.Mice[0].Sex != colony.SexMale {
		t.Fatalf("decode must normalize historical sex tokens: %q", loaded.Mice[0].Sex)
	}

	// Save again to exercise the upsert path.
	doc.Mice = append(doc.Mice, colony.Mouse{ID: "m2", Name: "beta"})
	if err := store.Save(ctx, "lab", doc); err != nil {
		t.Fatalf("second save: %v", err)
	}
	loaded, _, _ = store.Load(ctx, "lab")
	if len(loaded.Mice) != 2 {
		t.Fatalf("upsert must replace the payload, got %d mice", len(loaded.Mice))
	}

	existed, err := store.Delete(ctx, "lab")
	if err != nil || !existed {
		t.Fatalf("delete: existed=%v err=%v", existed, err)
	}
	if _, found, _ := store.Load(ctx, "lab"); found {
		t.Fatalf("document must be gone after delete")
	}
}
