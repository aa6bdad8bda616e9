package core

import (
	"errors"
	"testing"

	"mousecolony/pkg/colony"
)

func TestExtractEmptySeedAborts(t *testing.T) {
	s := newTestStore()
	s.AddMouse(colony.Mouse{Name: "plain"})
	before := s.Snapshot()

	_, err := s.ExtractUsedSubset(ExtractOptions{IncludeStarred: true})
	if !errors.Is(err, ErrEmptySubset) {
		t.Fatalf("err = %v, want ErrEmptySubset", err)
	}
	after := s.Snapshot()
	if len(after.Mice) != len(before.Mice) || len(after.Records) != len(before.Records) {
		t.Fatalf("aborted extraction must not change state")
	}
}

func TestExtractHopExpansion(t *testing.T) {
	s := newTestStore()
	// star -> spouse -> spouse's child, a chain of two edges.
	star := s.AddMouse(colony.Mouse{Name: "star", Sex: "male", Starred: true})
	spouse := s.AddMouse(colony.Mouse{Name: "spouse", Sex: "female"})
	grand := s.AddMouse(colony.Mouse{Name: "grand"})
	s.AddMouse(colony.Mouse{Name: "unrelated"})
	s.LinkSpouses(star.ID, spouse.ID)
	s.AddChild(grand.ID, "", spouse.ID)

	count, err := s.ExtractUsedSubset(ExtractOptions{IncludeStarred: true, Hops: 1})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if count != 2 {
		t.Fatalf("one hop kept %d mice, want star+spouse", count)
	}
	if _, ok := s.FindMouse(grand.ID); ok {
		t.Fatalf("two-edge neighbor must be outside a one-hop subset")
	}
}

func TestExtractTwoHopsReachesGrandNeighbor(t *testing.T) {
	s := newTestStore()
	star := s.AddMouse(colony.Mouse{Name: "star", Starred: true})
	spouse := s.AddMouse(colony.Mouse{Name: "spouse"})
	grand := s.AddMouse(colony.Mouse{Name: "grand"})
	s.LinkSpouses(star.ID, spouse.ID)
	s.AddChild(grand.ID, "", spouse.ID)

	count, err := s.ExtractUsedSubset(ExtractOptions{IncludeStarred: true, Hops: 2})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if count != 3 {
		t.Fatalf("two hops kept %d mice, want 3", count)
	}
}

func TestExtractKeepsMinimalCageSetAndCatchAll(t *testing.T) {
	s := newTestStore()
	kept := s.AddCage("A-01")
	dropped := s.AddCage("B-01")

	m := caged("starred", "male", kept.ID)
	m.Starred = true
	inKept := s.AddMouse(m)
	s.AddMouse(caged("plain", "female", dropped.ID))
	homeless := s.AddMouse(colony.Mouse{Name: "homeless", Starred: true})

	count, err := s.ExtractUsedSubset(ExtractOptions{IncludeStarred: true})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if count != 2 {
		t.Fatalf("kept %d mice, want 2", count)
	}
	if _, ok := s.FindCage(dropped.ID); ok {
		t.Fatalf("cage with no subset members must be dropped")
	}
	if _, ok := s.FindCage(kept.ID); !ok {
		t.Fatalf("cage housing subset members must survive")
	}

	got, _ := s.FindMouse(homeless.ID)
	if got.CageID == nil {
		t.Fatalf("homeless subset mouse must land in the catch-all cage")
	}
	catchAll, ok := s.FindCage(*got.CageID)
	if !ok || catchAll.Name != DefaultCatchAllCage {
		t.Fatalf("catch-all cage wrong: %+v", catchAll)
	}

	got, _ = s.FindMouse(inKept.ID)
	if got.CageID == nil || *got.CageID != kept.ID {
		t.Fatalf("housed subset mouse must keep its cage")
	}
}

func TestExtractReusesExistingCatchAllCage(t *testing.T) {
	s := newTestStore()
	existing := s.AddCage(DefaultCatchAllCage)

	housed := caged("housed", "male", existing.ID)
	housed.Starred = true
	s.AddMouse(housed)
	homeless := s.AddMouse(colony.Mouse{Name: "homeless", Starred: true})

	if _, err := s.ExtractUsedSubset(ExtractOptions{IncludeStarred: true}); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if n := len(s.Cages()); n != 1 {
		t.Fatalf("existing catch-all cage must be reused, got %d cages", n)
	}
	got, _ := s.FindMouse(homeless.ID)
	if got.CageID == nil || *got.CageID != existing.ID {
		t.Fatalf("homeless mouse must land in the existing catch-all cage")
	}
}

func TestExtractCarriesDeadAndBreeding(t *testing.T) {
	s := newTestStore()
	star := s.AddMouse(colony.Mouse{Name: "star", Starred: true})
	doomed := s.AddMouse(colony.Mouse{Name: "doomed"})
	s.RecordDeath(doomed.ID, "age")
	s.UpdateBreeding(colony.PairKey(star.ID, "x"), colony.BreedingAttempt{"status": "active"})

	if _, err := s.ExtractUsedSubset(ExtractOptions{IncludeStarred: true}); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(s.DeadMice()) != 1 {
		t.Fatalf("dead records must carry through extraction")
	}
	if len(s.Breeding()) != 1 {
		t.Fatalf("breeding records must carry through extraction")
	}
}
