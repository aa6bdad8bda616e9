package core

import (
	"slices"
	"testing"

	"mousecolony/pkg/colony"
)

func TestLinkSpousesSymmetricIdempotent(t *testing.T) {
	s := newTestStore()
	a := s.AddMouse(colony.Mouse{Name: "a", Sex: "male"})
	b := s.AddMouse(colony.Mouse{Name: "b", Sex: "female"})

	if !s.LinkSpouses(a.ID, b.ID) {
		t.Fatalf("link failed")
	}
	s.LinkSpouses(a.ID, b.ID) // repeat must not duplicate
	s.LinkSpouses(b.ID, a.ID)

	ma, _ := s.FindMouse(a.ID)
	mb, _ := s.FindMouse(b.ID)
	if len(ma.SpouseIDs) != 1 || len(mb.SpouseIDs) != 1 {
		t.Fatalf("spouse sets not idempotent: %v %v", ma.SpouseIDs, mb.SpouseIDs)
	}
	if s.LinkSpouses(a.ID, a.ID) {
		t.Fatalf("self-link must fail")
	}
	if s.LinkSpouses(a.ID, "missing") {
		t.Fatalf("link to an absent mouse must fail")
	}
}

func TestUnlinkSpouses(t *testing.T) {
	s := newTestStore()
	a := s.AddMouse(colony.Mouse{Name: "a"})
	b := s.AddMouse(colony.Mouse{Name: "b"})
	s.LinkSpouses(a.ID, b.ID)

	if !s.UnlinkSpouses(b.ID, a.ID) {
		t.Fatalf("unlink failed")
	}
	ma, _ := s.FindMouse(a.ID)
	mb, _ := s.FindMouse(b.ID)
	if len(ma.SpouseIDs) != 0 || len(mb.SpouseIDs) != 0 {
		t.Fatalf("unlink must clear both sides: %v %v", ma.SpouseIDs, mb.SpouseIDs)
	}
}

func TestAddChildPartialPedigree(t *testing.T) {
	s := newTestStore()
	father := s.AddMouse(colony.Mouse{Name: "father", Sex: "male"})
	mother := s.AddMouse(colony.Mouse{Name: "mother", Sex: "female"})
	child := s.AddMouse(colony.Mouse{Name: "child"})

	// Father only: the mother pointer stays unset.
	if !s.AddChild(child.ID, father.ID, "") {
		t.Fatalf("add child failed")
	}
	got, _ := s.FindMouse(child.ID)
	if got.FatherID == nil || *got.FatherID != father.ID || got.MotherID != nil {
		t.Fatalf("partial pedigree wrong: %+v", got)
	}

	// Supplying the mother later must not clear the father.
	s.AddChild(child.ID, "", mother.ID)
	got, _ = s.FindMouse(child.ID)
	if got.FatherID == nil || got.MotherID == nil {
		t.Fatalf("existing parent pointer lost: %+v", got)
	}

	f, _ := s.FindMouse(father.ID)
	m, _ := s.FindMouse(mother.ID)
	if !slices.Contains(f.ChildrenIDs, child.ID) || !slices.Contains(m.ChildrenIDs, child.ID) {
		t.Fatalf("children sets not updated: %v %v", f.ChildrenIDs, m.ChildrenIDs)
	}

	// Repeating must not duplicate the child entry.
	s.AddChild(child.ID, father.ID, mother.ID)
	f, _ = s.FindMouse(father.ID)
	if len(f.ChildrenIDs) != 1 {
		t.Fatalf("children set not deduplicated: %v", f.ChildrenIDs)
	}
}

func TestRemoveChildFromParent(t *testing.T) {
	s := newTestStore()
	father := s.AddMouse(colony.Mouse{Name: "father"})
	child := s.AddMouse(colony.Mouse{Name: "child"})
	s.AddChild(child.ID, father.ID, "")

	if !s.RemoveRelationship(father.ID, child.ID, RelationChild) {
		t.Fatalf("remove failed")
	}
	f, _ := s.FindMouse(father.ID)
	c, _ := s.FindMouse(child.ID)
	if len(f.ChildrenIDs) != 0 {
		t.Fatalf("child still listed: %v", f.ChildrenIDs)
	}
	if c.FatherID != nil {
		t.Fatalf("matching parent pointer must clear")
	}
}

func TestAutoPairCrossProductSkipsJuveniles(t *testing.T) {
	s := newTestStore()
	cage := s.AddCage("A-01")
	m1 := s.AddMouse(caged("m1", "♂", cage.ID))
	m2 := s.AddMouse(caged("m2", "male", cage.ID))
	f1 := s.AddMouse(caged("f1", "♀", cage.ID))
	f2 := s.AddMouse(caged("f2", "female", cage.ID))
	pup := colony.Mouse{Name: "pup", Sex: "female", Statuses: []string{colony.StatusJuvenile}}
	pup.CageID = &cage.ID
	young := s.AddMouse(pup)

	s.AutoPairCage(cage.ID)

	for _, male := range []string{m1.ID, m2.ID} {
		got, _ := s.FindMouse(male)
		if len(got.SpouseIDs) != 2 {
			t.Fatalf("male %s spouses = %v, want both females", male, got.SpouseIDs)
		}
		if slices.Contains(got.SpouseIDs, young.ID) {
			t.Fatalf("juvenile must be excluded from pairing")
		}
	}
	for _, female := range []string{f1.ID, f2.ID} {
		got, _ := s.FindMouse(female)
		if len(got.SpouseIDs) != 2 {
			t.Fatalf("female %s spouses = %v, want both males", female, got.SpouseIDs)
		}
	}
	got, _ := s.FindMouse(young.ID)
	if len(got.SpouseIDs) != 0 {
		t.Fatalf("juvenile acquired spouses: %v", got.SpouseIDs)
	}
}

func TestUpdateBreedingAppendVersusMerge(t *testing.T) {
	s := newTestStore()
	key := colony.PairKey("m1", "f1")

	s.UpdateBreeding(key, colony.BreedingAttempt{"status": "active", "note": "first"})
	s.UpdateBreeding(key, colony.BreedingAttempt{"litter": float64(6)})

	attempts := s.Breeding()[key]
	if len(attempts) != 1 {
		t.Fatalf("open attempt must merge in place, got %d attempts", len(attempts))
	}
	if attempts[0]["note"] != "first" || attempts[0]["litter"] != float64(6) {
		t.Fatalf("merge lost fields: %v", attempts[0])
	}

	s.UpdateBreeding(key, colony.BreedingAttempt{"status": colony.BreedingStatusCompleted})
	s.UpdateBreeding(key, colony.BreedingAttempt{"status": "active"})

	attempts = s.Breeding()[key]
	if len(attempts) != 2 {
		t.Fatalf("completed attempt must trigger a fresh append, got %d", len(attempts))
	}
	if attempts[1].Status() != "active" {
		t.Fatalf("latest attempt wrong: %v", attempts[1])
	}
}
