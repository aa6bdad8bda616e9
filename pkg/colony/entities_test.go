package colony

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCloneDocumentKeepsAllocatedCollections(t *testing.T) {
	cp := CloneDocument(EmptyDocument())
	if cp.Cages == nil || cp.Mice == nil || cp.DeadMice == nil || cp.Records == nil || cp.Breeding == nil {
		t.Fatalf("clone must keep empty collections allocated: %+v", cp)
	}

	data, err := json.Marshal(cp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "null") {
		t.Fatalf("serialized empty document must carry [] not null: %s", data)
	}
}

func TestCloneMouseKeepsAllocatedSets(t *testing.T) {
	m := NormalizeMouse(Mouse{ID: "m1", Name: "alpha"})
	cp := CloneMouse(m)
	if cp.SpouseIDs == nil || cp.ChildrenIDs == nil || cp.Statuses == nil {
		t.Fatalf("clone must keep empty relationship sets allocated: %+v", cp)
	}

	data, err := json.Marshal(cp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), `"spouseIds":null`) {
		t.Fatalf("serialized mouse must carry [] not null: %s", data)
	}
}

func TestCloneMouseIsDetached(t *testing.T) {
	cage := "c1"
	m := NormalizeMouse(Mouse{ID: "m1", CageID: &cage, SpouseIDs: []string{"m2"}})
	cp := CloneMouse(m)

	*cp.CageID = "other"
	cp.SpouseIDs[0] = "mutated"
	if *m.CageID != "c1" || m.SpouseIDs[0] != "m2" {
		t.Fatalf("clone mutation leaked into the source: %+v", m)
	}
}
