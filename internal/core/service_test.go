package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mousecolony/internal/cloud"
	"mousecolony/pkg/colony"
)

type failingStore struct {
	cloud.Store
	saveErr error
}

func (f *failingStore) Save(ctx context.Context, owner string, doc colony.Document) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.Store.Save(ctx, owner, doc)
}

func TestSaveRequiresIdentity(t *testing.T) {
	svc := NewService(newTestStore(), cloud.NewMemory())
	if svc.SaveToCloud(context.Background(), SaveOptions{}) {
		t.Fatalf("save must fail without an owner identity")
	}
	if len(svc.Store().Records()) != 0 {
		t.Fatalf("failed identity check must not mutate the store")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	adapter := cloud.NewMemory()

	src := NewService(newTestStore(), adapter)
	src.SetOwner("lab")
	cage := src.Store().AddCage("A-01")
	src.Store().AddMouse(colony.Mouse{Name: "alpha", Sex: "♂", CageID: &cage.ID})
	if !src.SaveToCloud(ctx, SaveOptions{}) {
		t.Fatalf("save failed")
	}

	dst := NewService(newTestStore(), adapter)
	dst.SetOwner("lab")
	if !dst.LoadFromCloud(ctx) {
		t.Fatalf("load failed")
	}
	mice := dst.Store().Mice()
	if len(mice) != 1 || mice[0].Name != "alpha" || mice[0].Sex != colony.SexMale {
		t.Fatalf("round trip lost data: %+v", mice)
	}
	if len(dst.Store().Cages()) != 1 {
		t.Fatalf("round trip lost cages")
	}
}

func TestSilentSaveSkipsActivityRecord(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestStore(), cloud.NewMemory())
	svc.SetOwner("lab")

	svc.SaveToCloud(ctx, SaveOptions{Silent: true})
	if len(svc.Store().Records()) != 0 {
		t.Fatalf("silent save must not log")
	}

	svc.SaveToCloud(ctx, SaveOptions{})
	records := svc.Store().Records()
	if len(records) != 1 || !strings.Contains(records[0].Action, "saved to cloud") {
		t.Fatalf("loud save must log, got %v", records)
	}
}

func TestSaveFailureIsReportedNotFatal(t *testing.T) {
	ctx := context.Background()
	adapter := &failingStore{Store: cloud.NewMemory(), saveErr: errors.New("backend down")}
	svc := NewService(newTestStore(), adapter)
	svc.SetOwner("lab")

	if svc.SaveToCloud(ctx, SaveOptions{}) {
		t.Fatalf("save must report failure")
	}
	records := svc.Store().Records()
	if len(records) != 1 || !strings.Contains(records[0].Action, "cloud save failed") {
		t.Fatalf("failure must leave an activity record, got %v", records)
	}
}

func TestExtractAndReplaceSavesSilently(t *testing.T) {
	ctx := context.Background()
	adapter := cloud.NewMemory()
	svc := NewService(newTestStore(), adapter)
	svc.SetOwner("lab")
	svc.Store().AddMouse(colony.Mouse{Name: "star", Starred: true})
	svc.Store().AddMouse(colony.Mouse{Name: "noise"})

	count, err := svc.ExtractAndReplace(ctx, ExtractOptions{IncludeStarred: true})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if count != 1 {
		t.Fatalf("kept %d, want 1", count)
	}
	doc, found, err := adapter.Load(ctx, "lab")
	if err != nil || !found {
		t.Fatalf("extraction result not persisted")
	}
	if len(doc.Mice) != 1 || doc.Mice[0].Name != "star" {
		t.Fatalf("persisted subset wrong: %+v", doc.Mice)
	}
	for _, r := range doc.Records {
		if strings.Contains(r.Action, "saved to cloud") {
			t.Fatalf("extraction save must be silent")
		}
	}
}

func TestExtractAbortKeepsCloudUntouched(t *testing.T) {
	ctx := context.Background()
	adapter := cloud.NewMemory()
	svc := NewService(newTestStore(), adapter)
	svc.SetOwner("lab")
	svc.Store().AddMouse(colony.Mouse{Name: "plain"})
	svc.SaveToCloud(ctx, SaveOptions{Silent: true})

	_, err := svc.ExtractAndReplace(ctx, ExtractOptions{IncludeStarred: true})
	if !errors.Is(err, ErrEmptySubset) {
		t.Fatalf("err = %v, want ErrEmptySubset", err)
	}
	doc, _, _ := adapter.Load(ctx, "lab")
	if len(doc.Mice) != 1 {
		t.Fatalf("aborted extraction must not rewrite the cloud document")
	}
}

func TestClearLocalCopyOnlyTouchesSQLite(t *testing.T) {
	svc := NewService(newTestStore(), cloud.NewMemory())
	svc.SetOwner("lab")
	svc.SaveToCloud(context.Background(), SaveOptions{Silent: true})

	if svc.ClearLocalCopy(context.Background()) {
		t.Fatalf("clearing must be refused on a non-sqlite backend")
	}
	if _, found, _ := cloud.NewMemory().Load(context.Background(), "lab"); !found {
		t.Fatalf("memory loads always report a document")
	}
}
