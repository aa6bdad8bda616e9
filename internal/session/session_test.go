package session

import (
	"context"
	"errors"
	"testing"

	"mousecolony/internal/cloud"
	"mousecolony/internal/core"
	"mousecolony/pkg/colony"
)

func newTestManager() (*Manager, *core.Service) {
	svc := core.NewService(core.NewStore(), cloud.NewMemory())
	return NewManager(NewMemoryCredentials(), svc), svc
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	mgr, svc := newTestManager()

	if err := mgr.Register(ctx, "lab", "secret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := mgr.Register(ctx, "  ", "secret"); err == nil {
		t.Fatalf("blank owner must be rejected")
	}

	ok, err := mgr.Login(ctx, "lab", "wrong")
	if err != nil || ok {
		t.Fatalf("wrong password must fail quietly, ok=%v err=%v", ok, err)
	}
	if svc.Owner() != "" {
		t.Fatalf("failed login must not bind an identity")
	}

	ok, err = mgr.Login(ctx, "stranger", "secret")
	if err != nil || ok {
		t.Fatalf("unknown owner must fail quietly, ok=%v err=%v", ok, err)
	}

	ok, err = mgr.Login(ctx, "lab", "secret")
	if err != nil || !ok {
		t.Fatalf("login: ok=%v err=%v", ok, err)
	}
	if svc.Owner() != "lab" {
		t.Fatalf("login must bind the owner, got %q", svc.Owner())
	}
}

func TestReRegisterRotatesPassword(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager()

	mgr.Register(ctx, "lab", "old")
	mgr.Register(ctx, "lab", "new")

	if ok, _ := mgr.Login(ctx, "lab", "old"); ok {
		t.Fatalf("old password must stop working")
	}
	if ok, _ := mgr.Login(ctx, "lab", "new"); !ok {
		t.Fatalf("new password must work")
	}
}

func TestLogoutResetsState(t *testing.T) {
	ctx := context.Background()
	mgr, svc := newTestManager()
	mgr.Register(ctx, "lab", "secret")
	mgr.Login(ctx, "lab", "secret")
	svc.Store().AddMouse(colony.Mouse{Name: "alpha"})

	if err := mgr.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if svc.Owner() != "" {
		t.Fatalf("logout must drop the identity")
	}
	if len(svc.Store().Mice()) != 0 {
		t.Fatalf("logout must reset in-memory state")
	}
}

func TestLogoutWithoutSessionFailsFast(t *testing.T) {
	ctx := context.Background()
	mgr, svc := newTestManager()
	svc.Store().AddMouse(colony.Mouse{Name: "alpha"})

	err := mgr.Logout(ctx)
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
	if len(svc.Store().Mice()) != 1 {
		t.Fatalf("failed logout must not mutate state")
	}
}
