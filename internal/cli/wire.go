// Package cli holds the colonyctl subcommands. Commands are presentation
// glue only: each one builds a service, performs one operation against it,
// and prints the outcome.
package cli

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"mousecolony/internal/cloud"
	"mousecolony/internal/core"
)

// newService builds a service wired to the environment-selected backend.
// The owner identity comes from MOUSECOLONY_OWNER; commands that touch the
// cloud document fail fast without it.
func newService(ctx context.Context) (*core.Service, error) {
	adapter, err := cloud.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}
	logger := zap.NewNop()
	if os.Getenv("MOUSECOLONY_VERBOSE") != "" {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	}
	svc := core.NewService(core.NewStore(), adapter, core.WithLogger(logger))
	svc.SetOwner(os.Getenv("MOUSECOLONY_OWNER"))
	return svc, nil
}

// loadOrFail pulls the owner's document into the service store.
func loadOrFail(ctx context.Context, svc *core.Service) error {
	if svc.Owner() == "" {
		return fmt.Errorf("no owner identity: set MOUSECOLONY_OWNER")
	}
	if !svc.LoadFromCloud(ctx) {
		return fmt.Errorf("no document found for owner %q", svc.Owner())
	}
	return nil
}
