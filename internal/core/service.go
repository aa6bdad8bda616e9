package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mousecolony/internal/cloud"
)

// ErrNoIdentity is returned by cloud operations invoked without an
// authenticated owner. The store is not mutated.
var ErrNoIdentity = errors.New("no owner identity")

// Service glues the colony store to its persistence adapter and carries the
// ambient concerns (logging, metrics). It is constructed once at process
// start and threaded to every consumer; there is no package-level instance.
type Service struct {
	store   *Store
	adapter cloud.Store
	logger  *zap.Logger
	metrics MetricsRecorder
	nowFn   func() time.Time

	owner string
}

// Option customizes service construction.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// NewService constructs a service over the supplied store and adapter.
func NewService(store *Store, adapter cloud.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		adapter: adapter,
		logger:  zap.NewNop(),
		metrics: NopMetrics{},
		nowFn:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying colony store.
func (s *Service) Store() *Store { return s.store }

// Driver reports which persistence backend the service is wired to.
func (s *Service) Driver() cloud.Driver { return s.adapter.Driver() }

// SetOwner binds the current owner identity (called by the session manager
// on login).
func (s *Service) SetOwner(owner string) { s.owner = owner }

// Owner returns the bound owner identity, empty when logged out.
func (s *Service) Owner() string { return s.owner }

// SaveOptions configures SaveToCloud.
type SaveOptions struct {
	// Silent suppresses the activity-log entry describing the save. Used by
	// automated/background saves that would otherwise feed their own log
	// entry into the next save.
	Silent bool
}

func (s *Service) observe(ctx context.Context, op string, err error, started time.Time) {
	s.metrics.Observe(ctx, op, err == nil, s.nowFn().Sub(started))
}

// SaveToCloud serializes the five collections into one document and upserts
// it for the bound owner. Adapter failures are converted into a false return
// plus an activity-log entry; they never propagate as a crash.
func (s *Service) SaveToCloud(ctx context.Context, opts SaveOptions) bool {
	started := s.nowFn()
	if s.owner == "" {
		s.logger.Warn("cloud save skipped: no owner identity")
		s.observe(ctx, "save", ErrNoIdentity, started)
		return false
	}
	doc := s.store.Snapshot()
	err := s.adapter.Save(ctx, s.owner, doc)
	s.observe(ctx, "save", err, started)
	if err != nil {
		s.logger.Error("cloud save failed", zap.String("owner", s.owner), zap.Error(err))
		if !opts.Silent {
			s.store.appendServiceRecord("cloud save failed: " + err.Error())
		}
		return false
	}
	s.logger.Info("cloud save succeeded",
		zap.String("owner", s.owner),
		zap.Int("mice", len(doc.Mice)),
		zap.Int("cages", len(doc.Cages)))
	if !opts.Silent {
		s.store.appendServiceRecord(fmt.Sprintf("saved to cloud (%d cages, %d mice)", len(doc.Cages), len(doc.Mice)))
	}
	return true
}

// LoadFromCloud fetches the owner's document and replaces local state with
// its normalized contents. Absence reports failure without creating a
// default document; seeding on first use is an adapter concern.
func (s *Service) LoadFromCloud(ctx context.Context) bool {
	started := s.nowFn()
	if s.owner == "" {
		s.logger.Warn("cloud load skipped: no owner identity")
		s.observe(ctx, "load", ErrNoIdentity, started)
		return false
	}
	doc, found, err := s.adapter.Load(ctx, s.owner)
	if err != nil {
		s.observe(ctx, "load", err, started)
		s.logger.Error("cloud load failed", zap.String("owner", s.owner), zap.Error(err))
		s.store.appendServiceRecord("cloud load failed: " + err.Error())
		return false
	}
	if !found {
		s.observe(ctx, "load", errors.New("document absent"), started)
		s.logger.Warn("no cloud document", zap.String("owner", s.owner))
		return false
	}
	s.store.Restore(doc)
	s.observe(ctx, "load", nil, started)
	s.logger.Info("cloud load succeeded",
		zap.String("owner", s.owner),
		zap.Int("mice", len(doc.Mice)),
		zap.Int("cages", len(doc.Cages)))
	return true
}

// ExtractAndReplace narrows state to the actively used subset and silently
// persists the result. An empty seed aborts with ErrEmptySubset and leaves
// both local state and the cloud document unchanged.
func (s *Service) ExtractAndReplace(ctx context.Context, opts ExtractOptions) (int, error) {
	started := s.nowFn()
	count, err := s.store.ExtractUsedSubset(opts)
	s.observe(ctx, "extract", err, started)
	if err != nil {
		s.logger.Warn("subset extraction aborted", zap.Error(err))
		return 0, err
	}
	s.logger.Info("subset extraction replaced state", zap.Int("mice", count))
	s.SaveToCloud(ctx, SaveOptions{Silent: true})
	return count, nil
}

// ResetState clears all collections (logout path).
func (s *Service) ResetState() {
	s.store.Reset()
	s.logger.Info("state reset")
}

// ClearLocalCopy removes the owner's document from the adapter. Only the
// local sqlite variant is expected to honor this on logout; calling it on a
// remote backend would discard shared data.
func (s *Service) ClearLocalCopy(ctx context.Context) bool {
	if s.owner == "" {
		return false
	}
	if s.adapter.Driver() != cloud.DriverSQLite {
		return false
	}
	existed, err := s.adapter.Delete(ctx, s.owner)
	if err != nil {
		s.logger.Error("clearing local copy failed", zap.Error(err))
		return false
	}
	return existed
}
