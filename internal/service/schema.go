package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"tweetledger/internal/model"
	"tweetledger/internal/queue"
	"tweetledger/internal/repository"
)

// SchemaService is the schema version controller. It owns the deployed
// version and is the only code path that runs initializers.
type SchemaService struct {
	repo      repository.SchemaRepository
	publisher queue.Publisher
	logger    *zap.Logger
	now       func() time.Time

	current atomic.Int64
	// serializes initializers within this process; the repository
	// serializes them across processes
	mu sync.Mutex
}

func NewSchemaService(repo repository.SchemaRepository, publisher queue.Publisher, logger *zap.Logger) *SchemaService {
	return &SchemaService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.Named("schema"),
		now:       time.Now,
	}
}

// Load reads the deployed version from the store. The in-process version only
// moves forward.
func (s *SchemaService) Load(ctx context.Context) error {
	v, err := s.latestRecorded(ctx)
	if err != nil {
		return err
	}
	s.observe(v)
	return nil
}

func (s *SchemaService) observe(v model.SchemaVersion) {
	for {
		cur := s.current.Load()
		if int64(v) <= cur {
			return
		}
		if s.current.CompareAndSwap(cur, int64(v)) {
			s.logger.Info("schema version observed", zap.Stringer("version", v))
			return
		}
	}
}

// Watch reloads the deployed version every interval until ctx is done, so
// upgrades run by ledgerctl or another instance reach this process.
func (s *SchemaService) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Load(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("schema reload failed", zap.Error(err))
			}
		}
	}
}

// Current returns the deployed version. It is the VersionFunc handed to the
// Postgres repositories.
func (s *SchemaService) Current() model.SchemaVersion {
	return model.SchemaVersion(s.current.Load())
}

// atLeast reports whether v is deployed, rereading the store when the
// in-process version is behind.
func (s *SchemaService) atLeast(ctx context.Context, v model.SchemaVersion) (bool, error) {
	if s.Current() >= v {
		return true, nil
	}
	if err := s.Load(ctx); err != nil {
		return false, err
	}
	return s.Current() >= v, nil
}

// Require fails with ErrOperationUnavailable until v is deployed.
func (s *SchemaService) Require(ctx context.Context, v model.SchemaVersion) error {
	ok, err := s.atLeast(ctx, v)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrRequiresVersion(v)
	}
	return nil
}

// stampAt returns the current time if v is deployed, else nil.
func (s *SchemaService) stampAt(ctx context.Context, v model.SchemaVersion) *time.Time {
	ok, err := s.atLeast(ctx, v)
	if err != nil {
		s.logger.Warn("schema reload failed", zap.Error(err))
	}
	if !ok {
		return nil
	}
	now := s.now().UTC()
	return &now
}

func (s *SchemaService) History(ctx context.Context) ([]model.SchemaRecord, error) {
	history, err := s.repo.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("get schema history: %w", err)
	}
	return history, nil
}

func (s *SchemaService) Status(ctx context.Context) (*model.SchemaStatusResponse, error) {
	history, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		s.observe(history[len(history)-1].Version)
	}
	return &model.SchemaStatusResponse{
		Current: s.Current().String(),
		Latest:  model.LatestSchema.String(),
		History: history,
	}, nil
}

// Initialize runs the initializer for version on behalf of p.
//
// On an empty store every lineage migration up to version is applied and
// version becomes the initial state. Otherwise version must be the next
// lineage step after the deployed one.
func (s *SchemaService) Initialize(ctx context.Context, p model.Principal, version model.SchemaVersion) (*model.SchemaRecord, error) {
	if !p.Operator {
		return nil, model.ErrNotOperator
	}
	if !version.InLineage() {
		return nil, model.ErrUnknownVersion
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.latestRecorded(ctx)
	if err != nil {
		return nil, err
	}
	s.observe(current)

	if version <= current {
		return nil, model.ErrVersionInitialized
	}
	if current != model.SchemaNone && version != current.Next() {
		return nil, model.ErrVersionSkipped
	}

	rec := model.SchemaRecord{
		Version:       version,
		InitializedBy: p.Account,
		InitializedAt: s.now().UTC(),
	}
	if err := s.repo.Apply(ctx, rec, current.StepsTo(version)); err != nil {
		return nil, err
	}
	s.observe(version)

	s.logger.Info("schema initialized",
		zap.Stringer("from", current),
		zap.Stringer("to", version),
		zap.String("operator", p.Account),
	)
	publish(ctx, s.publisher, s.logger, queue.NewSchemaUpgradedEvent(int(version), p.Account))

	return &rec, nil
}

// Bootstrap initializes version as the deployer when the store has never
// been initialized, so Current is never SchemaNone after startup.
func (s *SchemaService) Bootstrap(ctx context.Context, deployer string, version model.SchemaVersion) error {
	if err := s.Load(ctx); err != nil {
		return err
	}
	if s.Current() != model.SchemaNone {
		return nil
	}
	_, err := s.Initialize(ctx, model.Principal{Account: deployer, Operator: true}, version)
	if err != nil && !errors.Is(err, model.ErrAlreadyInitialized) {
		return fmt.Errorf("bootstrap schema %s: %w", version, err)
	}
	// another instance may have won the race
	return s.Load(ctx)
}

func (s *SchemaService) latestRecorded(ctx context.Context) (model.SchemaVersion, error) {
	history, err := s.History(ctx)
	if err != nil {
		return model.SchemaNone, err
	}
	if len(history) == 0 {
		return model.SchemaNone, nil
	}
	return history[len(history)-1].Version, nil
}
