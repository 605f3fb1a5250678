// Package engine implements the core protocol: the access and lifecycle
// controller, the batch manager, and the decryption request / oracle
// verification state machine.
//
// Every entry point runs as one indivisible invocation: a single mutex
// serializes invocations, and when a database is configured the whole
// invocation additionally runs inside one transaction. A guard failure
// therefore leaves no partial state behind. The oracle round trip is two
// independent invocations (RequestAnalysis and OnDecrypted) correlated by
// request id; nothing ever awaits the oracle inline.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/common"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/dbx"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/fhe"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/logging"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/repositories/contexts"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/repositories/records"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/repositories/repomanager"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/repositories/state"
)

// DefaultCooldown is the genesis cooldown duration.
const DefaultCooldown = 60 * time.Second

// Oracle is the asynchronous decryption network, seen from the engine:
// fire-and-forget, returns an opaque request id, later re-enters the engine
// through OnDecrypted.
type Oracle interface {
	RequestDecryption(ctx context.Context, handles []fhe.Handle) (string, error)
}

// Config collects the engine dependencies.
type Config struct {
	// DB is nil for in-memory deployments; otherwise every invocation runs
	// in one transaction on it.
	DB     *sql.DB
	Repos  repomanager.RepositoryManager
	Scheme fhe.Scheme
	Oracle Oracle
	Logger logging.Logger
	// Sink receives emitted events; defaults to a logging sink.
	Sink EventSink
	// InstanceID domain-separates state hashes across deployments.
	InstanceID string
	// OwnerID is the genesis owner (and genesis provider).
	OwnerID string
	// Cooldown is the genesis cooldown; defaults to DefaultCooldown.
	Cooldown time.Duration
}

type Engine struct {
	mu sync.Mutex

	db         *sql.DB
	repos      repomanager.RepositoryManager
	scheme     fhe.Scheme
	oracle     Oracle
	sink       EventSink
	logger     logging.Logger
	instanceID string
	ownerID    string
	cooldown   time.Duration

	now func() time.Time
}

func New(cfg Config) (*Engine, error) {
	if cfg.Repos == nil || cfg.Scheme == nil || cfg.Oracle == nil || cfg.Logger == nil {
		return nil, errors.New("engine: missing dependency")
	}
	if cfg.InstanceID == "" || cfg.OwnerID == "" {
		return nil, common.ErrInvalidParameter
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	logger := cfg.Logger.With("module", "engine")
	sink := cfg.Sink
	if sink == nil {
		sink = NewLogSink(logger)
	}
	return &Engine{
		db:         cfg.DB,
		repos:      cfg.Repos,
		scheme:     cfg.Scheme,
		oracle:     cfg.Oracle,
		sink:       sink,
		logger:     logger,
		instanceID: cfg.InstanceID,
		ownerID:    cfg.OwnerID,
		cooldown:   cooldown,
		now:        time.Now,
	}, nil
}

// repos holds the repositories bound to the current invocation.
type repos struct {
	state    state.Repository
	records  records.Repository
	contexts contexts.Repository
}

func (e *Engine) bind(db dbx.DBTX) repos {
	return repos{
		state:    e.repos.State(db),
		records:  e.repos.Records(db),
		contexts: e.repos.Contexts(db),
	}
}

// run executes fn as one serialized invocation, transactional when a
// database is configured.
func (e *Engine) run(ctx context.Context, fn func(ctx context.Context, r repos) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return fn(ctx, e.bind(nil))
	}
	return dbx.WithTx(ctx, e.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, e.bind(tx))
	})
}

// Init writes the genesis state if none exists: owner = configured owner,
// provider set = {owner}, unpaused, configured cooldown, batch counter at 1
// and closed. Idempotent.
func (e *Engine) Init(ctx context.Context) error {
	return e.run(ctx, func(ctx context.Context, r repos) error {
		_, err := r.state.Load(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		st := &models.SystemState{
			OwnerID:        e.ownerID,
			Cooldown:       e.cooldown,
			CurrentBatchID: 1,
		}
		if err := r.state.Save(ctx, st); err != nil {
			return err
		}
		if err := r.state.AddProvider(ctx, e.ownerID); err != nil {
			return err
		}
		e.logger.Info(ctx, "genesis state written", "owner", e.ownerID)
		return nil
	})
}

func (e *Engine) loadState(ctx context.Context, r repos) (*models.SystemState, error) {
	st, err := r.state.Load(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return nil, errors.New("engine not initialized")
	}
	return st, err
}

// cooldownElapsed applies the boundary-inclusive rule:
// an actor may act when now >= last + cooldown.
func (e *Engine) cooldownElapsed(last time.Time, cooldown time.Duration) bool {
	if last.IsZero() {
		return true
	}
	return !e.now().Before(last.Add(cooldown))
}

func (e *Engine) emit(ctx context.Context, typ string, fields map[string]any) {
	e.sink.Publish(ctx, models.Event{Type: typ, At: e.now(), Fields: fields})
}
