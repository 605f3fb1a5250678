// Package server initializes and runs the analysis server: configuration,
// storage backend selection, the engine, the in-process decryption oracle
// and the HTTP endpoint, with graceful shutdown on OS signals.
package server

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/fhe"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/logging"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/oracle"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/config"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/engine"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/httpapi"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/repositories/repomanager"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	engine *engine.Engine
	oracle *oracle.Oracle
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	sealingKey, err := hex.DecodeString(c.SealingKeyHex)
	if err != nil {
		return nil, fmt.Errorf("sealing key: %w", err)
	}
	seed, err := hex.DecodeString(c.OracleSeedHex)
	if err != nil {
		return nil, fmt.Errorf("oracle seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("oracle seed: need %d bytes", ed25519.SeedSize)
	}
	signKey := ed25519.NewKeyFromSeed(seed)

	scheme, err := fhe.NewSealedScheme(sealingKey, signKey.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	var repos repomanager.RepositoryManager
	if c.DatabaseDSN == "" {
		repos = repomanager.NewInMemoryRepositoryManager()
	} else {
		db, err = sql.Open("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		repos = repomanager.NewPostgresRepositoryManager()
	}

	app := &App{config: c, logger: logger, db: db}

	app.oracle, err = oracle.New(oracle.Config{
		SealingKey: sealingKey,
		SignKey:    signKey,
		Resolver:   scheme,
		Callback: func(ctx context.Context, requestID string, cleartext, proof []byte) error {
			_, err := app.engine.OnDecrypted(ctx, requestID, cleartext, proof)
			return err
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	app.engine, err = engine.New(engine.Config{
		DB:         db,
		Repos:      repos,
		Scheme:     scheme,
		Oracle:     app.oracle,
		Logger:     logger,
		InstanceID: c.InstanceID,
		OwnerID:    c.OwnerID,
		Cooldown:   c.Cooldown,
	})
	if err != nil {
		return nil, err
	}

	if db != nil {
		if err := repos.RunMigrations(context.Background(), db); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if err := app.engine.Init(context.Background()); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.EndpointAddr, app.logger, app.engine, app.config.TokenSecret)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = app.oracle.Run(ctx)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close", "error", err.Error())
		}
	}
}
