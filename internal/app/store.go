package app

import (
	"context"
	"fmt"
	"time"

	"wishboard/internal/config"
	"wishboard/internal/domain"
	"wishboard/internal/repository/wish/db/memory"
	"wishboard/internal/repository/wish/db/postgres"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type WishStore interface {
	Create(ctx context.Context, w *domain.Wish) error
	GetByID(ctx context.Context, id, viewerID string) (*domain.Wish, error)
	List(ctx context.Context, filter domain.WishFilter) ([]domain.Wish, error)
	Lock(ctx context.Context, id string) (string, error)
	Update(ctx context.Context, id string, in domain.UpdateWishInput, updatedAt time.Time) error
	Delete(ctx context.Context, id string) (bool, error)
	SyncLikeCount(ctx context.Context, id string) (int, error)
	ListDrifted(ctx context.Context) ([]string, error)
	UpsertProfile(ctx context.Context, p *domain.Profile) error
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
}

type LikeStore interface {
	Insert(ctx context.Context, like *domain.LikeRelationship) (bool, error)
	Delete(ctx context.Context, userID, wishID string) (bool, error)
	Exists(ctx context.Context, userID, wishID string) (bool, error)
	CountByWish(ctx context.Context, wishID string) (int, error)
}

// Store bundles the repositories of one storage driver.
type Store struct {
	Tx     TxManager
	Wishes WishStore
	Likes  LikeStore
	close  func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func OpenStore(ctx context.Context, cfg *config.Config, logger *zlog.Zerolog) (*Store, error) {
	if cfg.Store.Driver == config.DriverMemory {
		logger.Warn().Msg("Using in-memory store, data is lost on restart")
		store := memory.NewStore()
		return &Store{
			Tx:     memory.NewTxManager(store),
			Wishes: memory.NewWishesRepository(store),
			Likes:  memory.NewLikesRepository(store),
		}, nil
	}

	dbOpts := &dbpg.Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}

	db, err := dbpg.New(cfg.DBDSN(), []string{}, dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Master.PingContext(ctx); err != nil {
		db.Master.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.Store.AutoMigrate {
		applied, err := postgres.Migrate(ctx, db.Master)
		if err != nil {
			db.Master.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info().Int("applied", applied).Msg("Database migrations applied")
	}

	return &Store{
		Tx:     postgres.NewTxManager(db.Master),
		Wishes: postgres.NewWishesRepository(db.Master),
		Likes:  postgres.NewLikesRepository(db.Master),
		close:  db.Master.Close,
	}, nil
}
