package integration_test

import (
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-ticket-inventory/internal/app"
	"github.com/metinatakli/cinema-ticket-inventory/internal/lock"
	"github.com/metinatakli/cinema-ticket-inventory/internal/repository"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App         *app.Application
	DB          *pgxpool.Pool
	RedisClient *redis.Client
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	locker := lock.NewRedisLocker(redisClient,
		lock.WithTTL(cfg.Inventory.LockTTL),
		lock.WithRetry(200, 25*time.Millisecond),
	)

	application := app.NewApp(
		cfg,
		logger,
		repository.NewPostgresStore(db),
		repository.NewPostgresPaymentRepository(db),
		locker,
		app.NewSessionManager(redisClient),
	)

	return &TestApp{
		App:         application,
		DB:          db,
		RedisClient: redisClient,
	}, nil
}

func (a *TestApp) Close() {
	a.RedisClient.Close()
	a.DB.Close()
}
