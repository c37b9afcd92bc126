package integration_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	pgxstd "github.com/jackc/pgx/v5/stdlib"
	"github.com/metinatakli/cinema-ticket-inventory/internal/app"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"
)

const (
	migrationsSource = "file://../../migrations"
	startupDeadline  = 60 * time.Second
)

// testEnvironment is the Postgres and Redis pair an integration suite runs
// against. The schema is migrated before the environment is handed out.
type testEnvironment struct {
	postgres *postgres.PostgresContainer
	redis    *tcredis.RedisContainer
	dsn      string
	redisURL string
}

func startEnvironment(ctx context.Context) (*testEnvironment, error) {
	env := &testEnvironment{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		env.postgres, env.dsn, err = startPostgres(gctx)
		return err
	})

	g.Go(func() (err error) {
		env.redis, env.redisURL, err = startRedis(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		env.terminate()
		return nil, err
	}

	if err := migrateSchema(env.dsn); err != nil {
		env.terminate()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return env, nil
}

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	container, err := postgres.Run(ctx,
		dbImageName,
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithEnv(map[string]string{"POSTGRES_INITDB_ARGS": "--data-checksums"}),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
					return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
						dbUser, dbPassword, host, port.Port(), dbName)
				}),
			).WithDeadline(startupDeadline),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start DB container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, "", fmt.Errorf("failed to build DB connection string: %w", err)
	}

	return container, dsn, nil
}

func startRedis(ctx context.Context) (*tcredis.RedisContainer, string, error) {
	container, err := tcredis.Run(ctx, cacheImageName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start cache container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return container, "", fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		return container, "", fmt.Errorf("failed to get container port: %w", err)
	}

	return container, fmt.Sprintf("%s:%s", host, port.Port()), nil
}

// migrateSchema applies every migration under migrations/ through the pgx
// driver the service itself uses.
func migrateSchema(dsn string) error {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	db := pgxstd.OpenDB(*config)
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("pgx migration driver error: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsSource, "pgx", driver)
	if err != nil {
		return fmt.Errorf("migrate.New error: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// config points the service at the environment. The lock wait is generous
// so contention tests measure conflicts rather than slow containers.
func (e *testEnvironment) config() app.Config {
	return app.Config{
		Port: 3000,
		Env:  "test",
		DB: app.DBConfig{
			DSN:          e.dsn,
			MaxOpenConns: 25,
			MaxIdleTime:  2 * time.Minute,
		},
		Redis: app.RedisConfig{
			URL:          e.redisURL,
			MaxOpenConns: 10,
			MaxIdleConns: 10,
			MaxIdleTime:  2 * time.Minute,
		},
		Inventory: app.InventoryConfig{
			MaxRetries: 3,
			LockTTL:    30 * time.Second,
			LockWait:   5 * time.Second,
		},
	}
}

func (e *testEnvironment) terminate() {
	if e.postgres != nil {
		if err := testcontainers.TerminateContainer(e.postgres); err != nil {
			log.Printf("failed to terminate DB container: %s", err)
		}
	}

	if e.redis != nil {
		if err := testcontainers.TerminateContainer(e.redis); err != nil {
			log.Printf("failed to terminate cache container: %s", err)
		}
	}
}
