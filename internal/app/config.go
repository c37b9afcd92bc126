package app

import (
	"flag"
	"time"
)

type Config struct {
	Port             int
	Env              string
	DB               DBConfig
	Redis            RedisConfig
	Inventory        InventoryConfig
	Log              LogConfig
	OtelCollectorUrl string
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type InventoryConfig struct {
	MaxRetries int
	LockTTL    time.Duration
	LockWait   time.Duration
	// MemoryShowings is the number of showings seeded into the in-memory
	// store when no DSN is configured.
	MemoryShowings int
}

type LogConfig struct {
	Level string
	File  string
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, bool, error) {
	var cfg Config

	fs.IntVar(&cfg.Port, "port", 3000, "server port")
	fs.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")

	fs.StringVar(&cfg.DB.DSN, "db-dsn", "", "PostgreSQL DSN (in-memory store when empty)")
	fs.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	fs.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	fs.StringVar(&cfg.Redis.URL, "redis-url", "", "Redis URL (in-process locks and sessions when empty)")
	fs.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	fs.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	fs.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	fs.IntVar(&cfg.Inventory.MaxRetries, "inventory-max-retries", 3, "Retries after a lost optimistic update before reporting a conflict")
	fs.DurationVar(&cfg.Inventory.LockTTL, "inventory-lock-ttl", 30*time.Second, "Expiry of distributed inventory locks")
	fs.DurationVar(&cfg.Inventory.LockWait, "inventory-lock-wait", 2*time.Second, "How long an operation waits for inventory locks")
	fs.IntVar(&cfg.Inventory.MemoryShowings, "memory-showings", 3, "Showings seeded into the in-memory store")

	fs.StringVar(&cfg.Log.Level, "log-level", "info", "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.Log.File, "log-file", "", "Also write JSON logs to this size-rotated file")

	fs.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector gRPC endpoint")

	displayVersion := fs.Bool("version", false, "Display version and exit")

	err := fs.Parse(args)
	if err != nil {
		return Config{}, false, err
	}

	return cfg, *displayVersion, nil
}
