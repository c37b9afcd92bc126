package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
	"github.com/metinatakli/cinema-ticket-inventory/internal/inventory"
	"github.com/metinatakli/cinema-ticket-inventory/internal/lock"
	"github.com/metinatakli/cinema-ticket-inventory/internal/payment"
	"github.com/metinatakli/cinema-ticket-inventory/internal/repository"
	appvalidator "github.com/metinatakli/cinema-ticket-inventory/internal/validator"
	"github.com/metinatakli/cinema-ticket-inventory/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	redisLockRetryDelay = 25 * time.Millisecond
	shutdownTimeout     = 30 * time.Second
)

var (
	version = vcs.Version()
)

type CartService interface {
	GetOrCreateCart(ctx context.Context, cartID *int) (*domain.Cart, error)
	AddTicketToCart(ctx context.Context, cartID, ticketID, quantity int) (*domain.Cart, error)
	RemoveTicketFromCart(ctx context.Context, cartID, ticketID int) (*domain.Cart, error)
}

type TicketService interface {
	ProvisionTickets(ctx context.Context, showingID, count int, unitPrice decimal.Decimal) ([]domain.Ticket, error)
	ReleaseTickets(ctx context.Context, showingID, count int) (bool, error)
	EditTicket(ctx context.Context, ticketID int, price *decimal.Decimal, quantity *int) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, ticketID int) error
	GetTicket(ctx context.Context, ticketID int) (*domain.Ticket, error)
	ListTickets(ctx context.Context, showingID int) ([]domain.Ticket, error)
}

type PaymentService interface {
	ValidatePayment(ctx context.Context, req *domain.PaymentRequest) (*domain.PaymentRequest, error)
	GetPayment(ctx context.Context, id int) (*domain.PaymentRequest, error)
}

type Application struct {
	config         Config
	logger         *slog.Logger
	validator      *validator.Validate
	sessionManager *scs.SessionManager

	carts    CartService
	tickets  TicketService
	payments PaymentService
}

// NewApp wires the inventory core on top of the given store, payment
// repository and locker.
func NewApp(
	cfg Config,
	logger *slog.Logger,
	store domain.InventoryStore,
	paymentRepo domain.PaymentRepository,
	locker lock.Locker,
	sessionManager *scs.SessionManager) *Application {

	validate := appvalidator.NewValidator()

	var opts []inventory.GuardOption
	if cfg.Inventory.MaxRetries > 0 {
		opts = append(opts, inventory.WithMaxRetries(cfg.Inventory.MaxRetries))
	}
	if cfg.Inventory.LockWait > 0 {
		opts = append(opts, inventory.WithLockWait(cfg.Inventory.LockWait))
	}

	guard := inventory.NewGuard(locker, store, logger, opts...)

	return &Application{
		config:         cfg,
		logger:         logger,
		validator:      validate,
		sessionManager: sessionManager,
		carts:          inventory.NewCartManager(store, guard, logger),
		tickets:        inventory.NewReservationEngine(store, guard, logger),
		payments:       payment.NewValidator(validate, paymentRepo, logger),
	}
}

func Run() error {
	cfg, displayVersion, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger, logFile := newLogger(cfg, os.Stdout, cfg.OtelCollectorUrl != "")
	defer logFile.Close()

	shutdownTelemetry, err := (&Application{config: cfg, logger: logger}).InitTelemetry(context.Background())
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	var (
		store       domain.InventoryStore
		paymentRepo domain.PaymentRepository
		locker      lock.Locker
		redisClient *redis.Client
	)

	if cfg.DB.DSN != "" {
		db, err := NewDatabasePool(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		store = repository.NewPostgresStore(db)
		paymentRepo = repository.NewPostgresPaymentRepository(db)
	} else {
		memStore := repository.NewMemoryStore()
		seedShowings(memStore, cfg.Inventory.MemoryShowings)

		logger.Warn("no database configured, using the in-memory inventory store", "showings", cfg.Inventory.MemoryShowings)

		store = memStore
		paymentRepo = repository.NewMemoryPaymentRepository(memStore)
	}

	if cfg.Redis.URL != "" {
		redisClient, err = NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		locker = lock.NewRedisLocker(redisClient,
			lock.WithTTL(cfg.Inventory.LockTTL),
			lock.WithRetry(int(cfg.Inventory.LockWait/redisLockRetryDelay), redisLockRetryDelay),
		)
	} else {
		logger.Warn("no redis configured, inventory locks only cover this instance")

		locker = lock.NewLocalLocker()
	}

	app := NewApp(cfg, logger, store, paymentRepo, locker, NewSessionManager(redisClient))

	return app.run()
}

func seedShowings(store *repository.MemoryStore, n int) {
	startsAt := time.Now().Truncate(time.Hour).Add(24 * time.Hour)

	for i := 1; i <= n; i++ {
		store.AddShowing(domain.Showing{
			ID:         i,
			MovieID:    i,
			MovieTitle: fmt.Sprintf("Movie %d", i),
			StartsAt:   startsAt.Add(time.Duration(i) * 3 * time.Hour),
			Location:   fmt.Sprintf("Hall %d", i),
		})
	}
}

// NewSessionManager keeps sessions in redis when a client is given and in
// process memory otherwise.
func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	if client != nil {
		sessionManager.Store = goredisstore.New(client)
	}

	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to instrument redis client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", app.config.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	return app.serveOn(ctx, ln)
}

// serveOn answers requests on ln until ctx is done, then gives in-flight
// requests up to shutdownTimeout to finish.
func (app *Application) serveOn(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	addr := ln.Addr().String()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info("starting server", "addr", addr, "env", app.config.Env, "version", version)

		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutting down server", "addr", addr)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(middleware.RequestID)
	r.Use(app.logRequest)
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)

	r.Get("/health", app.GetHealth)

	r.Route("/carts", func(r chi.Router) {
		r.Post("/", app.CreateCartHandler)
		r.Get("/current", app.GetCurrentCartHandler)
		r.Get("/{cartId}", app.GetCartHandler)
		r.Post("/{cartId}/items", app.AddCartItemHandler)
		r.Delete("/{cartId}/items/{ticketId}", app.RemoveCartItemHandler)
	})

	r.Route("/showings/{showingId}/tickets", func(r chi.Router) {
		r.Get("/", app.ListTicketsHandler)
		r.Post("/", app.ProvisionTicketsHandler)
		r.Post("/release", app.ReleaseTicketsHandler)
	})

	r.Route("/tickets/{ticketId}", func(r chi.Router) {
		r.Get("/", app.GetTicketHandler)
		r.Patch("/", app.UpdateTicketHandler)
		r.Delete("/", app.DeleteTicketHandler)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Post("/", app.CreatePaymentHandler)
		r.Get("/{paymentId}", app.GetPaymentHandler)
	})

	return r
}
