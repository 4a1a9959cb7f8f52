// Package api implements app.Runner for the API server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/pkg/admission"
	apphttp "github.com/chainsafe/wallet-settlement/pkg/app/http"
	"github.com/chainsafe/wallet-settlement/pkg/audit"
	"github.com/chainsafe/wallet-settlement/pkg/auth"
	bridgeservice "github.com/chainsafe/wallet-settlement/pkg/bridge/service"
	"github.com/chainsafe/wallet-settlement/pkg/broadcast"
	"github.com/chainsafe/wallet-settlement/pkg/chain"
	"github.com/chainsafe/wallet-settlement/pkg/config"
	"github.com/chainsafe/wallet-settlement/pkg/ethereum"
	"github.com/chainsafe/wallet-settlement/pkg/keylock"
	"github.com/chainsafe/wallet-settlement/pkg/monitor"
	"github.com/chainsafe/wallet-settlement/pkg/order"
	"github.com/chainsafe/wallet-settlement/pkg/orderstore"
	"github.com/chainsafe/wallet-settlement/pkg/pgutil"
	"github.com/chainsafe/wallet-settlement/pkg/pricing"
	"github.com/chainsafe/wallet-settlement/pkg/ratelimit"
	reconcilerpkg "github.com/chainsafe/wallet-settlement/pkg/reconciler"
	"github.com/chainsafe/wallet-settlement/pkg/redisutil"
	"github.com/chainsafe/wallet-settlement/pkg/risk"
	"github.com/chainsafe/wallet-settlement/pkg/signer"
	unlockservice "github.com/chainsafe/wallet-settlement/pkg/unlock/service"
	"github.com/chainsafe/wallet-settlement/pkg/unlockstore"
	"github.com/chainsafe/wallet-settlement/pkg/userstore"
	"github.com/chainsafe/wallet-settlement/pkg/webhook"
	webhookservice "github.com/chainsafe/wallet-settlement/pkg/webhook/service"
	withdrawalservice "github.com/chainsafe/wallet-settlement/pkg/withdrawal/service"
)

const (
	defaultRequestTimeout = 60 * time.Second
	// lockTTL bounds how long a crashed replica can hold a per-user lock
	lockTTL = 30 * time.Second
)

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.APIServerConfig
}

// NewServer initializes new api server.
func NewServer(cfg *config.APIServerConfig) *Server {
	return &Server{cfg: cfg}
}

// services are the HTTP facing services mounted by setupRouter
type services struct {
	bridge     bridgeservice.Service
	withdrawal withdrawalservice.Service
	unlock     unlockservice.Service
	webhook    webhookservice.Service
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting settlement API server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := s.openDB(logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	rdb, err := s.openRedis(logger)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	chains, err := s.chainSettings()
	if err != nil {
		return err
	}

	registry, err := ethereum.NewRegistry(ctx, cfg.Chains, logger)
	if err != nil {
		return fmt.Errorf("connect chains: %w", err)
	}
	defer registry.Close()

	prices, err := pricing.NewStatic(cfg.Pricing.USDPrices)
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}
	limits, err := risk.LimitsFromConfig(cfg.Risk)
	if err != nil {
		return fmt.Errorf("load risk limits: %w", err)
	}

	var locker keylock.Locker = keylock.NewLocalLocker()
	if rdb != nil {
		locker = keylock.NewRedisLocker(rdb, lockTTL, logger)
	}

	users := userstore.NewStore(db)
	sessions := unlockstore.NewStore(db)
	operations := orderstore.NewStore(db)
	recorder := audit.NewStore(db)

	machine := order.NewMachine(operations, recorder, logger)
	mon := monitor.New(operations, registry, machine, monitor.Config{
		PollInterval:  cfg.Monitor.PollInterval,
		OrderTimeout:  cfg.Monitor.OrderTimeout,
		Confirmations: chains.confirmations,
	}, logger)
	defer mon.Stop()

	coordinator := broadcast.NewCoordinator(registry, machine, mon, recorder, cfg.Broadcast.Timeout, logger)

	unlocks := unlockservice.NewService(sessions, users, recorder, cfg.Unlock, logger)
	engine := risk.NewEngine(users, users, operations, recorder, limits)
	pipeline := admission.New(
		users,
		signer.NewParser(chains.ids),
		unlocks,
		prices,
		engine,
		operations,
		locker,
		recorder,
		logger,
	)

	rec := reconcilerpkg.New(operations, sessions, coordinator, mon, machine, locker, reconcilerpkg.Config{
		BatchSize:     cfg.Reconciliation.BatchSize,
		OrderTimeout:  cfg.Monitor.OrderTimeout,
		DispatchGrace: cfg.Reconciliation.DispatchGrace,
	}, logger)
	s.runInitialReconcile(ctx, rec, logger)

	stopReconcile := s.startPeriodicReconcile(rec, logger)
	// Called explicitly after ServeAndWait returns so background work stops
	// before the deferred closes. The defer is a safety net.
	defer stopReconcile()

	svcs := &services{
		bridge: bridgeservice.NewLog(
			bridgeservice.NewService(pipeline, operations, coordinator, machine, mon, locker, logger), logger),
		withdrawal: withdrawalservice.NewLog(
			withdrawalservice.NewService(pipeline, operations, coordinator, machine, mon, locker, logger), logger),
		unlock:  unlockservice.NewLog(unlocks, logger),
		webhook: webhookservice.NewService(operations, machine, mon, locker, logger),
	}

	router := s.setupRouter(svcs, auth.NewJWTValidator(cfg.JWT), rdb, logger)

	err = apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)

	// Stop background work before deferred DB/client closes kick in.
	stopReconcile()
	mon.Stop()

	return err
}

func (s *Server) openDB(logger *zap.Logger) (*bun.DB, error) {
	db, err := pgutil.ConnectDB(&s.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	logger.Info("Connected to database",
		zap.String("host", s.cfg.Database.Host),
		zap.String("database", s.cfg.Database.Database),
	)
	return db, nil
}

// openRedis returns nil when redis is not configured. The server then locks
// in-process and does not rate limit, which is only safe for a single replica.
func (s *Server) openRedis(logger *zap.Logger) (redis.UniversalClient, error) {
	if !s.cfg.Redis.Enabled() {
		logger.Warn("Redis not configured: using in-process locks and no rate limiting")
		return nil, nil
	}
	client, err := redisutil.Connect(&s.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("Connected to redis", zap.Strings("addrs", s.cfg.Redis.Addrs))
	return client, nil
}

type chainSettings struct {
	ids           map[chain.Chain]int64
	confirmations map[chain.Chain]uint64
}

func (s *Server) chainSettings() (*chainSettings, error) {
	out := &chainSettings{
		ids:           make(map[chain.Chain]int64),
		confirmations: make(map[chain.Chain]uint64),
	}
	for name, c := range s.cfg.Chains {
		id, err := chain.Normalize(name)
		if err != nil {
			return nil, fmt.Errorf("chains.%s: %w", name, err)
		}
		if c.ChainID != 0 {
			out.ids[id] = c.ChainID
		}
		if c.Confirmations != 0 {
			out.confirmations[id] = c.Confirmations
		}
	}
	return out, nil
}

func (s *Server) runInitialReconcile(
	ctx context.Context,
	reconciler *reconcilerpkg.Reconciler,
	logger *zap.Logger,
) {
	if s.cfg.Reconciliation.InitialTimeout <= 0 {
		return
	}

	logger.Info("Running initial reconciliation",
		zap.Duration("timeout", s.cfg.Reconciliation.InitialTimeout),
	)

	startupCtx, cancel := context.WithTimeout(ctx, s.cfg.Reconciliation.InitialTimeout)
	defer cancel()

	if err := reconciler.ReconcileAll(startupCtx); err != nil {
		logger.Warn("Initial reconciliation failed (will retry periodically)", zap.Error(err))
		return
	}

	logger.Info("Initial reconciliation completed")
}

func (s *Server) startPeriodicReconcile(
	reconciler *reconcilerpkg.Reconciler,
	logger *zap.Logger,
) func() {
	if s.cfg.Reconciliation.Interval <= 0 {
		return func() {}
	}

	logger.Info("Starting periodic reconciliation", zap.Duration("interval", s.cfg.Reconciliation.Interval))
	reconciler.StartPeriodicReconciliation(s.cfg.Reconciliation.Interval)

	stopped := false
	return func() {
		if stopped {
			return
		}
		stopped = true
		reconciler.Stop()
	}
}

func (s *Server) setupRouter(
	svcs *services,
	validator auth.TokenValidator,
	rdb redis.UniversalClient,
	logger *zap.Logger,
) chi.Router {
	cfg := s.cfg

	timeout := cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apphttp.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Wallet-Unlock-Token"},
			ExposedHeaders:   []string{"Retry-After", "X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Provider callbacks authenticate with their own signature
	webhookservice.RegisterRoutes(r, svcs.webhook,
		webhook.NewVerifier(cfg.Webhook.BridgeSecret, cfg.Webhook.MaxSkew),
		webhook.NewVerifier(cfg.Webhook.FiatSecret, cfg.Webhook.MaxSkew),
		logger)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(validator, logger))
		if rdb != nil && cfg.RateLimit.Requests > 0 {
			limiter := ratelimit.NewLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
			r.Use(ratelimit.Middleware(limiter, userPostKey, logger))
		}

		bridgeservice.RegisterRoutes(r, svcs.bridge, logger)
		withdrawalservice.RegisterRoutes(r, svcs.withdrawal, logger)
		unlockservice.RegisterRoutes(r, svcs.unlock, logger)
	})

	return r
}

// userPostKey limits state changing requests per caller
func userPostKey(r *http.Request) string {
	if r.Method != http.MethodPost {
		return ""
	}
	info, ok := auth.AuthInfoFromContext(r.Context())
	if !ok {
		return ""
	}
	return info.UserID.String()
}
