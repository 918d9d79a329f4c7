package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"

	"github.com/2beens/serjblog/internal/auth"
	"github.com/2beens/serjblog/internal/config"
	"github.com/2beens/serjblog/internal/db"
	"github.com/2beens/serjblog/internal/middleware"
	"github.com/2beens/serjblog/internal/misc"
	"github.com/2beens/serjblog/internal/posts"
	"github.com/2beens/serjblog/internal/telemetry/metrics"
	"github.com/2beens/serjblog/internal/telemetry/tracing"
	"github.com/2beens/serjblog/internal/users"
	"github.com/2beens/serjblog/pkg"
)

type usersStore interface {
	Add(ctx context.Context, user *users.User) error
	Get(ctx context.Context, id int) (*users.User, error)
	GetByEmail(ctx context.Context, email string) (*users.User, error)
}

type postsStore interface {
	All(ctx context.Context) ([]*posts.Post, error)
	Get(ctx context.Context, id int) (*posts.Post, error)
	TitleTaken(ctx context.Context, title string, excludeID int) (bool, error)
	Add(ctx context.Context, post *posts.Post) error
	Update(ctx context.Context, id int, title, subtitle, imgURL, body string) error
	Delete(ctx context.Context, id int) error
	AddComment(ctx context.Context, comment *posts.Comment) error
	Comments(ctx context.Context, postID int) ([]*posts.Comment, error)
}

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	usersRepo      usersStore
	postsRepo      postsStore
	sessions       *auth.SessionManager
	rateLimiter    middleware.RequestRateLimiter
	trustedProxies *pkg.TrustedProxies

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	SecretKey               string
	DatabaseURL             string
	RedisPassword           string
	VersionInfo             string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	if params.SecretKey == "" {
		return nil, errors.New("secret key not set")
	}

	trustedProxies, err := pkg.NewTrustedProxies(params.Config.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "blog-service")
	if err != nil {
		return nil, err
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		ConnString:     params.Config.PostgresConnString(params.DatabaseURL),
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		otelShutdown()
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	if err := db.EnsureSchema(ctx, dbPool); err != nil {
		dbPool.Close()
		otelShutdown()
		return nil, err
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("blog", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0) // set to 1 once serving

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})
	if params.HoneycombTracingEnabled {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	sessions := auth.NewSessionManager(
		auth.NewAuthService(auth.DefaultTTL, rdb),
		auth.NewCookieSigner(params.SecretKey),
		params.Config.SecureCookies,
	)

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		redisClient: rdb,
		versionInfo: params.VersionInfo,

		usersRepo:      users.NewRepo(dbPool),
		postsRepo:      posts.NewRepo(dbPool),
		sessions:       sessions,
		rateLimiter:    redis_rate.NewLimiter(rdb),
		trustedProxies: trustedProxies,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("blog-router"))

	postsHandler := posts.NewHandler(s.postsRepo, s.sessions, s.metricsManager)
	postsHandler.SetupRoutes(r)

	authHandler := auth.NewHandler(s.usersRepo, s.sessions, s.metricsManager)
	authHandler.SetupRoutes(
		r,
		middleware.RateLimit(
			s.rateLimiter,
			"login",
			s.config.LoginRateLimitAllowedPerMin,
			s.trustedProxies,
			s.metricsManager,
		),
	)

	miscHandler := misc.NewHandler(s.sessions, s.versionInfo)
	miscHandler.SetupRoutes(r)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.DrainAndCloseRequest())
	r.Use(s.sessions.ResolveUser(s.usersRepo.Get))

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", otelhttp.NewHandler(
		promhttp.InstrumentMetricHandler(
			s.promRegistry,
			promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
		),
		"metrics",
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	var shutdownErr error
	if s.httpServer != nil {
		shutdownErr = multierr.Append(shutdownErr, s.httpServer.Shutdown(ctx))
		log.Warnln("server shut down")
	}
	if s.metricsHttpServer != nil {
		shutdownErr = multierr.Append(shutdownErr, s.metricsHttpServer.Shutdown(ctx))
		log.Warnln("metrics server shut down")
	}

	if s.otelShutdown != nil {
		s.otelShutdown()
		log.Trace("otel shut down ...")
	}

	if s.redisClient != nil {
		shutdownErr = multierr.Append(shutdownErr, s.redisClient.Close())
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	for _, err := range multierr.Errors(shutdownErr) {
		log.Errorf(" >>> graceful shutdown: %s", err)
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}
