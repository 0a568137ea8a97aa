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

	"github.com/2beens/portfolio/internal/auth"
	"github.com/2beens/portfolio/internal/config"
	"github.com/2beens/portfolio/internal/db"
	"github.com/2beens/portfolio/internal/middleware"
	"github.com/2beens/portfolio/internal/misc"
	"github.com/2beens/portfolio/internal/profile"
	"github.com/2beens/portfolio/internal/projects"
	"github.com/2beens/portfolio/internal/settings"
	"github.com/2beens/portfolio/internal/site"
	"github.com/2beens/portfolio/internal/skills"
	"github.com/2beens/portfolio/internal/telemetry/metrics"
	"github.com/2beens/portfolio/internal/telemetry/tracing"
	"github.com/2beens/portfolio/internal/testimonials"
	"github.com/2beens/portfolio/pkg"
)

const (
	adminPagePrefix = "/admin"
	adminLoginPath  = "/admin/login"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	verifier auth.CredentialsVerifier
	sessions *auth.SessionManager
	cookies  *auth.CookieTransport

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	SessionSecret           string
	AdminUsername           string
	AdminPasswordHash       string
	AdminPlainPassword      string // development only
	PostgresPassword        string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, dbPool); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("migrate db: %w", err)
		}
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("portfolio", "backend", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.RedisPassword,
		DB:       0,
	})
	if params.HoneycombTracingEnabled {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	closeConnections := func() {
		if err := rdb.Close(); err != nil {
			log.Errorf("close redis client: %s", err)
		}
		dbPool.Close()
	}

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	verifier, err := auth.NewCredentialsVerifier(auth.VerifierParams{
		Source:        cfg.CredentialsSource,
		Production:    cfg.IsProduction(),
		Store:         auth.NewAdminRepo(dbPool),
		Username:      params.AdminUsername,
		PasswordHash:  params.AdminPasswordHash,
		PlainPassword: params.AdminPlainPassword,
	})
	if err != nil {
		closeConnections()
		return nil, fmt.Errorf("credentials verifier: %w", err)
	}

	sessions, err := auth.NewSessionManager(auth.SessionManagerParams{
		Secret:     params.SessionSecret,
		TTL:        cfg.SessionTTL.Duration,
		Production: cfg.IsProduction(),
	})
	if err != nil {
		closeConnections()
		return nil, fmt.Errorf("session manager: %w", err)
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "portfolio-backend")
	if err != nil {
		closeConnections()
		return nil, err
	}

	return &Server{
		config:      cfg,
		dbPool:      dbPool,
		redisClient: rdb,
		versionInfo: params.VersionInfo,

		verifier: verifier,
		sessions: sessions,
		cookies:  auth.NewCookieTransport(cfg.IsProduction(), sessions.TTL()),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("portfolio-router"))

	gate := middleware.NewGate(s.sessions, s.cookies, middleware.GateParams{
		PagePrefix:     adminPagePrefix,
		LoginPath:      adminLoginPath,
		PublicPrefixes: []string{
			adminPagePrefix + "/static/",
			adminPagePrefix + "/assets/",
			adminPagePrefix + "/_next/",
			adminPagePrefix + "/favicon",
		},
	})

	authHandler := auth.NewHandler(s.verifier, s.sessions, s.cookies, s.metricsManager)
	authHandler.SetupRoutes(r, auth.RouteMiddlewares{
		RequireSession:  gate.API(),
		OptionalSession: gate.Optional(),
		LoginRateLimit: middleware.RateLimit(
			redis_rate.NewLimiter(s.redisClient),
			"login",
			s.config.LoginRateLimitAllowedPerMin,
			s.config.TrustedProxyNetworks(),
			s.metricsManager,
		),
	})

	profileRepo := profile.NewRepo(s.dbPool)
	settingsRepo := settings.NewRepo(s.dbPool)
	projectsRepo := projects.NewRepo(s.dbPool)
	skillsRepo := skills.NewRepo(s.dbPool)
	testimonialsRepo := testimonials.NewRepo(s.dbPool)

	siteHandler := site.NewHandler(site.HandlerParams{
		Sources: site.Sources{
			Profile:      profileRepo,
			Settings:     settingsRepo,
			Projects:     projectsRepo,
			Skills:       skillsRepo,
			Testimonials: testimonialsRepo,
		},
		OptionalSession: gate.Optional(),
		CacheSizeMB:     s.config.ContentCacheSizeMB,
		CacheTTL:        s.config.ContentCacheTTL.Duration,
		MetricsManager:  s.metricsManager,
	})
	siteHandler.SetupRoutes(r)

	// every admin write drops the cached public content
	onChange := siteHandler.Invalidate

	projects.NewHandler(projectsRepo, gate.API(), s.metricsManager, onChange).SetupRoutes(r)
	skills.NewHandler(skillsRepo, gate.API(), s.metricsManager, onChange).SetupRoutes(r)
	testimonials.NewHandler(testimonialsRepo, gate.API(), s.metricsManager, onChange).SetupRoutes(r)
	profile.NewHandler(profileRepo, gate.API(), s.metricsManager, onChange).SetupRoutes(r)
	settings.NewHandler(settingsRepo, gate.API(), s.metricsManager, onChange).SetupRoutes(r)

	misc.NewHandler(s.versionInfo, s.dbPool, s.redisClient).SetupRoutes(r)

	if err := s.setupAdminUI(r, gate); err != nil {
		return nil, err
	}

	// all the rest - unhandled paths
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteError(w, http.StatusNotFound, "Not found")
	})

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.SecurityHeaders(s.config.IsProduction()))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

// setupAdminUI serves the built admin pages, when configured, behind the page gate.
func (s *Server) setupAdminUI(r *mux.Router, gate *middleware.Gate) error {
	if s.config.AdminUIDir == "" {
		log.Debugln("admin ui dir not set, admin pages not served")
		return nil
	}

	exists, err := pkg.PathExists(s.config.AdminUIDir, true)
	if err != nil {
		return fmt.Errorf("check admin ui dir: %w", err)
	}
	if !exists {
		log.Warnf("admin ui dir [%s] does not exist, admin pages not served", s.config.AdminUIDir)
		return nil
	}

	fileServer := http.StripPrefix(adminPagePrefix, http.FileServer(http.Dir(s.config.AdminUIDir)))
	r.PathPrefix(adminPagePrefix).
		Handler(gate.Pages()(fileServer)).
		Methods("GET", "HEAD").
		Name("admin-ui")

	log.Debugf("serving admin ui from [%s]", s.config.AdminUIDir)
	return nil
}

func (s *Server) Serve(host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
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

	s.otelShutdown()
	log.Trace("otel shut down ...")

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
