package misc

import (
	"context"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/portfolio/internal/telemetry/tracing"
	"github.com/2beens/portfolio/pkg"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusDown     = "down"

	healthCheckTimeout = 2 * time.Second
)

type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type HealthStatus struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Redis     string    `json:"redis"`
	Timestamp time.Time `json:"timestamp"`
}

type Handler struct {
	versionInfo string
	db          dbPinger
	redis       redisPinger
	now         func() time.Time
}

func NewHandler(versionInfo string, db dbPinger, redisClient redisPinger) *Handler {
	return &Handler{
		versionInfo: versionInfo,
		db:          db,
		redis:       redisClient,
		now:         time.Now,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")
	mainRouter.HandleFunc("/health", handler.handleHealth).Methods("GET").Name("health")
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}

// handleHealth reports 503 when any dependency is unreachable.
func (handler *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.health")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	health := HealthStatus{
		Status:    statusOK,
		Database:  statusOK,
		Redis:     statusOK,
		Timestamp: handler.now().UTC(),
	}

	if handler.db != nil {
		if err := handler.db.Ping(ctx); err != nil {
			log.Errorf("health, ping db: %s", err)
			health.Database = statusDown
			health.Status = statusDegraded
		}
	}

	if handler.redis != nil {
		if err := handler.redis.Ping(ctx).Err(); err != nil {
			log.Errorf("health, ping redis: %s", err)
			health.Redis = statusDown
			health.Status = statusDegraded
		}
	}

	span.SetAttributes(attribute.String("health.status", health.Status))

	if health.Status != statusOK {
		pkg.WriteJSON(w, http.StatusServiceUnavailable, pkg.Response{
			Success: false,
			Data:    health,
			Error:   "Service degraded",
		})
		return
	}

	pkg.WriteSuccess(w, http.StatusOK, health, "")
}
