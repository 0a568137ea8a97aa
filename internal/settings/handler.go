package settings

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/portfolio/internal/telemetry/metrics"
	"github.com/2beens/portfolio/internal/telemetry/tracing"
	"github.com/2beens/portfolio/pkg"
)

type settingsRepo interface {
	GetOrCreate(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}

// updateRequest replaces only the lists present in the body.
type updateRequest struct {
	Sections   *[]Section        `json:"sections"`
	Navigation *[]NavigationItem `json:"navigation"`
}

type Handler struct {
	repo           settingsRepo
	gate           mux.MiddlewareFunc
	metricsManager *metrics.Manager
	onChange       func()
}

func NewHandler(
	repo settingsRepo,
	gate mux.MiddlewareFunc,
	metricsManager *metrics.Manager,
	onChange func(),
) *Handler {
	return &Handler{
		repo:           repo,
		gate:           gate,
		metricsManager: metricsManager,
		onChange:       onChange,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/settings", handler.handleGet).Methods("GET").Name("settings")
	router.Handle("/settings/admin", handler.guarded(handler.handleAdminGet)).Methods("GET", "OPTIONS").Name("settings-admin")
	router.Handle("/settings/admin", handler.guarded(handler.handleUpdate)).Methods("PUT", "OPTIONS").Name("settings-update")
}

func (handler *Handler) guarded(h http.HandlerFunc) http.Handler {
	var next http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h(w, r)
	})
	if handler.gate != nil {
		next = handler.gate(next)
	}
	return next
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "settingsHandler.get")
	defer span.End()

	s, err := handler.repo.GetOrCreate(ctx)
	if err != nil {
		log.Errorf("get settings: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to get settings")
		return
	}

	pkg.WriteSuccess(w, http.StatusOK, s.Public(), "")
}

func (handler *Handler) handleAdminGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "settingsHandler.adminGet")
	defer span.End()

	s, err := handler.repo.GetOrCreate(ctx)
	if err != nil {
		log.Errorf("admin get settings: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to get settings")
		return
	}

	pkg.WriteSuccess(w, http.StatusOK, s, "")
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "settingsHandler.update")
	defer span.End()

	var updateReq updateRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		log.Tracef("update settings, unmarshal json: %s", err)
		pkg.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s, err := handler.repo.GetOrCreate(ctx)
	if err != nil {
		log.Errorf("update settings, get current: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	if updateReq.Sections != nil {
		s.Sections = *updateReq.Sections
	}
	if updateReq.Navigation != nil {
		s.Navigation = *updateReq.Navigation
	}

	if fieldErrors := Validate(s); len(fieldErrors) > 0 {
		pkg.WriteValidationError(w, fieldErrors)
		return
	}

	if err := handler.repo.Save(ctx, s); err != nil {
		log.Errorf("update settings: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterContentChanges.WithLabelValues("settings", "update").Inc()
	}
	if handler.onChange != nil {
		handler.onChange()
	}

	pkg.WriteSuccess(w, http.StatusOK, s, "Settings updated successfully")
}
