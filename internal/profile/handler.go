package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/portfolio/internal/content"
	"github.com/2beens/portfolio/internal/telemetry/metrics"
	"github.com/2beens/portfolio/internal/telemetry/tracing"
	"github.com/2beens/portfolio/pkg"
)

type profileRepo interface {
	Get(ctx context.Context) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
}

type Handler struct {
	repo           profileRepo
	gate           mux.MiddlewareFunc
	metricsManager *metrics.Manager
	onChange       func()
}

func NewHandler(
	repo profileRepo,
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
	router.HandleFunc("/profile", handler.handleGet).Methods("GET").Name("profile")
	router.Handle("/profile/admin", handler.guarded(handler.handleAdminGet)).Methods("GET", "OPTIONS").Name("profile-admin")
	router.Handle("/profile/admin", handler.guarded(handler.handleUpdate)).Methods("PUT", "OPTIONS").Name("profile-update")
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
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "profileHandler.get")
	defer span.End()

	p, err := handler.repo.Get(ctx)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		log.Errorf("get profile: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}
	if p == nil || !p.Active {
		pkg.WriteError(w, http.StatusNotFound, "Profile not found")
		return
	}

	pkg.WriteSuccess(w, http.StatusOK, p, "")
}

func (handler *Handler) handleAdminGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "profileHandler.adminGet")
	defer span.End()

	p, err := handler.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			pkg.WriteError(w, http.StatusNotFound, "Profile not found")
			return
		}
		log.Errorf("admin get profile: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	pkg.WriteSuccess(w, http.StatusOK, p, "")
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "profileHandler.update")
	defer span.End()

	p, err := handler.repo.Get(ctx)
	switch {
	case errors.Is(err, ErrProfileNotFound):
		p = New()
	case err != nil:
		log.Errorf("update profile, get current: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(p); err != nil {
		log.Tracef("update profile, unmarshal json: %s", err)
		pkg.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if fieldErrors := content.Validate(p); len(fieldErrors) > 0 {
		pkg.WriteValidationError(w, fieldErrors)
		return
	}

	if err := handler.repo.Upsert(ctx, p); err != nil {
		log.Errorf("update profile: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterContentChanges.WithLabelValues("profile", "update").Inc()
	}
	if handler.onChange != nil {
		handler.onChange()
	}

	pkg.WriteSuccess(w, http.StatusOK, p, "Profile updated successfully")
}
