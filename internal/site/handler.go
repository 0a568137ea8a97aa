package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coocood/freecache"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/portfolio/internal/auth"
	"github.com/2beens/portfolio/internal/profile"
	"github.com/2beens/portfolio/internal/projects"
	"github.com/2beens/portfolio/internal/settings"
	"github.com/2beens/portfolio/internal/skills"
	"github.com/2beens/portfolio/internal/telemetry/metrics"
	"github.com/2beens/portfolio/internal/telemetry/tracing"
	"github.com/2beens/portfolio/internal/testimonials"
	"github.com/2beens/portfolio/pkg"
)

const megabyte = 1024 * 1024

type lister[E any] interface {
	All(ctx context.Context) ([]E, error)
}

type profileSource interface {
	Get(ctx context.Context) (*profile.Profile, error)
}

type settingsSource interface {
	GetOrCreate(ctx context.Context) (*settings.Settings, error)
}

type Sources struct {
	Profile      profileSource
	Settings     settingsSource
	Projects     lister[*projects.Project]
	Skills       lister[*skills.SkillCategory]
	Testimonials lister[*testimonials.Testimonial]
}

type HandlerParams struct {
	Sources Sources
	// OptionalSession attaches the admin session when one is present, it never rejects.
	OptionalSession mux.MiddlewareFunc
	CacheSizeMB     int
	CacheTTL        time.Duration
	MetricsManager  *metrics.Manager
}

// Handler serves the aggregated site content. Anonymous responses are cached until the next
// admin write or until they expire, admin responses never are.
type Handler struct {
	sources         Sources
	optionalSession mux.MiddlewareFunc
	cache           *freecache.Cache
	cacheTTLSeconds int
	metricsManager  *metrics.Manager
}

func NewHandler(params HandlerParams) *Handler {
	cacheSize := params.CacheSizeMB * megabyte
	if cacheSize <= 0 {
		cacheSize = 8 * megabyte
	}
	ttl := int(params.CacheTTL.Seconds())
	if ttl <= 0 {
		ttl = 60
	}

	return &Handler{
		sources:         params.Sources,
		optionalSession: params.OptionalSession,
		cache:           freecache.NewCache(cacheSize),
		cacheTTLSeconds: ttl,
		metricsManager:  params.MetricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	var h http.Handler = http.HandlerFunc(handler.handleContent)
	if handler.optionalSession != nil {
		h = handler.optionalSession(h)
	}
	router.Handle("/content", h).Methods("GET").Name("content")
}

// Invalidate drops every cached response. It is called after each admin write.
func (handler *Handler) Invalidate() {
	handler.cache.Clear()
	log.Trace("site content cache cleared")
}

func (handler *Handler) handleContent(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "siteHandler.content")
	defer span.End()

	section := r.URL.Query().Get("section")
	_, isAdmin := auth.SessionFromContext(ctx)
	span.SetAttributes(
		attribute.String("content.section", section),
		attribute.Bool("content.admin", isAdmin),
	)

	cacheKey := []byte("content::" + section)
	if !isAdmin {
		if cached, err := handler.cache.Get(cacheKey); err == nil {
			handler.countCache("hit")
			pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
			return
		} else if !errors.Is(err, freecache.ErrNotFound) {
			log.Errorf("get content from cache: %s", err)
		}
		handler.countCache("miss")
	}

	siteContent, err := handler.load(ctx)
	if err != nil {
		log.Errorf("load site content: %s", err)
		span.RecordError(err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to fetch content")
		return
	}

	if isAdmin {
		siteContent = siteContent.Admin()
	} else {
		siteContent = siteContent.Public()
	}

	var data any = siteContent
	if selected, found := siteContent.Section(section); found {
		data = selected
	}

	respBytes, err := json.Marshal(pkg.Response{Success: true, Data: data})
	if err != nil {
		log.Errorf("marshal site content: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to fetch content")
		return
	}

	if !isAdmin {
		if err := handler.cache.Set(cacheKey, respBytes, handler.cacheTTLSeconds); err != nil {
			log.Errorf("set content cache for section [%s]: %s", section, err)
		}
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respBytes)
}

func (handler *Handler) load(ctx context.Context) (*Content, error) {
	siteContent := &Content{}

	p, err := handler.sources.Profile.Get(ctx)
	switch {
	case err == nil:
		siteContent.Profile = p
	case !errors.Is(err, profile.ErrProfileNotFound):
		return nil, fmt.Errorf("get profile: %w", err)
	}

	s, err := handler.sources.Settings.GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	siteContent.Sections = s.Sections
	siteContent.Navigation = s.Navigation

	if siteContent.Projects, err = handler.sources.Projects.All(ctx); err != nil {
		return nil, fmt.Errorf("get projects: %w", err)
	}
	if siteContent.SkillCategories, err = handler.sources.Skills.All(ctx); err != nil {
		return nil, fmt.Errorf("get skills: %w", err)
	}
	if siteContent.Testimonials, err = handler.sources.Testimonials.All(ctx); err != nil {
		return nil, fmt.Errorf("get testimonials: %w", err)
	}

	return siteContent, nil
}

func (handler *Handler) countCache(result string) {
	if handler.metricsManager != nil {
		handler.metricsManager.CounterContentCache.WithLabelValues(result).Inc()
	}
}
