package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/portfolio/internal/telemetry/metrics"
	"github.com/2beens/portfolio/internal/telemetry/tracing"
	"github.com/2beens/portfolio/pkg"
)

type HandlerParams[E Entity] struct {
	// Name is the collection route segment and the entity-named key accepted by reorder, e.g. "projects".
	Name string
	// Label is used in response messages, e.g. "Project".
	Label string
	Repo  Repo[E]
	New   func() E
	// UniqueFields maps unique constraint names to the field reported in the validation error.
	UniqueFields map[string]string
	// Gate protects every admin route.
	Gate           mux.MiddlewareFunc
	MetricsManager *metrics.Manager
	// OnChange is called after every successful admin write.
	OnChange func()
}

// Handler serves the public projection and the admin CRUD of one ordered collection.
type Handler[E Entity] struct {
	name           string
	label          string
	repo           Repo[E]
	newEntity      func() E
	uniqueFields   map[string]string
	gate           mux.MiddlewareFunc
	metricsManager *metrics.Manager
	onChange       func()
}

func NewHandler[E Entity](params HandlerParams[E]) *Handler[E] {
	label := params.Label
	if label == "" {
		label = params.Name
	}
	return &Handler[E]{
		name:           params.Name,
		label:          label,
		repo:           params.Repo,
		newEntity:      params.New,
		uniqueFields:   params.UniqueFields,
		gate:           params.Gate,
		metricsManager: params.MetricsManager,
		onChange:       params.OnChange,
	}
}

func (handler *Handler[E]) SetupRoutes(router *mux.Router) {
	base := "/" + handler.name
	admin := base + "/admin"

	router.HandleFunc(base, handler.handlePublicList).Methods("GET").Name(handler.name)
	router.Handle(admin, handler.guarded(handler.handleAdminList)).
		Methods("GET", "OPTIONS").Name(handler.name + "-admin-list")
	router.Handle(admin, handler.guarded(handler.handleCreate)).
		Methods("POST", "OPTIONS").Name(handler.name + "-create")
	router.Handle(admin+"/reorder", handler.guarded(handler.handleReorder)).
		Methods("PATCH", "OPTIONS").Name(handler.name + "-reorder")
	router.Handle(admin+"/{id:[0-9]+}", handler.guarded(handler.handleUpdate)).
		Methods("PUT", "OPTIONS").Name(handler.name + "-update")
	router.Handle(admin+"/{id:[0-9]+}", handler.guarded(handler.handleDelete)).
		Methods("DELETE", "OPTIONS").Name(handler.name + "-delete")
	router.Handle(admin+"/{id:[0-9]+}/toggle", handler.guarded(handler.handleToggle)).
		Methods("PATCH", "OPTIONS").Name(handler.name + "-toggle")
}

func (handler *Handler[E]) guarded(h http.HandlerFunc) http.Handler {
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

func (handler *Handler[E]) handlePublicList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), handler.name+"Handler.publicList")
	defer span.End()

	all, err := handler.repo.All(ctx)
	if err != nil {
		log.Errorf("%s, get all: %s", handler.name, err)
		pkg.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get %s", handler.name))
		return
	}

	projected := Project(all)
	span.SetAttributes(attribute.Int("records.visible", len(projected)))
	pkg.WriteSuccess(w, http.StatusOK, projected, "")
}

func (handler *Handler[E]) handleAdminList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), handler.name+"Handler.adminList")
	defer span.End()

	all, err := handler.repo.All(ctx)
	if err != nil {
		log.Errorf("%s, admin get all: %s", handler.name, err)
		pkg.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get %s", handler.name))
		return
	}

	pkg.WriteSuccess(w, http.StatusOK, SortByOrder(all), "")
}

func (handler *Handler[E]) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), handler.name+"Handler.create")
	defer span.End()

	entity := handler.newEntity()
	if err := json.NewDecoder(r.Body).Decode(entity); err != nil {
		log.Tracef("%s create, unmarshal json: %s", handler.name, err)
		pkg.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	entity.SetID(0)

	if fieldErrors := Validate(entity); len(fieldErrors) > 0 {
		pkg.WriteValidationError(w, fieldErrors)
		return
	}

	if err := handler.repo.Add(ctx, entity); err != nil {
		handler.writeStoreError(w, "create", err)
		return
	}

	span.SetAttributes(attribute.Int("record.id", entity.GetID()))
	handler.changed("create")
	pkg.WriteSuccess(w, http.StatusCreated, entity, handler.label+" created successfully")
}

func (handler *Handler[E]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), handler.name+"Handler.update")
	defer span.End()

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("record.id", id))

	entity, err := handler.repo.Get(ctx, id)
	if err != nil {
		handler.writeStoreError(w, "update", err)
		return
	}

	// fields missing in the body keep their stored values
	if err := json.NewDecoder(r.Body).Decode(entity); err != nil {
		log.Tracef("%s update, unmarshal json: %s", handler.name, err)
		pkg.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	entity.SetID(id)

	if fieldErrors := Validate(entity); len(fieldErrors) > 0 {
		pkg.WriteValidationError(w, fieldErrors)
		return
	}

	if err := handler.repo.Update(ctx, entity); err != nil {
		handler.writeStoreError(w, "update", err)
		return
	}

	handler.changed("update")
	pkg.WriteSuccess(w, http.StatusOK, entity, handler.label+" updated successfully")
}

func (handler *Handler[E]) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), handler.name+"Handler.delete")
	defer span.End()

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("record.id", id))

	if err := handler.repo.Delete(ctx, id); err != nil {
		handler.writeStoreError(w, "delete", err)
		return
	}

	handler.changed("delete")
	pkg.WriteSuccess(w, http.StatusOK, nil, handler.label+" deleted successfully")
}

func (handler *Handler[E]) handleToggle(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), handler.name+"Handler.toggle")
	defer span.End()

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("record.id", id))

	entity, err := handler.repo.ToggleVisible(ctx, id)
	if err != nil {
		handler.writeStoreError(w, "toggle", err)
		return
	}

	state := "deactivated"
	if entity.IsVisible() {
		state = "activated"
	}

	handler.changed("toggle")
	pkg.WriteSuccess(w, http.StatusOK, entity, fmt.Sprintf("%s %s successfully", handler.label, state))
}

func (handler *Handler[E]) handleReorder(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), handler.name+"Handler.reorder")
	defer span.End()

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Tracef("%s reorder, unmarshal json: %s", handler.name, err)
		pkg.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	raw, found := body["items"]
	if !found {
		raw, found = body[handler.name]
	}
	var items []OrderUpdate
	if found {
		if err := json.Unmarshal(raw, &items); err != nil {
			log.Tracef("%s reorder, unmarshal items: %s", handler.name, err)
			pkg.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if fieldErrors := ValidateReorder(items); len(fieldErrors) > 0 {
		pkg.WriteValidationError(w, fieldErrors)
		return
	}

	result := Reorder(ctx, handler.repo, items)
	span.SetAttributes(
		attribute.Int("reorder.updated", len(result.Updated)),
		attribute.Int("reorder.failed", len(result.Failed)),
	)

	if len(result.Updated) > 0 {
		handler.changed("reorder")
	}

	if result.OK() {
		pkg.WriteSuccess(w, http.StatusOK, result, fmt.Sprintf("%s reordered successfully", handler.name))
		return
	}

	pkg.WriteJSON(w, http.StatusMultiStatus, pkg.Response{
		Success: false,
		Data:    result,
		Message: fmt.Sprintf("%d of %d %s reordered", len(result.Updated), len(items), handler.name),
		Error:   "Some items could not be reordered",
		Errors:  result.FieldErrors(),
	})
}

func (handler *Handler[E]) writeStoreError(w http.ResponseWriter, action string, err error) {
	if errors.Is(err, ErrNotFound) {
		pkg.WriteError(w, http.StatusNotFound, handler.label+" not found")
		return
	}

	if constraint, ok := pkg.UniqueViolationConstraint(err); ok {
		if field, known := handler.uniqueFields[constraint]; known {
			pkg.WriteValidationError(w, []pkg.FieldError{{Field: field, Message: field + " already exists"}})
			return
		}
	}

	log.Errorf("%s %s: %s", handler.name, action, err)
	pkg.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to %s %s", action, handler.label))
}

func (handler *Handler[E]) changed(action string) {
	if handler.metricsManager != nil {
		handler.metricsManager.CounterContentChanges.WithLabelValues(handler.name, action).Inc()
	}
	if handler.onChange != nil {
		handler.onChange()
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}
