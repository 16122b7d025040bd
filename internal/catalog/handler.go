package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campushub/campushub/internal/identity"
	"github.com/campushub/campushub/internal/platform/httpx"
)

// Handler exposes the public catalog. Reads are open; writes need system
// elevation.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/categories", h.listCategories)
	r.Post("/categories", h.createCategory)
	r.Delete("/categories/{id}", h.deleteCategory)

	r.Get("/events", h.listEvents)
	r.Get("/events/{id}", h.getEvent)
	r.Post("/events", h.createEvent)
	r.Put("/events/{id}/publish", h.publishEvent)
	r.Delete("/events/{id}", h.deleteEvent)

	r.Get("/stories", h.listStories)
	r.Post("/stories", h.createStory)
	r.Delete("/stories/{id}", h.deleteStory)

	r.Get("/settings", h.listSettings)
	r.Get("/settings/{key}", h.getSetting)
	r.Put("/settings/{key}", h.putSetting)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListCategories(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	if !h.requireElevated(w, r) {
		return
	}
	var req CreateCategoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.service.CreateCategory(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if !h.requireElevated(w, r) {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	includeUnpublished := actor != nil && actor.HasSystemElevation()
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	out, err := h.service.ListEvents(r.Context(), includeUnpublished, limit, offset)
	if err != nil {
		h.logger.Error("list events", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	event, err := h.service.GetEvent(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor := identity.ActorFromContext(r.Context())
	if !event.IsPublished && (actor == nil || !actor.HasSystemElevation()) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "event not found")
		return
	}
	httpx.JSON(w, http.StatusOK, event)
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	if !h.requireElevated(w, r) {
		return
	}
	var req CreateEventRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.service.CreateEvent(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

type publishRequest struct {
	Published bool `json:"published"`
}

func (h *Handler) publishEvent(w http.ResponseWriter, r *http.Request) {
	if !h.requireElevated(w, r) {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req publishRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	out, err := h.service.PublishEvent(r.Context(), id, req.Published)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if !h.requireElevated(w, r) {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteEvent(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) listStories(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	includeUnpublished := actor != nil && actor.HasSystemElevation()
	out, err := h.service.ListStories(r.Context(), includeUnpublished)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) createStory(w http.ResponseWriter, r *http.Request) {
	if !h.requireElevated(w, r) {
		return
	}
	var req CreateStoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.service.CreateStory(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) deleteStory(w http.ResponseWriter, r *http.Request) {
	if !h.requireElevated(w, r) {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteStory(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) listSettings(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListSettings(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getSetting(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.GetSetting(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) putSetting(w http.ResponseWriter, r *http.Request) {
	if !h.requireElevated(w, r) {
		return
	}
	var req PutSettingRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.service.PutSetting(r.Context(), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) requireElevated(w http.ResponseWriter, r *http.Request) bool {
	actor := identity.ActorFromContext(r.Context())
	if actor == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return false
	}
	if !actor.IsActive || !actor.HasSystemElevation() {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient privilege")
		return false
	}
	return true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}
