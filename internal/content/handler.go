package content

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campushub/campushub/internal/authz"
	"github.com/campushub/campushub/internal/identity"
	"github.com/campushub/campushub/internal/platform/httpx"
)

// Handler exposes content request endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	engine   *authz.Engine
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, engine *authz.Engine) *Handler {
	return &Handler{logger: logger, service: service, engine: engine, validate: validator.New()}
}

// MountRoutes registers content request routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(identity.RequireActor)
	r.Post("/", h.create)
	r.Get("/pending", h.listPending)
	r.Get("/club/{clubID}", h.listByClub)
	r.Get("/{requestID}", h.get)
	r.Post("/{requestID}/approve", h.approve)
	r.Post("/{requestID}/reject", h.reject)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())

	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	// Filing a request on a club's behalf requires authority over that club.
	if !h.allow(w, r, authz.Request{Action: authz.ActionUpdate, Resource: authz.ResourceClub, ResourceID: req.ClubID}) {
		return
	}

	out, err := h.service.Create(r.Context(), actor.ID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}
	if !h.allow(w, r, authz.Request{Action: authz.ActionRead, Resource: authz.ResourceContentRequest, ResourceID: id}) {
		return
	}
	out, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, authz.Request{Action: authz.ActionRead, Resource: authz.ResourceContentQueue}) {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	out, err := h.service.ListPending(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list pending content requests", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) listByClub(w http.ResponseWriter, r *http.Request) {
	clubID, err := strconv.ParseInt(chi.URLParam(r, "clubID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid club id")
		return
	}
	if !h.allow(w, r, authz.Request{Action: authz.ActionRead, Resource: authz.ResourceClub, ResourceID: clubID}) {
		return
	}
	out, err := h.service.ListByClub(r.Context(), clubID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.reviewEndpoint(w, r, h.service.Approve)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.reviewEndpoint(w, r, h.service.Reject)
}

type reviewFunc func(ctx context.Context, reviewerID, id int64, note *string) (*Request, error)

func (h *Handler) reviewEndpoint(w http.ResponseWriter, r *http.Request, review reviewFunc) {
	actor := identity.ActorFromContext(r.Context())
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}
	if !h.allow(w, r, authz.Request{Action: authz.ActionChangeStatus, Resource: authz.ResourceContentRequest, ResourceID: id}) {
		return
	}

	var req ReviewRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
			return
		}
	}

	out, err := review(r.Context(), actor.ID, id, req.Note)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) requestID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "requestID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request id")
		return 0, false
	}
	return id, true
}

func (h *Handler) allow(w http.ResponseWriter, r *http.Request, req authz.Request) bool {
	actor := identity.ActorFromContext(r.Context())
	decision, err := h.engine.Decide(r.Context(), actor, req)
	if err != nil {
		httpx.RespondError(w, err)
		return false
	}
	if !decision.Allowed {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", string(decision.Reason))
		return false
	}
	return true
}
