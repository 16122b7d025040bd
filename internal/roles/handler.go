package roles

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campushub/campushub/internal/authz"
	"github.com/campushub/campushub/internal/identity"
	"github.com/campushub/campushub/internal/platform/httpx"
)

// Handler exposes role grant management endpoints.
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

// MountRoutes registers role routes. All of them require an actor.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(identity.RequireActor)
	r.Post("/system", h.grantSystem)
	r.Post("/club", h.grantClub)
	r.Get("/actor/{actorID}", h.listForActor)
	r.Delete("/{grantID}", h.revoke)
}

type grantSystemRequest struct {
	ActorID int64             `json:"actor_id" validate:"required"`
	Kind    identity.RoleKind `json:"kind" validate:"required,oneof=super_admin admin"`
}

type grantClubRequest struct {
	ActorID int64 `json:"actor_id" validate:"required"`
	ClubID  int64 `json:"club_id" validate:"required"`
}

func (h *Handler) grantSystem(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	if !h.allow(w, r, actor, authz.ActionGrantRole) {
		return
	}

	var req grantSystemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	grant, err := h.service.Grant(r.Context(), actor, req.ActorID, req.Kind, nil)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, grant)
}

func (h *Handler) grantClub(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	if !h.allow(w, r, actor, authz.ActionGrantRole) {
		return
	}

	var req grantClubRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	grant, err := h.service.Grant(r.Context(), actor, req.ActorID, identity.RoleClubManager, &req.ClubID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, grant)
}

func (h *Handler) listForActor(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	if !h.allow(w, r, actor, authz.ActionRead) {
		return
	}

	actorID, err := strconv.ParseInt(chi.URLParam(r, "actorID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid actor id")
		return
	}
	grants, err := h.service.ListForActor(r.Context(), actorID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, grants)
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())

	grantID, err := strconv.ParseInt(chi.URLParam(r, "grantID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid grant id")
		return
	}

	// No coarse engine gate here: the lifecycle manager distinguishes what a
	// plain admin may revoke from what needs a super admin.
	if err := h.service.Revoke(r.Context(), actor, grantID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) allow(w http.ResponseWriter, r *http.Request, actor *identity.Actor, action authz.Action) bool {
	decision, err := h.engine.Decide(r.Context(), actor, authz.Request{Action: action, Resource: authz.ResourceRoleGrant})
	if err != nil {
		h.logger.Error("authorize role operation", slog.Any("error", err))
		httpx.RespondError(w, err)
		return false
	}
	if !decision.Allowed {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", string(decision.Reason))
		return false
	}
	return true
}
