package clubs

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

// Handler exposes club and membership endpoints.
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

// MountRoutes registers club routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(identity.RequireActor)
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{clubID}", h.get)
	r.Put("/{clubID}", h.update)
	r.Delete("/{clubID}", h.delete)

	r.Post("/{clubID}/members", h.addMember)
	r.Get("/{clubID}/members", h.listMembers)
	r.Delete("/{clubID}/members/{actorID}", h.removeMember)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	out, err := h.service.List(r.Context(), actor.HasSystemElevation(), limit, offset)
	if err != nil {
		h.logger.Error("list clubs", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, authz.Request{Action: authz.ActionCreate, Resource: authz.ResourceClub}) {
		return
	}

	var req CreateClubRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	club, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, club)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	clubID, ok := h.clubID(w, r)
	if !ok {
		return
	}
	club, err := h.service.Get(r.Context(), clubID, actor.HasClubAuthority(clubID))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, club)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	clubID, ok := h.clubID(w, r)
	if !ok {
		return
	}
	if !h.allow(w, r, authz.Request{Action: authz.ActionUpdate, Resource: authz.ResourceClub, ResourceID: clubID}) {
		return
	}

	var req UpdateClubRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	club, err := h.service.Update(r.Context(), clubID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, club)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	clubID, ok := h.clubID(w, r)
	if !ok {
		return
	}
	if !h.allow(w, r, authz.Request{Action: authz.ActionDelete, Resource: authz.ResourceClub, ResourceID: clubID}) {
		return
	}
	if err := h.service.Delete(r.Context(), clubID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	clubID, ok := h.clubID(w, r)
	if !ok {
		return
	}
	if !h.allow(w, r, authz.Request{Action: authz.ActionUpdate, Resource: authz.ResourceClub, ResourceID: clubID}) {
		return
	}

	var req AddMemberRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	member, err := h.service.AddMember(r.Context(), clubID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, member)
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	clubID, ok := h.clubID(w, r)
	if !ok {
		return
	}
	members, err := h.service.ListMembers(r.Context(), clubID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, members)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	clubID, ok := h.clubID(w, r)
	if !ok {
		return
	}
	actorID, err := strconv.ParseInt(chi.URLParam(r, "actorID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid actor id")
		return
	}
	if !h.allow(w, r, authz.Request{Action: authz.ActionUpdate, Resource: authz.ResourceClub, ResourceID: clubID}) {
		return
	}
	if err := h.service.RemoveMember(r.Context(), clubID, actorID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) clubID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "clubID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid club id")
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
