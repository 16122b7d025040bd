package forms

import (
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campushub/campushub/internal/authz"
	"github.com/campushub/campushub/internal/identity"
	"github.com/campushub/campushub/internal/platform/httpx"
)

// maxSubmissionMemory bounds the in-memory portion of a multipart parse;
// larger uploads spill to temp files.
const maxSubmissionMemory = 32 << 20

// Handler exposes form and application endpoints.
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

// MountFormRoutes registers form management routes.
func (h *Handler) MountFormRoutes(r chi.Router) {
	r.Use(identity.RequireActor)
	r.Post("/", h.createForm)
	r.Get("/{formID}", h.getForm)
	r.Put("/{formID}", h.updateForm)
	r.Delete("/{formID}", h.deleteForm)
	r.Get("/club/{clubID}", h.listForms)
}

// MountApplicationRoutes registers application routes.
func (h *Handler) MountApplicationRoutes(r chi.Router) {
	r.Use(identity.RequireActor)
	r.Post("/form/{formID}", h.submit)
	r.Get("/form/{formID}", h.listApplications)
	r.Get("/{applicationID}", h.getApplication)
	r.Put("/{applicationID}/status", h.changeStatus)
}

func (h *Handler) createForm(w http.ResponseWriter, r *http.Request) {
	var req CreateFormRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	// Creating a form is managing the owning club's content.
	if !h.allow(w, r, authz.Request{Action: authz.ActionUpdate, Resource: authz.ResourceClub, ResourceID: req.ClubID}) {
		return
	}

	form, err := h.service.CreateForm(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, form)
}

func (h *Handler) getForm(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	formID, ok := h.pathID(w, r, "formID", "invalid form id")
	if !ok {
		return
	}
	form, err := h.service.GetForm(r.Context(), formID, true)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if !form.IsActive && !actor.HasClubAuthority(form.ClubID) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "form not found")
		return
	}
	httpx.JSON(w, http.StatusOK, form)
}

func (h *Handler) updateForm(w http.ResponseWriter, r *http.Request) {
	formID, ok := h.pathID(w, r, "formID", "invalid form id")
	if !ok {
		return
	}
	if !h.allow(w, r, authz.Request{Action: authz.ActionUpdate, Resource: authz.ResourceForm, ResourceID: formID}) {
		return
	}

	var req UpdateFormRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	form, err := h.service.UpdateForm(r.Context(), formID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, form)
}

func (h *Handler) deleteForm(w http.ResponseWriter, r *http.Request) {
	formID, ok := h.pathID(w, r, "formID", "invalid form id")
	if !ok {
		return
	}
	if !h.allow(w, r, authz.Request{Action: authz.ActionDelete, Resource: authz.ResourceForm, ResourceID: formID}) {
		return
	}
	if err := h.service.DeleteForm(r.Context(), formID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) listForms(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	clubID, ok := h.pathID(w, r, "clubID", "invalid club id")
	if !ok {
		return
	}
	forms, err := h.service.ListForms(r.Context(), clubID, actor.HasClubAuthority(clubID))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, forms)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	formID, ok := h.pathID(w, r, "formID", "invalid form id")
	if !ok {
		return
	}

	data, uploads, closers, ok := h.parseSubmission(w, r)
	if !ok {
		return
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	app, err := h.service.Submit(r.Context(), actor.ID, formID, data, uploads)
	if err != nil {
		h.logger.Error("submit application",
			slog.Int64("form_id", formID), slog.Int64("actor_id", actor.ID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, app)
}

// parseSubmission accepts either a plain JSON body or a multipart form with
// a "data" JSON part and any number of "files" parts.
func (h *Handler) parseSubmission(w http.ResponseWriter, r *http.Request) (map[string]any, []Upload, []multipart.File, bool) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var data map[string]any
		if err := httpx.DecodeJSON(r, &data); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
			return nil, nil, nil, false
		}
		return data, nil, nil, true
	}

	if err := r.ParseMultipartForm(maxSubmissionMemory); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed multipart body")
		return nil, nil, nil, false
	}

	var data map[string]any
	if raw := r.FormValue("data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "data part is not valid JSON")
			return nil, nil, nil, false
		}
	} else {
		data = map[string]any{}
	}

	var uploads []Upload
	var closers []multipart.File
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files"] {
			file, err := header.Open()
			if err != nil {
				for _, c := range closers {
					_ = c.Close()
				}
				httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unreadable file part")
				return nil, nil, nil, false
			}
			closers = append(closers, file)
			uploads = append(uploads, Upload{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Content:     file,
			})
		}
	}
	return data, uploads, closers, true
}

func (h *Handler) getApplication(w http.ResponseWriter, r *http.Request) {
	appID, ok := h.pathID(w, r, "applicationID", "invalid application id")
	if !ok {
		return
	}
	if !h.allow(w, r, authz.Request{Action: authz.ActionRead, Resource: authz.ResourceApplication, ResourceID: appID}) {
		return
	}
	app, err := h.service.GetApplication(r.Context(), appID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, app)
}

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	formID, ok := h.pathID(w, r, "formID", "invalid form id")
	if !ok {
		return
	}
	// Reviewing a form's applications requires authority over its club.
	if !h.allow(w, r, authz.Request{Action: authz.ActionUpdate, Resource: authz.ResourceForm, ResourceID: formID}) {
		return
	}
	apps, err := h.service.ListApplications(r.Context(), formID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, apps)
}

type changeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=submitted under_review accepted rejected"`
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	appID, ok := h.pathID(w, r, "applicationID", "invalid application id")
	if !ok {
		return
	}
	if !h.allow(w, r, authz.Request{Action: authz.ActionChangeStatus, Resource: authz.ResourceApplication, ResourceID: appID}) {
		return
	}

	var req changeStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	app, err := h.service.ChangeStatus(r.Context(), actor.ID, appID, req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, app)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param, message string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", message)
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
