package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/datasource-portal/internal/models"
	"github.com/pribylovaa/datasource-portal/internal/service"
	"github.com/pribylovaa/datasource-portal/internal/transport/http/apierrors"
)

const (
	defaultEventsLimit = 50
	maxEventsLimit     = 500
)

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type setRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in createUserRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	role, err := models.ParseRole(in.Role)
	if err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidRole)
		return
	}

	p, err := h.Auth.Register(r.Context(), in.Username, in.Password, role)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.Header().Set("Location", "/users/"+p.ID.String())
	writeJSON(w, http.StatusCreated, principalResponse(p))
}

func (h *Handlers) SetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var in setRoleRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	role, err := models.ParseRole(in.Role)
	if err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidRole)
		return
	}

	if err := h.Auth.SetRole(r.Context(), id, role); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Disable(w http.ResponseWriter, r *http.Request) { h.setDisabled(w, r, true) }

func (h *Handlers) Enable(w http.ResponseWriter, r *http.Request) { h.setDisabled(w, r, false) }

func (h *Handlers) setDisabled(w http.ResponseWriter, r *http.Request, disabled bool) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Auth.SetDisabled(r.Context(), id, disabled); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AuthEvents отдаёт журнал аудита учётной записи, новые события первыми.
func (h *Handlers) AuthEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	limit := defaultEventsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
			return
		}
		limit = min(n, maxEventsLimit)
	}

	events, err := h.Auth.AuthEvents(r.Context(), id, limit)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": authEventsResponse(events)})
}

// pathID разбирает {id} из пути; при ошибке сам пишет 400.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return uuid.Nil, false
	}

	return id, true
}
