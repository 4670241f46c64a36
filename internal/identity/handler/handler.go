// Package handler exposes the identity service over HTTP. Routes map
// one-to-one onto service operations; the handler does no business
// logic beyond decoding, dispatch, and error translation.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mongoidentity/internal/identity/models"
	"mongoidentity/internal/identity/service"
	"mongoidentity/pkg/platform/sentinel"
)

// Handler serves the identity HTTP API.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

// New constructs the handler.
func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts the identity routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.handleRegister)
		r.Get("/by-login", h.handleUserByLogin)
		r.Get("/by-claim", h.handleUsersByClaim)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetUser)
			r.Delete("/", h.handleDeleteUser)

			r.Get("/logins", h.handleListLogins)
			r.Post("/logins", h.handleLinkLogin)
			r.Delete("/logins/{provider}/{providerKey}", h.handleUnlinkLogin)

			r.Post("/claims", h.handleGrantClaims)
			r.Post("/claims/revoke", h.handleRevokeClaims)

			r.Post("/roles", h.handleAssignRole)
			r.Delete("/roles/{name}", h.handleWithdrawRole)

			r.Put("/password", h.handleSetPassword)
			r.Post("/email/confirm", h.handleConfirmEmail)
			r.Post("/security-stamp", h.handleRotateStamp)
		})
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.service.Register(r.Context(), req.UserName, req.Email)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.User(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUserByLogin(w http.ResponseWriter, r *http.Request) {
	provider := r.URL.Query().Get("provider")
	providerKey := r.URL.Query().Get("providerKey")
	if provider == "" || providerKey == "" {
		h.writeError(w, r, http.StatusBadRequest, "provider and providerKey are required")
		return
	}

	u, err := h.service.UserByLogin(r.Context(), provider, providerKey)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) handleUsersByClaim(w http.ResponseWriter, r *http.Request) {
	claim := models.Claim{
		Type:  r.URL.Query().Get("type"),
		Value: r.URL.Query().Get("value"),
	}

	users, err := h.service.UsersWithClaim(r.Context(), claim)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListLogins(w http.ResponseWriter, r *http.Request) {
	logins, err := h.service.Logins(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	resp := make([]loginResponse, 0, len(logins))
	for _, l := range logins {
		resp = append(resp, loginResponse{Provider: l.Provider, ProviderKey: l.ProviderKey, DisplayName: l.DisplayName})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleLinkLogin(w http.ResponseWriter, r *http.Request) {
	var req linkLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	login := models.Login{Provider: req.Provider, ProviderKey: req.ProviderKey, DisplayName: req.DisplayName}
	u, err := h.service.LinkLogin(r.Context(), chi.URLParam(r, "id"), login)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) handleUnlinkLogin(w http.ResponseWriter, r *http.Request) {
	err := h.service.UnlinkLogin(r.Context(),
		chi.URLParam(r, "id"),
		chi.URLParam(r, "provider"),
		chi.URLParam(r, "providerKey"),
	)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGrantClaims(w http.ResponseWriter, r *http.Request) {
	var req claimsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.GrantClaims(r.Context(), chi.URLParam(r, "id"), toClaims(req.Claims)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRevokeClaims(w http.ResponseWriter, r *http.Request) {
	var req claimsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.RevokeClaims(r.Context(), chi.URLParam(r, "id"), toClaims(req.Claims)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.AssignRole(r.Context(), chi.URLParam(r, "id"), req.Name); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleWithdrawRole(w http.ResponseWriter, r *http.Request) {
	if err := h.service.WithdrawRole(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "name")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SetPassword(r.Context(), chi.URLParam(r, "id"), req.PasswordHash); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ConfirmEmail(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRotateStamp(w http.ResponseWriter, r *http.Request) {
	stamp, err := h.service.RotateSecurityStamp(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, securityStampResponse{SecurityStamp: stamp})
}

// writeServiceError maps sentinel errors onto HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sentinel.ErrInvalidArgument):
		h.writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, sentinel.ErrNotFound):
		h.writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, sentinel.ErrConflict):
		h.writeError(w, r, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}
