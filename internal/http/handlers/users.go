package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/hongminglow/account-be/internal/auth"
	"github.com/hongminglow/account-be/internal/http/respond"
	"github.com/hongminglow/account-be/internal/logger"
	"github.com/hongminglow/account-be/internal/middleware"
	"github.com/hongminglow/account-be/internal/models"
	"github.com/hongminglow/account-be/internal/models/dto"
	"github.com/hongminglow/account-be/internal/storage"
)

// UserHandler serves the profile routes of the authenticated caller.
type UserHandler struct {
	users    storage.UserStore
	sessions Sessions
	cookie   CookieOptions
	logger   *logger.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(users storage.UserStore, sessions Sessions, cookie CookieOptions, log *logger.Logger) *UserHandler {
	return &UserHandler{users: users, sessions: sessions, cookie: cookie, logger: log}
}

// Register attaches the profile routes, each behind requireAuth.
func (h *UserHandler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.Handle("GET /users/{userId}", requireAuth(http.HandlerFunc(h.handleGet)))
	mux.Handle("PUT /users/{userId}", requireAuth(http.HandlerFunc(h.handleUpdatePassword)))
	mux.Handle("DELETE /users/{userId}", requireAuth(http.HandlerFunc(h.handleDelete)))
}

// caller resolves the identity and checks it owns the {userId} in the path.
// It writes the error response itself and reports false on failure.
func (h *UserHandler) caller(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, msgLoginRequired)
		return auth.Identity{}, false
	}
	id, ok := pathUserID(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, msgInvalidInput)
		return auth.Identity{}, false
	}
	if id != identity.UserID {
		h.logger.Warn("profile access denied",
			"request_id", middleware.RequestID(r.Context()),
			"caller", identity.UserID,
			"target", id,
		)
		respond.Error(w, http.StatusForbidden, msgForbidden)
		return auth.Identity{}, false
	}
	return identity, true
}

// loadUser fetches the caller's row, answering 404 or 500 on failure.
func (h *UserHandler) loadUser(w http.ResponseWriter, r *http.Request, id int64, failMsg string) (models.User, bool) {
	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, msgUserNotFound)
			return models.User{}, false
		}
		serverError(h.logger, w, r, failMsg, "load user", err)
		return models.User{}, false
	}
	return user, true
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.caller(w, r)
	if !ok {
		return
	}
	user, ok := h.loadUser(w, r, identity.UserID, msgUserFetchFailed)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, msgUserFetchOK, user)
}

func (h *UserHandler) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req dto.UpdatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, msgInvalidInput)
		return
	}
	user, ok := h.loadUser(w, r, identity.UserID, msgUserUpdateFailed)
	if !ok {
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		respond.Error(w, http.StatusPreconditionFailed, msgPasswordMismatch)
		return
	}
	if req.NewPassword != req.NewPasswordConfirm {
		respond.Error(w, http.StatusPreconditionFailed, msgNewPasswordDiffer)
		return
	}
	if !auth.ValidatePasswordPolicy(req.NewPassword) {
		respond.Error(w, http.StatusPreconditionFailed, msgNewPasswordFormat)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		respond.Error(w, http.StatusPreconditionFailed, msgNewPasswordFormat)
		return
	}
	if err := h.users.UpdatePassword(r.Context(), user.ID, hash); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		serverError(h.logger, w, r, msgUserUpdateFailed, "update password", err)
		return
	}
	respond.JSON(w, http.StatusOK, msgUserUpdateOK, nil)
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req dto.DeleteUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, msgInvalidInput)
		return
	}
	user, ok := h.loadUser(w, r, identity.UserID, msgUserDeleteFailed)
	if !ok {
		return
	}

	if strings.TrimSpace(req.Email) != user.Email || !auth.VerifyPassword(req.Password, user.PasswordHash) {
		respond.Error(w, http.StatusPreconditionFailed, msgCheckCredentials)
		return
	}
	if err := h.users.DeleteUser(r.Context(), user.ID, user.Email); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		serverError(h.logger, w, r, msgUserDeleteFailed, "delete user", err)
		return
	}

	if err := h.sessions.Revoke(r.Context(), identity); err != nil {
		h.logger.Warn("revoke token after delete", "request_id", middleware.RequestID(r.Context()), "error", err.Error())
	}
	h.cookie.clear(w)
	respond.JSON(w, http.StatusOK, msgUserDeleteOK, nil)
}
