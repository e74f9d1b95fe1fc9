package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hongminglow/account-be/internal/auth"
	"github.com/hongminglow/account-be/internal/http/respond"
	"github.com/hongminglow/account-be/internal/logger"
	"github.com/hongminglow/account-be/internal/metrics"
	"github.com/hongminglow/account-be/internal/middleware"
	"github.com/hongminglow/account-be/internal/models"
	"github.com/hongminglow/account-be/internal/models/dto"
	"github.com/hongminglow/account-be/internal/storage"
	"github.com/hongminglow/account-be/internal/verification"
)

// Verifier issues and checks signup verification codes.
type Verifier interface {
	Send(ctx context.Context, email string) error
	Verify(ctx context.Context, email, input string) error
	Consume(ctx context.Context, email string) error
}

// Sessions issues and revokes session tokens.
type Sessions interface {
	IssueToken(userID int64) (auth.Token, error)
	Revoke(ctx context.Context, identity auth.Identity) error
}

// AuthOptions carries the signup and cookie settings.
type AuthOptions struct {
	InitPoint int64
	Cookie    CookieOptions
}

// AuthHandler owns signup, login, logout and token refresh.
type AuthHandler struct {
	users    storage.UserStore
	verifier Verifier
	sessions Sessions
	opts     AuthOptions
	logger   *logger.Logger
	metrics  *metrics.Metrics

	verifyPassword func(plaintext, hash string) bool
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(users storage.UserStore, verifier Verifier, sessions Sessions, opts AuthOptions, log *logger.Logger, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		users:          users,
		verifier:       verifier,
		sessions:       sessions,
		opts:           opts,
		logger:         log,
		metrics:        m,
		verifyPassword: auth.VerifyPassword,
	}
}

// Register attaches auth routes to the mux. requireAuth guards the routes
// that act on the current session.
func (h *AuthHandler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /signup/verification", h.handleSendCode)
	mux.HandleFunc("POST /signup", h.handleSignup)
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.Handle("POST /logout", requireAuth(http.HandlerFunc(h.handleLogout)))
	mux.Handle("POST /auth/refresh", requireAuth(http.HandlerFunc(h.handleRefresh)))
}

func (h *AuthHandler) handleSendCode(w http.ResponseWriter, r *http.Request) {
	var req dto.SendCodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, msgInvalidInput)
		return
	}
	if err := h.verifier.Send(r.Context(), strings.TrimSpace(req.Email)); err != nil {
		h.logger.Error("send verification code", "request_id", middleware.RequestID(r.Context()), "error", err.Error())
		respond.Error(w, http.StatusBadRequest, msgSendFailed)
		return
	}
	respond.JSON(w, http.StatusOK, msgSendOK, nil)
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req dto.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, msgInvalidInput)
		return
	}
	email := strings.TrimSpace(req.Email)

	if err := h.verifier.Verify(ctx, email, strings.TrimSpace(req.VerifyNumberInput)); err != nil {
		if isCodeRejection(err) {
			h.metrics.RecordAuth("signup", metrics.OutcomeRejected)
			respond.Error(w, http.StatusPreconditionFailed, msgCodeMismatch)
			return
		}
		serverError(h.logger, w, r, msgSignupFailed, "verify code", err)
		return
	}

	if _, err := h.users.FindByEmail(ctx, email); err == nil {
		respond.Error(w, http.StatusPreconditionFailed, msgDuplicateEmail)
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		serverError(h.logger, w, r, msgSignupFailed, "lookup email", err)
		return
	}

	if !auth.ValidatePasswordPolicy(req.Password) {
		respond.Error(w, http.StatusPreconditionFailed, msgPasswordFormat)
		return
	}
	if req.Password != req.PasswordConfirm {
		respond.Error(w, http.StatusPreconditionFailed, msgPasswordMismatch)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		// bcrypt refuses inputs longer than 72 bytes.
		respond.Error(w, http.StatusPreconditionFailed, msgPasswordFormat)
		return
	}

	created, err := h.users.CreateUser(ctx, models.User{Email: email, PasswordHash: hash, Point: h.opts.InitPoint})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusPreconditionFailed, msgDuplicateEmail)
			return
		}
		serverError(h.logger, w, r, msgSignupFailed, "create user", err)
		return
	}

	if err := h.verifier.Consume(ctx, email); err != nil {
		h.logger.Warn("consume verification code", "request_id", middleware.RequestID(ctx), "error", err.Error())
	}
	h.metrics.RecordAuth("signup", metrics.OutcomeSuccess)
	respond.JSON(w, http.StatusCreated, msgSignupOK, dto.SignupResponse{UserID: created.ID})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, msgInvalidInput)
		return
	}

	user, err := h.users.FindByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Pay for a comparison anyway so response time does not reveal
			// whether the email is registered.
			h.verifyPassword(req.Password, auth.DummyHash())
			h.metrics.RecordAuth("login", metrics.OutcomeRejected)
			respond.Error(w, http.StatusPreconditionFailed, msgCheckCredentials)
			return
		}
		serverError(h.logger, w, r, msgLoginFailed, "lookup user", err)
		return
	}
	if !h.verifyPassword(req.Password, user.PasswordHash) {
		h.metrics.RecordAuth("login", metrics.OutcomeRejected)
		respond.Error(w, http.StatusPreconditionFailed, msgCheckCredentials)
		return
	}

	token, err := h.sessions.IssueToken(user.ID)
	if err != nil {
		serverError(h.logger, w, r, msgLoginFailed, "issue token", err)
		return
	}
	h.opts.Cookie.set(w, token)
	h.metrics.RecordAuth("login", metrics.OutcomeSuccess)
	respond.JSON(w, http.StatusOK, msgLoginOK, nil)
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}
	if err := h.sessions.Revoke(r.Context(), identity); err != nil {
		serverError(h.logger, w, r, msgLogoutFailed, "revoke token", err)
		return
	}
	h.opts.Cookie.clear(w)
	respond.JSON(w, http.StatusOK, msgLogoutOK, nil)
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}
	token, err := h.sessions.IssueToken(identity.UserID)
	if err != nil {
		serverError(h.logger, w, r, msgRefreshFailed, "issue token", err)
		return
	}
	if err := h.sessions.Revoke(r.Context(), identity); err != nil {
		serverError(h.logger, w, r, msgRefreshFailed, "revoke token", err)
		return
	}
	h.opts.Cookie.set(w, token)
	h.metrics.RecordAuth("refresh", metrics.OutcomeSuccess)
	respond.JSON(w, http.StatusOK, msgRefreshOK, nil)
}

func isCodeRejection(err error) bool {
	return errors.Is(err, verification.ErrCodeNotFound) ||
		errors.Is(err, verification.ErrCodeExpired) ||
		errors.Is(err, verification.ErrTooManyAttempts) ||
		errors.Is(err, verification.ErrCodeMismatch)
}
