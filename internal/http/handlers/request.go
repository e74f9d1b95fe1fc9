package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hongminglow/account-be/internal/auth"
	"github.com/hongminglow/account-be/internal/http/respond"
	"github.com/hongminglow/account-be/internal/logger"
	"github.com/hongminglow/account-be/internal/middleware"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeJSON reads a size-limited JSON body into dst and runs its validate
// tags. Any failure is an invalid-input error for the caller.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return err
	}
	return validate.Struct(dst)
}

// pathUserID parses the {userId} wildcard.
func pathUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("userId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// serverError logs err with the request id and answers 500 with message.
func serverError(log *logger.Logger, w http.ResponseWriter, r *http.Request, message, op string, err error) {
	log.Error(op, "request_id", middleware.RequestID(r.Context()), "path", r.URL.Path, "error", err.Error())
	respond.Error(w, http.StatusInternalServerError, message)
}

// CookieOptions controls the session cookie attributes.
type CookieOptions struct {
	Secure bool
}

func (o CookieOptions) set(w http.ResponseWriter, token auth.Token) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    auth.CookieValue(token.Value),
		Path:     "/",
		Expires:  token.ExpiresAt,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (o CookieOptions) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
