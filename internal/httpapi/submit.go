package httpapi

import (
	"errors"
	"net/http"

	"github.com/jelius-sama/SelfAuth/internal/auth"
	"github.com/jelius-sama/SelfAuth/internal/obs"
)

// submitRequest is the two-phase submission payload. Pointer fields
// distinguish an absent key from an empty value: the payload must carry
// exactly one of {email, password} or {otp}.
type submitRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Otp      *string `json:"otp"`
}

func (a *API) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	switch {
	case req.Email != nil && req.Password != nil && req.Otp == nil:
		if err := a.flow.SubmitPassword(r.Context(), *req.Email, *req.Password); err != nil {
			a.handleAuthError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})

	case req.Otp != nil && req.Email == nil && req.Password == nil:
		token, err := a.flow.SubmitCode(r.Context(), *req.Otp)
		if err != nil {
			a.handleAuthError(w, r, err)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})

	default:
		// Both, neither, or a partial pair. Rejected before any store is touched.
		writeError(w, r, http.StatusBadRequest, "provide either email and password, or otp")
	}
}

// handleAuthError maps flow failures onto the fixed status taxonomy without
// exposing internal detail to the caller.
func (a *API) handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrBadRequest):
		writeError(w, r, http.StatusBadRequest, "bad request")
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
	default:
		obs.LogRequest(map[string]any{
			"level":      "error",
			"msg":        "submit failed",
			"error":      err.Error(),
			"request_id": RequestIDFromContext(r.Context()),
		})
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
