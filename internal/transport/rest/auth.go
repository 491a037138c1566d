package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/abgdnv/gostorefront/internal/auth"
	"github.com/abgdnv/gostorefront/internal/platform/web"
)

type authResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *auth.User `json:"user"`
	Notice    Notice     `json:"notice"`
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.svc.Verifier.SignIn, http.StatusOK,
		Notice{Title: "Logged in successfully", Message: "Welcome back to GameSkins!"})
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.svc.Verifier.SignUp, http.StatusCreated,
		Notice{Title: "Account created successfully", Message: "Welcome to GameSkins!"})
}

type verifyFunc func(ctx context.Context, creds auth.Credentials) (*auth.User, error)

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request, verify verifyFunc, status int, notice Notice) {
	var creds auth.Credentials
	if !web.DecodeValid(w, r, h.logger, h.validate, &creds) {
		return
	}
	user, err := verify(r.Context(), creds)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Credentials rejected", "email", creds.Email, "error", err)
		web.RespondError(w, h.logger, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token, exp, err := h.svc.Tokens.Issue(*user)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error issuing token", "user_id", user.ID, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to sign in")
		return
	}
	h.logger.InfoContext(r.Context(), "User signed in", "user_id", user.ID, "role", user.Role)
	web.RespondJSON(w, h.logger, status, authResponse{Token: token, ExpiresAt: exp, User: user, Notice: notice})
}

// SignOut revokes the bearer token of the request.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	raw, ok := auth.BearerToken(r)
	if !ok {
		web.RespondError(w, h.logger, http.StatusUnauthorized, "Authentication required")
		return
	}
	if err := h.svc.Tokens.Revoke(raw); err != nil {
		h.logger.WarnContext(r.Context(), "Sign out with an invalid token", "error", err)
		web.RespondError(w, h.logger, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		web.RespondError(w, h.logger, http.StatusUnauthorized, "Authentication required")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, user)
}
