package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/quicktradepro/quicktrade/internal/apperr"
	"github.com/quicktradepro/quicktrade/internal/directory"
	"github.com/quicktradepro/quicktrade/internal/middleware"
	"github.com/quicktradepro/quicktrade/internal/store"
)

const sessionMaxAge = 30 * 24 * 60 * 60

type AuthHandler struct {
	directory    *directory.Service
	sessionStore *store.SessionStore
	logger       *slog.Logger
}

func NewAuthHandler(d *directory.Service, ss *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{directory: d, sessionStore: ss, logger: logger}
}

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
}

// Signup creates an account and opens a session for it.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.ErrValidation)
		return
	}

	account, err := h.directory.Signup(r.Context(), directory.SignupParams{
		Email:       req.Email,
		Secret:      req.Password,
		FullName:    req.FullName,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.openSession(w, account.ID); err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a credential pair. Failures come back as a result,
// not a panic: the dashboard renders them inline.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.ErrValidation)
		return
	}

	account, err := h.directory.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.openSession(w, account.ID); err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// Logout destroys the session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookie)
	if err == nil && cookie.Value != "" {
		sess, err := h.sessionStore.GetByToken(cookie.Value)
		if err == nil && sess != nil {
			h.sessionStore.Delete(sess.ID)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the account behind the current session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountIDFromContext(r.Context())
	account, err := h.directory.GetByID(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	if account == nil {
		writeError(w, apperr.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *AuthHandler) openSession(w http.ResponseWriter, accountID string) error {
	sess, err := h.sessionStore.Create(accountID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
