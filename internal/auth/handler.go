package auth

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/utilities"
)

const maxBodyBytes = 1 << 20

// Handler exposes HTTP endpoints for register, login and logout.
type Handler struct {
	svc        *Service
	cookieName string
	logger     *zap.SugaredLogger
}

func NewHandler(svc *Service, cookieName string, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{svc: svc, cookieName: cookieName, logger: logger}
}

// Mount registers the auth routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
}

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registeredUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*CredentialsRequest, error) {
	var req CredentialsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: invalid payload", apperr.ErrValidation)
	}
	return &req, nil
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(w, r)
	if err != nil {
		h.logger.Debugw("invalid register payload", "err", err)
		apperr.WriteHTTP(w, h.logger, err)
		return
	}
	c, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debugw("register failed", "err", err)
		apperr.WriteHTTP(w, h.logger, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "Register successful",
		"data":    registeredUser{ID: c.ID, Email: c.Email, Role: c.Role},
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(w, r)
	if err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		apperr.WriteHTTP(w, h.logger, err)
		return
	}
	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debugw("login failed", "err", err)
		apperr.WriteHTTP(w, h.logger, err)
		return
	}
	SetSessionCookie(w, h.cookieName, sess.Token)
	utilities.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "Login successful",
		"token":   sess.Token,
	})
}

// Logout clears the cookie. Tokens are stateless so nothing is revoked
// server side.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookie(w, h.cookieName)
	utilities.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "Logout successful",
	})
}
