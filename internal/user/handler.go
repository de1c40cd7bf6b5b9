package user

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/resource"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/utilities"
)

// Handler exposes the user endpoints: the CRUD set without create, plus
// info for the signed-in user.
type Handler struct {
	svc        *resource.Service[entity.User]
	crud       *resource.Handler[entity.User]
	cookieName string
	logger     *zap.SugaredLogger
}

func NewHandler(db *sqlx.DB, cookieName string, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	svc := NewService(db)
	return &Handler{
		svc:        svc,
		crud:       resource.NewHandler(svc, logger),
		cookieName: cookieName,
		logger:     logger,
	}
}

// Mount registers the user routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/info", h.Info)
	h.crud.Routes(false)(r)
}

// Info returns the user named by the session. An account deleted after the
// token was issued gets 404 and its cookie cleared.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		apperr.WriteHTTP(w, h.logger, apperr.ErrUnauthorized)
		return
	}
	u, err := h.svc.Get(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			auth.ClearSessionCookie(w, h.cookieName)
		}
		h.logger.Debugw("user info failed", "sub", claims.Subject, "err", err)
		apperr.WriteHTTP(w, h.logger, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, resource.DataResponse[entity.User]{Status: "ok", Data: u})
}
