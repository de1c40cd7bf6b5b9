package resource

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/query"
	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/utilities"
)

const maxBodyBytes = 1 << 20

// Handler exposes the CRUD endpoints of one resource.
type Handler[T any] struct {
	svc    *Service[T]
	logger *zap.SugaredLogger
}

func NewHandler[T any](svc *Service[T], logger *zap.SugaredLogger) *Handler[T] {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler[T]{svc: svc, logger: logger.With("resource", svc.Table().Name())}
}

// ListResponse is the body of a list request.
type ListResponse[T any] struct {
	Code       int `json:"code"`
	List       []T `json:"list"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// DataResponse carries a single record.
type DataResponse[T any] struct {
	Status string `json:"status"`
	Data   *T     `json:"data"`
}

// MessageResponse acknowledges a write.
type MessageResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Mount registers the full route set on r.
func (h *Handler[T]) Mount(r chi.Router) {
	h.Routes(true)(r)
}

// Routes returns a mount function; withCreate controls the POST route.
func (h *Handler[T]) Routes(withCreate bool) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.List)
		if withCreate {
			r.Post("/", h.Create)
		}
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	}
}

func (h *Handler[T]) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Debugw(op+" failed", "err", err)
	apperr.WriteHTTP(w, h.logger, err)
}

func (h *Handler[T]) List(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	req, err := query.PageRequestFromValues(values)
	if err != nil {
		h.fail(w, "list", err)
		return
	}
	res, err := h.svc.List(r.Context(), query.SearchSpecFromValues(values), req)
	if err != nil {
		h.fail(w, "list", err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, ListResponse[T]{
		Code:       http.StatusOK,
		List:       res.Data,
		Total:      res.Total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: res.TotalPages,
	})
}

func (h *Handler[T]) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get", err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, DataResponse[T]{Status: "ok", Data: v})
}

func (h *Handler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var in T
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		h.fail(w, "create", fmt.Errorf("%w: invalid payload", apperr.ErrValidation))
		return
	}
	v, err := h.svc.Create(r.Context(), &in)
	if err != nil {
		h.fail(w, "create", err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, DataResponse[T]{Status: "ok", Data: v})
}

func (h *Handler[T]) Update(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.fail(w, "update", fmt.Errorf("%w: invalid payload", apperr.ErrValidation))
		return
	}
	if _, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), body); err != nil {
		h.fail(w, "update", err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, MessageResponse{Code: http.StatusOK, Msg: "Update successful"})
}

func (h *Handler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete", err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, MessageResponse{Code: http.StatusOK, Msg: "Delete successful"})
}
