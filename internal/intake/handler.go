package intake

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atlas-fam/atlas-fam/internal/platform/httpx"
)

// Handler exposes staging intake over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers intake routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.createGRN)
	r.Get("/", h.list)
	r.Get("/items/{itemSerial}", h.getItem)
	r.Put("/items/{itemSerial}", h.updateItem)
	r.Delete("/items/{itemSerial}", h.deleteItem)
}

func (h *Handler) createGRN(w http.ResponseWriter, r *http.Request) {
	var input CreateGRNInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	result, err := h.service.CreateGRN(r.Context(), input)
	if err != nil {
		h.respondError(w, "create grn", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	search := r.URL.Query().Get("search")

	items, pagination, err := h.service.List(r.Context(), page, perPage, search)
	if err != nil {
		h.respondError(w, "list staging", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListResponse{Data: items, Pagination: pagination})
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), chi.URLParam(r, "itemSerial"))
	if err != nil {
		h.respondError(w, "get staging item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var input UpdateItemInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	item, err := h.service.Update(r.Context(), chi.URLParam(r, "itemSerial"), input)
	if err != nil {
		h.respondError(w, "update staging item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	itemSerial := chi.URLParam(r, "itemSerial")
	if err := h.service.Delete(r.Context(), itemSerial); err != nil {
		h.respondError(w, "delete staging item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"item_serial": itemSerial, "message": "staging item deleted"})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrDuplicateGRN):
		httpx.Problem(w, http.StatusConflict, "Duplicate GRN", err.Error())
	case errors.Is(err, ErrItemNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrNotPending):
		httpx.Problem(w, http.StatusConflict, "Already Decided", err.Error())
	case errors.Is(err, ErrStoreUnavailable):
		h.logger.Error("intake store unavailable", slog.String("op", op), slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Store Unavailable", ErrStoreUnavailable.Error())
	default:
		h.logger.Error("intake handler failure", slog.String("op", op), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
