package grn

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atlas-fam/atlas-fam/internal/observability"
	"github.com/atlas-fam/atlas-fam/internal/platform/httpx"
	"github.com/atlas-fam/atlas-fam/internal/shared"
)

// Handler exposes the approval workflow over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	metrics  *observability.Metrics
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		metrics:  metrics,
		validate: validator.New(),
	}
}

// MountRoutes registers approval routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/pending", h.listPending)
	r.Get("/{grnNo}", h.getBatch)
	r.Post("/{grnNo}/approve", h.approveBatch)
	r.Put("/items/{itemSerial}/status", h.updateItemStatus)
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
	grnNos, err := h.service.ListPendingGRNs(r.Context())
	if err != nil {
		h.respondError(w, r, "list pending grns", err)
		return
	}
	if grnNos == nil {
		grnNos = []string{}
	}
	httpx.JSON(w, http.StatusOK, PendingGRNsResponse{Data: grnNos})
}

func (h *Handler) getBatch(w http.ResponseWriter, r *http.Request) {
	grnNo := chi.URLParam(r, "grnNo")
	items, err := h.service.GetBatch(r.Context(), grnNo)
	if err != nil {
		h.respondError(w, r, "get batch", err)
		return
	}
	httpx.JSON(w, http.StatusOK, BatchResponse{GRNNo: grnNo, Items: items})
}

func (h *Handler) approveBatch(w http.ResponseWriter, r *http.Request) {
	grnNo := chi.URLParam(r, "grnNo")

	var req ApprovalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	decisions := make(map[string]Decision, len(req.Decisions))
	for serial, value := range req.Decisions {
		decisions[serial] = Decision(value)
	}

	summary, err := h.service.ApproveBatch(r.Context(), grnNo, decisions)
	if err != nil {
		h.observeApproval("failed", err)
		h.respondError(w, r, "approve batch", err)
		return
	}
	h.observeApproval("committed", nil)
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) updateItemStatus(w http.ResponseWriter, r *http.Request) {
	itemSerial := chi.URLParam(r, "itemSerial")

	var req ItemStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.UpdateItemStatus(r.Context(), itemSerial, Decision(*req.Status)); err != nil {
		h.respondError(w, r, "update item status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"item_serial": itemSerial, "message": "status updated"})
}

func (h *Handler) observeApproval(result string, err error) {
	if h.metrics == nil {
		return
	}
	// Rejected resubmissions are not approval failures.
	if err != nil && errors.Is(err, shared.ErrIdempotencyConflict) {
		result = "duplicate"
	}
	h.metrics.ObserveApproval(result)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrBatchNotFound), errors.Is(err, ErrItemNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrCodeConflict):
		httpx.Problem(w, http.StatusConflict, "Code Conflict", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Duplicate Request", err.Error())
	case errors.Is(err, ErrStoreUnavailable):
		h.logger.Error("grn store unavailable", slog.String("op", op), slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Store Unavailable", ErrStoreUnavailable.Error())
	default:
		h.logger.Error("grn handler failure", slog.String("op", op), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
