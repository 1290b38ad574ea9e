package assets

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atlas-fam/atlas-fam/internal/grn"
	"github.com/atlas-fam/atlas-fam/internal/platform/httpx"
	"github.com/atlas-fam/atlas-fam/internal/shared"
)

// Handler exposes the asset registry over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers registry routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/search", h.search)
	r.Get("/grn/{grnNo}", h.byGRN)
	r.Get("/{itemSerial}", h.get)
	r.Put("/{itemSerial}/placement", h.updatePlacement)
}

type listResponse struct {
	Data       []grn.MasterAsset `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	assets, pagination, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		h.respondError(w, "list assets", err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Data: assets, Pagination: pagination})
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("limit"))

	filters := SearchFilters{
		ItemCode:     q.Get("item_code"),
		ItemName:     q.Get("item_name"),
		GRNNo:        q.Get("grn_no"),
		CenterID:     q.Get("center_id"),
		DepartmentID: q.Get("department_id"),
		Supplier:     q.Get("supplier"),
	}
	if from := q.Get("created_from"); from != "" {
		t, err := time.Parse(time.DateOnly, from)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "created_from must be YYYY-MM-DD")
			return
		}
		filters.CreatedFrom = &t
	}
	if to := q.Get("created_to"); to != "" {
		t, err := time.Parse(time.DateOnly, to)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "created_to must be YYYY-MM-DD")
			return
		}
		// Inclusive upper bound for a whole day.
		t = t.Add(24*time.Hour - time.Nanosecond)
		filters.CreatedTo = &t
	}

	assets, pagination, err := h.service.Search(r.Context(), filters, page, perPage)
	if err != nil {
		h.respondError(w, "search assets", err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Data: assets, Pagination: pagination})
}

func (h *Handler) byGRN(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ByGRN(r.Context(), chi.URLParam(r, "grnNo"))
	if err != nil {
		h.respondError(w, "assets by grn", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	asset, err := h.service.Get(r.Context(), chi.URLParam(r, "itemSerial"))
	if err != nil {
		h.respondError(w, "get asset", err)
		return
	}
	httpx.JSON(w, http.StatusOK, asset)
}

func (h *Handler) updatePlacement(w http.ResponseWriter, r *http.Request) {
	var placement PlacementInput
	if err := httpx.DecodeJSON(r, &placement); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return
	}

	asset, err := h.service.UpdatePlacement(r.Context(), chi.URLParam(r, "itemSerial"), placement)
	if err != nil {
		h.respondError(w, "update placement", err)
		return
	}
	httpx.JSON(w, http.StatusOK, asset)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrAssetNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrStoreUnavailable):
		h.logger.Error("assets store unavailable", slog.String("op", op), slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Store Unavailable", ErrStoreUnavailable.Error())
	default:
		h.logger.Error("assets handler failure", slog.String("op", op), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
