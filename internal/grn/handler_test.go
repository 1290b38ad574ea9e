package grn

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(repo RepositoryPort) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, newTestService(repo), nil)
	r := chi.NewRouter()
	r.Route("/grn", handler.MountRoutes)
	return r
}

func TestHandlerApproveBatch(t *testing.T) {
	repo := newMemoryRepo(
		pendingItem("S1", "GRN-2024-07"),
		pendingItem("S2", "GRN-2024-07"),
	)
	router := newTestRouter(repo)

	body := `{"decisions":{"S1":1,"S2":0}}`
	req := httptest.NewRequest(http.MethodPost, "/grn/GRN-2024-07/approve", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var summary ApprovalSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Equal(t, 1, summary.ApprovedCount)
	require.Equal(t, 1, summary.RejectedCount)
	require.Equal(t, "2024000001", summary.FirstItemCode)
}

func TestHandlerApproveBatchRejectsBadPayloads(t *testing.T) {
	router := newTestRouter(newMemoryRepo(pendingItem("S1", "GRN-1")))

	cases := map[string]string{
		"malformed json":    `{"decisions":`,
		"empty decisions":   `{"decisions":{}}`,
		"bad decision code": `{"decisions":{"S1":7}}`,
	}
	for name, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/grn/GRN-1/approve", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestHandlerApproveBatchUnknownGRN(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	req := httptest.NewRequest(http.MethodPost, "/grn/GRN-NOPE/approve", strings.NewReader(`{"decisions":{"S1":1}}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerListPending(t *testing.T) {
	router := newTestRouter(newMemoryRepo(pendingItem("S1", "GRN-A")))

	req := httptest.NewRequest(http.MethodGet, "/grn/pending", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PendingGRNsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, []string{"GRN-A"}, resp.Data)
}

func TestHandlerGetBatch(t *testing.T) {
	router := newTestRouter(newMemoryRepo(pendingItem("S1", "GRN-A")))

	req := httptest.NewRequest(http.MethodGet, "/grn/GRN-A", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "GRN-A", resp.GRNNo)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "S1", resp.Items[0].ItemSerial)
}

func TestHandlerUpdateItemStatus(t *testing.T) {
	repo := newMemoryRepo(pendingItem("S1", "GRN-A"))
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodPut, "/grn/items/S1/status", strings.NewReader(`{"status":0}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, DecisionReject, *repo.staging["S1"].Status)

	req = httptest.NewRequest(http.MethodPut, "/grn/items/MISSING/status", strings.NewReader(`{"status":1}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
