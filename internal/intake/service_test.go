package intake

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atlas-fam/atlas-fam/internal/grn"
)

type memoryRepo struct {
	staging map[string]grn.StagingItem
	order   []string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{staging: make(map[string]grn.StagingItem)}
}

func (m *memoryRepo) GRNExists(ctx context.Context, grnNo string) (bool, error) {
	for _, item := range m.staging {
		if item.GRNNo == grnNo {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) CreateBatch(ctx context.Context, items []grn.StagingItem) error {
	for _, item := range items {
		if _, dup := m.staging[item.ItemSerial]; dup {
			return ErrDuplicateGRN
		}
	}
	for _, item := range items {
		m.staging[item.ItemSerial] = item
		m.order = append(m.order, item.ItemSerial)
	}
	return nil
}

func (m *memoryRepo) List(ctx context.Context, limit, offset int, search string) ([]grn.StagingItem, int, error) {
	var matched []grn.StagingItem
	serials := append([]string(nil), m.order...)
	sort.Strings(serials)
	for _, serial := range serials {
		item := m.staging[serial]
		if search == "" || strings.Contains(item.ItemName, search) ||
			strings.Contains(item.PONo, search) || strings.Contains(item.InvoiceNo, search) ||
			strings.Contains(item.GRNNo, search) || strings.Contains(item.Supplier, search) {
			matched = append(matched, item)
		}
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *memoryRepo) Get(ctx context.Context, itemSerial string) (grn.StagingItem, error) {
	item, ok := m.staging[itemSerial]
	if !ok {
		return grn.StagingItem{}, ErrItemNotFound
	}
	return item, nil
}

func (m *memoryRepo) Update(ctx context.Context, item grn.StagingItem) error {
	current, ok := m.staging[item.ItemSerial]
	if !ok {
		return ErrItemNotFound
	}
	if current.Status != nil {
		return ErrNotPending
	}
	item.GRNNo = current.GRNNo
	item.CreatedAt = current.CreatedAt
	m.staging[item.ItemSerial] = item
	return nil
}

func (m *memoryRepo) Delete(ctx context.Context, itemSerial string) (bool, error) {
	if _, ok := m.staging[itemSerial]; !ok {
		return false, nil
	}
	delete(m.staging, itemSerial)
	return true, nil
}

func receiptInput(grnNo string, qty int) CreateGRNInput {
	date := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	return CreateGRNInput{
		GRNNo:          grnNo,
		GRNDate:        &date,
		MiddleCategory: "IT Equipment",
		SubCategory:    "Laptops",
		ItemName:       "Dell Latitude 5440",
		Supplier:       "Dell Lanka",
		PONo:           "PO-1001",
		PurchaseDate:   &date,
		InvoiceNo:      "INV-7001",
		UnitPrice:      1250,
		Qty:            qty,
	}
}

func TestCreateGRNExpandsQty(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	input := receiptInput("GRN-2024-07", 3)
	input.Images = []string{"front.jpg", "back.jpg"}
	input.Allocations = []Allocation{
		{CenterID: "C01", LocationID: "L01", SerialNo: "SN-1"},
		{CenterID: "C01", LocationID: "L02", SerialNo: "SN-2"},
	}

	result, err := svc.CreateGRN(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, 3, result.Count)
	require.Equal(t, []string{"GRN-2024-07-1", "GRN-2024-07-2", "GRN-2024-07-3"}, result.ItemSerials)

	first := repo.staging["GRN-2024-07-1"]
	require.Equal(t, "C01", first.CenterID)
	require.Equal(t, "SN-1", first.SerialNo)
	require.Equal(t, []string{"front.jpg", "back.jpg"}, first.Images)

	// The third unit has no allocation and stays unplaced.
	third := repo.staging["GRN-2024-07-3"]
	require.Empty(t, third.CenterID)
	require.Empty(t, third.SerialNo)
	require.Nil(t, third.Status)
}

func TestCreateGRNRejectsDuplicateNumber(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.CreateGRN(context.Background(), receiptInput("GRN-1", 1))
	require.NoError(t, err)

	_, err = svc.CreateGRN(context.Background(), receiptInput("GRN-1", 2))
	require.ErrorIs(t, err, ErrDuplicateGRN)
}

func TestCreateGRNRejectsExcessAllocations(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	input := receiptInput("GRN-1", 1)
	input.Allocations = []Allocation{{CenterID: "C01"}, {CenterID: "C02"}}
	_, err := svc.CreateGRN(context.Background(), input)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestListPaginatesAndSearches(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.CreateGRN(context.Background(), receiptInput("GRN-A", 3))
	require.NoError(t, err)
	other := receiptInput("GRN-B", 2)
	other.ItemName = "HP ProBook 450"
	_, err = svc.CreateGRN(context.Background(), other)
	require.NoError(t, err)

	items, pagination, err := svc.List(context.Background(), 1, 2, "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 5, pagination.Total)
	require.Equal(t, 3, pagination.TotalPages)

	items, pagination, err = svc.List(context.Background(), 1, 10, "ProBook")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 2, pagination.Total)
}

func TestUpdateRejectsDecidedRows(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.CreateGRN(context.Background(), receiptInput("GRN-1", 1))
	require.NoError(t, err)

	decided := repo.staging["GRN-1-1"]
	rejected := grn.DecisionReject
	decided.Status = &rejected
	repo.staging["GRN-1-1"] = decided

	_, err = svc.Update(context.Background(), "GRN-1-1", UpdateItemInput{ItemName: "Renamed"})
	require.ErrorIs(t, err, ErrNotPending)
}

func TestUpdateRewritesPendingRow(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.CreateGRN(context.Background(), receiptInput("GRN-1", 1))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), "GRN-1-1", UpdateItemInput{
		ItemName: "Dell Latitude 5540",
		CenterID: "C09",
	})
	require.NoError(t, err)
	require.Equal(t, "Dell Latitude 5540", updated.ItemName)
	require.Equal(t, "C09", updated.CenterID)
	require.Equal(t, "GRN-1", updated.GRNNo)
}

func TestDelete(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.CreateGRN(context.Background(), receiptInput("GRN-1", 1))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "GRN-1-1"))
	require.Empty(t, repo.staging)

	err = svc.Delete(context.Background(), "GRN-1-1")
	require.ErrorIs(t, err, ErrItemNotFound)
}
