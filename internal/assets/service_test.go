package assets

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlas-fam/atlas-fam/internal/grn"
)

type memoryRepo struct {
	assets   map[string]grn.MasterAsset
	rejected map[string]int
}

func newMemoryRepo(assets ...grn.MasterAsset) *memoryRepo {
	repo := &memoryRepo{assets: make(map[string]grn.MasterAsset), rejected: make(map[string]int)}
	for _, asset := range assets {
		repo.assets[asset.ItemSerial] = asset
	}
	return repo
}

func (m *memoryRepo) sorted() []grn.MasterAsset {
	all := make([]grn.MasterAsset, 0, len(m.assets))
	for _, asset := range m.assets {
		all = append(all, asset)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ItemSerial < all[j].ItemSerial })
	return all
}

func (m *memoryRepo) List(ctx context.Context, limit, offset int) ([]grn.MasterAsset, int, error) {
	all := m.sorted()
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memoryRepo) Get(ctx context.Context, itemSerial string) (grn.MasterAsset, error) {
	asset, ok := m.assets[itemSerial]
	if !ok {
		return grn.MasterAsset{}, ErrAssetNotFound
	}
	return asset, nil
}

func (m *memoryRepo) Search(ctx context.Context, filters SearchFilters, limit, offset int) ([]grn.MasterAsset, int, error) {
	var matched []grn.MasterAsset
	for _, asset := range m.sorted() {
		if filters.ItemCode != "" && asset.ItemCode != filters.ItemCode && asset.CurrentItemCode != filters.ItemCode {
			continue
		}
		if filters.ItemName != "" && !strings.Contains(asset.ItemName, filters.ItemName) {
			continue
		}
		if filters.GRNNo != "" && asset.GRNNo != filters.GRNNo {
			continue
		}
		if filters.CenterID != "" && asset.CenterID != filters.CenterID {
			continue
		}
		matched = append(matched, asset)
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

func (m *memoryRepo) ByGRN(ctx context.Context, grnNo string) ([]grn.MasterAsset, error) {
	var matched []grn.MasterAsset
	for _, asset := range m.sorted() {
		if asset.GRNNo == grnNo {
			matched = append(matched, asset)
		}
	}
	return matched, nil
}

func (m *memoryRepo) CountRejectedStaging(ctx context.Context, grnNo string) (int, error) {
	return m.rejected[grnNo], nil
}

func (m *memoryRepo) UpdatePlacement(ctx context.Context, itemSerial string, placement PlacementInput) (bool, error) {
	asset, ok := m.assets[itemSerial]
	if !ok {
		return false, nil
	}
	asset.CenterID = placement.CenterID
	asset.LocationID = placement.LocationID
	asset.DepartmentID = placement.DepartmentID
	asset.EmployeeID = placement.EmployeeID
	asset.SerialNo = placement.SerialNo
	asset.BookNo = placement.BookNo
	asset.BarcodeNo = placement.BarcodeNo
	if placement.CurrentItemCode != "" {
		asset.CurrentItemCode = placement.CurrentItemCode
	}
	m.assets[itemSerial] = asset
	return true, nil
}

func registeredAsset(serial, grnNo, code string) grn.MasterAsset {
	return grn.MasterAsset{
		StagingItem: grn.StagingItem{
			ItemSerial: serial,
			GRNNo:      grnNo,
			ItemName:   "Dell Latitude 5440",
			CenterID:   "C01",
			UnitPrice:  1250.50,
			Images:     []string{"front.jpg"},
		},
		ItemCode:        code,
		CurrentItemCode: code,
	}
}

func TestByGRNSummarizes(t *testing.T) {
	a := registeredAsset("S1", "GRN-1", "2024000001")
	b := registeredAsset("S2", "GRN-1", "2024000002")
	b.ItemName = "HP ProBook 450"
	b.CenterID = "C02"
	repo := newMemoryRepo(a, b)
	repo.rejected["GRN-1"] = 1
	svc := NewService(repo, nil)

	resp, err := svc.ByGRN(context.Background(), "GRN-1")
	require.NoError(t, err)
	require.Len(t, resp.Assets, 2)

	summary := resp.Summary
	require.Equal(t, 2, summary.ApprovedCount)
	require.Equal(t, 1, summary.RejectedCount)
	require.Equal(t, "S1", summary.FirstItemSerial)
	require.Equal(t, "S2", summary.LastItemSerial)
	require.Equal(t, []string{"Dell Latitude 5440", "HP ProBook 450"}, summary.ItemNames)
	require.Equal(t, []string{"C01", "C02"}, summary.Centers)
	require.Equal(t, 2, summary.ImageCount)
	require.InDelta(t, 2501.00, summary.TotalValue, 0.001)
	require.Equal(t, "2,501.00", summary.TotalValueDisplay)
}

func TestByGRNUnknownReceipt(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.ByGRN(context.Background(), "GRN-NOPE")
	require.ErrorIs(t, err, ErrAssetNotFound)
}

func TestSearchByCurrentItemCode(t *testing.T) {
	moved := registeredAsset("S1", "GRN-1", "2024000001")
	moved.CurrentItemCode = "2025000009"
	svc := NewService(newMemoryRepo(moved, registeredAsset("S2", "GRN-1", "2024000002")), nil)

	assets, pagination, err := svc.Search(context.Background(), SearchFilters{ItemCode: "2025000009"}, 1, 10)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	require.Equal(t, "S1", assets[0].ItemSerial)
	require.Equal(t, 1, pagination.Total)
}

func TestUpdatePlacementKeepsItemCode(t *testing.T) {
	repo := newMemoryRepo(registeredAsset("S1", "GRN-1", "2024000001"))
	svc := NewService(repo, nil)

	asset, err := svc.UpdatePlacement(context.Background(), "S1", PlacementInput{
		CenterID:        "C09",
		LocationID:      "L05",
		CurrentItemCode: "2025000100",
	})
	require.NoError(t, err)
	require.Equal(t, "C09", asset.CenterID)
	require.Equal(t, "2025000100", asset.CurrentItemCode)
	// The registration code never moves.
	require.Equal(t, "2024000001", asset.ItemCode)

	_, err = svc.UpdatePlacement(context.Background(), "MISSING", PlacementInput{})
	require.ErrorIs(t, err, ErrAssetNotFound)
}

func TestListPaginates(t *testing.T) {
	svc := NewService(newMemoryRepo(
		registeredAsset("S1", "GRN-1", "2024000001"),
		registeredAsset("S2", "GRN-1", "2024000002"),
		registeredAsset("S3", "GRN-2", "2024000003"),
	), nil)

	assets, pagination, err := svc.List(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	require.Equal(t, 3, pagination.Total)
	require.Equal(t, 2, pagination.TotalPages)
}
