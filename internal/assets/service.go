package assets

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/atlas-fam/atlas-fam/internal/grn"
	"github.com/atlas-fam/atlas-fam/internal/shared"
)

// Service implements registry reads and placement maintenance.
type Service struct {
	repo    RepositoryPort
	audit   grn.AuditPort
	printer *message.Printer
}

// NewService constructs the registry service.
func NewService(repo RepositoryPort, audit grn.AuditPort) *Service {
	return &Service{repo: repo, audit: audit, printer: message.NewPrinter(language.English)}
}

// List returns one page of registered assets.
func (s *Service) List(ctx context.Context, page, perPage int) ([]grn.MasterAsset, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	assets, total, err := s.repo.List(ctx, p.PerPage, p.Offset())
	if err != nil {
		return nil, shared.Pagination{}, classify(err)
	}
	if assets == nil {
		assets = []grn.MasterAsset{}
	}
	return assets, shared.NewPagination(p.Page, p.PerPage, total), nil
}

// Get loads one registered asset.
func (s *Service) Get(ctx context.Context, itemSerial string) (grn.MasterAsset, error) {
	if itemSerial == "" {
		return grn.MasterAsset{}, ErrInvalidInput
	}
	asset, err := s.repo.Get(ctx, itemSerial)
	if err != nil {
		return grn.MasterAsset{}, classify(err)
	}
	return asset, nil
}

// Search filters the registry.
func (s *Service) Search(ctx context.Context, filters SearchFilters, page, perPage int) ([]grn.MasterAsset, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	assets, total, err := s.repo.Search(ctx, filters, p.PerPage, p.Offset())
	if err != nil {
		return nil, shared.Pagination{}, classify(err)
	}
	if assets == nil {
		assets = []grn.MasterAsset{}
	}
	return assets, shared.NewPagination(p.Page, p.PerPage, total), nil
}

// ByGRN returns one receipt's registered assets plus an aggregate summary.
// A receipt with no registered assets is a miss, even if staging rows exist.
func (s *Service) ByGRN(ctx context.Context, grnNo string) (GRNAssetsResponse, error) {
	if grnNo == "" {
		return GRNAssetsResponse{}, ErrInvalidInput
	}
	assets, err := s.repo.ByGRN(ctx, grnNo)
	if err != nil {
		return GRNAssetsResponse{}, classify(err)
	}
	if len(assets) == 0 {
		return GRNAssetsResponse{}, ErrAssetNotFound
	}
	rejected, err := s.repo.CountRejectedStaging(ctx, grnNo)
	if err != nil {
		return GRNAssetsResponse{}, classify(err)
	}
	return GRNAssetsResponse{Summary: s.summarize(grnNo, assets, rejected), Assets: assets}, nil
}

// UpdatePlacement moves an asset to a new center, holder or identifier set.
// The registration item_code stays immutable; only current_item_code moves.
func (s *Service) UpdatePlacement(ctx context.Context, itemSerial string, placement PlacementInput) (grn.MasterAsset, error) {
	if itemSerial == "" {
		return grn.MasterAsset{}, ErrInvalidInput
	}
	found, err := s.repo.UpdatePlacement(ctx, itemSerial, placement)
	if err != nil {
		return grn.MasterAsset{}, classify(err)
	}
	if !found {
		return grn.MasterAsset{}, ErrAssetNotFound
	}
	asset, err := s.repo.Get(ctx, itemSerial)
	if err != nil {
		return grn.MasterAsset{}, classify(err)
	}
	s.recordAudit(ctx, itemSerial, placement)
	return asset, nil
}

func (s *Service) summarize(grnNo string, assets []grn.MasterAsset, rejected int) GRNSummary {
	names := make(map[string]bool)
	centers := make(map[string]bool)
	departments := make(map[string]bool)
	images := 0
	total := 0.0
	for _, asset := range assets {
		if asset.ItemName != "" {
			names[asset.ItemName] = true
		}
		if asset.CenterID != "" {
			centers[asset.CenterID] = true
		}
		if asset.DepartmentID != "" {
			departments[asset.DepartmentID] = true
		}
		images += len(asset.Images)
		total += asset.UnitPrice
	}

	return GRNSummary{
		GRNNo:             grnNo,
		ApprovedCount:     len(assets),
		RejectedCount:     rejected,
		FirstItemSerial:   assets[0].ItemSerial,
		LastItemSerial:    assets[len(assets)-1].ItemSerial,
		ItemNames:         sortedKeys(names),
		Centers:           sortedKeys(centers),
		Departments:       sortedKeys(departments),
		ImageCount:        images,
		TotalValue:        total,
		TotalValueDisplay: s.printer.Sprintf("%.2f", total),
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *Service) recordAudit(ctx context.Context, itemSerial string, placement PlacementInput) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorFromContext(ctx),
		Action:   "ASSET_PLACEMENT_UPDATE",
		Entity:   "fixed_asset_master",
		EntityID: itemSerial,
		Meta: map[string]any{
			"center_id":         placement.CenterID,
			"current_item_code": placement.CurrentItemCode,
		},
	})
}

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrAssetNotFound):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
