package intake

import (
	"context"
	"errors"
	"fmt"

	"github.com/atlas-fam/atlas-fam/internal/grn"
	"github.com/atlas-fam/atlas-fam/internal/shared"
)

// Service implements the staging intake workflow.
type Service struct {
	repo  RepositoryPort
	audit grn.AuditPort
}

// NewService constructs the intake service.
func NewService(repo RepositoryPort, audit grn.AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// CreateGRN stages one goods receipt, expanding Qty into one row per physical
// unit. Unit item serials are <grn_no>-1 .. <grn_no>-N. The whole receipt
// lands in a single transaction or not at all.
func (s *Service) CreateGRN(ctx context.Context, input CreateGRNInput) (CreateGRNResult, error) {
	if len(input.Allocations) > input.Qty {
		return CreateGRNResult{}, fmt.Errorf("%w: more allocations than units", ErrInvalidInput)
	}

	exists, err := s.repo.GRNExists(ctx, input.GRNNo)
	if err != nil {
		return CreateGRNResult{}, classify(err)
	}
	if exists {
		return CreateGRNResult{}, ErrDuplicateGRN
	}

	items := expandUnits(input)
	if err := s.repo.CreateBatch(ctx, items); err != nil {
		return CreateGRNResult{}, classify(err)
	}

	serials := make([]string, len(items))
	for i, item := range items {
		serials[i] = item.ItemSerial
	}
	s.recordAudit(ctx, "GRN_CREATE", input.GRNNo, map[string]any{"units": len(items)})
	return CreateGRNResult{GRNNo: input.GRNNo, ItemSerials: serials, Count: len(items)}, nil
}

// List returns one page of staging rows matching the search term.
func (s *Service) List(ctx context.Context, page, perPage int, search string) ([]grn.StagingItem, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	items, total, err := s.repo.List(ctx, p.PerPage, p.Offset(), search)
	if err != nil {
		return nil, shared.Pagination{}, classify(err)
	}
	if items == nil {
		items = []grn.StagingItem{}
	}
	return items, shared.NewPagination(p.Page, p.PerPage, total), nil
}

// Get loads one staging row.
func (s *Service) Get(ctx context.Context, itemSerial string) (grn.StagingItem, error) {
	if itemSerial == "" {
		return grn.StagingItem{}, ErrInvalidInput
	}
	item, err := s.repo.Get(ctx, itemSerial)
	if err != nil {
		return grn.StagingItem{}, classify(err)
	}
	return item, nil
}

// Update rewrites the editable fields of one pending staging row.
func (s *Service) Update(ctx context.Context, itemSerial string, input UpdateItemInput) (grn.StagingItem, error) {
	if itemSerial == "" {
		return grn.StagingItem{}, ErrInvalidInput
	}
	item := grn.StagingItem{
		ItemSerial:     itemSerial,
		ItemName:       input.ItemName,
		Brand:          input.Brand,
		Model:          input.Model,
		Manufacturer:   input.Manufacturer,
		Type:           input.Type,
		UnitPrice:      input.UnitPrice,
		SalvageValue:   input.SalvageValue,
		Remarks:        input.Remarks,
		CenterID:       input.CenterID,
		LocationID:     input.LocationID,
		DepartmentID:   input.DepartmentID,
		EmployeeID:     input.EmployeeID,
		SerialNo:       input.SerialNo,
		BookNo:         input.BookNo,
		BarcodeNo:      input.BarcodeNo,
		WarrantyExpiry: input.WarrantyExpiry,
		ServiceStart:   input.ServiceStart,
		ServiceEnd:     input.ServiceEnd,
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return grn.StagingItem{}, classify(err)
	}
	updated, err := s.repo.Get(ctx, itemSerial)
	if err != nil {
		return grn.StagingItem{}, classify(err)
	}
	s.recordAudit(ctx, "GRN_ITEM_UPDATE", itemSerial, nil)
	return updated, nil
}

// Delete removes one staging row.
func (s *Service) Delete(ctx context.Context, itemSerial string) error {
	if itemSerial == "" {
		return ErrInvalidInput
	}
	found, err := s.repo.Delete(ctx, itemSerial)
	if err != nil {
		return classify(err)
	}
	if !found {
		return ErrItemNotFound
	}
	s.recordAudit(ctx, "GRN_ITEM_DELETE", itemSerial, nil)
	return nil
}

// expandUnits fans one receipt out into per-unit staging rows. Allocations are
// applied positionally; units beyond the allocation list stay unplaced.
func expandUnits(input CreateGRNInput) []grn.StagingItem {
	items := make([]grn.StagingItem, 0, input.Qty)
	for i := 0; i < input.Qty; i++ {
		item := grn.StagingItem{
			ItemSerial:     fmt.Sprintf("%s-%d", input.GRNNo, i+1),
			GRNNo:          input.GRNNo,
			GRNDate:        input.GRNDate,
			MiddleCategory: input.MiddleCategory,
			SubCategoryID:  input.SubCategoryID,
			SubCategory:    input.SubCategory,
			ItemName:       input.ItemName,
			Brand:          input.Brand,
			Model:          input.Model,
			Manufacturer:   input.Manufacturer,
			Type:           input.Type,
			Supplier:       input.Supplier,
			PONo:           input.PONo,
			PurchaseDate:   input.PurchaseDate,
			InvoiceNo:      input.InvoiceNo,
			UnitPrice:      input.UnitPrice,
			InvoiceTotal:   input.InvoiceTotal,
			Source:         input.Source,
			ReceiveType:    input.ReceiveType,
			PurchaseType:   input.PurchaseType,
			WarrantyExpiry: input.WarrantyExpiry,
			ServiceStart:   input.ServiceStart,
			ServiceEnd:     input.ServiceEnd,
			SalvageValue:   input.SalvageValue,
			Remarks:        input.Remarks,
			ReplicateFlag:  input.ReplicateFlag,
			Images:         input.Images,
		}
		if i < len(input.Allocations) {
			alloc := input.Allocations[i]
			item.CenterID = alloc.CenterID
			item.LocationID = alloc.LocationID
			item.DepartmentID = alloc.DepartmentID
			item.EmployeeID = alloc.EmployeeID
			item.SerialNo = alloc.SerialNo
			item.BookNo = alloc.BookNo
			item.BarcodeNo = alloc.BarcodeNo
		}
		items = append(items, item)
	}
	return items
}

func (s *Service) recordAudit(ctx context.Context, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorFromContext(ctx),
		Action:   action,
		Entity:   "item_grn",
		EntityID: entityID,
		Meta:     meta,
	})
}

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrDuplicateGRN),
		errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrNotPending):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
