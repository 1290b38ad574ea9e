package grn

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atlas-fam/atlas-fam/internal/masterdata"
	"github.com/atlas-fam/atlas-fam/internal/shared"
)

// NameResolverPort supplies reference name tables for batch display.
type NameResolverPort interface {
	Names(ctx context.Context) (masterdata.NameTable, error)
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the GRN approval workflow: it is the only component
// that moves staging rows out of the pending state.
type Service struct {
	repo        RepositoryPort
	resolver    NameResolverPort
	audit       AuditPort
	idempotency *shared.IdempotencyStore
	clock       func() time.Time
}

// NewService constructs the approval service.
func NewService(repo RepositoryPort, resolver NameResolverPort, audit AuditPort, idem *shared.IdempotencyStore) *Service {
	return &Service{repo: repo, resolver: resolver, audit: audit, idempotency: idem, clock: time.Now}
}

// ListPendingGRNs returns grn numbers that still have undecided staging rows.
func (s *Service) ListPendingGRNs(ctx context.Context) ([]string, error) {
	grnNos, err := s.repo.ListPendingGRNs(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return grnNos, nil
}

// GetBatch assembles one GRN's staging rows for display, resolving reference
// ids to names. Name resolution is a display aid only: a failed lookup
// degrades that field to a nil name and never fails the request. An unknown
// grn number yields an empty slice.
func (s *Service) GetBatch(ctx context.Context, grnNo string) ([]BatchRow, error) {
	if grnNo == "" {
		return nil, ErrInvalidRequest
	}
	items, err := s.repo.ListBatch(ctx, grnNo)
	if err != nil {
		return nil, classify(err)
	}

	var names masterdata.NameTable
	if s.resolver != nil {
		// Even on error the resolver hands back whichever tables loaded,
		// so one unavailable reference table only blanks its own column.
		names, _ = s.resolver.Names(ctx)
	}

	batch := make([]BatchRow, 0, len(items))
	for _, item := range items {
		batch = append(batch, BatchRow{
			StagingItem:    item,
			CenterName:     names.Center(item.CenterID),
			LocationName:   names.Location(item.LocationID),
			DepartmentName: names.Department(item.DepartmentID),
			EmployeeName:   names.Employee(item.EmployeeID),
		})
	}
	return batch, nil
}

// UpdateItemStatus records a provisional decision on a single staging row
// ahead of the batch commit. Re-marking a row with the same decision is a
// no-op, not an error.
func (s *Service) UpdateItemStatus(ctx context.Context, itemSerial string, decision Decision) error {
	if itemSerial == "" || (decision != DecisionApprove && decision != DecisionReject) {
		return ErrInvalidRequest
	}
	found, err := s.repo.UpdateStagingStatus(ctx, itemSerial, decision)
	if err != nil {
		return classify(err)
	}
	if !found {
		return ErrItemNotFound
	}
	return nil
}

// ApproveBatch resolves a decision set against one GRN in a single
// transaction. Approved rows are migrated to the master registry with freshly
// allocated item codes and removed from staging; rejected rows are flagged in
// place; undecided rows stay pending. Any failure rolls the whole batch back.
// A lost code-allocation race retries the entire transaction once.
func (s *Service) ApproveBatch(ctx context.Context, grnNo string, decisions map[string]Decision) (ApprovalSummary, error) {
	if grnNo == "" || len(decisions) == 0 {
		return ApprovalSummary{}, ErrInvalidRequest
	}
	for _, decision := range decisions {
		if decision != DecisionApprove && decision != DecisionReject {
			return ApprovalSummary{}, ErrInvalidRequest
		}
	}

	key := ""
	inserted := false
	if s.idempotency != nil {
		key = approvalKey(grnNo, decisions)
		if err := s.idempotency.CheckAndInsert(ctx, key, "grn.approve"); err != nil {
			return ApprovalSummary{}, err
		}
		inserted = true
	}

	var summary ApprovalSummary
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		summary, err = s.runApproval(ctx, grnNo, decisions)
		if err == nil || !isAllocationConflict(err) {
			break
		}
	}
	if err != nil {
		if inserted {
			_ = s.idempotency.Delete(ctx, key)
		}
		if isAllocationConflict(err) {
			return ApprovalSummary{}, fmt.Errorf("%w: %v", ErrCodeConflict, err)
		}
		return ApprovalSummary{}, classify(err)
	}

	s.recordAudit(ctx, summary)
	return summary, nil
}

func (s *Service) runApproval(ctx context.Context, grnNo string, decisions map[string]Decision) (ApprovalSummary, error) {
	year := s.clock().Year()
	var summary ApprovalSummary
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		rows, err := tx.LockBatch(ctx, grnNo)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return ErrBatchNotFound
		}

		// Rows arrive in item_serial order, which makes the allocated code
		// range deterministic for a given input.
		var firstCode, lastCode string
		approved, rejected := 0, 0
		for _, row := range rows {
			decision, ok := decisions[row.ItemSerial]
			if !ok {
				continue
			}
			switch decision {
			case DecisionApprove:
				code, err := tx.NextItemCode(ctx, year)
				if err != nil {
					return err
				}
				if err := tx.InsertMasterAsset(ctx, newMasterAsset(row, code)); err != nil {
					return err
				}
				if err := tx.DeleteStagingItem(ctx, row.ItemSerial); err != nil {
					return err
				}
				if firstCode == "" {
					firstCode = code
				}
				lastCode = code
				approved++
			case DecisionReject:
				if err := tx.MarkStagingRejected(ctx, row.ItemSerial); err != nil {
					return err
				}
				rejected++
			}
		}

		summary = ApprovalSummary{
			GRNNo:         grnNo,
			ApprovedCount: approved,
			RejectedCount: rejected,
			FirstItemCode: firstCode,
			LastItemCode:  lastCode,
			Remaining:     len(rows) - approved,
		}
		summary.Message = summaryMessage(summary)
		return nil
	})
	if err != nil {
		return ApprovalSummary{}, err
	}
	return summary, nil
}

func newMasterAsset(row StagingItem, code string) MasterAsset {
	approved := DecisionApprove
	row.Status = &approved
	return MasterAsset{StagingItem: row, ItemCode: code, CurrentItemCode: code}
}

func summaryMessage(summary ApprovalSummary) string {
	message := fmt.Sprintf("%d items approved and %d items rejected", summary.ApprovedCount, summary.RejectedCount)
	if summary.Remaining == 0 {
		return fmt.Sprintf("%s. GRN %s has been fully processed.", message, summary.GRNNo)
	}
	return fmt.Sprintf("%s. GRN %s has %d items remaining in staging.", message, summary.GRNNo, summary.Remaining)
}

// approvalKey derives a stable idempotency key from the grn number and the
// canonicalised decision set, so resubmitting the same batch is rejected while
// a follow-up batch with different decisions is not.
func approvalKey(grnNo string, decisions map[string]Decision) string {
	serials := make([]string, 0, len(decisions))
	for serial := range decisions {
		serials = append(serials, serial)
	}
	sort.Strings(serials)

	var b strings.Builder
	b.WriteString(grnNo)
	for _, serial := range serials {
		fmt.Fprintf(&b, ";%s=%d", serial, decisions[serial])
	}
	digest := uuid.NewSHA1(uuid.Nil, []byte(b.String()))
	return fmt.Sprintf("GRN-APPROVE:%s:%s", grnNo, digest)
}

func (s *Service) recordAudit(ctx context.Context, summary ApprovalSummary) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorFromContext(ctx),
		Action:   "GRN_APPROVE",
		Entity:   "grn",
		EntityID: summary.GRNNo,
		Meta: map[string]any{
			"approved":   summary.ApprovedCount,
			"rejected":   summary.RejectedCount,
			"first_code": summary.FirstItemCode,
			"last_code":  summary.LastItemCode,
		},
	})
}

// isAllocationConflict reports whether err is a lost code-allocation race:
// a duplicate item_code on the master insert, or a serialization abort on
// the sequence row lock. Both warrant one whole-batch retry.
func isAllocationConflict(err error) bool {
	return IsUniqueViolation(err) || IsSerializationFailure(err)
}

// classify maps store-level failures onto the workflow error taxonomy while
// letting already-classified errors through untouched.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrBatchNotFound),
		errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrCodeConflict):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
