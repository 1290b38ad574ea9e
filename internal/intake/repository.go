// Package intake creates and maintains staging rows ahead of approval.
package intake

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-fam/atlas-fam/internal/grn"
	"github.com/atlas-fam/atlas-fam/internal/platform/db"
)

// RepositoryPort describes the persistence operations used by Service.
type RepositoryPort interface {
	GRNExists(ctx context.Context, grnNo string) (bool, error)
	CreateBatch(ctx context.Context, items []grn.StagingItem) error
	List(ctx context.Context, limit, offset int, search string) ([]grn.StagingItem, int, error)
	Get(ctx context.Context, itemSerial string) (grn.StagingItem, error)
	Update(ctx context.Context, item grn.StagingItem) error
	Delete(ctx context.Context, itemSerial string) (bool, error)
}

// Repository provides PostgreSQL backed staging persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GRNExists reports whether any staging row carries the grn number.
func (r *Repository) GRNExists(ctx context.Context, grnNo string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM item_grn WHERE grn_no = $1)`, grnNo).Scan(&exists)
	return exists, err
}

// CreateBatch inserts every expanded staging row in one transaction.
func (r *Repository) CreateBatch(ctx context.Context, items []grn.StagingItem) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now()
		for _, item := range items {
			pics := grn.PicColumns(item.Images)
			_, err := tx.Exec(ctx, `INSERT INTO item_grn (`+grn.StagingColumns+`)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,
					$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,
					$34,$35,$36,$37,$38,$39,$40)`,
				item.ItemSerial, item.GRNNo, item.GRNDate, item.MiddleCategory,
				item.SubCategoryID, item.SubCategory, item.ItemName, item.Brand,
				item.Model, item.Manufacturer, item.Type, item.Supplier, item.PONo,
				item.PurchaseDate, item.InvoiceNo, item.UnitPrice, item.InvoiceTotal,
				item.Source, item.ReceiveType, item.PurchaseType,
				item.WarrantyExpiry, item.ServiceStart, item.ServiceEnd,
				item.SalvageValue, item.Remarks, item.ReplicateFlag, item.CenterID,
				item.LocationID, item.DepartmentID, item.EmployeeID, item.SerialNo,
				item.BookNo, item.BarcodeNo, pics[0], pics[1], pics[2], pics[3],
				nil, now, now)
			if err != nil {
				if grn.IsUniqueViolation(err) {
					return ErrDuplicateGRN
				}
				return err
			}
		}
		return nil
	})
}

// List returns one page of staging rows, newest receipt first, with the total
// row count for the search. An empty search matches everything.
func (r *Repository) List(ctx context.Context, limit, offset int, search string) ([]grn.StagingItem, int, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = ` WHERE item_name ILIKE $1 OR po_no ILIKE $1 OR invoice_no ILIKE $1 OR grn_no ILIKE $1 OR supplier ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM item_grn`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := new(strings.Builder)
	query.WriteString(`SELECT ` + grn.StagingColumns + ` FROM item_grn` + where)
	query.WriteString(` ORDER BY created_at DESC, item_serial ASC`)
	query.WriteString(` LIMIT $` + strconv.Itoa(len(args)+1))
	args = append(args, limit)
	query.WriteString(` OFFSET $` + strconv.Itoa(len(args)+1))
	args = append(args, offset)

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := grn.CollectStagingItems(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get loads one staging row.
func (r *Repository) Get(ctx context.Context, itemSerial string) (grn.StagingItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+grn.StagingColumns+` FROM item_grn WHERE item_serial = $1`, itemSerial)
	if err != nil {
		return grn.StagingItem{}, err
	}
	defer rows.Close()

	items, err := grn.CollectStagingItems(rows)
	if err != nil {
		return grn.StagingItem{}, err
	}
	if len(items) == 0 {
		return grn.StagingItem{}, ErrItemNotFound
	}
	return items[0], nil
}

// Update rewrites the editable fields of a pending row. Rows that already
// carry a decision are immutable from intake.
func (r *Repository) Update(ctx context.Context, item grn.StagingItem) error {
	tag, err := r.pool.Exec(ctx, `UPDATE item_grn SET
			item_name = $1, brand = $2, model = $3, manufacturer = $4, type = $5,
			unit_price = $6, salvage_value = $7, remarks = $8, center_id = $9,
			location_id = $10, department_id = $11, employee_id = $12,
			serial_no = $13, book_no = $14, barcode_no = $15,
			warranty_expiry = $16, service_start = $17, service_end = $18,
			updated_at = NOW()
		WHERE item_serial = $19 AND status IS NULL`,
		item.ItemName, item.Brand, item.Model, item.Manufacturer, item.Type,
		item.UnitPrice, item.SalvageValue, item.Remarks, item.CenterID,
		item.LocationID, item.DepartmentID, item.EmployeeID, item.SerialNo,
		item.BookNo, item.BarcodeNo, item.WarrantyExpiry, item.ServiceStart,
		item.ServiceEnd, item.ItemSerial)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Get(ctx, item.ItemSerial); err != nil {
			if errors.Is(err, ErrItemNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		return ErrNotPending
	}
	return nil
}

// Delete removes one staging row. Returns false when the row does not exist.
func (r *Repository) Delete(ctx context.Context, itemSerial string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM item_grn WHERE item_serial = $1`, itemSerial)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
