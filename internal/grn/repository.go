package grn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-fam/atlas-fam/internal/platform/db"
)

// StagingColumns is the column list shared by every item_grn read.
const StagingColumns = `item_serial, grn_no, grn_date, middle_category, sub_category_id,
	sub_category, item_name, brand, model, manufacturer, type, supplier, po_no,
	purchase_date, invoice_no, unit_price, invoice_total, source, receive_type,
	purchase_type, warranty_expiry, service_start, service_end, salvage_value,
	remarks, replicate_flag, center_id, location_id, department_id, employee_id,
	serial_no, book_no, barcode_no, item1_pic, item2_pic, item3_pic, item4_pic,
	status, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for the approval flow.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations available inside one approval
// transaction. Row locks taken by LockBatch and NextItemCode are held until
// commit or rollback.
type TxRepository interface {
	LockBatch(ctx context.Context, grnNo string) ([]StagingItem, error)
	NextItemCode(ctx context.Context, year int) (string, error)
	InsertMasterAsset(ctx context.Context, asset MasterAsset) error
	DeleteStagingItem(ctx context.Context, itemSerial string) error
	MarkStagingRejected(ctx context.Context, itemSerial string) error
}

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListPendingGRNs(ctx context.Context) ([]string, error)
	ListBatch(ctx context.Context, grnNo string) ([]StagingItem, error)
	UpdateStagingStatus(ctx context.Context, itemSerial string, decision Decision) (bool, error)
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps the callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

// ListPendingGRNs returns distinct grn numbers that still have undecided rows.
func (r *Repository) ListPendingGRNs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT grn_no FROM item_grn WHERE status IS NULL ORDER BY grn_no ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grnNos []string
	for rows.Next() {
		var grnNo string
		if err := rows.Scan(&grnNo); err != nil {
			return nil, err
		}
		grnNos = append(grnNos, grnNo)
	}
	return grnNos, rows.Err()
}

// ListBatch returns all staging rows for a grn number, item_serial ascending.
func (r *Repository) ListBatch(ctx context.Context, grnNo string) ([]StagingItem, error) {
	query := `SELECT ` + StagingColumns + ` FROM item_grn WHERE grn_no = $1 ORDER BY item_serial ASC`
	rows, err := r.pool.Query(ctx, query, grnNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return CollectStagingItems(rows)
}

// UpdateStagingStatus sets the decision flag on one staging row. Returns false
// when the row does not exist. Setting an already-set value is a no-op update.
func (r *Repository) UpdateStagingStatus(ctx context.Context, itemSerial string, decision Decision) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE item_grn SET status = $1, updated_at = NOW() WHERE item_serial = $2`, int(decision), itemSerial)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// LockBatch loads and write-locks all staging rows for a grn number.
func (tx *txRepo) LockBatch(ctx context.Context, grnNo string) ([]StagingItem, error) {
	query := `SELECT ` + StagingColumns + ` FROM item_grn WHERE grn_no = $1 ORDER BY item_serial ASC FOR UPDATE`
	rows, err := tx.tx.Query(ctx, query, grnNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return CollectStagingItems(rows)
}

// NextItemCode allocates the next code for the year from the asset_code_seq
// row, taken with a row lock so concurrent approval transactions serialize
// here. A fresh year row is seeded from the registry's maximum code for that
// year prefix, which keeps the sequence correct for registries that predate
// the sequence table.
func (tx *txRepo) NextItemCode(ctx context.Context, year int) (string, error) {
	if _, err := tx.tx.Exec(ctx, `INSERT INTO asset_code_seq (year, last_seq) VALUES ($1, 0) ON CONFLICT (year) DO NOTHING`, year); err != nil {
		return "", err
	}

	var last int
	if err := tx.tx.QueryRow(ctx, `SELECT last_seq FROM asset_code_seq WHERE year = $1 FOR UPDATE`, year).Scan(&last); err != nil {
		return "", err
	}

	if last == 0 {
		var maxCode string
		err := tx.tx.QueryRow(ctx, `SELECT COALESCE(MAX(item_code), '') FROM fixed_asset_master WHERE item_code LIKE $1`, fmt.Sprintf("%04d%%", year)).Scan(&maxCode)
		if err != nil {
			return "", err
		}
		last = SeqFromMaxCode(maxCode, year)
	}

	next := last + 1
	if _, err := tx.tx.Exec(ctx, `UPDATE asset_code_seq SET last_seq = $1 WHERE year = $2`, next, year); err != nil {
		return "", err
	}
	return FormatItemCode(year, next), nil
}

// InsertMasterAsset writes one registry row carrying every staging field.
func (tx *txRepo) InsertMasterAsset(ctx context.Context, asset MasterAsset) error {
	pics := PicColumns(asset.Images)
	approved := int(DecisionApprove)
	now := time.Now()
	_, err := tx.tx.Exec(ctx, `INSERT INTO fixed_asset_master (
		item_serial, grn_no, grn_date, middle_category, sub_category_id,
		sub_category, item_name, brand, model, manufacturer, type, supplier,
		po_no, purchase_date, invoice_no, unit_price, invoice_total, source,
		receive_type, purchase_type, warranty_expiry, service_start,
		service_end, salvage_value, remarks, replicate_flag, center_id,
		location_id, department_id, employee_id, serial_no, book_no,
		barcode_no, item1_pic, item2_pic, item3_pic, item4_pic, status,
		item_code, current_item_code, created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,
		$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,
		$36,$37,$38,$39,$40,$41,$42)`,
		asset.ItemSerial, asset.GRNNo, asset.GRNDate, asset.MiddleCategory,
		asset.SubCategoryID, asset.SubCategory, asset.ItemName, asset.Brand,
		asset.Model, asset.Manufacturer, asset.Type, asset.Supplier, asset.PONo,
		asset.PurchaseDate, asset.InvoiceNo, asset.UnitPrice, asset.InvoiceTotal,
		asset.Source, asset.ReceiveType, asset.PurchaseType, asset.WarrantyExpiry,
		asset.ServiceStart, asset.ServiceEnd, asset.SalvageValue, asset.Remarks,
		asset.ReplicateFlag, asset.CenterID, asset.LocationID, asset.DepartmentID,
		asset.EmployeeID, asset.SerialNo, asset.BookNo, asset.BarcodeNo,
		pics[0], pics[1], pics[2], pics[3], approved,
		asset.ItemCode, asset.CurrentItemCode, now, now)
	return err
}

// DeleteStagingItem removes a migrated row from staging.
func (tx *txRepo) DeleteStagingItem(ctx context.Context, itemSerial string) error {
	_, err := tx.tx.Exec(ctx, `DELETE FROM item_grn WHERE item_serial = $1`, itemSerial)
	return err
}

// MarkStagingRejected flags a staging row as rejected, retaining it for audit.
func (tx *txRepo) MarkStagingRejected(ctx context.Context, itemSerial string) error {
	_, err := tx.tx.Exec(ctx, `UPDATE item_grn SET status = $1, updated_at = NOW() WHERE item_serial = $2`, int(DecisionReject), itemSerial)
	return err
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation, the signature of a lost code-allocation race.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsSerializationFailure reports whether err is a serialization abort
// (40001) or a deadlock (40P01). Under repeatable read a FOR UPDATE on the
// asset_code_seq row fails with 40001 when a concurrent approval commits
// first, so these carry the same meaning as a unique violation here.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01")
}

// CollectStagingItems scans item_grn rows selected with StagingColumns.
func CollectStagingItems(rows pgx.Rows) ([]StagingItem, error) {
	var items []StagingItem
	for rows.Next() {
		var (
			item   StagingItem
			status *int
			pics   [4]*string
		)
		if err := rows.Scan(
			&item.ItemSerial, &item.GRNNo, &item.GRNDate, &item.MiddleCategory,
			&item.SubCategoryID, &item.SubCategory, &item.ItemName, &item.Brand,
			&item.Model, &item.Manufacturer, &item.Type, &item.Supplier,
			&item.PONo, &item.PurchaseDate, &item.InvoiceNo, &item.UnitPrice,
			&item.InvoiceTotal, &item.Source, &item.ReceiveType,
			&item.PurchaseType, &item.WarrantyExpiry, &item.ServiceStart,
			&item.ServiceEnd, &item.SalvageValue, &item.Remarks,
			&item.ReplicateFlag, &item.CenterID, &item.LocationID,
			&item.DepartmentID, &item.EmployeeID, &item.SerialNo, &item.BookNo,
			&item.BarcodeNo, &pics[0], &pics[1], &pics[2], &pics[3],
			&status, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if status != nil {
			decision := Decision(*status)
			item.Status = &decision
		}
		for _, pic := range pics {
			if pic != nil && *pic != "" {
				item.Images = append(item.Images, *pic)
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// PicColumns spreads the image slice over the four fixed picture columns.
func PicColumns(images []string) [4]*string {
	var pics [4]*string
	for i := 0; i < len(images) && i < 4; i++ {
		img := images[i]
		pics[i] = &img
	}
	return pics
}
