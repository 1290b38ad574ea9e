package assets

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-fam/atlas-fam/internal/grn"
)

const masterColumns = `item_serial, grn_no, grn_date, middle_category, sub_category_id,
	sub_category, item_name, brand, model, manufacturer, type, supplier, po_no,
	purchase_date, invoice_no, unit_price, invoice_total, source, receive_type,
	purchase_type, warranty_expiry, service_start, service_end, salvage_value,
	remarks, replicate_flag, center_id, location_id, department_id, employee_id,
	serial_no, book_no, barcode_no, item1_pic, item2_pic, item3_pic, item4_pic,
	status, item_code, current_item_code, created_at, updated_at`

// RepositoryPort describes the registry reads used by Service.
type RepositoryPort interface {
	List(ctx context.Context, limit, offset int) ([]grn.MasterAsset, int, error)
	Get(ctx context.Context, itemSerial string) (grn.MasterAsset, error)
	Search(ctx context.Context, filters SearchFilters, limit, offset int) ([]grn.MasterAsset, int, error)
	ByGRN(ctx context.Context, grnNo string) ([]grn.MasterAsset, error)
	CountRejectedStaging(ctx context.Context, grnNo string) (int, error)
	UpdatePlacement(ctx context.Context, itemSerial string, placement PlacementInput) (bool, error)
}

// Repository provides PostgreSQL backed registry reads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns one page of registered assets, newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]grn.MasterAsset, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM fixed_asset_master`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + masterColumns + ` FROM fixed_asset_master ORDER BY created_at DESC, item_code DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	assets, err := collectMasterAssets(rows)
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

// Get loads one registered asset.
func (r *Repository) Get(ctx context.Context, itemSerial string) (grn.MasterAsset, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+masterColumns+` FROM fixed_asset_master WHERE item_serial = $1`, itemSerial)
	if err != nil {
		return grn.MasterAsset{}, err
	}
	defer rows.Close()

	assets, err := collectMasterAssets(rows)
	if err != nil {
		return grn.MasterAsset{}, err
	}
	if len(assets) == 0 {
		return grn.MasterAsset{}, ErrAssetNotFound
	}
	return assets[0], nil
}

// Search filters the registry with a dynamically built WHERE clause and
// returns the matching page together with the total match count.
func (r *Repository) Search(ctx context.Context, filters SearchFilters, limit, offset int) ([]grn.MasterAsset, int, error) {
	var conditions []string
	var args []any

	arg := func(value any) string {
		args = append(args, value)
		return "$" + strconv.Itoa(len(args))
	}

	if filters.ItemCode != "" {
		conditions = append(conditions, `(item_code = `+arg(filters.ItemCode)+` OR current_item_code = $`+strconv.Itoa(len(args))+`)`)
	}
	if filters.ItemName != "" {
		conditions = append(conditions, `item_name ILIKE `+arg("%"+filters.ItemName+"%"))
	}
	if filters.GRNNo != "" {
		conditions = append(conditions, `grn_no = `+arg(filters.GRNNo))
	}
	if filters.CenterID != "" {
		conditions = append(conditions, `center_id = `+arg(filters.CenterID))
	}
	if filters.DepartmentID != "" {
		conditions = append(conditions, `department_id = `+arg(filters.DepartmentID))
	}
	if filters.Supplier != "" {
		conditions = append(conditions, `supplier ILIKE `+arg("%"+filters.Supplier+"%"))
	}
	if filters.CreatedFrom != nil {
		conditions = append(conditions, `created_at >= `+arg(*filters.CreatedFrom))
	}
	if filters.CreatedTo != nil {
		conditions = append(conditions, `created_at <= `+arg(*filters.CreatedTo))
	}

	where := ""
	if len(conditions) > 0 {
		where = ` WHERE ` + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM fixed_asset_master`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + masterColumns + ` FROM fixed_asset_master` + where +
		` ORDER BY item_code ASC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	assets, err := collectMasterAssets(rows)
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

// ByGRN returns every registered asset from one receipt, item_serial ascending.
func (r *Repository) ByGRN(ctx context.Context, grnNo string) ([]grn.MasterAsset, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+masterColumns+` FROM fixed_asset_master WHERE grn_no = $1 ORDER BY item_serial ASC`, grnNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMasterAssets(rows)
}

// CountRejectedStaging counts this receipt's rows that were rejected and left
// in staging.
func (r *Repository) CountRejectedStaging(ctx context.Context, grnNo string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM item_grn WHERE grn_no = $1 AND status = $2`, grnNo, int(grn.DecisionReject)).Scan(&count)
	return count, err
}

// UpdatePlacement rewrites the placement fields and current_item_code of one
// asset. item_code is never touched. Returns false when the asset is missing.
func (r *Repository) UpdatePlacement(ctx context.Context, itemSerial string, placement PlacementInput) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE fixed_asset_master SET
			center_id = $1, location_id = $2, department_id = $3, employee_id = $4,
			serial_no = $5, book_no = $6, barcode_no = $7,
			current_item_code = COALESCE(NULLIF($8, ''), current_item_code),
			updated_at = NOW()
		WHERE item_serial = $9`,
		placement.CenterID, placement.LocationID, placement.DepartmentID,
		placement.EmployeeID, placement.SerialNo, placement.BookNo,
		placement.BarcodeNo, placement.CurrentItemCode, itemSerial)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func collectMasterAssets(rows pgx.Rows) ([]grn.MasterAsset, error) {
	var assets []grn.MasterAsset
	for rows.Next() {
		var (
			asset  grn.MasterAsset
			status *int
			pics   [4]*string
		)
		if err := rows.Scan(
			&asset.ItemSerial, &asset.GRNNo, &asset.GRNDate, &asset.MiddleCategory,
			&asset.SubCategoryID, &asset.SubCategory, &asset.ItemName, &asset.Brand,
			&asset.Model, &asset.Manufacturer, &asset.Type, &asset.Supplier,
			&asset.PONo, &asset.PurchaseDate, &asset.InvoiceNo, &asset.UnitPrice,
			&asset.InvoiceTotal, &asset.Source, &asset.ReceiveType,
			&asset.PurchaseType, &asset.WarrantyExpiry, &asset.ServiceStart,
			&asset.ServiceEnd, &asset.SalvageValue, &asset.Remarks,
			&asset.ReplicateFlag, &asset.CenterID, &asset.LocationID,
			&asset.DepartmentID, &asset.EmployeeID, &asset.SerialNo, &asset.BookNo,
			&asset.BarcodeNo, &pics[0], &pics[1], &pics[2], &pics[3],
			&status, &asset.ItemCode, &asset.CurrentItemCode,
			&asset.CreatedAt, &asset.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if status != nil {
			decision := grn.Decision(*status)
			asset.Status = &decision
		}
		for _, pic := range pics {
			if pic != nil && *pic != "" {
				asset.Images = append(asset.Images, *pic)
			}
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}
