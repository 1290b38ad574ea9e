package intake

import (
	"errors"
	"time"

	"github.com/atlas-fam/atlas-fam/internal/grn"
	"github.com/atlas-fam/atlas-fam/internal/shared"
)

// Allocation assigns one physical unit to a center, holder and identifiers.
// Every field is optional at intake time; placement can be completed later.
type Allocation struct {
	CenterID     string `json:"center_id"`
	LocationID   string `json:"location_id"`
	DepartmentID string `json:"department_id"`
	EmployeeID   string `json:"employee_id"`
	SerialNo     string `json:"serial_no"`
	BookNo       string `json:"book_no"`
	BarcodeNo    string `json:"barcode_no"`
}

// CreateGRNInput is one goods receipt. Qty is expanded into one staging row
// per physical unit; Allocations, when present, are applied positionally to
// the expanded units.
type CreateGRNInput struct {
	GRNNo   string     `json:"grn_no" validate:"required"`
	GRNDate *time.Time `json:"grn_date" validate:"required"`

	MiddleCategory string `json:"middle_category" validate:"required"`
	SubCategoryID  string `json:"sub_category_id"`
	SubCategory    string `json:"sub_category" validate:"required"`
	ItemName       string `json:"item_name" validate:"required"`
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	Manufacturer   string `json:"manufacturer"`
	Type           string `json:"type"`

	Supplier     string     `json:"supplier" validate:"required"`
	PONo         string     `json:"po_no" validate:"required"`
	PurchaseDate *time.Time `json:"purchase_date" validate:"required"`
	InvoiceNo    string     `json:"invoice_no" validate:"required"`
	UnitPrice    float64    `json:"unit_price" validate:"gte=0"`
	InvoiceTotal float64    `json:"invoice_total" validate:"gte=0"`
	Source       string     `json:"source"`
	ReceiveType  string     `json:"receive_type"`
	PurchaseType string     `json:"purchase_type"`

	WarrantyExpiry *time.Time `json:"warranty_expiry"`
	ServiceStart   *time.Time `json:"service_start"`
	ServiceEnd     *time.Time `json:"service_end"`
	SalvageValue   float64    `json:"salvage_value" validate:"gte=0"`
	Remarks        string     `json:"remarks"`
	ReplicateFlag  bool       `json:"replicate_flag"`

	Qty         int          `json:"qty" validate:"required,min=1,max=500"`
	Images      []string     `json:"images" validate:"max=4"`
	Allocations []Allocation `json:"allocations" validate:"max=500"`
}

// CreateGRNResult reports the staging rows created for one receipt.
type CreateGRNResult struct {
	GRNNo       string   `json:"grn_no"`
	ItemSerials []string `json:"item_serials"`
	Count       int      `json:"count"`
}

// UpdateItemInput carries the editable fields of a pending staging row.
type UpdateItemInput struct {
	ItemName       string     `json:"item_name" validate:"required"`
	Brand          string     `json:"brand"`
	Model          string     `json:"model"`
	Manufacturer   string     `json:"manufacturer"`
	Type           string     `json:"type"`
	UnitPrice      float64    `json:"unit_price" validate:"gte=0"`
	SalvageValue   float64    `json:"salvage_value" validate:"gte=0"`
	Remarks        string     `json:"remarks"`
	CenterID       string     `json:"center_id"`
	LocationID     string     `json:"location_id"`
	DepartmentID   string     `json:"department_id"`
	EmployeeID     string     `json:"employee_id"`
	SerialNo       string     `json:"serial_no"`
	BookNo         string     `json:"book_no"`
	BarcodeNo      string     `json:"barcode_no"`
	WarrantyExpiry *time.Time `json:"warranty_expiry"`
	ServiceStart   *time.Time `json:"service_start"`
	ServiceEnd     *time.Time `json:"service_end"`
}

// ListResponse is a paginated staging listing.
type ListResponse struct {
	Data       []grn.StagingItem `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

var (
	// ErrInvalidInput indicates a semantically invalid receipt.
	ErrInvalidInput = errors.New("intake: invalid grn input")
	// ErrDuplicateGRN indicates the grn number is already staged.
	ErrDuplicateGRN = errors.New("intake: grn number already exists")
	// ErrItemNotFound indicates a missing staging row.
	ErrItemNotFound = errors.New("intake: staging item not found")
	// ErrNotPending indicates the row already carries a decision and can no
	// longer be edited.
	ErrNotPending = errors.New("intake: staging item already decided")
	// ErrStoreUnavailable wraps infrastructure failures.
	ErrStoreUnavailable = errors.New("intake: store unavailable")
)
