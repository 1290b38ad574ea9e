package grn

import (
	"errors"
	"time"
)

// Decision is the approver's verdict for a single staging row.
type Decision int

const (
	DecisionReject  Decision = 0
	DecisionApprove Decision = 1
)

// StagingItem is one physical asset awaiting an approval decision. Status is
// nil while the row is pending; DecisionApprove and DecisionReject are set by
// the approval flow.
type StagingItem struct {
	ItemSerial string     `json:"item_serial"`
	GRNNo      string     `json:"grn_no"`
	GRNDate    *time.Time `json:"grn_date"`

	MiddleCategory string `json:"middle_category"`
	SubCategoryID  string `json:"sub_category_id"`
	SubCategory    string `json:"sub_category"`
	ItemName       string `json:"item_name"`
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	Manufacturer   string `json:"manufacturer"`
	Type           string `json:"type"`

	Supplier     string     `json:"supplier"`
	PONo         string     `json:"po_no"`
	PurchaseDate *time.Time `json:"purchase_date"`
	InvoiceNo    string     `json:"invoice_no"`
	UnitPrice    float64    `json:"unit_price"`
	InvoiceTotal float64    `json:"invoice_total"`
	Source       string     `json:"source"`
	ReceiveType  string     `json:"receive_type"`
	PurchaseType string     `json:"purchase_type"`

	WarrantyExpiry *time.Time `json:"warranty_expiry"`
	ServiceStart   *time.Time `json:"service_start"`
	ServiceEnd     *time.Time `json:"service_end"`
	SalvageValue   float64    `json:"salvage_value"`
	Remarks        string     `json:"remarks"`
	ReplicateFlag  bool       `json:"replicate_flag"`

	CenterID     string `json:"center_id"`
	LocationID   string `json:"location_id"`
	DepartmentID string `json:"department_id"`
	EmployeeID   string `json:"employee_id"`
	SerialNo     string `json:"serial_no"`
	BookNo       string `json:"book_no"`
	BarcodeNo    string `json:"barcode_no"`

	Images []string `json:"images"`

	Status    *Decision `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MasterAsset is a permanently registered asset. ItemCode is assigned once at
// approval time and never changes; CurrentItemCode starts equal to ItemCode
// and may be re-pointed later without rewriting history.
type MasterAsset struct {
	StagingItem

	ItemCode        string `json:"item_code"`
	CurrentItemCode string `json:"current_item_code"`
}

// BatchRow decorates a staging item with resolved reference names for display.
// A nil name means the foreign key did not resolve; that is never an error.
type BatchRow struct {
	StagingItem

	CenterName     *string `json:"center_name"`
	LocationName   *string `json:"location_name"`
	DepartmentName *string `json:"department_name"`
	EmployeeName   *string `json:"employee_name"`
}

// ApprovalSummary reports the outcome of one committed batch.
type ApprovalSummary struct {
	GRNNo         string `json:"grn_no"`
	ApprovedCount int    `json:"approved_count"`
	RejectedCount int    `json:"rejected_count"`
	// First and last item codes allocated in this batch. Allocation is
	// sequential, so the range is contiguous. Empty when nothing was approved.
	FirstItemCode string `json:"first_item_code,omitempty"`
	LastItemCode  string `json:"last_item_code,omitempty"`
	// Staging rows still present for this GRN after the commit (rejected or
	// undecided).
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
}

var (
	// ErrInvalidRequest indicates a missing grn number or empty decision set.
	ErrInvalidRequest = errors.New("grn: invalid approval request")
	// ErrBatchNotFound indicates the grn number matches no staging rows.
	ErrBatchNotFound = errors.New("grn: no staging rows for grn number")
	// ErrItemNotFound indicates a single staging row lookup missed.
	ErrItemNotFound = errors.New("grn: staging item not found")
	// ErrCodeConflict indicates item code uniqueness was violated at insert
	// time even after the in-transaction retry.
	ErrCodeConflict = errors.New("grn: item code allocation conflict")
	// ErrStoreUnavailable wraps infrastructure-level store failures.
	ErrStoreUnavailable = errors.New("grn: store unavailable")
)
