// Package assets is the read and maintenance side of the fixed asset
// registry. Registration itself happens only through the approval flow.
package assets

import (
	"errors"
	"time"

	"github.com/atlas-fam/atlas-fam/internal/grn"
)

// SearchFilters narrows a registry search. Zero values are ignored.
type SearchFilters struct {
	ItemCode     string     `json:"item_code"`
	ItemName     string     `json:"item_name"`
	GRNNo        string     `json:"grn_no"`
	CenterID     string     `json:"center_id"`
	DepartmentID string     `json:"department_id"`
	Supplier     string     `json:"supplier"`
	CreatedFrom  *time.Time `json:"created_from"`
	CreatedTo    *time.Time `json:"created_to"`
}

// PlacementInput carries the mutable placement fields of a registered asset.
// The original item_code is immutable; relocations re-point current_item_code.
type PlacementInput struct {
	CenterID        string `json:"center_id"`
	LocationID      string `json:"location_id"`
	DepartmentID    string `json:"department_id"`
	EmployeeID      string `json:"employee_id"`
	SerialNo        string `json:"serial_no"`
	BookNo          string `json:"book_no"`
	BarcodeNo       string `json:"barcode_no"`
	CurrentItemCode string `json:"current_item_code"`
}

// GRNSummary aggregates the registry view of one receipt.
type GRNSummary struct {
	GRNNo           string   `json:"grn_no"`
	ApprovedCount   int      `json:"approved_count"`
	RejectedCount   int      `json:"rejected_count"`
	FirstItemSerial string   `json:"first_item_serial"`
	LastItemSerial  string   `json:"last_item_serial"`
	ItemNames       []string `json:"item_names"`
	Centers         []string `json:"centers"`
	Departments     []string `json:"departments"`
	ImageCount      int      `json:"image_count"`
	TotalValue      float64  `json:"total_value"`
	// TotalValueDisplay is TotalValue with thousands separators for screens.
	TotalValueDisplay string `json:"total_value_display"`
}

// GRNAssetsResponse is the ByGRN payload.
type GRNAssetsResponse struct {
	Summary GRNSummary        `json:"summary"`
	Assets  []grn.MasterAsset `json:"assets"`
}

var (
	// ErrAssetNotFound indicates a missing registry row.
	ErrAssetNotFound = errors.New("assets: asset not found")
	// ErrInvalidInput indicates a malformed lookup or placement request.
	ErrInvalidInput = errors.New("assets: invalid request")
	// ErrStoreUnavailable wraps infrastructure failures.
	ErrStoreUnavailable = errors.New("assets: store unavailable")
)
