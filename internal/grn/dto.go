package grn

// ApprovalRequest is the decision set submitted for one GRN batch. Keys are
// staging item serials; values are 0 (reject) or 1 (approve). Serials that do
// not belong to the batch are ignored.
type ApprovalRequest struct {
	Decisions map[string]int `json:"decisions" validate:"required,min=1,dive,oneof=0 1"`
}

// ItemStatusRequest marks a provisional decision on a single staging row.
type ItemStatusRequest struct {
	Status *int `json:"status" validate:"required,oneof=0 1"`
}

// PendingGRNsResponse lists grn numbers with undecided rows.
type PendingGRNsResponse struct {
	Data []string `json:"data"`
}

// BatchResponse carries one GRN's staging rows with resolved names.
type BatchResponse struct {
	GRNNo string     `json:"grn_no"`
	Items []BatchRow `json:"items"`
}
