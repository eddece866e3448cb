package models

import "time"

// ScanReport is the outcome of analyzing one page.
type ScanReport struct {
	RunID      string    `json:"run_id"`
	Target     string    `json:"target"`
	Selector   string    `json:"selector"`
	Candidates int       `json:"candidates"`
	OnSale     int       `json:"on_sale"`
	MinimumPct float64   `json:"min_discount"`
	Deals      []Product `json:"deals"`
	ScannedAt  time.Time `json:"scanned_at"`
}

// ErrorResponse is the JSON body of a failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Pagination describes which slice of the deals a response carries.
type Pagination struct {
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Total       int `json:"total"`
}

// ScanResponse is a ScanReport with one page of its deals.
type ScanResponse struct {
	*ScanReport
	Pagination Pagination `json:"pagination"`
}
