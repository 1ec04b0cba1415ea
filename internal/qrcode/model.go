// Package qrcode manages scannable QR codes bound to office locations.
package qrcode

import "time"

// Code is a scannable token tied to an office.
type Code struct {
	ID               string    `json:"id"`
	OfficeLocationID string    `json:"office_location_id"`
	Code             string    `json:"code"`
	IsActive         bool      `json:"is_active"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	OfficeName string `json:"office_name,omitempty"`
}

// Valid reports whether the code can be scanned at the given instant.
func (c Code) Valid(now time.Time) bool {
	return c.IsActive && now.Before(c.ExpiresAt)
}

// CreateRequest is the payload for minting a new code.
type CreateRequest struct {
	OfficeLocationID string    `json:"office_location_id" binding:"required"`
	ExpiresAt        time.Time `json:"expires_at" binding:"required"`
}

// UpdateRequest toggles a code on or off.
type UpdateRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// ListQuery filters the code listing.
type ListQuery struct {
	OfficeID string
	Status   string // "", "active", "inactive", "expired"
	Page     int
	PerPage  int
}

// ListResult is one page of codes.
type ListResult struct {
	Codes   []Code `json:"qr_codes"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// View is a single code decorated for the admin UI.
type View struct {
	Code
	IsValid bool   `json:"is_valid"`
	ScanURL string `json:"scan_url"`
}
