// Package schema defines the record types persisted in the store.
// These types are codec-neutral: the store layer decides how they are
// serialized, the web layer reuses the same JSON tags for request and
// response bodies.
package schema

import "time"

// Application is a permit application record.
//
// ID is assigned once (a uuid when the creating request carries none) and
// uniquely addresses exactly one record in the applications table. Updates
// are full replaces; there is no soft delete.
type Application struct {
	ID           string    `json:"id"`
	PermitNumber string    `json:"permit_number"`
	CardEnding   int64     `json:"card_ending"`
	TotalPaid    float64   `json:"total_paid"`
	Date         time.Time `json:"date"`
	ReceiptNo    int64     `json:"receipt_no"`
	Address      *string   `json:"address,omitempty"`
	Version      string    `json:"version"`
	CreatedAt    string    `json:"created_at"`
	UpdatedAt    string    `json:"updated_at"`
}
