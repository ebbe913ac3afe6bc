// Package reconcile keeps the orders table consistent with the marketplace
// return sheet.
//
// A run fetches the marketplace and order-id columns, pairs rows by
// position, and upserts one order record per row keyed by the order id.
// Re-running against an unchanged sheet performs zero writes.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/krishdev/permithub/internal/schema"
)

// syncedMarker is written to MainUpdated on every record this engine touches.
const syncedMarker = "SYNCED"

// TokenSource produces a bearer token for the sheet API.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// SheetFetcher reads several ranges from one snapshot of a spreadsheet.
type SheetFetcher interface {
	BatchFetch(ctx context.Context, token, spreadsheetID string, ranges ...string) ([][][]string, error)
}

// OrderStore is the slice of the order repository a run needs.
type OrderStore interface {
	Save(order *schema.Order) error
	Get(id string) (schema.Order, bool, error)
	List() ([]schema.Order, error)
}

// Config locates the two tracked columns within the sheet.
type Config struct {
	SpreadsheetID     string
	SheetName         string
	MarketplaceColumn string // column letter, e.g. "B"
	OrderIDColumn     string // column letter, e.g. "F"

	// HasHeader indicates row 0 of both columns is a header and must be
	// skipped. This is declared explicitly rather than inferred from column
	// lengths, which misreads a single-data-row sheet.
	HasHeader bool
}

// Result counts what one run did.
type Result struct {
	Rows      int `json:"rows"` // paired data rows considered
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"` // rows without an order id
}

// Reconciler drives fetch-diff-upsert runs against the order store.
type Reconciler struct {
	tokens TokenSource
	sheets SheetFetcher
	orders OrderStore
	cfg    Config
}

// New returns a Reconciler over the given collaborators.
func New(tokens TokenSource, sheets SheetFetcher, orders OrderStore, cfg Config) *Reconciler {
	return &Reconciler{tokens: tokens, sheets: sheets, orders: orders, cfg: cfg}
}

// Run performs one reconciliation pass. Both columns are fetched in a single
// batch call so positional pairing happens within one sheet snapshot. Rows
// are paired up to the shorter column; excess rows in the longer column are
// ignored. Any storage failure aborts the run with no partial-success
// continuation; the error is surfaced unmodified.
func (r *Reconciler) Run(ctx context.Context) (Result, error) {
	var res Result

	token, err := r.tokens.Token(ctx)
	if err != nil {
		return res, err
	}

	mktRange := fmt.Sprintf("%s!%s:%s", r.cfg.SheetName, r.cfg.MarketplaceColumn, r.cfg.MarketplaceColumn)
	idRange := fmt.Sprintf("%s!%s:%s", r.cfg.SheetName, r.cfg.OrderIDColumn, r.cfg.OrderIDColumn)

	cols, err := r.sheets.BatchFetch(ctx, token, r.cfg.SpreadsheetID, mktRange, idRange)
	if err != nil {
		return res, err
	}
	if len(cols) != 2 {
		return res, fmt.Errorf("sheet returned %d ranges, want 2", len(cols))
	}
	marketplaces, orderIDs := cols[0], cols[1]

	start := 0
	if r.cfg.HasHeader && len(marketplaces) > 0 && len(orderIDs) > 0 {
		start = 1
	}

	now := time.Now()
	syncDate := now.Format("2006-01-02")
	stamp := now.Format(time.RFC3339)

	n := min(len(marketplaces), len(orderIDs))
	for i := start; i < n; i++ {
		res.Rows++

		orderID := firstCell(orderIDs[i])
		if orderID == "" {
			res.Skipped++
			continue
		}
		marketplace := firstCell(marketplaces[i])
		rowNumber := i

		stored, found, err := r.orders.Get(orderID)
		if err != nil {
			return res, err
		}

		if !found {
			marker := syncedMarker
			if err := r.orders.Save(&schema.Order{
				ID:          orderID,
				Marketplace: marketplace,
				OrderID:     orderID,
				RowNumber:   &rowNumber,
				MainUpdated: &marker,
				SyncDate:    syncDate,
				CreatedAt:   stamp,
				UpdatedAt:   stamp,
			}); err != nil {
				return res, err
			}
			res.Inserted++
			continue
		}

		if sheetFieldsEqual(&stored, marketplace, orderID, rowNumber) {
			res.Unchanged++
			continue
		}

		// Merge, not replace: only the sheet-sourced fields are written, so
		// annotations accrued from the matching process or manual edits
		// survive a changed row.
		merged := stored
		merged.Marketplace = marketplace
		merged.OrderID = orderID
		merged.RowNumber = &rowNumber
		marker := syncedMarker
		merged.MainUpdated = &marker
		merged.SyncDate = syncDate
		merged.UpdatedAt = stamp
		if err := r.orders.Save(&merged); err != nil {
			return res, err
		}
		res.Updated++
	}

	// Observability only: failure to list does not fail the run.
	if all, err := r.orders.List(); err != nil {
		slog.Warn("post-run order listing failed", "error", err)
	} else {
		slog.Info("reconciliation finished",
			"rows", res.Rows,
			"inserted", res.Inserted,
			"updated", res.Updated,
			"unchanged", res.Unchanged,
			"skipped", res.Skipped,
			"orders_total", len(all),
		)
	}

	return res, nil
}

// sheetFieldsEqual reports whether the stored record already reflects the
// sheet row. Only fields this engine writes participate; SyncDate and
// timestamps are deliberately excluded so an unchanged sheet produces zero
// writes regardless of when the runs happen.
func sheetFieldsEqual(stored *schema.Order, marketplace, orderID string, rowNumber int) bool {
	if stored.Marketplace != marketplace || stored.OrderID != orderID {
		return false
	}
	if stored.RowNumber == nil || *stored.RowNumber != rowNumber {
		return false
	}
	if stored.MainUpdated == nil || *stored.MainUpdated != syncedMarker {
		return false
	}
	return true
}

// firstCell returns the first cell of a row, or "" for an empty row.
func firstCell(row []string) string {
	if len(row) == 0 {
		return ""
	}
	return row[0]
}
