package schema

// Order is a marketplace order record.
//
// ID equals the external order id; it is the join key between the stored
// record and the sheet row it came from. The pointer fields are populated by
// the downstream matching process or by manual edits, never by ingestion,
// and stay nil until then. Orders are never deleted automatically.
type Order struct {
	ID          string `json:"id"`
	Marketplace string `json:"marketplace"`
	OrderID     string `json:"order_id"`

	ReturnOrder        *bool   `json:"return_order,omitempty"`
	ShopifyID          *string `json:"shopify_id,omitempty"`
	MarketplaceCode    *string `json:"marketplace_code,omitempty"`
	ReturnedSKU        *string `json:"returned_sku,omitempty"`
	OfferSKU           *string `json:"offer_sku,omitempty"`
	MatchedSKU         *string `json:"matched_sku,omitempty"`
	MatchType          *string `json:"match_type,omitempty"`
	RowNumber          *int    `json:"row_number,omitempty"`
	ManualConfirmation *string `json:"manual_confirmation,omitempty"`
	Status             *string `json:"status,omitempty"`
	Qty                *int64  `json:"qty,omitempty"`

	// MainUpdated is the synchronization marker set by reconciliation
	// ("SYNCED") and cleared by manual edit flows.
	MainUpdated *string `json:"main_updated,omitempty"`

	// SyncDate is the date (YYYY-MM-DD) of the last reconciliation run that
	// touched this record.
	SyncDate  string `json:"date"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
