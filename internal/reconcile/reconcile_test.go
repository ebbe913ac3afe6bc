package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/krishdev/permithub/internal/schema"
	"github.com/krishdev/permithub/internal/store"
)

type fakeTokens struct {
	err   error
	calls int
}

func (f *fakeTokens) Token(ctx context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "tok", nil
}

type fakeSheets struct {
	cols  [][][]string
	err   error
	calls int
}

func (f *fakeSheets) BatchFetch(ctx context.Context, token, spreadsheetID string, ranges ...string) ([][][]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.cols, nil
}

// countingOrders wraps the real repository to count writes.
type countingOrders struct {
	*store.OrderRepo
	saves int
}

func (c *countingOrders) Save(order *schema.Order) error {
	c.saves++
	return c.OrderRepo.Save(order)
}

func column(cells ...string) [][]string {
	col := make([][]string, len(cells))
	for i, c := range cells {
		col[i] = []string{c}
	}
	return col
}

func testConfig(hasHeader bool) Config {
	return Config{
		SpreadsheetID:     "sheet-1",
		SheetName:         "Sheet1",
		MarketplaceColumn: "B",
		OrderIDColumn:     "F",
		HasHeader:         hasHeader,
	}
}

func newTestOrders(t *testing.T) *countingOrders {
	t.Helper()
	env, err := store.Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = env.Close() })
	return &countingOrders{OrderRepo: store.NewOrderRepo(env)}
}

func TestRunConvergesWithHeader(t *testing.T) {
	orders := newTestOrders(t)
	sheetData := &fakeSheets{cols: [][][]string{
		column("mkt-header", "A", "B"),
		column("id-header", "O1", "O2"),
	}}
	r := New(&fakeTokens{}, sheetData, orders, testConfig(true))

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Inserted != 2 || res.Updated != 0 {
		t.Errorf("Result = %+v, want 2 inserts", res)
	}

	got, found, err := orders.Get("O1")
	if err != nil || !found {
		t.Fatalf("Get O1 = (%v, %v), want stored record", err, found)
	}
	if got.Marketplace != "A" {
		t.Errorf("O1 marketplace = %q, want %q", got.Marketplace, "A")
	}
	if got.OrderID != "O1" {
		t.Errorf("O1 order id = %q, want %q", got.OrderID, "O1")
	}
	if got.RowNumber == nil || *got.RowNumber != 1 {
		t.Errorf("O1 row number = %v, want 1", got.RowNumber)
	}
	if got.MainUpdated == nil || *got.MainUpdated != "SYNCED" {
		t.Errorf("O1 sync marker = %v, want SYNCED", got.MainUpdated)
	}
	if got.ShopifyID != nil || got.MatchType != nil {
		t.Error("reconciliation populated annotation fields that must stay absent")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	orders := newTestOrders(t)
	sheetData := &fakeSheets{cols: [][][]string{
		column("mkt-header", "A", "B"),
		column("id-header", "O1", "O2"),
	}}
	r := New(&fakeTokens{}, sheetData, orders, testConfig(true))

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	writesAfterFirst := orders.saves

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if orders.saves != writesAfterFirst {
		t.Errorf("second run performed %d extra writes, want 0", orders.saves-writesAfterFirst)
	}
	if res.Unchanged != 2 || res.Inserted != 0 || res.Updated != 0 {
		t.Errorf("second Result = %+v, want 2 unchanged", res)
	}
}

func TestRunWithoutHeaderStartsAtRowZero(t *testing.T) {
	orders := newTestOrders(t)
	sheetData := &fakeSheets{cols: [][][]string{
		column("A"),
		column("O1"),
	}}
	r := New(&fakeTokens{}, sheetData, orders, testConfig(false))

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Inserted != 1 {
		t.Fatalf("Inserted = %d, want 1", res.Inserted)
	}

	got, found, _ := orders.Get("O1")
	if !found {
		t.Fatal("O1 not stored")
	}
	if got.RowNumber == nil || *got.RowNumber != 0 {
		t.Errorf("row number = %v, want 0", got.RowNumber)
	}
}

func TestRunToleratesMismatchedColumnLengths(t *testing.T) {
	orders := newTestOrders(t)
	sheetData := &fakeSheets{cols: [][][]string{
		column("A", "B", "C"),
		column("O1", "O2"),
	}}
	r := New(&fakeTokens{}, sheetData, orders, testConfig(false))

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Inserted != 2 {
		t.Errorf("Inserted = %d, want 2 (third marketplace row ignored)", res.Inserted)
	}
	if _, found, _ := orders.Get("O2"); !found {
		t.Error("O2 not stored")
	}
}

func TestRunMergePreservesAnnotations(t *testing.T) {
	orders := newTestOrders(t)

	// A record with annotations accrued from the matching process.
	shopify := "shp_77"
	matchType := "exact"
	row := 9
	marker := "SYNCED"
	if err := orders.OrderRepo.Save(&schema.Order{
		ID:          "O1",
		Marketplace: "OldMarket",
		OrderID:     "O1",
		ShopifyID:   &shopify,
		MatchType:   &matchType,
		RowNumber:   &row,
		MainUpdated: &marker,
		SyncDate:    "2026-08-01",
		CreatedAt:   "2026-08-01T00:00:00Z",
		UpdatedAt:   "2026-08-01T00:00:00Z",
	}); err != nil {
		t.Fatalf("seed Save: %v", err)
	}

	sheetData := &fakeSheets{cols: [][][]string{
		column("NewMarket"),
		column("O1"),
	}}
	r := New(&fakeTokens{}, sheetData, orders, testConfig(false))

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Updated != 1 {
		t.Fatalf("Updated = %d, want 1", res.Updated)
	}

	got, _, err := orders.Get("O1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Marketplace != "NewMarket" {
		t.Errorf("marketplace = %q, want %q", got.Marketplace, "NewMarket")
	}
	if got.RowNumber == nil || *got.RowNumber != 0 {
		t.Errorf("row number = %v, want 0", got.RowNumber)
	}
	if got.ShopifyID == nil || *got.ShopifyID != "shp_77" {
		t.Errorf("ShopifyID = %v, want preserved shp_77", got.ShopifyID)
	}
	if got.MatchType == nil || *got.MatchType != "exact" {
		t.Errorf("MatchType = %v, want preserved exact", got.MatchType)
	}
	if got.CreatedAt != "2026-08-01T00:00:00Z" {
		t.Errorf("CreatedAt = %q, want original creation stamp", got.CreatedAt)
	}
}

func TestRunSkipsRowsWithoutOrderID(t *testing.T) {
	orders := newTestOrders(t)
	sheetData := &fakeSheets{cols: [][][]string{
		column("A", "B", "C"),
		{{"O1"}, {}, {"O3"}},
	}}
	r := New(&fakeTokens{}, sheetData, orders, testConfig(false))

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Inserted != 2 || res.Skipped != 1 {
		t.Errorf("Result = %+v, want 2 inserted, 1 skipped", res)
	}
}

func TestRunAbortsOnCredentialFailure(t *testing.T) {
	orders := newTestOrders(t)
	credErr := errors.New("exchange refused")
	sheetData := &fakeSheets{}
	r := New(&fakeTokens{err: credErr}, sheetData, orders, testConfig(true))

	_, err := r.Run(context.Background())
	if !errors.Is(err, credErr) {
		t.Fatalf("err = %v, want credential error surfaced unmodified", err)
	}
	if sheetData.calls != 0 {
		t.Error("fetch attempted after credential failure")
	}
}

func TestRunAbortsOnFetchFailure(t *testing.T) {
	orders := newTestOrders(t)
	fetchErr := errors.New("source down")
	r := New(&fakeTokens{}, &fakeSheets{err: fetchErr}, orders, testConfig(true))

	_, err := r.Run(context.Background())
	if !errors.Is(err, fetchErr) {
		t.Fatalf("err = %v, want fetch error surfaced unmodified", err)
	}
	if orders.saves != 0 {
		t.Error("writes performed after fetch failure")
	}
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	orders := newTestOrders(t)
	r := New(&fakeTokens{}, &fakeSheets{cols: [][][]string{{}, {}}}, orders, testConfig(true))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.StartScheduler(ctx, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after context cancel")
	}
}
