package sheets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer tok")
		}
		if !strings.Contains(r.URL.Path, "/sheet-1/values/") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"range":"Sheet1!B:B","values":[["Marketplace"],["eBay"],["Amazon"]]}`))
	}))
	defer srv.Close()

	rows, err := NewClient(srv.URL).FetchRange(context.Background(), "tok", "sheet-1", "Sheet1!B:B")
	if err != nil {
		t.Fatalf("FetchRange: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if rows[1][0] != "eBay" {
		t.Errorf("rows[1][0] = %q, want %q", rows[1][0], "eBay")
	}
}

func TestFetchRangeMissingValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"range":"Sheet1!B:B"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchRange(context.Background(), "tok", "sheet-1", "Sheet1!B:B")
	if !errors.Is(err, ErrSource) {
		t.Errorf("err = %v, want ErrSource", err)
	}
}

func TestFetchRangeErrorCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"status":"PERMISSION_DENIED"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchRange(context.Background(), "tok", "sheet-1", "Sheet1!B:B")
	if !errors.Is(err, ErrSource) {
		t.Fatalf("err = %v, want ErrSource", err)
	}
	if !strings.Contains(err.Error(), "PERMISSION_DENIED") {
		t.Errorf("error does not carry response body: %v", err)
	}
}

func TestBatchFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/values:batchGet") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query()["ranges"]; len(got) != 2 {
			t.Errorf("ranges = %v, want 2 entries", got)
		}
		w.Write([]byte(`{"valueRanges":[
			{"range":"Sheet1!B:B","values":[["Marketplace"],["eBay"]]},
			{"range":"Sheet1!F:F","values":[["Order ID"],["O1"]]}
		]}`))
	}))
	defer srv.Close()

	cols, err := NewClient(srv.URL).BatchFetch(context.Background(), "tok", "sheet-1", "Sheet1!B:B", "Sheet1!F:F")
	if err != nil {
		t.Fatalf("BatchFetch: %v", err)
	}
	if len(cols) != 2 {
		t.Fatalf("len(cols) = %d, want 2", len(cols))
	}
	if cols[0][1][0] != "eBay" || cols[1][1][0] != "O1" {
		t.Errorf("cols = %v, want marketplace/order columns in request order", cols)
	}
}

func TestBatchFetchEmptyRange(t *testing.T) {
	// batchGet omits the values field entirely for an empty range; that is
	// an empty column, not an error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"valueRanges":[{"range":"Sheet1!B:B"},{"range":"Sheet1!F:F"}]}`))
	}))
	defer srv.Close()

	cols, err := NewClient(srv.URL).BatchFetch(context.Background(), "tok", "sheet-1", "Sheet1!B:B", "Sheet1!F:F")
	if err != nil {
		t.Fatalf("BatchFetch: %v", err)
	}
	if len(cols[0]) != 0 || len(cols[1]) != 0 {
		t.Errorf("cols = %v, want two empty columns", cols)
	}
}

func TestBatchFetchRangeCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"valueRanges":[{"range":"Sheet1!B:B","values":[["eBay"]]}]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).BatchFetch(context.Background(), "tok", "sheet-1", "Sheet1!B:B", "Sheet1!F:F")
	if !errors.Is(err, ErrSource) {
		t.Errorf("err = %v, want ErrSource", err)
	}
}

func TestNonStringCellsBecomeEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"values":[[42],["ok"]]}`))
	}))
	defer srv.Close()

	rows, err := NewClient(srv.URL).FetchRange(context.Background(), "tok", "sheet-1", "Sheet1!F:F")
	if err != nil {
		t.Fatalf("FetchRange: %v", err)
	}
	if rows[0][0] != "" {
		t.Errorf("numeric cell = %q, want empty string", rows[0][0])
	}
	if rows[1][0] != "ok" {
		t.Errorf("rows[1][0] = %q, want %q", rows[1][0], "ok")
	}
}
