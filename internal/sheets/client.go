package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the Sheets API values endpoint root.
const DefaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

// Client reads cell ranges from a spreadsheet. Requests are bearer-authorized
// with a token from a TokenProvider; the client itself holds no credentials.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient returns a Client for baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

// FetchRange reads one named range (e.g. "Sheet1!B:B") and returns its rows.
// A response without a values field is an error: single-range reads are used
// where data is expected to exist.
func (c *Client) FetchRange(ctx context.Context, token, spreadsheetID, rng string) ([][]string, error) {
	endpoint := fmt.Sprintf("%s/%s/values/%s", c.baseURL, spreadsheetID, url.PathEscape(rng))

	body, err := c.get(ctx, token, endpoint)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Values []json.RawMessage `json:"values"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", ErrSource, err)
	}
	if payload.Values == nil {
		return nil, fmt.Errorf("%w: response has no values", ErrSource)
	}
	return decodeRows(payload.Values)
}

// BatchFetch reads several ranges in one values:batchGet call, so all ranges
// come from a single snapshot of the sheet. Rows are returned per range, in
// request order. Unlike FetchRange, a range without a values field is an
// empty column, not an error: batchGet omits the field for empty ranges.
func (c *Client) BatchFetch(ctx context.Context, token, spreadsheetID string, ranges ...string) ([][][]string, error) {
	q := url.Values{}
	for _, rng := range ranges {
		q.Add("ranges", rng)
	}
	endpoint := fmt.Sprintf("%s/%s/values:batchGet?%s", c.baseURL, spreadsheetID, q.Encode())

	body, err := c.get(ctx, token, endpoint)
	if err != nil {
		return nil, err
	}

	var payload struct {
		ValueRanges []struct {
			Values []json.RawMessage `json:"values"`
		} `json:"valueRanges"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", ErrSource, err)
	}
	if payload.ValueRanges == nil {
		return nil, fmt.Errorf("%w: response has no valueRanges", ErrSource)
	}
	if len(payload.ValueRanges) != len(ranges) {
		return nil, fmt.Errorf("%w: requested %d ranges, got %d", ErrSource, len(ranges), len(payload.ValueRanges))
	}

	out := make([][][]string, len(payload.ValueRanges))
	for i, vr := range payload.ValueRanges {
		rows, err := decodeRows(vr.Values)
		if err != nil {
			return nil, err
		}
		out[i] = rows
	}
	return out, nil
}

// get issues a bearer-authorized GET and returns the response body. Any
// transport failure or non-success status is ErrSource, with the body kept
// as diagnostic detail.
func (c *Client) get(ctx context.Context, token, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrSource, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSource, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrSource, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrSource, resp.StatusCode, body)
	}
	return body, nil
}

// decodeRows converts the API's row arrays into text cells. Non-string cells
// become empty strings, matching how downstream consumers treat them.
func decodeRows(raw []json.RawMessage) ([][]string, error) {
	rows := make([][]string, len(raw))
	for i, rawRow := range raw {
		var cells []any
		if err := json.Unmarshal(rawRow, &cells); err != nil {
			return nil, fmt.Errorf("%w: parse row %d: %v", ErrSource, i, err)
		}
		row := make([]string, len(cells))
		for j, cell := range cells {
			if s, ok := cell.(string); ok {
				row[j] = s
			}
		}
		rows[i] = row
	}
	return rows, nil
}
