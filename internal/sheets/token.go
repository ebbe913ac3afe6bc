// Package sheets talks to the Google Sheets API: exchanging a service
// account key for a short-lived bearer token and reading cell ranges.
package sheets

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTokenURL is Google's OAuth2 token endpoint.
	DefaultTokenURL = "https://oauth2.googleapis.com/token"

	spreadsheetScope = "https://www.googleapis.com/auth/spreadsheets"
	jwtBearerGrant   = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	tokenLifetime = time.Hour
)

// TokenProvider exchanges a signed service-account assertion for a bearer
// token. Callers request a fresh token per reconciliation run; nothing is
// cached across runs.
type TokenProvider struct {
	client      *http.Client
	tokenURL    string
	clientEmail string
	key         *rsa.PrivateKey
}

// NewTokenProvider parses the PEM-encoded RSA signing key and returns a
// provider bound to tokenURL (DefaultTokenURL when empty). A malformed key
// is reported as ErrCredential.
func NewTokenProvider(clientEmail string, privateKeyPEM []byte, tokenURL string) (*TokenProvider, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: parse signing key: %v", ErrCredential, err)
	}
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &TokenProvider{
		client:      &http.Client{Timeout: 30 * time.Second},
		tokenURL:    tokenURL,
		clientEmail: clientEmail,
		key:         key,
	}, nil
}

// Token signs a one-hour assertion binding the client email to the
// spreadsheet scope and exchanges it for an access token. Any failure in
// signing, transport, status, or response shape is ErrCredential.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   p.clientEmail,
		"scope": spreadsheetScope,
		"aud":   p.tokenURL,
		"exp":   now.Add(tokenLifetime).Unix(),
		"iat":   now.Unix(),
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.key)
	if err != nil {
		return "", fmt.Errorf("%w: sign assertion: %v", ErrCredential, err)
	}

	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrCredential, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCredential, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrCredential, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: token endpoint returned %d: %s", ErrCredential, resp.StatusCode, body)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", ErrCredential, err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: response has no access_token", ErrCredential)
	}
	return payload.AccessToken, nil
}
