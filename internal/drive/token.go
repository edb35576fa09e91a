package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OAuth scopes for the Google APIs this system touches.
const (
	ScopeDriveReadOnly        = "https://www.googleapis.com/auth/drive.readonly"
	ScopeDriveMetadata        = "https://www.googleapis.com/auth/drive.metadata.readonly"
	ScopeDriveFile            = "https://www.googleapis.com/auth/drive.file"
	ScopeSpreadsheetsReadOnly = "https://www.googleapis.com/auth/spreadsheets.readonly"
)

const jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// Credentials is the subset of a Google service-account key file the token
// source needs.
type Credentials struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// LoadCredentials reads a service-account key file.
func LoadCredentials(path string) (*Credentials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	if creds.ClientEmail == "" || creds.PrivateKey == "" {
		return nil, fmt.Errorf("credentials file %s missing client_email or private_key", path)
	}
	if creds.TokenURI == "" {
		creds.TokenURI = "https://oauth2.googleapis.com/token"
	}
	return &creds, nil
}

// ServiceAccountTokens mints OAuth2 access tokens from a service-account
// key using the JWT bearer assertion flow, caching each token until close
// to expiry.
type ServiceAccountTokens struct {
	creds  *Credentials
	scopes []string
	HTTP   *http.Client
	now    func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewServiceAccountTokens creates a token source for the given scopes.
func NewServiceAccountTokens(creds *Credentials, scopes ...string) *ServiceAccountTokens {
	return &ServiceAccountTokens{
		creds:  creds,
		scopes: scopes,
		HTTP:   &http.Client{Timeout: 15 * time.Second},
		now:    time.Now,
	}
}

// Token returns a valid access token, minting a new one when the cached
// token is within a minute of expiry.
func (t *ServiceAccountTokens) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.token != "" && now.Before(t.expiry.Add(-time.Minute)) {
		return t.token, nil
	}

	assertion, err := t.assertion(now)
	if err != nil {
		return "", err
	}

	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.creds.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token endpoint error %s: %s", resp.Status, string(body))
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access token")
	}

	t.token = out.AccessToken
	t.expiry = now.Add(time.Duration(out.ExpiresIn) * time.Second)
	return t.token, nil
}

// assertion builds the signed RS256 claim set Google exchanges for an
// access token.
func (t *ServiceAccountTokens) assertion(now time.Time) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(t.creds.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}
	claims := jwt.MapClaims{
		"iss":   t.creds.ClientEmail,
		"scope": strings.Join(t.scopes, " "),
		"aud":   t.creds.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}
