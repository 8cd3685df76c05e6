package calendar

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

const (
	// The only scope the dashboard needs.
	Scope = "https://www.googleapis.com/auth/calendar"

	DefaultTokenEndpoint = "https://oauth2.googleapis.com/token"

	// Refresh slightly early so an in-flight request never carries an
	// expired token.
	expirySkew = 30 * time.Second
)

// StaticTokenSource returns a fixed token. Useful for tests and for
// environments that inject short-lived tokens out of band.
type StaticTokenSource struct {
	AccessToken string
}

func (s *StaticTokenSource) Token(_ context.Context) (string, error) {
	if s.AccessToken == "" {
		return "", fmt.Errorf("no static token configured")
	}
	return s.AccessToken, nil
}

// authorizedUserToken mirrors the on-disk token.json written by the
// authorize command.
type authorizedUserToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	TokenURI     string    `json:"token_uri,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

func (t *authorizedUserToken) valid(now time.Time) bool {
	return t.AccessToken != "" && now.Before(t.Expiry.Add(-expirySkew))
}

// FileTokenSource reads an authorized-user token from disk and silently
// refreshes it when expired, rewriting the file so the refreshed token
// survives restarts.
type FileTokenSource struct {
	Path          string
	TokenEndpoint string
	HTTPClient    *http.Client

	mu    sync.Mutex
	token *authorizedUserToken
}

func NewFileTokenSource(path string) *FileTokenSource {
	return &FileTokenSource{
		Path:          path,
		TokenEndpoint: DefaultTokenEndpoint,
		HTTPClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *FileTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil {
		tok, err := loadTokenFile(s.Path)
		if err != nil {
			return "", err
		}
		s.token = tok
	}

	now := time.Now()
	if s.token.valid(now) {
		return s.token.AccessToken, nil
	}
	if s.token.RefreshToken == "" {
		return "", fmt.Errorf("token expired and no refresh token in %s", s.Path)
	}

	if err := s.refresh(ctx); err != nil {
		return "", err
	}
	return s.token.AccessToken, nil
}

func loadTokenFile(path string) (*authorizedUserToken, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var tok authorizedUserToken
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", path, err)
	}
	return &tok, nil
}

func (s *FileTokenSource) refresh(ctx context.Context) error {
	endpoint := s.TokenEndpoint
	if s.token.TokenURI != "" {
		endpoint = s.token.TokenURI
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {s.token.RefreshToken},
		"client_id":     {s.token.ClientID},
		"client_secret": {s.token.ClientSecret},
	}

	resp, err := postForm(ctx, s.HTTPClient, endpoint, form)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}

	s.token.AccessToken = resp.AccessToken
	s.token.Expiry = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	if resp.RefreshToken != "" {
		s.token.RefreshToken = resp.RefreshToken
	}

	// Best effort: a failed rewrite only costs a refresh on next start.
	if raw, err := json.MarshalIndent(s.token, "", "  "); err == nil {
		_ = os.WriteFile(s.Path, raw, 0o600)
	}
	return nil
}

// serviceAccountKey is the JSON key file issued for a service account.
type serviceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// ServiceAccountTokenSource mints access tokens from a service account key:
// a signed RS256 assertion exchanged at the token endpoint, cached until
// shortly before expiry.
type ServiceAccountTokenSource struct {
	HTTPClient *http.Client

	key *serviceAccountKey

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewServiceAccountTokenSource(keyPath string) (*ServiceAccountTokenSource, error) {
	raw, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read service account key: %w", err)
	}
	var key serviceAccountKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("parse service account key %s: %w", keyPath, err)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, fmt.Errorf("service account key %s missing client_email or private_key", keyPath)
	}
	if key.TokenURI == "" {
		key.TokenURI = DefaultTokenEndpoint
	}
	return &ServiceAccountTokenSource{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		key:        &key,
	}, nil
}

func (s *ServiceAccountTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.token != "" && now.Before(s.expiry.Add(-expirySkew)) {
		return s.token, nil
	}

	assertion, err := s.signAssertion(now)
	if err != nil {
		return "", err
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}
	resp, err := postForm(ctx, s.HTTPClient, s.key.TokenURI, form)
	if err != nil {
		return "", fmt.Errorf("exchange assertion: %w", err)
	}

	s.token = resp.AccessToken
	s.expiry = now.Add(time.Duration(resp.ExpiresIn) * time.Second)
	return s.token, nil
}

func (s *ServiceAccountTokenSource) signAssertion(now time.Time) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(s.key.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}

	claims := jwt.MapClaims{
		"iss":   s.key.ClientEmail,
		"scope": Scope,
		"aud":   s.key.TokenURI,
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}

// tokenResponse is the token endpoint's reply for both grant types.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

func postForm(ctx context.Context, client *http.Client, endpoint string, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint: %s: %s", resp.Status, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access_token")
	}
	return &tr, nil
}
