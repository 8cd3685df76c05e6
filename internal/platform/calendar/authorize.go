package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

const (
	DefaultAuthEndpoint = "https://accounts.google.com/o/oauth2/auth"

	// Out-of-band flow: the provider displays the code for the operator to
	// paste back instead of redirecting.
	RedirectOOB = "urn:ietf:wg:oauth:2.0:oob"
)

// OAuthClient holds the installed-app client credentials used for the
// one-time interactive authorization.
type OAuthClient struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	AuthURI      string `json:"auth_uri"`
	TokenURI     string `json:"token_uri"`
}

// LoadClientSecrets reads a downloaded client secret file. Both the bare
// form and the provider's {"installed": {...}} wrapper are accepted.
func LoadClientSecrets(path string) (*OAuthClient, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read client secrets: %w", err)
	}

	var wrapper struct {
		Installed *OAuthClient `json:"installed"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Installed != nil {
		return normalizeClient(wrapper.Installed)
	}

	var c OAuthClient
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse client secrets %s: %w", path, err)
	}
	return normalizeClient(&c)
}

func normalizeClient(c *OAuthClient) (*OAuthClient, error) {
	if c.ClientID == "" || c.ClientSecret == "" {
		return nil, fmt.Errorf("client secrets missing client_id or client_secret")
	}
	if c.AuthURI == "" {
		c.AuthURI = DefaultAuthEndpoint
	}
	if c.TokenURI == "" {
		c.TokenURI = DefaultTokenEndpoint
	}
	return c, nil
}

// AuthCodeURL is the consent page the operator opens in a browser.
func (c *OAuthClient) AuthCodeURL() string {
	q := url.Values{
		"client_id":     {c.ClientID},
		"redirect_uri":  {RedirectOOB},
		"response_type": {"code"},
		"scope":         {Scope},
		"access_type":   {"offline"},
	}
	return c.AuthURI + "?" + q.Encode()
}

// Exchange swaps the pasted authorization code for tokens and writes them to
// tokenPath in the layout FileTokenSource reads.
func (c *OAuthClient) Exchange(ctx context.Context, client *http.Client, code, tokenPath string) error {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
		"redirect_uri":  {RedirectOOB},
	}

	resp, err := postForm(ctx, client, c.TokenURI, form)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	tok := authorizedUserToken{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURI:     c.TokenURI,
		Expiry:       time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}

	raw, err := json.MarshalIndent(&tok, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tokenPath, raw, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}
