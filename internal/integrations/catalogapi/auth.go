// internal/integrations/catalogapi/auth.go
package catalogapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var ErrAuth = errors.New("catalog api auth")

// Session – token (już z prefiksem "Bearer ") + adres bazowy API
type Session struct {
	Token   string
	BaseURL string
}

type AuthProvider interface {
	Session(ctx context.Context) (Session, error)
}

// StaticSession – gotowa sesja (np. token podany z zewnątrz, testy)
type StaticSession Session

func (s StaticSession) Session(ctx context.Context) (Session, error) {
	return Session(s), nil
}

// ClientCredentials – OAuth2 client_credentials na /oauth/token
type ClientCredentials struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	GrantType    string
	HTTP         *http.Client
}

func (c ClientCredentials) Session(ctx context.Context) (Session, error) {
	base := strings.TrimRight(c.BaseURL, "/")
	u, err := url.Parse(base + "/oauth/token")
	if err != nil {
		return Session{}, fmt.Errorf("%w: base url: %v", ErrAuth, err)
	}
	grant := c.GrantType
	if grant == "" {
		grant = "client_credentials"
	}
	q := u.Query()
	q.Set("client_id", c.ClientID)
	q.Set("client_secret", c.ClientSecret)
	q.Set("grant_type", grant)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrAuth, err)
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Session{}, fmt.Errorf("%w: %w", ErrAuth, &StatusError{Status: resp.StatusCode})
	}
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return Session{}, fmt.Errorf("%w: decode token: %v", ErrAuth, err)
	}
	if tr.AccessToken == "" {
		return Session{}, fmt.Errorf("%w: empty access_token", ErrAuth)
	}
	return Session{Token: "Bearer " + tr.AccessToken, BaseURL: base}, nil
}
