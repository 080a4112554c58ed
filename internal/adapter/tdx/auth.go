package tdx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingCredentials is returned before any request when the client ID or
// secret is empty.
var ErrMissingCredentials = errors.New("tdx client id and client secret are required")

// Authenticator exchanges client credentials for a bearer token.
// Tokens are not cached; each call performs a new grant.
type Authenticator struct {
	authURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewAuthenticator creates an Authenticator for the given token endpoint.
func NewAuthenticator(authURL, clientID, clientSecret string, timeout time.Duration, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		authURL:      authURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// Token performs a client-credentials grant and returns the access token.
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	if a.clientID == "" || a.clientSecret == "" {
		return "", ErrMissingCredentials
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {a.clientID},
		"client_secret": {a.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("tdx auth error: status %d: %s", resp.StatusCode, body)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("token response missing access_token")
	}

	a.logExpiry(tok)
	return tok.AccessToken, nil
}

// logExpiry reports when the token lapses. TDX tokens are JWTs; the signature
// is not checked because the token is only forwarded, never trusted locally.
func (a *Authenticator) logExpiry(tok tokenResponse) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok.AccessToken, claims); err != nil {
		a.logger.Debug("tdx token acquired", "expires_in", tok.ExpiresIn)
		return
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		a.logger.Debug("tdx token acquired", "expires_in", tok.ExpiresIn)
		return
	}
	a.logger.Info("tdx token acquired", "expires_at", exp.UTC().Format(time.RFC3339))
}
