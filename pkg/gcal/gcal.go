// Package gcal wires OAuth2 credentials into Google Calendar API clients.
package gcal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Config holds the OAuth client registered for calendar access.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Configured reports whether client credentials are present.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.ClientID) != "" && strings.TrimSpace(c.ClientSecret) != ""
}

// OAuthConfig returns read-only calendar OAuth settings for the Google endpoint.
func OAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     strings.TrimSpace(cfg.ClientID),
		ClientSecret: strings.TrimSpace(cfg.ClientSecret),
		RedirectURL:  strings.TrimSpace(cfg.RedirectURL),
		Endpoint:     google.Endpoint,
		Scopes:       []string{calendar.CalendarReadonlyScope},
	}
}

// Token rebuilds a stored token. Refreshed tokens are not written back.
func Token(accessToken, refreshToken string, expiry *time.Time) *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	if expiry != nil {
		token.Expiry = *expiry
	}
	return token
}

// NewService creates a calendar client authorised by token. Extra options are
// appended, so tests can point the client at a local endpoint.
func NewService(ctx context.Context, oauthCfg *oauth2.Config, token *oauth2.Token, opts ...option.ClientOption) (*calendar.Service, error) {
	base := []option.ClientOption{option.WithTokenSource(oauthCfg.TokenSource(ctx, token))}
	return calendar.NewService(ctx, append(base, opts...)...)
}

// IsUnauthorized reports whether err means the stored grant is no longer valid.
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusUnauthorized
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorCode == "invalid_grant" {
			return true
		}
		if retrieveErr.Response != nil {
			return retrieveErr.Response.StatusCode == http.StatusUnauthorized || retrieveErr.Response.StatusCode == http.StatusBadRequest
		}
	}
	return false
}
