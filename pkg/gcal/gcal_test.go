package gcal

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

func TestOAuthConfig(t *testing.T) {
	cfg := Config{ClientID: " id ", ClientSecret: "secret", RedirectURL: "https://example.com/cb"}
	assert.True(t, cfg.Configured())
	assert.False(t, Config{ClientID: "id"}.Configured())

	oauthCfg := OAuthConfig(cfg)
	assert.Equal(t, "id", oauthCfg.ClientID)
	assert.Len(t, oauthCfg.Scopes, 1)
	assert.Contains(t, oauthCfg.Endpoint.TokenURL, "google")
}

func TestToken(t *testing.T) {
	expiry := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	token := Token("access", "refresh", &expiry)
	assert.Equal(t, "refresh", token.RefreshToken)
	assert.Equal(t, expiry, token.Expiry)
	assert.True(t, Token("a", "r", nil).Expiry.IsZero())
}

func TestIsUnauthorized(t *testing.T) {
	assert.False(t, IsUnauthorized(nil))
	assert.False(t, IsUnauthorized(errors.New("timeout")))
	assert.True(t, IsUnauthorized(&googleapi.Error{Code: http.StatusUnauthorized}))
	assert.False(t, IsUnauthorized(&googleapi.Error{Code: http.StatusForbidden}))
	assert.True(t, IsUnauthorized(fmt.Errorf("list: %w", &oauth2.RetrieveError{ErrorCode: "invalid_grant"})))
	assert.True(t, IsUnauthorized(&oauth2.RetrieveError{Response: &http.Response{StatusCode: http.StatusBadRequest}}))
}
