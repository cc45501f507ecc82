package authprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HiFromAjay/checklistenserver/internal/common"
	"github.com/HiFromAjay/checklistenserver/internal/models"
)

func testConfig(baseURL string) *common.AuthConfig {
	return &common.AuthConfig{
		ProviderURL:     baseURL,
		ClientID:        "checklisten",
		ClientSecret:    "secret",
		ExchangeTimeout: "2s",
	}
}

// echoProvider answers the exchange with the nonce the client sent,
// optionally transformed.
func echoProvider(t *testing.T, mutateNonce func(string) string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req exchangeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "checklisten", req.ClientID)
		assert.Equal(t, "secret", req.ClientSecret)
		assert.NotEmpty(t, req.Nonce)

		nonce := req.Nonce
		if mutateNonce != nil {
			nonce = mutateNonce(nonce)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"level": "INFO", "message": "ok"},
			"data": map[string]string{
				"nonce":       nonce,
				"jwt":         "jwt-for-" + req.Token,
				"accessToken": "at-123",
			},
		})
	}))
}

func TestExchangeToken_Success(t *testing.T) {
	srv := echoProvider(t, nil)
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	jwt, err := client.ExchangeToken(context.Background(), "ott-123")
	require.NoError(t, err)
	assert.Equal(t, "jwt-for-ott-123", jwt)
}

func TestExchangeToken_NonceMismatch(t *testing.T) {
	srv := echoProvider(t, func(n string) string { return n + "-tampered" })
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.ExchangeToken(context.Background(), "ott-123")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNonceMismatch)
	assert.ErrorIs(t, err, models.ErrClientAuthentication)
}

func TestExchangeToken_StaleNonceReplay(t *testing.T) {
	// Provider echoes the nonce of the previous call, as a replaying
	// man-in-the-middle would.
	var previousNonce string
	srv := echoProvider(t, func(n string) string {
		stale := previousNonce
		previousNonce = n
		if stale == "" {
			return n
		}
		return stale
	})
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	ctx := context.Background()

	_, err := client.ExchangeToken(ctx, "ott-1")
	require.NoError(t, err)

	_, err = client.ExchangeToken(ctx, "ott-2")
	assert.ErrorIs(t, err, models.ErrNonceMismatch)
}

func TestExchangeToken_ProviderRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"level": "ERROR", "message": "unknown one-time token"},
			"data":    map[string]string{},
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.ExchangeToken(context.Background(), "bogus")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrClientAuthentication)
	assert.Contains(t, err.Error(), "unknown one-time token")
}

func TestExchangeToken_ProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"level": "ERROR", "message": "client credentials rejected"},
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.ExchangeToken(context.Background(), "ott-123")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrClientAuthentication)
	assert.Contains(t, err.Error(), "client credentials rejected")
}

func TestExchangeToken_ProviderUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed before use

	client := NewClient(testConfig(srv.URL))
	_, err := client.ExchangeToken(context.Background(), "ott-123")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrEndpointUnreachable)
}

func TestOrderAccessToken_Success(t *testing.T) {
	srv := echoProvider(t, nil)
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	token, err := client.OrderAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "at-123", token)
}

func TestOrderAccessToken_NonceMismatch(t *testing.T) {
	srv := echoProvider(t, func(string) string { return "forged" })
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.OrderAccessToken(context.Background())
	assert.ErrorIs(t, err, models.ErrNonceMismatch)
}
