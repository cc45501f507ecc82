// Package authprovider provides a client for the external authentication provider
package authprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/HiFromAjay/checklistenserver/internal/common"
	"github.com/HiFromAjay/checklistenserver/internal/models"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second

	exchangePath    = "/token/exchange"
	accessTokenPath = "/clients/accesstoken"
)

// Client implements the AuthProviderClient interface
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *common.Logger
	limiter      *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new auth provider client from configuration
func NewClient(cfg *common.AuthConfig, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      cfg.ProviderURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient: &http.Client{
			Timeout: cfg.GetExchangeTimeout(),
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	if cfg.ExchangeRateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.ExchangeRateLimit), cfg.ExchangeRateLimit)
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type exchangeRequest struct {
	Token        string `json:"token"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	Nonce        string `json:"nonce"`
}

type providerResponse struct {
	Message models.MessagePayload `json:"message"`
	Data    struct {
		Nonce       string `json:"nonce"`
		JWT         string `json:"jwt"`
		AccessToken string `json:"accessToken"`
	} `json:"data"`
}

// ExchangeToken redeems a one-time token for a JWT. A fresh nonce is sent
// with every call and the response nonce must match before the returned
// JWT is trusted.
func (c *Client) ExchangeToken(ctx context.Context, oneTimeToken string) (string, error) {
	nonce := uuid.New().String()

	body := exchangeRequest{
		Token:        oneTimeToken,
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		Nonce:        nonce,
	}

	resp, err := c.post(ctx, exchangePath, body)
	if err != nil {
		return "", err
	}

	if !resp.Message.IsOk() {
		c.logger.Warn().Str("providerMessage", resp.Message.Message).Msg("Token exchange rejected by provider")
		return "", fmt.Errorf("token exchange rejected: %s: %w", resp.Message.Message, models.ErrClientAuthentication)
	}

	if resp.Data.Nonce != nonce {
		c.logger.Warn().Msg("Token exchange response nonce mismatch")
		return "", fmt.Errorf("token exchange: %w", models.ErrNonceMismatch)
	}

	if resp.Data.JWT == "" {
		return "", fmt.Errorf("exchange response contains no token: %w", models.ErrClientAuthentication)
	}

	return resp.Data.JWT, nil
}

// OrderAccessToken obtains a short-lived access token used to build
// login and signup URLs for the auth application.
func (c *Client) OrderAccessToken(ctx context.Context) (string, error) {
	nonce := uuid.New().String()

	body := exchangeRequest{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		Nonce:        nonce,
	}

	resp, err := c.post(ctx, accessTokenPath, body)
	if err != nil {
		return "", err
	}

	if !resp.Message.IsOk() {
		return "", fmt.Errorf("access token order rejected: %s: %w", resp.Message.Message, models.ErrClientAuthentication)
	}

	if resp.Data.Nonce != nonce {
		return "", fmt.Errorf("access token order: %w", models.ErrNonceMismatch)
	}

	if resp.Data.AccessToken == "" {
		return "", fmt.Errorf("access token response is empty: %w", models.ErrClientAuthentication)
	}

	return resp.Data.AccessToken, nil
}

// post performs a rate-limited POST with JSON request and response bodies.
func (c *Client) post(ctx context.Context, path string, body interface{}) (*providerResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", path).Msg("Auth provider request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth provider unreachable at %s: %v: %w", path, err, models.ErrEndpointUnreachable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		var envelope providerResponse
		if jsonErr := json.Unmarshal(raw, &envelope); jsonErr == nil && envelope.Message.Message != "" {
			return nil, fmt.Errorf("auth provider error: %s (status: %d): %w", envelope.Message.Message, resp.StatusCode, models.ErrClientAuthentication)
		}
		return nil, fmt.Errorf("auth provider error (status: %d, endpoint: %s): %w", resp.StatusCode, path, models.ErrClientAuthentication)
	}

	var result providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
