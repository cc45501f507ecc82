package interfaces

import "context"

// AuthProviderClient talks to the external identity provider.
type AuthProviderClient interface {
	// ExchangeToken swaps a single-use one-time token for a JWT. The
	// provider's response nonce must equal the nonce sent with the request
	// before the JWT is trusted.
	ExchangeToken(ctx context.Context, oneTimeToken string) (string, error)

	// OrderAccessToken obtains a client access token used to build
	// login/signup redirect URLs.
	OrderAccessToken(ctx context.Context) (string, error)
}
