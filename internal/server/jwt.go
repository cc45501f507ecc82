package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/HiFromAjay/checklistenserver/internal/models"
)

const bearerPrefix = "Bearer "

// jwtVerifier validates bearer tokens on incoming requests.
type jwtVerifier struct {
	secret []byte
}

func newJWTVerifier(secret string) *jwtVerifier {
	return &jwtVerifier{secret: []byte(secret)}
}

// Verify inspects the Authorization header value. An absent or non-bearer
// header yields (nil, nil): the request proceeds anonymously and the
// handlers decide whether identity is required. A present bearer token must
// verify; expiry is reported distinctly from every other defect.
func (v *jwtVerifier) Verify(authHeader string) (*models.IdentityClaims, error) {
	if authHeader == "" || !strings.HasPrefix(authHeader, bearerPrefix) {
		return nil, nil
	}

	tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("bearer token expired: %w", models.ErrSessionExpired)
		}
		return nil, fmt.Errorf("bearer token invalid: %w", models.ErrAuthentication)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("bearer token carries no subject: %w", models.ErrAuthentication)
	}

	identity := &models.IdentityClaims{Subject: subject}
	if iat, err := token.Claims.GetIssuedAt(); err == nil && iat != nil {
		identity.IssuedAt = iat.Time
	}
	if exp, err := token.Claims.GetExpirationTime(); err == nil && exp != nil {
		identity.ExpiresAt = exp.Time
	}
	return identity, nil
}
