package anonymous

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer      = "storefront"
	kindAccess  = "guest_access"
	kindRefresh = "guest_refresh"
)

type guestClaims struct {
	Kind string `json:"knd"`
	jwt.RegisteredClaims
}

type tokenManager struct {
	secret []byte
	now    func() time.Time
}

func newTokenManager(secret []byte) *tokenManager {
	return &tokenManager{secret: secret, now: time.Now}
}

func (m *tokenManager) Issue(guestID, kind string, ttl time.Duration) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(ttl)
	claims := guestClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   guestID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign guest token: %w", err)
	}
	return signed, exp, nil
}

func (m *tokenManager) Validate(token, kind string) (*guestClaims, error) {
	claims := &guestClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Kind != kind {
		return nil, errors.New("unexpected token kind")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("guest id: %w", err)
	}
	return claims, nil
}
