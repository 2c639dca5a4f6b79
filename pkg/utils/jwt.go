package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AudienceSession = "session"
	AudiencePortal  = "portal"
)

type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates the HS256 tokens used for sessions and portal unlocks.
type TokenIssuer struct {
	key       []byte
	ttl       time.Duration
	portalTTL time.Duration
	now       func() time.Time
}

func NewTokenIssuer(secret string, ttl, portalTTL time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if portalTTL <= 0 {
		portalTTL = 12 * time.Hour
	}
	return &TokenIssuer{key: []byte(secret), ttl: ttl, portalTTL: portalTTL, now: time.Now}, nil
}

func (t *TokenIssuer) SessionTTL() time.Duration { return t.ttl }

func (t *TokenIssuer) PortalTTL() time.Duration { return t.portalTTL }

func (t *TokenIssuer) CreateToken(userID uuid.UUID) (string, error) {
	now := t.now()
	return t.sign(&Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{AudienceSession},
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})
}

// CreatePortalToken grants a portal visitor access to one password-protected walkthrough.
func (t *TokenIssuer) CreatePortalToken(walkthroughID uuid.UUID) (string, error) {
	now := t.now()
	return t.sign(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   walkthroughID.String(),
			Audience:  jwt.ClaimStrings{AudiencePortal},
			ExpiresAt: jwt.NewNumericDate(now.Add(t.portalTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
}

func (t *TokenIssuer) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.key)
}

// ValidateToken checks the signature, expiry and audience.
func (t *TokenIssuer) ValidateToken(tokenString, audience string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
