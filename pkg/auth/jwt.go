package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/medisched/medisched-api/internal/model"
)

// Claims carries the authenticated principal extracted from a bearer token.
type Claims struct {
	PrincipalID uuid.UUID
	Kind        model.PrincipalKind
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Kind string `json:"kind"`
}

// TokenService issues and validates opaque bearer tokens encoding principal
// id and kind.
type TokenService struct {
	secret []byte
	expiry time.Duration
}

func NewTokenService(secret string, expiry time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), expiry: expiry}
}

func (s *TokenService) Generate(principalID uuid.UUID, kind model.PrincipalKind) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
		Kind: string(kind),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	principalID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid principal ID in token: %w", err)
	}

	kind := model.PrincipalKind(claims.Kind)
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid principal kind in token: %q", claims.Kind)
	}

	return &Claims{PrincipalID: principalID, Kind: kind}, nil
}
