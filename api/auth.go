package api

import (
	"fmt"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "zklrd"

// AuthService issues and validates API tokens. The token subject is the
// bech32 address the bearer may act for.
type AuthService struct {
	jwtSecret []byte
	now       func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(jwtSecret []byte) *AuthService {
	return &AuthService{
		jwtSecret: jwtSecret,
		now:       time.Now,
	}
}

// Claims represents JWT claims
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken issues an HS256 token for address valid for ttl
func (as *AuthService) GenerateToken(address string, ttl time.Duration) (string, error) {
	if _, err := sdk.AccAddressFromBech32(address); err != nil {
		return "", fmt.Errorf("invalid address: %w", err)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive")
	}

	now := as.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   address,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(as.jwtSecret)
}

// ValidateToken validates a JWT token and returns the claims
func (as *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return as.jwtSecret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(as.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if _, err := sdk.AccAddressFromBech32(claims.Subject); err != nil {
		return nil, fmt.Errorf("invalid token subject: %w", err)
	}

	return claims, nil
}
