package staff

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the staff session token claims.
type Claims struct {
	StaffName string `json:"staffName"`
	jwt.RegisteredClaims
}

// TokenService signs and validates staff session tokens.
type TokenService struct {
	secret []byte
	expire time.Duration
}

func NewTokenService(secret string, expireHours int) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		expire: time.Duration(expireHours) * time.Hour,
	}
}

// Sign creates a session token for the staff member.
func (s *TokenService) Sign(staffName string) (string, error) {
	claims := Claims{
		StaffName: staffName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.expire)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate parses and verifies a session token.
func (s *TokenService) Validate(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
