package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims the signed session payload: sub, email, role, permissions.
// Permissions decodes to nil when the token predates the field.
type TokenClaims struct {
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// UserID parses the subject back into a user id
func (c *TokenClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid subject %q: %w", c.Subject, err)
	}
	return uint(id), nil
}

// JWTManager signs and verifies session tokens
type JWTManager struct {
	secretKey     string
	tokenDuration time.Duration
	issuer        string
}

func NewJWTManager(secretKey string, tokenDuration time.Duration, issuer string) *JWTManager {
	return &JWTManager{
		secretKey:     secretKey,
		tokenDuration: tokenDuration,
		issuer:        issuer,
	}
}

// GenerateToken signs a token and returns it with its id and expiry.
// A nil permission list is written as an empty array.
func (manager *JWTManager) GenerateToken(userID uint, email, role string, permissions []string) (string, string, time.Time, error) {
	if permissions == nil {
		permissions = []string{}
	}

	now := time.Now()
	expiresAt := now.Add(manager.tokenDuration)
	tokenID := uuid.NewString()

	claims := TokenClaims{
		Email:       email,
		Role:        role,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    manager.issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(manager.secretKey))
	if err != nil {
		return "", "", time.Time{}, err
	}
	return signed, tokenID, expiresAt, nil
}

// VerifyToken checks signature, method and expiry
func (manager *JWTManager) VerifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&TokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(manager.secretKey), nil
		},
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("cannot parse token claims")
	}
	return claims, nil
}

func (manager *JWTManager) GetTokenDuration() time.Duration {
	return manager.tokenDuration
}
