package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// subjectClaims are checked in order; self-hosted stores often put the user id in "id"
var subjectClaims = []string{"sub", "id", "user_id"}

// HMACValidator validates HS256 tokens issued by a self-hosted store that shares the signing secret
type HMACValidator struct {
	secret []byte
	parser *jwt.Parser
}

// NewHMACValidator creates an HMACValidator
func NewHMACValidator(secret string) (*HMACValidator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &HMACValidator{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithLeeway(time.Minute),
		),
	}, nil
}

// ValidateToken implements TokenValidator
func (v *HMACValidator) ValidateToken(ctx context.Context, tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	for _, key := range subjectClaims {
		if sub := claimString(claims[key]); sub != "" {
			return sub, nil
		}
	}
	return "", ErrInvalidToken
}

func claimString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return fmt.Sprintf("%.0f", val)
	default:
		return ""
	}
}
