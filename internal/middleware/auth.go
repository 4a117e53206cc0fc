package middleware

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ErrInvalidToken is returned when a bearer token fails validation
var ErrInvalidToken = errors.New("invalid token")

// TokenValidator validates a bearer token and returns the user subject it was issued for
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (subject string, err error)
}

// CustomClaims contains the custom claims from Auth0 JWT
type CustomClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// Auth0Validator validates RS256 tokens against an Auth0 tenant's JWKS
type Auth0Validator struct {
	validator *validator.Validator
}

// NewAuth0Validator creates an Auth0Validator for domain and audience
func NewAuth0Validator(domain, audience string) (*Auth0Validator, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &Auth0Validator{validator: jwtValidator}, nil
}

// ValidateToken implements TokenValidator
func (v *Auth0Validator) ValidateToken(ctx context.Context, token string) (string, error) {
	claims, err := v.validator.ValidateToken(ctx, token)
	if err != nil {
		return "", ErrInvalidToken
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok || validatedClaims.RegisteredClaims.Subject == "" {
		return "", ErrInvalidToken
	}
	return validatedClaims.RegisteredClaims.Subject, nil
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// SubjectKey is the context key for the authenticated user subject
	SubjectKey contextKey = "subject"
	// TokenKey is the context key for the raw bearer token
	TokenKey contextKey = "token"
)

// AuthMiddleware provides bearer token validation middleware
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(v TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: v}
}

// Authenticate returns an Echo middleware that validates bearer tokens.
// The subject and the raw token are stored in the request context; the token
// is forwarded to the remote store on the user's behalf.
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "missing authorization header")
			}

			token, ok := ParseBearer(authHeader)
			if !ok {
				return unauthorizedError(c, "invalid authorization header format")
			}

			subject, err := m.validator.ValidateToken(c.Request().Context(), token)
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "invalid token")
			}

			ctx := context.WithValue(c.Request().Context(), SubjectKey, subject)
			ctx = context.WithValue(ctx, TokenKey, token)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// ParseBearer extracts the token from an "Authorization: Bearer <token>" header value
func ParseBearer(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// GetSubject extracts the authenticated subject from the context
func GetSubject(c echo.Context) string {
	if sub, ok := c.Request().Context().Value(SubjectKey).(string); ok {
		return sub
	}
	return ""
}

// GetCredential returns the subject and bearer token of the current request
func GetCredential(c echo.Context) domain.Credential {
	token, _ := c.Request().Context().Value(TokenKey).(string)
	return domain.Credential{Subject: GetSubject(c), Token: token}
}
