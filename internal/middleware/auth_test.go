package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticValidator accepts exactly one token
type staticValidator struct {
	token   string
	subject string
}

func (v staticValidator) ValidateToken(ctx context.Context, token string) (string, error) {
	if token != v.token {
		return "", ErrInvalidToken
	}
	return v.subject, nil
}

func runAuth(t *testing.T, header string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	var seen echo.Context
	mw := NewAuthMiddleware(staticValidator{token: "good-token", subject: "user-1"})
	err := mw.Authenticate()(func(c echo.Context) error {
		called = true
		seen = c
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	return rec, seen, called
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantDetail string
	}{
		{"missing header", "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "invalid authorization header format"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "invalid authorization header format"},
		{"bad token", "Bearer nope", http.StatusUnauthorized, "invalid token"},
		{"good token", "Bearer good-token", http.StatusOK, ""},
		{"lowercase scheme", "bearer good-token", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, called := runAuth(t, tt.header)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)

			if tt.wantDetail != "" {
				var problem problemDetails
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
				assert.Equal(t, errorTypeUnauthorized, problem.Type)
				assert.Equal(t, tt.wantDetail, problem.Detail)
				assert.Equal(t, "/api/v1/dashboard", problem.Instance)
				assert.Contains(t, rec.Header().Get(echo.HeaderWWWAuthenticate), "Bearer")
			}
		})
	}
}

func TestAuthenticate_StoresCredential(t *testing.T) {
	_, c, called := runAuth(t, "Bearer good-token")
	require.True(t, called)

	assert.Equal(t, "user-1", GetSubject(c))
	cred := GetCredential(c)
	assert.Equal(t, "user-1", cred.Subject)
	assert.Equal(t, "good-token", cred.Token)
}

func TestGetSubject_NotPresent(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.Equal(t, "", GetSubject(c))
	assert.Equal(t, "", GetCredential(c).Token)
}

func TestCustomClaims_Validate(t *testing.T) {
	claims := &CustomClaims{Email: "test@example.com", Name: "Test"}
	assert.NoError(t, claims.Validate(context.Background()))
}

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestHMACValidator(t *testing.T) {
	v, err := NewHMACValidator("shared-secret")
	require.NoError(t, err)
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{"sub claim", signHS256(t, "shared-secret", jwt.MapClaims{"sub": "u-1", "exp": exp}), "u-1", false},
		{"id claim", signHS256(t, "shared-secret", jwt.MapClaims{"id": "65f0c0ffee", "exp": exp}), "65f0c0ffee", false},
		{"numeric user_id", signHS256(t, "shared-secret", jwt.MapClaims{"user_id": 42, "exp": exp}), "42", false},
		{"wrong secret", signHS256(t, "other", jwt.MapClaims{"sub": "u-1", "exp": exp}), "", true},
		{"expired", signHS256(t, "shared-secret", jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(-time.Hour).Unix()}), "", true},
		{"no subject", signHS256(t, "shared-secret", jwt.MapClaims{"exp": exp}), "", true},
		{"garbage", "not.a.jwt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := v.ValidateToken(context.Background(), tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sub)
		})
	}
}

func TestHMACValidator_RejectsOtherAlgorithms(t *testing.T) {
	v, err := NewHMACValidator("shared-secret")
	require.NoError(t, err)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "u-1"}).SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = v.ValidateToken(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewHMACValidator_RequiresSecret(t *testing.T) {
	_, err := NewHMACValidator("")
	assert.Error(t, err)
}

func TestParseBearer(t *testing.T) {
	token, ok := ParseBearer("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", token)

	_, ok = ParseBearer("abc.def")
	assert.False(t, ok)
}
