package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/fortuna/ledger-backend/internal/middleware"
	"github.com/dafibh/fortuna/ledger-backend/internal/service"
	"github.com/dafibh/fortuna/ledger-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// stubValidator accepts tokens of the form "tok-<subject>"
type stubValidator struct{}

func (stubValidator) ValidateToken(ctx context.Context, token string) (string, error) {
	if subject, ok := strings.CutPrefix(token, "tok-"); ok && subject != "" {
		return subject, nil
	}
	return "", middleware.ErrInvalidToken
}

type testEnv struct {
	e         *echo.Echo
	manager   *service.SessionManager
	ledger    *service.LedgerService
	store     *testutil.MockDashboardStore
	history   *testutil.MockTransactionHistory
	settings  *testutil.MockSettingsRepository
	objects   *testutil.MockObjectStore
	publisher *testutil.MockEventPublisher
	scheduler *testutil.FakeScheduler
	auth      *fakeAuthProxy
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		e:         echo.New(),
		store:     testutil.NewMockDashboardStore(),
		history:   testutil.NewMockTransactionHistory(),
		settings:  testutil.NewMockSettingsRepository(),
		objects:   testutil.NewMockObjectStore(),
		publisher: testutil.NewMockEventPublisher(),
		scheduler: testutil.NewFakeScheduler(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
		auth:      &fakeAuthProxy{},
	}
	env.manager = service.NewSessionManager(env.store, env.history, zerolog.Nop(), service.SessionConfig{
		SaveDelay:   800 * time.Millisecond,
		SaveTimeout: time.Second,
		LoadTimeout: time.Second,
		Scheduler:   env.scheduler,
	})
	env.manager.SetEventPublisher(env.publisher)
	env.ledger = service.NewLedgerService(env.manager)

	settingsService := service.NewSettingsService(env.settings)
	settingsService.SetEventPublisher(env.publisher)

	RegisterRoutes(env.e, middleware.NewAuthMiddleware(stubValidator{}), nil, Handlers{
		Auth:      NewAuthHandler(env.auth),
		Dashboard: NewDashboardHandler(env.ledger),
		Budget:    NewBudgetHandler(env.ledger),
		Expense:   NewExpenseHandler(env.ledger),
		Session:   NewSessionHandler(env.ledger),
		Settings:  NewSettingsHandler(settingsService),
		Export:    NewExportHandler(service.NewExportService(env.ledger, env.objects, 15*time.Minute)),
	})

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = env.manager.Shutdown(ctx)
	})
	return env
}

// do sends a request through the router; an empty subject sends no Authorization header
func (env *testEnv) do(method, target, body, subject string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if subject != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer tok-"+subject)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

// setupAuthContext stores the subject and token the auth middleware would set
func setupAuthContext(c echo.Context, subject string) {
	ctx := context.WithValue(c.Request().Context(), middleware.SubjectKey, subject)
	ctx = context.WithValue(ctx, middleware.TokenKey, "tok-"+subject)
	c.SetRequest(c.Request().WithContext(ctx))
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func problemFields(p ProblemDetails) []string {
	fields := make([]string, len(p.Errors))
	for i, e := range p.Errors {
		fields[i] = e.Field
	}
	return fields
}
