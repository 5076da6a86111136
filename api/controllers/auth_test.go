package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notpazar/notpazar-backend/internal/users"
	"github.com/notpazar/notpazar-backend/pkg/config"
	pkgerrors "github.com/notpazar/notpazar-backend/pkg/errors"
	"github.com/notpazar/notpazar-backend/pkg/models"
)

type stubUserService struct {
	user models.User
	err  error
}

func (s stubUserService) Register(ctx context.Context, input users.RegisterInput) (models.User, error) {
	return s.user, s.err
}

func (s stubUserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	return s.user, s.err
}

func (s stubUserService) Get(ctx context.Context, email string) (models.User, error) {
	return s.user, s.err
}

func (s stubUserService) UpdateProfile(ctx context.Context, email string, update users.ProfileUpdate) (models.User, error) {
	return s.user, s.err
}

func testControllerJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "controller-secret", Issuer: "notpazar-test", ExpirationMinutes: 5}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthLoginSuccess(t *testing.T) {
	svc := stubUserService{user: models.User{Name: "Alice", Email: "alice@example.com", Role: "user"}}
	handler := AuthLogin(svc, testControllerJWTConfig(), nil)

	rec := postJSON(t, handler, "/login", map[string]string{
		"email":    "alice@example.com",
		"password": "secret123",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data struct {
			AccessToken string `json:"access_token"`
			User        struct {
				Email string `json:"email"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.AccessToken)
	require.Equal(t, "alice@example.com", envelope.Data.User.Email)
}

func TestAuthLoginRejectsMalformedBody(t *testing.T) {
	handler := AuthLogin(stubUserService{}, testControllerJWTConfig(), nil)

	rec := postJSON(t, handler, "/login", map[string]string{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthLoginSurfacesUnauthorized(t *testing.T) {
	svc := stubUserService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "email or password is incorrect")}
	handler := AuthLogin(svc, testControllerJWTConfig(), nil)

	rec := postJSON(t, handler, "/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRegisterSurfacesConflict(t *testing.T) {
	svc := stubUserService{err: pkgerrors.New(pkgerrors.CodeConflict, "this email is already registered")}
	handler := AuthRegister(svc, testControllerJWTConfig(), nil)

	rec := postJSON(t, handler, "/register", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "this email is already registered", envelope.Error.Message)
}

func TestAuthRegisterNilServiceFailsClosed(t *testing.T) {
	handler := AuthRegister(nil, testControllerJWTConfig(), nil)

	rec := postJSON(t, handler, "/register", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
