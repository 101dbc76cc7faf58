package services

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartletter/letter_api/shared"
)

type testServer struct {
	env *testEnv
	jwt *JWTService
	app *fiber.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	env := newTestEnv(t, nil)
	jwtSvc := NewJWTService(testJWTSecret)
	admin := NewAdminService(env.storage)

	svc := &HttpService{
		authSvc:      NewAuthService(env.storage, jwtSvc),
		userSvc:      NewUserService(env.storage),
		letterSvc:    NewLetterService(env.storage, env.ai),
		workflowSvc:  NewWorkflowService(env.storage, env.ai),
		adminSvc:     admin,
		migrationSvc: NewMigrationService(env.storage),
		exportSvc:    NewExportService(admin, &fakeObjects{}),
		rateLimitSvc: NewRateLimitService(env.store),
	}
	return &testServer{env: env, jwt: jwtSvc, app: svc.newApp()}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) (*http.Response, shared.Response) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out shared.Response
	if len(raw) > 0 {
		require.NoError(t, shared.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func (s *testServer) bearer(t *testing.T, role string) map[string]string {
	t.Helper()
	token, err := s.jwt.ToJWT("user:1:admin", role)
	require.NoError(t, err)
	return map[string]string{fiber.HeaderAuthorization: "Bearer " + token}
}

func TestPing(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/api/v1/ping", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", body.Data)
}

func TestRegisterEndpoint(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/v1/auth/register", `{"nickname":"alice","password":"1234"}`, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "User registered successfully", body.Message)

	resp, body = s.do(t, http.MethodPost, "/api/v1/auth/register", `{"nickname":"alice","password":"5678"}`, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Nickname already exists", body.Message)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/auth/register", `{"nickname":"bob","password":"123456"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", `{"nickname":"alice","password":"0000"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterEndpointIsRateLimited(t *testing.T) {
	s := newTestServer(t)
	headers := map[string]string{"X-Forwarded-For": "203.0.113.9"}

	for i := 0; i < 5; i++ {
		resp, _ := s.do(t, http.MethodPost, "/api/v1/auth/register", `{"nickname":"","password":"1"}`, headers)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}

	resp, body := s.do(t, http.MethodPost, "/api/v1/auth/register", `{"nickname":"carol","password":"1"}`, headers)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Too many registration attempts. Please try again later.", body.Message)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodGet, "/api/v1/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/admin/stats", "", s.bearer(t, shared.RoleUser))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/admin/stats", "", s.bearer(t, shared.RoleAdmin))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := s.do(t, http.MethodPost, "/api/v1/admin/export", "", s.bearer(t, shared.RoleAdmin))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Export storage is not configured", body.Message)
}

func TestCompleteReflectionEndpoint(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodPost, "/api/v1/writing-step/complete-reflection", `{"sessionId":"reflection_session:1:x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := s.do(t, http.MethodPost, "/api/v1/writing-step/complete-reflection",
		`{"sessionId":"reflection_session:1:x","reflectionId":"r1"}`, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Reflection not found", body.Message)
}
