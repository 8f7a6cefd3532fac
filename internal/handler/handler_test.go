package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stemgharbiya/siteapi/internal/config"
	"stemgharbiya/siteapi/internal/schema"
	"stemgharbiya/siteapi/internal/service"
)

type stubJoinService struct {
	warning bool
	err     error
	gotIP   string
	gotReq  *schema.JoinRequest
}

func (s *stubJoinService) Submit(_ context.Context, req *schema.JoinRequest, ip string) (bool, error) {
	s.gotReq = req
	s.gotIP = ip
	return s.warning, s.err
}

type stubContactService struct {
	warning bool
	err     error
}

func (s *stubContactService) Submit(_ context.Context, _ *schema.ContactRequest, _ string) (bool, error) {
	return s.warning, s.err
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "release"},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"https://stemgharbiya.moe.edu.eg"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:         12 * time.Hour,
		},
	}
}

func newTestRouter(join *stubJoinService, contact *stubContactService) *gin.Engine {
	return SetupRouter(
		testConfig(),
		zap.NewNop(),
		nil,
		NewJoinHandler(join),
		NewContactHandler(contact),
	)
}

const validJoinJSON = `{
	"fullName": "Ahmed Hassan",
	"schoolEmail": "ahmed.1925001@stemgharbiya.moe.edu.eg",
	"githubUsername": "ahmed-hassan",
	"seniorYear": "S26",
	"interests": ["Web Development"],
	"motivation": "I want to build things for my school.",
	"cf-turnstile-response": "tok",
	"agreement": true
}`

const validContactJSON = `{
	"name": "Sara Mostafa",
	"email": "sara@example.com",
	"subject": "Question",
	"message": "When does the next cohort start?",
	"cf-turnstile-response": "tok"
}`

func postJSON(r *gin.Engine, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJoinEndpointSuccess(t *testing.T) {
	join := &stubJoinService{}
	r := newTestRouter(join, &stubContactService{})

	w := postJSON(r, "/join", validJoinJSON, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Application submitted successfully", body["message"])
	assert.NotContains(t, body, "warning")
}

func TestJoinEndpointSuccessWithWarning(t *testing.T) {
	join := &stubJoinService{warning: true}
	r := newTestRouter(join, &stubContactService{})

	w := postJSON(r, "/join", validJoinJSON, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Application received but notifications may be delayed", body["warning"])
}

func TestJoinEndpointValidationError(t *testing.T) {
	join := &stubJoinService{}
	r := newTestRouter(join, &stubContactService{})

	bad := strings.Replace(validJoinJSON, `"S26"`, `"S99"`, 1)
	w := postJSON(r, "/join", bad, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "seniorYear", body["field"])
	assert.NotEmpty(t, body["error"])
	assert.Nil(t, join.gotReq, "service is never reached on validation failure")
}

func TestJoinEndpointErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"verification failed", service.ErrVerificationFailed, http.StatusBadRequest, "Verification failed. Please try again."},
		{"verifier unavailable", service.ErrVerifierUnavailable, http.StatusServiceUnavailable, "Verification service temporarily unavailable"},
		{"rate limited", service.ErrRateLimited, http.StatusTooManyRequests, "Too many requests, try again later"},
		{"duplicate", service.ErrDuplicateApplication, http.StatusConflict, "Application already exists"},
		{"internal", service.ErrServiceUnavailable, http.StatusInternalServerError, "Service temporarily unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&stubJoinService{err: tt.err}, &stubContactService{})
			w := postJSON(r, "/join", validJoinJSON, nil)
			assert.Equal(t, tt.wantStatus, w.Code)

			body := decodeBody(t, w)
			assert.Equal(t, tt.wantError, body["error"])
			assert.NotContains(t, body, "field")
		})
	}
}

func TestContactEndpointSuccess(t *testing.T) {
	r := newTestRouter(&stubJoinService{}, &stubContactService{})

	w := postJSON(r, "/contact", validContactJSON, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Message sent successfully", body["message"])
}

func TestContactEndpointValidationError(t *testing.T) {
	r := newTestRouter(&stubJoinService{}, &stubContactService{})

	bad := strings.Replace(validContactJSON, `"sara@example.com"`, `"nope"`, 1)
	w := postJSON(r, "/contact", bad, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", decodeBody(t, w)["field"])
}

func TestContactEndpointRateLimited(t *testing.T) {
	r := newTestRouter(&stubJoinService{}, &stubContactService{err: service.ErrRateLimited})

	w := postJSON(r, "/contact", validContactJSON, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := newTestRouter(&stubJoinService{}, &stubContactService{})

	w := postJSON(r, "/join", validJoinJSON, nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(&stubJoinService{}, &stubContactService{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClientIPResolution(t *testing.T) {
	join := &stubJoinService{}
	r := newTestRouter(join, &stubContactService{})

	t.Run("prefers CF-Connecting-IP", func(t *testing.T) {
		postJSON(r, "/join", validJoinJSON, map[string]string{
			"CF-Connecting-IP": "198.51.100.7",
			"X-Forwarded-For":  "203.0.113.1, 10.0.0.1",
		})
		assert.Equal(t, "198.51.100.7", join.gotIP)
	})

	t.Run("falls back to first forwarded hop", func(t *testing.T) {
		postJSON(r, "/join", validJoinJSON, map[string]string{
			"X-Forwarded-For": "203.0.113.1, 10.0.0.1",
		})
		assert.Equal(t, "203.0.113.1", join.gotIP)
	})
}

func TestMalformedBodyReturns400(t *testing.T) {
	r := newTestRouter(&stubJoinService{}, &stubContactService{})

	w := postJSON(r, "/join", "{not json", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "invalid JSON body", body["error"])
	assert.NotContains(t, body, "field")
}
