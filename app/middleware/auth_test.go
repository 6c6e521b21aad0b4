package appMiddleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecretVerifier(t *testing.T) {
	v := NewSecretVerifier("topsecret")

	assert.True(t, v.Verify("topsecret"))
	assert.False(t, v.Verify("wrong"))
	assert.False(t, v.Verify(""))

	// An empty configured secret never authenticates anything.
	empty := NewSecretVerifier("")
	assert.False(t, empty.Verify(""))
	assert.False(t, empty.Verify("anything"))
}

func TestRequireSecret(t *testing.T) {
	v := NewSecretVerifier("topsecret")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireSecret(v)(next)

	t.Run("HeaderSecret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/policy-stats", nil)
		req.Header.Set(SecretHeader, "topsecret")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("BearerSecret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/policy-stats", nil)
		req.Header.Set("Authorization", "Bearer topsecret")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/policy-stats", nil)
		req.Header.Set(SecretHeader, "nope")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid authentication token")
	})

	t.Run("MissingSecret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/policy-stats", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRequireSecret_IgnoresNonBearerAuthorization(t *testing.T) {
	v := NewSecretVerifier("topsecret")
	handler := RequireSecret(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/admin/policy-stats", nil)
	req.Header.Set("Authorization", "Basic "+strings.Repeat("x", 10))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
