package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/socialgraph/pkg/httputil"
)

const testCookie = "token"

func fixedValidator(tokens map[string]error) TokenValidator {
	return func(token string) (*Claims, error) {
		err, ok := tokens[token]
		if !ok {
			return nil, errors.New("signature mismatch")
		}
		if err != nil {
			return nil, err
		}
		return &Claims{UserID: "user-" + token}, nil
	}
}

func serveAuth(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, string) {
	t.Helper()
	validate := fixedValidator(map[string]error{
		"good":    nil,
		"expired": fmt.Errorf("verify: %w", ErrTokenExpired),
	})

	var seen string
	h := Auth(testCookie, validate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, seen
}

func authMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Success)
	return resp.Message
}

func TestAuth_CookieToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "good"})

	rec, seen := serveAuth(t, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-good", seen)
}

func TestAuth_BearerFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")

	rec, seen := serveAuth(t, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-good", seen)
}

func TestAuth_CookieWinsOverHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "good"})
	req.Header.Set("Authorization", "Bearer forged")

	rec, _ := serveAuth(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_MissingToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no credentials", ""},
		{"non bearer scheme", "Basic Zm9vOmJhcg=="},
		{"empty bearer", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec, seen := serveAuth(t, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, MsgLoginRequired, authMessage(t, rec))
			assert.Empty(t, seen)
		})
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "tampered"})

	rec, seen := serveAuth(t, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, MsgInvalidToken, authMessage(t, rec))
	assert.Empty(t, seen)
}

func TestAuth_ExpiredToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "expired"})

	rec, _ := serveAuth(t, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, MsgExpiredToken, authMessage(t, rec))
}

func TestAuth_EmptySubjectIsInvalid(t *testing.T) {
	validate := func(string) (*Claims, error) { return &Claims{}, nil }
	h := Auth(testCookie, validate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, MsgInvalidToken, authMessage(t, rec))
}

func TestAuth_CountsRejectionsByReason(t *testing.T) {
	tests := []struct {
		cookie string
		reason string
	}{
		{cookie: "", reason: rejectMissing},
		{cookie: "forged", reason: rejectInvalid},
		{cookie: "expired", reason: rejectExpired},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			before := testutil.ToFloat64(authRejections.WithLabelValues(tt.reason))

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: testCookie, Value: tt.cookie})
			}
			rec, _ := serveAuth(t, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, before+1, testutil.ToFloat64(authRejections.WithLabelValues(tt.reason)))
		})
	}
}
