package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// identity stands in for the session and auth middleware.
func identity(sessionID string, userID *int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionID != "" {
			c.Set(middleware.SessionKey, sessionID)
		}
		if userID != nil {
			c.Set("user_id", *userID)
			c.Set("user_email", "buyer@example.com")
			c.Set("user_role", "client")
		}
		c.Next()
	}
}

func perform(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func httptestRequestWithHeader(method, path, key, value string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(key, value)
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
