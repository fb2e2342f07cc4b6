package middleware

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/pins", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), "POST /api/pins 418")
}

func TestSetupCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("Preflight", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SetupCORS("")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/embed/map", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("PassesThrough", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SetupCORS("https://example.org")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/embed/map", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://example.org", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
