package ipaddress

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetIPAddress(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "json", r.URL.Query().Get("format"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ip":"2001:db8::1"}`))
		}))
		defer server.Close()

		ip, err := NewService(server.URL+"?format=json", nil).GetIPAddress(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "2001:db8::1", ip)
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"ip":"198.51.100.7"}`))
		}))
		defer server.Close()

		ip, err := NewService(server.URL, nil).GetIPAddress(context.Background())
		assert.Error(t, err)
		assert.Empty(t, ip)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`198.51.100.7`))
		}))
		defer server.Close()

		_, err := NewService(server.URL, nil).GetIPAddress(context.Background())
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("EmptyIP", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"ip":"  "}`))
		}))
		defer server.Close()

		_, err := NewService(server.URL, nil).GetIPAddress(context.Background())
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("Unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := NewService(url, &http.Client{Timeout: time.Second}).GetIPAddress(context.Background())
		assert.Error(t, err)
	})
}
