package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestServer wraps httptest.Server with a client that keeps cookies, so
// successive calls share one browser session.
type TestServer struct {
	*httptest.Server
	t      *testing.T
	client *http.Client
}

func NewTestServer(t *testing.T, handler http.Handler) *TestServer {
	server := httptest.NewServer(handler)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &TestServer{
		Server: server,
		t:      t,
		client: &http.Client{Jar: jar},
	}
}

// NewBrowser returns a second client with its own cookie jar
func (ts *TestServer) NewBrowser() *TestServer {
	jar, err := cookiejar.New(nil)
	require.NoError(ts.t, err)
	return &TestServer{Server: ts.Server, t: ts.t, client: &http.Client{Jar: jar}}
}

func (ts *TestServer) GET(path string) *http.Response {
	resp, err := ts.client.Get(ts.URL + path)
	require.NoError(ts.t, err)
	return resp
}

func (ts *TestServer) POST(path string, body interface{}) *http.Response {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(ts.t, err)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, bodyReader)
	require.NoError(ts.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "khon-reep-test/1.0")

	resp, err := ts.client.Do(req)
	require.NoError(ts.t, err)
	return resp
}

func AssertJSONResponse(t *testing.T, resp *http.Response, expectedStatus int, target interface{}) {
	require.Equal(t, expectedStatus, resp.StatusCode)

	if target != nil {
		defer resp.Body.Close()
		err := json.NewDecoder(resp.Body).Decode(target)
		require.NoError(t, err)
	}
}

func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	require.Equal(t, expectedStatus, resp.StatusCode)

	defer resp.Body.Close()
	var errorResp map[string]interface{}
	err := json.NewDecoder(resp.Body).Decode(&errorResp)
	require.NoError(t, err)

	if expectedMessage != "" {
		require.Contains(t, errorResp["error"], expectedMessage)
	}
}
