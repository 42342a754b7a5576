package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/assetsync/pkg/errors"
)

func TestClientSendJSON(t *testing.T) {
	var gotMethod, gotPath, gotAuth, gotContentType string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"ID": 4411, "Name": "lab-01"}`))
	}))
	defer srv.Close()

	c := New(&BearerAuth{Token: "tok"}, WithBaseURL(srv.URL+"/api/"), WithService("registry"))

	var out struct {
		ID   int
		Name string
	}
	err := c.SendJSON(context.Background(), http.MethodPost, "/assets/4411", map[string]any{"Name": "lab-01"}, &out)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/assets/4411", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "lab-01", gotBody["Name"])
	assert.Equal(t, 4411, out.ID)
}

func TestClientErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"rate limited", http.StatusTooManyRequests, errors.IsRateLimited},
		{"unauthorized", http.StatusUnauthorized, errors.IsUnauthorized},
		{"not found", http.StatusNotFound, errors.IsNotFound},
		{"unavailable", http.StatusServiceUnavailable, errors.IsUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			c := New(nil, WithBaseURL(srv.URL), WithService("casper"))
			err := c.GetJSON(context.Background(), "computer_reports/id/38", &struct{}{})
			require.Error(t, err)
			assert.True(t, tt.check(err))

			var apiErr *errors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, "casper", apiErr.Service)
			assert.Equal(t, "/computer_reports/id/38", apiErr.Endpoint)
			assert.Equal(t, "nope", apiErr.Message)
		})
	}
}

func TestClientAcceptsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(nil, WithBaseURL(srv.URL))
	var out map[string]any
	require.NoError(t, c.SendJSON(context.Background(), http.MethodPut, "assets/models/7", map[string]string{}, &out))
	assert.Nil(t, out)
}

func TestClientTransportFailure(t *testing.T) {
	c := New(nil, WithBaseURL("http://127.0.0.1:1"), WithService("registry"))
	_, err := c.Get(context.Background(), "assets/1")
	require.Error(t, err)

	var apiErr *errors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Zero(t, apiErr.StatusCode)
	assert.Equal(t, "registry", apiErr.Service)
}

func TestURL(t *testing.T) {
	c := New(nil, WithBaseURL("https://td.example.edu/TDWebApi/api/"))
	assert.Equal(t, "https://td.example.edu/TDWebApi/api/assets", c.URL("/assets"))
	assert.Equal(t, "https://other.example.edu/x", c.URL("https://other.example.edu/x"))

	bare := New(nil)
	assert.Equal(t, "assets", bare.URL("assets"))
}

func TestWithQuery(t *testing.T) {
	assert.Equal(t, "reports/1", WithQuery("reports/1", nil))
	assert.Equal(t, "reports/1?withData=true", WithQuery("reports/1", url.Values{"withData": {"true"}}))
	assert.Equal(t, "reports/1?a=b&c=d", WithQuery("reports/1?a=b", url.Values{"c": {"d"}}))
}
