package transport

import (
	"context"
	"errors"
	"net/http"
	"testing"

	pkgerrors "github.com/agentstation/assetsync/pkg/errors"
)

// TestNoAuth tests that NoAuth applies no authentication.
func TestNoAuth(t *testing.T) {
	auth := &NoAuth{}
	req := &http.Request{
		Header: make(http.Header),
	}

	if err := auth.Apply(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(req.Header) != 0 {
		t.Errorf("Expected no headers, got %d", len(req.Header))
	}
}

// TestBearerAuth tests Bearer token authentication.
func TestBearerAuth(t *testing.T) {
	auth := &BearerAuth{Token: "test-token"}
	req := &http.Request{
		Header: make(http.Header),
	}

	_ = auth.Apply(req)

	authHeader := req.Header.Get("Authorization")
	expected := "Bearer test-token"
	if authHeader != expected {
		t.Errorf("Expected Authorization header '%s', got '%s'", expected, authHeader)
	}

	// Empty token leaves the request alone
	req2 := &http.Request{Header: make(http.Header)}
	_ = (&BearerAuth{}).Apply(req2)
	if req2.Header.Get("Authorization") != "" {
		t.Error("Should not have Authorization header")
	}
}

// TestBasicAuth tests HTTP basic authentication.
func TestBasicAuth(t *testing.T) {
	auth := &BasicAuth{Username: "jss-reader", Password: "secret"}
	req := &http.Request{
		Header: make(http.Header),
	}

	_ = auth.Apply(req)

	user, pass, ok := req.BasicAuth()
	if !ok {
		t.Fatal("Expected basic auth to be set")
	}
	if user != "jss-reader" || pass != "secret" {
		t.Errorf("Expected jss-reader/secret, got %s/%s", user, pass)
	}
}

// TestHeaderAuth tests custom header authentication.
func TestHeaderAuth(t *testing.T) {
	auth := &HeaderAuth{Header: "x-api-key", Value: "test-api-key"}
	req := &http.Request{
		Header: make(http.Header),
	}

	_ = auth.Apply(req)

	headerValue := req.Header.Get("x-api-key")
	if headerValue != "test-api-key" {
		t.Errorf("Expected x-api-key header 'test-api-key', got '%s'", headerValue)
	}

	// Should not have Authorization header
	if req.Header.Get("Authorization") != "" {
		t.Error("Should not have Authorization header")
	}
}

// TestTokenAuth tests dynamic token authentication.
func TestTokenAuth(t *testing.T) {
	t.Run("token applied", func(t *testing.T) {
		auth := &TokenAuth{
			Service: "registry",
			Method:  "admin",
			Source: func(context.Context) (string, error) {
				return "abc123", nil
			},
		}
		req, _ := http.NewRequest(http.MethodGet, "https://td.example.edu/api/assets/1", nil)

		if err := auth.Apply(req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer abc123" {
			t.Errorf("Expected 'Bearer abc123', got '%s'", got)
		}
	})

	t.Run("source failure", func(t *testing.T) {
		auth := &TokenAuth{
			Service: "registry",
			Method:  "admin",
			Source: func(context.Context) (string, error) {
				return "", errors.New("bad key")
			},
		}
		req, _ := http.NewRequest(http.MethodGet, "https://td.example.edu/api/assets/1", nil)

		err := auth.Apply(req)
		if err == nil {
			t.Fatal("Expected an error")
		}
		if !pkgerrors.IsUnauthorized(err) {
			t.Errorf("Expected unauthorized error, got %v", err)
		}
	})
}
