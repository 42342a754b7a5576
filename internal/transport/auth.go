package transport

import (
	"context"
	"net/http"

	"github.com/agentstation/assetsync/pkg/errors"
)

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request) error
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request) error {
	return nil
}

// BearerAuth implements static Bearer token authentication.
type BearerAuth struct {
	Token string
}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request) error {
	if a.Token == "" {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
	return nil
}

// BasicAuth implements HTTP basic authentication, used by the Casper API.
type BasicAuth struct {
	Username string
	Password string
}

// Apply implements the Authenticator interface for BasicAuth.
func (a *BasicAuth) Apply(req *http.Request) error {
	if a.Username == "" && a.Password == "" {
		return nil
	}
	req.SetBasicAuth(a.Username, a.Password)
	return nil
}

// HeaderAuth implements custom header authentication.
type HeaderAuth struct {
	Header string
	Value  string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request) error {
	req.Header.Set(a.Header, a.Value)
	return nil
}

// TokenSource returns a bearer token, fetching or refreshing it as needed.
type TokenSource func(ctx context.Context) (string, error)

// TokenAuth implements Bearer authentication with a token obtained at request
// time, such as the registry's login token.
type TokenAuth struct {
	Service string
	Method  string
	Source  TokenSource
}

// Apply implements the Authenticator interface for TokenAuth.
func (a *TokenAuth) Apply(req *http.Request) error {
	if a.Source == nil {
		return nil
	}
	token, err := a.Source(req.Context())
	if err != nil {
		return &errors.AuthenticationError{
			Service: a.Service,
			Method:  a.Method,
			Message: "failed to obtain token",
			Err:     err,
		}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}
