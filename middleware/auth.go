package middleware

import (
	"net/http"
	"strings"

	"github.com/chainkit/chainkit/chain"
)

// Identity represents an authenticated identity.
type Identity struct {
	// ID is a unique identifier for the identity (e.g., user ID, API key ID).
	ID string
	// Name is a human-readable name for the identity.
	Name string
	// Metadata contains additional identity information, such as claims.
	Metadata map[string]any
}

// IdentityKey is the typed state key under which the authenticated identity
// is stored.
var IdentityKey = chain.NewKey[*Identity]("auth.identity")

// IdentityFrom returns the authenticated identity from the context, or nil.
func IdentityFrom(c *chain.Context) *Identity {
	id, _ := chain.Get(c, IdentityKey)
	return id
}

// Authenticator validates credentials on the execution and returns an
// identity. A nil identity without an error means "no usable credentials".
type Authenticator func(c *chain.Context) (*Identity, error)

// AuthOption configures the authentication middleware.
type AuthOption func(*authConfig)

type authConfig struct {
	logger       Logger
	skipPaths    map[string]bool
	realm        string
	errorMessage string
}

// WithAuthLogger sets the logger for auth events.
func WithAuthLogger(l Logger) AuthOption {
	return func(c *authConfig) {
		c.logger = l
	}
}

// WithAuthSkipPaths specifies request paths that don't require
// authentication.
func WithAuthSkipPaths(paths ...string) AuthOption {
	return func(c *authConfig) {
		for _, p := range paths {
			c.skipPaths[p] = true
		}
	}
}

// WithAuthRealm sets the realm reported in the WWW-Authenticate header.
func WithAuthRealm(realm string) AuthOption {
	return func(c *authConfig) {
		c.realm = realm
	}
}

// WithAuthErrorMessage sets a custom error message for auth failures.
func WithAuthErrorMessage(msg string) AuthOption {
	return func(c *authConfig) {
		c.errorMessage = msg
	}
}

// Auth returns middleware that authenticates executions using the provided
// authenticator. On failure the chain short-circuits with 401 and a
// WWW-Authenticate header; on success the identity is stored in state and
// the chain continues.
func Auth(authenticator Authenticator, opts ...AuthOption) chain.Middleware {
	cfg := &authConfig{
		skipPaths:    make(map[string]bool),
		realm:        "chainkit",
		errorMessage: "authentication required",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return chain.NewMiddleware("auth", func(c *chain.Context, next chain.Next) (chain.Result, error) {
		if cfg.skipPaths[c.Request().Path()] {
			return chain.Continue(), next()
		}

		identity, err := authenticator(c)
		if err != nil || identity == nil {
			if cfg.logger != nil {
				fields := []Field{F("path", c.Request().Path())}
				if err != nil {
					fields = append(fields, F("error", err.Error()))
				}
				cfg.logger.Warn("authentication failed", fields...)
			}
			c.Response().
				SetHeader("WWW-Authenticate", `Bearer realm="`+cfg.realm+`"`).
				SetStatus(http.StatusUnauthorized).
				JSON(map[string]string{"error": cfg.errorMessage})
			return chain.Done(), nil
		}

		if cfg.logger != nil {
			cfg.logger.Debug("authenticated",
				F("path", c.Request().Path()),
				F("identity", identity.ID),
			)
		}

		chain.Set(c, IdentityKey, identity)
		return chain.Continue(), next()
	})
}

// BearerTokenAuthenticator creates an authenticator that validates bearer
// tokens from the Authorization header. The tokenValidator should return the
// identity for a valid token, or nil for an invalid one.
func BearerTokenAuthenticator(tokenValidator func(token string) *Identity) Authenticator {
	return func(c *chain.Context) (*Identity, error) {
		token := bearerToken(c)
		if token == "" {
			return nil, nil
		}
		return tokenValidator(token), nil
	}
}

// APIKeyAuthenticator creates an authenticator that validates API keys
// carried in the named request header.
func APIKeyAuthenticator(headerName string, keyValidator func(key string) *Identity) Authenticator {
	return func(c *chain.Context) (*Identity, error) {
		key := c.Request().Header().Get(headerName)
		if key == "" {
			return nil, nil
		}
		return keyValidator(key), nil
	}
}

// StaticAPIKeys creates a simple key validator from a map of key -> identity.
func StaticAPIKeys(keys map[string]*Identity) func(string) *Identity {
	return func(key string) *Identity {
		return keys[key]
	}
}

// StaticTokens creates a simple token validator from a map of token -> identity.
func StaticTokens(tokens map[string]*Identity) func(string) *Identity {
	return func(token string) *Identity {
		return tokens[token]
	}
}

// ChainAuthenticators chains multiple authenticators, returning the first
// successful identity.
func ChainAuthenticators(authenticators ...Authenticator) Authenticator {
	return func(c *chain.Context) (*Identity, error) {
		for _, auth := range authenticators {
			identity, err := auth(c)
			if err != nil {
				return nil, err
			}
			if identity != nil {
				return identity, nil
			}
		}
		return nil, nil
	}
}

func bearerToken(c *chain.Context) string {
	auth := c.Request().Header().Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimPrefix(auth, prefix)
}
