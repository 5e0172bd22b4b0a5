package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/chainkit/chainkit/chain"
)

// CORSConfig configures CORS behavior.
type CORSConfig struct {
	// AllowOrigins is a list of origins that are allowed.
	// Use "*" to allow all origins, or specify exact origins.
	AllowOrigins []string

	// AllowMethods is a list of allowed HTTP methods.
	// Default: GET, POST, OPTIONS
	AllowMethods []string

	// AllowHeaders is a list of allowed request headers.
	// Default: Content-Type, Authorization, X-Request-ID
	AllowHeaders []string

	// ExposeHeaders is a list of headers the browser is allowed to access.
	ExposeHeaders []string

	// AllowCredentials indicates whether credentials are allowed.
	AllowCredentials bool

	// MaxAge indicates how long preflight results can be cached (in seconds).
	// Default: 86400 (24 hours)
	MaxAge int
}

// DefaultCORSConfig returns a permissive CORS configuration suitable for
// development.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		MaxAge:       86400,
	}
}

// CORS returns middleware that annotates responses with CORS headers for
// allowed origins and short-circuits OPTIONS preflight requests with 204.
// Non-preflight requests continue down the chain.
func CORS(config CORSConfig) chain.Middleware {
	if len(config.AllowMethods) == 0 {
		config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(config.AllowHeaders) == 0 {
		config.AllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if config.MaxAge == 0 {
		config.MaxAge = 86400
	}

	allowAllOrigins := len(config.AllowOrigins) == 1 && config.AllowOrigins[0] == "*"
	allowedOrigins := make(map[string]bool)
	for _, origin := range config.AllowOrigins {
		allowedOrigins[origin] = true
	}

	return chain.NewMiddleware("cors", func(c *chain.Context, next chain.Next) (chain.Result, error) {
		origin := c.Request().Header().Get("Origin")

		var allowOrigin string
		if allowAllOrigins {
			allowOrigin = "*"
		} else if origin != "" && allowedOrigins[origin] {
			allowOrigin = origin
		}

		if allowOrigin != "" {
			res := c.Response()
			res.SetHeader("Access-Control-Allow-Origin", allowOrigin)
			if config.AllowCredentials {
				res.SetHeader("Access-Control-Allow-Credentials", "true")
			}

			if c.Request().Method() == http.MethodOptions {
				res.SetHeader("Access-Control-Allow-Methods", strings.Join(config.AllowMethods, ", ")).
					SetHeader("Access-Control-Allow-Headers", strings.Join(config.AllowHeaders, ", "))
				if config.MaxAge > 0 {
					res.SetHeader("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
				}
				res.SetStatus(http.StatusNoContent)
				return chain.Done(), nil
			}

			if len(config.ExposeHeaders) > 0 {
				res.SetHeader("Access-Control-Expose-Headers", strings.Join(config.ExposeHeaders, ", "))
			}
		}

		return chain.Continue(), next()
	})
}
