package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// JWT validation errors.
var (
	ErrInvalidToken     = errors.New("middleware: invalid token")
	ErrExpiredToken     = errors.New("middleware: token has expired")
	ErrTokenNotYetValid = errors.New("middleware: token is not yet valid")
	ErrInvalidSignature = errors.New("middleware: invalid token signature")
)

// JWTClaims holds the registered claims the authenticator validates plus any
// custom claims the token carried.
type JWTClaims struct {
	Issuer    string `json:"iss,omitempty"`
	Subject   string `json:"sub,omitempty"`
	Audience  string `json:"aud,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	NotBefore int64  `json:"nbf,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
	ID        string `json:"jti,omitempty"`

	Custom map[string]any `json:"-"`
}

// JWTConfig configures the JWT authenticator. Only HS256 is supported; the
// alg header is pinned and anything else is rejected.
type JWTConfig struct {
	// Secret is the HMAC-SHA256 signing key.
	Secret []byte
	// Issuer, when set, must match the iss claim.
	Issuer string
	// Leeway is applied to exp and nbf validation.
	Leeway time.Duration
}

// JWTAuthenticator creates an authenticator that validates HS256 JWTs from
// the Authorization bearer token. The resulting Identity uses the sub claim
// as its ID and exposes all claims through Metadata.
func JWTAuthenticator(cfg JWTConfig) Authenticator {
	return BearerTokenAuthenticator(func(token string) *Identity {
		claims, err := parseJWT(cfg, token)
		if err != nil {
			return nil
		}
		meta := make(map[string]any, len(claims.Custom)+2)
		for k, v := range claims.Custom {
			meta[k] = v
		}
		if claims.Issuer != "" {
			meta["iss"] = claims.Issuer
		}
		if claims.Audience != "" {
			meta["aud"] = claims.Audience
		}
		return &Identity{
			ID:       claims.Subject,
			Metadata: meta,
		}
	})
}

type jwtHeader struct {
	Algorithm string `json:"alg"`
	Type      string `json:"typ"`
}

func parseJWT(cfg JWTConfig, token string) (*JWTClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidToken
	}
	var header jwtHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, ErrInvalidToken
	}
	if header.Algorithm != "HS256" {
		return nil, ErrInvalidToken
	}

	// Verify before trusting any claim.
	mac := hmac.New(sha256.New, cfg.Secret)
	mac.Write([]byte(parts[0] + "." + parts[1]))
	expected := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(parts[2]), []byte(expected)) {
		return nil, ErrInvalidSignature
	}

	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims := &JWTClaims{}
	if err := json.Unmarshal(claimsJSON, claims); err != nil {
		return nil, ErrInvalidToken
	}
	var custom map[string]any
	if err := json.Unmarshal(claimsJSON, &custom); err == nil {
		for _, reg := range []string{"iss", "sub", "aud", "exp", "nbf", "iat", "jti"} {
			delete(custom, reg)
		}
		if len(custom) > 0 {
			claims.Custom = custom
		}
	}

	now := time.Now()
	if claims.ExpiresAt != 0 && now.After(time.Unix(claims.ExpiresAt, 0).Add(cfg.Leeway)) {
		return nil, ErrExpiredToken
	}
	if claims.NotBefore != 0 && now.Add(cfg.Leeway).Before(time.Unix(claims.NotBefore, 0)) {
		return nil, ErrTokenNotYetValid
	}
	if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// SignJWT creates an HS256 token for the given claims. Exposed mainly for
// tests and examples; production deployments usually mint tokens elsewhere.
func SignJWT(cfg JWTConfig, claims JWTClaims) (string, error) {
	header, err := json.Marshal(jwtHeader{Algorithm: "HS256", Type: "JWT"})
	if err != nil {
		return "", err
	}

	m := make(map[string]any, len(claims.Custom)+7)
	for k, v := range claims.Custom {
		m[k] = v
	}
	if claims.Issuer != "" {
		m["iss"] = claims.Issuer
	}
	if claims.Subject != "" {
		m["sub"] = claims.Subject
	}
	if claims.Audience != "" {
		m["aud"] = claims.Audience
	}
	if claims.ExpiresAt != 0 {
		m["exp"] = claims.ExpiresAt
	}
	if claims.NotBefore != 0 {
		m["nbf"] = claims.NotBefore
	}
	if claims.IssuedAt != 0 {
		m["iat"] = claims.IssuedAt
	}
	if claims.ID != "" {
		m["jti"] = claims.ID
	}
	body, err := json.Marshal(m)
	if err != nil {
		return "", err
	}

	signingInput := base64.RawURLEncoding.EncodeToString(header) + "." + base64.RawURLEncoding.EncodeToString(body)
	mac := hmac.New(sha256.New, cfg.Secret)
	mac.Write([]byte(signingInput))
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}
