package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JWT header constants required by RFC 7519.
const (
	HeaderType      = "JWT"
	HeaderAlgorithm = "HS256"
)

// Header represents the JWT header as defined in RFC 7515.
type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// StandardClaims carries the registered claims from RFC 7519 section 4.1
// plus the tenant slug Showrunner embeds in its access tokens. Temporal
// claims are Unix timestamps.
type StandardClaims struct {
	ID         string `json:"jti,omitempty"`
	Subject    string `json:"sub,omitempty"` // account ID
	Issuer     string `json:"iss,omitempty"`
	Audience   string `json:"aud,omitempty"`
	TenantSlug string `json:"tenant_slug,omitempty"`
	ExpiresAt  int64  `json:"exp,omitempty"`
	NotBefore  int64  `json:"nbf,omitempty"`
	IssuedAt   int64  `json:"iat,omitempty"`
}

// Valid checks the temporal claims against the current time. Zero values
// are treated as unset per RFC 7519.
func (c StandardClaims) Valid() error {
	now := time.Now().Unix()
	if c.ExpiresAt > 0 && now > c.ExpiresAt {
		return ErrExpiredToken
	}
	if c.NotBefore > 0 && now < c.NotBefore {
		return ErrInvalidToken
	}
	return nil
}

// Service signs and verifies tokens with HMAC-SHA256. The signing key lives
// in memory only and should be at least 32 bytes.
type Service struct {
	signingKey []byte
}

// New creates a JWT service with the provided signing key.
func New(signingKey []byte) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	return &Service{signingKey: signingKey}, nil
}

// NewFromString is a convenience wrapper around New for string keys.
func NewFromString(signingKey string) (*Service, error) {
	return New([]byte(signingKey))
}

// Generate signs the given claims and returns the compact token string.
func (s *Service) Generate(claims any) (string, error) {
	if claims == nil {
		return "", ErrMissingClaims
	}

	headerJSON, err := json.Marshal(Header{Type: HeaderType, Algorithm: HeaderAlgorithm})
	if err != nil {
		return "", fmt.Errorf("marshal header: %w", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	payload := base64URLEncode(headerJSON) + "." + base64URLEncode(claimsJSON)
	return payload + "." + s.sign(payload), nil
}

// Parse verifies a token and unmarshals its claims into the provided value.
// It checks the signature, rejects unexpected algorithms, and runs temporal
// validation when the claims type implements Valid() error.
func (s *Service) Parse(tokenString string, claims any) error {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}

	payload := parts[0] + "." + parts[1]
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(s.sign(payload))) != 1 {
		return ErrInvalidSignature
	}

	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		return fmt.Errorf("decode header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return fmt.Errorf("unmarshal header: %w", err)
	}
	if header.Algorithm != HeaderAlgorithm {
		return ErrUnexpectedSigningMethod
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return fmt.Errorf("decode claims: %w", err)
	}
	if err := json.Unmarshal(claimsJSON, claims); err != nil {
		return fmt.Errorf("unmarshal claims: %w", err)
	}

	if validator, ok := claims.(interface{ Valid() error }); ok {
		return validator.Valid()
	}
	return nil
}

// DecodeUnverified unmarshals a token's claims without checking the
// signature or temporal validity. It exists for code that uses claims as a
// routing signal only, such as tenant resolution; never use it for
// authentication decisions.
func DecodeUnverified(tokenString string, claims any) error {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return ErrInvalidToken
	}
	if err := json.Unmarshal(claimsJSON, claims); err != nil {
		return ErrInvalidClaims
	}
	return nil
}

// sign returns the base64url-encoded HMAC-SHA256 signature of payload.
func (s *Service) sign(payload string) string {
	h := hmac.New(sha256.New, s.signingKey)
	h.Write([]byte(payload))
	return base64URLEncode(h.Sum(nil))
}

// base64URLEncode encodes without padding, as RFC 7515 requires.
func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// base64URLDecode tolerates both padded and unpadded input.
func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
