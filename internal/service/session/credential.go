package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"restaurant-frontend/internal/domain"
)

var (
	// ErrInvalidCredential indicates a token that cannot be decoded or lacks required claims.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrCredentialExpired indicates a token whose exp claim is not in the future.
	ErrCredentialExpired = errors.New("credential expired")
)

// Claims are the credential fields the binding relies on. Subject carries the email.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Decoded is a validated credential.
type Decoded struct {
	Email     string
	Role      domain.Role
	ExpiresAt time.Time
}

// Decoder reads bearer credentials locally. Without a secret it only decodes
// the payload; the result is advisory and always reconciled with a user lookup.
type Decoder struct {
	secret []byte
	now    func() time.Time
}

// NewDecoder returns a Decoder. A non-empty secret turns on HMAC verification.
func NewDecoder(secret string, now func() time.Time) Decoder {
	if now == nil {
		now = time.Now
	}
	d := Decoder{now: now}
	if secret != "" {
		d.secret = []byte(secret)
	}
	return d
}

// Decode validates structure, required claims and expiry.
func (d Decoder) Decode(token string) (Decoded, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return Decoded{}, ErrInvalidCredential
	}

	var claims Claims
	if d.secret != nil {
		parser := jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
			jwt.WithTimeFunc(d.now),
			jwt.WithExpirationRequired(),
		)
		_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
			return d.secret, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return Decoded{}, ErrCredentialExpired
			}
			return Decoded{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
			return Decoded{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
		}
	}

	email := strings.TrimSpace(claims.Subject)
	if email == "" {
		return Decoded{}, fmt.Errorf("%w: missing subject", ErrInvalidCredential)
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return Decoded{}, fmt.Errorf("%w: missing or unknown role %q", ErrInvalidCredential, claims.Role)
	}
	if claims.ExpiresAt == nil {
		return Decoded{}, fmt.Errorf("%w: missing exp", ErrInvalidCredential)
	}
	exp := claims.ExpiresAt.Time
	if !d.now().Before(exp) {
		return Decoded{}, ErrCredentialExpired
	}
	return Decoded{Email: email, Role: role, ExpiresAt: exp}, nil
}
