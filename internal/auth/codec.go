// Package auth encodes and verifies the signed identity tokens that gate the API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"cafe/internal/models"
)

// DecodeErrorKind classifies why a token was rejected.
type DecodeErrorKind string

const (
	MissingToken      DecodeErrorKind = "MissingToken"
	Malformed         DecodeErrorKind = "Malformed"
	SignatureMismatch DecodeErrorKind = "SignatureMismatch"
	Expired           DecodeErrorKind = "Expired"
)

// DecodeError is returned by Decode for every rejected token.
type DecodeError struct {
	Kind DecodeErrorKind
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
	}
	return "token " + string(e.Kind)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// claims is the token payload: the user subset plus iat/exp.
type claims struct {
	Usuario models.Identity `json:"usuario"`
	jwt.StandardClaims
}

// TokenCodec signs and verifies HS256 identity tokens with a single secret.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// Option configures a TokenCodec.
type Option func(*TokenCodec)

// WithClock replaces the time source used for iat and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec creates a codec for the given secret.
func NewTokenCodec(secret string, opts ...Option) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("auth: empty token secret")
	}
	c := &TokenCodec{
		secret: []byte(secret),
		now:    time.Now,
		// Expiry is checked against c.now instead of the package-global clock.
		parser: &jwt.Parser{
			ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
			SkipClaimsValidation: true,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Encode signs a token for identity valid for ttl.
func (c *TokenCodec) Encode(identity models.Identity, ttl time.Duration) (string, error) {
	if !identity.Complete() {
		return "", errors.New("auth: identity is missing id, nombre, email or a valid role")
	}
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Usuario: identity,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies tokenString and returns the identity it carries. It either
// returns a complete identity or a *DecodeError, never both.
func (c *TokenCodec) Decode(tokenString string) (models.Identity, error) {
	if tokenString == "" {
		return models.Identity{}, &DecodeError{Kind: MissingToken}
	}

	var cl claims
	_, err := c.parser.ParseWithClaims(tokenString, &cl, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return models.Identity{}, classify(err)
	}

	if cl.ExpiresAt == 0 {
		return models.Identity{}, &DecodeError{Kind: Malformed, Err: errors.New("missing exp claim")}
	}
	if c.now().Unix() > cl.ExpiresAt {
		return models.Identity{}, &DecodeError{Kind: Expired, Err: fmt.Errorf("expired at %s", time.Unix(cl.ExpiresAt, 0).UTC())}
	}
	if !cl.Usuario.Complete() {
		return models.Identity{}, &DecodeError{Kind: Malformed, Err: errors.New("incomplete usuario claim")}
	}
	return cl.Usuario, nil
}

func classify(err error) *DecodeError {
	var ve *jwt.ValidationError
	if !errors.As(err, &ve) {
		return &DecodeError{Kind: Malformed, Err: err}
	}
	switch {
	case ve.Errors&jwt.ValidationErrorMalformed != 0:
		return &DecodeError{Kind: Malformed, Err: err}
	case ve.Errors&(jwt.ValidationErrorSignatureInvalid|jwt.ValidationErrorUnverifiable) != 0:
		return &DecodeError{Kind: SignatureMismatch, Err: err}
	case ve.Errors&jwt.ValidationErrorExpired != 0:
		return &DecodeError{Kind: Expired, Err: err}
	default:
		return &DecodeError{Kind: Malformed, Err: err}
	}
}

// KindOf returns the DecodeErrorKind carried by err, or Malformed.
func KindOf(err error) DecodeErrorKind {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind
	}
	return Malformed
}
