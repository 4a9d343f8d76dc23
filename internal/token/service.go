// Package token issues and verifies the signed, time-limited bearer credentials
// that bind a request to a user identity.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/eventhub/domain"
)

// DefaultTTL is the validity window of an issued credential.
const DefaultTTL = 30 * 24 * time.Hour

// Verification failures. They share the Unauthorized code and differ by reason.
var (
	ErrMalformed        = domain.NewReasonError(domain.ErrCodeUnauthorized, domain.ReasonTokenMalformed, "malformed token")
	ErrSignatureInvalid = domain.NewReasonError(domain.ErrCodeUnauthorized, domain.ReasonTokenSignatureInvalid, "token signature invalid")
	ErrExpired          = domain.NewReasonError(domain.ErrCodeUnauthorized, domain.ReasonTokenExpired, "token expired")
)

// Config carries the secret and validity settings. Now defaults to time.Now.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

// Token is an issued credential.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service signs credentials with HS256. It holds no mutable state.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func New(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    cfg.Now,
		// Expiry is checked against the injected clock in Verify, not jwt's global one.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// TTL returns the validity window applied to new credentials.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue produces a credential bound to userID.
func (s *Service) Issue(userID string) (Token, error) {
	if userID == "" {
		return Token{}, domain.ErrInvalidPayload
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify checks signature and expiry and returns the subject user id.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if _, err := s.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}); err != nil {
		return "", classify(err)
	}

	if claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) {
		return "", ErrExpired
	}
	if claims.Subject == "" {
		return "", ErrMalformed
	}
	return claims.Subject, nil
}

func classify(err error) error {
	var ve *jwt.ValidationError
	if !errors.As(err, &ve) {
		return ErrMalformed
	}
	switch {
	case ve.Errors&jwt.ValidationErrorMalformed != 0:
		return ErrMalformed
	case ve.Errors&(jwt.ValidationErrorSignatureInvalid|jwt.ValidationErrorUnverifiable) != 0:
		return ErrSignatureInvalid
	case ve.Errors&jwt.ValidationErrorExpired != 0:
		return ErrExpired
	default:
		return ErrMalformed
	}
}
