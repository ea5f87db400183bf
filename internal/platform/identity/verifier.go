package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
)

// Claims are the token claims the service relies on. Subject carries the
// owner identifier and ID (jti) is used for revocation.
type Claims struct {
	jwt.RegisteredClaims
}

var (
	errMissingSubject = errors.New("token has no subject")
	errRevoked        = errors.New("token has been revoked")
	errNoRevocations  = errors.New("token revocation is not configured")
)

// RevocationList is the deny-list of revoked token IDs.
type RevocationList interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// Verifier validates HS256 bearer tokens.
type Verifier struct {
	secret      []byte
	parser      *jwt.Parser
	revocations RevocationList
}

// NewVerifier builds a Verifier from the auth configuration. Issuer and
// audience are checked only when configured. revocations may be nil.
func NewVerifier(cfg config.AuthConfig, revocations RevocationList) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &Verifier{
		secret:      []byte(cfg.Secret),
		parser:      jwt.NewParser(opts...),
		revocations: revocations,
	}
}

// Verify parses and validates the raw token and returns the owner
// identifier it names. Token problems wrap domain.ErrUnauthenticated; a
// failing revocation lookup wraps domain.ErrUnavailable.
func (v *Verifier) Verify(ctx context.Context, raw string) (string, error) {
	claims, err := v.parse(raw)
	if err != nil {
		return "", err
	}

	if v.revocations != nil && claims.ID != "" {
		revoked, err := v.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return "", fmt.Errorf("%w: checking revocation: %w", domain.ErrUnavailable, err)
		}
		if revoked {
			return "", fmt.Errorf("%w: %w", domain.ErrUnauthenticated, errRevoked)
		}
	}

	return claims.Subject, nil
}

// Revoke deny-lists the token's ID until the token would have expired.
// Tokens without a jti cannot be revoked and fail validation; an expired
// token needs no entry.
func (v *Verifier) Revoke(ctx context.Context, raw string) error {
	if v.revocations == nil {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, errNoRevocations)
	}

	claims, err := v.parse(raw)
	if err != nil {
		return err
	}
	if claims.ID == "" {
		return domain.NewValidationError("header.authorization", "token has no jti claim")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := v.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("%w: revoking token: %w", domain.ErrUnavailable, err)
	}
	return nil
}

func (v *Verifier) parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, errMissingSubject)
	}
	return claims, nil
}
