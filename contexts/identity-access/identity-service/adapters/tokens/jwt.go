package tokens

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"communitypulse/contexts/identity-access/identity-service/domain/entities"
	domainerrors "communitypulse/contexts/identity-access/identity-service/domain/errors"
	"communitypulse/contexts/identity-access/identity-service/ports"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultIssuer = "communitypulse"
	defaultTTL    = 24 * time.Hour
)

// JWTIssuer signs HS256 access tokens whose subject is the user id.
type JWTIssuer struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

type accessClaims struct {
	Admin bool `json:"adm"`
	jwt.RegisteredClaims
}

func NewJWTIssuer(secret string, ttl time.Duration) JWTIssuer {
	return JWTIssuer{Secret: []byte(secret), TTL: ttl, Issuer: defaultIssuer}
}

func (i JWTIssuer) Issue(user entities.User, now time.Time) (ports.AccessToken, error) {
	if len(i.Secret) == 0 {
		return ports.AccessToken{}, errors.New("jwt secret is not configured")
	}
	ttl := i.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	issuedAt := now.UTC()
	expiresAt := issuedAt.Add(ttl)
	claims := accessClaims{
		Admin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			Issuer:    i.issuer(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
	if err != nil {
		return ports.AccessToken{}, fmt.Errorf("sign access token: %w", err)
	}
	return ports.AccessToken{Token: signed, ExpiresAt: expiresAt}, nil
}

func (i JWTIssuer) Parse(raw string, now time.Time) (ports.TokenClaims, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(
		strings.TrimSpace(raw),
		claims,
		func(*jwt.Token) (any, error) { return i.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer()),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now.UTC() }),
	)
	if err != nil {
		return ports.TokenClaims{}, fmt.Errorf("%w: %v", domainerrors.ErrUnauthenticated, err)
	}
	if !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return ports.TokenClaims{}, domainerrors.ErrUnauthenticated
	}
	out := ports.TokenClaims{
		UserID:  claims.Subject,
		IsAdmin: claims.Admin,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return out, nil
}

func (i JWTIssuer) issuer() string {
	if strings.TrimSpace(i.Issuer) == "" {
		return defaultIssuer
	}
	return i.Issuer
}

var _ ports.TokenIssuer = JWTIssuer{}
