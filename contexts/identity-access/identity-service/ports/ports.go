package ports

import (
	"context"
	"time"

	"communitypulse/contexts/identity-access/identity-service/domain/entities"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user entities.User) error
	GetUser(ctx context.Context, userID string) (entities.User, error)
	GetUserByEmail(ctx context.Context, email string) (entities.User, error)
	ListUsersByID(ctx context.Context, userIDs []string) ([]entities.User, error)
	CountUsers(ctx context.Context, createdSince time.Time) (UserStats, error)
}

type UserStats struct {
	TotalUsers  int
	NewSince    int
	CountedFrom time.Time
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

type TokenClaims struct {
	UserID    string
	IsAdmin   bool
	ExpiresAt time.Time
}

type TokenIssuer interface {
	Issue(user entities.User, now time.Time) (AccessToken, error)
	Parse(token string, now time.Time) (TokenClaims, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
