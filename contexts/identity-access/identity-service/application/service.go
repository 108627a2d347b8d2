package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"communitypulse/contexts/identity-access/identity-service/domain/entities"
	domainerrors "communitypulse/contexts/identity-access/identity-service/domain/errors"
	"communitypulse/contexts/identity-access/identity-service/ports"
	identityv1 "communitypulse/contracts/identity/v1"
)

const newUserWindow = 7 * 24 * time.Hour

type SignupCommand struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Session is a user plus a freshly issued access token.
type Session struct {
	User  entities.User
	Token ports.AccessToken
}

type Service struct {
	Users       ports.UserRepository
	Hasher      ports.PasswordHasher
	Tokens      ports.TokenIssuer
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	AdminEmails []string
	Logger      *slog.Logger
}

func (s Service) Signup(ctx context.Context, cmd SignupCommand) (Session, error) {
	logger := ResolveLogger(s.Logger)
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Email = entities.NormalizeEmail(cmd.Email)
	cmd.Phone = strings.TrimSpace(cmd.Phone)
	if err := validateSignup(cmd); err != nil {
		logger.Warn("signup validation failed",
			"event", "identity_signup_validation_failed",
			"module", "identity-access/identity-service",
			"layer", "application",
			"error", err.Error(),
		)
		return Session{}, err
	}

	hash, err := s.Hasher.Hash(cmd.Password)
	if err != nil {
		return Session{}, err
	}
	userID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return Session{}, err
	}
	now := s.now()
	user := entities.User{
		UserID:       userID,
		Name:         cmd.Name,
		Email:        cmd.Email,
		Phone:        cmd.Phone,
		PasswordHash: hash,
		IsAdmin:      s.isAdminEmail(cmd.Email),
		CreatedAt:    now,
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrEmailTaken) {
			logger.Warn("signup rejected for registered email",
				"event", "identity_signup_email_taken",
				"module", "identity-access/identity-service",
				"layer", "application",
			)
		}
		return Session{}, err
	}

	token, err := s.Tokens.Issue(user, now)
	if err != nil {
		return Session{}, err
	}
	logger.Info("user signed up",
		"event", "identity_user_signed_up",
		"module", "identity-access/identity-service",
		"layer", "application",
		"user_id", user.UserID,
		"is_admin", user.IsAdmin,
	)
	return Session{User: user, Token: token}, nil
}

func (s Service) Login(ctx context.Context, email string, password string) (Session, error) {
	email = entities.NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%w: email and password are required", domainerrors.ErrValidation)
	}
	user, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return Session{}, domainerrors.ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := s.Hasher.Compare(user.PasswordHash, password); err != nil {
		ResolveLogger(s.Logger).Warn("login rejected",
			"event", "identity_login_rejected",
			"module", "identity-access/identity-service",
			"layer", "application",
			"user_id", user.UserID,
		)
		return Session{}, err
	}
	token, err := s.Tokens.Issue(user, s.now())
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Token: token}, nil
}

// Resolve turns a bearer token into a caller. The admin flag is read from the
// stored user, not the token, so revoking admin rights takes effect at once.
func (s Service) Resolve(ctx context.Context, token string) (identityv1.Caller, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return identityv1.Anonymous(), nil
	}
	claims, err := s.Tokens.Parse(token, s.now())
	if err != nil {
		return identityv1.Caller{}, err
	}
	user, err := s.Users.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return identityv1.Caller{}, domainerrors.ErrUnauthenticated
		}
		return identityv1.Caller{}, err
	}
	return identityv1.User(user.UserID, user.IsAdmin), nil
}

func (s Service) Me(ctx context.Context, caller identityv1.Caller) (entities.User, error) {
	if caller.IsAnonymous() {
		return entities.User{}, domainerrors.ErrUnauthenticated
	}
	return s.Users.GetUser(ctx, caller.UserID)
}

// DisplayNames maps user ids to names. Unknown ids are omitted.
func (s Service) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}
	users, err := s.Users.ListUsersByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		names[user.UserID] = user.Name
	}
	return names, nil
}

func (s Service) Stats(ctx context.Context) (ports.UserStats, error) {
	since := s.now().Add(-newUserWindow)
	return s.Users.CountUsers(ctx, since)
}

func (s Service) isAdminEmail(email string) bool {
	for _, candidate := range s.AdminEmails {
		if entities.NormalizeEmail(candidate) == email {
			return true
		}
	}
	return false
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func validateSignup(cmd SignupCommand) error {
	switch {
	case cmd.Name == "" || cmd.Email == "" || cmd.Phone == "" || cmd.Password == "":
		return fmt.Errorf("%w: name, email, phone and password are required", domainerrors.ErrValidation)
	case !entities.ValidEmail(cmd.Email):
		return fmt.Errorf("%w: email is not well-formed", domainerrors.ErrValidation)
	case len(cmd.Password) < entities.MinPasswordLength || len(cmd.Password) > entities.MaxPasswordLength:
		return fmt.Errorf("%w: password must be %d to %d characters", domainerrors.ErrValidation,
			entities.MinPasswordLength, entities.MaxPasswordLength)
	}
	return nil
}
