package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"communitypulse/contexts/identity-access/identity-service/application"
	"communitypulse/contexts/identity-access/identity-service/domain/entities"
	httptransport "communitypulse/contexts/identity-access/identity-service/transport/http"
	identityv1 "communitypulse/contracts/identity/v1"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) SignupHandler(ctx context.Context, req httptransport.SignupRequest) (httptransport.SessionResponse, error) {
	session, err := h.Service.Signup(ctx, application.SignupCommand{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return mapSession(session), nil
}

func (h Handler) LoginHandler(ctx context.Context, req httptransport.LoginRequest) (httptransport.SessionResponse, error) {
	session, err := h.Service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return mapSession(session), nil
}

func (h Handler) MeHandler(ctx context.Context, caller identityv1.Caller) (httptransport.UserResponse, error) {
	user, err := h.Service.Me(ctx, caller)
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return mapUser(user), nil
}

func (h Handler) ResolveCaller(ctx context.Context, bearerToken string) (identityv1.Caller, error) {
	return h.Service.Resolve(ctx, bearerToken)
}

func mapSession(session application.Session) httptransport.SessionResponse {
	return httptransport.SessionResponse{
		AccessToken: session.Token.Token,
		TokenType:   "Bearer",
		ExpiresAt:   session.Token.ExpiresAt.UTC().Format(time.RFC3339),
		User:        mapUser(session.User),
	}
}

func mapUser(user entities.User) httptransport.UserResponse {
	return httptransport.UserResponse{
		UserID:    user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}
