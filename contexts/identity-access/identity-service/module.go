package identityservice

import (
	"log/slog"
	"time"

	httpadapter "communitypulse/contexts/identity-access/identity-service/adapters/http"
	"communitypulse/contexts/identity-access/identity-service/adapters/memory"
	"communitypulse/contexts/identity-access/identity-service/adapters/passwords"
	"communitypulse/contexts/identity-access/identity-service/adapters/tokens"
	"communitypulse/contexts/identity-access/identity-service/application"
	"communitypulse/contexts/identity-access/identity-service/ports"

	"golang.org/x/crypto/bcrypt"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Users       ports.UserRepository
	Hasher      ports.PasswordHasher
	Tokens      ports.TokenIssuer
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	AdminEmails []string
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Users:       deps.Users,
		Hasher:      deps.Hasher,
		Tokens:      deps.Tokens,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		AdminEmails: deps.AdminEmails,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule wires the module against process memory. bcrypt runs at
// its minimum cost so local runs and tests stay fast.
func NewInMemoryModule(secret string, adminEmails []string, logger *slog.Logger) Module {
	store := memory.NewStore(nil)
	module := NewModule(Dependencies{
		Users:       store,
		Hasher:      passwords.BcryptHasher{Cost: bcrypt.MinCost},
		Tokens:      tokens.NewJWTIssuer(secret, time.Hour),
		Clock:       store,
		IDGen:       store,
		AdminEmails: adminEmails,
		Logger:      logger,
	})
	module.Store = store
	return module
}
