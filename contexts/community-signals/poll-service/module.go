package pollservice

import (
	"log/slog"

	httpadapter "communitypulse/contexts/community-signals/poll-service/adapters/http"
	"communitypulse/contexts/community-signals/poll-service/adapters/memory"
	"communitypulse/contexts/community-signals/poll-service/application"
	"communitypulse/contexts/community-signals/poll-service/domain/entities"
	"communitypulse/contexts/community-signals/poll-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Polls  ports.PollRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Service: application.Service{
				Polls:  deps.Polls,
				Clock:  deps.Clock,
				IDGen:  deps.IDGen,
				Logger: deps.Logger,
			},
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Poll, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Polls:  store,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
