package whisperservice

import (
	"log/slog"

	httpadapter "communitypulse/contexts/community-signals/whisper-service/adapters/http"
	"communitypulse/contexts/community-signals/whisper-service/adapters/memory"
	"communitypulse/contexts/community-signals/whisper-service/application"
	"communitypulse/contexts/community-signals/whisper-service/domain/entities"
	"communitypulse/contexts/community-signals/whisper-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Whispers ports.WhisperRepository
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Service: application.Service{
				Whispers: deps.Whispers,
				Clock:    deps.Clock,
				IDGen:    deps.IDGen,
				Logger:   deps.Logger,
			},
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Whisper, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Whispers: store,
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
