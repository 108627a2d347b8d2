package eventservice

import (
	"log/slog"

	httpadapter "communitypulse/contexts/community-events/event-service/adapters/http"
	"communitypulse/contexts/community-events/event-service/adapters/memory"
	"communitypulse/contexts/community-events/event-service/application/commands"
	"communitypulse/contexts/community-events/event-service/application/queries"
	"communitypulse/contexts/community-events/event-service/domain/entities"
	"communitypulse/contexts/community-events/event-service/ports"
)

type Module struct {
	Handler   httpadapter.Handler
	Snapshots ports.SnapshotReader
	Store     *memory.Store
}

type Dependencies struct {
	Events    ports.EventRepository
	RSVPs     ports.RSVPRepository
	Feedback  ports.FeedbackRepository
	Snapshots ports.SnapshotReader
	Directory ports.OrganizerDirectory
	Users     ports.UserStatsReader
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	eventUseCase := commands.EventUseCase{
		Events: deps.Events,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	rsvpUseCase := commands.RSVPUseCase{
		RSVPs:  deps.RSVPs,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	feedbackUseCase := commands.FeedbackUseCase{
		Events:   deps.Events,
		RSVPs:    deps.RSVPs,
		Feedback: deps.Feedback,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	eventQueries := queries.EventQueries{
		Events:    deps.Events,
		RSVPs:     deps.RSVPs,
		Feedback:  deps.Feedback,
		Directory: deps.Directory,
		Clock:     deps.Clock,
	}
	analytics := queries.AnalyticsQuery{
		Snapshots: deps.Snapshots,
		Users:     deps.Users,
		Clock:     deps.Clock,
	}
	return Module{
		Handler: httpadapter.Handler{
			Events:    eventUseCase,
			RSVPs:     rsvpUseCase,
			Feedback:  feedbackUseCase,
			Queries:   eventQueries,
			Analytics: analytics,
			Logger:    deps.Logger,
		},
		Snapshots: deps.Snapshots,
	}
}

// NewInMemoryModule wires every port to one memory store. directory and users
// may be nil; organizer names and user totals are then left empty.
func NewInMemoryModule(
	seed []entities.Event,
	directory ports.OrganizerDirectory,
	users ports.UserStatsReader,
	logger *slog.Logger,
) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Events:    store,
		RSVPs:     store,
		Feedback:  store,
		Snapshots: store,
		Directory: directory,
		Users:     users,
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
