package trustscoreservice

import (
	"log/slog"

	httpadapter "communitypulse/contexts/community-events/trust-score-service/adapters/http"
	"communitypulse/contexts/community-events/trust-score-service/application"
	"communitypulse/contexts/community-events/trust-score-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
}

type Dependencies struct {
	Activity  ports.ActivitySource
	Directory ports.Directory
	Clock     ports.Clock
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Activity:  deps.Activity,
		Directory: deps.Directory,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}
