package ports

import (
	"context"
	"time"

	"communitypulse/contexts/community-events/trust-score-service/domain/entities"
	identityv1 "communitypulse/contracts/identity/v1"
)

type Actor = identityv1.Caller

// ActivitySource reads organizer activity from one consistent snapshot.
// An empty organizerID returns every organizer with at least one event.
type ActivitySource interface {
	OrganizerActivity(ctx context.Context, organizerID string) ([]entities.OrganizerActivity, error)
}

type Directory interface {
	DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

type Clock interface {
	Now() time.Time
}
