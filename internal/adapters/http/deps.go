package http

import (
	"github.com/nats-io/nats.go"

	"github.com/lalit-0106/gps-attendance-app/internal/adapters/postgres"
	"github.com/lalit-0106/gps-attendance-app/internal/core/ports"
	"github.com/lalit-0106/gps-attendance-app/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. Access is
// required; everything else is optional and nil-checked where used, so the
// service keeps answering geofence checks when a broker, cache or database
// is absent.
type Dependencies struct {
	Access      *usecases.AccessService
	Presence    *usecases.PresenceService
	Evaluations ports.EvaluationLogRepository
	NATS        *nats.Conn
	DB          *postgres.DB
	Cache       ports.CacheService
}
