package http

import (
	"github.com/nats-io/nats.go"
	"github.com/samirrijal/usngrid/internal/adapters/postgres"
	"github.com/samirrijal/usngrid/internal/adapters/valkey"
	"github.com/samirrijal/usngrid/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Grid      *usecases.GridService
	Convert   *usecases.ConvertService
	Viewports *usecases.ViewportService
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
