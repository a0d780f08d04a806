package api

import (
	"context"

	"github.com/bibliobot/bibliobot-server/internal/conversation"
	"github.com/bibliobot/bibliobot-server/internal/ratelimit"
	"github.com/bibliobot/bibliobot-server/internal/service"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the business logic used by the API server.
type Services struct {
	Catalog      *service.CatalogService
	Conversation *conversation.Engine
	// TurnLimiter throttles conversation turns per user. Nil disables limiting.
	TurnLimiter *ratelimit.KeyedRateLimiter
	// Database is checked by the health endpoint. Nil reports degraded.
	Database Pinger
}
