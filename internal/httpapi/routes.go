package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rgoyal8/ipl-auction-backend/internal/engine"
	"github.com/rgoyal8/ipl-auction-backend/internal/hub"
	"github.com/rgoyal8/ipl-auction-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, squads []engine.Squad, origins []string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Post("/rooms", CreateRoom(h, log))
	r.Get("/rooms", ListRooms(h))
	r.Get("/squads", Squads(squads))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, origins, log))
	return r
}
