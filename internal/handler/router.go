package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mindfulai/mindful-shell/internal/handler/chat"
	"github.com/mindfulai/mindful-shell/internal/handler/profile"
	"github.com/mindfulai/mindful-shell/internal/handler/resource"
	"github.com/mindfulai/mindful-shell/internal/handler/stream"
	"github.com/mindfulai/mindful-shell/internal/handler/ws"
	middlewarePkg "github.com/mindfulai/mindful-shell/internal/middleware"
	chatService "github.com/mindfulai/mindful-shell/internal/service/chat"
	"github.com/mindfulai/mindful-shell/pkg/utils"
)

const healthTimeout = 3 * time.Second

// HealthChecker reports whether the chat backend is reachable.
type HealthChecker interface {
	Health(ctx context.Context) (map[string]any, error)
}

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service, backend HealthChecker, logger *zap.Logger, allowedOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigin))

	r.Route("/api", func(api chi.Router) {
		chat.New(chatSvc).RegisterRoutes(api)
		profile.New(chatSvc).RegisterRoutes(api)
		resource.New(chatSvc).RegisterRoutes(api)
		stream.New(chatSvc, logger).RegisterRoutes(api)
		ws.NewWebSocketHandler(chatSvc, logger).RegisterWebSocketRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			handleHealth(w, r, backend)
		})
	})

	return r
}

// handleHealth always answers 200; backend reachability is reported in the body.
func handleHealth(w http.ResponseWriter, r *http.Request, backend HealthChecker) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	body := map[string]any{"status": "ok"}
	status, err := backend.Health(ctx)
	if err != nil {
		body["backend"] = map[string]any{"reachable": false, "error": err.Error()}
	} else {
		body["backend"] = map[string]any{"reachable": true, "status": status}
	}
	utils.RespondJSON(w, http.StatusOK, body)
}
